package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/mentorlink/mentorlink-api/api/swagger"
	"github.com/mentorlink/mentorlink-api/internal/handler"
	"github.com/mentorlink/mentorlink-api/internal/middleware"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/repository"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/pkg/cache"
	"github.com/mentorlink/mentorlink-api/pkg/config"
	"github.com/mentorlink/mentorlink-api/pkg/database"
	"github.com/mentorlink/mentorlink-api/pkg/logger"
	corsmiddleware "github.com/mentorlink/mentorlink-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mentorlink/mentorlink-api/pkg/middleware/requestid"
)

// @title MentorLink API
// @version 1.0.0
// @description Mentorship request lifecycle, conversations and notifications
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.UnreadTTL, logr, cfg.Cache.Enabled)
	} else {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.UnreadTTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	mentorshipRepo := repository.NewMentorshipRepository(db)
	chatRepo := repository.NewChatRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, cacheSvc, logr, cfg.Notifications)
	mentorshipSvc := service.NewMentorshipService(mentorshipRepo, userRepo, notificationSvc, validate, logr)
	chatSvc := service.NewChatService(chatRepo, mentorshipRepo, notificationSvc, cacheSvc, validate, logr)
	userSvc := service.NewUserService(userRepo, logr)
	reportSvc := service.NewReportService(mentorshipRepo, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	mentorshipHandler := handler.NewMentorshipHandler(mentorshipSvc)
	chatHandler := handler.NewChatHandler(chatSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	userHandler := handler.NewUserHandler(userSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/mentors", userHandler.ListMentors)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))
	{
		secured.POST("/mentorship", middleware.Audit(logr, "create", "mentorship_request"), mentorshipHandler.Create)
		secured.GET("/mentorship/my-requests", mentorshipHandler.ListMine)
		secured.GET("/mentorship/:id", mentorshipHandler.Get)
		secured.PUT("/mentorship/:id", middleware.Audit(logr, "transition", "mentorship_request"), mentorshipHandler.UpdateStatus)

		secured.GET("/chat/conversations/all", chatHandler.Conversations)
		secured.GET("/chat/unread/count", chatHandler.UnreadCount)
		secured.GET("/chat/:id", chatHandler.List)
		secured.POST("/chat/:id", chatHandler.Send)

		secured.GET("/notifications", notificationHandler.List)
		secured.GET("/notifications/unread/count", notificationHandler.UnreadCount)
		secured.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		secured.PUT("/notifications/:id/read", notificationHandler.MarkRead)
	}

	if cfg.Reports.Enabled {
		admin := secured.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		admin.GET("/reports/mentorship", reportHandler.MentorshipActivity)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
