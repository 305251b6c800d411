package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/pkg/config"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
	"github.com/mentorlink/mentorlink-api/pkg/jobs"
)

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByID(ctx context.Context, id string) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, recipientID string) error
	UnreadCount(ctx context.Context, recipientID string) (int, error)
}

// NotificationService owns the per-recipient mailbox and the post-commit
// outbox. Deliveries are decoupled from the primary write: the orchestrator
// enqueues after its own persistence succeeds, workers persist the entry, and
// a delivery that exhausts its retries is logged and dropped. The recipient
// still observes the underlying state change on its next poll.
type NotificationService struct {
	repo         notificationRepository
	cache        *CacheService
	outbox       *jobs.Queue
	mailboxLimit int
	logger       *zap.Logger
}

// NewNotificationService constructs the service and its outbox queue. Call
// Start before use and Stop on shutdown.
func NewNotificationService(repo notificationRepository, cache *CacheService, logger *zap.Logger, cfg config.NotificationsConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.MailboxLimit
	if limit <= 0 {
		limit = 20
	}
	s := &NotificationService{repo: repo, cache: cache, mailboxLimit: limit, logger: logger}
	s.outbox = jobs.NewQueue("notification-outbox", s.deliver, jobs.QueueConfig{
		Workers:    cfg.OutboxWorkers,
		MaxRetries: cfg.OutboxRetries,
		RetryDelay: cfg.OutboxRetryGap,
		Logger:     logger,
	})
	return s
}

// Start launches the outbox workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.outbox.Start(ctx)
}

// Stop drains the outbox workers.
func (s *NotificationService) Stop() {
	s.outbox.Stop()
}

// Notify queues a mailbox entry for asynchronous delivery. Never returns an
// error: a lost notification must not fail the primary action that produced
// it.
func (s *NotificationService) Notify(notification models.Notification) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(notification.Kind),
		Payload: notification,
	}
	if err := s.outbox.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("kind", string(notification.Kind)),
			zap.String("recipient", notification.Recipient),
			zap.Error(err))
	}
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(models.Notification)
	if !ok {
		return fmt.Errorf("unexpected outbox payload %T", job.Payload)
	}
	if err := s.repo.Create(ctx, &notification); err != nil {
		return err
	}
	_ = s.cache.Invalidate(ctx, unreadNotificationsKey(notification.Recipient))
	return nil
}

// List returns the caller's mailbox, newest first, capped at the configured
// limit.
func (s *NotificationService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Notification, error) {
	notifications, err := s.repo.ListByRecipient(ctx, claims.UserID, s.mailboxLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead flags one entry as read. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, id string, claims *models.JWTClaims) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if notification.Recipient != claims.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "not authorized for this notification")
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	_ = s.cache.Invalidate(ctx, unreadNotificationsKey(claims.UserID))
	return nil
}

// MarkAllRead flags every unread entry of the caller's mailbox. Idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, claims *models.JWTClaims) error {
	if err := s.repo.MarkAllRead(ctx, claims.UserID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	_ = s.cache.Invalidate(ctx, unreadNotificationsKey(claims.UserID))
	return nil
}

// UnreadCount returns the caller's unread mailbox size, served from cache
// when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, claims *models.JWTClaims) (int, error) {
	key := unreadNotificationsKey(claims.UserID)
	var cached int
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}
	count, err := s.repo.UnreadCount(ctx, claims.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	_ = s.cache.Set(ctx, key, count, 0)
	return count, nil
}

func unreadNotificationsKey(userID string) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}
