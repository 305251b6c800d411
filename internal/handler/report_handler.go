package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/pkg/response"
)

// ReportHandler exposes admin-only activity exports.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// MentorshipActivity godoc
// @Summary Export mentorship request activity
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param status query string false "Filter by request status"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /admin/reports/mentorship [get]
func (h *ReportHandler) MentorshipActivity(c *gin.Context) {
	status := models.RequestStatus(c.Query("status"))
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))

	payload, contentType, err := h.reports.MentorshipActivity(c.Request.Context(), status, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("mentorship-activity-%s.%s", time.Now().UTC().Format("2006-01-02"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
