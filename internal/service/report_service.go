package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
	"github.com/mentorlink/mentorlink-api/pkg/export"
)

// ReportFormat selects the export encoding.
type ReportFormat string

// Supported export formats.
const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type requestLister interface {
	List(ctx context.Context, filter models.RequestFilter) ([]models.MentorshipRequestDetail, error)
}

// ReportService renders the admin mentorship activity export.
type ReportService struct {
	requests requestLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewReportService constructs ReportService.
func NewReportService(requests requestLister, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		requests: requests,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
	}
}

// MentorshipActivity renders all mentorship requests, optionally narrowed to
// one status, as CSV or PDF bytes plus the response content type.
func (s *ReportService) MentorshipActivity(ctx context.Context, status models.RequestStatus, format ReportFormat) ([]byte, string, error) {
	if status != "" && !status.Valid() {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown status filter")
	}

	requests, err := s.requests.List(ctx, models.RequestFilter{Status: status})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship requests")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Student", "Mentor", "Kind", "Subject", "Status", "Created"},
	}
	for _, r := range requests {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":      r.ID,
			"Student": r.StudentName,
			"Mentor":  r.MentorName,
			"Kind":    string(r.Kind),
			"Subject": r.Subject,
			"Status":  string(r.Status),
			"Created": r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	switch format {
	case ReportFormatCSV, "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Mentorship activity")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
}
