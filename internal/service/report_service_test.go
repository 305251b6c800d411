package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

type requestListerStub struct {
	requests []models.MentorshipRequestDetail
	filter   models.RequestFilter
}

func (s *requestListerStub) List(ctx context.Context, filter models.RequestFilter) ([]models.MentorshipRequestDetail, error) {
	s.filter = filter
	var out []models.MentorshipRequestDetail
	for _, r := range s.requests {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func reportFixture() (*ReportService, *requestListerStub) {
	lister := &requestListerStub{requests: []models.MentorshipRequestDetail{
		{
			MentorshipRequest: models.MentorshipRequest{
				ID: "req-1", Kind: models.RequestKindCall, Subject: "Career advice",
				Status: models.RequestStatusAccepted, CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			},
			StudentName: "Student One",
			MentorName:  "Mentor One",
		},
		{
			MentorshipRequest: models.MentorshipRequest{
				ID: "req-2", Kind: models.RequestKindMessage, Subject: "Code review",
				Status: models.RequestStatusPending, CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			},
			StudentName: "Student Two",
			MentorName:  "Mentor One",
		},
	}}
	return NewReportService(lister, zap.NewNop()), lister
}

func TestReportMentorshipActivityCSV(t *testing.T) {
	svc, _ := reportFixture()

	payload, contentType, err := svc.MentorshipActivity(context.Background(), "", ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(payload)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Student")
	assert.Contains(t, body, "Career advice")
	assert.Contains(t, body, "Code review")
}

func TestReportMentorshipActivityStatusFilter(t *testing.T) {
	svc, lister := reportFixture()

	payload, _, err := svc.MentorshipActivity(context.Background(), models.RequestStatusAccepted, "")
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, lister.filter.Status)
	assert.Contains(t, string(payload), "req-1")
	assert.NotContains(t, string(payload), "req-2")
}

func TestReportMentorshipActivityPDF(t *testing.T) {
	svc, _ := reportFixture()

	payload, contentType, err := svc.MentorshipActivity(context.Background(), "", ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestReportMentorshipActivityBadInputs(t *testing.T) {
	svc, _ := reportFixture()

	_, _, err := svc.MentorshipActivity(context.Background(), "archived", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, _, err = svc.MentorshipActivity(context.Background(), "", ReportFormat("xml"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
