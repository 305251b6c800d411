package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

type mentorshipRepository interface {
	Create(ctx context.Context, request *models.MentorshipRequest) error
	FindByID(ctx context.Context, id string) (*models.MentorshipRequest, error)
	FindDetailByID(ctx context.Context, id string) (*models.MentorshipRequestDetail, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.MentorshipRequestDetail, error)
	TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus, upd models.RequestUpdate) (bool, error)
}

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Notifier dispatches mailbox entries after the primary write has committed.
type Notifier interface {
	Notify(notification models.Notification)
}

// BookMentorRequest describes a student's mentorship ask.
type BookMentorRequest struct {
	MentorID      string             `json:"mentor_id" validate:"required"`
	Kind          models.RequestKind `json:"kind" validate:"required,oneof=call message"`
	Subject       string             `json:"subject" validate:"required"`
	Body          string             `json:"body" validate:"required"`
	PreferredDate *time.Time         `json:"preferred_date"`
	PreferredTime *string            `json:"preferred_time"`
}

// UpdateStatusRequest describes a mentor's transition of a request.
type UpdateStatusRequest struct {
	Status        models.RequestStatus `json:"status" validate:"required"`
	ScheduledDate *time.Time           `json:"scheduled_date"`
	ScheduledTime *string              `json:"scheduled_time"`
	MeetingLink   *string              `json:"meeting_link"`
	Notes         *string              `json:"notes"`
}

// MentorshipService is the single entry point that mutates a mentorship
// request or produces a notification for one. Precondition checks and the
// status write happen in one conditional update; notification delivery is
// handed to the outbox afterwards and may fail independently.
type MentorshipService struct {
	repo      mentorshipRepository
	users     userReader
	notifier  Notifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMentorshipService constructs MentorshipService.
func NewMentorshipService(repo mentorshipRepository, users userReader, notifier Notifier, validate *validator.Validate, logger *zap.Logger) *MentorshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorshipService{repo: repo, users: users, notifier: notifier, validator: validate, logger: logger}
}

// Create opens a new request in pending state and notifies the mentor.
func (s *MentorshipService) Create(ctx context.Context, claims *models.JWTClaims, req BookMentorRequest) (*models.MentorshipRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid mentorship request payload")
	}
	if req.MentorID == claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot request mentorship from yourself")
	}

	mentor, err := s.users.FindByID(ctx, req.MentorID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	if mentor.Role != models.RoleMentor {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
	}

	request := &models.MentorshipRequest{
		StudentID:     claims.UserID,
		MentorID:      req.MentorID,
		Kind:          req.Kind,
		Subject:       req.Subject,
		Body:          req.Body,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Status:        models.RequestStatusPending,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create mentorship request")
	}

	s.notifier.Notify(models.Notification{
		Recipient: req.MentorID,
		Sender:    &claims.UserID,
		Kind:      models.NotificationBookingCreated,
		Title:     "New mentorship request",
		Body:      fmt.Sprintf("%s has requested a %s with you regarding %q.", claims.FullName, request.Kind, request.Subject),
		Link:      "/mentorship/requests",
	})

	detail, err := s.repo.FindDetailByID(ctx, request.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}
	return detail, nil
}

// ListMyRequests returns the caller's requests, newest first. Mentors see
// requests addressed to them, everyone else the requests they opened.
func (s *MentorshipService) ListMyRequests(ctx context.Context, claims *models.JWTClaims) ([]models.MentorshipRequestDetail, error) {
	filter := models.RequestFilter{}
	if claims.Role == models.RoleMentor {
		filter.MentorID = claims.UserID
	} else {
		filter.StudentID = claims.UserID
	}
	requests, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentorship requests")
	}
	return requests, nil
}

// Get returns one request. Only its participants may read it.
func (s *MentorshipService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.MentorshipRequestDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentorship request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}
	if !detail.IsParticipant(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this request")
	}
	return detail, nil
}

// Transition moves a request along one edge of the status graph. The write
// is a check-and-set keyed on the loaded status, so two racing transitions
// resolve to exactly one winner; the loser surfaces an invalid-state error.
func (s *MentorshipService) Transition(ctx context.Context, id string, claims *models.JWTClaims, req UpdateStatusRequest) (*models.MentorshipRequestDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentorship request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}

	if claims.UserID != request.MentorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the mentor on the request may update its status")
	}

	rule, ok := models.FindTransition(request.Status, req.Status)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("cannot move request from %s to %s", request.Status, req.Status))
	}

	var upd models.RequestUpdate
	if rule.AcceptsSchedule {
		upd.ScheduledDate = req.ScheduledDate
		upd.ScheduledTime = req.ScheduledTime
		upd.MeetingLink = req.MeetingLink
	}
	if rule.AcceptsNotes {
		upd.Notes = req.Notes
	}

	applied, err := s.repo.TransitionStatus(ctx, id, request.Status, req.Status, upd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update mentorship request")
	}
	if !applied {
		// Someone else moved the request between our read and our write.
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("request is no longer %s", request.Status))
	}

	s.notifyStudent(request, req.Status, claims)

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}
	return detail, nil
}

// notifyStudent emits the booking-updated entry for accepted and rejected
// outcomes. Completion stays silent: it only closes the mentor's own records.
func (s *MentorshipService) notifyStudent(request *models.MentorshipRequest, status models.RequestStatus, claims *models.JWTClaims) {
	var title, body string
	switch status {
	case models.RequestStatusAccepted:
		title = "Mentorship request accepted"
		body = "Good news! Your request has been accepted. Check details for the scheduled time."
	case models.RequestStatusRejected:
		title = "Mentorship request update"
		body = "Your request was not accepted at this time."
	default:
		return
	}

	s.notifier.Notify(models.Notification{
		Recipient: request.StudentID,
		Sender:    &claims.UserID,
		Kind:      models.NotificationBookingUpdated,
		Title:     title,
		Body:      body,
		Link:      "/mentorship/my-requests",
	})
}
