package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

const requestDetailColumns = `r.id, r.student_id, r.mentor_id, r.kind, r.subject, r.body,
        r.preferred_date, r.preferred_time, r.status, r.scheduled_date, r.scheduled_time,
        r.meeting_link, r.notes, r.created_at, r.updated_at,
        s.full_name AS student_name, s.avatar AS student_avatar,
        m.full_name AS mentor_name, m.avatar AS mentor_avatar, m.occupation AS mentor_occupation`

const requestDetailJoins = `FROM mentorship_requests r
        LEFT JOIN users s ON s.id = r.student_id
        LEFT JOIN users m ON m.id = r.mentor_id`

// MentorshipRepository provides persistence for mentorship requests.
type MentorshipRepository struct {
	db *sqlx.DB
}

// NewMentorshipRepository creates the repository.
func NewMentorshipRepository(db *sqlx.DB) *MentorshipRepository {
	return &MentorshipRepository{db: db}
}

// Create inserts a new request in pending state.
func (r *MentorshipRepository) Create(ctx context.Context, request *models.MentorshipRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now

	const query = `INSERT INTO mentorship_requests (id, student_id, mentor_id, kind, subject, body, preferred_date, preferred_time, status, created_at, updated_at)
VALUES (:id, :student_id, :mentor_id, :kind, :subject, :body, :preferred_date, :preferred_time, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create mentorship request: %w", err)
	}
	return nil
}

// FindByID returns a request by identifier.
func (r *MentorshipRepository) FindByID(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	const query = `SELECT id, student_id, mentor_id, kind, subject, body, preferred_date, preferred_time, status, scheduled_date, scheduled_time, meeting_link, notes, created_at, updated_at
FROM mentorship_requests WHERE id = $1 LIMIT 1`
	var request models.MentorshipRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find mentorship request: %w", err)
	}
	return &request, nil
}

// FindDetailByID returns a request with participant display info.
func (r *MentorshipRepository) FindDetailByID(ctx context.Context, id string) (*models.MentorshipRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE r.id = $1 LIMIT 1", requestDetailColumns, requestDetailJoins)
	var detail models.MentorshipRequestDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find mentorship request detail: %w", err)
	}
	return &detail, nil
}

// List returns requests matching the filter, newest first.
func (r *MentorshipRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.MentorshipRequestDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.MentorID != "" {
		conditions = append(conditions, fmt.Sprintf("r.mentor_id = $%d", len(args)+1))
		args = append(args, filter.MentorID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf("SELECT %s %s", requestDetailColumns, requestDetailJoins)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.created_at DESC"

	var requests []models.MentorshipRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list mentorship requests: %w", err)
	}
	return requests, nil
}

// ListByParticipant returns requests where the identity is student or mentor,
// optionally narrowed to one status, newest update first.
func (r *MentorshipRepository) ListByParticipant(ctx context.Context, userID string, status models.RequestStatus) ([]models.MentorshipRequestDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE (r.student_id = $1 OR r.mentor_id = $1)", requestDetailColumns, requestDetailJoins)
	args := []interface{}{userID}
	if status != "" {
		query += " AND r.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY r.updated_at DESC"

	var requests []models.MentorshipRequestDetail
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list requests by participant: %w", err)
	}
	return requests, nil
}

// TransitionStatus applies a status change as an atomic check-and-set keyed
// on the expected prior status. It returns false when no row matched, i.e.
// the stored status was no longer `from` by the time the update ran.
func (r *MentorshipRepository) TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus, upd models.RequestUpdate) (bool, error) {
	const query = `UPDATE mentorship_requests
SET status = $3,
    scheduled_date = COALESCE($4, scheduled_date),
    scheduled_time = COALESCE($5, scheduled_time),
    meeting_link = COALESCE($6, meeting_link),
    notes = COALESCE($7, notes),
    updated_at = $8
WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, to, upd.ScheduledDate, upd.ScheduledTime, upd.MeetingLink, upd.Notes, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("transition mentorship request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition mentorship request: %w", err)
	}
	return affected == 1, nil
}
