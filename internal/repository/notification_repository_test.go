package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

func newNotificationMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func notificationRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "recipient_id", "sender_id", "kind", "title", "body", "link", "read", "created_at"})
}

func TestNotificationRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	notification := &models.Notification{
		Recipient: "mentor-1",
		Kind:      models.NotificationBookingCreated,
		Title:     "New mentorship request",
		Body:      "Student One sent you a mentorship request",
	}
	err := repo.Create(context.Background(), notification)
	require.NoError(t, err)
	assert.NotEmpty(t, notification.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryListByRecipientDefaultsLimit(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	rows := notificationRows().
		AddRow("n-1", "mentor-1", nil, "booking-created", "New mentorship request", "Body", "", false, time.Now())
	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE recipient_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("mentor-1", 20).
		WillReturnRows(rows)

	notifications, err := repo.ListByRecipient(context.Background(), "mentor-1", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "n-1", notifications[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepositoryMarkAllRead(t *testing.T) {
	db, mock, cleanup := newNotificationMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(`UPDATE notifications SET read = TRUE WHERE recipient_id = \$1 AND read = FALSE`).
		WithArgs("mentor-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := repo.MarkAllRead(context.Background(), "mentor-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
