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

func newChatMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func messageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "request_id", "sender_id", "receiver_id", "body", "read", "created_at",
		"sender_name", "sender_avatar",
	})
}

func TestChatRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	message := &models.ChatMessage{
		RequestID:  "req-1",
		SenderID:   "student-1",
		ReceiverID: "mentor-1",
		Body:       "Hi, thanks for accepting!",
	}
	err := repo.Create(context.Background(), message)
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryListByRequestOrdersOldestFirst(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	now := time.Now()
	rows := messageRows().
		AddRow("msg-1", "req-1", "student-1", "mentor-1", "first", true, now.Add(-time.Minute), "Student One", "").
		AddRow("msg-2", "req-1", "mentor-1", "student-1", "second", false, now, "Mentor One", "")
	mock.ExpectQuery(`SELECT .+ FROM chat_messages c .+ WHERE c\.request_id = \$1 ORDER BY c\.created_at ASC`).
		WithArgs("req-1").
		WillReturnRows(rows)

	messages, err := repo.ListByRequest(context.Background(), "req-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "msg-1", messages[0].ID)
	assert.Equal(t, "msg-2", messages[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryLastMessageEmptyConversation(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM chat_messages c .+ ORDER BY c\.created_at DESC LIMIT 1`).
		WithArgs("req-1").
		WillReturnRows(messageRows())

	last, err := repo.LastMessage(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Nil(t, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryMarkRead(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectExec(`UPDATE chat_messages SET read = TRUE WHERE request_id = \$1 AND receiver_id = \$2 AND read = FALSE`).
		WithArgs("req-1", "mentor-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := repo.MarkRead(context.Background(), "req-1", "mentor-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepositoryUnreadCount(t *testing.T) {
	db, mock, cleanup := newChatMock(t)
	defer cleanup()
	repo := NewChatRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM chat_messages WHERE receiver_id = \$1 AND read = FALSE`).
		WithArgs("mentor-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.UnreadCount(context.Background(), "mentor-1")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
