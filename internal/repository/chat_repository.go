package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

const messageDetailColumns = `c.id, c.request_id, c.sender_id, c.receiver_id, c.body, c.read, c.created_at,
        u.full_name AS sender_name, u.avatar AS sender_avatar`

const messageDetailJoins = `FROM chat_messages c
        LEFT JOIN users u ON u.id = c.sender_id`

// ChatRepository provides persistence for the append-only conversation log.
type ChatRepository struct {
	db *sqlx.DB
}

// NewChatRepository creates the repository.
func NewChatRepository(db *sqlx.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// Create appends a message to a request's conversation.
func (r *ChatRepository) Create(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO chat_messages (id, request_id, sender_id, receiver_id, body, read, created_at)
VALUES (:id, :request_id, :sender_id, :receiver_id, :body, :read, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, message); err != nil {
		return fmt.Errorf("create chat message: %w", err)
	}
	return nil
}

// FindDetailByID returns a message with sender display info.
func (r *ChatRepository) FindDetailByID(ctx context.Context, id string) (*models.ChatMessageDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1 LIMIT 1", messageDetailColumns, messageDetailJoins)
	var detail models.ChatMessageDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find chat message: %w", err)
	}
	return &detail, nil
}

// ListByRequest returns a conversation in creation order. The log is never
// reordered on read.
func (r *ChatRepository) ListByRequest(ctx context.Context, requestID string) ([]models.ChatMessageDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.request_id = $1 ORDER BY c.created_at ASC", messageDetailColumns, messageDetailJoins)
	var messages []models.ChatMessageDetail
	if err := r.db.SelectContext(ctx, &messages, query, requestID); err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	return messages, nil
}

// LastMessage returns the newest message of a conversation, or nil when the
// conversation is empty.
func (r *ChatRepository) LastMessage(ctx context.Context, requestID string) (*models.ChatMessageDetail, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.request_id = $1 ORDER BY c.created_at DESC LIMIT 1", messageDetailColumns, messageDetailJoins)
	var detail models.ChatMessageDetail
	if err := r.db.GetContext(ctx, &detail, query, requestID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("last chat message: %w", err)
	}
	return &detail, nil
}

// MarkRead flags every unread message addressed to the receiver within one
// conversation. Idempotent: already-read messages are untouched.
func (r *ChatRepository) MarkRead(ctx context.Context, requestID, receiverID string) error {
	const query = `UPDATE chat_messages SET read = TRUE WHERE request_id = $1 AND receiver_id = $2 AND read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, requestID, receiverID); err != nil {
		return fmt.Errorf("mark chat messages read: %w", err)
	}
	return nil
}

// UnreadCount counts unread messages addressed to the receiver across all
// conversations.
func (r *ChatRepository) UnreadCount(ctx context.Context, receiverID string) (int, error) {
	const query = `SELECT COUNT(*) FROM chat_messages WHERE receiver_id = $1 AND read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, receiverID); err != nil {
		return 0, fmt.Errorf("count unread chat messages: %w", err)
	}
	return count, nil
}

// UnreadCountByRequest counts unread messages addressed to the receiver in
// one conversation.
func (r *ChatRepository) UnreadCountByRequest(ctx context.Context, requestID, receiverID string) (int, error) {
	const query = `SELECT COUNT(*) FROM chat_messages WHERE request_id = $1 AND receiver_id = $2 AND read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, requestID, receiverID); err != nil {
		return 0, fmt.Errorf("count unread chat messages for request: %w", err)
	}
	return count, nil
}
