package models

import "time"

// ChatMessage is one entry in a request's conversation log. Sender and
// receiver are fixed at creation time from the parent request's participants;
// only the read flag ever changes, and only through the receiver's read.
type ChatMessage struct {
	ID         string    `db:"id" json:"id"`
	RequestID  string    `db:"request_id" json:"request_id"`
	SenderID   string    `db:"sender_id" json:"sender_id"`
	ReceiverID string    `db:"receiver_id" json:"receiver_id"`
	Body       string    `db:"body" json:"body"`
	Read       bool      `db:"read" json:"read"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ChatMessageDetail enriches a message with sender display info.
type ChatMessageDetail struct {
	ChatMessage
	SenderName   string `db:"sender_name" json:"sender_name"`
	SenderAvatar string `db:"sender_avatar" json:"sender_avatar,omitempty"`
}

// Conversation summarises one accepted request for the caller's inbox view:
// the request, its participants, the latest message and how many entries are
// still unread by the caller.
type Conversation struct {
	Request     MentorshipRequestDetail `json:"request"`
	LastMessage *ChatMessageDetail      `json:"last_message,omitempty"`
	UnreadCount int                     `json:"unread_count"`
}
