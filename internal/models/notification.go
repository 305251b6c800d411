package models

import "time"

// NotificationKind is the closed set of system event tags.
type NotificationKind string

// Possible notification kinds. Approval is reserved for admin account flows
// handled outside this service.
const (
	NotificationBookingCreated NotificationKind = "booking-created"
	NotificationBookingUpdated NotificationKind = "booking-updated"
	NotificationMessage        NotificationKind = "message"
	NotificationApproval       NotificationKind = "approval"
)

// Notification is one entry in a recipient's mailbox. Entries are produced
// exclusively by the lifecycle orchestrator as a side effect of a transition
// or message send, and consumed by polling clients.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	Recipient string           `db:"recipient_id" json:"recipient_id"`
	Sender    *string          `db:"sender_id" json:"sender_id,omitempty"`
	Kind      NotificationKind `db:"kind" json:"kind"`
	Title     string           `db:"title" json:"title"`
	Body      string           `db:"body" json:"body"`
	Link      string           `db:"link" json:"link,omitempty"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
