package models

import "time"

// RequestStatus represents the lifecycle state of a mentorship request.
type RequestStatus string

// Possible request statuses. Pending is the initial state; rejected and
// completed are terminal.
const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusAccepted  RequestStatus = "accepted"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
)

// Valid reports whether the status is a known lifecycle state.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave this status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusRejected || s == RequestStatusCompleted
}

// AllowsMessages reports whether new chat messages may be appended while the
// request is in this status. Completed conversations stay readable but are
// frozen.
func (s RequestStatus) AllowsMessages() bool {
	return s == RequestStatusAccepted
}

// RequestKind describes the format the student asked for. Descriptive only;
// it never affects authorization.
type RequestKind string

// Possible request kinds.
const (
	RequestKindCall    RequestKind = "call"
	RequestKindMessage RequestKind = "message"
)

// Valid reports whether the kind is part of the closed set.
func (k RequestKind) Valid() bool {
	return k == RequestKindCall || k == RequestKindMessage
}

// ParticipantRole tags which side of a request an identity is on.
type ParticipantRole string

// The two participant roles on a request.
const (
	ParticipantStudent ParticipantRole = "student"
	ParticipantMentor  ParticipantRole = "mentor"
)

// TransitionRule binds one legal status edge to the participant allowed to
// drive it and the side data that edge accepts. Keeping legality, actor and
// payload in a single row prevents a structurally valid transition from the
// wrong actor, and vice versa.
type TransitionRule struct {
	From            RequestStatus
	To              RequestStatus
	Actor           ParticipantRole
	AcceptsSchedule bool
	AcceptsNotes    bool
}

// transitionTable is the complete set of legal edges. No other edge exists.
var transitionTable = []TransitionRule{
	{From: RequestStatusPending, To: RequestStatusAccepted, Actor: ParticipantMentor, AcceptsSchedule: true},
	{From: RequestStatusPending, To: RequestStatusRejected, Actor: ParticipantMentor, AcceptsNotes: true},
	{From: RequestStatusAccepted, To: RequestStatusCompleted, Actor: ParticipantMentor},
}

// FindTransition returns the rule for the given edge, if one exists.
func FindTransition(from, to RequestStatus) (TransitionRule, bool) {
	for _, rule := range transitionTable {
		if rule.From == from && rule.To == to {
			return rule, true
		}
	}
	return TransitionRule{}, false
}

// MentorshipRequest is a student's ask for a mentor's time. Participants,
// kind, subject and the preferred slot are immutable after creation; status
// is the sole driver of authorization and terminal-state logic.
type MentorshipRequest struct {
	ID            string        `db:"id" json:"id"`
	StudentID     string        `db:"student_id" json:"student_id"`
	MentorID      string        `db:"mentor_id" json:"mentor_id"`
	Kind          RequestKind   `db:"kind" json:"kind"`
	Subject       string        `db:"subject" json:"subject"`
	Body          string        `db:"body" json:"body"`
	PreferredDate *time.Time    `db:"preferred_date" json:"preferred_date,omitempty"`
	PreferredTime *string       `db:"preferred_time" json:"preferred_time,omitempty"`
	Status        RequestStatus `db:"status" json:"status"`
	ScheduledDate *time.Time    `db:"scheduled_date" json:"scheduled_date,omitempty"`
	ScheduledTime *string       `db:"scheduled_time" json:"scheduled_time,omitempty"`
	MeetingLink   *string       `db:"meeting_link" json:"meeting_link,omitempty"`
	Notes         *string       `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// ParticipantRole resolves which side of the request the identity is on.
func (r *MentorshipRequest) ParticipantRole(userID string) (ParticipantRole, bool) {
	switch userID {
	case r.StudentID:
		return ParticipantStudent, true
	case r.MentorID:
		return ParticipantMentor, true
	}
	return "", false
}

// IsParticipant reports whether the identity is bound to the request.
func (r *MentorshipRequest) IsParticipant(userID string) bool {
	_, ok := r.ParticipantRole(userID)
	return ok
}

// Counterparty returns the other participant's identity.
func (r *MentorshipRequest) Counterparty(userID string) string {
	if userID == r.StudentID {
		return r.MentorID
	}
	return r.StudentID
}

// RequestUpdate carries the side data a transition may write. Nil fields are
// left untouched.
type RequestUpdate struct {
	ScheduledDate *time.Time
	ScheduledTime *string
	MeetingLink   *string
	Notes         *string
}

// RequestFilter provides filters for listing mentorship requests.
type RequestFilter struct {
	StudentID string
	MentorID  string
	Status    RequestStatus
}

// MentorshipRequestDetail enriches a request with participant display info.
type MentorshipRequestDetail struct {
	MentorshipRequest
	StudentName      string `db:"student_name" json:"student_name"`
	StudentAvatar    string `db:"student_avatar" json:"student_avatar,omitempty"`
	MentorName       string `db:"mentor_name" json:"mentor_name"`
	MentorAvatar     string `db:"mentor_avatar" json:"mentor_avatar,omitempty"`
	MentorOccupation string `db:"mentor_occupation" json:"mentor_occupation,omitempty"`
}
