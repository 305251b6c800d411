package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/pkg/config"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

// flowFixture wires the mentorship, chat and notification services together
// over in-memory stores, with the real outbox in between.
type flowFixture struct {
	mentorship    *MentorshipService
	chat          *ChatService
	notifications *NotificationService
	requests      *mentorshipRepoStub
}

func newFlowFixture(t *testing.T) *flowFixture {
	t.Helper()

	requests := newMentorshipRepoStub()
	users := &userReaderStub{users: map[string]*models.User{
		"mentor-1":  {ID: "mentor-1", Role: models.RoleMentor, FullName: "Mentor One", Approved: true},
		"student-1": {ID: "student-1", Role: models.RoleStudent, FullName: "Student One"},
	}}
	mailbox := newNotificationRepoStub()
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)

	notifications := NewNotificationService(mailbox, cache, zap.NewNop(), config.NotificationsConfig{
		MailboxLimit:   20,
		OutboxWorkers:  1,
		OutboxRetries:  2,
		OutboxRetryGap: 5 * time.Millisecond,
	})
	notifications.Start(context.Background())
	t.Cleanup(notifications.Stop)

	return &flowFixture{
		mentorship:    NewMentorshipService(requests, users, notifications, nil, zap.NewNop()),
		chat:          NewChatService(newChatRepoStub(), &mentorshipReaderAdapter{requests}, notifications, cache, nil, zap.NewNop()),
		notifications: notifications,
		requests:      requests,
	}
}

// mentorshipReaderAdapter exposes the request store to the chat service.
type mentorshipReaderAdapter struct {
	repo *mentorshipRepoStub
}

func (a *mentorshipReaderAdapter) FindByID(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	return a.repo.FindByID(ctx, id)
}

func (a *mentorshipReaderAdapter) ListByParticipant(ctx context.Context, userID string, status models.RequestStatus) ([]models.MentorshipRequestDetail, error) {
	var out []models.MentorshipRequestDetail
	for _, request := range a.repo.requests {
		if request.StudentID != userID && request.MentorID != userID {
			continue
		}
		if status != "" && request.Status != status {
			continue
		}
		out = append(out, models.MentorshipRequestDetail{MentorshipRequest: *request})
	}
	return out, nil
}

func (f *flowFixture) awaitUnread(t *testing.T, claims *models.JWTClaims, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		count, err := f.notifications.UnreadCount(context.Background(), claims)
		return err == nil && count == want
	}, time.Second, 5*time.Millisecond)
}

func TestLifecycleFromRequestToCompletion(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()
	student := studentClaims()
	mentor := mentorClaims()

	// Student opens a request; the mentor is told.
	created, err := f.mentorship.Create(ctx, student, BookMentorRequest{
		MentorID: "mentor-1",
		Kind:     models.RequestKindCall,
		Subject:  "Resume review",
		Body:     "Could you look over my resume?",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, created.Status)
	f.awaitUnread(t, mentor, 1)

	mailbox, err := f.notifications.List(ctx, mentor)
	require.NoError(t, err)
	require.Len(t, mailbox, 1)
	assert.Equal(t, models.NotificationBookingCreated, mailbox[0].Kind)

	// Mentor accepts with a schedule; the student is told.
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	slot := "15:00"
	accepted, err := f.mentorship.Transition(ctx, created.ID, mentor, UpdateStatusRequest{
		Status:        models.RequestStatusAccepted,
		ScheduledDate: &date,
		ScheduledTime: &slot,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, accepted.Status)
	f.awaitUnread(t, student, 1)

	// Conversation opens: student writes, mentor reads and replies.
	sent, err := f.chat.Send(ctx, created.ID, student, SendMessageRequest{Body: "Hi!"})
	require.NoError(t, err)
	assert.Equal(t, "student-1", sent.SenderID)
	assert.Equal(t, "mentor-1", sent.ReceiverID)
	assert.False(t, sent.Read)
	f.awaitUnread(t, mentor, 2)

	messages, err := f.chat.List(ctx, created.ID, mentor)
	require.NoError(t, err)
	require.Len(t, messages, 1)

	_, err = f.chat.Send(ctx, created.ID, mentor, SendMessageRequest{Body: "Let's start"})
	require.NoError(t, err)

	messages, err = f.chat.List(ctx, created.ID, student)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Hi!", messages[0].Body)
	assert.Equal(t, "Let's start", messages[1].Body)
	assert.True(t, messages[0].Read)

	// Mentor completes; the conversation closes but history stays readable.
	completed, err := f.mentorship.Transition(ctx, created.ID, mentor, UpdateStatusRequest{Status: models.RequestStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusCompleted, completed.Status)

	for _, claims := range []*models.JWTClaims{student, mentor} {
		_, err = f.chat.Send(ctx, created.ID, claims, SendMessageRequest{Body: "one more"})
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrInvalidState.Code, appErrors.FromError(err).Code)
	}

	messages, err = f.chat.List(ctx, created.ID, student)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Hi!", messages[0].Body)
	assert.Equal(t, "Let's start", messages[1].Body)
}

func TestLifecycleStudentCannotTransition(t *testing.T) {
	f := newFlowFixture(t)
	ctx := context.Background()

	created, err := f.mentorship.Create(ctx, studentClaims(), BookMentorRequest{
		MentorID: "mentor-1",
		Kind:     models.RequestKindMessage,
		Subject:  "Intro",
		Body:     "Hello!",
	})
	require.NoError(t, err)

	_, err = f.mentorship.Transition(ctx, created.ID, studentClaims(), UpdateStatusRequest{Status: models.RequestStatusAccepted})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Equal(t, models.RequestStatusPending, f.requests.requests[created.ID].Status)
}
