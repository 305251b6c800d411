package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/pkg/config"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

type notificationRepoStub struct {
	mu       sync.Mutex
	entries  map[string]*models.Notification
	failures int
}

func newNotificationRepoStub() *notificationRepoStub {
	return &notificationRepoStub{entries: make(map[string]*models.Notification)}
}

func (s *notificationRepoStub) Create(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("storage unavailable")
	}
	copied := *notification
	s.entries[notification.ID] = &copied
	return nil
}

func (s *notificationRepoStub) FindByID(ctx context.Context, id string) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notification, ok := s.entries[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *notification
	return &copied, nil
}

func (s *notificationRepoStub) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Notification
	for _, notification := range s.entries {
		if notification.Recipient == recipientID {
			out = append(out, *notification)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *notificationRepoStub) MarkRead(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notification, ok := s.entries[id]; ok {
		notification.Read = true
	}
	return nil
}

func (s *notificationRepoStub) MarkAllRead(ctx context.Context, recipientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, notification := range s.entries {
		if notification.Recipient == recipientID {
			notification.Read = true
		}
	}
	return nil
}

func (s *notificationRepoStub) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, notification := range s.entries {
		if notification.Recipient == recipientID && !notification.Read {
			count++
		}
	}
	return count, nil
}

func (s *notificationRepoStub) stored() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func newNotificationFixture(t *testing.T, repo *notificationRepoStub) *NotificationService {
	t.Helper()
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	svc := NewNotificationService(repo, cache, zap.NewNop(), config.NotificationsConfig{
		MailboxLimit:   20,
		OutboxWorkers:  1,
		OutboxRetries:  2,
		OutboxRetryGap: 5 * time.Millisecond,
	})
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestNotificationOutboxDelivers(t *testing.T) {
	repo := newNotificationRepoStub()
	svc := newNotificationFixture(t, repo)

	svc.Notify(models.Notification{
		Recipient: "mentor-1",
		Kind:      models.NotificationBookingCreated,
		Title:     "New mentorship request",
		Body:      "Student One has requested a call with you",
	})

	require.Eventually(t, func() bool { return repo.stored() == 1 }, time.Second, 5*time.Millisecond)

	notifications, err := svc.List(context.Background(), mentorClaims())
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New mentorship request", notifications[0].Title)
	assert.False(t, notifications[0].Read)
}

func TestNotificationOutboxRetriesTransientFailure(t *testing.T) {
	repo := newNotificationRepoStub()
	repo.failures = 1
	svc := newNotificationFixture(t, repo)

	svc.Notify(models.Notification{Recipient: "mentor-1", Kind: models.NotificationMessage, Title: "New message", Body: "hello"})

	require.Eventually(t, func() bool { return repo.stored() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNotificationOutboxDropsAfterRetriesExhausted(t *testing.T) {
	repo := newNotificationRepoStub()
	repo.failures = 10
	svc := newNotificationFixture(t, repo)

	svc.Notify(models.Notification{Recipient: "mentor-1", Kind: models.NotificationMessage, Title: "doomed", Body: "x"})

	// The poisoned entry burns its retries and is dropped; a later entry
	// still gets through.
	time.Sleep(50 * time.Millisecond)
	repo.mu.Lock()
	repo.failures = 0
	repo.mu.Unlock()

	svc.Notify(models.Notification{Recipient: "mentor-1", Kind: models.NotificationMessage, Title: "healthy", Body: "y"})
	require.Eventually(t, func() bool { return repo.stored() >= 1 }, time.Second, 5*time.Millisecond)
}

func TestNotificationMarkReadRecipientOnly(t *testing.T) {
	repo := newNotificationRepoStub()
	repo.entries["n-1"] = &models.Notification{ID: "n-1", Recipient: "mentor-1", Title: "t"}
	svc := newNotificationFixture(t, repo)

	err := svc.MarkRead(context.Background(), "n-1", studentClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.MarkRead(context.Background(), "n-1", mentorClaims())
	require.NoError(t, err)
	assert.True(t, repo.entries["n-1"].Read)

	// Marking twice is a no-op, not an error.
	require.NoError(t, svc.MarkRead(context.Background(), "n-1", mentorClaims()))
}

func TestNotificationMarkReadUnknown(t *testing.T) {
	svc := newNotificationFixture(t, newNotificationRepoStub())

	err := svc.MarkRead(context.Background(), "missing", mentorClaims())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNotificationMarkAllReadAndUnreadCount(t *testing.T) {
	repo := newNotificationRepoStub()
	repo.entries["n-1"] = &models.Notification{ID: "n-1", Recipient: "mentor-1"}
	repo.entries["n-2"] = &models.Notification{ID: "n-2", Recipient: "mentor-1"}
	repo.entries["n-3"] = &models.Notification{ID: "n-3", Recipient: "student-1"}
	svc := newNotificationFixture(t, repo)

	count, err := svc.UnreadCount(context.Background(), mentorClaims())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkAllRead(context.Background(), mentorClaims()))

	count, err = svc.UnreadCount(context.Background(), mentorClaims())
	require.NoError(t, err)
	assert.Zero(t, count)

	// The other mailbox is untouched.
	count, err = svc.UnreadCount(context.Background(), studentClaims())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
