package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

type chatRepository interface {
	Create(ctx context.Context, message *models.ChatMessage) error
	FindDetailByID(ctx context.Context, id string) (*models.ChatMessageDetail, error)
	ListByRequest(ctx context.Context, requestID string) ([]models.ChatMessageDetail, error)
	LastMessage(ctx context.Context, requestID string) (*models.ChatMessageDetail, error)
	MarkRead(ctx context.Context, requestID, receiverID string) error
	UnreadCount(ctx context.Context, receiverID string) (int, error)
	UnreadCountByRequest(ctx context.Context, requestID, receiverID string) (int, error)
}

type requestReader interface {
	FindByID(ctx context.Context, id string) (*models.MentorshipRequest, error)
	ListByParticipant(ctx context.Context, userID string, status models.RequestStatus) ([]models.MentorshipRequestDetail, error)
}

// SendMessageRequest carries one chat message body.
type SendMessageRequest struct {
	Body string `json:"message" validate:"required"`
}

// ChatService guards the conversation log of each request. Writes require an
// accepted request and a participant sender; reads are open to both
// participants in every status so history survives completion.
type ChatService struct {
	repo      chatRepository
	requests  requestReader
	notifier  Notifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatService constructs ChatService.
func NewChatService(repo chatRepository, requests requestReader, notifier Notifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{repo: repo, requests: requests, notifier: notifier, cache: cache, validator: validate, logger: logger}
}

// Send appends a message to the conversation and notifies the receiver.
func (s *ChatService) Send(ctx context.Context, requestID string, claims *models.JWTClaims, req SendMessageRequest) (*models.ChatMessageDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload")
	}

	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsParticipant(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to send messages in this conversation")
	}
	if !request.Status.AllowsMessages() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, fmt.Sprintf("conversation is not open while the request is %s", request.Status))
	}

	message := &models.ChatMessage{
		RequestID:  requestID,
		SenderID:   claims.UserID,
		ReceiverID: request.Counterparty(claims.UserID),
		Body:       req.Body,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store message")
	}

	s.notifier.Notify(models.Notification{
		Recipient: message.ReceiverID,
		Sender:    &claims.UserID,
		Kind:      models.NotificationMessage,
		Title:     "New message",
		Body:      fmt.Sprintf("%s sent you a message", claims.FullName),
		Link:      fmt.Sprintf("/mentorship/chat/%s", requestID),
	})
	_ = s.cache.Invalidate(ctx, unreadMessagesKey(message.ReceiverID))

	detail, err := s.repo.FindDetailByID(ctx, message.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load message")
	}
	return detail, nil
}

// List returns the conversation in creation order and marks every message
// addressed to the caller as read. Repeated calls return identical content.
func (s *ChatService) List(ctx context.Context, requestID string, claims *models.JWTClaims) ([]models.ChatMessageDetail, error) {
	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !request.IsParticipant(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not authorized to view this conversation")
	}

	messages, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list messages")
	}

	if err := s.repo.MarkRead(ctx, requestID, claims.UserID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark messages read")
	}
	_ = s.cache.Invalidate(ctx, unreadMessagesKey(claims.UserID))

	return messages, nil
}

// UnreadCount returns how many messages across all conversations still await
// the caller, served from cache when warm.
func (s *ChatService) UnreadCount(ctx context.Context, claims *models.JWTClaims) (int, error) {
	key := unreadMessagesKey(claims.UserID)
	var cached int
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}
	count, err := s.repo.UnreadCount(ctx, claims.UserID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	_ = s.cache.Set(ctx, key, count, 0)
	return count, nil
}

// Conversations summarises the caller's accepted requests with their latest
// message and unread tally, freshest activity first.
func (s *ChatService) Conversations(ctx context.Context, claims *models.JWTClaims) ([]models.Conversation, error) {
	requests, err := s.requests.ListByParticipant(ctx, claims.UserID, models.RequestStatusAccepted)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list conversations")
	}

	conversations := make([]models.Conversation, 0, len(requests))
	for _, request := range requests {
		last, err := s.repo.LastMessage(ctx, request.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load last message")
		}
		unread, err := s.repo.UnreadCountByRequest(ctx, request.ID, claims.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
		}
		conversations = append(conversations, models.Conversation{
			Request:     request,
			LastMessage: last,
			UnreadCount: unread,
		})
	}
	return conversations, nil
}

func (s *ChatService) loadRequest(ctx context.Context, requestID string) (*models.MentorshipRequest, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentorship request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship request")
	}
	return request, nil
}

func unreadMessagesKey(userID string) string {
	return fmt.Sprintf("chat:unread:%s", userID)
}
