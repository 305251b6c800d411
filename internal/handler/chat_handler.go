package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/mentorlink-api/internal/middleware"
	"github.com/mentorlink/mentorlink-api/internal/service"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
	"github.com/mentorlink/mentorlink-api/pkg/response"
)

// ChatHandler exposes the per-request conversation endpoints.
type ChatHandler struct {
	chat *service.ChatService
}

// NewChatHandler constructs ChatHandler.
func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Send godoc
// @Summary Send a message in a mentorship conversation
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.SendMessageRequest true "Message payload"
// @Success 201 {object} response.Envelope
// @Router /chat/{id} [post]
func (h *ChatHandler) Send(c *gin.Context) {
	var req service.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	message, err := h.chat.Send(c.Request.Context(), c.Param("id"), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, message)
}

// List godoc
// @Summary List a conversation's messages
// @Description Returns the full message history oldest first. Messages addressed
// @Description to the caller are marked read as a side effect.
// @Tags Chat
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /chat/{id} [get]
func (h *ChatHandler) List(c *gin.Context) {
	messages, err := h.chat.List(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, messages, nil)
}

// Conversations godoc
// @Summary List the caller's open conversations
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/conversations/all [get]
func (h *ChatHandler) Conversations(c *gin.Context) {
	conversations, err := h.chat.Conversations(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, conversations, nil)
}

// UnreadCount godoc
// @Summary Count the caller's unread messages
// @Tags Chat
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /chat/unread/count [get]
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	count, err := h.chat.UnreadCount(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"count": count}, nil, middleware.ExtractMeta(c))
}
