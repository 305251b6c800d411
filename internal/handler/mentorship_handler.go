package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorlink/mentorlink-api/internal/service"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
	"github.com/mentorlink/mentorlink-api/pkg/response"
)

// MentorshipHandler exposes the mentorship request lifecycle endpoints.
type MentorshipHandler struct {
	mentorship *service.MentorshipService
}

// NewMentorshipHandler constructs MentorshipHandler.
func NewMentorshipHandler(mentorship *service.MentorshipService) *MentorshipHandler {
	return &MentorshipHandler{mentorship: mentorship}
}

// Create godoc
// @Summary Request mentorship from a mentor
// @Tags Mentorship
// @Accept json
// @Produce json
// @Param payload body service.BookMentorRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /mentorship [post]
func (h *MentorshipHandler) Create(c *gin.Context) {
	var req service.BookMentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.mentorship.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListMine godoc
// @Summary List the caller's mentorship requests
// @Tags Mentorship
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentorship/my-requests [get]
func (h *MentorshipHandler) ListMine(c *gin.Context) {
	requests, err := h.mentorship.ListMyRequests(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Get godoc
// @Summary Get one mentorship request
// @Tags Mentorship
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /mentorship/{id} [get]
func (h *MentorshipHandler) Get(c *gin.Context) {
	request, err := h.mentorship.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// UpdateStatus godoc
// @Summary Accept, reject or complete a mentorship request
// @Tags Mentorship
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.UpdateStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /mentorship/{id} [put]
func (h *MentorshipHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.mentorship.Transition(c.Request.Context(), c.Param("id"), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
