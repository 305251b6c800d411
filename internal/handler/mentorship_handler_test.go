package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorlink/mentorlink-api/internal/middleware"
	"github.com/mentorlink/mentorlink-api/internal/models"
	"github.com/mentorlink/mentorlink-api/internal/service"
	"github.com/mentorlink/mentorlink-api/pkg/response"
)

type requestStoreMock struct {
	requests map[string]*models.MentorshipRequest
}

func (m *requestStoreMock) Create(ctx context.Context, request *models.MentorshipRequest) error {
	if request.ID == "" {
		request.ID = "req-new"
	}
	m.requests[request.ID] = request
	return nil
}

func (m *requestStoreMock) FindByID(ctx context.Context, id string) (*models.MentorshipRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return request, nil
}

func (m *requestStoreMock) FindDetailByID(ctx context.Context, id string) (*models.MentorshipRequestDetail, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.MentorshipRequestDetail{MentorshipRequest: *request}, nil
}

func (m *requestStoreMock) List(ctx context.Context, filter models.RequestFilter) ([]models.MentorshipRequestDetail, error) {
	return nil, nil
}

func (m *requestStoreMock) TransitionStatus(ctx context.Context, id string, from, to models.RequestStatus, upd models.RequestUpdate) (bool, error) {
	request, ok := m.requests[id]
	if !ok || request.Status != from {
		return false, nil
	}
	request.Status = to
	return true, nil
}

type userStoreMock struct{}

func (m *userStoreMock) FindByID(ctx context.Context, id string) (*models.User, error) {
	if id == "mentor-1" {
		return &models.User{ID: "mentor-1", Role: models.RoleMentor, FullName: "Mentor One"}, nil
	}
	return nil, sql.ErrNoRows
}

type notifierMock struct{}

func (m *notifierMock) Notify(notification models.Notification) {}

func newMentorshipTestHandler() (*MentorshipHandler, *requestStoreMock) {
	store := &requestStoreMock{requests: map[string]*models.MentorshipRequest{
		"req-1": {ID: "req-1", StudentID: "student-1", MentorID: "mentor-1", Status: models.RequestStatusPending},
	}}
	svc := service.NewMentorshipService(store, &userStoreMock{}, &notifierMock{}, nil, nil)
	return NewMentorshipHandler(svc), store
}

func testContext(t *testing.T, method, path string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func TestMentorshipHandlerCreateInvalidBody(t *testing.T) {
	handler, _ := newMentorshipTestHandler()
	c, w := testContext(t, http.MethodPost, "/mentorship", []byte(`not json`), &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMentorshipHandlerCreate(t *testing.T) {
	handler, store := newMentorshipTestHandler()
	body, _ := json.Marshal(service.BookMentorRequest{
		MentorID: "mentor-1",
		Kind:     models.RequestKindCall,
		Subject:  "Career advice",
		Body:     "Could we talk?",
	})
	c, w := testContext(t, http.MethodPost, "/mentorship", body, &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent, FullName: "Student One"})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.requests, 2)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestMentorshipHandlerUpdateStatusConflict(t *testing.T) {
	handler, _ := newMentorshipTestHandler()
	body, _ := json.Marshal(service.UpdateStatusRequest{Status: models.RequestStatusCompleted})
	c, w := testContext(t, http.MethodPut, "/mentorship/req-1", body, &models.JWTClaims{UserID: "mentor-1", Role: models.RoleMentor})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	handler.UpdateStatus(c)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INVALID_STATE", envelope.Error.Code)
}

func TestMentorshipHandlerGetForbiddenForOutsider(t *testing.T) {
	handler, _ := newMentorshipTestHandler()
	c, w := testContext(t, http.MethodGet, "/mentorship/req-1", nil, &models.JWTClaims{UserID: "outsider", Role: models.RoleStudent})
	c.Params = gin.Params{{Key: "id", Value: "req-1"}}

	handler.Get(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
