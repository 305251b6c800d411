package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mentorlink/mentorlink-api/internal/models"
	appErrors "github.com/mentorlink/mentorlink-api/pkg/errors"
)

type mentorLister interface {
	ListMentors(ctx context.Context, filter models.MentorFilter) ([]models.UserInfo, int, error)
}

// UserService exposes the read-only mentor directory.
type UserService struct {
	repo   mentorLister
	logger *zap.Logger
}

// NewUserService constructs UserService.
func NewUserService(repo mentorLister, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// ListMentors returns approved mentors with pagination metadata.
func (s *UserService) ListMentors(ctx context.Context, filter models.MentorFilter) ([]models.UserInfo, *models.Pagination, error) {
	mentors, total, err := s.repo.ListMentors(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentors")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return mentors, pagination, nil
}
