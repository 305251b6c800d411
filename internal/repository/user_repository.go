package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mentorlink/mentorlink-api/internal/models"
)

// UserRepository provides read-only access to the user directory. Accounts
// are created and maintained by the identity service; this API only resolves
// identities to display info and roles.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, email, full_name, role, avatar, occupation, approved, created_at, updated_at FROM users WHERE id = $1 LIMIT 1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// ListMentors returns approved mentors for the directory with total count.
func (r *UserRepository) ListMentors(ctx context.Context, filter models.MentorFilter) ([]models.UserInfo, int, error) {
	baseQuery := `FROM users WHERE role = $1 AND approved = TRUE`
	args := []interface{}{models.RoleMentor}

	if filter.Search != "" {
		baseQuery += fmt.Sprintf(" AND (LOWER(full_name) LIKE $%d OR LOWER(occupation) LIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT id, full_name, email, avatar, occupation, role %s ORDER BY full_name ASC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	var mentors []models.UserInfo
	if err := r.db.SelectContext(ctx, &mentors, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list mentors: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count mentors: %w", err)
	}

	return mentors, total, nil
}
