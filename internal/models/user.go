package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin        UserRole = "ADMIN"
	RoleMentor       UserRole = "MENTOR"
	RoleStudent      UserRole = "STUDENT"
	RoleOrganization UserRole = "ORGANIZATION"
)

// User represents a platform member stored in the users table. The core
// treats this record as a read-only directory entry: account creation,
// credentials and profile editing live outside this service.
type User struct {
	ID         string    `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	FullName   string    `db:"full_name" json:"full_name"`
	Role       UserRole  `db:"role" json:"role"`
	Avatar     string    `db:"avatar" json:"avatar,omitempty"`
	Occupation string    `db:"occupation" json:"occupation,omitempty"`
	Approved   bool      `db:"approved" json:"approved"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// UserInfo is the compact participant projection embedded in request and
// message payloads.
type UserInfo struct {
	ID         string   `db:"id" json:"id"`
	FullName   string   `db:"full_name" json:"full_name"`
	Email      string   `db:"email" json:"email,omitempty"`
	Avatar     string   `db:"avatar" json:"avatar,omitempty"`
	Occupation string   `db:"occupation" json:"occupation,omitempty"`
	Role       UserRole `db:"role" json:"role,omitempty"`
}

// MentorFilter captures filtering criteria for the mentor directory.
type MentorFilter struct {
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
