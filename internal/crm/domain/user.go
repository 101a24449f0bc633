package domain

import (
	"strings"
	"time"
)

type User struct {
	ID            string
	Email         string // normalized, unique
	DisplayName   string
	PasswordHash  string // bcrypt encoded; never leaves the service layer
	Role          Role
	Active        bool
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastLoginAt   *time.Time
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// UserUpdate is a partial update. Nil fields are left unchanged.
type UserUpdate struct {
	DisplayName   *string
	PasswordHash  *string
	Role          *Role
	Active        *bool
	EmailVerified *bool
	LastLoginAt   *time.Time
}

func (u UserUpdate) IsEmpty() bool {
	return u.DisplayName == nil && u.PasswordHash == nil && u.Role == nil &&
		u.Active == nil && u.EmailVerified == nil && u.LastLoginAt == nil
}

// PublicUser is the projection of a User that may be sent to clients.
type PublicUser struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	DisplayName   string     `json:"displayName"`
	Role          Role       `json:"role"`
	Active        bool       `json:"active"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		Role:          u.Role,
		Active:        u.Active,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		LastLoginAt:   u.LastLoginAt,
	}
}
