// Package domain holds the core entities: users, songs and playlists.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Role is the user's permission level.
type Role string

const (
	// RoleAdmin may manage the song catalog and other users.
	RoleAdmin Role = "ADMIN"
	// RoleUser is the default role for new accounts.
	RoleUser Role = "USER"
)

// ParseRole parses a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleUser:
		return RoleUser, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// User is an account. Username and Email are unique.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`

	// RefreshTokenHash is the digest of the single renewal token currently
	// accepted for this user. Empty after logout.
	RefreshTokenHash string `json:"-"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserUpdate carries the fields of a partial user update; nil fields are left unchanged.
type UserUpdate struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.PasswordHash == nil && u.Role == nil
}

// Apply writes the non-nil fields onto user.
func (u UserUpdate) Apply(user *User) {
	if u.Username != nil {
		user.Username = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
	}
	if u.PasswordHash != nil {
		user.PasswordHash = *u.PasswordHash
	}
	if u.Role != nil {
		user.Role = *u.Role
	}
}
