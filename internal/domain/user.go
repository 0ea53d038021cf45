// Package domain contains the core entities of the RoyaltyDesk server.
package domain

import "time"

// User is an author account. The first user created through setup becomes
// the admin; admin access gates migration and other destructive operations.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	DisplayName  string    `json:"display_name"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// Session is a refresh-token session. Only the hash of the refresh token is
// stored; the token itself is returned to the client once and never kept.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// IsExpired returns true if the session can no longer be refreshed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
