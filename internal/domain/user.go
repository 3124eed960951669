package domain

import "time"

// User represents an authenticated user account in the system.
type User struct {
	Record
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	IsRoot       bool      `json:"is_root"`
	LastLoginAt  time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user has administrative privileges.
// The first account created during setup is the root user and owns
// the admin surface.
func (u *User) IsAdmin() bool {
	return u.IsRoot
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
