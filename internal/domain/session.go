package domain

import "time"

// Session represents an active user session with refresh token.
// Each login creates its own session; refresh rotates the token hash
// in place so a stolen old token cannot be replayed.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	UserAgent        string    `json:"user_agent,omitempty"`
	IPAddress        string    `json:"ip_address,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// NewSession creates a session for the given user expiring after ttl.
func NewSession(id, userID, tokenHash string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		CreatedAt:        now,
		LastSeenAt:       now,
		ExpiresAt:        now.Add(ttl),
	}
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
