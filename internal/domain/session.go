package domain

import (
	"errors"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session id is unknown or was revoked.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidSessionToken is returned when a session cookie fails verification.
	ErrInvalidSessionToken = errors.New("invalid session token")
)

// Session binds a client to a user until it expires or is revoked.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer valid at t.
func (s Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}
