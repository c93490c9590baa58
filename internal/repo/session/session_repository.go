package session

import (
	"context"
	"time"

	"github.com/quewww/blog/internal/domain"
)

// Repository persists server-side login sessions.
type Repository interface {
	// CreateSession stores s. Returns ErrUserNotFound when s.UserID does not exist.
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns the session with the given id, or nil and false if unknown.
	GetSession(ctx context.Context, id string) (*domain.Session, bool, error)

	// DeleteSession removes the session. Unknown ids are not an error.
	DeleteSession(ctx context.Context, id string) error

	// DeleteExpiredSessions removes every session that expired at or before now
	// and returns how many were removed.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
