package user

import (
	"context"

	"github.com/quewww/blog/internal/domain"
)

// Repository defines the interface for user data persistence.
type Repository interface {
	// CreateUser adds a new user and returns it with its assigned id.
	// Returns ErrUserAlreadyExists or ErrEmailAlreadyExists when a unique
	// constraint is violated.
	CreateUser(ctx context.Context, username, email, passwordHash string) (*domain.User, error)

	// GetUserByUsername retrieves a user by their username.
	// Returns the user object and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error)

	// GetUserByEmail retrieves a user by their email address.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error)

	// GetUserByID retrieves a user by id.
	GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error)
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
