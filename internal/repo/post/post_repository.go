package post

import (
	"context"

	"github.com/quewww/blog/internal/domain"
)

// Repository defines the interface for post persistence.
// Every mutation is a single statement.
type Repository interface {
	// CreatePost inserts draft owned by ownerID and assigns id and creation time.
	// Returns ErrUserNotFound when ownerID does not exist.
	CreatePost(ctx context.Context, draft domain.PostDraft, ownerID int64) (*domain.Post, error)

	// GetPost returns the post with the given id or ErrPostNotFound.
	GetPost(ctx context.Context, id int64) (*domain.Post, error)

	// ListPosts returns every post in insertion order.
	ListPosts(ctx context.Context) ([]domain.Post, error)

	// ListPostsByOwner returns the posts of ownerID, newest first.
	ListPostsByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error)

	// UpdatePost overwrites title, content and author of the post and returns it.
	// Owner and creation time are left untouched. Returns ErrPostNotFound.
	UpdatePost(ctx context.Context, id int64, draft domain.PostDraft) (*domain.Post, error)

	// DeletePost removes the post or returns ErrPostNotFound.
	DeletePost(ctx context.Context, id int64) error
}

// RepositoryFactory is a function that creates a new Repository instance.
type RepositoryFactory func() (Repository, error)
