package blogsvc

import (
	"context"
	"fmt"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/logging"
	"github.com/quewww/blog/internal/repo/post"
	"github.com/quewww/blog/internal/repo/user"
)

// PostService implements the post lifecycle and the profile listing.
type PostService struct {
	Config   BlogConfig
	PostRepo post.Repository
	UserRepo user.Repository
	Log      logging.Logger
}

// NewPostService creates a new PostService from repository factories.
func NewPostService(
	postFactory post.RepositoryFactory,
	userFactory user.RepositoryFactory,
	cfg BlogConfig,
) (*PostService, error) {
	postRepo, err := postFactory()
	if err != nil {
		return nil, fmt.Errorf("new post repo: %w", err)
	}

	userRepo, err := userFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &PostService{
		Config:   cfg,
		PostRepo: postRepo,
		UserRepo: userRepo,
		Log:      logging.GetLogger("svc.blogsvc.post_service"),
	}, nil
}

// CreatePost publishes draft owned by owner. The owner is always the given
// user, whatever author name the draft carries.
func (s *PostService) CreatePost(ctx context.Context, owner *domain.User, draft domain.PostDraft) (_ *domain.Post, err error) {
	log := s.Log.With(logging.Group("user", "id", owner.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "create post failed", "error", err)
		} else {
			log.DebugContext(ctx, "post created")
		}
	}()

	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PostRepo.CreatePost(ctx, draft, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	log = log.With(logging.Group("post", "id", p.ID))

	return p, nil
}

// GetPost returns a post or ErrPostNotFound.
func (s *PostService) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	p, err := s.PostRepo.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return p, nil
}

// ListPosts returns the public feed.
func (s *PostService) ListPosts(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.PostRepo.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	return posts, nil
}

// UpdatePost overwrites title, content and author of post id on behalf of actor.
func (s *PostService) UpdatePost(
	ctx context.Context,
	actor *domain.User,
	id int64,
	draft domain.PostDraft,
) (_ *domain.Post, err error) {
	log := s.Log.With(logging.Group("post", "id", id), logging.Group("user", "id", actor.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "update post failed", "error", err)
		} else {
			log.DebugContext(ctx, "post updated")
		}
	}()

	if err := s.authorize(ctx, actor, id); err != nil {
		return nil, err
	}

	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PostRepo.UpdatePost(ctx, id, draft)
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}

	return p, nil
}

// DeletePost removes post id on behalf of actor.
func (s *PostService) DeletePost(ctx context.Context, actor *domain.User, id int64) (err error) {
	log := s.Log.With(logging.Group("post", "id", id), logging.Group("user", "id", actor.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "delete post failed", "error", err)
		} else {
			log.DebugContext(ctx, "post deleted")
		}
	}()

	if err := s.authorize(ctx, actor, id); err != nil {
		return err
	}

	if err := s.PostRepo.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	return nil
}

// authorize checks that post id exists and, when enforcement is enabled,
// that actor owns it.
func (s *PostService) authorize(ctx context.Context, actor *domain.User, id int64) error {
	p, err := s.PostRepo.GetPost(ctx, id)
	if err != nil {
		return fmt.Errorf("get post: %w", err)
	}

	if s.Config.EnforceOwnership && p.UserID != actor.ID {
		return domain.ErrNotPostOwner
	}

	return nil
}

// Profile returns the user named username and their posts, newest first.
// Returns ErrUserNotFound for unknown usernames.
func (s *PostService) Profile(ctx context.Context, username string) (*domain.User, []domain.Post, error) {
	u, ok, err := s.UserRepo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, nil, domain.ErrUserNotFound
	}

	posts, err := s.PostRepo.ListPostsByOwner(ctx, u.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list posts by owner: %w", err)
	}

	return u, posts, nil
}
