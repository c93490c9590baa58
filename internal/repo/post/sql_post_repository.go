package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/database"
	"github.com/quewww/blog/internal/infra/logging"
)

const postColumns = "id, title, content, author, created_at, user_id"

// postRow is the storage shape of a post; created_at is unix nanoseconds.
type postRow struct {
	ID        int64  `db:"id"`
	Title     string `db:"title"`
	Content   string `db:"content"`
	Author    string `db:"author"`
	CreatedAt int64  `db:"created_at"`
	UserID    int64  `db:"user_id"`
}

func (row postRow) toDomain() domain.Post {
	return domain.Post{
		ID:        row.ID,
		Title:     row.Title,
		Content:   row.Content,
		Author:    row.Author,
		CreatedAt: time.Unix(0, row.CreatedAt),
		UserID:    row.UserID,
	}
}

// SQLPostRepository implements Repository on top of a sqlx database handle.
type SQLPostRepository struct {
	db  *sqlx.DB
	log logging.Logger
	now func() time.Time
}

var _ Repository = (*SQLPostRepository)(nil)

// SQLPostRepositoryFactory creates a factory function that returns a new SQLPostRepository.
func SQLPostRepositoryFactory(db *sqlx.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLPostRepository(db), nil
	}
}

// NewSQLPostRepository creates a repository using db, which must already carry the schema.
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{
		db:  db,
		log: logging.GetLogger("repo.post.sql_post_repository"),
		now: time.Now,
	}
}

// WithClock returns a copy of the repository that stamps new posts using now.
func (r *SQLPostRepository) WithClock(now func() time.Time) *SQLPostRepository {
	clone := *r
	clone.now = now

	return &clone
}

// CreatePost implements Repository.CreatePost.
func (r *SQLPostRepository) CreatePost(
	ctx context.Context,
	draft domain.PostDraft,
	ownerID int64,
) (*domain.Post, error) {
	row := postRow{
		Title:     draft.Title,
		Content:   draft.Content,
		Author:    draft.Author,
		CreatedAt: r.now().UnixNano(),
		UserID:    ownerID,
	}

	err := r.db.GetContext(ctx, &row.ID, r.db.Rebind(
		"INSERT INTO posts (title, content, author, created_at, user_id) VALUES (?, ?, ?, ?, ?) RETURNING id",
	), row.Title, row.Content, row.Author, row.CreatedAt, row.UserID)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return nil, fmt.Errorf("insert post: %w", err)
	}

	r.log.DebugContext(ctx, "post inserted", logging.Group("post", "id", row.ID, "user_id", ownerID))

	post := row.toDomain()

	return &post, nil
}

// GetPost implements Repository.GetPost.
func (r *SQLPostRepository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	var row postRow

	err := r.db.GetContext(ctx, &row, r.db.Rebind("SELECT "+postColumns+" FROM posts WHERE id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrPostNotFound, err)
		}

		return nil, fmt.Errorf("query post: %w", err)
	}

	post := row.toDomain()

	return &post, nil
}

// ListPosts implements Repository.ListPosts.
func (r *SQLPostRepository) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return r.list(ctx, "SELECT "+postColumns+" FROM posts ORDER BY id")
}

// ListPostsByOwner implements Repository.ListPostsByOwner.
func (r *SQLPostRepository) ListPostsByOwner(ctx context.Context, ownerID int64) ([]domain.Post, error) {
	return r.list(ctx, r.db.Rebind(
		"SELECT "+postColumns+" FROM posts WHERE user_id = ? ORDER BY created_at DESC, id DESC",
	), ownerID)
}

func (r *SQLPostRepository) list(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	var rows []postRow

	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toDomain())
	}

	return posts, nil
}

// UpdatePost implements Repository.UpdatePost.
func (r *SQLPostRepository) UpdatePost(ctx context.Context, id int64, draft domain.PostDraft) (*domain.Post, error) {
	var row postRow

	err := r.db.GetContext(ctx, &row, r.db.Rebind(
		"UPDATE posts SET title = ?, content = ?, author = ? WHERE id = ? RETURNING "+postColumns,
	), draft.Title, draft.Content, draft.Author, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrPostNotFound, err)
		}

		return nil, fmt.Errorf("update post: %w", err)
	}

	post := row.toDomain()

	return &post, nil
}

// DeletePost implements Repository.DeletePost.
func (r *SQLPostRepository) DeletePost(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM posts WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if n == 0 {
		return domain.ErrPostNotFound
	}

	return nil
}
