package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/database"
)

type sessionRow struct {
	ID        string `db:"id"`
	UserID    int64  `db:"user_id"`
	CreatedAt int64  `db:"created_at"`
	ExpiresAt int64  `db:"expires_at"`
}

// SQLSessionRepository implements Repository on top of a sqlx database handle.
type SQLSessionRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLSessionRepository)(nil)

// SQLSessionRepositoryFactory creates a factory function that returns a new SQLSessionRepository.
func SQLSessionRepositoryFactory(db *sqlx.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLSessionRepository(db), nil
	}
}

// NewSQLSessionRepository creates a repository using db, which must already carry the schema.
func NewSQLSessionRepository(db *sqlx.DB) *SQLSessionRepository {
	return &SQLSessionRepository{db: db}
}

// CreateSession implements Repository.CreateSession.
func (r *SQLSessionRepository) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO sessions (id, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)",
	), s.ID, s.UserID, s.CreatedAt.UnixNano(), s.ExpiresAt.UnixNano())
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			err = errors.Join(domain.ErrUserNotFound, err)
		}

		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetSession implements Repository.GetSession.
func (r *SQLSessionRepository) GetSession(ctx context.Context, id string) (*domain.Session, bool, error) {
	var row sessionRow

	err := r.db.GetContext(ctx, &row, r.db.Rebind(
		"SELECT id, user_id, created_at, expires_at FROM sessions WHERE id = ?",
	), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query session: %w", err)
	}

	return &domain.Session{
		ID:        row.ID,
		UserID:    row.UserID,
		CreatedAt: time.Unix(0, row.CreatedAt),
		ExpiresAt: time.Unix(0, row.ExpiresAt),
	}, true, nil
}

// DeleteSession implements Repository.DeleteSession.
func (r *SQLSessionRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM sessions WHERE id = ?"), id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return nil
}

// DeleteExpiredSessions implements Repository.DeleteExpiredSessions.
func (r *SQLSessionRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM sessions WHERE expires_at <= ?"), now.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return n, nil
}
