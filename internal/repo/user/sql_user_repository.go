package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/database"
	"github.com/quewww/blog/internal/infra/logging"
)

const userColumns = "id, username, email, password_hash"

// SQLUserRepository implements Repository on top of a sqlx database handle.
type SQLUserRepository struct {
	db  *sqlx.DB
	log logging.Logger
}

var _ Repository = (*SQLUserRepository)(nil)

// SQLUserRepositoryFactory creates a factory function that returns a new SQLUserRepository.
func SQLUserRepositoryFactory(db *sqlx.DB) RepositoryFactory {
	return func() (Repository, error) {
		return NewSQLUserRepository(db), nil
	}
}

// NewSQLUserRepository creates a repository using db, which must already carry the schema.
func NewSQLUserRepository(db *sqlx.DB) *SQLUserRepository {
	return &SQLUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sql_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser.
func (r *SQLUserRepository) CreateUser(
	ctx context.Context,
	username, email, passwordHash string,
) (*domain.User, error) {
	user := domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
	}

	err := r.db.GetContext(ctx, &user.ID, r.db.Rebind(
		"INSERT INTO users (username, email, password_hash) VALUES (?, ?, ?) RETURNING id",
	), username, email, passwordHash)
	if err != nil {
		if detail, ok := database.UniqueViolation(err); ok {
			if strings.Contains(detail, "email") {
				err = errors.Join(domain.ErrEmailAlreadyExists, err)
			} else {
				err = errors.Join(domain.ErrUserAlreadyExists, err)
			}
		}

		return nil, fmt.Errorf("insert user: %w", err)
	}

	r.log.DebugContext(ctx, "user inserted", logging.Group("user", "id", user.ID, "username", username))

	return &user, nil
}

// GetUserByUsername implements Repository.GetUserByUsername.
func (r *SQLUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, bool, error) {
	return r.getUser(ctx, "username", username)
}

// GetUserByEmail implements Repository.GetUserByEmail.
func (r *SQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, bool, error) {
	return r.getUser(ctx, "email", email)
}

// GetUserByID implements Repository.GetUserByID.
func (r *SQLUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, bool, error) {
	return r.getUser(ctx, "id", id)
}

// column is one of the fixed names above, never user input.
func (r *SQLUserRepository) getUser(ctx context.Context, column string, value any) (*domain.User, bool, error) {
	var user domain.User

	err := r.db.GetContext(ctx, &user, r.db.Rebind(
		"SELECT "+userColumns+" FROM users WHERE "+column+" = ?",
	), value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("query user by %s: %w", column, err)
	}

	return &user, true, nil
}
