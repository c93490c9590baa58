package authsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/logging"
	"github.com/quewww/blog/internal/repo/user"
)

// AuthConfig contains configuration parameters for authentication and sessions.
type AuthConfig struct {
	// SigningKeyFile is the path to the RSA private key signing session cookies
	SigningKeyFile string `yaml:"signing_key_file" env:"SIGNING_KEY_FILE" env-default:"var/storage/session.key"`

	// SessionDuration is how long a login stays valid
	SessionDuration time.Duration `yaml:"session_duration" env:"SESSION_DURATION" env-default:"24h"`

	// BcryptCost is the bcrypt work factor for password hashes
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`

	CookieName   string `yaml:"cookie_name" env:"COOKIE_NAME" env-default:"blog_session"`
	CookieSecure bool   `yaml:"cookie_secure" env:"COOKIE_SECURE" env-description:"set the Secure flag on the session cookie"`
	Issuer       string `yaml:"issuer" env:"ISSUER" env-default:"blog"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	Config      AuthConfig
	UserRepo    user.Repository
	Credentials Credentials
	Log         logging.Logger
}

// NewAuthService creates a new AuthService with the given user repository factory and configuration.
func NewAuthService(repoFactory user.RepositoryFactory, cfg AuthConfig) (*AuthService, error) {
	userRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &AuthService{
		Config:      cfg,
		UserRepo:    userRepo,
		Credentials: NewCredentials(cfg.BcryptCost),
		Log:         logging.GetLogger("svc.authsvc.auth_service"),
	}, nil
}

// RegisterUser creates a new account. The username is checked first, then
// the email, so a request colliding on both reports ErrUserAlreadyExists.
func (s *AuthService) RegisterUser(ctx context.Context, username, email, password string) (_ *domain.User, err error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "register user failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}()

	switch {
	case username == "":
		return nil, fmt.Errorf("%w: username", domain.ErrMissingField)
	case email == "":
		return nil, fmt.Errorf("%w: email", domain.ErrMissingField)
	case password == "":
		return nil, fmt.Errorf("%w: password", domain.ErrMissingField)
	}

	if _, ok, err := s.UserRepo.GetUserByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	} else if ok {
		return nil, domain.ErrUserAlreadyExists
	}

	if _, ok, err := s.UserRepo.GetUserByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	} else if ok {
		return nil, domain.ErrEmailAlreadyExists
	}

	passwordHash, err := s.Credentials.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.CreateUser(ctx, username, email, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate returns the user identified by username and password,
// or ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (_ *domain.User, err error) {
	log := s.Log.With(logging.Group("user", "username", username))

	defer func() {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			log.WarnContext(ctx, "authentication rejected")
		case err != nil:
			log.ErrorContext(ctx, "authenticate failed", "error", err)
		default:
			log.DebugContext(ctx, "authenticated")
		}
	}()

	user, ok, err := s.UserRepo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.Credentials.Verify(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return user, nil
}
