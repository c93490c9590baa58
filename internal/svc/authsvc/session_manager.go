package authsvc

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/logging"
	http_ "github.com/quewww/blog/internal/infra/transport/http"
	"github.com/quewww/blog/internal/repo/session"
	"github.com/quewww/blog/internal/repo/user"
	"github.com/quewww/blog/internal/util/encoding"
)

// sessionIDBytes is the entropy of a session id.
const sessionIDBytes = 20

// SessionManager establishes, resolves and revokes login sessions. A session
// lives in the session repository; the client holds a signed cookie naming it.
type SessionManager struct {
	Config      AuthConfig
	SessionRepo session.Repository
	UserRepo    user.Repository
	SigningKey  *rsa.PrivateKey
	Log         logging.Logger
	Now         func() time.Time
}

var _ http_.SessionResolver = (*SessionManager)(nil)

// NewSessionManager loads or creates the signing key and builds a SessionManager.
func NewSessionManager(
	sessionFactory session.RepositoryFactory,
	userFactory user.RepositoryFactory,
	cfg AuthConfig,
) (*SessionManager, error) {
	signingKey, err := GetPrivateKey(cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("get private key: %w", err)
	}

	sessionRepo, err := sessionFactory()
	if err != nil {
		return nil, fmt.Errorf("new session repo: %w", err)
	}

	userRepo, err := userFactory()
	if err != nil {
		return nil, fmt.Errorf("new user repo: %w", err)
	}

	return &SessionManager{
		Config:      cfg,
		SessionRepo: sessionRepo,
		UserRepo:    userRepo,
		SigningKey:  signingKey,
		Log:         logging.GetLogger("svc.authsvc.session_manager"),
		Now:         time.Now,
	}, nil
}

// Login starts a session for u and sets the session cookie on w.
func (m *SessionManager) Login(ctx context.Context, w http.ResponseWriter, u *domain.User) (err error) {
	log := m.Log.With(logging.Group("user", "id", u.ID))

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "login failed", "error", err)
		} else {
			log.DebugContext(ctx, "session started")
		}
	}()

	id, err := encoding.RandomCrockfordB32LC(sessionIDBytes)
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}

	now := m.Now()
	s := domain.Session{
		ID:        id,
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.Config.SessionDuration),
	}

	token, err := IssueSessionToken(s, m.Config.Issuer, m.SigningKey)
	if err != nil {
		return err
	}

	if err := m.SessionRepo.CreateSession(ctx, s); err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	http.SetCookie(w, m.cookie(token, s.ExpiresAt))

	return nil
}

// Logout revokes the session named by the request cookie, if any, and
// clears the cookie.
func (m *SessionManager) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0)))

	claims, ok := m.claims(r)
	if !ok {
		return nil
	}

	if err := m.SessionRepo.DeleteSession(ctx, claims.ID); err != nil {
		m.Log.ErrorContext(ctx, "logout failed", "error", err)

		return fmt.Errorf("delete session: %w", err)
	}

	m.Log.DebugContext(ctx, "session revoked")

	return nil
}

// CurrentUser implements http.SessionResolver. It replays the session's user
// id through the user repository, so a session outliving its user resolves
// to nobody and is removed.
func (m *SessionManager) CurrentUser(ctx context.Context, r *http.Request) (*domain.User, bool, error) {
	claims, ok := m.claims(r)
	if !ok {
		return nil, false, nil
	}

	s, ok, err := m.SessionRepo.GetSession(ctx, claims.ID)
	if err != nil {
		return nil, false, fmt.Errorf("get session: %w", err)
	} else if !ok {
		return nil, false, nil
	}

	userID, _ := claims.UserID()

	if s.UserID != userID || s.Expired(m.Now()) {
		return nil, false, m.revoke(ctx, s.ID)
	}

	u, ok, err := m.UserRepo.GetUserByID(ctx, s.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("get user: %w", err)
	} else if !ok {
		return nil, false, m.revoke(ctx, s.ID)
	}

	return u, true, nil
}

// CleanupExpiredSessions removes every expired session.
func (m *SessionManager) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	n, err := m.SessionRepo.DeleteExpiredSessions(ctx, m.Now())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}

	m.Log.InfoContext(ctx, "expired sessions removed", "count", n)

	return n, nil
}

func (m *SessionManager) revoke(ctx context.Context, id string) error {
	if err := m.SessionRepo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("delete stale session: %w", err)
	}

	return nil
}

func (m *SessionManager) claims(r *http.Request) (*SessionClaims, bool) {
	cookie, err := r.Cookie(m.Config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	claims, err := ParseSessionToken(cookie.Value, m.Config.Issuer, &m.SigningKey.PublicKey, m.Now())
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidSessionToken) {
			m.Log.ErrorContext(r.Context(), "parse session token failed", "error", err)
		}

		return nil, false
	}

	return claims, true
}

func (m *SessionManager) cookie(value string, expires time.Time) *http.Cookie {
	maxAge := int(expires.Sub(m.Now()).Seconds())
	if value == "" || maxAge <= 0 {
		maxAge = -1
	}

	//nolint:exhaustruct
	return &http.Cookie{
		Name:     m.Config.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
