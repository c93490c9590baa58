package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/quewww/blog/internal/domain"
	"github.com/quewww/blog/internal/infra/logging"
	http_ "github.com/quewww/blog/internal/infra/transport/http"
	"github.com/quewww/blog/internal/infra/view"
)

const homePath = "/"

// HTTPTransport serves the registration, login and logout pages.
type HTTPTransport struct {
	authSvc  *AuthService
	sessions *SessionManager
	views    *view.Renderer
	log      logging.Logger
	mux      *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(authSvc *AuthService, sessions *SessionManager, views *view.Renderer) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc:  authSvc,
		sessions: sessions,
		views:    views,
		log:      logging.GetLogger("svc.authsvc.http_transport"),
		mux:      http.NewServeMux(),
	}

	ht.RegisterRoutes(ht.mux)

	return ht
}

// RegisterRoutes adds the auth endpoints to mux:
// - GET/POST /register: show the form / create an account
// - GET/POST /login: show the form / start a session
// - GET/POST /logout: end the session (requires a session).
func (ht *HTTPTransport) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /register", ht.HandleRegisterForm)
	mux.HandleFunc("POST /register", ht.HandleRegister)
	mux.HandleFunc("GET /login", ht.HandleLoginForm)
	mux.HandleFunc("POST /login", ht.HandleLogin)
	mux.HandleFunc("GET /logout", http_.RequireUser(ht.HandleLogout))
	mux.HandleFunc("POST /logout", http_.RequireUser(ht.HandleLogout))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleRegisterForm renders the registration page.
func (ht *HTTPTransport) HandleRegisterForm(w http.ResponseWriter, r *http.Request) {
	ht.render(w, r, view.PageRegister, view.Data{Title: "Register"})
}

// HandleLoginForm renders the login page.
func (ht *HTTPTransport) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	ht.render(w, r, view.PageLogin, view.Data{Title: "Login"})
}

func (ht *HTTPTransport) render(w http.ResponseWriter, r *http.Request, page string, data view.Data) {
	if err := ht.views.Render(w, r, http.StatusOK, page, data); err != nil {
		ht.log.ErrorContext(r.Context(), "render failed", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// HandleRegister processes user registration requests.
// Expects form parameters: username, email, password.
func (ht *HTTPTransport) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleRegister(w, r)
}

func (ht *HTTPTransport) handleRegister(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user register failed", "error", err)
		} else {
			log.DebugContext(ctx, "user registered")
		}
	}(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return fmt.Errorf("parse form: %w", err)
	}

	_, err = ht.authSvc.RegisterUser(r.Context(), r.PostFormValue("username"), r.PostFormValue("email"), r.PostFormValue("password"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists), errors.Is(err, domain.ErrEmailAlreadyExists):
			http.Error(w, domainMessage(err), http.StatusConflict)
		case errors.Is(err, domain.ErrMissingField):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("register user: %w", err)
	}

	http.Redirect(w, r, http_.LoginPath, http.StatusSeeOther)

	return nil
}

// HandleLogin processes user login requests.
// Expects form parameters: username, password.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return fmt.Errorf("parse form: %w", err)
	}

	user, err := ht.authSvc.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			http.Error(w, domain.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("authenticate: %w", err)
	}

	if err := ht.sessions.Login(r.Context(), w, user); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("start session: %w", err)
	}

	http.Redirect(w, r, homePath, http.StatusSeeOther)

	return nil
}

// HandleLogout ends the current session.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user logout failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	if err := ht.sessions.Logout(r.Context(), w, r); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

		return fmt.Errorf("logout: %w", err)
	}

	http.Redirect(w, r, http_.LoginPath, http.StatusSeeOther)

	return nil
}

// domainMessage returns the text of the first conflict sentinel in err.
func domainMessage(err error) string {
	for _, target := range []error{domain.ErrUserAlreadyExists, domain.ErrEmailAlreadyExists} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}

	return err.Error()
}
