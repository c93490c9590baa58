package http

import (
	"context"
	"net/http"

	"github.com/quewww/blog/internal/domain"
	context_ "github.com/quewww/blog/internal/infra/context"
	"github.com/quewww/blog/internal/infra/logging"
)

// LoginPath is where unauthenticated requests to guarded routes are sent.
const LoginPath = "/login"

// SessionResolver resolves the user behind the session of a request.
// Requests without a valid session yield false and a nil error.
type SessionResolver interface {
	CurrentUser(ctx context.Context, r *http.Request) (*domain.User, bool, error)
}

// SessionMiddleware resolves the current user once per request and stores
// it in the request context. Anonymous requests pass through unchanged.
func SessionMiddleware(next http.Handler, resolver SessionResolver, log logging.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok, err := resolver.CurrentUser(r.Context(), r)
		if err != nil {
			log.ErrorContext(r.Context(), "resolve session failed", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

			return
		}

		if ok {
			r = r.WithContext(context_.WithUser(r.Context(), user))
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUser guards next behind an authenticated session. Anonymous
// requests are redirected to LoginPath with 303 See Other.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")

		if _, ok := context_.UserFromContext(r.Context()); !ok {
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)

			return
		}

		next(w, r)
	}
}
