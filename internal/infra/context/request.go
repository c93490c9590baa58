package context

import (
	"context"

	"github.com/quewww/blog/internal/domain"
)

//nolint:gochecknoglobals
var (
	traceIDKey = key[string]{name: "traceID"}
	userKey    = key[*domain.User]{name: "user"}
)

// TraceIDFromContext returns the request trace id, if one was assigned.
func TraceIDFromContext(ctx context.Context) (string, bool) {
	return traceIDKey.value(ctx)
}

// WithTraceID returns a copy of ctx carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return traceIDKey.with(ctx, traceID)
}

// UserFromContext returns the user resolved from the request session.
// Returns nil and false for anonymous requests.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := userKey.value(ctx)
	if !ok || user == nil {
		return nil, false
	}

	return user, true
}

// WithUser returns a copy of ctx carrying the authenticated user.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return userKey.with(ctx, user)
}
