// Package context holds the request-scoped values shared between the
// transport, service and logging layers.
package context

import "context"

// key is a typed context key; the zero value of T is returned on a miss.
type key[T any] struct {
	name string
}

func (k key[T]) value(ctx context.Context) (T, bool) {
	v, ok := ctx.Value(k).(T)

	return v, ok
}

func (k key[T]) with(ctx context.Context, v T) context.Context {
	return context.WithValue(ctx, k, v)
}
