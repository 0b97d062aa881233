package tenant

import (
	"context"
	"log/slog"
)

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext stores the resolved tenant in ctx.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the resolved tenant.
// Returns nil, false if no tenant is found.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	if !ok || tc == nil {
		return nil, false
	}
	return tc, true
}

// InfoFromContext retrieves just the tenant record.
func InfoFromContext(ctx context.Context) (*Info, bool) {
	tc, ok := FromContext(ctx)
	if !ok || tc.Info == nil {
		return nil, false
	}
	return tc.Info, true
}

// MustFromContext retrieves the tenant from the context.
// Panics if no tenant is found. Use this only in handlers
// that absolutely require a tenant to function.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic(ErrNoTenantInContext)
	}
	return tc
}

// LoggerExtractor returns a ContextExtractor for the logger that adds the
// tenant ID and identifier as a "tenant" group.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		info, ok := InfoFromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.Group("tenant",
			slog.String("id", info.ID),
			slog.String("identifier", info.Identifier),
		), true
	}
}
