package tenant

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Middleware resolves the tenant for each request and stores it in the
// request context. Requests without a tenant pass through unless WithRequired is set.
func Middleware(resolver *Resolver, opts ...Option) func(http.Handler) http.Handler {
	cfg := &config{
		errorHandler: defaultErrorHandler,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			tc, err := resolver.Resolve(r.Context(), r)
			if err != nil {
				cfg.logger.ErrorContext(r.Context(), "tenant resolution failed",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				cfg.errorHandler(w, r, err)
				return
			}

			if tc == nil {
				if cfg.required {
					cfg.errorHandler(w, r, ErrTenantNotFound)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), tc)))
		})
	}
}

// RequireTenant creates middleware that ensures a tenant is present in the context.
// This is useful for protecting routes that require tenant context.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = defaultErrorHandler
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
