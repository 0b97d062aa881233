package tenant

import (
	"errors"
	"log/slog"
	"net/http"
)

// ErrorHandler handles errors that occur during tenant resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// config holds middleware configuration.
type config struct {
	errorHandler ErrorHandler
	skipPaths    []string
	required     bool
	logger       *slog.Logger
}

// Option configures the middleware.
type Option func(*config)

// WithErrorHandler sets a custom error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *config) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithSkipPaths sets path prefixes that should skip tenant resolution.
func WithSkipPaths(paths ...string) Option {
	return func(c *config) {
		c.skipPaths = append(c.skipPaths, paths...)
	}
}

// WithRequired makes the middleware reject requests that resolve no tenant
// with ErrTenantNotFound instead of passing them through.
func WithRequired(required bool) Option {
	return func(c *config) {
		c.required = required
	}
}

// WithLogger sets a custom logger for the middleware.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound), errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Tenant not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidIdentifier), errors.Is(err, ErrInvalidContextType):
		http.Error(w, "Invalid tenant identifier", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
