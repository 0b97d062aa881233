package hostpattern

import "errors"

var (
	// ErrInvalidTemplate is returned when a template cannot be compiled.
	// It is always joined with one of the more specific errors below.
	ErrInvalidTemplate = errors.New("invalid host template")

	ErrEmptyTemplate        = errors.New("template cannot be empty or whitespace")
	ErrMultipleWildcards    = errors.New(`wildcard "*" may only occur once in template`)
	ErrPartialWildcard      = errors.New("wildcard must be the only token in its template segment")
	ErrMissingTenantToken   = errors.New("template must contain the tenant token")
	ErrDuplicateTenantToken = errors.New("template must contain the tenant token only once")
)
