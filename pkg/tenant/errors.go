package tenant

import "errors"

var (
	// ErrValidation is returned for invalid construction-time configuration.
	ErrValidation = errors.New("invalid tenant configuration")

	// ErrInvalidContextType is returned when a strategy receives a request value it cannot read.
	ErrInvalidContextType = errors.New("invalid tenant resolution context type")

	// ErrResolution wraps failures that happen while resolving a tenant.
	ErrResolution = errors.New("tenant resolution failed")

	// ErrTenantNotFound is returned when a tenant cannot be found.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrInvalidIdentifier is returned when the identifier format is invalid.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when no tenant is found in context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrNotSupported is returned by stores for operations they do not implement.
	ErrNotSupported = errors.New("operation not supported by tenant store")
)
