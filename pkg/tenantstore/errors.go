package tenantstore

import "errors"

var (
	// ErrDuplicateTenant is returned when a tenant with the same ID or identifier exists.
	ErrDuplicateTenant = errors.New("tenant already exists")

	// ErrCacheMiss is returned by DistributedCache implementations for unknown keys.
	ErrCacheMiss = errors.New("tenant cache miss")

	// ErrSectionNotFound is returned when the configuration has no tenants section.
	ErrSectionNotFound = errors.New("tenant configuration section not found")

	// ErrSourceNotFound is returned when a configuration source does not exist.
	ErrSourceNotFound = errors.New("tenant configuration source not found")

	// ErrInvalidConfiguration is returned for malformed tenant configuration.
	ErrInvalidConfiguration = errors.New("invalid tenant configuration document")

	// ErrRemoteStore wraps unexpected responses from a remote tenant endpoint.
	ErrRemoteStore = errors.New("remote tenant store failure")
)
