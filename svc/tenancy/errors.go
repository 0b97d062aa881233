package tenancy

import "errors"

var (
	// ErrNotRegistered is returned by Slot.Get when nothing was provided.
	ErrNotRegistered = errors.New("no registration for slot")

	// ErrNoStore is returned when a resolver is built or decorated without a store.
	ErrNoStore = errors.New("tenant store is not configured")

	// ErrUnknownStoreKind is returned for an unsupported Config.Store value.
	ErrUnknownStoreKind = errors.New("unknown tenant store kind")

	// ErrUnknownStrategy is returned for an unsupported entry in Config.Strategies.
	ErrUnknownStrategy = errors.New("unknown tenant strategy")

	// ErrMissingDependency is returned when the configuration needs a client
	// that was not passed in Deps.
	ErrMissingDependency = errors.New("missing dependency for tenant configuration")
)
