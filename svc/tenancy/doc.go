// Package tenancy wires stores and strategies into a tenant.Resolver at
// startup.
//
// Builder is the fluent entry point:
//
//	resolver, err := tenancy.NewBuilder().
//		WithLogger(log).
//		WithPostgresStore(pool).
//		WithDistributedCacheStore(tenantstore.NewRedisCache(rdb, 5*time.Minute)).
//		WithHostStrategy("__tenant__.example.com").
//		WithHeaderStrategy("X-Tenant-ID").
//		Build(ctx)
//
// The store lives in a Slot. Decorate replaces a slot's registration with one
// that wraps the original value and keeps its Lifetime, which is how
// WithDistributedCacheStore layers a cache over whatever store was registered
// before it.
//
// Config describes the same composition through environment variables
// (TENANT_STORE, TENANT_CACHE, TENANT_STRATEGIES and friends) and
// NewBuilderFromConfig turns it into a Builder, taking database and cache
// clients from Deps.
package tenancy
