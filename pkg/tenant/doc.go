// Package tenant resolves the tenant a request belongs to.
//
// Resolution is split into two steps. Strategies extract a tenant identifier
// from a request-like value (the host, a header, a path segment, a route
// parameter, a remote authentication callback, or a fixed value). A Store then
// maps the identifier to an Info record. The Resolver runs strategies in
// descending priority order, stops at the first non-empty identifier and
// looks it up in the store.
//
// # Usage
//
//	import "github.com/dmitrymomot/multitenant/pkg/tenant"
//
//	host, err := tenant.NewHostStrategy("__tenant__.example.com")
//	if err != nil {
//		return err
//	}
//	fallback, _ := tenant.NewStaticStrategy("default")
//
//	resolver, err := tenant.NewResolver(store,
//		tenant.WithStrategy(host),
//		tenant.WithStrategy(fallback),
//	)
//	if err != nil {
//		return err
//	}
//
//	router.Use(tenant.Middleware(resolver,
//		tenant.WithSkipPaths("/health"),
//	))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		info, ok := tenant.InfoFromContext(r.Context())
//		if !ok {
//			// request has no tenant
//			return
//		}
//		_ = info.ConnectionString
//	}
//
// # Strategies
//
//   - HostStrategy: host templates such as "__tenant__.example.com" or "*.__tenant__.?"
//   - HeaderStrategy: an HTTP header, "X-Tenant-ID" by default
//   - PathStrategy: a URL path segment
//   - RouteStrategy: a chi route parameter
//   - StaticStrategy: a fixed identifier, runs last by default
//   - DelegateStrategy: a caller supplied function
//
// The remote authentication callback strategy lives in package authcallback,
// stores live in package tenantstore.
//
// # Errors
//
// Construction problems are reported as ErrValidation. Strategies that
// receive a value they cannot read return ErrInvalidContextType. Any other
// failure during resolution is wrapped with ErrResolution. An identifier the
// store does not know is not an error: Resolve returns nil, nil.
package tenant
