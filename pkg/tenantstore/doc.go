// Package tenantstore provides tenant.Store implementations.
//
// Backing stores:
//
//   - MemoryStore keeps tenants in a map, case-insensitive unless
//     WithCaseSensitive is set.
//   - ConfigurationStore reads a YAML document from a Source (FileSource,
//     BytesSource or S3Source).
//   - HTTPRemoteStore asks a JSON endpoint such as
//     "https://tenants.example.com/{__tenant__}".
//   - PostgresStore and MongoStore persist tenants in a database.
//
// The configuration document keeps tenants under a section, by default
// "multitenant:stores:configuration". Defaults are merged beneath every entry:
//
//	multitenant:
//	  stores:
//	    configuration:
//	      defaults:
//	        connection_string: "Datasource=sample.db"
//	      tenants:
//	        - id: initech-id
//	          identifier: initech
//	          name: Initech
//
// DistributedCacheStore decorates any of them with a read-through cache.
// RedisCache refreshes entries with GETEX on every hit, MemoryCache does the
// same in process:
//
//	inner, _ := tenantstore.NewPostgresStore(pool)
//	store, _ := tenantstore.NewDistributedCacheStore(inner,
//		tenantstore.NewRedisCache(rdb, 10*time.Minute),
//		tenantstore.WithSlidingExpiration(10*time.Minute),
//	)
//
// All stores return tenant.ErrTenantNotFound for unknown identifiers.
package tenantstore
