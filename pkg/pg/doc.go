// Package pg wires PostgreSQL into the tenant service: a pgx/v5 pool with
// retrying Connect, a ping based Healthcheck and goose migrations for the
// tenants table that tenantstore.PostgresStore reads.
//
// The schema ships inside the binary (see migrations/), so Migrate needs no
// files on disk:
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//		return err
//	}
//	store, err := tenantstore.NewPostgresStore(pool)
//
// Connection settings come from the PG_* environment variables declared on
// Config. IsDuplicateKeyError and IsNotFoundError classify pgx errors.
package pg
