// Package redis connects the tenant service to Redis, which backs the
// distributed tenant cache (tenantstore.RedisCache).
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//	if cfg.Enabled() {
//		client, err := redis.Connect(ctx, cfg)
//		if err != nil {
//			return err
//		}
//		defer client.Close()
//		cache := tenantstore.NewRedisCache(client, 5*time.Minute)
//	}
//
// Connect retries the initial ping; Healthcheck wraps ping failures in
// ErrHealthcheckFailed for readiness probes.
package redis
