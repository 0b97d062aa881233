// Package logger builds *slog.Logger instances for the tenant service.
//
// New assembles a text or JSON handler from functional options and wraps it
// in a ContextHandler, which runs ContextExtractor callbacks on every record.
// That is how the resolved tenant ends up in request logs:
//
//	log := logger.New(
//		logger.WithEnvironment("production", "tenantd"),
//		logger.WithContextExtractors(tenant.LoggerExtractor()),
//	)
//	logger.SetAsDefault(log)
//
// Config mirrors the LOG_* and APP_ENV variables; FromConfig turns it into
// options:
//
//	var cfg logger.Config
//	config.MustLoad(&cfg)
//	opts, err := logger.FromConfig(cfg)
//
// Attribute helpers (TenantID, Strategy, Store, Error and friends) keep key
// names consistent across packages. Helpers given a zero value return an
// empty slog.Attr, which slog drops.
package logger
