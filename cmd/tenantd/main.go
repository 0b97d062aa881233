package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/multitenant/pkg/authcallback"
	"github.com/dmitrymomot/multitenant/pkg/config"
	"github.com/dmitrymomot/multitenant/pkg/httpserver"
	"github.com/dmitrymomot/multitenant/pkg/logger"
	"github.com/dmitrymomot/multitenant/pkg/mongo"
	"github.com/dmitrymomot/multitenant/pkg/pg"
	"github.com/dmitrymomot/multitenant/pkg/redis"
	"github.com/dmitrymomot/multitenant/pkg/requestid"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
	"github.com/dmitrymomot/multitenant/svc/tenancy"
)

func main() {
	if err := run(); err != nil {
		slog.Error("tenantd stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		logCfg    logger.Config
		tenantCfg tenancy.Config
		pgCfg     pg.Config
		mongoCfg  mongo.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		authCfg   authConfig
	)
	if err := errors.Join(
		config.Load(&logCfg),
		config.Load(&tenantCfg),
		config.Load(&pgCfg),
		config.Load(&mongoCfg),
		config.Load(&redisCfg),
		config.Load(&httpCfg),
		config.Load(&authCfg),
	); err != nil {
		return err
	}

	logOpts, err := logger.FromConfig(logCfg)
	if err != nil {
		return err
	}
	log := logger.New(append(logOpts, logger.WithContextExtractors(
		requestid.LoggerExtractor(),
		tenant.LoggerExtractor(),
	))...)
	logger.SetAsDefault(log)

	var closeErrs []error
	defer func() {
		if attr := logger.Errors(closeErrs...); attr.Key != "" {
			log.Warn("shutdown cleanup failed", attr)
		}
	}()

	deps := tenancy.Deps{Logger: log.With(logger.Component("tenancy"))}
	var checks []httpserver.Check

	if pgCfg.Enabled() {
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		if pgCfg.Migrate {
			if err := pg.Migrate(ctx, pool, pgCfg, log.With(logger.Component("migrate"))); err != nil {
				return err
			}
		}
		deps.Postgres = pool
		checks = append(checks, httpserver.Check{Name: "postgres", Probe: pg.Healthcheck(pool)})
	}

	if mongoCfg.Enabled() {
		db, err := mongo.NewWithDatabase(ctx, mongoCfg)
		if err != nil {
			return err
		}
		defer func() { closeErrs = append(closeErrs, db.Client().Disconnect(context.Background())) }()
		deps.Mongo = db
		checks = append(checks, httpserver.Check{Name: "mongo", Probe: mongo.Healthcheck(db.Client())})
	}

	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() { closeErrs = append(closeErrs, client.Close()) }()
		deps.Redis = client
		checks = append(checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)})
	}

	scheme, err := authCfg.scheme()
	if err != nil {
		return err
	}
	if scheme != nil {
		deps.Schemes = authcallback.Schemes{scheme}
	}

	builder := tenancy.NewBuilderFromConfig(tenantCfg, deps).
		WithResolverOptions(tenant.WithOnNotResolved(func(ctx context.Context, identifier string) {
			log.InfoContext(ctx, "unknown tenant", logger.TenantIdentifier(identifier))
		}))
	defer func() { closeErrs = append(closeErrs, builder.Close()) }()

	resolver, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "tenant resolver ready",
		slog.Any("strategies", resolver.Strategies()),
		logger.Store(tenantCfg.Store),
	)

	srv := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log.With(logger.Component("httpserver"))))
	return srv.Run(ctx, newRouter(routerDeps{
		resolver:   resolver,
		logger:     log,
		checks:     checks,
		scheme:     scheme,
		routeParam: tenantCfg.RouteParam,
	}))
}
