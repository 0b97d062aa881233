// Package httpserver runs the tenant service's HTTP listener.
//
// Server.Run opens the listener, serves until the context is cancelled or
// SIGINT/SIGTERM arrives, then drains requests within the shutdown timeout.
// Timeouts come from functional options or from Config (HTTP_* variables):
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		return err
//	}
//
// LivenessHandler and ReadinessHandler back the /health probes; readiness
// runs named Checks such as pg.Healthcheck or redis.Healthcheck and reports
// each outcome in a JSON body.
package httpserver
