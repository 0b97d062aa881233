package httpserver

import (
	"log/slog"
	"time"
)

type Option func(*config)

// WithAddr sets the listen address. ":0" picks a free port, see Server.Addr.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("WithAddr: addr cannot be empty")
	}
	return func(c *config) { c.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	return durationOption("WithReadTimeout", d, func(c *config) { c.readTimeout = d })
}

func WithReadHeaderTimeout(d time.Duration) Option {
	return durationOption("WithReadHeaderTimeout", d, func(c *config) { c.readHeaderTimeout = d })
}

func WithWriteTimeout(d time.Duration) Option {
	return durationOption("WithWriteTimeout", d, func(c *config) { c.writeTimeout = d })
}

func WithIdleTimeout(d time.Duration) Option {
	return durationOption("WithIdleTimeout", d, func(c *config) { c.idleTimeout = d })
}

// WithShutdownTimeout bounds how long Shutdown waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return durationOption("WithShutdownTimeout", d, func(c *config) { c.shutdownTimeout = d })
}

func durationOption(name string, d time.Duration, apply Option) Option {
	if d <= 0 {
		panic(name + ": duration must be > 0")
	}
	return apply
}

// WithLogger sets the server logger. Nil keeps the discarding default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook runs h with the bound address once the listener is open.
func WithStartHook(h func(addr string)) Option {
	if h == nil {
		panic("WithStartHook: nil hook")
	}
	return func(c *config) { c.startHooks = append(c.startHooks, h) }
}

// WithStopHook runs h after the server has shut down.
func WithStopHook(h func()) Option {
	if h == nil {
		panic("WithStopHook: nil hook")
	}
	return func(c *config) { c.stopHooks = append(c.stopHooks, h) }
}
