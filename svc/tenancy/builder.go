package tenancy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/multitenant/pkg/authcallback"
	"github.com/dmitrymomot/multitenant/pkg/hostpattern"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
	"github.com/dmitrymomot/multitenant/pkg/tenantstore"
)

// Builder composes a store and an ordered set of strategies into a
// tenant.Resolver. Configuration errors are collected and reported together
// by Build. A Builder is meant for startup code and is not safe for
// concurrent use.
type Builder struct {
	store        Slot[tenant.Store]
	strategies   []pendingStrategy
	resolverOpts []tenant.ResolverOption
	logger       *slog.Logger
	errs         []error
	closers      []io.Closer
}

type pendingStrategy struct {
	build    func(logger *slog.Logger) (tenant.Strategy, error)
	priority *int
}

func NewBuilder() *Builder {
	return &Builder{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger is passed to the resolver and to components that log.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithResolverOptions appends raw resolver options, e.g. callbacks.
func (b *Builder) WithResolverOptions(opts ...tenant.ResolverOption) *Builder {
	b.resolverOpts = append(b.resolverOpts, opts...)
	return b
}

// Store returns the configured store, building it on first use.
func (b *Builder) Store(ctx context.Context) (tenant.Store, error) {
	store, err := b.store.Get(ctx)
	if errors.Is(err, ErrNotRegistered) {
		return nil, ErrNoStore
	}
	return store, err
}

// WithStore registers a ready store instance, replacing any previous one.
func (b *Builder) WithStore(store tenant.Store) *Builder {
	if store == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: store cannot be nil", tenant.ErrValidation))
		return b
	}
	b.store.ProvideInstance(store)
	return b
}

// WithStoreFactory registers a store built lazily by factory.
func (b *Builder) WithStoreFactory(factory Factory[tenant.Store], lifetime Lifetime) *Builder {
	if factory == nil {
		b.errs = append(b.errs, fmt.Errorf("%w: store factory cannot be nil", tenant.ErrValidation))
		return b
	}
	b.store.Provide(factory, lifetime)
	return b
}

func (b *Builder) WithInMemoryStore(opts ...tenantstore.MemoryOption) *Builder {
	return b.WithStoreFactory(func(context.Context) (tenant.Store, error) {
		return tenantstore.NewMemoryStore(opts...)
	}, Singleton)
}

func (b *Builder) WithConfigurationStore(source tenantstore.Source, opts ...tenantstore.ConfigurationOption) *Builder {
	return b.WithStoreFactory(func(ctx context.Context) (tenant.Store, error) {
		return tenantstore.NewConfigurationStore(ctx, source, opts...)
	}, Singleton)
}

func (b *Builder) WithHTTPRemoteStore(endpoint string, opts ...tenantstore.HTTPOption) *Builder {
	return b.WithStoreFactory(func(context.Context) (tenant.Store, error) {
		return tenantstore.NewHTTPRemoteStore(endpoint, opts...)
	}, Singleton)
}

func (b *Builder) WithPostgresStore(db tenantstore.PgxQuerier, opts ...tenantstore.PostgresOption) *Builder {
	return b.WithStoreFactory(func(context.Context) (tenant.Store, error) {
		return tenantstore.NewPostgresStore(db, opts...)
	}, Singleton)
}

func (b *Builder) WithMongoStore(db *mongo.Database, opts ...tenantstore.MongoOption) *Builder {
	return b.WithStoreFactory(func(ctx context.Context) (tenant.Store, error) {
		return tenantstore.NewMongoStore(ctx, db, opts...)
	}, Singleton)
}

// DecorateStore wraps the registered store. Registering a store afterwards
// discards the decoration.
func (b *Builder) DecorateStore(wrap func(tenant.Store) (tenant.Store, error)) *Builder {
	if !Decorate(&b.store, wrap) {
		b.errs = append(b.errs, fmt.Errorf("%w: register a store before decorating it", ErrNoStore))
	}
	return b
}

// WithDistributedCacheStore puts a read-through cache in front of the
// registered store.
func (b *Builder) WithDistributedCacheStore(cache tenantstore.DistributedCache, opts ...tenantstore.CacheOption) *Builder {
	return b.DecorateStore(func(inner tenant.Store) (tenant.Store, error) {
		all := append([]tenantstore.CacheOption{tenantstore.WithCacheLogger(b.logger)}, opts...)
		return tenantstore.NewDistributedCacheStore(inner, cache, all...)
	})
}

func (b *Builder) addStrategy(priority *int, build func(*slog.Logger) (tenant.Strategy, error)) *Builder {
	b.strategies = append(b.strategies, pendingStrategy{build: build, priority: priority})
	return b
}

// WithStrategy registers a strategy at its own priority.
func (b *Builder) WithStrategy(s tenant.Strategy) *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		if s == nil {
			return nil, fmt.Errorf("%w: strategy cannot be nil", tenant.ErrValidation)
		}
		return s, nil
	})
}

// WithStrategyPriority registers a strategy with an explicit priority.
func (b *Builder) WithStrategyPriority(s tenant.Strategy, priority int) *Builder {
	return b.addStrategy(&priority, func(*slog.Logger) (tenant.Strategy, error) {
		if s == nil {
			return nil, fmt.Errorf("%w: strategy cannot be nil", tenant.ErrValidation)
		}
		return s, nil
	})
}

func (b *Builder) WithHostStrategy(template string, opts ...hostpattern.Option) *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		return tenant.NewHostStrategy(template, opts...)
	})
}

func (b *Builder) WithStaticStrategy(identifier string) *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		return tenant.NewStaticStrategy(identifier)
	})
}

func (b *Builder) WithDelegateStrategy(fn tenant.DelegateFunc) *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		return tenant.NewDelegateStrategy(fn)
	})
}

func (b *Builder) WithHeaderStrategy(headerName string) *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		return tenant.NewHeaderStrategy(headerName), nil
	})
}

func (b *Builder) WithBasePathStrategy() *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		return tenant.NewBasePathStrategy(), nil
	})
}

func (b *Builder) WithRouteStrategy(param string) *Builder {
	return b.addStrategy(nil, func(*slog.Logger) (tenant.Strategy, error) {
		return tenant.NewRouteStrategy(param), nil
	})
}

func (b *Builder) WithRemoteAuthenticationCallbackStrategy(provider authcallback.SchemeProvider, opts ...authcallback.Option) *Builder {
	return b.addStrategy(nil, func(logger *slog.Logger) (tenant.Strategy, error) {
		all := append([]authcallback.Option{authcallback.WithLogger(logger)}, opts...)
		return authcallback.New(provider, all...)
	})
}

// Close releases resources owned by the builder, such as in-process caches.
func (b *Builder) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

// Build constructs every registered component and returns the resolver.
// All configuration errors are joined into one.
func (b *Builder) Build(ctx context.Context) (*tenant.Resolver, error) {
	errs := append([]error(nil), b.errs...)

	store, err := b.Store(ctx)
	if err != nil {
		errs = append(errs, err)
	}

	opts := []tenant.ResolverOption{tenant.WithResolverLogger(b.logger)}
	for _, p := range b.strategies {
		s, err := p.build(b.logger)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p.priority != nil {
			opts = append(opts, tenant.WithStrategyPriority(s, *p.priority))
		} else {
			opts = append(opts, tenant.WithStrategy(s))
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	opts = append(opts, b.resolverOpts...)
	return tenant.NewResolver(store, opts...)
}
