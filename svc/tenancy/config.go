package tenancy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/multitenant/pkg/authcallback"
	"github.com/dmitrymomot/multitenant/pkg/hostpattern"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
	"github.com/dmitrymomot/multitenant/pkg/tenantstore"
)

// Store kinds accepted by Config.Store.
const (
	StoreMemory        = "memory"
	StoreConfiguration = "configuration"
	StoreHTTP          = "http"
	StorePostgres      = "postgres"
	StoreMongo         = "mongo"
)

// Cache kinds accepted by Config.Cache.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Strategy names accepted by Config.Strategies.
const (
	StrategyHost         = "host"
	StrategyHeader       = "header"
	StrategyBasePath     = "base-path"
	StrategyRoute        = "route"
	StrategyStatic       = "static"
	StrategyAuthCallback = "remote-auth-callback"
)

type Config struct {
	Store         string `env:"TENANT_STORE" envDefault:"configuration"`
	CaseSensitive bool   `env:"TENANT_CASE_SENSITIVE" envDefault:"false"`

	ConfigurationSource  string        `env:"TENANT_CONFIG_SOURCE" envDefault:"file"` // file or s3
	ConfigurationFile    string        `env:"TENANT_CONFIG_FILE" envDefault:"tenants.yaml"`
	ConfigurationSection string        `env:"TENANT_CONFIG_SECTION" envDefault:"multitenant:stores:configuration"`
	RemoteEndpoint       string        `env:"TENANT_REMOTE_ENDPOINT"`
	RemoteTimeout        time.Duration `env:"TENANT_REMOTE_TIMEOUT" envDefault:"10s"`
	PostgresTable        string        `env:"TENANT_PG_TABLE" envDefault:"tenants"`
	MongoCollection      string        `env:"TENANT_MONGO_COLLECTION" envDefault:"tenants"`

	S3 tenantstore.S3Config

	Cache          string        `env:"TENANT_CACHE" envDefault:"none"` // none, memory or redis
	CacheTTL       time.Duration `env:"TENANT_CACHE_TTL" envDefault:"5m"`
	CacheKeyPrefix string        `env:"TENANT_CACHE_PREFIX" envDefault:"multitenant:identifier:"`
	CacheCapacity  uint64        `env:"TENANT_CACHE_CAPACITY" envDefault:"10000"`

	Strategies       []string      `env:"TENANT_STRATEGIES" envSeparator:"," envDefault:"host"`
	HostTemplate     string        `env:"TENANT_HOST_TEMPLATE" envDefault:"__tenant__.*"`
	HostMatchTimeout time.Duration `env:"TENANT_HOST_MATCH_TIMEOUT" envDefault:"100ms"`
	HeaderName       string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`
	RouteParam       string        `env:"TENANT_ROUTE_PARAM" envDefault:"__tenant__"`
	StaticIdentifier string        `env:"TENANT_STATIC_IDENTIFIER"`
}

// Deps carries the clients a Config may refer to.
type Deps struct {
	Postgres tenantstore.PgxQuerier
	Mongo    *mongo.Database
	Redis    tenantstore.RedisClient
	// S3 is optional, without it a client is built from Config.S3.
	S3      tenantstore.S3API
	Schemes authcallback.SchemeProvider
	Logger  *slog.Logger
}

// NewBuilderFromConfig translates cfg into a Builder. Problems are recorded
// on the builder and surface from Build.
func NewBuilderFromConfig(cfg Config, deps Deps) *Builder {
	b := NewBuilder().WithLogger(deps.Logger)

	configureStore(b, cfg, deps)
	configureCache(b, cfg, deps)

	for _, name := range cfg.Strategies {
		configureStrategy(b, strings.TrimSpace(name), cfg, deps)
	}
	return b
}

// NewFromConfig builds a resolver straight from cfg. Use NewBuilderFromConfig
// with an in-process cache so the cache can be closed.
func NewFromConfig(ctx context.Context, cfg Config, deps Deps) (*tenant.Resolver, error) {
	return NewBuilderFromConfig(cfg, deps).Build(ctx)
}

func configureStore(b *Builder, cfg Config, deps Deps) {
	switch strings.ToLower(cfg.Store) {
	case StoreMemory:
		b.WithInMemoryStore(tenantstore.WithCaseSensitive(cfg.CaseSensitive))

	case StoreConfiguration:
		opts := []tenantstore.ConfigurationOption{tenantstore.WithSection(cfg.ConfigurationSection)}
		b.WithStoreFactory(func(ctx context.Context) (tenant.Store, error) {
			src, err := configurationSource(ctx, cfg, deps)
			if err != nil {
				return nil, err
			}
			return tenantstore.NewConfigurationStore(ctx, src, opts...)
		}, Singleton)

	case StoreHTTP:
		b.WithHTTPRemoteStore(cfg.RemoteEndpoint,
			tenantstore.WithHTTPClient(&http.Client{Timeout: cfg.RemoteTimeout}),
		)

	case StorePostgres:
		if deps.Postgres == nil {
			b.errs = append(b.errs, fmt.Errorf("%w: postgres store needs a connection", ErrMissingDependency))
			return
		}
		b.WithPostgresStore(deps.Postgres,
			tenantstore.WithTable(cfg.PostgresTable),
			tenantstore.WithPostgresCaseSensitive(cfg.CaseSensitive),
		)

	case StoreMongo:
		if deps.Mongo == nil {
			b.errs = append(b.errs, fmt.Errorf("%w: mongo store needs a database", ErrMissingDependency))
			return
		}
		b.WithMongoStore(deps.Mongo,
			tenantstore.WithCollection(cfg.MongoCollection),
			tenantstore.WithMongoCaseSensitive(cfg.CaseSensitive),
		)

	default:
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrUnknownStoreKind, cfg.Store))
	}
}

func configurationSource(ctx context.Context, cfg Config, deps Deps) (tenantstore.Source, error) {
	switch strings.ToLower(cfg.ConfigurationSource) {
	case "", "file":
		return tenantstore.FileSource(cfg.ConfigurationFile), nil
	case "s3":
		if deps.S3 != nil {
			return tenantstore.NewS3Source(deps.S3, cfg.S3.Bucket, cfg.S3.Key)
		}
		return tenantstore.NewS3SourceFromConfig(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: unknown configuration source %q", tenantstore.ErrInvalidConfiguration, cfg.ConfigurationSource)
	}
}

func configureCache(b *Builder, cfg Config, deps Deps) {
	opts := []tenantstore.CacheOption{
		tenantstore.WithKeyPrefix(cfg.CacheKeyPrefix),
		tenantstore.WithSlidingExpiration(cfg.CacheTTL),
		tenantstore.WithCaseSensitiveKeys(cfg.CaseSensitive),
	}

	switch strings.ToLower(cfg.Cache) {
	case "", CacheNone:
	case CacheMemory:
		mc := tenantstore.NewMemoryCache(cfg.CacheCapacity)
		b.closers = append(b.closers, mc)
		b.WithDistributedCacheStore(mc, opts...)
	case CacheRedis:
		if deps.Redis == nil {
			b.errs = append(b.errs, fmt.Errorf("%w: redis cache needs a client", ErrMissingDependency))
			return
		}
		b.WithDistributedCacheStore(tenantstore.NewRedisCache(deps.Redis, cfg.CacheTTL), opts...)
	default:
		b.errs = append(b.errs, fmt.Errorf("%w: unknown cache %q", tenant.ErrValidation, cfg.Cache))
	}
}

func configureStrategy(b *Builder, name string, cfg Config, deps Deps) {
	switch strings.ToLower(name) {
	case "":
	case StrategyHost:
		b.WithHostStrategy(cfg.HostTemplate, hostpattern.WithTimeout(cfg.HostMatchTimeout))
	case StrategyHeader:
		b.WithHeaderStrategy(cfg.HeaderName)
	case StrategyBasePath:
		b.WithBasePathStrategy()
	case StrategyRoute:
		b.WithRouteStrategy(cfg.RouteParam)
	case StrategyStatic:
		b.WithStaticStrategy(cfg.StaticIdentifier)
	case StrategyAuthCallback:
		if deps.Schemes == nil {
			b.errs = append(b.errs, fmt.Errorf("%w: %s strategy needs authentication schemes", ErrMissingDependency, name))
			return
		}
		b.WithRemoteAuthenticationCallbackStrategy(deps.Schemes)
	default:
		b.errs = append(b.errs, fmt.Errorf("%w: %q", ErrUnknownStrategy, name))
	}
}
