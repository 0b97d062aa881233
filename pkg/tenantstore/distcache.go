package tenantstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/text/cases"

	"github.com/dmitrymomot/multitenant/pkg/logger"
	"github.com/dmitrymomot/multitenant/pkg/tenant"
)

const (
	// DefaultCacheKeyPrefix namespaces cached tenant records.
	DefaultCacheKeyPrefix = "multitenant:identifier:"

	// DefaultSlidingExpiration is how long an unused cache entry lives.
	DefaultSlidingExpiration = 5 * time.Minute
)

// DistributedCache is a byte cache with sliding expiration: every hit
// extends the entry's lifetime by the ttl passed to Set.
type DistributedCache interface {
	// Get returns ErrCacheMiss for unknown keys.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DistributedCacheStore decorates a Store with a read-through cache.
// Cache failures never fail a lookup, they are logged and the inner store
// is used instead.
type DistributedCacheStore struct {
	inner  tenant.Store
	cache  DistributedCache
	prefix string
	ttl    time.Duration
	logger *slog.Logger

	caseSensitive bool
}

// CacheOption configures a DistributedCacheStore.
type CacheOption func(*DistributedCacheStore)

func WithKeyPrefix(prefix string) CacheOption {
	return func(s *DistributedCacheStore) {
		s.prefix = prefix
	}
}

// WithSlidingExpiration sets the entry lifetime. Non-positive values are ignored.
func WithSlidingExpiration(ttl time.Duration) CacheOption {
	return func(s *DistributedCacheStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCaseSensitiveKeys keeps identifiers unfolded in cache keys. Use it only
// in front of a case-sensitive store, otherwise "ACME" and "acme" get
// separate entries and removing one leaves the other cached.
func WithCaseSensitiveKeys(sensitive bool) CacheOption {
	return func(s *DistributedCacheStore) {
		s.caseSensitive = sensitive
	}
}

func WithCacheLogger(l *slog.Logger) CacheOption {
	return func(s *DistributedCacheStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewDistributedCacheStore returns tenant.ErrValidation when inner or cache is nil.
func NewDistributedCacheStore(inner tenant.Store, cache DistributedCache, opts ...CacheOption) (*DistributedCacheStore, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: inner store cannot be nil", tenant.ErrValidation)
	}
	if cache == nil {
		return nil, fmt.Errorf("%w: distributed cache cannot be nil", tenant.ErrValidation)
	}

	s := &DistributedCacheStore{
		inner:  inner,
		cache:  cache,
		prefix: DefaultCacheKeyPrefix,
		ttl:    DefaultSlidingExpiration,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *DistributedCacheStore) Name() string {
	if n, ok := s.inner.(tenant.Named); ok {
		return "cached-" + n.Name()
	}
	return "cached"
}

// Inner returns the decorated store.
func (s *DistributedCacheStore) Inner() tenant.Store { return s.inner }

// cacheKey folds identifier unless keys are case-sensitive, so every casing
// of an identifier shares one entry.
func (s *DistributedCacheStore) cacheKey(identifier string) string {
	if s.caseSensitive {
		return s.prefix + identifier
	}
	return s.prefix + cases.Fold().String(identifier)
}

func (s *DistributedCacheStore) GetByIdentifier(ctx context.Context, identifier string) (*tenant.Info, error) {
	key := s.cacheKey(identifier)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var info tenant.Info
		uerr := json.Unmarshal(data, &info)
		if uerr == nil {
			return &info, nil
		}
		s.logger.WarnContext(ctx, "discarding undecodable cached tenant",
			slog.String("key", key),
			logger.Error(uerr),
		)
	case !errors.Is(err, ErrCacheMiss):
		s.logger.WarnContext(ctx, "tenant cache read failed",
			slog.String("key", key),
			logger.Store(s.Name()),
			logger.Error(err),
		)
	}

	info, err := s.inner.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, tenant.ErrTenantNotFound
	}

	s.store(ctx, key, info)
	return info, nil
}

func (s *DistributedCacheStore) store(ctx context.Context, key string, info *tenant.Info) {
	if ctx.Err() != nil {
		return
	}

	data, err := json.Marshal(info)
	if err != nil {
		s.logger.WarnContext(ctx, "tenant cache encode failed", slog.String("key", key), logger.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "tenant cache write failed", slog.String("key", key), logger.Error(err))
	}
}

// Invalidate drops the cached entry for identifier.
func (s *DistributedCacheStore) Invalidate(ctx context.Context, identifier string) error {
	if err := s.cache.Delete(ctx, s.cacheKey(identifier)); err != nil && !errors.Is(err, ErrCacheMiss) {
		return err
	}
	return nil
}

func (s *DistributedCacheStore) GetByID(ctx context.Context, id string) (*tenant.Info, error) {
	f, ok := s.inner.(tenant.Finder)
	if !ok {
		return nil, tenant.ErrNotSupported
	}
	return f.GetByID(ctx, id)
}

func (s *DistributedCacheStore) List(ctx context.Context) ([]*tenant.Info, error) {
	l, ok := s.inner.(tenant.Lister)
	if !ok {
		return nil, tenant.ErrNotSupported
	}
	return l.List(ctx)
}

func (s *DistributedCacheStore) Add(ctx context.Context, info *tenant.Info) error {
	w, ok := s.inner.(tenant.Writer)
	if !ok {
		return tenant.ErrNotSupported
	}
	return w.Add(ctx, info)
}

// Update writes through and drops the cached entries for the new and the
// previous identifier.
func (s *DistributedCacheStore) Update(ctx context.Context, info *tenant.Info) error {
	w, ok := s.inner.(tenant.Writer)
	if !ok {
		return tenant.ErrNotSupported
	}

	var previous string
	if f, ok := s.inner.(tenant.Finder); ok && info != nil && info.ID != "" {
		if old, err := f.GetByID(ctx, info.ID); err == nil {
			previous = old.Identifier
		}
	}

	if err := w.Update(ctx, info); err != nil {
		return err
	}

	s.invalidateQuietly(ctx, info.Identifier)
	if previous != "" && s.cacheKey(previous) != s.cacheKey(info.Identifier) {
		s.invalidateQuietly(ctx, previous)
	}
	return nil
}

func (s *DistributedCacheStore) Remove(ctx context.Context, identifier string) error {
	w, ok := s.inner.(tenant.Writer)
	if !ok {
		return tenant.ErrNotSupported
	}
	if err := w.Remove(ctx, identifier); err != nil {
		return err
	}
	s.invalidateQuietly(ctx, identifier)
	return nil
}

func (s *DistributedCacheStore) invalidateQuietly(ctx context.Context, identifier string) {
	if err := s.Invalidate(ctx, identifier); err != nil {
		s.logger.WarnContext(ctx, "tenant cache invalidation failed",
			logger.TenantIdentifier(identifier),
			logger.Error(err),
		)
	}
}
