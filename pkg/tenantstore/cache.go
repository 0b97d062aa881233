package tenantstore

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of redis.UniversalClient used by RedisCache.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	GetEx(ctx context.Context, key string, expiration time.Duration) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisCache is a DistributedCache on Redis. Reads use GETEX so every hit
// pushes the expiry forward by the sliding window.
type RedisCache struct {
	client  RedisClient
	sliding time.Duration
}

// NewRedisCache refreshes entries by sliding on each read. A non-positive
// sliding leaves the expiry untouched.
func NewRedisCache(client RedisClient, sliding time.Duration) *RedisCache {
	return &RedisCache{client: client, sliding: sliding}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	var cmd *redis.StringCmd
	if c.sliding > 0 {
		cmd = c.client.GetEx(ctx, key, c.sliding)
	} else {
		// GETEX with a zero expiration would PERSIST the key.
		cmd = c.client.Get(ctx, key)
	}

	data, err := cmd.Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

// MemoryCache is an in-process DistributedCache for single instance
// deployments and tests. Hits extend the entry by its original ttl.
type MemoryCache struct {
	cache *ttlcache.Cache[string, []byte]
}

// NewMemoryCache starts the expiry loop. Call Close to stop it.
// A zero capacity means unbounded.
func NewMemoryCache(capacity uint64) *MemoryCache {
	opts := []ttlcache.Option[string, []byte]{
		ttlcache.WithTTL[string, []byte](DefaultSlidingExpiration),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, []byte](capacity))
	}

	c := &MemoryCache{cache: ttlcache.New(opts...)}
	go c.cache.Start()
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	item := c.cache.Get(key)
	if item == nil {
		return nil, ErrCacheMiss
	}
	return bytes.Clone(item.Value()), nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.cache.Set(key, bytes.Clone(value), ttl)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Len returns the number of live entries.
func (c *MemoryCache) Len() int {
	return c.cache.Len()
}

func (c *MemoryCache) Close() error {
	c.cache.Stop()
	return nil
}
