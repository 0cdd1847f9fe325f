// Package cache provides a best-effort external mirror for the registry
// snapshot, backed by a Redis-compatible store.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/kb-labs/registry-host/domain/ports"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements ports.SnapshotCache as a thin accelerator: failures
// are surfaced to the caller but are never treated as fatal upstream.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache over an existing client. ttl of zero
// means entries never expire from the cache's own perspective.
func NewRedisCache(client *redis.Client, ttl time.Duration) ports.SnapshotCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Get returns the cached value and whether it was present.
func (c *RedisCache) Get(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Put writes value to the cache under key.
func (c *RedisCache) Put(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return c.client.Set(ctx, key, value, c.ttl).Err()
}
