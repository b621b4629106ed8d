package api

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a thin JSON cache over Redis. A nil *Cache (or nil client) is a
// no-op, so callers never branch on whether caching is configured.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Read(ctx context.Context, key string, out any) bool {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Cache) Write(ctx context.Context, key string, val any) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, key, data, c.ttl).Err()
}

// Invalidate drops cached availability for a business. Called after every
// booking write so clients never see a stale free slot for longer than one
// round trip.
func (c *Cache) Invalidate(ctx context.Context, businessID string) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, "avail:"+businessID+":*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}
