package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSONCache stores JSON snapshots under a key prefix with a fixed TTL.
// Used for the stock snapshot and agent dashboard stats.
type JSONCache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewJSONCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *JSONCache {
	return &JSONCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *JSONCache) key(k string) string { return c.prefix + ":" + k }

// Get decodes the cached value into dst and reports whether it was present.
func (c *JSONCache) Get(ctx context.Context, k string, dst any) (bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(k)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// stale layout from an older build; drop it
		_ = c.rdb.Del(ctx, c.key(k)).Err()
		return false, nil
	}
	return true, nil
}

func (c *JSONCache) Set(ctx context.Context, k string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(k), raw, c.ttl).Err()
}

func (c *JSONCache) Delete(ctx context.Context, k string) error {
	return c.rdb.Del(ctx, c.key(k)).Err()
}
