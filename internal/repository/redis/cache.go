package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Cache stores JSON documents in redis. Concurrent misses on the same key
// share one loader call.
type Cache struct {
	rdb        *redis.Client
	sf         singleflight.Group
	defaultTTL time.Duration
}

func NewCache(client *redis.Client, defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = time.Minute
	}
	return &Cache{rdb: client, defaultTTL: defaultTTL}
}

func (c *Cache) get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	b, ok, err := c.get(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}

	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		// a corrupt entry behaves like a miss and is overwritten by the next load
		return zero, false, nil
	}

	return out, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value at key, calling loader on a miss.
// Redis errors on read fall through to the loader; loader errors are never cached.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok, err := GetJSON[T](ctx, c, key); err == nil && ok {
		return v, nil
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = SetJSON(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := vAny.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache %s: unexpected type %T", key, vAny)
	}

	return v, nil
}

func (c *Cache) InvalidateCampaigns(ctx context.Context) error {
	return c.Del(ctx, KeyCampaignSpend())
}
