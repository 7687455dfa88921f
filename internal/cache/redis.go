package cache

import (
	"context"
	"errors"
	"time"

	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/redis"
	jsoniter "github.com/json-iterator/go"
	goredis "github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on a shared Redis instance. Values are stored as
// JSON; Get returns the raw bytes and UnmarshalCacheValue decodes them.
type RedisCache struct {
	client            *redis.Client
	log               *logger.Logger
	defaultExpiration time.Duration
}

func NewRedisCache(client *redis.Client, log *logger.Logger, defaultExpiration time.Duration) *RedisCache {
	if defaultExpiration <= 0 {
		defaultExpiration = ExpiryDefaultInMemory
	}
	return &RedisCache{
		client:            client,
		log:               log,
		defaultExpiration: defaultExpiration,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := StartCacheSpan(ctx, "redis", "get", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	value, err := c.client.GetClient().Get(ctx, c.client.Key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warnw("redis cache get failed", "key", key, "error", err)
		}
		return nil, false
	}

	SetSpanSuccess(span)
	return value, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	span := StartCacheSpan(ctx, "redis", "set", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	if expiration <= 0 {
		expiration = c.defaultExpiration
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(value)
	if err != nil {
		c.log.Warnw("failed to encode cache value", "key", key, "error", err)
		return
	}

	if err := c.client.GetClient().Set(ctx, c.client.Key(key), data, expiration).Err(); err != nil {
		c.log.Warnw("redis cache set failed", "key", key, "error", err)
		return
	}
	SetSpanSuccess(span)
}

func (c *RedisCache) Delete(ctx context.Context, key string) {
	if err := c.client.GetClient().Del(ctx, c.client.Key(key)).Err(); err != nil {
		c.log.Warnw("redis cache delete failed", "key", key, "error", err)
	}
}

func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) {
	if _, err := c.client.DeleteByPattern(ctx, c.client.Key(prefix)+"*"); err != nil {
		c.log.Warnw("redis cache delete by prefix failed", "prefix", prefix, "error", err)
	}
}

// Flush only removes keys under the client's prefix
func (c *RedisCache) Flush(ctx context.Context) {
	if _, err := c.client.DeleteByPattern(ctx, c.client.Prefix()+"*"); err != nil {
		c.log.Warnw("redis cache flush failed", "error", err)
	}
}
