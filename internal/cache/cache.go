package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is the key/value cache used for slow changing reference data
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

// InMemoryCache implements Cache on top of patrickmn/go-cache
type InMemoryCache struct {
	cache *gocache.Cache
}

// NewInMemoryCache creates an in-memory cache whose entries expire after
// defaultExpiration unless Set overrides it.
func NewInMemoryCache(defaultExpiration time.Duration) *InMemoryCache {
	if defaultExpiration <= 0 {
		defaultExpiration = ExpiryDefaultInMemory
	}
	return &InMemoryCache{
		cache: gocache.New(defaultExpiration, 2*defaultExpiration),
	}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	span := StartCacheSpan(ctx, "inmemory", "get", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	value, found := c.cache.Get(key)
	SetSpanSuccess(span)
	return value, found
}

// Set stores value; a zero expiration uses the cache default
func (c *InMemoryCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) {
	span := StartCacheSpan(ctx, "inmemory", "set", map[string]interface{}{"key": key})
	defer FinishSpan(span)

	if expiration <= 0 {
		expiration = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, expiration)
	SetSpanSuccess(span)
}

func (c *InMemoryCache) Delete(_ context.Context, key string) {
	c.cache.Delete(key)
}

func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) {
	for key := range c.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			c.cache.Delete(key)
		}
	}
}

func (c *InMemoryCache) Flush(_ context.Context) {
	c.cache.Flush()
}

// NoopCache never stores anything; used when caching is disabled
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) (interface{}, bool)          { return nil, false }
func (NoopCache) Set(context.Context, string, interface{}, time.Duration) {}
func (NoopCache) Delete(context.Context, string)                          {}
func (NoopCache) DeleteByPrefix(context.Context, string)                  {}
func (NoopCache) Flush(context.Context)                                   {}
