package cache

import (
	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/redis"
	"github.com/flexprice/feeledger/internal/types"
)

// Initialize builds the cache selected by configuration
func Initialize(cfg *config.Configuration, log *logger.Logger) (Cache, error) {
	if !cfg.Cache.Enabled {
		log.Infow("cache disabled")
		return NoopCache{}, nil
	}

	switch cfg.Cache.Type {
	case types.CacheTypeRedis:
		client, err := redis.NewClient(cfg.Redis, log)
		if err != nil {
			return nil, err
		}
		log.Infow("initializing redis cache", "ttl", cfg.Cache.TTL, "prefix", cfg.Redis.KeyPrefix)
		return NewRedisCache(client, log, cfg.Cache.TTL), nil
	default:
		log.Infow("initializing in-memory cache", "ttl", cfg.Cache.TTL)
		return NewInMemoryCache(cfg.Cache.TTL), nil
	}
}
