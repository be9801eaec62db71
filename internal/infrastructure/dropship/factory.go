package dropship

import (
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/launchlab/backend/internal/infrastructure/cache"
	"github.com/launchlab/backend/internal/infrastructure/config"
)

// NewClientFromConfig assembles the full production wiring: a shared redis
// client backing the durable token record and the cross-instance product
// cache, an in-process category cache, and the catalog client on top. The
// returned client owns the redis connection; Close releases it.
func NewClientFromConfig(cfg *config.Config, logger *zap.Logger) (*Client, error) {
	supplierCfg := &Config{
		Email:             cfg.Supplier.Email,
		APIKey:            cfg.Supplier.APIKey,
		APIBaseURL:        cfg.Supplier.APIBaseURL,
		TimeoutSeconds:    cfg.Supplier.TimeoutSeconds,
		MaxConcurrent:     cfg.Supplier.MaxConcurrent,
		MaxAttempts:       cfg.Supplier.MaxAttempts,
		RetryBaseDelay:    cfg.Supplier.RetryBaseDelay,
		RefreshBuffer:     cfg.Supplier.RefreshBuffer,
		StaleServeCeiling: cfg.Supplier.StaleServeCeiling,
		ProductCacheTTL:   cfg.Supplier.ProductCacheTTL,
		CategoryCacheTTL:  cfg.Supplier.CategoryCacheTTL,
	}

	redisCfg := cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr(),
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	client, err := NewClient(supplierCfg, ClientDeps{
		TokenStore:    cache.NewRedisTokenStoreWithClient(redisClient, ""),
		ProductCache:  cache.NewRedisProductCacheWithClient(redisClient, ""),
		CategoryCache: cache.NewMemoryCategoryCache(),
		Logger:        logger,
	})
	if err != nil {
		redisClient.Close()
		return nil, err
	}
	client.closer = redisClient.Close
	return client, nil
}
