package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/launchlab/backend/internal/domain/supplier"
)

// defaultProductKeyPrefix namespaces product cache keys in redis.
const defaultProductKeyPrefix = "supplier:product:"

// RedisProductCache implements supplier.ProductCache on redis. This is the
// cross-instance cache class: product detail is expensive to refetch, so one
// instance's fetch serves the whole fleet until the TTL runs out.
type RedisProductCache struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds redis connection configuration.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address for the redis client.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewRedisProductCache creates a product cache with its own redis client and
// verifies the connection.
func NewRedisProductCache(cfg RedisConfig) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisProductCacheWithClient(client, ""), nil
}

// NewRedisProductCacheWithClient creates a cache sharing an existing client.
func NewRedisProductCacheWithClient(client *redis.Client, keyPrefix string) *RedisProductCache {
	if keyPrefix == "" {
		keyPrefix = defaultProductKeyPrefix
	}
	return &RedisProductCache{client: client, keyPrefix: keyPrefix}
}

// Get returns a live cached product or supplier.ErrCacheMiss. Redis evicts
// on TTL, so an existing key is live by definition.
func (c *RedisProductCache) Get(ctx context.Context, productID string) (*supplier.Product, error) {
	raw, err := c.client.Get(ctx, c.keyPrefix+productID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, supplier.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product cache: %w", err)
	}
	var product supplier.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, fmt.Errorf("failed to decode cached product: %w", err)
	}
	return &product, nil
}

// Put stores a product with the given TTL.
func (c *RedisProductCache) Put(ctx context.Context, productID string, product *supplier.Product, ttl time.Duration) error {
	raw, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+productID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write product cache: %w", err)
	}
	return nil
}

// Close closes the underlying redis client.
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

// Ensure RedisProductCache implements supplier.ProductCache
var _ supplier.ProductCache = (*RedisProductCache)(nil)
