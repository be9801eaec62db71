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

// defaultTokenKey is the fixed key of the shared token record. One record,
// owned jointly by all instances; last write wins.
const defaultTokenKey = "supplier:token"

// tokenRecord is the serialized form of the durable token row.
type tokenRecord struct {
	supplier.TokenPair
	UpdatedAt int64 `json:"updatedAt"`
}

// RedisTokenStore implements supplier.TokenStore on redis, making a token
// refreshed by one instance visible to the rest of the fleet.
type RedisTokenStore struct {
	client *redis.Client
	key    string
}

// NewRedisTokenStore creates a token store with its own redis client and
// verifies the connection.
func NewRedisTokenStore(cfg RedisConfig) (*RedisTokenStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisTokenStoreWithClient(client, ""), nil
}

// NewRedisTokenStoreWithClient creates a store sharing an existing client.
func NewRedisTokenStoreWithClient(client *redis.Client, key string) *RedisTokenStore {
	if key == "" {
		key = defaultTokenKey
	}
	return &RedisTokenStore{client: client, key: key}
}

// Load returns the shared token record or supplier.ErrTokenNotFound.
func (s *RedisTokenStore) Load(ctx context.Context) (*supplier.TokenPair, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, supplier.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token record: %w", err)
	}
	var record tokenRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode token record: %w", err)
	}
	pair := record.TokenPair
	return &pair, nil
}

// Save replaces the shared token record wholesale. No TTL: the pair's own
// refresh expiry governs its useful life.
func (s *RedisTokenStore) Save(ctx context.Context, pair *supplier.TokenPair) error {
	record := tokenRecord{
		TokenPair: *pair,
		UpdatedAt: time.Now().Unix(),
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode token record: %w", err)
	}
	if err := s.client.Set(ctx, s.key, raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to write token record: %w", err)
	}
	return nil
}

// Close closes the underlying redis client.
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}

// Ensure RedisTokenStore implements supplier.TokenStore
var _ supplier.TokenStore = (*RedisTokenStore)(nil)
