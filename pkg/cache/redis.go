package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// keyPrefix namespaces the application keys in a shared Redis
const keyPrefix = "forum-geni:"

// RedisStore keeps entries in Redis so every server instance shares them
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get implements Store
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements Store
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+key, value, ttl).Err()
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, keyPrefix+key)
	}
	return s.client.Del(ctx, prefixed...).Err()
}

// Name implements Store
func (s *RedisStore) Name() string {
	return "redis"
}

// NewStore picks the backend named by backend ("memory" or "redis"). A Redis
// backend that cannot be reached falls back to memory.
func NewStore(ctx context.Context, backend, redisURL string, logger *zap.Logger) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(10 * time.Minute), nil
	case "redis":
	default:
		return nil, fmt.Errorf("unknown cache backend %q", backend)
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, falling back to memory cache", zap.Error(err))
		_ = client.Close()
		return NewMemoryStore(10 * time.Minute), nil
	}

	logger.Info("using redis cache", zap.String("addr", opts.Addr))
	return NewRedisStore(client), nil
}
