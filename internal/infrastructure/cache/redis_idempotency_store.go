package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/unicef/etools-sub003/internal/domain/notification"
)

// RedisIdempotencyStore implements notification.IdempotencyStore on Redis.
// Suitable for multi-instance deployments where duplicate suppression must
// be shared.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIdempotencyStore connects and verifies the Redis backend.
func NewRedisIdempotencyStore(cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: "notify:sent:",
	}, nil
}

// NewRedisIdempotencyStoreWithClient wraps an existing client, useful when
// sharing one connection pool across components.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "notify:sent:"
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkSent records the key with a TTL. SETNX makes the check-and-set
// atomic across instances.
func (s *RedisIdempotencyStore) MarkSent(ctx context.Context, key notification.Key, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("%s%s:%s:%s", s.keyPrefix, key.SubjectID, key.TemplateID, key.Recipient)
	set, err := s.client.SetNX(ctx, redisKey, "1", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as sent: %w", err)
	}
	return !set, nil
}

// Close closes the Redis client.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ notification.IdempotencyStore = (*RedisIdempotencyStore)(nil)
