package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sari-store/sari-backend/models"
)

// IdempotencyStore records the result of a committed checkout under a
// caller-supplied key, so a replayed request returns the original order
// instead of decrementing stock a second time. Records are scoped per user:
// the same key presented by a different user is a fresh checkout, never a
// replay of someone else's order. A nil result from Get means the key is
// unknown.
type IdempotencyStore interface {
	Get(ctx context.Context, userID, key string) (*models.CheckoutResult, error)
	Put(ctx context.Context, userID, key string, result *models.CheckoutResult) error
}

// RedisIdempotencyStore keeps checkout results in Redis with a TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisIdempotencyStore(client *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, ttl: ttl}
}

func (s *RedisIdempotencyStore) key(userID, k string) string {
	return "idem:checkout:" + userID + ":" + k
}

func (s *RedisIdempotencyStore) Get(ctx context.Context, userID, key string) (*models.CheckoutResult, error) {
	data, err := s.client.Get(ctx, s.key(userID, key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency lookup: %w", err)
	}
	var res models.CheckoutResult
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &res, nil
}

func (s *RedisIdempotencyStore) Put(ctx context.Context, userID, key string, result *models.CheckoutResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode idempotency record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID, key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency store: %w", err)
	}
	return nil
}
