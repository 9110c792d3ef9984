package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/healthmarket/internal/domain/providers"
	redisclient "github.com/zatekoja/healthmarket/internal/infrastructure/clients/redis"
)

// RedisStore keeps each key as a plain Redis string without expiry
type RedisStore struct {
	client *redisclient.Client
	prefix string
}

// NewRedisStore creates a Redis-backed store
func NewRedisStore(client *redisclient.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

var _ providers.StorageProvider = (*RedisStore)(nil)

// Get reads key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.client.Client().Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set writes key
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Client().Set(ctx, s.prefix+key, value, 0).Err()
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Client().Del(ctx, s.prefix+key).Err()
}
