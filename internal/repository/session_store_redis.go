package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisSideStore struct {
	client redis.UniversalClient
}

func NewRedisSideStore(client redis.UniversalClient) *RedisSideStore {
	return &RedisSideStore{client: client}
}

// Save issues SET key value PX ttl. A non-positive ttl removes the key.
func (s *RedisSideStore) Save(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return s.client.Del(ctx, key).Err()
	}
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisSideStore) Find(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionEntryNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *RedisSideStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
