package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSearchCacheStore keys pages as <prefix>:v<version>:<sha256(query)>.
// Invalidate bumps the version so stale pages age out through their TTL.
type RedisSearchCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSearchCacheStore(client redis.UniversalClient, prefix string) *RedisSearchCacheStore {
	if prefix == "" {
		prefix = "stadium_search"
	}
	return &RedisSearchCacheStore{client: client, prefix: prefix}
}

func (s *RedisSearchCacheStore) Generation(ctx context.Context) (uint64, error) {
	if s.client == nil {
		return 0, nil
	}
	v, err := s.client.Get(ctx, s.versionKey()).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (s *RedisSearchCacheStore) Get(ctx context.Context, generation uint64, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	value, err := s.client.Get(ctx, s.dataKey(generation, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set writes under the caller's generation even when it is no longer current.
// Such entries are unreachable and expire with their TTL.
func (s *RedisSearchCacheStore) Set(ctx context.Context, generation uint64, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.dataKey(generation, key), value, ttl).Err()
}

func (s *RedisSearchCacheStore) Invalidate(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Incr(ctx, s.versionKey()).Err()
}

func (s *RedisSearchCacheStore) versionKey() string {
	return s.prefix + ":version"
}

func (s *RedisSearchCacheStore) dataKey(version uint64, key string) string {
	return fmt.Sprintf("%s:v%d:%s", s.prefix, version, hashToken(key))
}

func hashToken(v string) string {
	sum := sha256.Sum256([]byte(v))
	return hex.EncodeToString(sum[:])
}
