package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// INCR then arm the expiry on the first hit of a window.
var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

var errNilRedisClient = errors.New("redis client is nil")

// RedisFixedWindowLimiter shares counters across API instances under
// <prefix>:<scope>:<ip> keys.
type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisFixedWindowLimiter{client: client, prefix: prefix}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	if l.client == nil {
		return false, window, errNilRedisClient
	}
	if key == "" {
		key = "unknown"
	}
	windowMS := window.Milliseconds()
	if windowMS <= 0 {
		windowMS = 1000
	}
	values, err := redisFixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, windowMS).Int64Slice()
	if err != nil {
		return false, window, err
	}
	if len(values) != 2 {
		return false, window, fmt.Errorf("unexpected rate limit script reply of %d values", len(values))
	}
	count, ttlMS := values[0], values[1]
	if ttlMS <= 0 {
		ttlMS = windowMS
	}
	return count <= int64(limit), time.Duration(ttlMS) * time.Millisecond, nil
}
