package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// Keys have the form "<prefix>:<window seconds>:<key>".
type RedisLimiter struct {
	client redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter allows limit requests per window for each key.
func NewRedisLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}
}

func (l *RedisLimiter) key(key string) string {
	return l.prefix + ":" + strconv.FormatInt(int64(l.window.Seconds()), 10) + ":" + key
}

// Allow implements Limiter.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := l.key(key)

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return Decision{Allowed: true}, fmt.Errorf("rate limit increment failed: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return Decision{Allowed: true}, fmt.Errorf("rate limit expire failed: %w", err)
		}
	}

	if count <= l.limit {
		return Decision{Allowed: true}, nil
	}

	retryAfter := l.window
	if ttl, err := l.client.TTL(ctx, k).Result(); err == nil && ttl > 0 {
		retryAfter = ttl
	}
	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}

// NewRedisClient connects to Redis and verifies the connection with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
