package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis limiter test")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewRedisLimiter(client, "test-"+uuid.NewString(), 2, time.Minute)

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}

	d, err := limiter.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, d.RetryAfter, time.Minute)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	_, err := NewRedisClient(context.Background(), "127.0.0.1:1", "", 0)
	assert.Error(t, err)
}

func TestRedisLimiter_Key(t *testing.T) {
	t.Parallel()

	limiter := NewRedisLimiter(nil, "", 5, 90*time.Second)
	assert.Equal(t, "rl:90:10.0.0.1", limiter.key("10.0.0.1"))
}
