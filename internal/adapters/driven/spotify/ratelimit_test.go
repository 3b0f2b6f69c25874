package spotify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AcquireWithinBurst(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 1, BurstSize: 3})

	for i := 0; i < 3; i++ {
		ok, err := rl.Acquire(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestRateLimiter_RecordRateLimit(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(DefaultRateLimit)
	rl.now = func() time.Time { return now }

	rl.RecordRateLimit(10 * time.Second)
	assert.Equal(t, now.Add(10*time.Second), rl.RetryAt())

	ok, err := rl.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(11 * time.Second)
	ok, err = rl.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_DefaultBackoff(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(DefaultRateLimit)
	rl.now = func() time.Time { return now }

	rl.RecordRateLimit(0)

	assert.Equal(t, now.Add(defaultBackoff), rl.RetryAt())
}

func TestRateLimiter_CancelledContext(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	_, _ = rl.Acquire(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := rl.Acquire(ctx)
	assert.False(t, ok)
	assert.Error(t, err)
}
