package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, max int, window time.Duration) (*FixedWindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewFixedWindowLimiter(rdb, Config{MaxRequests: max, Window: window}), mr
}

func TestAllow_WithinBudget(t *testing.T) {
	l, _ := newLimiter(t, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, l.Allow(ctx, "a@x.com"))
	}
}

func TestAllow_RejectsOverBudget(t *testing.T) {
	l, _ := newLimiter(t, 2, time.Hour)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "a@x.com"))
	require.NoError(t, l.Allow(ctx, "a@x.com"))

	err := l.Allow(ctx, "a@x.com")
	assert.ErrorIs(t, err, common.ErrorTooManyRequests)
	assert.NotEmpty(t, common.Message(err, ""))
}

func TestAllow_KeyIsCaseInsensitive(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Hour)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "A@X.com"))
	assert.ErrorIs(t, l.Allow(ctx, " a@x.com "), common.ErrorTooManyRequests)
}

func TestAllow_PerEmail(t *testing.T) {
	l, _ := newLimiter(t, 1, time.Hour)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "a@x.com"))
	require.NoError(t, l.Allow(ctx, "b@x.com"))
}

func TestAllow_WindowExpires(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "a@x.com"))
	require.Error(t, l.Allow(ctx, "a@x.com"))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+"a@x.com"))

	mr.FastForward(time.Minute + time.Second)
	require.NoError(t, l.Allow(ctx, "a@x.com"))
}

func TestAllow_RedisDown(t *testing.T) {
	l, mr := newLimiter(t, 1, time.Minute)
	mr.Close()

	err := l.Allow(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, ErrRedisUnavailable)
}

func TestAllow_RestoresMissingTTL(t *testing.T) {
	l, mr := newLimiter(t, 2, time.Hour)
	ctx := context.Background()

	// A counter left behind by a failed EXPIRE.
	require.NoError(t, mr.Set(keyPrefix+"a@x.com", "2"))
	require.Zero(t, mr.TTL(keyPrefix+"a@x.com"))

	err := l.Allow(ctx, "a@x.com")
	assert.ErrorIs(t, err, common.ErrorTooManyRequests)
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"a@x.com"))

	mr.FastForward(time.Hour + time.Second)
	require.NoError(t, l.Allow(ctx, "a@x.com"))
}

func TestAllow_DoesNotExtendWindow(t *testing.T) {
	l, mr := newLimiter(t, 5, time.Hour)
	ctx := context.Background()

	require.NoError(t, l.Allow(ctx, "a@x.com"))
	mr.FastForward(30 * time.Minute)
	require.NoError(t, l.Allow(ctx, "a@x.com"))

	assert.Equal(t, 30*time.Minute, mr.TTL(keyPrefix+"a@x.com"))
}
