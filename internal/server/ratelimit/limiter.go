// Package ratelimit throttles forgot-password requests per email with a
// fixed-window counter kept in Redis.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/redis/go-redis/v9"
)

var ErrRedisUnavailable = errors.New("rate limit redis unavailable")

const keyPrefix = "fintrack:fpw:"

// Config bounds a limiter to MaxRequests per Window for a given key.
type Config struct {
	MaxRequests int
	Window      time.Duration
}

type FixedWindowLimiter struct {
	redis  redis.UniversalClient
	config Config
}

func NewFixedWindowLimiter(client redis.UniversalClient, cfg Config) *FixedWindowLimiter {
	return &FixedWindowLimiter{redis: client, config: cfg}
}

// NewRedisClient builds a single-node client for addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Allow counts one request for email. It returns a TooManyRequests AppError
// once the window's budget is spent, and wraps ErrRedisUnavailable when the
// counter cannot be read. The counter and its TTL are read in one
// transaction; a counter found without a TTL gets the window again, so a
// failed EXPIRE cannot leave an email throttled for good.
func (l *FixedWindowLimiter) Allow(ctx context.Context, email string) error {
	key := keyPrefix + strings.ToLower(strings.TrimSpace(email))

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if ttl.Val() < 0 {
		if err := l.redis.Expire(ctx, key, l.config.Window).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	if incr.Val() > int64(l.config.MaxRequests) {
		return common.NewAppError(common.ErrorTooManyRequests, "Too many password reset requests, try again later")
	}

	return nil
}
