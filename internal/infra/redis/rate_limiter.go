package redis

import (
	"context"
	"time"

	"clinic-credit-service/internal/usecase"
)

// Ensure compile-time conformance
var _ usecase.RateLimiter = (*RateLimiter)(nil)

// RateLimiter is a fixed-window counter: INCR the key, set the expiry
// on first hit, reject once the count exceeds the limit.
type RateLimiter struct {
	client RedisClient
	limit  int64
	window time.Duration
}

func NewRateLimiter(client RedisClient, limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window}
}

func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := r.client.Incr(ctx, "rate_limit:"+key)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, "rate_limit:"+key, r.window); err != nil {
			return false, err
		}
	}
	return count <= r.limit, nil
}
