package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter is a fixed-window per-IP rate limiter backed by Redis.
// Each (purpose, ip) pair gets its own counter so that hammering the
// login endpoint does not lock an address out of registration.
type Limiter struct {
	client   *redis.Client
	requests int
	window   time.Duration
}

func NewLimiter(client *redis.Client, requests int, window time.Duration) *Limiter {
	return &Limiter{
		client:   client,
		requests: requests,
		window:   window,
	}
}

func ipKey(ip, purpose string) string {
	return fmt.Sprintf("ratelimit:%s:%s", purpose, ip)
}

// CheckIPRateLimitWithPurpose reports whether the IP has exhausted its
// budget for the given purpose in the current window
func (l *Limiter) CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error) {
	count, err := l.client.Get(ctx, ipKey(ip, purpose)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return count >= l.requests, nil
}

// RecordIPRequestWithPurpose counts a request against the IP's budget.
// The window starts with the first request and is not sliding.
func (l *Limiter) RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error {
	key := ipKey(ip, purpose)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}

	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return nil
}
