package ratelimit

import "context"

// RateLimiter controls outbound call throughput per provider.
type RateLimiter interface {
	Allow(ctx context.Context, provider string) (bool, error)
	Wait(ctx context.Context, provider string) error
}
