package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a rate limit check.
type Decision struct {
	Allowed bool

	// RetryAfter is how long a rejected client should wait. It is zero when
	// the request is allowed.
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
// Callers treat an error as "allowed": limiting never takes the API down.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}
