package wishlist

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// RateLimiter paces page requests with a token bucket so a run does not
// trip the source's anti-scraping defenses.
type RateLimiter struct {
	limiter *rate.Limiter
	calls   atomic.Int64
}

// NewRateLimiter creates a limiter allowing perSecond requests with the
// given burst. A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request is allowed or ctx is canceled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}
	r.calls.Add(1)
	return nil
}

// Calls returns the number of requests admitted so far.
func (r *RateLimiter) Calls() int64 {
	return r.calls.Load()
}
