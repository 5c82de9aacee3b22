package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// SourceRateLimiter enforces a minimum delay between requests to the same
// posting source.
type SourceRateLimiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time // key: source name
	minDelay func(source string) time.Duration
}

// NewSourceRateLimiter creates a rate limiter; minDelay resolves the gap to
// enforce for each source.
func NewSourceRateLimiter(minDelay func(source string) time.Duration) *SourceRateLimiter {
	return &SourceRateLimiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
	}
}

// Wait blocks until enough time has passed since the last request to the
// given source. Returns an error if the context is cancelled while waiting.
func (r *SourceRateLimiter) Wait(ctx context.Context, source string) error {
	delay := r.minDelay(source)

	r.mu.Lock()
	last, ok := r.lastCall[source]
	now := time.Now()
	if !ok || now.Sub(last) >= delay {
		r.lastCall[source] = now
		r.mu.Unlock()
		return nil
	}
	remaining := delay - now.Sub(last)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", source, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[source] = time.Now()
	r.mu.Unlock()

	return nil
}

// RateLimitedFetcher is a decorator that enforces source-level rate limiting
// before delegating to the wrapped SourceFetcher.
type RateLimitedFetcher struct {
	inner   model.SourceFetcher
	limiter *SourceRateLimiter
	source  string
}

// NewRateLimitedFetcher wraps a SourceFetcher with source-level rate
// limiting. All fetchers targeting the same source share one limiter.
func NewRateLimitedFetcher(inner model.SourceFetcher, limiter *SourceRateLimiter, source string) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		inner:   inner,
		limiter: limiter,
		source:  source,
	}
}

// FetchPostings waits for the rate limiter to allow a request, then
// delegates to the wrapped fetcher.
func (f *RateLimitedFetcher) FetchPostings(ctx context.Context) ([]model.RawPosting, error) {
	if err := f.limiter.Wait(ctx, f.source); err != nil {
		return nil, err
	}
	return f.inner.FetchPostings(ctx)
}
