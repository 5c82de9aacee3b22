package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

func fixedDelay(d time.Duration) func(string) time.Duration {
	return func(string) time.Duration { return d }
}

func TestWaitFirstRequestDoesNotBlock(t *testing.T) {
	r := NewSourceRateLimiter(fixedDelay(time.Hour))

	start := time.Now()
	if err := r.Wait(context.Background(), "v2ex"); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first Wait blocked for %v", elapsed)
	}
}

func TestWaitEnforcesDelay(t *testing.T) {
	r := NewSourceRateLimiter(fixedDelay(50 * time.Millisecond))
	ctx := context.Background()

	if err := r.Wait(ctx, "v2ex"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	start := time.Now()
	if err := r.Wait(ctx, "v2ex"); err != nil {
		t.Fatalf("second Wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("second Wait returned after only %v", elapsed)
	}
}

func TestWaitIndependentSources(t *testing.T) {
	r := NewSourceRateLimiter(fixedDelay(time.Hour))
	ctx := context.Background()

	if err := r.Wait(ctx, "v2ex"); err != nil {
		t.Fatalf("Wait v2ex: %v", err)
	}
	start := time.Now()
	if err := r.Wait(ctx, "eleduck"); err != nil {
		t.Fatalf("Wait eleduck: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("different source blocked for %v", elapsed)
	}
}

func TestWaitCancelledContext(t *testing.T) {
	r := NewSourceRateLimiter(fixedDelay(time.Hour))

	if err := r.Wait(context.Background(), "v2ex"); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Wait(ctx, "v2ex"); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

type countingFetcher struct {
	calls int
}

func (f *countingFetcher) FetchPostings(_ context.Context) ([]model.RawPosting, error) {
	f.calls++
	return nil, nil
}

func TestRateLimitedFetcherDelegates(t *testing.T) {
	inner := &countingFetcher{}
	r := NewSourceRateLimiter(fixedDelay(0))
	f := NewRateLimitedFetcher(inner, r, "remoteok")

	if _, err := f.FetchPostings(context.Background()); err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 delegated call, got %d", inner.calls)
	}
}
