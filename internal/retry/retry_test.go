package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

type scriptedFetcher struct {
	calls   int
	results []error
}

func (f *scriptedFetcher) FetchPostings(_ context.Context) ([]model.RawPosting, error) {
	err := f.results[f.calls]
	f.calls++
	if err != nil {
		return nil, err
	}
	return []model.RawPosting{{SourceID: "1"}}, nil
}

func newRetry(inner model.SourceFetcher, maxRetries int) *RetryFetcher {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRetryFetcher(inner, maxRetries, time.Millisecond, logger)
}

func TestFetchPostingsSucceedsFirstTry(t *testing.T) {
	inner := &scriptedFetcher{results: []error{nil}}
	f := newRetry(inner, 2)

	postings, err := f.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if len(postings) != 1 || inner.calls != 1 {
		t.Errorf("expected 1 posting from 1 call, got %d postings, %d calls", len(postings), inner.calls)
	}
}

func TestFetchPostingsRetriesTransientError(t *testing.T) {
	inner := &scriptedFetcher{results: []error{
		&model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")},
		nil,
	}}
	f := newRetry(inner, 2)

	if _, err := f.FetchPostings(context.Background()); err != nil {
		t.Fatalf("FetchPostings: %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("expected 2 calls, got %d", inner.calls)
	}
}

func TestFetchPostingsDoesNotRetryClientError(t *testing.T) {
	inner := &scriptedFetcher{results: []error{
		&model.HTTPError{StatusCode: 404, Err: errors.New("not found")},
	}}
	f := newRetry(inner, 2)

	if _, err := f.FetchPostings(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 call for non-retryable error, got %d", inner.calls)
	}
}

func TestFetchPostingsExhaustsRetries(t *testing.T) {
	serverErr := &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	inner := &scriptedFetcher{results: []error{serverErr, serverErr, serverErr}}
	f := newRetry(inner, 2)

	_, err := f.FetchPostings(context.Background())
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 calls, got %d", inner.calls)
	}
}

func TestBackoffHonorsRetryAfter(t *testing.T) {
	f := newRetry(nil, 1)
	err := &model.HTTPError{StatusCode: 429, RetryAfter: 42 * time.Second, Err: errors.New("rate limited")}

	if d := f.backoffDelay(1, err); d != 42*time.Second {
		t.Errorf("expected Retry-After to take precedence, got %v", d)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"429", &model.HTTPError{StatusCode: 429, Err: errors.New("x")}, true},
		{"500", &model.HTTPError{StatusCode: 500, Err: errors.New("x")}, true},
		{"404", &model.HTTPError{StatusCode: 404, Err: errors.New("x")}, false},
		{"plain network error", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
