package dedup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/textnorm"
)

// fakeStore serves canned hash and window results.
type fakeStore struct {
	hashes    map[string]bool
	recent    map[string][]model.JobRef // keyed by source site
	hashErr   error
	recentErr error

	gotSince  time.Time
	gotSource string
}

func (s *fakeStore) ExistsByHash(_ context.Context, hash string) (bool, error) {
	if s.hashErr != nil {
		return false, s.hashErr
	}
	return s.hashes[hash], nil
}

func (s *fakeStore) RecentBySource(_ context.Context, source string, since time.Time) ([]model.JobRef, error) {
	s.gotSource = source
	s.gotSince = since
	if s.recentErr != nil {
		return nil, s.recentErr
	}
	return s.recent[source], nil
}

func (s *fakeStore) Insert(_ context.Context, _ model.NormalizedJob) (int64, error) {
	return 0, errors.New("not used")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func job(source, title, desc string) model.NormalizedJob {
	return model.NormalizedJob{
		SourceSite:  source,
		Title:       title,
		Description: desc,
		ContentHash: textnorm.ContentHash(title, desc),
	}
}

func TestIsDuplicateExactHash(t *testing.T) {
	j := job("v2ex", "招聘资深 Golang 后端工程师", "远程办公")
	store := &fakeStore{hashes: map[string]bool{j.ContentHash: true}}
	e := NewEngine(store, discardLogger())

	dup, err := e.IsDuplicate(context.Background(), j)
	if err != nil {
		t.Fatalf("IsDuplicate() error: %v", err)
	}
	if !dup {
		t.Errorf("identical content hash not flagged as duplicate")
	}
}

func TestIsDuplicateFuzzyTitle(t *testing.T) {
	// Same listing re-posted with seniority filler and extra whitespace:
	// hashes differ (descriptions differ) but normalized titles are near-identical.
	stored := "招聘资深 Golang 后端开发工程师"
	candidate := job("v2ex", "招聘 Golang 后端开发工程师", "新的描述文字")

	store := &fakeStore{
		hashes: map[string]bool{},
		recent: map[string][]model.JobRef{
			"v2ex": {{ID: 7, Title: stored}},
		},
	}
	e := NewEngine(store, discardLogger())

	dup, err := e.IsDuplicate(context.Background(), candidate)
	if err != nil {
		t.Fatalf("IsDuplicate() error: %v", err)
	}
	if !dup {
		t.Errorf("near-identical title within window not flagged as duplicate")
	}
	if store.gotSource != "v2ex" {
		t.Errorf("window queried for source %q, want v2ex", store.gotSource)
	}
}

func TestIsDuplicateRespectsWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{hashes: map[string]bool{}}
	e := NewEngine(store, discardLogger())
	e.now = func() time.Time { return now }

	_, err := e.IsDuplicate(context.Background(), job("v2ex", "招聘资深 Golang 后端工程师", ""))
	if err != nil {
		t.Fatalf("IsDuplicate() error: %v", err)
	}
	wantSince := now.Add(-Window)
	if !store.gotSince.Equal(wantSince) {
		t.Errorf("window since = %v, want %v", store.gotSince, wantSince)
	}
}

func TestIsDuplicateShortTitleSkipsFuzzy(t *testing.T) {
	store := &fakeStore{
		hashes: map[string]bool{},
		recent: map[string][]model.JobRef{
			"remoteok": {{ID: 1, Title: "web dev"}},
		},
	}
	e := NewEngine(store, discardLogger())

	dup, err := e.IsDuplicate(context.Background(), job("remoteok", "web dev", ""))
	if err != nil {
		t.Fatalf("IsDuplicate() error: %v", err)
	}
	if dup {
		t.Errorf("short generic title was fuzzy-matched; fuzzy check should be skipped")
	}
	if !store.gotSince.IsZero() {
		t.Errorf("window query ran for a short title")
	}
}

func TestIsDuplicateDistinctTitles(t *testing.T) {
	store := &fakeStore{
		hashes: map[string]bool{},
		recent: map[string][]model.JobRef{
			"v2ex": {{ID: 3, Title: "招聘 Rust 区块链合约工程师"}},
		},
	}
	e := NewEngine(store, discardLogger())

	dup, err := e.IsDuplicate(context.Background(), job("v2ex", "前端 React 可视化开发岗位", ""))
	if err != nil {
		t.Fatalf("IsDuplicate() error: %v", err)
	}
	if dup {
		t.Errorf("unrelated titles flagged as duplicate")
	}
}

func TestIsDuplicateStoreErrors(t *testing.T) {
	e := NewEngine(&fakeStore{hashErr: errors.New("db down")}, discardLogger())
	if _, err := e.IsDuplicate(context.Background(), job("v2ex", "招聘资深 Golang 后端工程师", "")); err == nil {
		t.Errorf("hash check error not propagated")
	}

	e = NewEngine(&fakeStore{hashes: map[string]bool{}, recentErr: errors.New("db down")}, discardLogger())
	if _, err := e.IsDuplicate(context.Background(), job("v2ex", "招聘资深 Golang 后端工程师", "")); err == nil {
		t.Errorf("window query error not propagated")
	}
}
