package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testJob(hash string) model.NormalizedJob {
	return model.NormalizedJob{
		Title:       "Senior Go Engineer",
		Company:     "Acme",
		Categories:  []model.Category{model.CategoryBackend},
		RegionLimit: model.RegionWorldwide,
		WorkType:    model.WorkTypeFulltime,
		SourceSite:  "remoteok",
		SourceID:    "rok-1",
		OriginalURL: "https://remoteok.com/jobs/1",
		ContentHash: hash,
		DatePosted:  time.Now().UTC(),
	}
}

func TestInsertThenExistsByHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, testJob("hash-a"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero ID for a new job")
	}

	exists, err := s.ExistsByHash(ctx, "hash-a")
	if err != nil {
		t.Fatalf("ExistsByHash: %v", err)
	}
	if !exists {
		t.Error("expected ExistsByHash to return true after Insert")
	}
}

func TestExistsByHashUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.ExistsByHash(context.Background(), "no-such-hash")
	if err != nil {
		t.Fatalf("ExistsByHash: %v", err)
	}
	if exists {
		t.Error("expected ExistsByHash to return false for unknown hash")
	}
}

func TestInsertDuplicateHashReturnsZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Insert(ctx, testJob("hash-dup")); err != nil {
		t.Fatalf("first Insert: %v", err)
	}

	dup := testJob("hash-dup")
	dup.SourceID = "rok-2"
	id, err := s.Insert(ctx, dup)
	if err != nil {
		t.Fatalf("second Insert (duplicate): %v", err)
	}
	if id != 0 {
		t.Errorf("expected ID 0 for duplicate hash, got %d", id)
	}

	jobs, err := s.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected 1 stored job after duplicate insert, got %d", len(jobs))
	}
}

func TestRecentBySourceFiltersWindowAndSource(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Insert an "old" row by writing directly with a past scraped_at.
	_, err := s.db.Exec(`INSERT INTO jobs
		(title, company, category, region_limit, work_type, source_site,
		 source_id, original_url, content_hash, date_posted, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"Old Job", "Acme", "backend", "worldwide", "fulltime", "remoteok",
		"rok-old", "https://remoteok.com/jobs/old", "hash-old",
		time.Now().UTC(), time.Now().UTC().Add(-40*24*time.Hour),
	)
	if err != nil {
		t.Fatalf("inserting old job: %v", err)
	}

	fresh := testJob("hash-fresh")
	fresh.Title = "Fresh Job"
	if _, err := s.Insert(ctx, fresh); err != nil {
		t.Fatalf("inserting fresh job: %v", err)
	}

	other := testJob("hash-other")
	other.SourceSite = "v2ex"
	if _, err := s.Insert(ctx, other); err != nil {
		t.Fatalf("inserting other-source job: %v", err)
	}

	since := time.Now().UTC().Add(-30 * 24 * time.Hour)
	refs, err := s.RecentBySource(ctx, "remoteok", since)
	if err != nil {
		t.Fatalf("RecentBySource: %v", err)
	}
	if len(refs) != 1 {
		t.Fatalf("expected 1 recent remoteok job, got %d", len(refs))
	}
	if refs[0].Title != "Fresh Job" {
		t.Errorf("expected Fresh Job, got %q", refs[0].Title)
	}
}

func TestCleanupRemovesOldRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.db.Exec(`INSERT INTO jobs
		(title, company, category, region_limit, work_type, source_site,
		 source_id, original_url, content_hash, date_posted, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		"Stale Job", "Acme", "backend", "worldwide", "fulltime", "remoteok",
		"rok-stale", "https://remoteok.com/jobs/stale", "hash-stale",
		time.Now().UTC(), time.Now().UTC().Add(-100*24*time.Hour),
	)
	if err != nil {
		t.Fatalf("inserting stale job: %v", err)
	}
	if _, err := s.Insert(ctx, testJob("hash-kept")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	removed, err := s.Cleanup(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed row, got %d", removed)
	}

	jobs, err := s.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ContentHash != "hash-kept" {
		t.Errorf("expected only the kept job to remain, got %v", jobs)
	}
}

func TestUpdateCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, testJob("hash-cat"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	cats := []model.Category{model.CategoryAI, model.CategoryBackend}
	if err := s.UpdateCategories(ctx, id, cats); err != nil {
		t.Fatalf("UpdateCategories: %v", err)
	}

	jobs, err := s.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	got := jobs[0].Categories
	if len(got) != 2 || got[0] != model.CategoryAI || got[1] != model.CategoryBackend {
		t.Errorf("expected [ai backend], got %v", got)
	}
}

func TestSourceSites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testJob("hash-s1")
	a.SourceSite = "v2ex"
	b := testJob("hash-s2")
	b.SourceSite = "eleduck"
	for _, j := range []model.NormalizedJob{a, b} {
		if _, err := s.Insert(ctx, j); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	sites, err := s.SourceSites(ctx)
	if err != nil {
		t.Fatalf("SourceSites: %v", err)
	}
	if len(sites) != 2 || sites[0] != "eleduck" || sites[1] != "v2ex" {
		t.Errorf("expected [eleduck v2ex], got %v", sites)
	}
}
