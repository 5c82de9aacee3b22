package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// SQLiteStore is the persistence gateway: canonical job records in a SQLite
// database with a unique content-hash index for insert-or-ignore dedup.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the jobs table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS jobs (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		title        TEXT NOT NULL,
		company      TEXT NOT NULL,
		category     TEXT NOT NULL,
		region_limit TEXT NOT NULL,
		work_type    TEXT NOT NULL,
		source_site  TEXT NOT NULL,
		source_id    TEXT NOT NULL,
		original_url TEXT NOT NULL,
		apply_url    TEXT NOT NULL DEFAULT '',
		description  TEXT NOT NULL DEFAULT '',
		salary_min   INTEGER NOT NULL DEFAULT 0,
		salary_max   INTEGER NOT NULL DEFAULT 0,
		content_hash TEXT NOT NULL UNIQUE,
		date_posted  DATETIME NOT NULL,
		scraped_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_jobs_source_scraped ON jobs(source_site, scraped_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating jobs table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// ExistsByHash returns true if a job with the given content hash is stored.
func (s *SQLiteStore) ExistsByHash(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM jobs WHERE content_hash = ?", hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking hash: %w", err)
	}
	return true, nil
}

// RecentBySource returns {id, title} projections of jobs from sourceSite
// scraped since the given time, for the dedup window.
func (s *SQLiteStore) RecentBySource(ctx context.Context, sourceSite string, since time.Time) ([]model.JobRef, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title FROM jobs WHERE source_site = ? AND scraped_at >= ?",
		sourceSite, since.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent jobs for %s: %w", sourceSite, err)
	}
	defer rows.Close()

	var refs []model.JobRef
	for rows.Next() {
		var ref model.JobRef
		if err := rows.Scan(&ref.ID, &ref.Title); err != nil {
			return nil, fmt.Errorf("scanning job ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// Insert persists a job with insert-or-ignore semantics on content_hash and
// returns the new row ID, or 0 when the hash already existed. The uniqueness
// check and the insert are a single statement, so a concurrent run cannot
// race a duplicate past the dedup engine's read.
func (s *SQLiteStore) Insert(ctx context.Context, job model.NormalizedJob) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO jobs
		(title, company, category, region_limit, work_type, source_site,
		 source_id, original_url, apply_url, description, salary_min,
		 salary_max, content_hash, date_posted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.Title, job.Company, joinCategories(job.Categories), job.RegionLimit,
		job.WorkType, job.SourceSite, job.SourceID, job.OriginalURL,
		job.ApplyURL, job.Description, job.SalaryMin, job.SalaryMax,
		job.ContentHash, job.DatePosted.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting job %q: %w", job.Title, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("inserting job %q: %w", job.Title, err)
	}
	if affected == 0 {
		return 0, nil
	}
	return res.LastInsertId()
}

// Cleanup deletes jobs scraped before the cutoff and reports how many rows
// were removed.
func (s *SQLiteStore) Cleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE scraped_at < ?", olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("cleaning up jobs: %w", err)
	}
	return res.RowsAffected()
}

// ListJobs returns all stored jobs ordered by ID, for batch maintenance.
func (s *SQLiteStore) ListJobs(ctx context.Context) ([]model.NormalizedJob, error) {
	return s.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY id")
}

// RecentJobs returns the newest limit jobs, most recent first.
func (s *SQLiteStore) RecentJobs(ctx context.Context, limit int) ([]model.NormalizedJob, error) {
	return s.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY scraped_at DESC, id DESC LIMIT ?", limit)
}

// RecentJobsBySource returns the newest limit jobs for one source.
func (s *SQLiteStore) RecentJobsBySource(ctx context.Context, sourceSite string, limit int) ([]model.NormalizedJob, error) {
	return s.queryJobs(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE source_site = ? ORDER BY scraped_at DESC, id DESC LIMIT ?",
		sourceSite, limit)
}

// UpdateCategories rewrites a stored job's category set.
func (s *SQLiteStore) UpdateCategories(ctx context.Context, id int64, cats []model.Category) error {
	_, err := s.db.ExecContext(ctx, "UPDATE jobs SET category = ? WHERE id = ?", joinCategories(cats), id)
	if err != nil {
		return fmt.Errorf("updating categories for job %d: %w", id, err)
	}
	return nil
}

// SourceSites returns the distinct source sites present in the store.
func (s *SQLiteStore) SourceSites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT source_site FROM jobs ORDER BY source_site")
	if err != nil {
		return nil, fmt.Errorf("querying source sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("scanning source site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const jobColumns = "id, title, company, category, region_limit, work_type, source_site, source_id, original_url, apply_url, description, salary_min, salary_max, date_posted"

func (s *SQLiteStore) queryJobs(ctx context.Context, query string, args ...any) ([]model.NormalizedJob, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []model.NormalizedJob
	for rows.Next() {
		var j model.NormalizedJob
		var category string
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &category, &j.RegionLimit,
			&j.WorkType, &j.SourceSite, &j.SourceID, &j.OriginalURL,
			&j.ApplyURL, &j.Description, &j.SalaryMin, &j.SalaryMax, &j.DatePosted); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		j.Categories = splitCategories(category)
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func joinCategories(cats []model.Category) string {
	keys := make([]string, len(cats))
	for i, c := range cats {
		keys[i] = string(c)
	}
	return strings.Join(keys, ",")
}

func splitCategories(s string) []model.Category {
	if s == "" {
		return []model.Category{model.CategoryOther}
	}
	parts := strings.Split(s, ",")
	cats := make([]model.Category, 0, len(parts))
	for _, p := range parts {
		cats = append(cats, model.Category(strings.TrimSpace(p)))
	}
	return cats
}
