package model

import (
	"context"
	"time"
)

// Category is a key from the fixed job taxonomy.
type Category string

const (
	CategoryFrontend   Category = "frontend"
	CategoryBackend    Category = "backend"
	CategoryFullstack  Category = "fullstack"
	CategoryMobile     Category = "mobile"
	CategoryGame       Category = "game"
	CategoryDevops     Category = "devops"
	CategoryAI         Category = "ai"
	CategoryBlockchain Category = "blockchain"
	CategoryQuant      Category = "quant"
	CategorySecurity   Category = "security"
	CategoryTesting    Category = "testing"
	CategoryData       Category = "data"
	CategoryEmbedded   Category = "embedded"
	CategoryOther      Category = "other"
)

// Taxonomy is the closed set of allowed category keys.
var Taxonomy = []Category{
	CategoryFrontend, CategoryBackend, CategoryFullstack, CategoryMobile,
	CategoryGame, CategoryDevops, CategoryAI, CategoryBlockchain,
	CategoryQuant, CategorySecurity, CategoryTesting, CategoryData,
	CategoryEmbedded, CategoryOther,
}

// ValidCategory reports whether key is part of the taxonomy.
func ValidCategory(key string) bool {
	for _, c := range Taxonomy {
		if string(c) == key {
			return true
		}
	}
	return false
}

// Work types.
const (
	WorkTypeFulltime = "fulltime"
	WorkTypeParttime = "parttime"
	WorkTypeContract = "contract"
)

// Region limits. Timezone restrictions are expressed as "UTC+N"/"UTC-N".
const (
	RegionUS        = "US"
	RegionEU        = "EU"
	RegionCN        = "CN"
	RegionAPAC      = "APAC"
	RegionWorldwide = "worldwide"
)

// CompanyUnknown is the sentinel used when no company can be extracted.
const CompanyUnknown = "Unknown"

// RawPosting is a single job advertisement as retrieved from a source,
// before any normalization. Immutable once produced by a source adapter.
type RawPosting struct {
	SourceSite  string // source tag, e.g. "v2ex"
	SourceID    string // unique within the source
	Title       string
	Description string // free text, may be empty
	URL         string
	ApplyURL    string   // optional separate apply link
	Company     string   // optional source-provided company name
	PostedAt    string   // RFC 3339 when the source provides one, else raw/empty
	Tags        []string // source-specific tag hints
	Location    string   // source-specific location hint
	Region      string   // optional region the source resolved itself (structured feeds)
	SalaryMin   int      // optional, 0 = absent
	SalaryMax   int
}

// NormalizedJob is the canonical record emitted by the pipeline.
// Created once per accepted posting and never mutated afterwards.
type NormalizedJob struct {
	ID          int64 // assigned by the store on insert
	Title       string
	Company     string
	Categories  []Category // never empty; falls back to ["other"]
	RegionLimit string
	WorkType    string
	SourceSite  string
	SourceID    string
	OriginalURL string
	ApplyURL    string
	Description string
	SalaryMin   int // annual, source currency; 0 = not provided
	SalaryMax   int
	DatePosted  time.Time
	ContentHash string
}

// JobRef is a read-only projection of a stored job used by the
// deduplication window query.
type JobRef struct {
	ID    int64
	Title string
}

// SourceFetcher fetches raw postings from one source (forum, job board, API).
// Implementations may paginate and rate-limit internally; "no more data" is
// not an error, only genuine transport failure is.
type SourceFetcher interface {
	FetchPostings(ctx context.Context) ([]RawPosting, error)
}

// JobStore is the persistence gateway the pipeline writes through.
// Insert must be atomic with the hash-existence check (insert-or-ignore),
// returning 0 when the row already existed.
type JobStore interface {
	ExistsByHash(ctx context.Context, hash string) (bool, error)
	RecentBySource(ctx context.Context, sourceSite string, since time.Time) ([]JobRef, error)
	Insert(ctx context.Context, job NormalizedJob) (int64, error)
}

// Notifier reports newly accepted jobs.
type Notifier interface {
	Notify(jobs []NormalizedJob) error
}
