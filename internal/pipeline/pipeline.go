package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/classify"
	"github.com/ihaichao/remote-job-aggregator/internal/dedup"
	"github.com/ihaichao/remote-job-aggregator/internal/extract"
	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/relevance"
	"github.com/ihaichao/remote-job-aggregator/internal/textnorm"
)

const (
	maxTitleLen = 255
	maxDescLen  = 2000
)

// Source is one wired posting source: the fetcher that pulls raw postings
// and the extraction profile that supplies source-level defaults.
type Source struct {
	Name    string
	Fetcher model.SourceFetcher
	Profile extract.Profile
}

// Summary reports what happened to one source's postings in a single run.
type Summary struct {
	Source     string `json:"source"`
	Fetched    int    `json:"fetched"`
	Accepted   int    `json:"accepted"`
	Rejected   int    `json:"rejected"`
	Duplicates int    `json:"duplicates"`
	Errored    int    `json:"errored"`
}

// Orchestrator owns the full pipeline for raw postings:
// fetch → relevance filter → extract → classify → dedup → insert → notify.
type Orchestrator struct {
	filter     *relevance.Filter
	classifier classify.Classifier
	engine     *dedup.Engine
	store      model.JobStore
	notifier   model.Notifier
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrchestrator creates an orchestrator wired with all its dependencies.
func NewOrchestrator(
	filter *relevance.Filter,
	classifier classify.Classifier,
	engine *dedup.Engine,
	store model.JobStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		filter:     filter,
		classifier: classifier,
		engine:     engine,
		store:      store,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// Process runs one cycle for a single source. A fetch failure aborts the
// cycle; failures on individual postings are counted and skipped, so one
// bad posting never loses the rest of the batch.
func (o *Orchestrator) Process(ctx context.Context, src Source) (Summary, error) {
	sum := Summary{Source: src.Name}

	postings, err := src.Fetcher.FetchPostings(ctx)
	if err != nil {
		return sum, fmt.Errorf("processing %s: %w", src.Name, err)
	}
	sum.Fetched = len(postings)

	var accepted []model.NormalizedJob
	for _, p := range postings {
		if !o.filter.Admit(ctx, p) {
			sum.Rejected++
			continue
		}

		job := o.normalize(src, p)
		job.Categories = o.classifier.Classify(ctx, job.Title, job.Description)

		dup, err := o.engine.IsDuplicate(ctx, job)
		if err != nil {
			sum.Errored++
			o.logger.Warn("dedup check failed, skipping posting",
				"source", src.Name, "source_id", p.SourceID, "error", err)
			continue
		}
		if dup {
			sum.Duplicates++
			continue
		}

		id, err := o.store.Insert(ctx, job)
		if err != nil {
			sum.Errored++
			o.logger.Warn("insert failed, skipping posting",
				"source", src.Name, "source_id", p.SourceID, "error", err)
			continue
		}
		if id == 0 {
			// Another run inserted the same hash between the dedup
			// read and this write.
			sum.Duplicates++
			continue
		}
		job.ID = id
		accepted = append(accepted, job)
	}
	sum.Accepted = len(accepted)

	if len(accepted) > 0 && o.notifier != nil {
		if err := o.notifier.Notify(accepted); err != nil {
			o.logger.Warn("notify failed", "source", src.Name, "error", err)
		}
	}

	o.logger.Info("processed source",
		"source", src.Name,
		"fetched", sum.Fetched,
		"accepted", sum.Accepted,
		"rejected", sum.Rejected,
		"duplicates", sum.Duplicates,
		"errored", sum.Errored,
	)

	return sum, nil
}

// Run processes every source in order. A source that fails to fetch is
// logged and skipped; its partial summary still appears in the result.
func (o *Orchestrator) Run(ctx context.Context, sources []Source) []Summary {
	summaries := make([]Summary, 0, len(sources))
	for _, src := range sources {
		sum, err := o.Process(ctx, src)
		if err != nil {
			o.logger.Error("source failed", "source", src.Name, "error", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries
}

// normalize builds the canonical record for an admitted posting. Extraction
// runs over title, description and the source's location hint together.
func (o *Orchestrator) normalize(src Source, p model.RawPosting) model.NormalizedJob {
	text := p.Title + "\n" + p.Description + "\n" + p.Location

	company := p.Company
	if company == "" {
		company = extract.Company(p.Title)
	}

	// Feeds with structured country data resolve the region themselves;
	// free-text sources leave it to extraction.
	region := p.Region
	if region == "" {
		region = extract.Region(text, src.Profile)
	}

	return model.NormalizedJob{
		Title:       truncateRunes(p.Title, maxTitleLen),
		Company:     truncateRunes(company, maxTitleLen),
		RegionLimit: region,
		WorkType:    extract.WorkTypeFromTags(p.Tags, text),
		SourceSite:  p.SourceSite,
		SourceID:    p.SourceID,
		OriginalURL: p.URL,
		ApplyURL:    p.ApplyURL,
		Description: truncateRunes(p.Description, maxDescLen),
		SalaryMin:   p.SalaryMin,
		SalaryMax:   p.SalaryMax,
		DatePosted:  o.postedAt(p),
		ContentHash: textnorm.ContentHash(p.Title, p.Description),
	}
}

// postedAt parses the source's timestamp, falling back to the scrape time
// when the source gave none or an unparseable one.
func (o *Orchestrator) postedAt(p model.RawPosting) time.Time {
	if p.PostedAt == "" {
		return o.now().UTC()
	}
	if t, err := time.Parse(time.RFC3339, p.PostedAt); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse("2006-01-02", p.PostedAt); err == nil {
		return t.UTC()
	}
	return o.now().UTC()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
