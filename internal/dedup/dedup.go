// Package dedup decides whether a normalized job duplicates one already
// persisted, combining an exact content-hash check with a fuzzy title
// comparison over a rolling per-source window.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/textnorm"
)

const (
	// Window is the fuzzy-dedup lookback: re-posts of the same listing
	// cluster well inside 30 days.
	Window = 30 * 24 * time.Hour

	// similarityThreshold: above this Jaccard score two titles are the
	// same listing.
	similarityThreshold = 0.8

	// minTitleLen guards the fuzzy check; short generic titles ("web dev")
	// collide too easily on character sets.
	minTitleLen = 10
)

// Engine evaluates candidates against the store before persistence.
type Engine struct {
	store  model.JobStore
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a dedup engine backed by the given store.
func NewEngine(store model.JobStore, logger *slog.Logger) *Engine {
	return &Engine{store: store, logger: logger, now: time.Now}
}

// IsDuplicate reports whether job duplicates a stored record. The exact
// hash check catches byte-for-byte reposts across all sources; the fuzzy
// check catches lightly reworded re-posts within the same source's 30-day
// window. Store errors propagate: dedup cannot be decided blind.
func (e *Engine) IsDuplicate(ctx context.Context, job model.NormalizedJob) (bool, error) {
	exists, err := e.store.ExistsByHash(ctx, job.ContentHash)
	if err != nil {
		return false, fmt.Errorf("dedup hash check: %w", err)
	}
	if exists {
		e.logger.Debug("duplicate by content hash",
			"source", job.SourceSite,
			"title", job.Title,
		)
		return true, nil
	}

	normTitle := textnorm.Normalize(job.Title)
	if len([]rune(normTitle)) < minTitleLen {
		return false, nil
	}

	since := e.now().Add(-Window)
	recent, err := e.store.RecentBySource(ctx, job.SourceSite, since)
	if err != nil {
		return false, fmt.Errorf("dedup window query: %w", err)
	}

	for _, ref := range recent {
		score := textnorm.Similarity(normTitle, textnorm.Normalize(ref.Title))
		if score > similarityThreshold {
			e.logger.Debug("duplicate by title similarity",
				"source", job.SourceSite,
				"title", job.Title,
				"matched_id", ref.ID,
				"score", score,
			)
			return true, nil
		}
	}

	return false, nil
}
