package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/ihaichao/remote-job-aggregator/internal/pipeline"
)

// CleanupFunc prunes stored jobs after a cycle and reports how many rows
// were removed. A nil CleanupFunc disables pruning.
type CleanupFunc func(ctx context.Context) (int64, error)

// Scheduler owns the main loop: ticks on an interval and runs the pipeline
// over every source sequentially.
type Scheduler struct {
	orchestrator *pipeline.Orchestrator
	sources      []pipeline.Source
	interval     time.Duration
	cleanup      CleanupFunc
	logger       *slog.Logger
}

// NewScheduler creates a scheduler that processes all sources at the given
// interval. cleanup may be nil.
func NewScheduler(orchestrator *pipeline.Orchestrator, sources []pipeline.Source, interval time.Duration, cleanup CleanupFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		sources:      sources,
		interval:     interval,
		cleanup:      cleanup,
		logger:       logger,
	}
}

// Run starts the scrape loop. It runs one immediate cycle, then ticks on
// the configured interval. It returns nil when ctx is cancelled (graceful
// shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"sources", len(s.sources),
	)

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runCycle(ctx)
		}
	}
}

// runCycle processes each source sequentially with a small pause between
// sources to be polite.
func (s *Scheduler) runCycle(ctx context.Context) {
	var total pipeline.Summary
	for i, src := range s.sources {
		if ctx.Err() != nil {
			return
		}

		sum, err := s.orchestrator.Process(ctx, src)
		if err != nil {
			s.logger.Error("source cycle failed", "source", src.Name, "error", err)
		}
		total.Fetched += sum.Fetched
		total.Accepted += sum.Accepted
		total.Rejected += sum.Rejected
		total.Duplicates += sum.Duplicates
		total.Errored += sum.Errored

		if i < len(s.sources)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(1 * time.Second):
			}
		}
	}

	s.logger.Info("cycle complete",
		"fetched", total.Fetched,
		"accepted", total.Accepted,
		"rejected", total.Rejected,
		"duplicates", total.Duplicates,
		"errored", total.Errored,
	)

	if s.cleanup != nil && ctx.Err() == nil {
		removed, err := s.cleanup(ctx)
		if err != nil {
			s.logger.Error("cleanup failed", "error", err)
		} else if removed > 0 {
			s.logger.Info("pruned old jobs", "removed", removed)
		}
	}
}
