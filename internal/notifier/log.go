package notifier

import (
	"log/slog"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly stored jobs to the given logger as structured
// messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each job via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each job with its key fields. Returns nil (stdout logging
// does not fail).
func (n *LogNotifier) Notify(jobs []model.NormalizedJob) error {
	for _, j := range jobs {
		n.logger.Info("new job",
			"title", j.Title,
			"company", j.Company,
			"categories", j.Categories,
			"region", j.RegionLimit,
			"work_type", j.WorkType,
			"source", j.SourceSite,
			"url", j.OriginalURL,
		)
	}
	return nil
}
