package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/store"
)

var reclassifyAll bool

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify",
	Short: "Re-run category classification over stored jobs",
	Long:  "Re-classifies stored jobs with the configured classifier. By default only jobs still categorized as \"other\" are touched; --all re-classifies everything.",
	RunE:  runReclassify,
}

func init() {
	reclassifyCmd.Flags().BoolVar(&reclassifyAll, "all", false, "re-classify every job, not just \"other\"")
	rootCmd.AddCommand(reclassifyCmd)
}

func runReclassify(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sqlStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	provider := setupProvider(cfg, logger)
	classifier := setupClassifier(cfg, provider, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs, err := sqlStore.ListJobs(ctx)
	if err != nil {
		logger.Error("failed to list jobs", "error", err)
		os.Exit(1)
	}
	logger.Info("reclassifying", "jobs", len(jobs), "all", reclassifyAll)

	updated, skipped := 0, 0
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		if !reclassifyAll && !needsReclassify(job.Categories) {
			skipped++
			continue
		}

		cats := classifier.Classify(ctx, job.Title, job.Description)
		if equalCategories(cats, job.Categories) {
			skipped++
			continue
		}

		if err := sqlStore.UpdateCategories(ctx, job.ID, cats); err != nil {
			logger.Error("failed to update job", "id", job.ID, "error", err)
			continue
		}
		logger.Info("reclassified", "id", job.ID, "title", job.Title,
			"old", job.Categories, "new", cats)
		updated++
	}

	logger.Info("reclassify complete", "updated", updated, "skipped", skipped)
	return nil
}

// needsReclassify reports whether a stored category set is still the
// fallback: a lone "other".
func needsReclassify(cats []model.Category) bool {
	return len(cats) == 0 || (len(cats) == 1 && cats[0] == model.CategoryOther)
}

func equalCategories(a, b []model.Category) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
