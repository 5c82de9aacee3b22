package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/review"
	"github.com/ihaichao/remote-job-aggregator/internal/store"
)

// How many stored jobs the review TUI loads per source.
const reviewLimit = 200

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Browse stored jobs interactively (TUI)",
	Long:  "Shows the source picker TUI, then launches the split-pane review view over stored jobs.",
	RunE:  runReviewCmd,
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

func runReviewCmd(cmd *cobra.Command, args []string) error {
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

	sites, err := sqlStore.SourceSites(context.Background())
	if err != nil {
		logger.Error("failed to list sources", "error", err)
		os.Exit(1)
	}
	if len(sites) == 0 {
		fmt.Println("No stored jobs yet. Run a scrape cycle first.")
		return nil
	}
	choices := append([]string{"all sources"}, sites...)

	for {
		choice, err := review.RunSourcePicker(choices)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}

		label := choices[choice]
		loadFn := func(ctx context.Context) ([]model.NormalizedJob, error) {
			if choice == 0 {
				return sqlStore.RecentJobs(ctx, reviewLimit)
			}
			return sqlStore.RecentJobsBySource(ctx, label, reviewLimit)
		}

		jobs, err := review.RunLoader(label, loadFn)
		if err != nil {
			fmt.Printf("Error loading jobs: %v\n", err)
			continue
		}

		wantQuit, err := review.RunReviewTUI(label, jobs)
		if err != nil {
			fmt.Printf("Review error: %v\n", err)
			return nil
		}
		if wantQuit {
			return nil
		}
	}
}
