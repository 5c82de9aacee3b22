package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihaichao/remote-job-aggregator/internal/scheduler"
	"github.com/ihaichao/remote-job-aggregator/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scrape daemon",
	Long:  "Start the scheduler daemon; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"interval", cfg.ScrapeInterval.String(),
		"sources", len(cfg.Sources),
		"database", cfg.DatabasePath,
		"llm_enabled", cfg.LLM.Enabled,
	)

	sqlStore, err := store.NewSQLiteStore(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no sources to scrape")
		os.Exit(1)
	}
	orchestrator := buildOrchestrator(cfg, sqlStore, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cleanup scheduler.CleanupFunc
	if cfg.Retention > 0 {
		cleanup = func(ctx context.Context) (int64, error) {
			return sqlStore.Cleanup(ctx, time.Now().UTC().Add(-cfg.Retention))
		}
	}

	sched := scheduler.NewScheduler(orchestrator, sources, cfg.ScrapeInterval, cleanup, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
