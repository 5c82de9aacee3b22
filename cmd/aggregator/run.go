package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/pipeline"
	"github.com/ihaichao/remote-job-aggregator/internal/store"
)

var (
	runDry  bool
	runJSON bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one scrape cycle, then exit",
	Long:  "One-shot cycle over every enabled source. With --dry-run nothing is persisted; with --json the per-source summary is printed to stdout.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDry, "dry-run", false, "do not persist anything")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print per-source summaries as JSON")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var jobStore model.JobStore
	if runDry {
		logger.Info("dry-run mode enabled, nothing will be persisted")
		jobStore = store.NewNopStore()
	} else {
		sqlStore, err := store.NewSQLiteStore(cfg.DatabasePath)
		if err != nil {
			logger.Error("failed to open store", "error", err)
			os.Exit(1)
		}
		defer sqlStore.Close()
		jobStore = sqlStore
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	sources := buildSources(cfg, httpClient, logger)
	if len(sources) == 0 {
		logger.Error("no sources to scrape")
		os.Exit(1)
	}
	orchestrator := buildOrchestrator(cfg, jobStore, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	summaries := orchestrator.Run(ctx, sources)

	if runJSON {
		return printSummaries(summaries)
	}
	logger.Info("run complete")
	return nil
}

func printSummaries(summaries []pipeline.Summary) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summaries)
}
