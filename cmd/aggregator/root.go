package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ihaichao/remote-job-aggregator/internal/classify"
	"github.com/ihaichao/remote-job-aggregator/internal/config"
	"github.com/ihaichao/remote-job-aggregator/internal/dedup"
	"github.com/ihaichao/remote-job-aggregator/internal/extract"
	"github.com/ihaichao/remote-job-aggregator/internal/llm"
	"github.com/ihaichao/remote-job-aggregator/internal/model"
	"github.com/ihaichao/remote-job-aggregator/internal/notifier"
	"github.com/ihaichao/remote-job-aggregator/internal/pipeline"
	"github.com/ihaichao/remote-job-aggregator/internal/ratelimit"
	"github.com/ihaichao/remote-job-aggregator/internal/relevance"
	"github.com/ihaichao/remote-job-aggregator/internal/retry"
	"github.com/ihaichao/remote-job-aggregator/internal/source"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "aggregator",
	Short: "Remote job aggregator",
	Long:  "Aggregator scrapes remote job boards and forums, normalizes the postings, and stores deduplicated jobs.",
	// Default to `start` so the binary can be invoked directly from a
	// systemd unit file.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: AGGREGATOR_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > AGGREGATOR_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("AGGREGATOR_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack notifier")
		return notifier.NewSlackNotifier(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return notifier.NewLogNotifier(logger)
	}
}

// setupProvider builds the language-model provider, or the no-op provider
// when the LLM stages are disabled.
func setupProvider(cfg *config.Config, logger *slog.Logger) llm.Provider {
	if !cfg.LLM.Enabled {
		return llm.NewNopProvider()
	}

	client := &http.Client{Timeout: cfg.LLM.Timeout}
	switch cfg.LLM.Provider {
	case "openai":
		logger.Info("using openai provider", "model", cfg.LLM.Model)
		return llm.NewOpenAIProvider(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, client)
	default:
		logger.Info("using ollama provider", "model", cfg.LLM.Model)
		return llm.NewOllamaProvider(cfg.LLM.BaseURL, cfg.LLM.Model, client)
	}
}

// setupClassifier picks the category classifier: the language model with the
// deterministic correction layer when enabled, pure rules otherwise.
func setupClassifier(cfg *config.Config, provider llm.Provider, logger *slog.Logger) classify.Classifier {
	if cfg.LLM.Enabled {
		return classify.NewLLMClassifier(provider, logger)
	}
	return classify.NewRuleClassifier()
}

func createFetcher(src config.SourceConfig, httpClient *http.Client) (model.SourceFetcher, extract.Profile, bool) {
	switch src.Name {
	case "v2ex":
		return source.NewV2EXAdapter(src.Token, httpClient), extract.ChinaProfile, true
	case "eleduck":
		return source.NewEleduckAdapter(httpClient), extract.ChinaProfile, true
	case "remoteok":
		return source.NewRemoteOKAdapter(httpClient), extract.DefaultProfile, true
	case "rwfa":
		return source.NewRWFAAdapter(httpClient), extract.DefaultProfile, true
	case "jsearch":
		return source.NewJSearchAdapter(src.Token, httpClient), extract.DefaultProfile, true
	case "remotecom":
		return source.NewRemoteComAdapter(httpClient), extract.DefaultProfile, true
	default:
		return nil, extract.Profile{}, false
	}
}

// buildSources wires every enabled source with retry and rate limiting.
func buildSources(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) []pipeline.Source {
	limiter := ratelimit.NewSourceRateLimiter(cfg.RateLimit.MinDelayFor)

	var sources []pipeline.Source
	for _, src := range cfg.Sources {
		if !src.Enabled {
			continue
		}

		fetcher, profile, ok := createFetcher(src, httpClient)
		if !ok {
			logger.Warn("unsupported source, skipping", "source", src.Name)
			continue
		}

		fetcher = retry.NewRetryFetcher(fetcher, 2, 5*time.Second, logger)
		fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter, src.Name)

		sources = append(sources, pipeline.Source{
			Name:    src.Name,
			Fetcher: fetcher,
			Profile: profile,
		})
		logger.Info("registered source", "name", src.Name)
	}
	return sources
}

// buildOrchestrator assembles the full pipeline around the given store.
func buildOrchestrator(cfg *config.Config, jobStore model.JobStore, httpClient *http.Client, logger *slog.Logger) *pipeline.Orchestrator {
	provider := setupProvider(cfg, logger)

	filter := relevance.NewFilter(
		relevance.NewRuleFilter(),
		relevance.NewSemanticFilter(provider, logger),
	)

	return pipeline.NewOrchestrator(
		filter,
		setupClassifier(cfg, provider, logger),
		dedup.NewEngine(jobStore, logger),
		jobStore,
		setupNotifier(cfg, httpClient, logger),
		logger,
	)
}
