package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the aggregator.
type Config struct {
	ScrapeInterval time.Duration
	Retention      time.Duration // delete stored jobs older than this; 0 keeps everything
	DatabasePath   string
	Sources        []SourceConfig
	RateLimit      RateLimitConfig
	LLM            LLMConfig
	Notification   NotificationConfig
}

// SourceConfig describes a single posting source.
type SourceConfig struct {
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"` // API token where the source needs one (v2ex)
}

// LLMConfig controls the language-model stages (semantic relevance filter
// and category classifier). With Enabled false both stages degrade to their
// deterministic fallbacks.
type LLMConfig struct {
	Enabled  bool
	Provider string        // "ollama" or "openai"
	BaseURL  string        // defaults per provider
	Model    string        // model identifier, e.g. "qwen2.5:7b" or "gpt-4o-mini"
	APIKey   string        // expanded from env var by Load; openai only
	Timeout  time.Duration // per-request timeout
}

// RateLimitConfig controls source-level rate limiting.
type RateLimitConfig struct {
	MinDelay        time.Duration            // minimum gap between requests to the same source
	SourceOverrides map[string]time.Duration // per-source overrides, keyed by source name
}

// MinDelayFor returns the configured delay for the given source, falling
// back to MinDelay.
func (r RateLimitConfig) MinDelayFor(source string) time.Duration {
	if d, ok := r.SourceOverrides[source]; ok {
		return d
	}
	return r.MinDelay
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOllamaBaseURL = "http://localhost:11434"
)

// knownSources are the source names the CLI can wire.
var knownSources = map[string]bool{
	"v2ex":      true,
	"eleduck":   true,
	"remoteok":  true,
	"rwfa":      true,
	"jsearch":   true,
	"remotecom": true,
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	ScrapeInterval string             `yaml:"scrape_interval"`
	Retention      string             `yaml:"retention"`
	DatabasePath   string             `yaml:"database_path"`
	Sources        []SourceConfig     `yaml:"sources"`
	RateLimit      rawRateLimitConfig `yaml:"rate_limit"`
	LLM            rawLLMConfig       `yaml:"llm"`
	Notification   NotificationConfig `yaml:"notification"`
}

type rawLLMConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

type rawRateLimitConfig struct {
	MinDelay        string            `yaml:"min_delay"`
	SourceOverrides map[string]string `yaml:"source_overrides"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. Environment variable references in the file are expanded
// before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 6 * time.Hour
	if raw.ScrapeInterval != "" {
		interval, err = time.ParseDuration(raw.ScrapeInterval)
		if err != nil {
			return nil, fmt.Errorf("parse scrape_interval %q: %w", raw.ScrapeInterval, err)
		}
	}

	var retention time.Duration
	if raw.Retention != "" {
		retention, err = time.ParseDuration(raw.Retention)
		if err != nil {
			return nil, fmt.Errorf("parse retention %q: %w", raw.Retention, err)
		}
	}

	dbPath := raw.DatabasePath
	if dbPath == "" {
		dbPath = "jobs.db"
	}

	minDelay := 1 * time.Second
	if raw.RateLimit.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.RateLimit.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.min_delay %q: %w", raw.RateLimit.MinDelay, err)
		}
	}

	overrides := make(map[string]time.Duration)
	for source, value := range raw.RateLimit.SourceOverrides {
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("parse rate_limit.source_overrides[%q]: %w", source, err)
		}
		overrides[source] = d
	}

	llmTimeout := 30 * time.Second
	if raw.LLM.Timeout != "" {
		llmTimeout, err = time.ParseDuration(raw.LLM.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse llm.timeout %q: %w", raw.LLM.Timeout, err)
		}
	}

	provider := raw.LLM.Provider
	if provider == "" {
		provider = "ollama"
	}
	baseURL := raw.LLM.BaseURL
	if baseURL == "" {
		switch provider {
		case "openai":
			baseURL = defaultOpenAIBaseURL
		case "ollama":
			baseURL = defaultOllamaBaseURL
		}
	}

	cfg := &Config{
		ScrapeInterval: interval,
		Retention:      retention,
		DatabasePath:   dbPath,
		Sources:        raw.Sources,
		RateLimit: RateLimitConfig{
			MinDelay:        minDelay,
			SourceOverrides: overrides,
		},
		LLM: LLMConfig{
			Enabled:  raw.LLM.Enabled,
			Provider: provider,
			BaseURL:  baseURL,
			Model:    raw.LLM.Model,
			APIKey:   raw.LLM.APIKey,
			Timeout:  llmTimeout,
		},
		Notification: raw.Notification,
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.ScrapeInterval <= 0 {
		return fmt.Errorf("scrape_interval must be positive, got %v", cfg.ScrapeInterval)
	}
	if cfg.Retention < 0 {
		return fmt.Errorf("retention must not be negative, got %v", cfg.Retention)
	}

	enabled := 0
	for _, s := range cfg.Sources {
		if !knownSources[s.Name] {
			return fmt.Errorf("unknown source %q", s.Name)
		}
		if s.Enabled {
			enabled++
		}
	}
	if enabled == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}

	switch cfg.Notification.Type {
	case "", "log", "slack":
	default:
		return fmt.Errorf("notification.type must be \"log\" or \"slack\", got %q", cfg.Notification.Type)
	}

	if cfg.Notification.Type == "slack" {
		if cfg.Notification.WebhookURL == "" {
			return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
		}
		if !strings.HasPrefix(cfg.Notification.WebhookURL, "https://hooks.slack.com/") {
			return fmt.Errorf("notification.webhook_url must start with https://hooks.slack.com/")
		}
	}

	if cfg.LLM.Enabled {
		switch cfg.LLM.Provider {
		case "ollama":
		case "openai":
			if cfg.LLM.APIKey == "" {
				return fmt.Errorf("llm.api_key is required when llm.provider is \"openai\"")
			}
		default:
			return fmt.Errorf("llm.provider must be \"ollama\" or \"openai\", got %q", cfg.LLM.Provider)
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required when llm.enabled is true")
		}
	}

	return nil
}
