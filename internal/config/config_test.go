package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
scrape_interval: 12h
retention: 2160h
database_path: /tmp/jobs.db
sources:
  - name: v2ex
    enabled: true
    token: "abc"
  - name: remoteok
    enabled: false
rate_limit:
  min_delay: 2s
  source_overrides:
    rwfa: 5s
llm:
  enabled: true
  provider: ollama
  model: "qwen2.5:7b"
notification:
  type: log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScrapeInterval != 12*time.Hour {
		t.Errorf("ScrapeInterval = %v, want 12h", cfg.ScrapeInterval)
	}
	if cfg.Retention != 2160*time.Hour {
		t.Errorf("Retention = %v, want 2160h", cfg.Retention)
	}
	if cfg.DatabasePath != "/tmp/jobs.db" {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if len(cfg.Sources) != 2 || cfg.Sources[0].Name != "v2ex" || cfg.Sources[0].Token != "abc" {
		t.Errorf("Sources = %+v", cfg.Sources)
	}
	if cfg.RateLimit.MinDelayFor("rwfa") != 5*time.Second {
		t.Errorf("MinDelayFor(rwfa) = %v, want 5s", cfg.RateLimit.MinDelayFor("rwfa"))
	}
	if cfg.RateLimit.MinDelayFor("v2ex") != 2*time.Second {
		t.Errorf("MinDelayFor(v2ex) = %v, want 2s", cfg.RateLimit.MinDelayFor("v2ex"))
	}
	if cfg.LLM.BaseURL != defaultOllamaBaseURL {
		t.Errorf("LLM.BaseURL = %q, want default ollama URL", cfg.LLM.BaseURL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: remoteok
    enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ScrapeInterval != 6*time.Hour {
		t.Errorf("ScrapeInterval = %v, want default 6h", cfg.ScrapeInterval)
	}
	if cfg.Retention != 0 {
		t.Errorf("Retention = %v, want 0 (disabled)", cfg.Retention)
	}
	if cfg.DatabasePath != "jobs.db" {
		t.Errorf("DatabasePath = %q, want default jobs.db", cfg.DatabasePath)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("LLM.Timeout = %v, want default 30s", cfg.LLM.Timeout)
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_V2EX_TOKEN", "secret-token")
	path := writeConfig(t, `
sources:
  - name: v2ex
    enabled: true
    token: "${TEST_V2EX_TOKEN}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Sources[0].Token != "secret-token" {
		t.Errorf("Token = %q, want expanded env var", cfg.Sources[0].Token)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Fatal("Load: expected error for missing file")
	}
}

func TestLoad_UnknownSource(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: linkedin
    enabled: true
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for unknown source")
	}
}

func TestLoad_NoEnabledSources(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: v2ex
    enabled: false
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error when no source is enabled")
	}
}

func TestLoad_OpenAIRequiresAPIKey(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: remoteok
    enabled: true
llm:
  enabled: true
  provider: openai
  model: gpt-4o-mini
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error when openai provider has no api key")
	}
}

func TestLoad_UnknownNotificationType(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: remoteok
    enabled: true
notification:
  type: slak
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for unknown notification type")
	}
}

func TestLoad_SlackRequiresWebhook(t *testing.T) {
	path := writeConfig(t, `
sources:
  - name: remoteok
    enabled: true
notification:
  type: slack
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error when slack notifier has no webhook")
	}
}
