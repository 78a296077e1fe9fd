package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Listen != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.Listen)
	}
	if cfg.Retention.MaxAgeDays != 30 {
		t.Errorf("expected 30 day retention, got %d", cfg.Retention.MaxAgeDays)
	}
	if cfg.Retention.MinAccessCount != 5 {
		t.Errorf("expected min access count 5, got %d", cfg.Retention.MinAccessCount)
	}
	if cfg.Limits.Popular != 10 {
		t.Errorf("expected popular limit 10, got %d", cfg.Limits.Popular)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test-123")

	content := `
listen: ":9090"
db_path: "songs.db"
lyrics:
  url: https://lyrics.example.com
  token: tok-abc
llm:
  providers:
    - name: openai
      url: https://api.openai.com
      api_key: ${TEST_LLM_KEY}
      model: gpt-4o-mini
retention:
  max_age_days: 14
  min_access_count: 3
  sweep_interval: 30m
`
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Listen != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Listen)
	}
	if cfg.Lyrics.URL != "https://lyrics.example.com" {
		t.Errorf("unexpected lyrics url: %s", cfg.Lyrics.URL)
	}
	if len(cfg.LLM.Providers) != 1 {
		t.Fatalf("expected 1 provider, got %d", len(cfg.LLM.Providers))
	}
	if cfg.LLM.Providers[0].APIKey != "sk-test-123" {
		t.Errorf("env var not expanded: got %s", cfg.LLM.Providers[0].APIKey)
	}
	if cfg.Retention.MaxAgeDays != 14 {
		t.Errorf("expected 14 day retention, got %d", cfg.Retention.MaxAgeDays)
	}
	if cfg.Retention.SweepInterval != 30*time.Minute {
		t.Errorf("expected 30m sweep interval, got %v", cfg.Retention.SweepInterval)
	}
	// Unset sections keep their defaults.
	if cfg.Limits.History != 10 {
		t.Errorf("expected default history limit, got %d", cfg.Limits.History)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for missing file")
	}
}
