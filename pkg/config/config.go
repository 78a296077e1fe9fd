package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all lyriclens configuration.
type Config struct {
	Listen    string          `yaml:"listen"`
	DBPath    string          `yaml:"db_path"`
	Lyrics    LyricsConfig    `yaml:"lyrics"`
	LLM       LLMConfig       `yaml:"llm"`
	Retention RetentionConfig `yaml:"retention"`
	Limits    LimitsConfig    `yaml:"limits"`
}

// LyricsConfig points at the upstream lyrics provider.
type LyricsConfig struct {
	URL   string `yaml:"url"`
	Token string `yaml:"token"`
}

// LLMConfig defines the summarization providers, tried in order.
type LLMConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig defines an OpenAI-compatible chat completion provider.
type ProviderConfig struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// RetentionConfig controls the stale-entry sweep of the song cache.
// An entry is deleted only when it is both older than the age threshold
// and below the access-count threshold.
type RetentionConfig struct {
	MaxAgeDays     int           `yaml:"max_age_days"`
	MinAccessCount int64         `yaml:"min_access_count"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
}

// LimitsConfig sets default list sizes for history and popularity queries.
type LimitsConfig struct {
	History int `yaml:"history"`
	Popular int `yaml:"popular"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		DBPath: "lyriclens.db",
		Lyrics: LyricsConfig{
			URL: "https://api.lyrics.ovh",
		},
		Retention: RetentionConfig{
			MaxAgeDays:     30,
			MinAccessCount: 5,
			SweepInterval:  time.Hour,
		},
		Limits: LimitsConfig{
			History: 10,
			Popular: 10,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
// A .env file in the working directory is loaded first, if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
