package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultBaseURL is the public JSONPlaceholder API the viewer reads from.
const DefaultBaseURL = "https://jsonplaceholder.typicode.com"

// Config is the postviewer configuration, corresponding to postviewer.yml.
type Config struct {
	BaseURL          string        `yaml:"base_url" koanf:"base_url"`
	Listen           string        `yaml:"listen" koanf:"listen"`
	HTTPTimeout      time.Duration `yaml:"http_timeout" koanf:"http_timeout"`
	FetchConcurrency int           `yaml:"fetch_concurrency" koanf:"fetch_concurrency"`
	FallbackUserID   int           `yaml:"fallback_user_id" koanf:"fallback_user_id"`
	MaxSessions      int           `yaml:"max_sessions" koanf:"max_sessions"`
	Log              LogConfig     `yaml:"log" koanf:"log"`
	Fixtures         FixtureConfig `yaml:"fixtures" koanf:"fixtures"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level" koanf:"level"`
	Development bool   `yaml:"development" koanf:"development"`
}

// FixtureConfig controls the local fixture API.
type FixtureConfig struct {
	Listen    string `yaml:"listen" koanf:"listen"`
	DBPath    string `yaml:"db_path" koanf:"db_path"`
	BackupDir string `yaml:"backup_dir" koanf:"backup_dir"`
}

// DefaultConfig returns the configuration used when no file or env overrides exist.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:          DefaultBaseURL,
		Listen:           ":8080",
		HTTPTimeout:      10 * time.Second,
		FetchConcurrency: 4,
		FallbackUserID:   1,
		MaxSessions:      256,
		Log: LogConfig{
			Level: "info",
		},
		Fixtures: FixtureConfig{
			Listen:    ":8081",
			DBPath:    "data/badger",
			BackupDir: "data/backups",
		},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (POSTVIEWER_*). Nested keys use a double
// underscore: POSTVIEWER_LOG__LEVEL -> log.level.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("POSTVIEWER_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "POSTVIEWER_"))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen is required")
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must be non-negative")
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("fetch_concurrency must be at least 1")
	}
	if c.FallbackUserID < 1 {
		return fmt.Errorf("fallback_user_id must be at least 1")
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1")
	}
	return nil
}
