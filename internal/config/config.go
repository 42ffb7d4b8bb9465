package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMinConns  int32  `envconfig:"PULSE_DB_MIN_CONNS" default:"1"`
	DBMaxConns  int32  `envconfig:"PULSE_DB_MAX_CONNS" default:"8"`

	// Optional bearer token for the GitHub API; unauthenticated requests
	// work but hit much lower rate limits.
	GitHubToken string `envconfig:"GITHUB_TOKEN" default:""`

	HackerNewsBaseURL string `envconfig:"HN_API_BASE" default:"https://hacker-news.firebaseio.com/v0"`

	FetchTimeoutSeconds int `envconfig:"PULSE_FETCH_TIMEOUT_SECONDS" default:"10"`
	CacheTTLSeconds     int `envconfig:"PULSE_CACHE_TTL_SECONDS" default:"300"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("PULSE_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("PULSE_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("PULSE_DB_MIN_CONNS (%d) cannot exceed PULSE_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.HackerNewsBaseURL) == "" {
		return fmt.Errorf("HN_API_BASE must not be empty")
	}
	if c.FetchTimeoutSeconds < 1 {
		return fmt.Errorf("PULSE_FETCH_TIMEOUT_SECONDS must be >= 1")
	}
	if c.CacheTTLSeconds < 1 {
		return fmt.Errorf("PULSE_CACHE_TTL_SECONDS must be >= 1")
	}
	return nil
}
