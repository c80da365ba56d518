// Package config loads the crawler configuration: storage connection
// parameters, crawl pacing, and the list of feed sources.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/newstrail/newstrail/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:newstrail.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Shared pool capacity"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Crawl struct {
		PollInterval  time.Duration `yaml:"poll_interval" json:"poll_interval" jsonschema:"default=15s,description=Sleep between poll cycles of one feed"`
		RetryDelay    time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=250ms,description=Fixed delay between storage retries"`
		FeedTimeout   time.Duration `yaml:"feed_timeout" json:"feed_timeout" jsonschema:"default=30s,description=Timeout for feed payload fetches"`
		PageTimeout   time.Duration `yaml:"page_timeout" json:"page_timeout" jsonschema:"default=30s,description=Timeout for article page fetches"`
		FeedUserAgent string        `yaml:"feed_user_agent" json:"feed_user_agent" jsonschema:"description=User agent for feed fetches"`
		PageUserAgent string        `yaml:"page_user_agent" json:"page_user_agent" jsonschema:"description=User agent for article page fetches"`
	} `yaml:"crawl" json:"crawl" jsonschema:"description=Crawl pacing configuration"`

	Feeds []domain.FeedSource `yaml:"feeds" json:"feeds" jsonschema:"required,description=Feed sources to poll"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for database
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:newstrail.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 3600
	}

	// set defaults for crawl pacing
	if cfg.Crawl.PollInterval == 0 {
		cfg.Crawl.PollInterval = 15 * time.Second
	}
	if cfg.Crawl.RetryDelay == 0 {
		cfg.Crawl.RetryDelay = 250 * time.Millisecond
	}
	if cfg.Crawl.FeedTimeout == 0 {
		cfg.Crawl.FeedTimeout = 30 * time.Second
	}
	if cfg.Crawl.PageTimeout == 0 {
		cfg.Crawl.PageTimeout = 30 * time.Second
	}

	if err := Verify(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
