// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken          string
	ControllerRepo       string
	DBPath               string
	StorageRoot          string
	PollInterval         time.Duration
	MaxAutoDownloadSize  int64
	MaxAutoDownloadCount int
	DownloadConcurrency  int
}

// Load reads configuration from environment variables and returns a validated
// Config. VARAFLEET_GITHUB_TOKEN is optional at load time; operations that
// talk to the API fail later without it. VARAFLEET_CONTROLLER_REPO is the
// default controller repository for submissions and may be overridden per
// command. Optional variables with defaults: VARAFLEET_DB_PATH
// (varafleet.db), VARAFLEET_STORAGE_ROOT (varafleet-results),
// VARAFLEET_POLL_INTERVAL (10s), VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE (307200),
// VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT (100), VARAFLEET_DOWNLOAD_CONCURRENCY (4).
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:          os.Getenv("VARAFLEET_GITHUB_TOKEN"),
		ControllerRepo:       os.Getenv("VARAFLEET_CONTROLLER_REPO"),
		DBPath:               "varafleet.db",
		StorageRoot:          "varafleet-results",
		PollInterval:         10 * time.Second,
		MaxAutoDownloadSize:  300 * 1024,
		MaxAutoDownloadCount: 100,
		DownloadConcurrency:  4,
	}

	if v, ok := os.LookupEnv("VARAFLEET_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("VARAFLEET_STORAGE_ROOT"); ok {
		cfg.StorageRoot = v
	}

	if v, ok := os.LookupEnv("VARAFLEET_POLL_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("VARAFLEET_POLL_INTERVAL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("VARAFLEET_POLL_INTERVAL must be positive, got %q", v)
		}
		cfg.PollInterval = parsed
	}

	if v, ok := os.LookupEnv("VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE must be a positive integer, got %q", v)
		}
		cfg.MaxAutoDownloadSize = parsed
	}

	if v, ok := os.LookupEnv("VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT must be a positive integer, got %q", v)
		}
		cfg.MaxAutoDownloadCount = parsed
	}

	if v, ok := os.LookupEnv("VARAFLEET_DOWNLOAD_CONCURRENCY"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("VARAFLEET_DOWNLOAD_CONCURRENCY must be a positive integer, got %q", v)
		}
		cfg.DownloadConcurrency = parsed
	}

	return cfg, nil
}
