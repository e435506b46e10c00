// Package config loads worker configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults.
const (
	// DefaultAddr is the default listen address for the HTTP server.
	DefaultAddr = "127.0.0.1:8090"

	// DefaultRateDelay is the pause inserted between queue items to stay
	// under the Songstats API rate limit.
	DefaultRateDelay = 600 * time.Millisecond
)

// Sentinel errors for missing required environment variables.
var (
	ErrMissingDatabaseURL = errors.New("missing DATABASE_URL environment variable")
	ErrMissingAPIKey      = errors.New("missing SONGSTATS_API_KEY environment variable")
)

// Config holds the worker's runtime configuration.
type Config struct {
	// DatabaseURL is the Postgres connection string.
	DatabaseURL string

	// SongstatsAPIKey authenticates requests to the Songstats API.
	SongstatsAPIKey string

	// SongstatsBaseURL overrides the Songstats API base URL. Empty means
	// the client's default.
	SongstatsBaseURL string

	// RateDelay is the pause between processed queue items.
	RateDelay time.Duration

	// Addr is the HTTP listen address.
	Addr string
}

// Load reads configuration from environment variables.
// DATABASE_URL and SONGSTATS_API_KEY are required.
func Load() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	apiKey := os.Getenv("SONGSTATS_API_KEY")
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	cfg := &Config{
		DatabaseURL:      databaseURL,
		SongstatsAPIKey:  apiKey,
		SongstatsBaseURL: os.Getenv("SONGSTATS_API_URL"),
		RateDelay:        DefaultRateDelay,
		Addr:             DefaultAddr,
	}

	if addr := os.Getenv("ADDR"); addr != "" {
		cfg.Addr = addr
	}

	if raw := os.Getenv("RATE_DELAY_MS"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid RATE_DELAY_MS value %q", raw)
		}
		cfg.RateDelay = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}
