// Package config contains everything related to configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	SubgraphURL     string
	SubgraphAPIKey  string
	SubgraphNetwork string
	DatabasePath    string
	AlertsPath      string
	LogPath         string
	LogLevel        string
	RefreshInterval time.Duration
	SwapWindow      time.Duration
	BucketSize      time.Duration
	FetchLimit      int
	RecentCount     int
	RetentionDays   int
}

// Default values
const (
	defaultRefreshInterval = 60 * time.Second
	defaultSwapWindow      = 24 * time.Hour
	defaultBucketSize      = 30 * time.Minute
	defaultFetchLimit      = 5000
	defaultRecentCount     = 5
	defaultRetentionDays   = 30
	defaultLogLevel        = "info"

	minRefreshInterval = 5 * time.Second
	appDirName         = "uniswap-tui"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		SubgraphAPIKey:  getEnvString("SUBGRAPH_API_KEY", ""),
		SubgraphNetwork: getEnvString("SUBGRAPH_NETWORK", DefaultNetwork),
		DatabasePath:    getEnvString("DATABASE_PATH", defaultPath("swaps.db")),
		AlertsPath:      getEnvString("ALERTS_PATH", defaultPath("alerts.json")),
		LogPath:         getEnvString("LOG_PATH", defaultPath("udt.log")),
		LogLevel:        getEnvString("LOG_LEVEL", defaultLogLevel),
		RefreshInterval: getEnvDuration("SWAP_REFRESH_INTERVAL", defaultRefreshInterval),
		SwapWindow:      getEnvDuration("SWAP_WINDOW", defaultSwapWindow),
		BucketSize:      getEnvDuration("BUCKET_SIZE", defaultBucketSize),
		FetchLimit:      getEnvInt("SWAP_FETCH_LIMIT", defaultFetchLimit),
		RecentCount:     getEnvInt("RECENT_SWAPS_COUNT", defaultRecentCount),
		RetentionDays:   getEnvInt("RETENTION_DAYS", defaultRetentionDays),
	}
	cfg.SubgraphURL = getEnvString("SUBGRAPH_URL", SubgraphURLFor(cfg.SubgraphNetwork, cfg.SubgraphAPIKey))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure alerts directory exists
	if err := ensureDir(filepath.Dir(cfg.AlertsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports every setting that cannot be used.
func (c *Config) Validate() error {
	var errs []error

	if c.SubgraphURL == "" {
		errs = append(errs, fmt.Errorf("SUBGRAPH_URL is required (no default for network %q)", c.SubgraphNetwork))
	}
	if c.BucketSize < time.Second {
		errs = append(errs, fmt.Errorf("BUCKET_SIZE must be at least 1s, got %s", c.BucketSize))
	}
	if c.BucketSize%time.Second != 0 {
		errs = append(errs, fmt.Errorf("BUCKET_SIZE must be a whole number of seconds, got %s", c.BucketSize))
	}
	if c.SwapWindow < c.BucketSize {
		errs = append(errs, fmt.Errorf("SWAP_WINDOW (%s) must not be shorter than BUCKET_SIZE (%s)", c.SwapWindow, c.BucketSize))
	}
	if c.RefreshInterval < minRefreshInterval {
		errs = append(errs, fmt.Errorf("SWAP_REFRESH_INTERVAL must be at least %s, got %s", minRefreshInterval, c.RefreshInterval))
	}
	if c.FetchLimit <= 0 {
		errs = append(errs, fmt.Errorf("SWAP_FETCH_LIMIT must be positive, got %d", c.FetchLimit))
	}
	if c.RecentCount < 0 {
		errs = append(errs, fmt.Errorf("RECENT_SWAPS_COUNT must not be negative, got %d", c.RecentCount))
	}
	if c.RetentionDays <= 0 {
		errs = append(errs, fmt.Errorf("RETENTION_DAYS must be positive, got %d", c.RetentionDays))
	}

	return errors.Join(errs...)
}

// BucketSizeSeconds returns the bucket size in whole seconds.
func (c *Config) BucketSizeSeconds() int64 {
	return int64(c.BucketSize / time.Second)
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, ".uniswap", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the application config directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
