// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, Load returns an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the apply service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string // required by serve only

	SiteBaseURL string

	Browser BrowserConfig

	ApplyMaxAttempts  int
	PaceMin           time.Duration
	PaceMax           time.Duration
	MaxConcurrentRuns int

	SnapshotDir        string // empty disables debug snapshots
	SnapshotRetention  time.Duration
	SweepIntervalHours int

	LogLevel  string
	LogFormat string
}

// BrowserConfig controls how sessions are launched.
type BrowserConfig struct {
	Headless      bool
	ProfileDir    string // parent of the per-profile user-data dirs; empty = throwaway profiles
	ActionTimeout time.Duration
}

// Load reads an optional .env file, then the environment, and returns a
// validated Config.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	headless := true
	if s := os.Getenv("BROWSER_HEADLESS"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("BROWSER_HEADLESS must be a boolean, got %q", s)
		}
		headless = v
	}

	timeoutSec, err := positiveInt("BROWSER_ACTION_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}
	attempts, err := positiveInt("APPLY_MAX_ATTEMPTS", 8)
	if err != nil {
		return nil, err
	}
	paceMin, err := positiveInt("PACE_MIN_MS", 2000)
	if err != nil {
		return nil, err
	}
	paceMax, err := positiveInt("PACE_MAX_MS", 5000)
	if err != nil {
		return nil, err
	}
	if paceMax < paceMin {
		return nil, fmt.Errorf("PACE_MAX_MS (%d) must not be lower than PACE_MIN_MS (%d)", paceMax, paceMin)
	}
	runs, err := positiveInt("MAX_CONCURRENT_RUNS", 3)
	if err != nil {
		return nil, err
	}
	retention, err := positiveInt("SNAPSHOT_RETENTION_HOURS", 72)
	if err != nil {
		return nil, err
	}
	sweep, err := positiveInt("SWEEP_INTERVAL_HOURS", 6)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:        getEnv("APPLY_PORT", "8083"),
		DatabaseURL: dbURL,
		RedisURL:    os.Getenv("REDIS_URL"),
		SiteBaseURL: strings.TrimRight(getEnv("SITE_BASE_URL", "https://www.linkedin.com"), "/"),
		Browser: BrowserConfig{
			Headless:      headless,
			ProfileDir:    os.Getenv("BROWSER_PROFILE_DIR"),
			ActionTimeout: time.Duration(timeoutSec) * time.Second,
		},
		ApplyMaxAttempts:   attempts,
		PaceMin:            time.Duration(paceMin) * time.Millisecond,
		PaceMax:            time.Duration(paceMax) * time.Millisecond,
		MaxConcurrentRuns:  runs,
		SnapshotDir:        os.Getenv("DEBUG_SNAPSHOT_DIR"),
		SnapshotRetention:  time.Duration(retention) * time.Hour,
		SweepIntervalHours: sweep,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func positiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}
