// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the ETL service.
type Config struct {
	DatabaseURL string
	RedisURL    string

	APIBaseURL    string // full search endpoint, e.g. "https://api.example.com/v1/search"
	APIKey        string
	SearchTerm    string // e.g. "data engineer"
	NumPages      int
	Country       string // e.g. "fr"
	DatePosted    string // upstream date filter, e.g. "today"
	ReadyInterval time.Duration
	ReadyTimeout  time.Duration

	RefDataDir string // directory holding the three reference files

	CronSpec    string // e.g. "@daily"
	MaxFailures int    // consecutive failures before the schedule pauses
	RunLockTTL  time.Duration
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	apiBaseURL := os.Getenv("JOB_API_URL")
	if apiBaseURL == "" {
		return nil, fmt.Errorf("JOB_API_URL is required")
	}

	apiKey := os.Getenv("JOB_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("JOB_API_KEY is required")
	}

	numPages, err := envInt("JOB_API_NUM_PAGES", 1)
	if err != nil {
		return nil, err
	}

	maxFailures, err := envInt("MAX_CONSECUTIVE_FAILURES", 3)
	if err != nil {
		return nil, err
	}

	readyInterval, err := envDuration("READY_POLL_INTERVAL", time.Minute)
	if err != nil {
		return nil, err
	}

	readyTimeout, err := envDuration("READY_POLL_TIMEOUT", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	lockTTL, err := envDuration("RUN_LOCK_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:   dbURL,
		RedisURL:      redisURL,
		APIBaseURL:    apiBaseURL,
		APIKey:        apiKey,
		SearchTerm:    envString("JOB_SEARCH_TERM", "data engineer"),
		NumPages:      numPages,
		Country:       envString("JOB_API_COUNTRY", "fr"),
		DatePosted:    envString("JOB_API_DATE_POSTED", "today"),
		ReadyInterval: readyInterval,
		ReadyTimeout:  readyTimeout,
		RefDataDir:    envString("REF_DATA_DIR", "data"),
		CronSpec:      envString("CRON_SPEC", "@daily"),
		MaxFailures:   maxFailures,
		RunLockTTL:    lockTTL,
	}, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, s)
	}
	return v, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, s)
	}
	return v, nil
}
