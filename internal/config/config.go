// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// ErrMissingToken indicates no GitHub token was configured. Collection cannot
// run unauthenticated, so this is fatal before any network activity.
var ErrMissingToken = errors.New("STARSWEEP_GITHUB_TOKEN is not set")

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken    string
	Query          string
	MaxRepos       int
	StartDate      time.Time
	OutPath        string
	RequestTimeout time.Duration
	RunDeadline    time.Duration
	SearchInterval time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. STARSWEEP_GITHUB_TOKEN is required. Optional variables with defaults:
// STARSWEEP_QUERY ("is:public stars:>=100"), STARSWEEP_MAX_REPOS (5000),
// STARSWEEP_START_DATE (2014-01-01), STARSWEEP_OUT_PATH
// (github_repositories.csv), STARSWEEP_REQUEST_TIMEOUT (30s),
// STARSWEEP_RUN_DEADLINE (0, disabled), STARSWEEP_SEARCH_INTERVAL (2s).
func Load() (*Config, error) {
	token := os.Getenv("STARSWEEP_GITHUB_TOKEN")
	if token == "" {
		return nil, ErrMissingToken
	}

	query := "is:public stars:>=100"
	if v, ok := os.LookupEnv("STARSWEEP_QUERY"); ok && v != "" {
		query = v
	}

	maxRepos := 5000
	if v, ok := os.LookupEnv("STARSWEEP_MAX_REPOS"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("STARSWEEP_MAX_REPOS has invalid value %q: expected a positive integer", v)
		}
		maxRepos = parsed
	}

	// Earliest creation date the collection targets; search windows start here.
	startDate := time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC)
	if v, ok := os.LookupEnv("STARSWEEP_START_DATE"); ok {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("STARSWEEP_START_DATE has invalid date %q: %w", v, err)
		}
		startDate = parsed
	}

	outPath := "github_repositories.csv"
	if v, ok := os.LookupEnv("STARSWEEP_OUT_PATH"); ok && v != "" {
		outPath = v
	}

	requestTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("STARSWEEP_REQUEST_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STARSWEEP_REQUEST_TIMEOUT has invalid duration %q: %w", v, err)
		}
		requestTimeout = parsed
	}

	var runDeadline time.Duration
	if v, ok := os.LookupEnv("STARSWEEP_RUN_DEADLINE"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STARSWEEP_RUN_DEADLINE has invalid duration %q: %w", v, err)
		}
		runDeadline = parsed
	}

	searchInterval := 2 * time.Second
	if v, ok := os.LookupEnv("STARSWEEP_SEARCH_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("STARSWEEP_SEARCH_INTERVAL has invalid duration %q: %w", v, err)
		}
		searchInterval = parsed
	}

	return &Config{
		GitHubToken:    token,
		Query:          query,
		MaxRepos:       maxRepos,
		StartDate:      startDate,
		OutPath:        outPath,
		RequestTimeout: requestTimeout,
		RunDeadline:    runDeadline,
		SearchInterval: searchInterval,
	}, nil
}
