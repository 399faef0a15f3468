package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every STARSWEEP_ env var that Load() reads.
var allConfigKeys = []string{
	"STARSWEEP_GITHUB_TOKEN",
	"STARSWEEP_QUERY",
	"STARSWEEP_MAX_REPOS",
	"STARSWEEP_START_DATE",
	"STARSWEEP_OUT_PATH",
	"STARSWEEP_REQUEST_TIMEOUT",
	"STARSWEEP_RUN_DEADLINE",
	"STARSWEEP_SEARCH_INTERVAL",
}

// isolateConfigEnv saves and unsets all STARSWEEP_ env vars so tests don't
// inherit values from the host environment. t.Cleanup restores original
// values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STARSWEEP_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("STARSWEEP_QUERY", "language:go stars:>=500")
	t.Setenv("STARSWEEP_MAX_REPOS", "1200")
	t.Setenv("STARSWEEP_START_DATE", "2016-06-15")
	t.Setenv("STARSWEEP_OUT_PATH", "/tmp/out.csv")
	t.Setenv("STARSWEEP_REQUEST_TIMEOUT", "10s")
	t.Setenv("STARSWEEP_RUN_DEADLINE", "2h")
	t.Setenv("STARSWEEP_SEARCH_INTERVAL", "3s")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.Equal(t, "language:go stars:>=500", cfg.Query)
	assert.Equal(t, 1200, cfg.MaxRepos)
	assert.Equal(t, time.Date(2016, time.June, 15, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "/tmp/out.csv", cfg.OutPath)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Hour, cfg.RunDeadline)
	assert.Equal(t, 3*time.Second, cfg.SearchInterval)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STARSWEEP_GITHUB_TOKEN", "ghp_test123")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "is:public stars:>=100", cfg.Query)
	assert.Equal(t, 5000, cfg.MaxRepos)
	assert.Equal(t, time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate)
	assert.Equal(t, "github_repositories.csv", cfg.OutPath)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Duration(0), cfg.RunDeadline)
	assert.Equal(t, 2*time.Second, cfg.SearchInterval)
}

func TestLoad_MissingToken(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.ErrorIs(t, err, ErrMissingToken)
	assert.Nil(t, cfg)
}

func TestLoad_InvalidMaxRepos(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STARSWEEP_GITHUB_TOKEN", "ghp_test123")

	for _, bad := range []string{"abc", "0", "-10"} {
		t.Setenv("STARSWEEP_MAX_REPOS", bad)
		_, err := Load()
		assert.Error(t, err, "value %q should be rejected", bad)
	}
}

func TestLoad_InvalidStartDate(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STARSWEEP_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("STARSWEEP_START_DATE", "15/06/2016")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidRequestTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("STARSWEEP_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("STARSWEEP_REQUEST_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}
