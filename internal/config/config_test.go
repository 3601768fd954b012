package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every VARAFLEET_ env var that Load() reads.
var allConfigKeys = []string{
	"VARAFLEET_GITHUB_TOKEN",
	"VARAFLEET_CONTROLLER_REPO",
	"VARAFLEET_DB_PATH",
	"VARAFLEET_STORAGE_ROOT",
	"VARAFLEET_POLL_INTERVAL",
	"VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE",
	"VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT",
	"VARAFLEET_DOWNLOAD_CONCURRENCY",
}

// isolateConfigEnv saves and unsets all VARAFLEET_ env vars so tests don't
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
	t.Setenv("VARAFLEET_GITHUB_TOKEN", "ghp_test123")
	t.Setenv("VARAFLEET_CONTROLLER_REPO", "octo/controller")
	t.Setenv("VARAFLEET_DB_PATH", "/tmp/test.db")
	t.Setenv("VARAFLEET_STORAGE_ROOT", "/tmp/results")
	t.Setenv("VARAFLEET_POLL_INTERVAL", "30s")
	t.Setenv("VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE", "1048576")
	t.Setenv("VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT", "25")
	t.Setenv("VARAFLEET_DOWNLOAD_CONCURRENCY", "8")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "ghp_test123", cfg.GitHubToken)
	assert.Equal(t, "octo/controller", cfg.ControllerRepo)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "/tmp/results", cfg.StorageRoot)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, int64(1048576), cfg.MaxAutoDownloadSize)
	assert.Equal(t, 25, cfg.MaxAutoDownloadCount)
	assert.Equal(t, 8, cfg.DownloadConcurrency)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "varafleet.db", cfg.DBPath)
	assert.Equal(t, "varafleet-results", cfg.StorageRoot)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, int64(300*1024), cfg.MaxAutoDownloadSize)
	assert.Equal(t, 100, cfg.MaxAutoDownloadCount)
	assert.Equal(t, 4, cfg.DownloadConcurrency)
}

// TestLoad_MissingToken verifies that a missing GITHUB_TOKEN does not cause
// an error at load time — commands that reach the API fail later instead.
func TestLoad_MissingToken(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "", cfg.GitHubToken)
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VARAFLEET_POLL_INTERVAL", "not-a-duration")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VARAFLEET_POLL_INTERVAL")
}

func TestLoad_NegativePollInterval(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VARAFLEET_POLL_INTERVAL", "-5s")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VARAFLEET_POLL_INTERVAL")
}

func TestLoad_InvalidMaxSize(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE", "lots")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VARAFLEET_MAX_AUTO_DOWNLOAD_SIZE")
}

func TestLoad_InvalidMaxCount(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VARAFLEET_MAX_AUTO_DOWNLOAD_COUNT")
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("VARAFLEET_DOWNLOAD_CONCURRENCY", "-1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VARAFLEET_DOWNLOAD_CONCURRENCY")
}
