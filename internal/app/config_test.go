package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 7, cfg.Deals.LookbackDays)
	assert.Equal(t, 100, cfg.Deals.DefaultLimit)
	assert.Equal(t, 1000, cfg.Deals.MaxLimit)
	assert.Equal(t, "0 */6 * * *", cfg.Refresh.Schedule)
	assert.Equal(t, 2*time.Second, cfg.Refresh.InterBatchWait)
	assert.Equal(t, 24*time.Hour, cfg.Cleanup.Expiration)
	assert.False(t, cfg.Classifier.Enabled)
	assert.Equal(t, 15*time.Second, cfg.Classifier.Timeout)
	assert.Empty(t, cfg.Supabase.URL)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9090
  log_level: debug
cache:
  enabled: false
  ttl_seconds: 600
refresh:
  max_pages: 5
  inter_batch_wait: 500ms
source:
  page_url: "https://deals.example/hot?page=%d"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Refresh.MaxPages)
	assert.Equal(t, 500*time.Millisecond, cfg.Refresh.InterBatchWait)
	assert.Equal(t, "https://deals.example/hot?page=%d", cfg.Source.PageURL)

	// Unset sections keep their defaults.
	assert.Equal(t, 1000, cfg.Deals.MaxLimit)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("DEALHOUND_SERVER_PORT", "7070")
	t.Setenv("DEALHOUND_SUPABASE_URL", "https://project.supabase.co")

	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "https://project.supabase.co", cfg.Supabase.URL)
}
