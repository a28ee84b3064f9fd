package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8082", cfg.Port)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, "http://localhost:8000", cfg.AnalyzerURL)
	assert.Equal(t, 60*time.Second, cfg.AnalyzerTimeout)
	assert.Equal(t, 5*time.Second, cfg.BannerTTL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 1000, cfg.MaxSessions)
	assert.Equal(t, 2.0, cfg.RateLimit)
	assert.Equal(t, 5, cfg.RateBurst)
	assert.Equal(t, "data", cfg.DataDir)
	assert.False(t, cfg.UseRedis())
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ANALYZER_URL", "http://analyzer:8000/")
	t.Setenv("ANALYZER_TIMEOUT", "15s")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://analyzer:8000", cfg.AnalyzerURL)
	assert.Equal(t, 15*time.Second, cfg.AnalyzerTimeout)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.UseRedis())
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reportview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"7070\"\nMAX_SESSIONS: 10\nBANNER_TTL: 2s\n"), 0644))
	t.Setenv("MAX_SESSIONS", "20")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, 20, cfg.MaxSessions, "environment wins over the file")
	assert.Equal(t, 2*time.Second, cfg.BannerTTL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("ANALYZER_TIMEOUT", "0s")
	_, err := Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
