package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3, cfg.MaxParallel)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.SourceInterval)
	assert.Equal(t, float64(60), cfg.RequestsPerMinute)
	assert.False(t, cfg.BrowserEnabled)
	assert.Equal(t, 5, cfg.MaxWorkers)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_PARALLEL_SOURCES", "5")
	t.Setenv("QUERY_TIMEOUT", "30s")
	t.Setenv("BROWSER_ENABLED", "true")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.MaxParallel)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.True(t, cfg.BrowserEnabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("MAX_PARALLEL_SOURCES", "many")
	t.Setenv("QUERY_TIMEOUT", "forever")
	t.Setenv("BROWSER_ENABLED", "yes please")

	cfg := Load()
	assert.Equal(t, 3, cfg.MaxParallel)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
	assert.False(t, cfg.BrowserEnabled)
}
