package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "memory", cache.Type)
	assert.True(t, cache.Enabled)
	assert.Equal(t, 24*time.Hour, cache.TTL)
	assert.Equal(t, time.Hour, cache.CleanupFrequency)

	fb, err := cfg.GetFallback()
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini", "openai"}, fb.Models)
	assert.Equal(t, 15*time.Second, fb.Timeout)
	assert.Equal(t, 3, fb.BreakerFailures)

	assert.InDelta(t, 0.70, cfg.GetClassifier().AIFallbackConfidence, 1e-9)
	assert.Equal(t, 10, cfg.GetBatch().ChunkSize)

	server, err := cfg.GetServer()
	require.NoError(t, err)
	assert.Equal(t, "X-Email-Category", server.Headers.Category)
	assert.Equal(t, "X-Email-Confidence", server.Headers.Confidence)
	assert.False(t, server.RejectSpam)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
cache:
  type: sqlite
  ttl: 2h
fallback:
  models: [bedrock]
patterns:
  extra_keywords:
    spam: [criptomoeda gratis]
analytics:
  internal_domains: [empresa.com.br]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	cache, err := cfg.GetCache()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cache.Type)
	assert.Equal(t, 2*time.Hour, cache.TTL)

	fb, err := cfg.GetFallback()
	require.NoError(t, err)
	assert.Equal(t, []string{"bedrock"}, fb.Models)

	assert.Equal(t, []string{"criptomoeda gratis"}, cfg.GetPatterns().ExtraKeywords["spam"])

	analytics, err := cfg.GetAnalytics()
	require.NoError(t, err)
	assert.Equal(t, []string{"empresa.com.br"}, analytics.InternalDomains)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestInvalidDuration(t *testing.T) {
	tests := []struct {
		name string
		key  string
		get  func(*Config) error
	}{
		{"cache ttl", "cache.ttl", func(c *Config) error { _, err := c.GetCache(); return err }},
		{"fallback timeout", "fallback.timeout", func(c *Config) error { _, err := c.GetFallback(); return err }},
		{"analytics timeout", "analytics.timeout", func(c *Config) error { _, err := c.GetAnalytics(); return err }},
		{"server timeout", "server.timeout", func(c *Config) error { _, err := c.GetServer(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewFromViper(NewEmptyViper())
			cfg.Set(tt.key, "soon")
			assert.Error(t, tt.get(cfg))
		})
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("EMAIL_TRIAGE_CACHE_TYPE", "mysql")
	t.Setenv("HOME", t.TempDir())

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.GetString("cache.type"))
}
