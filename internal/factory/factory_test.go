package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/email-triage/internal/adapters/analytics"
	"github.com/mikey/email-triage/internal/adapters/cache"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/fallback"
	"github.com/mikey/email-triage/internal/utils"
)

func newConfig(overrides map[string]any) *config.Config {
	cfg := config.NewFromViper(config.NewEmptyViper())
	for k, v := range overrides {
		cfg.Set(k, v)
	}
	return cfg
}

func TestCacheFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("memory", func(t *testing.T) {
		repo, err := NewCacheFactory(newConfig(nil), logger).CreateCacheRepository()
		require.NoError(t, err)
		mem, ok := repo.(*cache.MemoryCache)
		require.True(t, ok)
		mem.Stop()
	})

	t.Run("sqlite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "cache.db")
		repo, err := NewCacheFactory(newConfig(map[string]any{
			"cache.type":        "sqlite",
			"cache.sqlite_path": path,
		}), logger).CreateCacheRepository()
		require.NoError(t, err)
		sq, ok := repo.(*cache.SQLiteCache)
		require.True(t, ok)
		sq.Stop()
	})

	t.Run("disabled", func(t *testing.T) {
		repo, err := NewCacheFactory(newConfig(map[string]any{"cache.enabled": false}), logger).CreateCacheRepository()
		require.NoError(t, err)
		assert.Nil(t, repo)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewCacheFactory(newConfig(map[string]any{"cache.type": "redis"}), logger).CreateCacheRepository()
		assert.ErrorContains(t, err, "unsupported cache type")
	})
}

func TestAnalyticsFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)

	tests := []struct {
		name  string
		typ   string
		check func(t *testing.T, sink any)
	}{
		{"log", "log", func(t *testing.T, sink any) {
			assert.IsType(t, &analytics.LogSink{}, sink)
		}},
		{"none", "none", func(t *testing.T, sink any) {
			assert.IsType(t, analytics.NopSink{}, sink)
		}},
		{"sqlite", "sqlite", func(t *testing.T, sink any) {
			sq, ok := sink.(*analytics.SQLSink)
			require.True(t, ok)
			assert.NoError(t, sq.Close())
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := NewAnalyticsFactory(newConfig(map[string]any{
				"analytics.type":        tt.typ,
				"analytics.sqlite_path": filepath.Join(t.TempDir(), "analytics.db"),
			}), logger).CreateSink()
			require.NoError(t, err)
			tt.check(t, sink)
		})
	}

	_, err := NewAnalyticsFactory(newConfig(map[string]any{"analytics.type": "kafka"}), logger).CreateSink()
	assert.ErrorContains(t, err, "unsupported analytics type")
}

func TestFallbackFactory(t *testing.T) {
	logger := zaptest.NewLogger(t)
	tp := utils.NewTextProcessor(logger)

	t.Run("disabled", func(t *testing.T) {
		f := NewFallbackFactory(newConfig(map[string]any{"fallback.enabled": false}), logger, tp, nil)
		fb, err := f.CreateFallback(context.Background())
		require.NoError(t, err)
		assert.Nil(t, fb)
	})

	t.Run("no credentials", func(t *testing.T) {
		f := NewFallbackFactory(newConfig(nil), logger, tp, nil)
		fb, err := f.CreateFallback(context.Background())
		require.NoError(t, err)
		assert.Nil(t, fb)
	})

	t.Run("openai configured", func(t *testing.T) {
		f := NewFallbackFactory(newConfig(map[string]any{
			"fallback.models": []string{"gemini", "openai"},
			"openai.api_key":  "sk-test",
		}), logger, tp, nil)
		fb, err := f.CreateFallback(context.Background())
		require.NoError(t, err)

		chain, ok := fb.(*fallback.Chain)
		require.True(t, ok)
		assert.Equal(t, []string{"openai/gpt-4o-mini"}, chain.Models())
		assert.NoError(t, f.Close())
	})

	t.Run("unknown provider", func(t *testing.T) {
		f := NewFallbackFactory(newConfig(map[string]any{"fallback.models": []string{"mistral"}}), logger, tp, nil)
		_, err := f.CreateFallback(context.Background())
		assert.ErrorContains(t, err, "unsupported fallback provider")
	})
}

func TestTriageFactoryThresholds(t *testing.T) {
	f := NewTriageFactory(newConfig(map[string]any{"classifier.ai_fallback_confidence": 0.8}), zaptest.NewLogger(t))
	th := f.Thresholds()
	assert.InDelta(t, 0.8, th.AIFallbackConfidence, 1e-9)
	assert.InDelta(t, 0.95, th.MaxConfidence, 1e-9)

	_, err := f.CreateCatalog()
	require.NoError(t, err)

	_, err = NewTriageFactory(newConfig(map[string]any{
		"patterns.extra_keywords": map[string][]string{"no_such_set": {"x"}},
	}), zaptest.NewLogger(t)).CreateCatalog()
	assert.Error(t, err)
}
