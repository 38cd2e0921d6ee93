package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/email-triage/internal/core"
)

func sampleEntry(key string, ttl time.Duration) *core.CacheEntry {
	now := time.Now()
	return &core.CacheEntry{
		Key: key,
		Result: &core.ClassificationResult{
			Category:       core.CategoryProductive,
			Subcategory:    core.SubTechnicalSupport,
			Tone:           core.ToneNegative,
			Urgency:        core.UrgencyHigh,
			Confidence:     0.9,
			Reasoning:      "erro no sistema",
			AIFallbackUsed: true,
			ModelUsed:      "gemini/gemini-1.5-flash",
		},
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func runRepositoryContract(t *testing.T, repo core.CacheRepository) {
	ctx := context.Background()
	key := core.CacheKey("o sistema está fora do ar")

	_, err := repo.Get(ctx, key)
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, repo.Set(ctx, sampleEntry(key, time.Hour)))

	entry, err := repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, key, entry.Key)
	assert.Equal(t, core.SubTechnicalSupport, entry.Result.Subcategory)
	assert.True(t, entry.Result.AIFallbackUsed)
	assert.Equal(t, "gemini/gemini-1.5-flash", entry.Result.ModelUsed)

	require.NoError(t, repo.Delete(ctx, key))
	_, err = repo.Get(ctx, key)
	assert.ErrorIs(t, err, core.ErrNotFound)

	expired := sampleEntry("expired", -time.Hour)
	require.NoError(t, repo.Set(ctx, expired))
	_, err = repo.Get(ctx, "expired")
	assert.ErrorIs(t, err, core.ErrNotFound)
	require.NoError(t, repo.Cleanup(ctx))
}

func TestMemoryCache(t *testing.T) {
	cache := NewMemoryCache(zaptest.NewLogger(t), time.Hour)
	defer cache.Stop()

	runRepositoryContract(t, cache)
	assert.Zero(t, cache.Len())
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	cache := NewMemoryCache(zaptest.NewLogger(t), 0)
	defer cache.Stop()
	ctx := context.Background()

	entry := sampleEntry("k", time.Hour)
	require.NoError(t, cache.Set(ctx, entry))
	entry.Result.Subcategory = core.SubSpam

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	got.Result.Confidence = 0

	again, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, core.SubTechnicalSupport, again.Result.Subcategory)
	assert.Equal(t, 0.9, again.Result.Confidence)

	assert.Error(t, cache.Set(ctx, &core.CacheEntry{Key: "empty"}))
}

func TestSQLiteCache(t *testing.T) {
	cache, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"), zaptest.NewLogger(t), time.Hour)
	require.NoError(t, err)
	defer cache.Stop()

	runRepositoryContract(t, cache)
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, core.CacheKey("texto"), core.CacheKey("  texto \n"))
	assert.NotEqual(t, core.CacheKey("texto"), core.CacheKey("outro texto"))
	assert.Len(t, core.CacheKey("texto"), 64)
}
