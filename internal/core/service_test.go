package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikey/email-triage/internal/core"
)

type fakeClassifier struct {
	calls  int
	result *core.ClassificationResult
	err    error
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (*core.ClassificationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	copied := *f.result
	return &copied, nil
}

type fakeAttachments struct{}

func (fakeAttachments) Analyze(text string) core.AttachmentAnalysis {
	return core.AttachmentAnalysis{HasMentions: true, Score: 40, RiskLevel: core.RiskSafe}
}

type fakeResponses struct{}

func (fakeResponses) Generate(result *core.ClassificationResult) string { return "resposta" }
func (fakeResponses) ResponseType(string) string                        { return "automated" }

type mapCache struct {
	mu      sync.Mutex
	entries map[string]*core.CacheEntry
}

func (c *mapCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e, nil
	}
	return nil, core.ErrNotFound
}

func (c *mapCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[entry.Key] = entry
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error { return nil }
func (c *mapCache) Cleanup(ctx context.Context) error            { return nil }

type fakeSink struct {
	records []*core.AnalyticsRecord
	err     error
}

func (s *fakeSink) Record(ctx context.Context, r *core.AnalyticsRecord) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("analytics context without deadline")
	}
	s.records = append(s.records, r)
	return s.err
}

type fakeMetrics struct {
	observed, hits, misses, analyticsFailures int
}

func (m *fakeMetrics) ObserveClassification(string, string, bool, time.Duration) { m.observed++ }
func (m *fakeMetrics) CacheLookup(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}
func (m *fakeMetrics) AnalyticsFailure() { m.analyticsFailures++ }

func requestResult() *core.ClassificationResult {
	return &core.ClassificationResult{
		Category:    core.CategoryProductive,
		Subcategory: core.SubRequest,
		Tone:        core.ToneNeutral,
		Urgency:     core.UrgencyMedium,
		Confidence:  0.8,
		Features:    &core.NlpFeatures{MostCommonWords: []string{"relatorio", "prazo"}},
	}
}

const emailText = "Preciso do relatório de vendas até sexta-feira"

func TestAnalyzeBuildsFullAnalysis(t *testing.T) {
	classifier := &fakeClassifier{result: requestResult()}
	sink := &fakeSink{}
	m := &fakeMetrics{}
	svc := core.NewTriageService(classifier, fakeAttachments{}, fakeResponses{}, nil, sink, m, zaptest.NewLogger(t),
		core.ServiceOptions{InternalDomains: []string{"empresa.com.br"}})

	analysis, err := svc.Analyze(context.Background(), &core.AnalysisRequest{
		Text:        "  " + emailText + "  ",
		SenderEmail: "Ana Souza <ana@empresa.com.br>",
		Source:      "cli",
		Metadata:    map[string]any{"batch_id": "b-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, core.SubRequest, analysis.Classification.Subcategory)
	assert.Equal(t, "resposta", analysis.SuggestedResponse)
	assert.Equal(t, "automated", analysis.ResponseType)
	assert.Equal(t, 7, analysis.WordCount)
	assert.Equal(t, 46, analysis.CharCount)
	assert.True(t, analysis.Attachments.HasMentions)
	assert.False(t, analysis.FromCache)
	assert.Equal(t, 1, m.observed)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	assert.Equal(t, "ana@empresa.com.br", rec.SenderEmail)
	assert.Equal(t, "Ana Souza", rec.SenderName)
	assert.Equal(t, "empresa.com.br", rec.SenderDomain)
	assert.Equal(t, []string{"relatorio", "prazo"}, rec.Keywords)
	assert.Equal(t, 40, rec.AttachmentScore)
	assert.Equal(t, "cli", rec.Source)
	assert.Equal(t, "b-1", rec.TechnicalData["batch_id"])
	assert.Equal(t, true, rec.TechnicalData["internal_sender"])
}

func TestAnalyzeRejectsShortText(t *testing.T) {
	classifier := &fakeClassifier{result: requestResult()}
	svc := core.NewTriageService(classifier, fakeAttachments{}, fakeResponses{}, nil, nil, nil, zaptest.NewLogger(t), core.ServiceOptions{})

	_, err := svc.Analyze(context.Background(), &core.AnalysisRequest{Text: "  oi  "})
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Zero(t, classifier.calls)
}

func TestAnalyzeServesCache(t *testing.T) {
	classifier := &fakeClassifier{result: requestResult()}
	classifier.result.AIFallbackUsed = true
	cache := &mapCache{entries: map[string]*core.CacheEntry{}}
	m := &fakeMetrics{}
	svc := core.NewTriageService(classifier, fakeAttachments{}, fakeResponses{}, cache, nil, m, zaptest.NewLogger(t),
		core.ServiceOptions{CacheEnabled: true, CacheTTL: time.Hour})

	first, err := svc.Analyze(context.Background(), &core.AnalysisRequest{Text: emailText})
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := svc.Analyze(context.Background(), &core.AnalysisRequest{Text: "\n" + emailText})
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.True(t, second.Classification.AIFallbackUsed)

	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, m.hits)
	assert.Equal(t, 1, m.misses)

	entry := cache.entries[core.CacheKey(emailText)]
	require.NotNil(t, entry)
	assert.WithinDuration(t, entry.CreatedAt.Add(time.Hour), entry.ExpiresAt, time.Second)
}

func TestAnalyzeCacheDisabled(t *testing.T) {
	classifier := &fakeClassifier{result: requestResult()}
	cache := &mapCache{entries: map[string]*core.CacheEntry{}}
	svc := core.NewTriageService(classifier, fakeAttachments{}, fakeResponses{}, cache, nil, nil, zaptest.NewLogger(t), core.ServiceOptions{})

	for i := 0; i < 2; i++ {
		_, err := svc.Analyze(context.Background(), &core.AnalysisRequest{Text: emailText})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, classifier.calls)
	assert.Empty(t, cache.entries)
}

func TestAnalyzeSurvivesAnalyticsFailure(t *testing.T) {
	obsCore, logs := observer.New(zap.WarnLevel)
	sink := &fakeSink{err: errors.New("database is locked")}
	m := &fakeMetrics{}
	svc := core.NewTriageService(&fakeClassifier{result: requestResult()}, fakeAttachments{}, fakeResponses{}, nil, sink, m, zap.New(obsCore), core.ServiceOptions{})

	analysis, err := svc.Analyze(context.Background(), &core.AnalysisRequest{Text: emailText, Source: "batch"})
	require.NoError(t, err)
	assert.NotNil(t, analysis)
	assert.Equal(t, 1, m.analyticsFailures)
	assert.Equal(t, 1, logs.FilterMessage("Failed to record analytics").Len())
}

func TestAnalyzeClassifierError(t *testing.T) {
	svc := core.NewTriageService(&fakeClassifier{err: errors.New("boom")}, fakeAttachments{}, fakeResponses{}, nil, nil, nil, zaptest.NewLogger(t), core.ServiceOptions{})

	_, err := svc.Analyze(context.Background(), &core.AnalysisRequest{Text: emailText})
	assert.ErrorContains(t, err, "failed to classify email")
}
