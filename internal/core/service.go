package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/sender"
)

// MetricsRecorder receives the service's operational counters
type MetricsRecorder interface {
	ObserveClassification(category, subcategory string, aiFallback bool, elapsed time.Duration)
	CacheLookup(hit bool)
	AnalyticsFailure()
}

// ServiceOptions tunes the triage service
type ServiceOptions struct {
	CacheEnabled     bool
	CacheTTL         time.Duration
	AnalyticsTimeout time.Duration
	// InternalDomains marks senders from these domains in the analytics data
	InternalDomains []string
}

// TriageService is the core service chaining classification, attachment
// analysis, the suggested response and the analytics hand-off
type TriageService struct {
	classifier  Classifier
	attachments AttachmentAnalyzer
	responses   ResponseGenerator
	cache       CacheRepository
	analytics   AnalyticsSink
	metrics     MetricsRecorder
	internal    *sender.DomainChecker
	logger      *zap.Logger
	opts        ServiceOptions
}

// NewTriageService creates a new triage service. cache, analytics and
// metrics may be nil.
func NewTriageService(
	classifier Classifier,
	attachments AttachmentAnalyzer,
	responses ResponseGenerator,
	cache CacheRepository,
	analytics AnalyticsSink,
	metrics MetricsRecorder,
	logger *zap.Logger,
	opts ServiceOptions,
) *TriageService {
	if opts.AnalyticsTimeout <= 0 {
		opts.AnalyticsTimeout = 5 * time.Second
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 24 * time.Hour
	}
	return &TriageService{
		classifier:  classifier,
		attachments: attachments,
		responses:   responses,
		cache:       cache,
		analytics:   analytics,
		metrics:     metrics,
		internal:    sender.NewDomainChecker(opts.InternalDomains, logger),
		logger:      logger,
		opts:        opts,
	}
}

// ValidateText rejects texts shorter than MinTextLength after trimming
func ValidateText(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) < MinTextLength {
		return "", fmt.Errorf("%w: text below minimum length of %d characters", ErrInvalidInput, MinTextLength)
	}
	return trimmed, nil
}

// Classify classifies text, serving and filling the result cache when enabled
func (s *TriageService) Classify(ctx context.Context, text string) (*ClassificationResult, bool, error) {
	text, err := ValidateText(text)
	if err != nil {
		return nil, false, err
	}

	key := CacheKey(text)
	if cached := s.lookup(ctx, key); cached != nil {
		return cached, true, nil
	}

	result, err := s.classifier.Classify(ctx, text)
	if err != nil {
		return nil, false, fmt.Errorf("failed to classify email: %w", err)
	}

	s.store(ctx, key, result)
	return result, false, nil
}

// Analyze runs the full triage of one email
func (s *TriageService) Analyze(ctx context.Context, req *AnalysisRequest) (*EmailAnalysis, error) {
	start := time.Now()

	text, err := ValidateText(req.Text)
	if err != nil {
		return nil, err
	}

	result, fromCache, err := s.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	analysis := &EmailAnalysis{
		Classification:    result,
		Attachments:       s.attachments.Analyze(text),
		SuggestedResponse: s.responses.Generate(result),
		ResponseType:      s.responses.ResponseType(result.Subcategory),
		WordCount:         len(strings.Fields(text)),
		CharCount:         utf8.RuneCountInString(text),
		FromCache:         fromCache,
	}

	elapsed := time.Since(start)
	analysis.ProcessingTimeMs = elapsed.Milliseconds()

	if s.metrics != nil {
		s.metrics.ObserveClassification(string(result.Category), result.Subcategory, result.AIFallbackUsed, elapsed)
	}

	s.logger.Debug("Email triaged",
		zap.String("category", string(result.Category)),
		zap.String("subcategory", result.Subcategory),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("ai_fallback_used", result.AIFallbackUsed),
		zap.Bool("from_cache", fromCache),
		zap.String("source", req.Source),
		zap.Int64("processing_time_ms", analysis.ProcessingTimeMs))

	s.record(ctx, req, analysis)
	return analysis, nil
}

func (s *TriageService) lookup(ctx context.Context, key string) *ClassificationResult {
	if !s.opts.CacheEnabled || s.cache == nil {
		return nil
	}

	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Cache lookup failed", zap.Error(err))
		}
		s.cacheLookup(false)
		return nil
	}

	s.logger.Debug("Cache hit for email", zap.String("cache_key", key))
	s.cacheLookup(true)
	return entry.Result
}

func (s *TriageService) store(ctx context.Context, key string, result *ClassificationResult) {
	if !s.opts.CacheEnabled || s.cache == nil {
		return
	}

	now := time.Now()
	entry := &CacheEntry{
		Key:       key,
		Result:    result,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.CacheTTL),
	}
	if err := s.cache.Set(ctx, entry); err != nil {
		s.logger.Error("Failed to update cache", zap.Error(err))
	}
}

func (s *TriageService) cacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.CacheLookup(hit)
	}
}

// record hands the analysis to the analytics sink; failures never reach the caller
func (s *TriageService) record(ctx context.Context, req *AnalysisRequest, analysis *EmailAnalysis) {
	if s.analytics == nil {
		return
	}

	from := sender.Parse(req.SenderEmail)
	if from.Name == "" {
		from.Name = req.SenderName
	}

	technical := map[string]any{
		"from_cache":       analysis.FromCache,
		"ai_fallback_used": analysis.Classification.AIFallbackUsed,
		"response_type":    analysis.ResponseType,
		"risk_level":       string(analysis.Attachments.RiskLevel),
	}
	if analysis.Classification.ModelUsed != "" {
		technical["model_used"] = analysis.Classification.ModelUsed
	}
	if s.internal.Contains(from) {
		technical["internal_sender"] = true
	}
	for k, v := range req.Metadata {
		technical[k] = v
	}

	var keywords []string
	if f := analysis.Classification.Features; f != nil {
		keywords = f.MostCommonWords
		if len(keywords) > 10 {
			keywords = keywords[:10]
		}
	}

	record := &AnalyticsRecord{
		SenderEmail:      from.Email,
		SenderName:       from.Name,
		SenderDomain:     from.Domain,
		Category:         analysis.Classification.Category,
		Subcategory:      analysis.Classification.Subcategory,
		Tone:             analysis.Classification.Tone,
		Urgency:          analysis.Classification.Urgency,
		Confidence:       analysis.Classification.Confidence,
		WordCount:        analysis.WordCount,
		CharCount:        analysis.CharCount,
		HasAttachments:   analysis.Attachments.HasMentions,
		AttachmentScore:  analysis.Attachments.Score,
		Keywords:         keywords,
		ProcessingTimeMs: analysis.ProcessingTimeMs,
		Source:           req.Source,
		TechnicalData:    technical,
		CreatedAt:        time.Now(),
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.AnalyticsTimeout)
	defer cancel()

	if err := s.analytics.Record(recordCtx, record); err != nil {
		if s.metrics != nil {
			s.metrics.AnalyticsFailure()
		}
		s.logger.Warn("Failed to record analytics",
			zap.String("source", req.Source),
			zap.Error(err))
	}
}
