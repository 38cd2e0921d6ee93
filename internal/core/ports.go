package core

import (
	"context"
)

// Classifier classifies a single email text
type Classifier interface {
	// Classify runs the rule cascade and, when confidence is low, the AI fallback
	Classify(ctx context.Context, text string) (*ClassificationResult, error)
}

// AttachmentAnalyzer detects attachment mentions and their risk
type AttachmentAnalyzer interface {
	Analyze(text string) AttachmentAnalysis
}

// ResponseGenerator suggests a reply for a classified email
type ResponseGenerator interface {
	// Generate returns the suggested response text
	Generate(result *ClassificationResult) string

	// ResponseType returns how the reply should be handled
	ResponseType(subcategory string) string
}

// FallbackClassifier is the external AI collaborator consulted on low confidence
type FallbackClassifier interface {
	// ClassifyFallback returns ErrFallbackUnavailable when no model could answer
	ClassifyFallback(ctx context.Context, text string, stats TextStats) (*ClassificationResult, error)
}

// CacheRepository defines the interface for caching classification results
type CacheRepository interface {
	// Get retrieves a cached entry by content hash
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// AnalyticsSink receives a flat record for every successful classification
type AnalyticsSink interface {
	Record(ctx context.Context, record *AnalyticsRecord) error
}
