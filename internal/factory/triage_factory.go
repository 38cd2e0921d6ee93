package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/attachment"
	"github.com/mikey/email-triage/internal/catalog"
	"github.com/mikey/email-triage/internal/classifier"
	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/nlp"
)

// TriageFactory builds the analysis components from configuration
type TriageFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTriageFactory creates a new triage factory
func NewTriageFactory(cfg *config.Config, logger *zap.Logger) *TriageFactory {
	return &TriageFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCatalog compiles the pattern catalog with any configured extensions
func (f *TriageFactory) CreateCatalog() (*catalog.Catalog, error) {
	patterns := f.cfg.GetPatterns()
	return catalog.New(catalog.Options{
		ExtraKeywords: patterns.ExtraKeywords,
		ExtraPatterns: patterns.ExtraPatterns,
	})
}

// Thresholds returns the cascade thresholds with configured overrides applied
func (f *TriageFactory) Thresholds() classifier.Thresholds {
	t := classifier.DefaultThresholds()
	c := f.cfg.GetClassifier()
	if c.AIFallbackConfidence > 0 {
		t.AIFallbackConfidence = c.AIFallbackConfidence
	}
	if c.BaseConfidence > 0 {
		t.BaseConfidence = c.BaseConfidence
	}
	if c.MaxConfidence > 0 {
		t.MaxConfidence = c.MaxConfidence
	}
	return t
}

// CreateClassifier creates the hierarchical classifier. fallback may be nil.
func (f *TriageFactory) CreateClassifier(cat *catalog.Catalog, normalizer *nlp.Normalizer, fallback core.FallbackClassifier) *classifier.Classifier {
	return classifier.New(cat, normalizer, fallback, f.Thresholds(), f.logger.Named("classifier"))
}

// CreateAttachmentAnalyzer creates the attachment analyzer
func (f *TriageFactory) CreateAttachmentAnalyzer() (*attachment.Analyzer, error) {
	return attachment.New()
}

// ServiceOptions returns the triage service options from the cache and
// analytics configuration
func (f *TriageFactory) ServiceOptions() (core.ServiceOptions, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return core.ServiceOptions{}, err
	}
	analyticsCfg, err := f.cfg.GetAnalytics()
	if err != nil {
		return core.ServiceOptions{}, err
	}
	return core.ServiceOptions{
		CacheEnabled:     cacheCfg.Enabled,
		CacheTTL:         cacheCfg.TTL,
		AnalyticsTimeout: analyticsCfg.Timeout,
		InternalDomains:  analyticsCfg.InternalDomains,
	}, nil
}
