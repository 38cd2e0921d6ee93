package classifier

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/catalog"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/nlp"
)

// Classifier runs the hierarchical rule cascade over one email text and
// consults the AI fallback when the rule confidence is low
type Classifier struct {
	catalog    *catalog.Catalog
	normalizer *nlp.Normalizer
	fallback   core.FallbackClassifier
	thresholds Thresholds
	logger     *zap.Logger
	rules      []rule
}

// New creates a classifier. fallback may be nil.
func New(
	cat *catalog.Catalog,
	normalizer *nlp.Normalizer,
	fallback core.FallbackClassifier,
	thresholds Thresholds,
	logger *zap.Logger,
) *Classifier {
	c := &Classifier{
		catalog:    cat,
		normalizer: normalizer,
		fallback:   fallback,
		thresholds: thresholds,
		logger:     logger,
	}
	c.rules = c.cascade()
	return c
}

// Classify validates text, runs the cascade and applies the confidence gate
func (c *Classifier) Classify(ctx context.Context, text string) (*core.ClassificationResult, error) {
	if _, err := core.ValidateText(text); err != nil {
		return nil, err
	}

	result := c.ClassifyRules(text)
	if result.Confidence >= c.thresholds.AIFallbackConfidence || c.fallback == nil {
		return result, nil
	}

	c.logger.Debug("Rule confidence below threshold, consulting AI fallback",
		zap.Float64("confidence", result.Confidence),
		zap.Float64("threshold", c.thresholds.AIFallbackConfidence))

	aiResult, err := c.fallback.ClassifyFallback(ctx, text, c.normalizer.TextStats(text))
	if err != nil {
		if errors.Is(err, core.ErrFallbackUnavailable) {
			c.logger.Debug("AI fallback unavailable, keeping rule result", zap.Error(err))
		} else {
			c.logger.Warn("AI fallback failed, keeping rule result", zap.Error(err))
		}
		return result, nil
	}

	if aiResult == nil || aiResult.Confidence <= result.Confidence {
		return result, nil
	}

	aiResult.AIFallbackUsed = true
	aiResult.Features = result.Features
	c.logger.Info("AI fallback result accepted",
		zap.String("model", aiResult.ModelUsed),
		zap.String("subcategory", aiResult.Subcategory),
		zap.Float64("rule_confidence", result.Confidence),
		zap.Float64("ai_confidence", aiResult.Confidence))

	return aiResult, nil
}

// ClassifyRules runs only the deterministic cascade
func (c *Classifier) ClassifyRules(text string) *core.ClassificationResult {
	in := &input{
		text:     text,
		lower:    strings.ToLower(strings.TrimSpace(text)),
		words:    len(strings.Fields(text)),
		features: c.normalizer.Preprocess(text),
	}

	for _, r := range c.rules {
		if result := c.run(r, in); result != nil {
			result.Features = in.features
			return result
		}
	}

	// productive always answers; reaching here means it panicked
	return &core.ClassificationResult{
		Category:    core.CategoryUnproductive,
		Subcategory: core.SubInformational,
		Tone:        core.ToneNeutral,
		Urgency:     core.UrgencyLow,
		Confidence:  c.thresholds.DefaultConfidence,
		Reasoning:   "no rule produced a result",
		Features:    in.features,
	}
}

func (c *Classifier) run(r rule, in *input) (result *core.ClassificationResult) {
	defer func() {
		if p := recover(); p != nil {
			c.logger.Error("Classification rule panicked",
				zap.String("rule", r.name),
				zap.Any("panic", p))
			result = nil
		}
	}()
	return r.apply(in)
}
