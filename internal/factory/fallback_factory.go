package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/config"
	"github.com/mikey/email-triage/internal/core"
	"github.com/mikey/email-triage/internal/fallback"
	"github.com/mikey/email-triage/internal/metrics"
	"github.com/mikey/email-triage/internal/utils"
)

// errNotConfigured marks a provider left out of the chain for missing credentials
var errNotConfigured = errors.New("provider not configured")

// FallbackFactory builds the AI fallback chain from the configured providers
type FallbackFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	metrics       *metrics.Metrics
	closers       []io.Closer
}

// NewFallbackFactory creates a new fallback factory
func NewFallbackFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor, m *metrics.Metrics) *FallbackFactory {
	return &FallbackFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		metrics:       m,
	}
}

// CreateFallback returns the fallback chain, or nil when the fallback is
// disabled or no provider is usable
func (f *FallbackFactory) CreateFallback(ctx context.Context) (core.FallbackClassifier, error) {
	fbCfg, err := f.cfg.GetFallback()
	if err != nil {
		return nil, err
	}
	if !fbCfg.Enabled {
		f.logger.Info("AI fallback disabled")
		return nil, nil
	}

	models, err := f.createModels(ctx, fbCfg.Models)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		f.logger.Warn("No AI fallback provider configured, using rule results only")
		return nil, nil
	}

	chain := fallback.NewChain(models, f.textProcessor, fallback.Options{
		Timeout:         fbCfg.Timeout,
		BreakerFailures: uint32(fbCfg.BreakerFailures),
		BreakerCooldown: fbCfg.BreakerCooldown,
	}, f.logger, f.metrics)

	f.logger.Info("AI fallback chain ready", zap.Strings("models", chain.Models()))
	return chain, nil
}

func (f *FallbackFactory) createModels(ctx context.Context, providers []string) ([]fallback.Model, error) {
	models := make([]fallback.Model, 0, len(providers))
	for _, provider := range providers {
		model, err := f.createModel(ctx, strings.ToLower(strings.TrimSpace(provider)))
		if errors.Is(err, errNotConfigured) {
			f.logger.Warn("Skipping AI fallback provider", zap.String("provider", provider), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return models, nil
}

func (f *FallbackFactory) createModel(ctx context.Context, provider string) (fallback.Model, error) {
	switch provider {
	case "gemini":
		client, err := NewGeminiFactory(f.cfg, f.logger).CreateModel(ctx)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, client)
		return client, nil
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger).CreateModel()
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger).CreateModel(ctx)
	default:
		return nil, fmt.Errorf("unsupported fallback provider: %s", provider)
	}
}

// Close releases provider clients created by the factory
func (f *FallbackFactory) Close() error {
	var errs []error
	for _, c := range f.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
