package factory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/gemini"
	"github.com/mikey/email-triage/internal/config"
)

// GeminiFactory creates Gemini fallback models
type GeminiFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger) *GeminiFactory {
	return &GeminiFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateModel creates a Gemini fallback model
func (f *GeminiFactory) CreateModel(ctx context.Context) (*gemini.Client, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is required", errNotConfigured)
	}

	return gemini.NewClient(
		ctx,
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger,
	)
}
