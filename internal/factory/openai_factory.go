package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/email-triage/internal/adapters/openai"
	"github.com/mikey/email-triage/internal/config"
)

// OpenAIFactory creates OpenAI fallback models
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateModel creates an OpenAI fallback model
func (f *OpenAIFactory) CreateModel() (*openai.Client, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key is required", errNotConfigured)
	}

	return openai.NewClient(
		openaiCfg.APIKey,
		openaiCfg.BaseURL,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger,
	), nil
}
