package config

import (
	"fmt"
	"time"
)

// ClassifierConfig holds the tunable thresholds of the rule cascade
type ClassifierConfig struct {
	AIFallbackConfidence float64
	BaseConfidence       float64
	MaxConfidence        float64
}

// PatternsConfig holds catalog extensions keyed by set or group name
type PatternsConfig struct {
	ExtraKeywords map[string][]string
	ExtraPatterns map[string][]string
}

// FallbackConfig represents the AI fallback chain configuration
type FallbackConfig struct {
	Enabled         bool
	Models          []string
	Timeout         time.Duration
	BreakerFailures int
	BreakerCooldown time.Duration
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
}

// CacheConfig represents the result cache configuration
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
}

// AnalyticsConfig represents the analytics sink configuration
type AnalyticsConfig struct {
	Type            string
	SQLitePath      string
	MySQLDSN        string
	Timeout         time.Duration
	InternalDomains []string
}

// BatchConfig represents the batch processor configuration
type BatchConfig struct {
	ChunkSize      int
	CollectGarbage bool
}

// HeaderNames are the headers the SMTP intake stamps on each message
type HeaderNames struct {
	Category    string
	Subcategory string
	Tone        string
	Urgency     string
	Confidence  string
}

// ServerConfig represents the SMTP intake configuration
type ServerConfig struct {
	ListenAddress string
	Domain        string
	RejectSpam    bool
	RelayEnabled  bool
	RelayAddress  string
	RelayPort     int
	Timeout       time.Duration
	Headers       HeaderNames
}

// MetricsConfig represents the prometheus endpoint configuration
type MetricsConfig struct {
	Enabled       bool
	ListenAddress string
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		AIFallbackConfidence: c.GetFloat64("classifier.ai_fallback_confidence"),
		BaseConfidence:       c.GetFloat64("classifier.base_confidence"),
		MaxConfidence:        c.GetFloat64("classifier.max_confidence"),
	}
}

// GetPatterns returns the catalog extensions
func (c *Config) GetPatterns() PatternsConfig {
	return PatternsConfig{
		ExtraKeywords: c.GetStringMapStringSlice("patterns.extra_keywords"),
		ExtraPatterns: c.GetStringMapStringSlice("patterns.extra_patterns"),
	}
}

// GetFallback returns the AI fallback configuration
func (c *Config) GetFallback() (FallbackConfig, error) {
	timeout, err := c.GetDuration("fallback.timeout")
	if err != nil {
		return FallbackConfig{}, err
	}
	cooldown, err := c.GetDuration("fallback.breaker_cooldown")
	if err != nil {
		return FallbackConfig{}, err
	}
	failures := c.GetInt("fallback.breaker_failures")
	if failures < 1 {
		return FallbackConfig{}, fmt.Errorf("fallback.breaker_failures must be positive, got %d", failures)
	}
	return FallbackConfig{
		Enabled:         c.GetBool("fallback.enabled"),
		Models:          c.GetStringSlice("fallback.models"),
		Timeout:         timeout,
		BreakerFailures: failures,
		BreakerCooldown: cooldown,
	}, nil
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
	}
}

// GetCache returns the result cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, err
	}
	cleanup, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, err
	}
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
	}, nil
}

// GetAnalytics returns the analytics configuration
func (c *Config) GetAnalytics() (AnalyticsConfig, error) {
	timeout, err := c.GetDuration("analytics.timeout")
	if err != nil {
		return AnalyticsConfig{}, err
	}
	return AnalyticsConfig{
		Type:            c.GetString("analytics.type"),
		SQLitePath:      c.GetString("analytics.sqlite_path"),
		MySQLDSN:        c.GetString("analytics.mysql_dsn"),
		Timeout:         timeout,
		InternalDomains: c.GetStringSlice("analytics.internal_domains"),
	}, nil
}

// GetBatch returns the batch configuration
func (c *Config) GetBatch() BatchConfig {
	return BatchConfig{
		ChunkSize:      c.GetInt("batch.chunk_size"),
		CollectGarbage: c.GetBool("batch.collect_garbage"),
	}
}

// GetServer returns the SMTP intake configuration
func (c *Config) GetServer() (ServerConfig, error) {
	timeout, err := c.GetDuration("server.timeout")
	if err != nil {
		return ServerConfig{}, err
	}
	return ServerConfig{
		ListenAddress: c.GetString("server.listen_address"),
		Domain:        c.GetString("server.domain"),
		RejectSpam:    c.GetBool("server.reject_spam"),
		RelayEnabled:  c.GetBool("server.relay_enabled"),
		RelayAddress:  c.GetString("server.relay_address"),
		RelayPort:     c.GetInt("server.relay_port"),
		Timeout:       timeout,
		Headers: HeaderNames{
			Category:    c.GetString("server.headers.category"),
			Subcategory: c.GetString("server.headers.subcategory"),
			Tone:        c.GetString("server.headers.tone"),
			Urgency:     c.GetString("server.headers.urgency"),
			Confidence:  c.GetString("server.headers.confidence"),
		},
	}, nil
}

// GetMetrics returns the metrics endpoint configuration
func (c *Config) GetMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:       c.GetBool("metrics.enabled"),
		ListenAddress: c.GetString("metrics.listen_address"),
	}
}
