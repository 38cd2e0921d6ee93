package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. EMAIL_TRIAGE_CACHE_TYPE
const EnvPrefix = "EMAIL_TRIAGE"

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	return Load("")
}

// Load reads the configuration from path, or from the default search paths
// when path is empty. A missing file in the search paths is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/email-triage/")
		v.AddConfigPath("$HOME/.email-triage")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	// Classifier
	v.SetDefault("classifier.ai_fallback_confidence", 0.70)
	v.SetDefault("classifier.base_confidence", 0.70)
	v.SetDefault("classifier.max_confidence", 0.95)

	// Pattern catalog extensions, keyed by set or group name
	v.SetDefault("patterns.extra_keywords", map[string][]string{})
	v.SetDefault("patterns.extra_patterns", map[string][]string{})

	// AI fallback
	v.SetDefault("fallback.enabled", true)
	v.SetDefault("fallback.models", []string{"gemini", "openai"})
	v.SetDefault("fallback.timeout", "15s")
	v.SetDefault("fallback.breaker_failures", 3)
	v.SetDefault("fallback.breaker_cooldown", "1m")

	// Gemini
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 200)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)

	// OpenAI
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 200)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)

	// Bedrock
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 200)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)

	// Result cache
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/triage_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/email_triage")

	// Analytics
	v.SetDefault("analytics.type", "log")
	v.SetDefault("analytics.sqlite_path", "/data/triage_analytics.db")
	v.SetDefault("analytics.mysql_dsn", "user:password@tcp(localhost:3306)/email_triage")
	v.SetDefault("analytics.timeout", "5s")
	v.SetDefault("analytics.internal_domains", []string{})

	// Batch
	v.SetDefault("batch.chunk_size", 10)
	v.SetDefault("batch.collect_garbage", true)

	// SMTP intake
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.domain", "localhost")
	v.SetDefault("server.reject_spam", false)
	v.SetDefault("server.relay_enabled", true)
	v.SetDefault("server.relay_address", "127.0.0.1")
	v.SetDefault("server.relay_port", 10026)
	v.SetDefault("server.timeout", "30s")
	v.SetDefault("server.headers.category", "X-Email-Category")
	v.SetDefault("server.headers.subcategory", "X-Email-Subcategory")
	v.SetDefault("server.headers.tone", "X-Email-Tone")
	v.SetDefault("server.headers.urgency", "X-Email-Urgency")
	v.SetDefault("server.headers.confidence", "X-Email-Confidence")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_address", "0.0.0.0:9090")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetStringMapStringSlice gets a map of string slices from the configuration
func (c *Config) GetStringMapStringSlice(key string) map[string][]string {
	return c.v.GetStringMapStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

// Set overrides a value, mainly for command-line flags
func (c *Config) Set(key string, value any) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
