package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Supported oracle providers.
const (
	ProviderGemini    = "gemini"
	ProviderGenAI     = "genai"
	ProviderAnthropic = "anthropic"
)

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr                string `mapstructure:"addr" yaml:"addr"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	MaxBodyBytes        int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	AllowedOrigin       string `mapstructure:"allowed_origin" yaml:"allowed_origin"`
}

// AIConfig holds settings for the text-completion backend.
type AIConfig struct {
	Provider          string `mapstructure:"provider" yaml:"provider"`
	Model             string `mapstructure:"model" yaml:"model"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxTokens         int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	APIKey            string `mapstructure:"api_key" yaml:"-"` // Never serialize API key
	AnthropicAPIKey   string `mapstructure:"anthropic_api_key" yaml:"-"`
}

// CategoriesConfig points at an optional YAML rule file overriding the built-in keyword rules.
type CategoriesConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// ChatConfig holds conversation replay settings.
type ChatConfig struct {
	DropLocalTurns bool `mapstructure:"drop_local_turns" yaml:"drop_local_turns"`
}

// CSVConfig holds settings for categorized transaction exports.
type CSVConfig struct {
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Config represents the complete application configuration
type Config struct {
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server"`
	AI         AIConfig         `mapstructure:"ai" yaml:"ai"`
	Categories CategoriesConfig `mapstructure:"categories" yaml:"categories"`
	Chat       ChatConfig       `mapstructure:"chat" yaml:"chat"`
	CSV        CSVConfig        `mapstructure:"csv" yaml:"csv"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then config.yaml, then COACH_* environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.spending-coach")
	v.AddConfigPath(".spending-coach")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file %s: %w", v.ConfigFileUsed(), err)
		}
	}

	// API keys come from their conventional, unprefixed variables
	if err := v.BindEnv("ai.api_key", "COACH_AI_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("ai.anthropic_api_key", "COACH_AI_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ANTHROPIC_API_KEY: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Defaults returns a Config populated with default values only.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Unmarshal of plain defaults cannot fail.
	_ = v.Unmarshal(&config)
	return &config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 120)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.allowed_origin", "*")

	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.requests_per_minute", 10)
	v.SetDefault("ai.timeout_seconds", 60)
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.anthropic_api_key", "")

	v.SetDefault("categories.file", "")
	v.SetDefault("chat.drop_local_turns", false)
	v.SetDefault("csv.delimiter", ",")
}

func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.AI.Provider {
	case ProviderGemini, ProviderGenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unsupported ai.provider: %s (must be one of gemini, genai, anthropic)", config.AI.Provider)
	}

	if strings.TrimSpace(config.AI.Model) == "" {
		return fmt.Errorf("ai.model must not be empty")
	}

	if config.AI.RequestsPerMinute < 1 || config.AI.RequestsPerMinute > 1000 {
		return fmt.Errorf("ai.requests_per_minute must be between 1 and 1000, got: %d", config.AI.RequestsPerMinute)
	}

	if config.AI.TimeoutSeconds < 1 || config.AI.TimeoutSeconds > 300 {
		return fmt.Errorf("ai.timeout_seconds must be between 1 and 300, got: %d", config.AI.TimeoutSeconds)
	}

	if config.AI.MaxTokens < 1 {
		return fmt.Errorf("ai.max_tokens must be positive, got: %d", config.AI.MaxTokens)
	}

	if config.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("server.max_body_bytes must be positive, got: %d", config.Server.MaxBodyBytes)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.CSV.Delimiter)
	}

	return nil
}

// ActiveAPIKey returns the key for the configured provider.
func (c *Config) ActiveAPIKey() string {
	if c.AI.Provider == ProviderAnthropic {
		return c.AI.AnthropicAPIKey
	}
	return c.AI.APIKey
}
