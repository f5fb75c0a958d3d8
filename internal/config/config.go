// Package config loads the service configuration with viper: built-in
// defaults, then an optional config file, then MEALPLANNER_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"mealplanner/internal/logger"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Sessions SessionsConfig `mapstructure:"sessions"`
	Redis    RedisConfig    `mapstructure:"redis"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Log      logger.Config  `mapstructure:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains PostgreSQL settings.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// SessionsConfig selects the session backend.
type SessionsConfig struct {
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// RedisConfig contains Redis settings for the redis session backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LLMConfig selects and configures the generative-text collaborator.
type LLMConfig struct {
	Provider     string        `mapstructure:"provider"`
	GeminiAPIKey string        `mapstructure:"gemini_api_key"`
	OpenAIAPIKey string        `mapstructure:"openai_api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	Model        string        `mapstructure:"model"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RatePerMin   float64       `mapstructure:"rate_per_min"`
	Burst        int           `mapstructure:"burst"`
}

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"

	ProviderNone   = "none"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Load reads the configuration. configPath may be empty, in which case a
// file named config.{json,yaml,toml} is looked up in the working directory
// and ./config; a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("MEALPLANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.request_timeout", "5s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("sessions.backend", BackendPostgres)
	v.SetDefault("sessions.ttl", "24h")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("llm.provider", ProviderNone)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.openai_api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", "45s")
	v.SetDefault("llm.rate_per_min", 10)
	v.SetDefault("llm.burst", 3)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.development", false)
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	switch c.Sessions.Backend {
	case BackendPostgres, BackendMemory:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown sessions.backend %q", c.Sessions.Backend)
	}
	switch c.LLM.Provider {
	case ProviderNone:
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			return errors.New("llm.gemini_api_key is required for the gemini provider")
		}
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" && c.LLM.BaseURL == "" {
			return errors.New("llm.openai_api_key or llm.base_url is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.Server.RequestTimeout <= 0 {
		return errors.New("server.request_timeout must be positive")
	}
	return nil
}
