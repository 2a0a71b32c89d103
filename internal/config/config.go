package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/diekoffieblik/brewcast/internal/history"
)

// Config represents the complete application configuration
type Config struct {
	Weather  WeatherConfig  `mapstructure:"weather"`
	History  HistoryConfig  `mapstructure:"history"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// WeatherConfig holds the weather provider and classification thresholds.
// HotThreshold and ColdThreshold are inclusive; CoolThreshold is the upper
// (inclusive) edge of the comfort sub-range above ColdThreshold.
type WeatherConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
	HotThreshold   float64       `mapstructure:"hot_threshold"`
	ColdThreshold  float64       `mapstructure:"cold_threshold"`
	CoolThreshold  float64       `mapstructure:"cool_threshold"`
	ClearSkyWarm   float64       `mapstructure:"clear_sky_warm"`
}

// HistoryConfig holds the time-of-day bucket boundaries (start hours).
type HistoryConfig struct {
	MorningStart   int `mapstructure:"morning_start"`
	AfternoonStart int `mapstructure:"afternoon_start"`
	EveningStart   int `mapstructure:"evening_start"`
	NightStart     int `mapstructure:"night_start"`
}

// ScoringConfig selects the scoring strategy
type ScoringConfig struct {
	Strategy       string `mapstructure:"strategy"`
	MaxSuggestions int    `mapstructure:"max_suggestions"`
}

// StorageConfig holds the order-history database location
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ServerConfig holds HTTP API configuration
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Boundaries returns the configured time-of-day buckets
func (h HistoryConfig) Boundaries() history.Boundaries {
	return history.Boundaries{
		MorningStart:   h.MorningStart,
		AfternoonStart: h.AfternoonStart,
		EveningStart:   h.EveningStart,
		NightStart:     h.NightStart,
	}
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Enable environment variable override
	v.SetEnvPrefix("BREWCAST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	return &cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Weather defaults
	v.SetDefault("weather.api_base_url", "https://api.open-meteo.com/v1")
	v.SetDefault("weather.timeout", "10s")
	v.SetDefault("weather.max_retries", 2)
	v.SetDefault("weather.retry_delay_base", "500ms")
	v.SetDefault("weather.hot_threshold", 25.0)
	v.SetDefault("weather.cold_threshold", 10.0)
	v.SetDefault("weather.cool_threshold", 15.0)
	v.SetDefault("weather.clear_sky_warm", 20.0)

	// History defaults
	v.SetDefault("history.morning_start", 5)
	v.SetDefault("history.afternoon_start", 12)
	v.SetDefault("history.evening_start", 17)
	v.SetDefault("history.night_start", 21)

	// Scoring defaults
	v.SetDefault("scoring.strategy", "weighted")
	v.SetDefault("scoring.max_suggestions", 3)

	// Storage defaults
	v.SetDefault("storage.db_path", "")

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Server defaults
	v.SetDefault("server.listen_addr", ":8080")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// normalize lowercases the enumerated values so they match what the
// strategy and logger constructors accept
func (c *Config) normalize() {
	c.Scoring.Strategy = strings.ToLower(strings.TrimSpace(c.Scoring.Strategy))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Weather config
	if c.Weather.APIBaseURL == "" {
		return fmt.Errorf("weather.api_base_url is required")
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather.timeout must be positive")
	}
	if c.Weather.MaxRetries < 1 {
		return fmt.Errorf("weather.max_retries must be at least 1")
	}
	if c.Weather.ColdThreshold >= c.Weather.CoolThreshold {
		return fmt.Errorf("weather.cold_threshold must be below weather.cool_threshold")
	}
	if c.Weather.CoolThreshold > c.Weather.HotThreshold {
		return fmt.Errorf("weather.cool_threshold must not exceed weather.hot_threshold")
	}

	// Validate History config
	if err := c.History.Boundaries().Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}

	// Validate Scoring config
	validStrategies := map[string]bool{"weighted": true, "cascade": true}
	if !validStrategies[c.Scoring.Strategy] {
		return fmt.Errorf("scoring.strategy must be one of: weighted, cascade")
	}
	if c.Scoring.MaxSuggestions < 1 {
		return fmt.Errorf("scoring.max_suggestions must be at least 1")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	// Validate Server config
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}

	// Validate Logging config
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	return nil
}
