package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/rewired-gh/polysteamroller/internal/models"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. STEAMROLLER_POLYMARKET_TIMEOUT.
const EnvPrefix = "STEAMROLLER"

// Config represents the complete application configuration
type Config struct {
	Polymarket PolymarketConfig `mapstructure:"polymarket"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// PolymarketConfig holds Gamma API client configuration
type PolymarketConfig struct {
	GammaAPIURL     string        `mapstructure:"gamma_api_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RetryDelayBase  time.Duration `mapstructure:"retry_delay_base"`
	SearchLimit     int           `mapstructure:"search_limit"`
	UserAgent       string        `mapstructure:"user_agent"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout"`
}

// AnalysisConfig controls how reports are shaped
type AnalysisConfig struct {
	MaxMarkets        int  `mapstructure:"max_markets"`
	PreferOpenMarkets bool `mapstructure:"prefer_open_markets"`
}

// TelegramConfig holds Telegram notification configuration
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MinRisk        string        `mapstructure:"min_risk"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// ServerConfig holds HTTP host configuration
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables. An empty
// path or a missing file leaves defaults and environment overrides in effect.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	// Polymarket defaults
	v.SetDefault("polymarket.gamma_api_url", "https://gamma-api.polymarket.com")
	v.SetDefault("polymarket.timeout", "5s")
	v.SetDefault("polymarket.max_attempts", 1)
	v.SetDefault("polymarket.retry_delay_base", "500ms")
	v.SetDefault("polymarket.search_limit", 5)
	v.SetDefault("polymarket.user_agent", "polysteamroller/1.0")
	v.SetDefault("polymarket.max_idle_conns", 10)
	v.SetDefault("polymarket.idle_conn_timeout", "90s")

	// Analysis defaults
	v.SetDefault("analysis.max_markets", 3)
	v.SetDefault("analysis.prefer_open_markets", true)

	// Telegram defaults
	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", "")
	v.SetDefault("telegram.min_risk", "high")
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	// Server defaults
	v.SetDefault("server.addr", ":5001")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	// Validate Polymarket config
	if c.Polymarket.GammaAPIURL == "" {
		return fmt.Errorf("polymarket.gamma_api_url is required")
	}
	if c.Polymarket.Timeout < time.Second || c.Polymarket.Timeout > time.Minute {
		return fmt.Errorf("polymarket.timeout must be between 1s and 60s")
	}
	if c.Polymarket.MaxAttempts < 1 {
		return fmt.Errorf("polymarket.max_attempts must be at least 1")
	}
	if c.Polymarket.RetryDelayBase < 0 {
		return fmt.Errorf("polymarket.retry_delay_base must not be negative")
	}
	if c.Polymarket.SearchLimit < 1 {
		return fmt.Errorf("polymarket.search_limit must be at least 1")
	}

	// Validate Analysis config
	if c.Analysis.MaxMarkets < 1 {
		return fmt.Errorf("analysis.max_markets must be at least 1")
	}

	// Validate Telegram config
	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
		minRisk, err := models.ParseRiskLabel(c.Telegram.MinRisk)
		if err != nil || minRisk == models.RiskLow {
			return fmt.Errorf("telegram.min_risk must be one of: medium, high")
		}
	}

	// Validate Server config
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	validModes := map[string]bool{"debug": true, "release": true, "test": true}
	if !validModes[c.Server.Mode] {
		return fmt.Errorf("server.mode must be one of: debug, release, test")
	}
	for _, origin := range c.Server.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("server.allowed_origins entry %q must be * or an http(s) origin", origin)
		}
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
