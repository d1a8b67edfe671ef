// Package config provides configuration management for the brokerage
// simulator.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Trading TradingConfig `mapstructure:"trading"`
	Fees    FeesConfig    `mapstructure:"fees"`
	OTP     OTPConfig     `mapstructure:"otp"`
	Orders  OrdersConfig  `mapstructure:"orders"`
	Pricing PricingConfig `mapstructure:"pricing"`
	Logging LoggingConfig `mapstructure:"logging"`
	Storage StorageConfig `mapstructure:"storage"`
	UI      UIConfig      `mapstructure:"ui"`
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	DefaultExchange string  `mapstructure:"default_exchange"` // NSE, BSE
	OpeningBalance  float64 `mapstructure:"opening_balance"`
}

// FeesConfig holds the withdrawal fee schedule.
type FeesConfig struct {
	WithdrawFlat      float64 `mapstructure:"withdraw_flat"`
	WithdrawThreshold float64 `mapstructure:"withdraw_threshold"`
}

// OTPConfig holds OTP gate configuration.
type OTPConfig struct {
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// OrdersConfig holds order router configuration.
type OrdersConfig struct {
	RecordRejected bool `mapstructure:"record_rejected"`
}

// PricingConfig holds simulated pricing configuration.
type PricingConfig struct {
	JitterPercent float64 `mapstructure:"jitter_percent"`
	Seed          int64   `mapstructure:"seed"` // 0 seeds from time
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Console    bool   `mapstructure:"console"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// UIConfig holds terminal output configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled"`
	DateFormat   string `mapstructure:"date_format"`
	TimeFormat   string `mapstructure:"time_format"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradedesk"
	}
	return filepath.Join(home, ".config", "tradedesk")
}

// Load loads configuration from the specified directory. If configDir is
// empty, the default config directory is used. A missing config file is
// not an error: a template is written and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return nil, err
			}
		} else {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("trading.default_exchange", "NSE")
	v.SetDefault("trading.opening_balance", 100000.0)
	v.SetDefault("fees.withdraw_flat", 10.0)
	v.SetDefault("fees.withdraw_threshold", 5000.0)
	v.SetDefault("otp.ttl_seconds", 300)
	v.SetDefault("orders.record_rejected", false)
	v.SetDefault("pricing.jitter_percent", 2.0)
	v.SetDefault("pricing.seed", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", filepath.Join(configDir, "logs", "tradedesk.log"))
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.console", true)
	v.SetDefault("storage.db_path", filepath.Join(configDir, "tradedesk.db"))
	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.date_format", "02-Jan-2006")
	v.SetDefault("ui.time_format", "15:04:05")
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADEDESK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("TRADEDESK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRADEDESK_DEFAULT_EXCHANGE"); v != "" {
		cfg.Trading.DefaultExchange = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Trading.DefaultExchange != "NSE" && c.Trading.DefaultExchange != "BSE" {
		return fmt.Errorf("invalid default exchange: %s (must be 'NSE' or 'BSE')", c.Trading.DefaultExchange)
	}
	if c.Trading.OpeningBalance < 0 {
		return fmt.Errorf("opening_balance must be non-negative")
	}
	if c.Fees.WithdrawFlat < 0 {
		return fmt.Errorf("withdraw_flat must be non-negative")
	}
	if c.Fees.WithdrawThreshold < 0 {
		return fmt.Errorf("withdraw_threshold must be non-negative")
	}
	if c.OTP.TTLSeconds <= 0 {
		return fmt.Errorf("otp ttl_seconds must be positive")
	}
	if c.Pricing.JitterPercent < 0 || c.Pricing.JitterPercent > 50 {
		return fmt.Errorf("jitter_percent must be between 0 and 50")
	}
	return nil
}
