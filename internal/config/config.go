package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"github.com/vantagelabs/vantage/internal/core"
)

type Config struct {
	Server     ServerConfig               `mapstructure:"server"`
	Watchlist  []WatchlistItem            `mapstructure:"watchlist"`
	Backtest   BacktestConfig             `mapstructure:"backtest"`
	Collectors map[string]CollectorConfig `mapstructure:"collectors"`
	Notifiers  map[string]NotifierConfig  `mapstructure:"notifiers"`
	LLM        LLMConfig                  `mapstructure:"llm"`
	Archive    ArchiveConfig              `mapstructure:"archive"`
	Metrics    MetricsConfig              `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
}

type WatchlistItem struct {
	Symbol string `mapstructure:"symbol"`
	Name   string `mapstructure:"name"`
}

// BacktestConfig holds the walk-forward simulation parameters.
type BacktestConfig struct {
	LookbackDays int     `mapstructure:"lookback_days"`
	TargetDTE    int     `mapstructure:"target_dte"`
	MaxHoldDays  int     `mapstructure:"max_hold_days"`
	RiskFreeRate float64 `mapstructure:"risk_free_rate"`
}

type CollectorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

type NotifierConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Email notifier fields
	Host     string   `mapstructure:"host"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password string   `mapstructure:"password"`
	From     string   `mapstructure:"from"`
	To       []string `mapstructure:"to"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// ArchiveConfig holds report archive settings.
type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Backtest: BacktestConfig{
			LookbackDays: 252,
			TargetDTE:    30,
			MaxHoldDays:  30,
			RiskFreeRate: 0.05,
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "reports",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Backtest.LookbackDays < 60 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("lookback_days must be at least 60, got %d", c.Backtest.LookbackDays))
	}
	if c.Backtest.TargetDTE < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("target_dte must be positive, got %d", c.Backtest.TargetDTE))
	}
	if c.Backtest.MaxHoldDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_hold_days must be positive, got %d", c.Backtest.MaxHoldDays))
	}
	if c.Backtest.RiskFreeRate < 0 || c.Backtest.RiskFreeRate > 0.25 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("risk_free_rate out of range: %f", c.Backtest.RiskFreeRate))
	}

	for i, item := range c.Watchlist {
		if item.Symbol == "" {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("watchlist entry %d has no symbol", i))
		}
	}

	switch c.Archive.Type {
	case "", "localfs":
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Archive.Type))
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
		}
	}

	for name, n := range c.Notifiers {
		if !n.Enabled {
			continue
		}
		if name == "email" && (n.Host == "" || n.From == "" || len(n.To) == 0) {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("email notifier requires host, from and to"))
		}
	}

	return nil
}
