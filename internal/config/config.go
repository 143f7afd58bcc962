package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/osloquant/fjord/internal/core"
)

type Config struct {
	Data       DataConfig                `mapstructure:"data"`
	Backtest   BacktestConfig            `mapstructure:"backtest"`
	Brokerage  BrokerageConfig           `mapstructure:"brokerage"`
	Strategies map[string]StrategyConfig `mapstructure:"strategies"`
	Archive    ArchiveConfig             `mapstructure:"archive"`
	Metrics    MetricsConfig             `mapstructure:"metrics"`
}

// DataConfig locates the ingested market data.
type DataConfig struct {
	Dir string `mapstructure:"dir"` // directory of <TICKER>.sdv files
}

// BacktestConfig holds run defaults; flags override them.
type BacktestConfig struct {
	InitialCash float64 `mapstructure:"initial_cash"`
	From        string  `mapstructure:"from"` // YYYY-MM-DD
	To          string  `mapstructure:"to"`   // YYYY-MM-DD
}

// BrokerageConfig describes the commission schedule applied on fills.
type BrokerageConfig struct {
	Minimum float64 `mapstructure:"minimum"`
	Rate    float64 `mapstructure:"rate"`
}

// StrategyConfig holds per-strategy parameters.
type StrategyConfig struct {
	Enabled bool           `mapstructure:"enabled"`
	Params  map[string]any `mapstructure:"params"`
}

// ArchiveConfig selects where run artifacts are persisted.
type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
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
	Addr    string `mapstructure:"addr"`
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
		Data: DataConfig{
			Dir: "data",
		},
		Backtest: BacktestConfig{
			InitialCash: 100000,
		},
		Brokerage: BrokerageConfig{
			Minimum: 29,
			Rate:    0.0005,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "runs",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9185",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("data.dir is required"))
	}
	if c.Backtest.InitialCash <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("backtest.initial_cash must be positive, got %f", c.Backtest.InitialCash))
	}
	if c.Brokerage.Minimum < 0 || c.Brokerage.Rate < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("brokerage fees cannot be negative: minimum=%f rate=%f",
				c.Brokerage.Minimum, c.Brokerage.Rate))
	}
	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("archive.path is required for localfs"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("archive.s3.bucket is required"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("archive.type must be localfs or s3, got %q", c.Archive.Type))
		}
	}
	return nil
}
