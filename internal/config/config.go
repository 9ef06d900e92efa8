package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/newthinker/ddm/internal/collector"
	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/storage/archive"
	"github.com/newthinker/ddm/internal/valuation"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Collector sources
const (
	SourceFMP     = "fmp"
	SourceArchive = "archive"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Model       ModelConfig       `mapstructure:"model"`
	Assumptions AssumptionsConfig `mapstructure:"assumptions"`
	Collector   CollectorConfig   `mapstructure:"collector"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Watchlist   []WatchlistItem   `mapstructure:"watchlist"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	APIKey          string        `mapstructure:"api_key"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"` // watchlist refresh period
	RefreshSchedule string        `mapstructure:"refresh_schedule"` // cron spec; replaces the interval when set
}

// ModelConfig holds the settings that are fixed for every run
type ModelConfig struct {
	Variant                string  `mapstructure:"variant"`         // "classic" or "revised"
	CurrencyPolicy         string  `mapstructure:"currency_policy"` // "warn", "abort" or empty for the variant default
	MarketPremium          float64 `mapstructure:"market_premium"`  // fraction, 0 for the variant default
	LinearRegressionWeight float64 `mapstructure:"linear_regression_weight"`
	ChartProjectionYears   int     `mapstructure:"chart_projection_years"`
	MaxHistoricYears       int     `mapstructure:"max_historic_years"`
	PreferredSensitivity   float64 `mapstructure:"preferred_sensitivity"`
}

// AssumptionsConfig pins assumptions for every run; unset fields are derived
// from the data.
type AssumptionsConfig struct {
	DiscountRate           *float64 `mapstructure:"discount_rate"`
	ExpectedDividend       *float64 `mapstructure:"expected_dividend"`
	GrowthInPerpetuity     *float64 `mapstructure:"growth_in_perpetuity"`
	LinearRegressionWeight *float64 `mapstructure:"linear_regression_weight"`
	Beta                   *float64 `mapstructure:"beta"`
	RiskFreeRate           *float64 `mapstructure:"risk_free_rate"`
	MarketPremium          *float64 `mapstructure:"market_premium"`
	HistoricYears          *int     `mapstructure:"historic_years"`
}

type CollectorConfig struct {
	Source           string    `mapstructure:"source"` // "fmp" or "archive"
	ArchiveSnapshots bool      `mapstructure:"archive_snapshots"`
	FMP              FMPConfig `mapstructure:"fmp"`
}

type FMPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	RateLimit int           `mapstructure:"rate_limit"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Type           string   `mapstructure:"type"` // "localfs" or "s3"
	Path           string   `mapstructure:"path"` // For localfs
	S3             S3Config `mapstructure:"s3"`   // For S3
	ArchiveReports bool     `mapstructure:"archive_reports"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type WatchlistItem struct {
	Symbol string `mapstructure:"symbol"`
	Name   string `mapstructure:"name"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadEnv loads KEY=value files into the process environment so ${VAR}
// references in the config file can use them. Missing files are skipped and
// variables already set are kept.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from file on top of Defaults
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
	model := valuation.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			RefreshInterval: time.Hour,
		},
		Model: ModelConfig{
			Variant:                string(model.Variant),
			LinearRegressionWeight: model.LinearRegressionWeight,
			ChartProjectionYears:   model.ChartProjectionYears,
			MaxHistoricYears:       model.MaxHistoricYears,
			PreferredSensitivity:   model.PreferredSensitivity,
		},
		Collector: CollectorConfig{
			Source: SourceArchive,
			FMP: FMPConfig{
				RateLimit: 10,
				Timeout:   30 * time.Second,
			},
		},
		Storage: StorageConfig{
			Type: archive.BackendLocalFS,
			Path: "data",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Valuation converts the model section
func (m ModelConfig) Valuation() (valuation.Config, error) {
	variant, err := valuation.ParseVariant(m.Variant)
	if err != nil {
		return valuation.Config{}, err
	}
	policy, err := valuation.ParseCurrencyPolicy(m.CurrencyPolicy)
	if err != nil {
		return valuation.Config{}, err
	}
	cfg := valuation.Config{
		Variant:                variant,
		CurrencyPolicy:         policy,
		MarketPremium:          m.MarketPremium,
		LinearRegressionWeight: m.LinearRegressionWeight,
		ChartProjectionYears:   m.ChartProjectionYears,
		MaxHistoricYears:       m.MaxHistoricYears,
		PreferredSensitivity:   m.PreferredSensitivity,
	}
	return cfg, cfg.Validate()
}

// Overrides converts the assumptions section
func (a AssumptionsConfig) Overrides() valuation.Overrides {
	return valuation.Overrides{
		DiscountRate:           a.DiscountRate,
		ExpectedDividend:       a.ExpectedDividend,
		GrowthInPerpetuity:     a.GrowthInPerpetuity,
		LinearRegressionWeight: a.LinearRegressionWeight,
		Beta:                   a.Beta,
		RiskFreeRate:           a.RiskFreeRate,
		MarketPremium:          a.MarketPremium,
		HistoricYears:          a.HistoricYears,
	}
}

// Collector converts the fmp section
func (f FMPConfig) Collector() collector.Config {
	return collector.Config{
		Enabled:   true,
		BaseURL:   f.BaseURL,
		APIKey:    f.APIKey,
		RateLimit: f.RateLimit,
		Timeout:   f.Timeout,
	}
}

// Archive converts the storage section
func (s StorageConfig) Archive() archive.Config {
	return archive.Config{
		Backend: s.Type,
		Path:    s.Path,
		S3: archive.S3Config{
			Bucket:    s.S3.Bucket,
			Endpoint:  s.S3.Endpoint,
			Region:    s.S3.Region,
			AccessKey: s.S3.AccessKey,
			SecretKey: s.S3.SecretKey,
			Prefix:    s.S3.Prefix,
		},
	}
}

// Symbols returns the watchlist symbols in order
func (c *Config) Symbols() []string {
	symbols := make([]string, 0, len(c.Watchlist))
	for _, item := range c.Watchlist {
		symbols = append(symbols, item.Symbol)
	}
	return symbols
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if c.Server.RefreshInterval <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("server.refresh_interval must be positive, got %s", c.Server.RefreshInterval))
	}
	if c.Server.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Server.RefreshSchedule); err != nil {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("server.refresh_schedule: %w", err))
		}
	}

	if _, err := c.Model.Valuation(); err != nil {
		return err
	}

	// Collector validation
	switch c.Collector.Source {
	case SourceFMP:
		if c.Collector.FMP.APIKey == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("collector.fmp.api_key required when source is fmp"))
		}
		if c.Collector.FMP.RateLimit < 1 {
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("collector.fmp.rate_limit must be positive, got %d", c.Collector.FMP.RateLimit))
		}
	case SourceArchive:
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("collector.source must be fmp or archive, got %q", c.Collector.Source))
	}

	// Storage validation
	switch c.Storage.Type {
	case archive.BackendLocalFS:
		if c.Storage.Path == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("storage.path required for localfs"))
		}
	case archive.BackendS3:
		if c.Storage.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing, fmt.Errorf("storage.s3.bucket required for s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("storage.type must be localfs or s3, got %q", c.Storage.Type))
	}

	for i, item := range c.Watchlist {
		if _, err := collector.NormalizeSymbol(item.Symbol); err != nil {
			return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("watchlist[%d]: %w", i, err))
		}
	}

	return nil
}
