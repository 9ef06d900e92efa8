package main

import (
	"fmt"

	"github.com/newthinker/ddm/internal/app"
	"github.com/newthinker/ddm/internal/collector/archived"
	"github.com/newthinker/ddm/internal/collector/fmp"
	"github.com/newthinker/ddm/internal/config"
	"github.com/newthinker/ddm/internal/storage/archive"
	"go.uber.org/zap"
)

// loadConfig reads --env-file and --config, or falls back to the defaults
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if err := config.LoadEnv(envFile); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Debug("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildApp wires the archive and both collectors into an app. The FMP
// collector is only registered when an API key is configured.
func buildApp(cfg *config.Config, log *zap.Logger) (*app.App, *archive.Archive, error) {
	a, err := app.New(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("creating app: %w", err)
	}

	store, err := archive.Open(cfg.Storage.Archive())
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	ar := archive.New(store)
	a.SetArchive(ar)
	a.RegisterCollector(archived.New(ar))

	if cfg.Collector.FMP.APIKey != "" {
		f := fmp.New(cfg.Collector.FMP.APIKey, fmp.WithLogger(log.Named("fmp")))
		if err := f.Init(cfg.Collector.FMP.Collector()); err != nil {
			return nil, nil, fmt.Errorf("initializing fmp collector: %w", err)
		}
		a.RegisterCollector(f)
	}

	log.Debug("app ready",
		zap.String("source", cfg.Collector.Source),
		zap.String("storage", cfg.Storage.Type),
	)
	return a, ar, nil
}
