package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newthinker/ddm/internal/api"
	"github.com/newthinker/ddm/internal/logger"
	"github.com/newthinker/ddm/internal/metrics"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveRefresh time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the DDM server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveRefresh, "refresh", time.Hour, "watchlist refresh interval (overrides server.refresh_interval)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Initialize logger
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("refresh") {
		if serveRefresh <= 0 {
			return fmt.Errorf("refresh interval must be positive")
		}
		cfg.Server.RefreshInterval = serveRefresh
	}

	a, ar, err := buildApp(cfg, log)
	if err != nil {
		return err
	}
	a.SetInterval(cfg.Server.RefreshInterval)

	var reg *metrics.Registry
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		a.SetMetrics(reg)
	}

	log.Info("starting DDM server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("source", cfg.Collector.Source),
	)

	server, err := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: cfg.Metrics.Path,
	}, api.Dependencies{App: a, Archive: ar, Metrics: reg}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Refresh watchlist values in the background
	go func() {
		var err error
		if cfg.Server.RefreshSchedule != "" {
			err = a.StartSchedule(ctx, cfg.Server.RefreshSchedule)
		} else {
			err = a.Start(ctx)
		}
		if err != nil && err != context.Canceled {
			log.Error("watchlist refresh stopped", zap.Error(err))
		}
	}()

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down DDM server")
	a.Stop()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	return server.Shutdown(shutdownCtx)
}
