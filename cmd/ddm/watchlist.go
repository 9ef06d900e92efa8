package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/ddm/internal/logger"
	"github.com/newthinker/ddm/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Print the value of stock of every watchlist symbol",
	Long:  "Value every symbol of the configured watchlist in value-only mode and print one row per symbol.",
	Args:  cobra.NoArgs,
	RunE:  runWatchlist,
}

func init() {
	rootCmd.AddCommand(watchlistCmd)
}

func runWatchlist(cmd *cobra.Command, args []string) error {
	log := logger.MustCLI(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if len(cfg.Watchlist) == 0 {
		return fmt.Errorf("watchlist is empty; add symbols under watchlist in the config file")
	}

	a, _, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reports := a.ValueWatchlist(ctx)
	log.Debug("watchlist valued", zap.Int("symbols", len(reports)))
	return report.WriteValues(cmd.OutOrStdout(), reports)
}
