package main

import (
	"context"
	"fmt"
	"time"

	"github.com/newthinker/ddm/internal/collector/fmp"
	"github.com/newthinker/ddm/internal/logger"
	"github.com/newthinker/ddm/internal/storage/archive"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch SYMBOL [SYMBOL...]",
	Short: "Download snapshots into the archive",
	Long: `Fetch fundamentals from Financial Modeling Prep and store them in the
archive so later valuations can run offline with source "archive".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	log := logger.MustCLI(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if cfg.Collector.FMP.APIKey == "" {
		return fmt.Errorf("collector.fmp.api_key is required to fetch snapshots")
	}

	store, err := archive.Open(cfg.Storage.Archive())
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	ar := archive.New(store)
	f := fmp.New(cfg.Collector.FMP.APIKey, fmp.WithLogger(log.Named("fmp")))
	if err := f.Init(cfg.Collector.FMP.Collector()); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	for _, symbol := range args {
		start := time.Now()
		snap, err := f.FetchSnapshot(ctx, symbol)
		if err != nil {
			return fmt.Errorf("fetching %s: %w", symbol, err)
		}
		if err := ar.SaveSnapshot(ctx, snap); err != nil {
			return fmt.Errorf("archiving %s: %w", symbol, err)
		}
		log.Debug("snapshot archived", zap.String("symbol", snap.Symbol), zap.Duration("duration", time.Since(start)))
		fmt.Fprintf(out, "%s\t%d annual periods\n", snap.Symbol, len(snap.Income))
	}
	return nil
}
