package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/newthinker/ddm/internal/logger"
	"github.com/newthinker/ddm/internal/report"
	"github.com/newthinker/ddm/internal/valuation"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	valueWatch  bool
	valueJSON   bool
	valueSource string
)

var valueCmd = &cobra.Command{
	Use:   "value SYMBOL [SYMBOL...]",
	Short: "Value stocks with the dividend discount model",
	Long: `Fetch fundamentals for each symbol, resolve the model assumptions and
print the estimated value of stock with its supporting figures.
Assumption flags override the values derived from the data.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValue,
}

func init() {
	f := valueCmd.Flags()
	f.Float64("discount-rate", 0, "discount rate in percent")
	f.Float64("expected-dividend", 0, "next year's expected dividend")
	f.Float64("growth-in-perpetuity", 0, "growth in perpetuity (fraction)")
	f.Float64("linear-regression-weight", 0, "weight of the regression dividend, 0-100")
	f.Float64("beta", 0, "beta")
	f.Float64("risk-free-rate", 0, "risk free rate (fraction)")
	f.Float64("market-premium", 0, "market premium (fraction)")
	f.Int("historic-years", 0, "number of historic years to use")
	f.BoolVar(&valueWatch, "watch", false, "print the value of stock only")
	f.BoolVar(&valueJSON, "json", false, "print reports as JSON")
	f.StringVar(&valueSource, "source", "", "collector to fetch from (fmp or archive)")

	rootCmd.AddCommand(valueCmd)
}

// overridesFromFlags returns the assumptions set on the command line
func overridesFromFlags(flags *pflag.FlagSet) (valuation.Overrides, error) {
	var o valuation.Overrides
	floats := []struct {
		name string
		dst  **float64
	}{
		{"discount-rate", &o.DiscountRate},
		{"expected-dividend", &o.ExpectedDividend},
		{"growth-in-perpetuity", &o.GrowthInPerpetuity},
		{"linear-regression-weight", &o.LinearRegressionWeight},
		{"beta", &o.Beta},
		{"risk-free-rate", &o.RiskFreeRate},
		{"market-premium", &o.MarketPremium},
	}
	for _, fl := range floats {
		if !flags.Changed(fl.name) {
			continue
		}
		v, err := flags.GetFloat64(fl.name)
		if err != nil {
			return o, err
		}
		*fl.dst = &v
	}
	if flags.Changed("historic-years") {
		n, err := flags.GetInt("historic-years")
		if err != nil {
			return o, err
		}
		o.HistoricYears = &n
	}
	return o, nil
}

func runValue(cmd *cobra.Command, args []string) error {
	log := logger.MustCLI(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	if valueSource != "" {
		cfg.Collector.Source = valueSource
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	o, err := overridesFromFlags(cmd.Flags())
	if err != nil {
		return err
	}

	a, _, err := buildApp(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := valuation.Options{WatchOnly: valueWatch}
	reports := make([]*report.Report, 0, len(args))
	failed := 0
	for _, symbol := range args {
		r, err := a.Value(ctx, symbol, o, opts)
		if err != nil {
			failed++
		}
		reports = append(reports, r)
	}

	if err := printReports(out, reports); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d valuations failed", failed, len(args))
	}
	return nil
}

func printReports(out io.Writer, reports []*report.Report) error {
	if valueJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}
	if valueWatch {
		return report.WriteValues(out, reports)
	}
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := report.WriteText(out, r); err != nil {
			return err
		}
	}
	return nil
}
