package valuation

import (
	"fmt"
	"math"

	"github.com/newthinker/ddm/internal/core"
	"go.uber.org/zap"
)

// Options controls a single run
type Options struct {
	// WatchOnly stops right after the value of stock is known; no tables,
	// chart or diagnostics are produced.
	WatchOnly bool
}

// Result is the typed outcome of a run
type Result struct {
	Symbol             string        `json:"symbol"`
	Variant            Variant       `json:"variant"`
	Currency           string        `json:"currency"`
	ValueOfStock       float64       `json:"value_of_stock"`
	Price              float64       `json:"price"`
	Assumptions        Assumptions   `json:"assumptions"`
	LTMDividend        float64       `json:"ltm_dividend"`
	RegressionDividend *float64      `json:"regression_dividend,omitempty"`
	Growth             Growth        `json:"growth"`
	Profitability      Profitability `json:"profitability"`
	Projected          []float64     `json:"projected,omitempty"`
	WatchOnly          bool          `json:"watch_only"`
}

// Model runs the dividend discount model
type Model struct {
	cfg    Config
	logger *zap.Logger
}

// NewModel creates a model; the config is validated.
func NewModel(cfg Config, logger *zap.Logger) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{cfg: cfg, logger: logger}, nil
}

// Config returns the model settings
func (m *Model) Config() Config {
	return m.cfg
}

// Run values one snapshot. The snapshot is copied before use.
// Aborts (zero dividend, currency mismatch under the abort policy, equal
// discount and growth rates) return a coded core error after a warning has
// been sent to out; nothing else reaches out in that case.
func (m *Model) Run(snap *core.Snapshot, o Overrides, opts Options, out Reporter) (*Result, error) {
	if out == nil {
		out = NopReporter{}
	}
	s := snap.Clone()
	log := m.logger.With(zap.String("variant", string(m.cfg.Variant)))
	if s != nil {
		log = log.With(zap.String("symbol", s.Symbol))
	}

	// Assumption resolution
	res, err := Resolve(s, o, m.cfg)
	if res != nil {
		for _, w := range res.Warnings {
			out.Warning(w)
		}
	}
	if err != nil {
		log.Debug("assumption resolution failed", zap.Error(err))
		return nil, err
	}
	a := res.Assumptions
	log.Debug("assumptions resolved",
		zap.Int("historic_years", a.HistoricYears),
		zap.Float64("discount_rate", a.DiscountRate),
		zap.Float64("growth_in_perpetuity", a.GrowthInPerpetuity),
	)

	// Growth
	growth, err := AverageGrowthRate(res.Dividends, m.cfg.Variant.skipsLTMGrowth())
	if err != nil {
		out.Warning("A zero dividend was encountered!")
		return nil, err
	}

	// Profitability
	prof := ComputeProfitability(res.Periods, res.LTM, m.cfg.PreferredSensitivity)

	// Valuation
	value, err := ValueOfStock(a.ExpectedDividend, a.DiscountRate, a.GrowthInPerpetuity)
	if err != nil {
		out.Warning(err.Error())
		return nil, err
	}

	result := &Result{
		Symbol:        s.Symbol,
		Variant:       m.cfg.Variant,
		Currency:      res.Currency,
		ValueOfStock:  value,
		Price:         res.Price,
		Assumptions:   a,
		LTMDividend:   res.LTM.DividendPerShare,
		Growth:        growth,
		Profitability: prof,
		WatchOnly:     opts.WatchOnly,
	}
	if !res.Regression.Empty() {
		next := res.Regression.Next
		result.RegressionDividend = &next
	}

	out.SetEstimatedValue(value, res.Currency)
	if opts.WatchOnly {
		return result, nil
	}

	for _, w := range prof.Warnings {
		out.Warning(w)
	}

	cur := " (" + res.Currency + ")"
	out.Print(value, "Estimated value"+cur, FormatNumber)
	out.Print(res.LTM.DividendPerShare, "LTM dividend"+cur, FormatNumber)
	if result.RegressionDividend != nil {
		out.Print(*result.RegressionDividend, "Next linear regression dividend"+cur, FormatNumber)
	}
	out.Print(a.ExpectedDividend, "Next year's expected dividend"+cur, FormatNumber)
	out.Print(growth.Average, "Average historic dividend growth rate", FormatPercent)
	out.Print(prof.AveragePayoutRatio, "Average historic payout ratio", FormatPercent)
	out.Print(prof.AverageROE, "Average historic return on equity", FormatPercent)
	out.Print(res.Price, "Current price"+cur, FormatPlain)

	result.Projected = ProjectDividends(res.Periods, a.ExpectedDividend, a.GrowthInPerpetuity, m.cfg.ChartProjectionYears)
	out.Chart(dividendsChart(result.Projected, res, res.Currency))
	out.Context([]Table{
		dividendsTable(result.Projected, a.HistoricYears, res.LastYear, res.Currency),
		historicTable(prof, res.Currency),
	})

	log.Debug("valuation complete", zap.Float64("value_of_stock", value))
	return result, nil
}

// ValueOfStock is expected / (discount - growth). Equal rates, or any other
// input producing a non-finite value, return ErrInvalidModelInputs.
func ValueOfStock(expected, discountRate, growth float64) (float64, error) {
	denom := discountRate - growth
	if denom == 0 {
		return 0, core.WrapError(core.ErrInvalidModelInputs,
			fmt.Errorf("discount rate %g equals growth in perpetuity", discountRate))
	}
	value := expected / denom
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, core.WrapError(core.ErrInvalidModelInputs, fmt.Errorf("value of stock is %v", value))
	}
	return value, nil
}
