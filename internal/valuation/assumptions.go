package valuation

import (
	"fmt"

	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/indicator"
)

// Overrides carries caller supplied assumption values. Nil fields are
// resolved from the snapshot.
type Overrides struct {
	DiscountRate           *float64
	ExpectedDividend       *float64
	GrowthInPerpetuity     *float64
	LinearRegressionWeight *float64
	Beta                   *float64
	RiskFreeRate           *float64
	MarketPremium          *float64
	HistoricYears          *int
}

// Merge returns o with every field set in top taking precedence
func (o Overrides) Merge(top Overrides) Overrides {
	return Overrides{
		DiscountRate:           either(top.DiscountRate, o.DiscountRate),
		ExpectedDividend:       either(top.ExpectedDividend, o.ExpectedDividend),
		GrowthInPerpetuity:     either(top.GrowthInPerpetuity, o.GrowthInPerpetuity),
		LinearRegressionWeight: either(top.LinearRegressionWeight, o.LinearRegressionWeight),
		Beta:                   either(top.Beta, o.Beta),
		RiskFreeRate:           either(top.RiskFreeRate, o.RiskFreeRate),
		MarketPremium:          either(top.MarketPremium, o.MarketPremium),
		HistoricYears:          either(top.HistoricYears, o.HistoricYears),
	}
}

// Assumptions is the fully resolved parameter set of one run.
// It is a value type; phases receive copies and never write back.
type Assumptions struct {
	DiscountRate           float64 `json:"discount_rate"`
	ExpectedDividend       float64 `json:"expected_dividend"`
	GrowthInPerpetuity     float64 `json:"growth_in_perpetuity"`
	LinearRegressionWeight float64 `json:"linear_regression_weight"`
	Beta                   float64 `json:"beta"`
	RiskFreeRate           float64 `json:"risk_free_rate"`
	MarketPremium          float64 `json:"market_premium"`
	HistoricYears          int     `json:"historic_years"`
}

// Resolution is the output of assumption resolution: the assumptions plus
// the truncated, year-aligned inputs every later phase reads.
type Resolution struct {
	Assumptions     Assumptions
	Currency        string
	ProfileCurrency string
	LastYear        int
	Periods         []Period // newest first, len == HistoricYears
	LTM             Period
	Dividends       DividendSeries // newest first, LTM at index 0, len == HistoricYears+1
	Regression      indicator.Regression
	Price           float64
	Warnings        []string
}

// Resolve derives every assumption the caller did not supply.
// The snapshot must be a private copy: its series are truncated in place.
func Resolve(s *core.Snapshot, o Overrides, cfg Config) (*Resolution, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	r := &Resolution{Price: s.Profile.Price}
	a := &r.Assumptions

	// Historic years
	if o.HistoricYears != nil {
		a.HistoricYears = *o.HistoricYears
	} else {
		a.HistoricYears = r.defaultHistoricYears(s, cfg.Variant)
	}
	a.HistoricYears = clampHistoricYears(a.HistoricYears, s, cfg.MaxHistoricYears)

	treasury10 := s.Treasury[0].Year10
	a.GrowthInPerpetuity = pick(o.GrowthInPerpetuity, treasury10)

	r.LastYear = lastYear(s)
	r.ProfileCurrency = s.Profile.ResolvedCurrency()
	r.Currency = s.Flows[0].ResolvedCurrency()

	// Truncate to the historic window
	s.Flows = s.Flows[:a.HistoricYears]
	s.Income = s.Income[:a.HistoricYears]
	s.Balance = s.Balance[:a.HistoricYears]
	s.Dividends = s.Dividends[:a.HistoricYears+1]
	r.Dividends = DividendSeries(s.Dividends)

	periods, ltm, err := alignPeriods(s, a.HistoricYears, r.LastYear)
	if err != nil {
		return nil, err
	}
	r.Periods, r.LTM = periods, ltm

	adj, err := r.Dividends.Chronological().Field("adjDividend")
	if err != nil {
		return nil, err
	}
	r.Regression = indicator.LinearRegression(adj, cfg.ChartProjectionYears-1, 1)

	if r.ProfileCurrency != r.Currency {
		r.warn(fmt.Sprintf("The market price currency(%s) and the financial report's currency(%s) do not match! Please select a currency.",
			r.ProfileCurrency, r.Currency))
		if cfg.currencyPolicy() == CurrencyPolicyAbort {
			return r, core.WrapError(core.ErrCurrencyMismatch, fmt.Errorf("%s vs %s", r.ProfileCurrency, r.Currency))
		}
	}

	// Cost of equity
	defaultBeta := 1.0
	if s.Profile.Beta != nil && *s.Profile.Beta != 0 {
		defaultBeta = *s.Profile.Beta
	}
	a.Beta = pick(o.Beta, defaultBeta)
	a.RiskFreeRate = pick(o.RiskFreeRate, treasury10)
	a.MarketPremium = pick(o.MarketPremium, cfg.marketPremium())
	// Percentage scaled while growth in perpetuity stays a fraction; the
	// published figures depend on this.
	a.DiscountRate = pick(o.DiscountRate, 100*(a.RiskFreeRate+a.Beta*a.MarketPremium))

	a.LinearRegressionWeight = pick(o.LinearRegressionWeight, cfg.LinearRegressionWeight)
	a.ExpectedDividend = pick(o.ExpectedDividend,
		ExpectedDividend(r.Regression, r.LTM.DividendPerShare, a.LinearRegressionWeight))

	return r, nil
}

func (r *Resolution) warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Resolution) defaultHistoricYears(s *core.Snapshot, v Variant) int {
	var count int
	if v == VariantClassic {
		for _, f := range s.Flows {
			if f.DividendsPaid == 0 {
				break
			}
			count++
		}
	} else {
		count = len(s.Dividends) - 1
	}
	if count <= 0 {
		r.warn("The company does not currently pay dividends!")
		return 0
	}
	return count
}

// clampHistoricYears keeps the window inside the cap and inside every series
func clampHistoricYears(years int, s *core.Snapshot, limit int) int {
	years = min(years, limit, len(s.Income), len(s.Balance), len(s.Flows), len(s.Dividends)-1)
	return max(years, 0)
}

func lastYear(s *core.Snapshot) int {
	if s.Flows[0].Year != 0 {
		return s.Flows[0].Year
	}
	return core.YearFromDate(s.Flows[0].Date)
}

func pick[T any](override *T, fallback T) T {
	return *either(override, &fallback)
}

// either returns override unless it is nil
func either[T any](override, fallback *T) *T {
	if override != nil {
		return override
	}
	return fallback
}
