package valuation

import (
	"testing"

	"github.com/newthinker/ddm/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configFor(v Variant) Config {
	cfg := DefaultConfig()
	cfg.Variant = v
	return cfg
}

func TestResolve_Defaults(t *testing.T) {
	res, err := Resolve(fixture(5), Overrides{}, configFor(VariantRevised))
	require.NoError(t, err)

	a := res.Assumptions
	assert.Equal(t, 5, a.HistoricYears)
	assert.Equal(t, 0.04, a.GrowthInPerpetuity)
	assert.Equal(t, 0.04, a.RiskFreeRate)
	assert.Equal(t, 0.6, a.Beta)
	assert.Equal(t, 0.055, a.MarketPremium)
	assert.InDelta(t, 7.3, a.DiscountRate, 1e-9)
	assert.Equal(t, 50.0, a.LinearRegressionWeight)
	assert.Equal(t, ExpectedDividend(res.Regression, 1.88, 50), a.ExpectedDividend)

	assert.Equal(t, "USD", res.Currency)
	assert.Equal(t, 2023, res.LastYear)
	assert.Len(t, res.Periods, 5)
	assert.Len(t, res.Dividends, 6)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1.88, res.LTM.DividendPerShare)
	assert.Equal(t, 26000e6, res.LTM.Equity)
}

func TestResolve_ClassicMarketPremium(t *testing.T) {
	res, err := Resolve(fixture(5), Overrides{}, configFor(VariantClassic))
	require.NoError(t, err)

	assert.Equal(t, 0.05, res.Assumptions.MarketPremium)
	assert.InDelta(t, 7.0, res.Assumptions.DiscountRate, 1e-9)
}

func TestResolve_HistoricYearsByVariant(t *testing.T) {
	s := fixture(6)
	s.Flows[3].DividendsPaid = 0

	classic, err := Resolve(s.Clone(), Overrides{}, configFor(VariantClassic))
	require.NoError(t, err)
	assert.Equal(t, 3, classic.Assumptions.HistoricYears)

	revised, err := Resolve(s.Clone(), Overrides{}, configFor(VariantRevised))
	require.NoError(t, err)
	assert.Equal(t, 6, revised.Assumptions.HistoricYears)
}

func TestResolve_NoDividends(t *testing.T) {
	s := fixture(4)
	s.Flows[0].DividendsPaid = 0

	res, err := Resolve(s, Overrides{}, configFor(VariantClassic))
	require.NoError(t, err)

	assert.Equal(t, 0, res.Assumptions.HistoricYears)
	assert.Contains(t, res.Warnings, "The company does not currently pay dividends!")
	assert.Empty(t, res.Periods)
	assert.Len(t, res.Dividends, 1)
	assert.True(t, res.Regression.Empty())
	assert.Equal(t, 1.88, res.Assumptions.ExpectedDividend)
}

func TestResolve_HistoricYearsCappedAtTen(t *testing.T) {
	for _, v := range []Variant{VariantClassic, VariantRevised} {
		res, err := Resolve(fixture(15), Overrides{}, configFor(v))
		require.NoError(t, err)
		assert.Equal(t, 10, res.Assumptions.HistoricYears, "variant %s", v)
		assert.Len(t, res.Dividends, 11)
	}
}

func TestResolve_HistoricYearsOverride(t *testing.T) {
	tests := []struct {
		name     string
		years    int
		override int
		want     int
	}{
		{"within data", 8, 3, 3},
		{"above cap", 15, 20, 10},
		{"above data", 4, 8, 4},
		{"negative", 4, -2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(fixture(tt.years), Overrides{HistoricYears: ptr(tt.override)}, configFor(VariantRevised))
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Assumptions.HistoricYears)
			assert.Len(t, res.Periods, tt.want)
		})
	}
}

func TestResolve_CurrencyMismatch(t *testing.T) {
	mismatched := func() *core.Snapshot {
		s := fixture(3)
		s.Profile.ConvertedCurrency = "EUR"
		return s
	}

	res, err := Resolve(mismatched(), Overrides{}, configFor(VariantClassic))
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "EUR")

	res, err = Resolve(mismatched(), Overrides{}, configFor(VariantRevised))
	assert.ErrorIs(t, err, core.ErrCurrencyMismatch)
	require.NotNil(t, res)
	assert.Len(t, res.Warnings, 1)

	cfg := configFor(VariantClassic)
	cfg.CurrencyPolicy = CurrencyPolicyAbort
	_, err = Resolve(mismatched(), Overrides{}, cfg)
	assert.ErrorIs(t, err, core.ErrCurrencyMismatch)

	cfg = configFor(VariantRevised)
	cfg.CurrencyPolicy = CurrencyPolicyWarn
	_, err = Resolve(mismatched(), Overrides{}, cfg)
	assert.NoError(t, err)
}

func TestResolve_ConvertedReportCurrency(t *testing.T) {
	s := fixture(3)
	s.Profile.Currency = "EUR"
	s.Flows[0].ConvertedCurrency = "EUR"

	res, err := Resolve(s, Overrides{}, configFor(VariantRevised))
	require.NoError(t, err)
	assert.Equal(t, "EUR", res.Currency)
}

func TestResolve_BetaFallback(t *testing.T) {
	s := fixture(3)
	s.Profile.Beta = nil

	res, err := Resolve(s, Overrides{}, configFor(VariantRevised))
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Assumptions.Beta)
	assert.InDelta(t, 9.5, res.Assumptions.DiscountRate, 1e-9)
}

func TestResolve_Overrides(t *testing.T) {
	o := Overrides{
		ExpectedDividend:       ptr(2.0),
		GrowthInPerpetuity:     ptr(0.02),
		RiskFreeRate:           ptr(0.02),
		Beta:                   ptr(1.0),
		MarketPremium:          ptr(0.055),
		LinearRegressionWeight: ptr(80.0),
	}

	res, err := Resolve(fixture(5), o, configFor(VariantClassic))
	require.NoError(t, err)

	a := res.Assumptions
	assert.Equal(t, 2.0, a.ExpectedDividend)
	assert.Equal(t, 0.02, a.GrowthInPerpetuity)
	assert.Equal(t, 80.0, a.LinearRegressionWeight)
	assert.InDelta(t, 7.5, a.DiscountRate, 1e-12)

	o.DiscountRate = ptr(9.0)
	res, err = Resolve(fixture(5), o, configFor(VariantClassic))
	require.NoError(t, err)
	assert.Equal(t, 9.0, res.Assumptions.DiscountRate)
}

func TestResolve_AlignsByFiscalYear(t *testing.T) {
	s := fixture(4)
	// swap two dividend records; lookup is by year, not position
	s.Dividends[1], s.Dividends[2] = s.Dividends[2], s.Dividends[1]

	res, err := Resolve(s, Overrides{}, configFor(VariantRevised))
	require.NoError(t, err)
	assert.Equal(t, 2023, res.Periods[0].Year)
	assert.Equal(t, 1.84, res.Periods[0].DividendPerShare)
	assert.Equal(t, 1.78, res.Periods[1].DividendPerShare)
	assert.Equal(t, 57.0, res.Periods[1].Price)
}

func TestResolve_MisalignedSeries(t *testing.T) {
	s := fixture(3)
	s.Balance[1].Year = 1999

	_, err := Resolve(s, Overrides{}, configFor(VariantRevised))
	assert.ErrorIs(t, err, core.ErrMisalignedSeries)
}

func TestResolve_UndatedSeriesFallBackToPosition(t *testing.T) {
	s := fixture(3)
	for i := range s.Dividends {
		s.Dividends[i].Year = 0
		s.Dividends[i].Date = ""
	}

	res, err := Resolve(s, Overrides{}, configFor(VariantRevised))
	require.NoError(t, err)
	assert.Equal(t, 1.84, res.Periods[0].DividendPerShare)
	assert.Equal(t, 1.72, res.Periods[2].DividendPerShare)
}

func TestResolve_MissingData(t *testing.T) {
	s := fixture(3)
	s.Treasury = nil

	_, err := Resolve(s, Overrides{}, configFor(VariantRevised))
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestOverrides_Merge(t *testing.T) {
	base := Overrides{Beta: ptr(0.8), GrowthInPerpetuity: ptr(0.03), HistoricYears: ptr(5)}
	top := Overrides{GrowthInPerpetuity: ptr(0.02), DiscountRate: ptr(8.0)}

	got := base.Merge(top)
	assert.Equal(t, 0.8, *got.Beta)
	assert.Equal(t, 0.02, *got.GrowthInPerpetuity)
	assert.Equal(t, 8.0, *got.DiscountRate)
	assert.Equal(t, 5, *got.HistoricYears)
	assert.Nil(t, got.MarketPremium)

	assert.Equal(t, 3, *base.Merge(Overrides{HistoricYears: ptr(3)}).HistoricYears)
}

func TestOverrides_Merge_EveryField(t *testing.T) {
	top := Overrides{
		DiscountRate:           ptr(9.0),
		ExpectedDividend:       ptr(2.0),
		GrowthInPerpetuity:     ptr(0.01),
		LinearRegressionWeight: ptr(25.0),
		Beta:                   ptr(1.1),
		RiskFreeRate:           ptr(0.04),
		MarketPremium:          ptr(0.06),
		HistoricYears:          ptr(4),
	}

	assert.Equal(t, top, Overrides{}.Merge(top))
	assert.Equal(t, top, top.Merge(Overrides{}))
	assert.Equal(t, Overrides{}, Overrides{}.Merge(Overrides{}))
}
