package valuation

import (
	"testing"

	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/indicator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(values ...float64) DividendSeries {
	d := make(DividendSeries, len(values))
	for i, v := range values {
		d[i] = core.DividendRecord{AdjDividend: v}
	}
	return d
}

func TestAverageGrowthRate_SubtractionOrder(t *testing.T) {
	// increasing by index means the dividend shrank over time
	g, err := AverageGrowthRate(series(1, 2, 3, 4), false)
	require.NoError(t, err)

	require.Len(t, g.Rates, 3)
	assert.InDelta(t, -0.5, g.Rates[0], 1e-12)
	assert.InDelta(t, -1.0/3, g.Rates[1], 1e-12)
	assert.InDelta(t, -0.25, g.Rates[2], 1e-12)
	assert.InDelta(t, (-0.5-1.0/3-0.25)/3, g.Average, 1e-12)
	assert.Less(t, g.Average, 0.0)
}

func TestAverageGrowthRate_SkipLTM(t *testing.T) {
	g, err := AverageGrowthRate(series(1, 2, 3, 4), true)
	require.NoError(t, err)

	require.Len(t, g.Rates, 2)
	assert.InDelta(t, (-1.0/3-0.25)/2, g.Average, 1e-12)
}

func TestAverageGrowthRate_ZeroDividend(t *testing.T) {
	_, err := AverageGrowthRate(series(1.5, 0, 1), false)
	assert.ErrorIs(t, err, core.ErrZeroDividend)

	_, err = AverageGrowthRate(series(0, 1, 1), false)
	assert.ErrorIs(t, err, core.ErrZeroDividend)

	// the LTM record is outside the walked window
	g, err := AverageGrowthRate(series(0, 1.1, 1), true)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, g.Average, 1e-12)
}

func TestAverageGrowthRate_ShortWindows(t *testing.T) {
	for _, d := range []DividendSeries{nil, series(), series(2)} {
		g, err := AverageGrowthRate(d, false)
		require.NoError(t, err)
		assert.Equal(t, 0.0, g.Average)
		assert.Empty(t, g.Rates)
	}

	g, err := AverageGrowthRate(series(2), true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, g.Average)
}

func TestExpectedDividend(t *testing.T) {
	r := indicator.LinearRegression([]float64{1, 2, 3}, 4, 1)

	assert.Equal(t, 3.5, ExpectedDividend(r, 3, 50))
	assert.Equal(t, 4.0, ExpectedDividend(r, 3, 100))
	assert.Equal(t, 3.0, ExpectedDividend(r, 3, 0))
	assert.Equal(t, 3.0, ExpectedDividend(indicator.Regression{}, 3, 50))
}

func TestDividendSeries_Field(t *testing.T) {
	d := DividendSeries{{Year: 2024, AdjDividend: 2}, {Year: 2023, AdjDividend: 1}}

	adj, err := d.Field("adjDividend")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, adj)

	years, err := d.Chronological().Field("year")
	require.NoError(t, err)
	assert.Equal(t, []float64{2023, 2024}, years)
	assert.Equal(t, 2024, d[0].Year, "Chronological must not reorder the receiver")

	_, err = d.Field("close")
	assert.ErrorIs(t, err, core.ErrInvalidSnapshot)
}
