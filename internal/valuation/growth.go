package valuation

import (
	"fmt"
	"slices"

	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/indicator"
)

// DividendSeries is a dividend history ordered newest first
type DividendSeries []core.DividendRecord

// Field extracts a numeric field by its snapshot name
func (d DividendSeries) Field(name string) ([]float64, error) {
	values := make([]float64, len(d))
	for i, rec := range d {
		switch name {
		case "adjDividend":
			values[i] = rec.AdjDividend
		case "year":
			values[i] = float64(rec.Year)
		default:
			return nil, core.WrapError(core.ErrInvalidSnapshot, fmt.Errorf("unknown dividend field %q", name))
		}
	}
	return values, nil
}

// Chronological returns a copy ordered oldest first
func (d DividendSeries) Chronological() DividendSeries {
	c := slices.Clone(d)
	slices.Reverse(c)
	return c
}

// Growth is the historic dividend growth of the truncated window
type Growth struct {
	Average float64   `json:"average"`
	Rates   []float64 `json:"rates"` // newest pair first
}

// AverageGrowthRate walks the series newest to oldest averaging
// (newer - older) / older over every pair. With skipLTM the walk starts at
// the first annual dividend. A zero dividend anywhere in the walked window
// returns ErrZeroDividend.
func AverageGrowthRate(d DividendSeries, skipLTM bool) (Growth, error) {
	window := d
	if skipLTM {
		window = tail(d)
	}

	g := Growth{Rates: []float64{}}
	if len(window) == 0 {
		return g, nil
	}

	newer := window[0].AdjDividend
	if newer == 0 {
		return g, zeroDividend(window[0])
	}

	var sum float64
	for _, rec := range window[1:] {
		older := rec.AdjDividend
		if older == 0 {
			return g, zeroDividend(rec)
		}
		rate := (newer - older) / older
		sum += rate
		g.Rates = append(g.Rates, rate)
		newer = older
	}

	if len(g.Rates) > 0 {
		g.Average = sum / float64(len(g.Rates))
	}
	return g, nil
}

// ExpectedDividend blends the next regression dividend with the LTM dividend.
// weight is a percentage; an empty regression yields the LTM dividend.
func ExpectedDividend(r indicator.Regression, ltm, weight float64) float64 {
	if r.Empty() {
		return ltm
	}
	w := weight / 100
	return w*r.Next + (1-w)*ltm
}

func zeroDividend(rec core.DividendRecord) error {
	if rec.Date != "" {
		return core.WrapError(core.ErrZeroDividend, fmt.Errorf("dividend dated %s is zero", rec.Date))
	}
	return core.ErrZeroDividend
}
