package valuation

import (
	"fmt"
	"strconv"

	"github.com/newthinker/ddm/internal/core"
)

// LTMLabel is the column label of the trailing twelve months period
const LTMLabel = "LTM"

// Period is one fiscal year (or the LTM period) with every figure the model
// reads for it already paired up.
type Period struct {
	Label            string
	Year             int
	NetIncome        float64
	Equity           float64
	DividendsPaid    float64 // cash flow sign, usually negative
	Shares           float64
	EPS              float64
	DividendPerShare float64
	Price            float64
}

// CommonDividends is the per share dividend times shares outstanding
func (p Period) CommonDividends() float64 {
	return p.DividendPerShare * p.Shares
}

// DividendYield returns dividend per share over price, false when there is no price
func (p Period) DividendYield() (float64, bool) {
	if p.Price == 0 {
		return 0, false
	}
	return p.DividendPerShare / p.Price, true
}

// yearKeyed finds the record for year, falling back to position when either
// side carries no year.
func yearKeyed[T any](items []T, year, pos int, yearOf func(T) int) (T, bool) {
	var zero T
	if year != 0 {
		for _, it := range items {
			if yearOf(it) == year {
				return it, true
			}
		}
		// only undated series fall back to position
		for _, it := range items {
			if yearOf(it) != 0 {
				return zero, false
			}
		}
	}
	if pos < 0 || pos >= len(items) {
		return zero, false
	}
	return items[pos], true
}

// alignPeriods pairs the newest years statements with the dividend and price
// of the same fiscal year. dividends and prices still carry the LTM entry at
// index 0; it is split off here and returned as its own period.
// Undated periods are labelled by counting back from lastYear.
func alignPeriods(s *core.Snapshot, years, lastYear int) ([]Period, Period, error) {
	annualDividends := tail(s.Dividends)
	annualPrices := tail(s.Prices)

	periods := make([]Period, 0, years)
	for i := 0; i < years; i++ {
		inc := s.Income[i]
		year := inc.Year

		bal, ok := yearKeyed(s.Balance, year, i, func(b core.BalanceSheet) int { return b.Year })
		if !ok {
			return nil, Period{}, misaligned("balance sheet", year, i)
		}
		flow, ok := yearKeyed(s.Flows, year, i, func(f core.CashFlowStatement) int { return f.Year })
		if !ok {
			return nil, Period{}, misaligned("cash flow statement", year, i)
		}
		div, ok := yearKeyed(annualDividends, year, i, func(d core.DividendRecord) int { return d.Year })
		if !ok {
			return nil, Period{}, misaligned("dividend", year, i)
		}
		price, _ := yearKeyed(annualPrices, year, i, func(p core.PricePoint) int { return p.Year })

		label := strconv.Itoa(year)
		if year == 0 {
			label = strconv.Itoa(lastYear - i)
		}

		periods = append(periods, Period{
			Label:            label,
			Year:             year,
			NetIncome:        inc.NetIncome,
			Equity:           bal.TotalStockholdersEquity,
			DividendsPaid:    flow.DividendsPaid,
			Shares:           inc.WeightedAverageShsOut,
			EPS:              inc.EPS,
			DividendPerShare: div.AdjDividend,
			Price:            price.Close,
		})
	}

	ltm := Period{
		Label:         LTMLabel,
		NetIncome:     s.IncomeLTM.NetIncome,
		Equity:        s.BalanceQuarterly.TotalStockholdersEquity,
		DividendsPaid: s.FlowsLTM.DividendsPaid,
		Shares:        s.IncomeLTM.WeightedAverageShsOut,
		EPS:           s.IncomeLTM.EPS,
	}
	if len(s.Dividends) > 0 {
		ltm.DividendPerShare = s.Dividends[0].AdjDividend
	}
	if len(s.Prices) > 0 {
		ltm.Price = s.Prices[0].Close
	}

	return periods, ltm, nil
}

func tail[T any](items []T) []T {
	if len(items) == 0 {
		return nil
	}
	return items[1:]
}

func misaligned(what string, year, pos int) error {
	if year != 0 {
		return core.WrapError(core.ErrMisalignedSeries, fmt.Errorf("no %s for fiscal year %d", what, year))
	}
	return core.WrapError(core.ErrMisalignedSeries, fmt.Errorf("no %s at position %d", what, pos))
}
