package fmp

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/snapshot"
	"github.com/tidwall/gjson"
)

// assemble turns the upstream bodies into a snapshot
func assemble(symbol string, bodies map[string][]byte, now time.Time) (*core.Snapshot, error) {
	s := &core.Snapshot{Symbol: symbol}
	quarters := &core.Snapshot{}
	history := &core.Snapshot{}

	steps := []struct {
		into   *core.Snapshot
		series string
		body   []byte
	}{
		{s, snapshot.Income, bodies[reqIncome]},
		{quarters, snapshot.Income, bodies[reqIncomeQuarters]},
		{s, snapshot.Balance, bodies[reqBalance]},
		{s, snapshot.BalanceQuarterly, bodies[reqBalanceQuarter]},
		{s, snapshot.Flows, bodies[reqFlows]},
		{quarters, snapshot.Flows, bodies[reqFlowsQuarters]},
		{s, snapshot.Profile, bodies[reqProfile]},
		{history, snapshot.Dividends, historical(bodies[reqDividendHistory])},
		{history, snapshot.Prices, historical(bodies[reqPriceHistory])},
		{s, snapshot.Treasury, bodies[reqTreasury]},
	}
	for _, st := range steps {
		if err := snapshot.ParseSeries(st.into, st.series, st.body); err != nil {
			return nil, err
		}
	}

	s.IncomeLTM = trailingIncome(quarters.Income)
	s.FlowsLTM = trailingFlows(quarters.Flows)
	s.Dividends = annualDividends(history.Dividends, now)
	s.Prices = annualPrices(history.Prices, now)
	slices.SortStableFunc(s.Treasury, func(a, b core.TreasuryYield) int {
		return cmp.Compare(b.Date, a.Date)
	})
	return s, nil
}

// historical unwraps the "historical" array of a history response. Error
// bodies pass through so the parser reports them.
func historical(body []byte) []byte {
	if gjson.GetBytes(body, "Error Message").Exists() || !gjson.ValidBytes(body) {
		return body
	}
	h := gjson.GetBytes(body, "historical")
	if !h.Exists() {
		return []byte("[]")
	}
	return []byte(h.Raw)
}

// trailingIncome sums the newest four quarters. Shares and currency come
// from the latest quarter.
func trailingIncome(q []core.IncomeStatement) core.IncomeStatement {
	if len(q) == 0 {
		return core.IncomeStatement{}
	}
	ltm := q[0]
	ltm.NetIncome, ltm.EPS = 0, 0
	for _, st := range q[:min(len(q), 4)] {
		ltm.NetIncome += st.NetIncome
		ltm.EPS += st.EPS
	}
	return ltm
}

func trailingFlows(q []core.CashFlowStatement) core.CashFlowStatement {
	if len(q) == 0 {
		return core.CashFlowStatement{}
	}
	ltm := q[0]
	ltm.NetIncome, ltm.DividendsPaid = 0, 0
	for _, st := range q[:min(len(q), 4)] {
		ltm.NetIncome += st.NetIncome
		ltm.DividendsPaid += st.DividendsPaid
	}
	return ltm
}

// annualDividends returns the trailing 365 days total followed by one total
// per completed calendar year, newest first. Years without a payment between
// the first paying year and last year are kept as zero.
func annualDividends(payments []core.DividendRecord, now time.Time) []core.DividendRecord {
	if len(payments) == 0 {
		return nil
	}

	cutoff := now.AddDate(-1, 0, 0)
	ltm := core.DividendRecord{Date: now.Format(time.DateOnly), Year: now.Year()}
	byYear := make(map[int]float64)
	oldest := now.Year()
	for _, p := range payments {
		date, err := time.Parse(time.DateOnly, p.Date)
		if err != nil {
			continue
		}
		if date.After(cutoff) && !date.After(now) {
			ltm.AdjDividend += p.AdjDividend
		}
		if y := date.Year(); y < now.Year() {
			byYear[y] += p.AdjDividend
			oldest = min(oldest, y)
		}
	}

	out := []core.DividendRecord{ltm}
	for y := now.Year() - 1; y >= oldest; y-- {
		out = append(out, core.DividendRecord{
			Date:        fmt.Sprintf("%d-12-31", y),
			Year:        y,
			AdjDividend: byYear[y],
		})
	}
	return out
}

// annualPrices returns the latest close followed by the last close of every
// completed calendar year, newest first.
func annualPrices(closes []core.PricePoint, now time.Time) []core.PricePoint {
	if len(closes) == 0 {
		return nil
	}

	closes = slices.Clone(closes)
	slices.SortStableFunc(closes, func(a, b core.PricePoint) int {
		return cmp.Compare(b.Date, a.Date)
	})

	out := []core.PricePoint{closes[0]}
	seen := make(map[int]bool)
	for _, c := range closes {
		date, err := time.Parse(time.DateOnly, c.Date)
		if err != nil {
			continue
		}
		y := date.Year()
		if y >= now.Year() || seen[y] {
			continue
		}
		seen[y] = true
		out = append(out, core.PricePoint{Date: c.Date, Year: y, Close: c.Close})
	}
	return out
}
