// Package snapshot reads and writes the JSON documents that carry the ten
// input series of a valuation. Field names follow the fundamentals provider
// (netIncome, dividendsPaid, adjDividend, ...); treasury yields are quoted in
// percent on the wire and held as fractions in memory.
package snapshot

import (
	"fmt"

	"github.com/newthinker/ddm/internal/core"
	"github.com/tidwall/gjson"
)

// Series names. They are the keys of a snapshot document and the names the
// collectors fetch.
const (
	Income           = "income"
	IncomeLTM        = "income_ltm"
	Balance          = "balance"
	BalanceQuarterly = "balance_quarterly"
	Flows            = "flows"
	FlowsLTM         = "flows_ltm"
	Profile          = "profile"
	Dividends        = "dividends"
	Prices           = "prices"
	Treasury         = "treasury"
)

// Series lists every input in the order the model documents them
var Series = []string{
	Income, IncomeLTM, Balance, BalanceQuarterly, Flows,
	FlowsLTM, Profile, Dividends, Prices, Treasury,
}

// Parse decodes a full snapshot document
func Parse(data []byte) (*core.Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return nil, core.WrapError(core.ErrInvalidSnapshot, fmt.Errorf("invalid JSON"))
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, core.WrapError(core.ErrInvalidSnapshot, fmt.Errorf("document is not an object"))
	}

	s := &core.Snapshot{Symbol: doc.Get("symbol").String()}
	for _, name := range Series {
		if err := apply(s, name, doc.Get(name)); err != nil {
			return nil, err
		}
	}
	if s.Symbol == "" {
		s.Symbol = s.Profile.Symbol
	}
	return s, nil
}

// ParseSeries decodes one provider response body into the matching field of s
func ParseSeries(s *core.Snapshot, name string, body []byte) error {
	if !gjson.ValidBytes(body) {
		return core.WrapError(core.ErrInvalidSnapshot, fmt.Errorf("%s: invalid JSON", name))
	}
	r := gjson.ParseBytes(body)
	if msg := r.Get("Error Message"); msg.Exists() {
		return core.WrapError(core.ErrInvalidSnapshot, fmt.Errorf("%s: %s", name, msg.String()))
	}
	return apply(s, name, r)
}

func apply(s *core.Snapshot, name string, r gjson.Result) error {
	switch name {
	case Income:
		s.Income = each(r, income)
	case IncomeLTM:
		s.IncomeLTM = income(first(r))
	case Balance:
		s.Balance = each(r, balance)
	case BalanceQuarterly:
		s.BalanceQuarterly = balance(first(r))
	case Flows:
		s.Flows = each(r, flow)
	case FlowsLTM:
		s.FlowsLTM = flow(first(r))
	case Profile:
		s.Profile = profile(first(r))
	case Dividends:
		s.Dividends = each(r, dividend)
	case Prices:
		s.Prices = each(r, price)
	case Treasury:
		s.Treasury = each(r, treasury)
	default:
		return core.WrapError(core.ErrInvalidSnapshot, fmt.Errorf("unknown series %q", name))
	}
	return nil
}

// each maps every element of an array; a lone object is treated as a one
// element array and a missing value as an empty one.
func each[T any](r gjson.Result, fn func(gjson.Result) T) []T {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if !r.IsArray() {
		return []T{fn(r)}
	}
	items := r.Array()
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = fn(item)
	}
	return out
}

func first(r gjson.Result) gjson.Result {
	if r.IsArray() {
		return r.Get("0")
	}
	return r
}

func yearOf(r gjson.Result) int {
	for _, key := range []string{"calendarYear", "fiscalYear", "year"} {
		if y := r.Get(key); y.Exists() && y.Int() != 0 {
			return int(y.Int())
		}
	}
	return core.YearFromDate(r.Get("date").String())
}

// convertedCurrency is only honoured when the key is present
func convertedCurrency(r gjson.Result) string {
	if c := r.Get("convertedCurrency"); c.Exists() {
		return c.String()
	}
	return ""
}

func income(r gjson.Result) core.IncomeStatement {
	return core.IncomeStatement{
		Date:                  r.Get("date").String(),
		Year:                  yearOf(r),
		NetIncome:             r.Get("netIncome").Float(),
		WeightedAverageShsOut: r.Get("weightedAverageShsOut").Float(),
		EPS:                   r.Get("eps").Float(),
		ReportedCurrency:      r.Get("reportedCurrency").String(),
		ConvertedCurrency:     convertedCurrency(r),
	}
}

func balance(r gjson.Result) core.BalanceSheet {
	return core.BalanceSheet{
		Date:                    r.Get("date").String(),
		Year:                    yearOf(r),
		TotalStockholdersEquity: r.Get("totalStockholdersEquity").Float(),
	}
}

func flow(r gjson.Result) core.CashFlowStatement {
	return core.CashFlowStatement{
		Date:              r.Get("date").String(),
		Year:              yearOf(r),
		NetIncome:         r.Get("netIncome").Float(),
		DividendsPaid:     r.Get("dividendsPaid").Float(),
		ReportedCurrency:  r.Get("reportedCurrency").String(),
		ConvertedCurrency: convertedCurrency(r),
	}
}

func profile(r gjson.Result) core.Profile {
	p := core.Profile{
		Symbol:            r.Get("symbol").String(),
		Price:             r.Get("price").Float(),
		Currency:          r.Get("currency").String(),
		ConvertedCurrency: convertedCurrency(r),
	}
	if b := r.Get("beta"); b.Exists() && b.Type != gjson.Null {
		beta := b.Float()
		p.Beta = &beta
	}
	return p
}

func dividend(r gjson.Result) core.DividendRecord {
	return core.DividendRecord{
		Date:        r.Get("date").String(),
		Year:        yearOf(r),
		AdjDividend: r.Get("adjDividend").Float(),
	}
}

func price(r gjson.Result) core.PricePoint {
	return core.PricePoint{
		Date:  r.Get("date").String(),
		Year:  yearOf(r),
		Close: r.Get("close").Float(),
	}
}

func treasury(r gjson.Result) core.TreasuryYield {
	return core.TreasuryYield{
		Date:   r.Get("date").String(),
		Year10: r.Get("year10").Float() / 100,
	}
}
