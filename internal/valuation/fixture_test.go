package valuation

import (
	"fmt"

	"github.com/newthinker/ddm/internal/core"
)

// fixture builds a snapshot of years annual periods ending in 2023 for a
// company without preferred stock. Dividends per share fall by 0.06 per year
// going back, so the series grows over time.
func fixture(years int) *core.Snapshot {
	beta := 0.6
	s := &core.Snapshot{
		Symbol: "KO",
		IncomeLTM: core.IncomeStatement{
			Date: "2024-06-30", NetIncome: 10400e6, WeightedAverageShsOut: 4000e6, EPS: 2.6,
			ReportedCurrency: "USD",
		},
		BalanceQuarterly: core.BalanceSheet{Date: "2024-06-30", TotalStockholdersEquity: 26000e6},
		FlowsLTM: core.CashFlowStatement{
			Date: "2024-06-30", NetIncome: 10400e6, DividendsPaid: -1.88 * 4000e6, ReportedCurrency: "USD",
		},
		Profile:   core.Profile{Symbol: "KO", Price: 60, Beta: &beta, Currency: "USD"},
		Dividends: []core.DividendRecord{{Date: "2024-06-30", Year: 2024, AdjDividend: 1.88}},
		Prices:    []core.PricePoint{{Date: "2024-06-30", Year: 2024, Close: 60}},
		Treasury:  []core.TreasuryYield{{Date: "2024-06-30", Year10: 0.04}},
	}

	for i := 0; i < years; i++ {
		year := 2023 - i
		date := dateOf(year)
		dps := 1.84 - 0.06*float64(i)
		ni := (10000 - 500*float64(i)) * 1e6
		s.Income = append(s.Income, core.IncomeStatement{
			Date: date, Year: year, NetIncome: ni, WeightedAverageShsOut: 4000e6, EPS: ni / 4000e6,
			ReportedCurrency: "USD",
		})
		s.Balance = append(s.Balance, core.BalanceSheet{
			Date: date, Year: year, TotalStockholdersEquity: (25000 - 1000*float64(i)) * 1e6,
		})
		s.Flows = append(s.Flows, core.CashFlowStatement{
			Date: date, Year: year, NetIncome: ni, DividendsPaid: -dps * 4000e6, ReportedCurrency: "USD",
		})
		s.Dividends = append(s.Dividends, core.DividendRecord{Date: date, Year: year, AdjDividend: dps})
		s.Prices = append(s.Prices, core.PricePoint{Date: date, Year: year, Close: 58 - float64(i)})
	}
	return s
}

// withPreferred adds preferred dividends of amount to every cash flow period
func withPreferred(s *core.Snapshot, amount float64) *core.Snapshot {
	for i := range s.Flows {
		s.Flows[i].DividendsPaid -= amount
	}
	s.FlowsLTM.DividendsPaid -= amount
	return s
}

func dateOf(year int) string {
	return fmt.Sprintf("%d-12-31", year)
}

func ptr[T any](v T) *T {
	return &v
}

// recorder captures everything sent to a Reporter
type recorder struct {
	values   []float64
	currency string
	prints   map[string]float64
	formats  map[string]Format
	warnings []string
	charts   []Chart
	tables   []Table
}

func newRecorder() *recorder {
	return &recorder{prints: map[string]float64{}, formats: map[string]Format{}}
}

func (r *recorder) SetEstimatedValue(v float64, currency string) {
	r.values = append(r.values, v)
	r.currency = currency
}

func (r *recorder) Print(v float64, label string, f Format) {
	r.prints[label] = v
	r.formats[label] = f
}

func (r *recorder) Warning(msg string)     { r.warnings = append(r.warnings, msg) }
func (r *recorder) Chart(c Chart)          { r.charts = append(r.charts, c) }
func (r *recorder) Context(tables []Table) { r.tables = append(r.tables, tables...) }
