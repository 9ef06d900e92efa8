package valuation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/newthinker/ddm/internal/indicator"
)

const million = 1e6

// ProjectDividends returns historic dividends per share oldest first, then the
// expected dividend, then years-1 dividends growing at growth per year.
func ProjectDividends(periods []Period, expected, growth float64, years int) []float64 {
	values := make([]float64, 0, len(periods)+years)
	for i := len(periods) - 1; i >= 0; i-- {
		values = append(values, math.Abs(periods[i].DividendPerShare))
	}
	values = append(values, expected)
	for i := 1; i < years; i++ {
		values = append(values, expected*math.Pow(1+growth, float64(i)))
	}
	return values
}

func dividendsTable(projected []float64, historicYears, lastYear int, currency string) Table {
	columns := make([]string, len(projected))
	for i := range projected {
		columns[i] = strconv.Itoa(lastYear - historicYears + i + 1)
	}

	dividends := make([]any, len(projected))
	for i, v := range projected {
		dividends[i] = v
	}
	rates := make([]any, len(projected))
	for i := 1; i < len(projected); i++ {
		if rate, ok := indicator.GrowthRate(projected[i-1], projected[i]); ok {
			rates[i] = rate
		}
	}

	return Table{
		Name:       fmt.Sprintf("Historic and Projected Dividends (%s)", currency),
		Rows:       []string{"Dividends", "Growth Rates"},
		RowFormats: []Format{FormatNumber, FormatPercent},
		Columns:    columns,
		Data:       [][]any{dividends, rates},
	}
}

type tableRow struct {
	label  string
	format Format
	cell   func(m PeriodMetrics) any
}

var (
	rowNetIncome = tableRow{"Net income", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.NetIncome / million
	}}
	rowEquity = tableRow{"Equity", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.Equity / million
	}}
	rowROE = tableRow{"Return on equity", FormatPercent, func(m PeriodMetrics) any {
		if !m.HasROE {
			return nil
		}
		return m.ROE
	}}
	rowPrice = tableRow{"Reference market share price", FormatNumber, func(m PeriodMetrics) any {
		if m.Period.Price == 0 {
			return nil
		}
		return m.Period.Price
	}}
	rowEPS = tableRow{"Earnings per share(EPS)", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.EPS
	}}
	rowDividendPerShare = tableRow{"Dividends per common share", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.DividendPerShare
	}}
	rowDividendYield = tableRow{"Dividend yield", FormatPercent, func(m PeriodMetrics) any {
		y, ok := m.Period.DividendYield()
		if !ok {
			return nil
		}
		return y
	}}
	rowPayoutRatio = tableRow{"Payout ratio (common)", FormatPercent, func(m PeriodMetrics) any {
		return m.PayoutRatio
	}}
	rowCommonDividends = tableRow{"Dividends paid to common shareholders", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.CommonDividends() / million
	}}
)

// preferredRows separates preferred dividends from common income
var preferredRows = []tableRow{
	rowNetIncome,
	{"Calculated preferred stock dividends & premiums", FormatNumber, func(m PeriodMetrics) any {
		return m.PreferredDividends / million
	}},
	{"Net income available to common shareholders", FormatNumber, func(m PeriodMetrics) any {
		return m.CommonIncome / million
	}},
	rowEquity,
	rowROE,
	rowCommonDividends,
	{"Total dividends paid", FormatNumber, func(m PeriodMetrics) any {
		return math.Abs(m.Period.DividendsPaid) / million
	}},
	rowPayoutRatio,
	{"Common shares outstanding", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.Shares / million
	}},
	rowPrice,
	rowEPS,
	rowDividendPerShare,
	rowDividendYield,
}

var simpleRows = []tableRow{
	rowNetIncome,
	rowEquity,
	rowROE,
	{"Dividends paid", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.CommonDividends() / million
	}},
	rowPayoutRatio,
	{"Shares outstanding", FormatNumber, func(m PeriodMetrics) any {
		return m.Period.Shares / million
	}},
	rowPrice,
	rowEPS,
	rowDividendPerShare,
	rowDividendYield,
}

// historicTable lays out one column per historic year (oldest first) plus LTM
func historicTable(p Profitability, currency string) Table {
	rows := simpleRows
	if p.Preferred {
		rows = preferredRows
	}

	metrics := make([]PeriodMetrics, 0, len(p.Historic)+1)
	for i := len(p.Historic) - 1; i >= 0; i-- {
		metrics = append(metrics, p.Historic[i])
	}
	metrics = append(metrics, p.LTM)

	t := Table{
		Name:       fmt.Sprintf("Historic figures (Mil. %s except per share items)", currency),
		Rows:       make([]string, len(rows)),
		RowFormats: make([]Format, len(rows)),
		Columns:    make([]string, len(metrics)),
		Data:       make([][]any, len(rows)),
	}
	for c, m := range metrics {
		t.Columns[c] = m.Period.Label
	}
	for r, row := range rows {
		t.Rows[r] = row.label
		t.RowFormats[r] = row.format
		t.Data[r] = make([]any, len(metrics))
		for c, m := range metrics {
			t.Data[r][c] = row.cell(m)
		}
	}
	return t
}

func dividendsChart(projected []float64, res *Resolution, currency string) Chart {
	h := res.Assumptions.HistoricYears
	first := res.LastYear - h + 1

	dividends := Series{Name: "dividends", Points: make([]Point, len(projected))}
	for i, v := range projected {
		dividends.Points[i] = Point{Year: first + i, Value: v}
	}

	line := res.Regression.Line()
	regression := Series{Name: "linear regression", Points: make([]Point, len(line))}
	for i, v := range line {
		regression.Points[i] = Point{Year: first + i, Value: v}
	}

	return Chart{
		Title:  fmt.Sprintf("Historic and Projected Dividends (%s)", currency),
		Series: []Series{dividends, regression},
	}
}
