package snapshot

import (
	"encoding/json"
	"strconv"

	"github.com/newthinker/ddm/internal/core"
)

type incomeDoc struct {
	Date                  string  `json:"date,omitempty"`
	CalendarYear          string  `json:"calendarYear,omitempty"`
	NetIncome             float64 `json:"netIncome"`
	WeightedAverageShsOut float64 `json:"weightedAverageShsOut"`
	EPS                   float64 `json:"eps"`
	ReportedCurrency      string  `json:"reportedCurrency,omitempty"`
	ConvertedCurrency     string  `json:"convertedCurrency,omitempty"`
}

type balanceDoc struct {
	Date                    string  `json:"date,omitempty"`
	CalendarYear            string  `json:"calendarYear,omitempty"`
	TotalStockholdersEquity float64 `json:"totalStockholdersEquity"`
}

type flowDoc struct {
	Date              string  `json:"date,omitempty"`
	CalendarYear      string  `json:"calendarYear,omitempty"`
	NetIncome         float64 `json:"netIncome"`
	DividendsPaid     float64 `json:"dividendsPaid"`
	ReportedCurrency  string  `json:"reportedCurrency,omitempty"`
	ConvertedCurrency string  `json:"convertedCurrency,omitempty"`
}

type profileDoc struct {
	Symbol            string   `json:"symbol"`
	Price             float64  `json:"price"`
	Beta              *float64 `json:"beta"`
	Currency          string   `json:"currency,omitempty"`
	ConvertedCurrency string   `json:"convertedCurrency,omitempty"`
}

type dividendDoc struct {
	Date        string  `json:"date,omitempty"`
	Year        int     `json:"year,omitempty"`
	AdjDividend float64 `json:"adjDividend"`
}

type priceDoc struct {
	Date  string  `json:"date,omitempty"`
	Year  int     `json:"year,omitempty"`
	Close float64 `json:"close"`
}

type treasuryDoc struct {
	Date   string  `json:"date,omitempty"`
	Year10 float64 `json:"year10"`
}

type document struct {
	Symbol           string        `json:"symbol"`
	Income           []incomeDoc   `json:"income"`
	IncomeLTM        incomeDoc     `json:"income_ltm"`
	Balance          []balanceDoc  `json:"balance"`
	BalanceQuarterly balanceDoc    `json:"balance_quarterly"`
	Flows            []flowDoc     `json:"flows"`
	FlowsLTM         flowDoc       `json:"flows_ltm"`
	Profile          profileDoc    `json:"profile"`
	Dividends        []dividendDoc `json:"dividends"`
	Prices           []priceDoc    `json:"prices"`
	Treasury         []treasuryDoc `json:"treasury"`
}

// Marshal encodes s as a snapshot document that Parse reads back
func Marshal(s *core.Snapshot) ([]byte, error) {
	doc := document{
		Symbol:           s.Symbol,
		IncomeLTM:        encodeIncome(s.IncomeLTM),
		BalanceQuarterly: encodeBalance(s.BalanceQuarterly),
		FlowsLTM:         encodeFlow(s.FlowsLTM),
		Profile: profileDoc{
			Symbol:            s.Profile.Symbol,
			Price:             s.Profile.Price,
			Beta:              s.Profile.Beta,
			Currency:          s.Profile.Currency,
			ConvertedCurrency: s.Profile.ConvertedCurrency,
		},
	}
	for _, v := range s.Income {
		doc.Income = append(doc.Income, encodeIncome(v))
	}
	for _, v := range s.Balance {
		doc.Balance = append(doc.Balance, encodeBalance(v))
	}
	for _, v := range s.Flows {
		doc.Flows = append(doc.Flows, encodeFlow(v))
	}
	for _, v := range s.Dividends {
		doc.Dividends = append(doc.Dividends, dividendDoc{Date: v.Date, Year: v.Year, AdjDividend: v.AdjDividend})
	}
	for _, v := range s.Prices {
		doc.Prices = append(doc.Prices, priceDoc{Date: v.Date, Year: v.Year, Close: v.Close})
	}
	for _, v := range s.Treasury {
		doc.Treasury = append(doc.Treasury, treasuryDoc{Date: v.Date, Year10: v.Year10 * 100})
	}
	return json.Marshal(doc)
}

func calendarYear(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func encodeIncome(v core.IncomeStatement) incomeDoc {
	return incomeDoc{
		Date:                  v.Date,
		CalendarYear:          calendarYear(v.Year),
		NetIncome:             v.NetIncome,
		WeightedAverageShsOut: v.WeightedAverageShsOut,
		EPS:                   v.EPS,
		ReportedCurrency:      v.ReportedCurrency,
		ConvertedCurrency:     v.ConvertedCurrency,
	}
}

func encodeBalance(v core.BalanceSheet) balanceDoc {
	return balanceDoc{Date: v.Date, CalendarYear: calendarYear(v.Year), TotalStockholdersEquity: v.TotalStockholdersEquity}
}

func encodeFlow(v core.CashFlowStatement) flowDoc {
	return flowDoc{
		Date:              v.Date,
		CalendarYear:      calendarYear(v.Year),
		NetIncome:         v.NetIncome,
		DividendsPaid:     v.DividendsPaid,
		ReportedCurrency:  v.ReportedCurrency,
		ConvertedCurrency: v.ConvertedCurrency,
	}
}
