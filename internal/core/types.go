package core

import (
	"slices"
	"strconv"
	"strings"
)

// IncomeStatement is one annual (or LTM) income statement record
type IncomeStatement struct {
	Date                  string
	Year                  int
	NetIncome             float64
	WeightedAverageShsOut float64
	EPS                   float64
	ReportedCurrency      string
	ConvertedCurrency     string
}

// BalanceSheet is one annual or quarterly balance sheet record
type BalanceSheet struct {
	Date                    string
	Year                    int
	TotalStockholdersEquity float64
}

// CashFlowStatement is one annual (or LTM) cash flow statement record.
// DividendsPaid keeps the statement sign: cash paid out is negative.
type CashFlowStatement struct {
	Date              string
	Year              int
	NetIncome         float64
	DividendsPaid     float64
	ReportedCurrency  string
	ConvertedCurrency string
}

// ResolvedCurrency returns the converted currency when present, else the reported one
func (c CashFlowStatement) ResolvedCurrency() string {
	if c.ConvertedCurrency != "" {
		return c.ConvertedCurrency
	}
	return c.ReportedCurrency
}

// DividendRecord is the adjusted dividend per share paid over one period
type DividendRecord struct {
	Date        string
	Year        int
	AdjDividend float64
}

// PricePoint is the closing price at the end of one period
type PricePoint struct {
	Date  string
	Year  int
	Close float64
}

// TreasuryYield is one treasury snapshot. Yields are fractions (0.042 = 4.2%).
type TreasuryYield struct {
	Date   string
	Year10 float64
}

// Profile holds company metadata used to seed default assumptions
type Profile struct {
	Symbol            string
	Price             float64
	Beta              *float64
	Currency          string
	ConvertedCurrency string
}

// ResolvedCurrency returns the converted currency when present, else the listing currency
func (p Profile) ResolvedCurrency() string {
	if p.ConvertedCurrency != "" {
		return p.ConvertedCurrency
	}
	return p.Currency
}

// Snapshot bundles every input series of one valuation run.
// Annual series are ordered newest first. Dividends and Prices carry one extra
// leading entry for the LTM period.
type Snapshot struct {
	Symbol           string
	Income           []IncomeStatement
	IncomeLTM        IncomeStatement
	Balance          []BalanceSheet
	BalanceQuarterly BalanceSheet
	Flows            []CashFlowStatement
	FlowsLTM         CashFlowStatement
	Profile          Profile
	Dividends        []DividendRecord
	Prices           []PricePoint
	Treasury         []TreasuryYield
}

// Clone returns a deep copy so that callers may mutate the result freely
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Income = slices.Clone(s.Income)
	c.Balance = slices.Clone(s.Balance)
	c.Flows = slices.Clone(s.Flows)
	c.Dividends = slices.Clone(s.Dividends)
	c.Prices = slices.Clone(s.Prices)
	c.Treasury = slices.Clone(s.Treasury)
	if s.Profile.Beta != nil {
		beta := *s.Profile.Beta
		c.Profile.Beta = &beta
	}
	return &c
}

// Validate checks that the snapshot carries the minimum the model needs
func (s *Snapshot) Validate() error {
	switch {
	case s == nil:
		return ErrNoData
	case len(s.Treasury) == 0:
		return WrapError(ErrNoData, errMissing("treasury"))
	case len(s.Dividends) == 0:
		return WrapError(ErrNoData, errMissing("dividends"))
	case len(s.Flows) == 0:
		return WrapError(ErrNoData, errMissing("cash flow statements"))
	}
	return nil
}

// YearFromDate extracts the leading four digit year of an ISO date, 0 if absent
func YearFromDate(date string) int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
