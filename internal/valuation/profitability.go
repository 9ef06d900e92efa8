package valuation

import (
	"fmt"
	"math"

	"github.com/newthinker/ddm/internal/indicator"
)

// PeriodMetrics holds payout ratio and return on equity for one period
type PeriodMetrics struct {
	Period             Period  `json:"period"`
	PreferredDividends float64 `json:"preferred_dividends"`
	CommonIncome       float64 `json:"common_income"`
	PayoutRatio        float64 `json:"payout_ratio"`
	ROE                float64 `json:"roe"`
	HasROE             bool    `json:"has_roe"`
}

// Profitability is the payout and return on equity history of the window
type Profitability struct {
	Preferred          bool            `json:"preferred"`
	PreferredRatio     float64         `json:"preferred_ratio"`
	Historic           []PeriodMetrics `json:"historic"` // newest first
	LTM                PeriodMetrics   `json:"ltm"`
	AveragePayoutRatio float64         `json:"average_payout_ratio"`
	AverageROE         float64         `json:"average_roe"`
	Warnings           []string        `json:"-"`
}

// PreferredDividendsRatio measures how far total cash dividends stray from
// per share dividends times shares. A large gap means preferred stock.
func PreferredDividendsRatio(p Period) float64 {
	if p.DividendsPaid == 0 {
		return 0
	}
	return math.Abs((math.Abs(p.DividendsPaid) - p.CommonDividends()) / p.DividendsPaid)
}

// HasPreferredStock applies the materiality test to the most recent period
func HasPreferredStock(periods []Period, sensitivity float64) (bool, float64) {
	if len(periods) == 0 {
		return false, 0
	}
	ratio := PreferredDividendsRatio(periods[0])
	return ratio > sensitivity, ratio
}

// ComputeProfitability derives payout ratio and ROE for every historic
// period and the LTM period. The preferred stock decision is taken once
// from the most recent historic period and applied to all of them.
func ComputeProfitability(periods []Period, ltm Period, sensitivity float64) Profitability {
	var p Profitability
	p.Preferred, p.PreferredRatio = HasPreferredStock(periods, sensitivity)

	p.LTM = p.periodMetrics(ltm)
	if ltm.Equity != 0 {
		p.LTM.ROE = p.LTM.CommonIncome / ltm.Equity
		p.LTM.HasROE = true
	}

	payouts := []float64{p.LTM.PayoutRatio}
	var roes []float64

	p.Historic = make([]PeriodMetrics, len(periods))
	for i, period := range periods {
		m := p.periodMetrics(period)
		// equity lags income by one year
		if i+1 < len(periods) && periods[i+1].Equity != 0 {
			m.ROE = m.CommonIncome / periods[i+1].Equity
			m.HasROE = true
			roes = append(roes, m.ROE)
		}
		p.Historic[i] = m
		payouts = append(payouts, m.PayoutRatio)
	}

	p.AveragePayoutRatio = indicator.Mean(payouts)
	p.AverageROE = indicator.Mean(roes)
	return p
}

func (p *Profitability) periodMetrics(period Period) PeriodMetrics {
	m := PeriodMetrics{Period: period}

	if p.Preferred {
		m.PreferredDividends = math.Abs(period.DividendsPaid) - period.CommonDividends()
		if m.PreferredDividends < 0 {
			p.Warnings = append(p.Warnings, fmt.Sprintf(
				"Preferred stock dividends for year %s are negative! Shares outstanding may not be inline with the ones reported.",
				period.Label))
		}
		m.CommonIncome = period.NetIncome - m.PreferredDividends
		m.PayoutRatio = period.CommonDividends() / m.CommonIncome
	} else {
		m.CommonIncome = period.NetIncome
		m.PayoutRatio = math.Abs(period.DividendsPaid) / m.CommonIncome
	}

	if m.CommonIncome <= 0 {
		m.PayoutRatio = 0
	}
	return m
}
