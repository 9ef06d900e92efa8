// Package report collects the output of a valuation run into a document
// that can be archived, served as JSON or rendered as text.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/newthinker/ddm/internal/valuation"
)

// Line is a single printed metric
type Line struct {
	Label  string           `json:"label"`
	Value  float64          `json:"value"`
	Format valuation.Format `json:"format"`
}

// Report is everything a run sent to its reporter
type Report struct {
	ID           string            `json:"id"`
	Symbol       string            `json:"symbol"`
	CreatedAt    time.Time         `json:"created_at"`
	Currency     string            `json:"currency,omitempty"`
	ValueOfStock *float64          `json:"value_of_stock,omitempty"`
	Lines        []Line            `json:"lines,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	Charts       []valuation.Chart `json:"charts,omitempty"`
	Tables       []valuation.Table `json:"tables,omitempty"`
	Result       *valuation.Result `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Collector is a valuation.Reporter that builds a Report
type Collector struct {
	report *Report
}

// NewCollector starts an empty report for symbol
func NewCollector(symbol string) *Collector {
	return &Collector{report: &Report{
		ID:        uuid.New().String(),
		Symbol:    symbol,
		CreatedAt: time.Now().UTC(),
	}}
}

// Report returns the report built so far
func (c *Collector) Report() *Report {
	return c.report
}

func (c *Collector) SetEstimatedValue(value float64, currency string) {
	c.report.ValueOfStock = &value
	c.report.Currency = currency
}

func (c *Collector) Print(value float64, label string, format valuation.Format) {
	c.report.Lines = append(c.report.Lines, Line{Label: label, Value: value, Format: format})
}

func (c *Collector) Warning(message string) {
	c.report.Warnings = append(c.report.Warnings, message)
}

func (c *Collector) Chart(chart valuation.Chart) {
	c.report.Charts = append(c.report.Charts, chart)
}

func (c *Collector) Context(tables []valuation.Table) {
	c.report.Tables = append(c.report.Tables, tables...)
}

// Finish attaches the run outcome
func (c *Collector) Finish(result *valuation.Result, err error) *Report {
	c.report.Result = result
	if err != nil {
		c.report.Error = err.Error()
	}
	return c.report
}
