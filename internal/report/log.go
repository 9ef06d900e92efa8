package report

import (
	"github.com/newthinker/ddm/internal/valuation"
	"go.uber.org/zap"
)

// LogReporter forwards to another reporter and logs every warning
type LogReporter struct {
	next   valuation.Reporter
	logger *zap.Logger
}

// NewLogReporter wraps next; a nil next discards output.
func NewLogReporter(next valuation.Reporter, logger *zap.Logger) *LogReporter {
	if next == nil {
		next = valuation.NopReporter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{next: next, logger: logger}
}

func (l *LogReporter) SetEstimatedValue(value float64, currency string) {
	l.logger.Debug("estimated value", zap.Float64("value", value), zap.String("currency", currency))
	l.next.SetEstimatedValue(value, currency)
}

func (l *LogReporter) Print(value float64, label string, format valuation.Format) {
	l.next.Print(value, label, format)
}

func (l *LogReporter) Warning(message string) {
	l.logger.Warn("valuation warning", zap.String("message", message))
	l.next.Warning(message)
}

func (l *LogReporter) Chart(chart valuation.Chart) {
	l.next.Chart(chart)
}

func (l *LogReporter) Context(tables []valuation.Table) {
	l.next.Context(tables)
}
