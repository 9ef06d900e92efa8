package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/newthinker/ddm/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestCollector(t *testing.T) {
	c := NewCollector("KO")
	_, err := uuid.Parse(c.Report().ID)
	require.NoError(t, err)

	c.SetEstimatedValue(25.5, "USD")
	c.Print(25.5, "Estimated value (USD)", valuation.FormatNumber)
	c.Warning("careful")
	c.Chart(valuation.Chart{Title: "dividends"})
	c.Context([]valuation.Table{{Name: "a"}, {Name: "b"}})

	r := c.Finish(&valuation.Result{Symbol: "KO"}, nil)
	assert.Equal(t, "KO", r.Symbol)
	require.NotNil(t, r.ValueOfStock)
	assert.Equal(t, 25.5, *r.ValueOfStock)
	assert.Equal(t, "USD", r.Currency)
	assert.Equal(t, []Line{{Label: "Estimated value (USD)", Value: 25.5, Format: valuation.FormatNumber}}, r.Lines)
	assert.Equal(t, []string{"careful"}, r.Warnings)
	assert.Len(t, r.Charts, 1)
	assert.Len(t, r.Tables, 2)
	assert.Empty(t, r.Error)
	assert.Equal(t, "KO", r.Result.Symbol)
}

func TestCollector_FinishWithError(t *testing.T) {
	c := NewCollector("KO")
	c.Warning("A zero dividend was encountered!")

	r := c.Finish(nil, errors.New("boom"))
	assert.Nil(t, r.ValueOfStock)
	assert.Equal(t, "boom", r.Error)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "value_of_stock")
	assert.Contains(t, string(data), `"error":"boom"`)
}

func TestNewCollector_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, NewCollector("KO").Report().ID, NewCollector("KO").Report().ID)
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	logger := zap.New(zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.WarnLevel))

	c := NewCollector("KO")
	l := NewLogReporter(c, logger)
	l.SetEstimatedValue(10, "USD")
	l.Print(10, "Estimated value (USD)", valuation.FormatNumber)
	l.Warning("Preferred stock dividends for year 2022 are negative!")
	l.Chart(valuation.Chart{})
	l.Context([]valuation.Table{{}})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Preferred stock dividends for year 2022 are negative!", entry["message"])

	r := c.Report()
	assert.Len(t, r.Lines, 1)
	assert.Len(t, r.Warnings, 1)
	assert.Len(t, r.Charts, 1)
	assert.Len(t, r.Tables, 1)
	assert.NotNil(t, r.ValueOfStock)
}

func TestLogReporter_NilArguments(t *testing.T) {
	l := NewLogReporter(nil, nil)
	assert.NotPanics(t, func() {
		l.Warning("nothing listens")
		l.SetEstimatedValue(1, "USD")
	})
}
