package snapshot

import (
	"testing"

	"github.com/newthinker/ddm/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `{
  "symbol": "KO",
  "income": [
    {"date": "2023-12-31", "calendarYear": "2023", "netIncome": 10714000000, "weightedAverageShsOut": 4323000000, "eps": 2.48, "reportedCurrency": "USD"},
    {"date": "2022-12-31", "calendarYear": "2022", "netIncome": 9542000000, "weightedAverageShsOut": 4328000000, "eps": 2.2, "reportedCurrency": "USD"}
  ],
  "income_ltm": {"date": "2024-06-30", "netIncome": 10600000000, "weightedAverageShsOut": 4310000000, "eps": 2.46, "reportedCurrency": "USD"},
  "balance": [
    {"date": "2023-12-31", "calendarYear": "2023", "totalStockholdersEquity": 25941000000},
    {"date": "2022-12-31", "calendarYear": "2022", "totalStockholdersEquity": 24105000000}
  ],
  "balance_quarterly": [
    {"date": "2024-06-30", "totalStockholdersEquity": 26500000000},
    {"date": "2024-03-31", "totalStockholdersEquity": 26000000000}
  ],
  "flows": [
    {"date": "2023-12-31", "calendarYear": "2023", "netIncome": 10714000000, "dividendsPaid": -7952000000, "reportedCurrency": "USD"},
    {"date": "2022-12-31", "calendarYear": "2022", "netIncome": 9542000000, "dividendsPaid": -7616000000, "reportedCurrency": "USD"}
  ],
  "flows_ltm": {"date": "2024-06-30", "netIncome": 10600000000, "dividendsPaid": -8100000000, "reportedCurrency": "USD", "convertedCurrency": "EUR"},
  "profile": [{"symbol": "KO", "price": 60.5, "beta": 0.58, "currency": "USD"}],
  "dividends": [
    {"date": "2024", "adjDividend": 1.88},
    {"date": "2023", "adjDividend": 1.84},
    {"year": 2022, "adjDividend": 1.76}
  ],
  "prices": [
    {"date": "2024-06-28", "close": 63.65},
    {"date": "2023-12-29", "close": 58.93},
    {"date": "2022-12-30", "close": 63.61}
  ],
  "treasury": [{"date": "2024-06-28", "year10": 4.36}]
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(testDocument))
	require.NoError(t, err)

	assert.Equal(t, "KO", s.Symbol)
	require.Len(t, s.Income, 2)
	assert.Equal(t, 2023, s.Income[0].Year)
	assert.Equal(t, 10714e6, s.Income[0].NetIncome)
	assert.Equal(t, 4323e6, s.Income[0].WeightedAverageShsOut)
	assert.Equal(t, 2.48, s.Income[0].EPS)
	assert.Equal(t, "USD", s.Income[0].ReportedCurrency)
	assert.Empty(t, s.Income[0].ConvertedCurrency)

	assert.Equal(t, 10600e6, s.IncomeLTM.NetIncome)
	assert.Equal(t, 2024, s.IncomeLTM.Year)
	assert.Equal(t, 26500e6, s.BalanceQuarterly.TotalStockholdersEquity, "first quarterly sheet is the latest")
	assert.Equal(t, 2022, s.Balance[1].Year)

	assert.Equal(t, -7952e6, s.Flows[0].DividendsPaid)
	assert.Equal(t, "EUR", s.FlowsLTM.ConvertedCurrency)
	assert.Equal(t, "EUR", s.FlowsLTM.ResolvedCurrency())

	assert.Equal(t, 60.5, s.Profile.Price)
	require.NotNil(t, s.Profile.Beta)
	assert.Equal(t, 0.58, *s.Profile.Beta)

	require.Len(t, s.Dividends, 3)
	assert.Equal(t, 2024, s.Dividends[0].Year)
	assert.Equal(t, 2022, s.Dividends[2].Year)
	assert.Equal(t, 1.84, s.Dividends[1].AdjDividend)
	assert.Equal(t, 2023, s.Prices[1].Year)

	require.Len(t, s.Treasury, 1)
	assert.InDelta(t, 0.0436, s.Treasury[0].Year10, 1e-12)

	assert.NoError(t, s.Validate())
}

func TestParse_NullBetaAndMissingSeries(t *testing.T) {
	s, err := Parse([]byte(`{"profile": {"symbol": "XYZ", "beta": null, "currency": "USD"}}`))
	require.NoError(t, err)

	assert.Equal(t, "XYZ", s.Symbol)
	assert.Nil(t, s.Profile.Beta)
	assert.Nil(t, s.Dividends)
	assert.ErrorIs(t, s.Validate(), core.ErrNoData)
}

func TestParse_Invalid(t *testing.T) {
	for _, doc := range []string{`{"income": [`, `[1, 2]`, ``} {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, core.ErrInvalidSnapshot, "document %q", doc)
	}
}

func TestParseSeries(t *testing.T) {
	s := &core.Snapshot{}
	require.NoError(t, ParseSeries(s, Treasury, []byte(`[{"date":"2024-06-28","year10":4.5}]`)))
	require.NoError(t, ParseSeries(s, Profile, []byte(`[{"symbol":"KO","price":60,"beta":0.6,"currency":"USD","convertedCurrency":"EUR"}]`)))
	require.NoError(t, ParseSeries(s, IncomeLTM, []byte(`[{"netIncome":5}]`)))

	assert.InDelta(t, 0.045, s.Treasury[0].Year10, 1e-12)
	assert.Equal(t, "EUR", s.Profile.ResolvedCurrency())
	assert.Equal(t, 5.0, s.IncomeLTM.NetIncome)

	err := ParseSeries(s, Income, []byte(`{"Error Message":"Invalid API KEY."}`))
	assert.ErrorIs(t, err, core.ErrInvalidSnapshot)
	assert.Contains(t, err.Error(), "Invalid API KEY.")

	assert.ErrorIs(t, ParseSeries(s, "estimates", []byte(`[]`)), core.ErrInvalidSnapshot)
	assert.ErrorIs(t, ParseSeries(s, Income, []byte(`not json`)), core.ErrInvalidSnapshot)
}

func TestMarshal_RoundTrip(t *testing.T) {
	s, err := Parse([]byte(testDocument))
	require.NoError(t, err)

	data, err := Marshal(s)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)

	assert.InDelta(t, s.Treasury[0].Year10, back.Treasury[0].Year10, 1e-12)
	back.Treasury = s.Treasury
	assert.Equal(t, s, back)
}

func TestSeries_Complete(t *testing.T) {
	assert.Len(t, Series, 10)
	s := &core.Snapshot{}
	for _, name := range Series {
		assert.NoError(t, ParseSeries(s, name, []byte(`[]`)), name)
	}
}
