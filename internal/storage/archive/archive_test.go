package archive

import (
	"context"
	"testing"
	"time"

	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/report"
	"github.com/newthinker/ddm/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArchive(t *testing.T) *Archive {
	t.Helper()
	l, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	return New(l)
}

func testSnapshot(symbol string) *core.Snapshot {
	beta := 0.6
	return &core.Snapshot{
		Symbol:    symbol,
		Income:    []core.IncomeStatement{{Date: "2023-12-31", Year: 2023, NetIncome: 10e9, WeightedAverageShsOut: 4e9}},
		Balance:   []core.BalanceSheet{{Date: "2023-12-31", Year: 2023, TotalStockholdersEquity: 25e9}},
		Flows:     []core.CashFlowStatement{{Date: "2023-12-31", Year: 2023, DividendsPaid: -7e9, ReportedCurrency: "USD"}},
		Profile:   core.Profile{Symbol: symbol, Price: 60, Beta: &beta, Currency: "USD"},
		Dividends: []core.DividendRecord{{Date: "2024", Year: 2024, AdjDividend: 1.9}, {Date: "2023", Year: 2023, AdjDividend: 1.84}},
		Prices:    []core.PricePoint{{Date: "2024-06-28", Year: 2024, Close: 62}},
		Treasury:  []core.TreasuryYield{{Date: "2024-06-28", Year10: 0.05}},
	}
}

func TestArchive_Snapshot(t *testing.T) {
	a := newArchive(t)
	ctx := context.Background()

	require.NoError(t, a.SaveSnapshot(ctx, testSnapshot("KO")))
	require.NoError(t, a.SaveSnapshot(ctx, testSnapshot("PEP")))

	s, err := a.LoadSnapshot(ctx, "ko")
	require.NoError(t, err)
	assert.Equal(t, "KO", s.Symbol)
	assert.Equal(t, 10e9, s.Income[0].NetIncome)
	assert.InDelta(t, 0.05, s.Treasury[0].Year10, 1e-12)
	assert.Equal(t, 0.6, *s.Profile.Beta)
	assert.NoError(t, s.Validate())

	symbols, err := a.Symbols(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"KO", "PEP"}, symbols)
}

func TestArchive_LoadSnapshot_Missing(t *testing.T) {
	_, err := newArchive(t).LoadSnapshot(context.Background(), "NOPE")
	assert.ErrorIs(t, err, core.ErrSymbolNotFound)
}

func TestArchive_Symbols_Empty(t *testing.T) {
	symbols, err := newArchive(t).Symbols(context.Background())
	require.NoError(t, err)
	assert.Empty(t, symbols)
}

func TestArchive_Reports(t *testing.T) {
	a := newArchive(t)
	ctx := context.Background()

	c := report.NewCollector("KO")
	c.SetEstimatedValue(26.74, "USD")
	c.Context([]valuation.Table{{
		Name:    "Historic and Projected Dividends (USD)",
		Rows:    []string{"Dividends", "Growth Rates"},
		Columns: []string{"2023", "2024"},
		Data:    [][]any{{1.84, 1.9}, {nil, 0.0326}},
	}})
	r := c.Report()
	r.CreatedAt = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	p, err := a.SaveReport(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, "reports/KO/2024/07/01/"+r.ID+".json", p)

	back, err := a.LoadReport(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, r.ID, back.ID)
	assert.Equal(t, 26.74, *back.ValueOfStock)
	assert.Nil(t, back.Tables[0].Data[1][0])
	assert.Equal(t, 0.0326, back.Tables[0].Data[1][1])

	paths, err := a.ListReports(ctx, "ko")
	require.NoError(t, err)
	assert.Equal(t, []string{p}, paths)
}
