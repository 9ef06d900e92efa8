// Package fmp collects snapshots from the Financial Modeling Prep API. LTM
// statements are summed from the last four quarters and annual dividends and
// prices are derived from the daily histories.
package fmp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/ddm/internal/collector"
	"github.com/newthinker/ddm/internal/core"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the API root; endpoint paths carry their version
	DefaultBaseURL = "https://financialmodelingprep.com/api"

	// DefaultTimeout bounds one whole snapshot fetch
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is requests per second
	DefaultRateLimit = 10

	maxBodySize = 10 << 20

	// statement history requested per annual series
	annualLimit = 15
	// years of daily closes requested for year end prices
	priceHistoryYears = annualLimit + 1
)

// Upstream requests. Several snapshot series are derived from one of these
// rather than fetched as is.
const (
	reqIncome          = "income"
	reqIncomeQuarters  = "income_quarters"
	reqBalance         = "balance"
	reqBalanceQuarter  = "balance_quarter"
	reqFlows           = "flows"
	reqFlowsQuarters   = "flows_quarters"
	reqProfile         = "profile"
	reqDividendHistory = "dividend_history"
	reqPriceHistory    = "price_history"
	reqTreasury        = "treasury"
)

var requests = []string{
	reqIncome, reqIncomeQuarters, reqBalance, reqBalanceQuarter, reqFlows,
	reqFlowsQuarters, reqProfile, reqDividendHistory, reqPriceHistory, reqTreasury,
}

type endpoint struct {
	path  string // %s is the symbol
	query url.Values
	dates func(now time.Time) url.Values
}

func (e endpoint) symbolScoped() bool {
	return strings.Contains(e.path, "%s")
}

var endpoints = map[string]endpoint{
	reqIncome:          {path: "v3/income-statement/%s", query: url.Values{"limit": {strconv.Itoa(annualLimit)}}},
	reqIncomeQuarters:  {path: "v3/income-statement/%s", query: url.Values{"period": {"quarter"}, "limit": {"4"}}},
	reqBalance:         {path: "v3/balance-sheet-statement/%s", query: url.Values{"limit": {strconv.Itoa(annualLimit)}}},
	reqBalanceQuarter:  {path: "v3/balance-sheet-statement/%s", query: url.Values{"period": {"quarter"}, "limit": {"1"}}},
	reqFlows:           {path: "v3/cash-flow-statement/%s", query: url.Values{"limit": {strconv.Itoa(annualLimit)}}},
	reqFlowsQuarters:   {path: "v3/cash-flow-statement/%s", query: url.Values{"period": {"quarter"}, "limit": {"4"}}},
	reqProfile:         {path: "v3/profile/%s"},
	reqDividendHistory: {path: "v3/historical-price-full/stock_dividend/%s"},
	reqPriceHistory: {path: "v3/historical-price-full/%s", query: url.Values{"serietype": {"line"}},
		dates: func(now time.Time) url.Values {
			return url.Values{"from": {now.AddDate(-priceHistoryYears, 0, 0).Format(time.DateOnly)}}
		}},
	reqTreasury: {path: "v4/treasury",
		dates: func(now time.Time) url.Values {
			return url.Values{
				"from": {now.AddDate(0, 0, -14).Format(time.DateOnly)},
				"to":   {now.Format(time.DateOnly)},
			}
		}},
}

// FMP implements collector.Collector over HTTP
type FMP struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures FMP
type Option func(*FMP)

// WithBaseURL sets a custom base URL
func WithBaseURL(baseURL string) Option {
	return func(f *FMP) {
		f.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(f *FMP) {
		f.client = client
	}
}

// WithRateLimit sets requests per second
func WithRateLimit(requestsPerSecond int) Option {
	return func(f *FMP) {
		f.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithLogger sets a logger
func WithLogger(logger *zap.Logger) Option {
	return func(f *FMP) {
		f.logger = logger
	}
}

// New creates a collector using apiKey
func New(apiKey string, opts ...Option) *FMP {
	f := &FMP{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		timeout: DefaultTimeout,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FMP) Name() string {
	return "fmp"
}

// Init applies configuration; an API key is required.
func (f *FMP) Init(cfg collector.Config) error {
	if cfg.APIKey != "" {
		f.apiKey = cfg.APIKey
	}
	if f.apiKey == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("fmp api_key"))
	}
	if cfg.BaseURL != "" {
		WithBaseURL(cfg.BaseURL)(f)
	}
	if cfg.RateLimit > 0 {
		WithRateLimit(cfg.RateLimit)(f)
	}
	if cfg.Timeout > 0 {
		f.timeout = cfg.Timeout
		f.client.Timeout = cfg.Timeout
	}
	return nil
}

// FetchSnapshot issues the ten upstream requests concurrently, bounded by
// the rate limiter, and derives the snapshot series from them. Any failed
// request fails the fetch.
func (f *FMP) FetchSnapshot(ctx context.Context, symbol string) (*core.Snapshot, error) {
	symbol, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	now := f.now()
	bodies := make(map[string][]byte, len(requests))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range requests {
		g.Go(func() error {
			body, err := f.get(gctx, name, symbol, now)
			if err != nil {
				return err
			}
			mu.Lock()
			bodies[name] = body
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, core.WrapError(core.ErrCollectorTimeout, fmt.Errorf("%s after %s", symbol, f.timeout))
		}
		return nil, err
	}

	s, err := assemble(symbol, bodies, now)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, err)
	}
	if len(s.Income) == 0 && len(s.Flows) == 0 && s.Profile.Symbol == "" {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("%s", symbol))
	}

	f.logger.Debug("snapshot fetched",
		zap.String("symbol", symbol),
		zap.Int("income", len(s.Income)),
		zap.Int("dividends", len(s.Dividends)),
	)
	return s, nil
}

func (f *FMP) url(name, symbol string, now time.Time) string {
	ep := endpoints[name]
	params := url.Values{}
	for k, v := range ep.query {
		params[k] = v
	}
	if ep.dates != nil {
		for k, v := range ep.dates(now) {
			params[k] = v
		}
	}
	params.Set("apikey", f.apiKey)

	p := ep.path
	if ep.symbolScoped() {
		p = fmt.Sprintf(p, url.PathEscape(symbol))
	}
	return fmt.Sprintf("%s/%s?%s", f.baseURL, p, params.Encode())
}

func (f *FMP) get(ctx context.Context, name, symbol string, now time.Time) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, core.WrapError(core.ErrCollectorTimeout, fmt.Errorf("%s: rate limiter: %w", name, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url(name, symbol, now), nil)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s: creating request: %w", name, err))
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s: %w", name, err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, core.WrapError(core.ErrCollectorFailed, fmt.Errorf("%s: reading body: %w", name, err))
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && endpoints[name].symbolScoped():
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("%s: %s", name, symbol))
	case resp.StatusCode != http.StatusOK:
		return nil, core.WrapError(core.ErrCollectorFailed,
			fmt.Errorf("%s: unexpected status %d: %s", name, resp.StatusCode, truncate(body, 200)))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
