package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/newthinker/ddm/internal/collector"
	"github.com/newthinker/ddm/internal/config"
	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/metrics"
	"github.com/newthinker/ddm/internal/report"
	"github.com/newthinker/ddm/internal/storage/archive"
	"github.com/newthinker/ddm/internal/valuation"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Run outcomes as recorded in metrics
const (
	OutcomeOK      = "ok"
	OutcomeAborted = "aborted"
	OutcomeError   = "error"
)

// watchlistConcurrency bounds parallel runs during a watchlist refresh
const watchlistConcurrency = 4

// WatchlistItem represents an item in the watchlist
type WatchlistItem struct {
	Symbol string
	Name   string
}

// App is the valuation service: it fetches snapshots, runs the model and
// archives the resulting reports.
type App struct {
	cfg        *config.Config
	logger     *zap.Logger
	model      *valuation.Model
	defaults   valuation.Overrides
	collectors *collector.Registry
	source     string
	archive    *archive.Archive
	metrics    *metrics.Registry

	watchlistItems []WatchlistItem
	watchlistSet   map[string]struct{}
	interval       time.Duration
	latest         []*report.Report
	lastRefresh    time.Time

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
}

// New creates a new App instance from a validated config
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	vcfg, err := cfg.Model.Valuation()
	if err != nil {
		return nil, err
	}
	model, err := valuation.NewModel(vcfg, logger.Named("model"))
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		model:          model,
		defaults:       cfg.Assumptions.Overrides(),
		collectors:     collector.NewRegistry(),
		source:         cfg.Collector.Source,
		watchlistItems: []WatchlistItem{},
		watchlistSet:   make(map[string]struct{}),
		interval:       cfg.Server.RefreshInterval,
	}
	if a.interval <= 0 {
		a.interval = time.Hour
	}
	for _, item := range cfg.Watchlist {
		a.AddToWatchlistWithName(item.Symbol, item.Name)
	}
	return a, nil
}

// RegisterCollector adds a collector to the app
func (a *App) RegisterCollector(c collector.Collector) {
	a.collectors.Register(c)
}

// SetSource selects the collector snapshots are fetched from
func (a *App) SetSource(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.source = name
}

// SetArchive enables snapshot and report archiving
func (a *App) SetArchive(ar *archive.Archive) {
	a.archive = ar
}

// SetMetrics attaches a metrics registry
func (a *App) SetMetrics(m *metrics.Registry) {
	a.metrics = m
	if m == nil {
		return
	}
	a.mu.RLock()
	n := len(a.watchlistItems)
	a.mu.RUnlock()
	m.SetWatchlistSize(n)
}

// SetInterval sets the watchlist refresh interval
func (a *App) SetInterval(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interval = d
}

// Model returns the valuation model
func (a *App) Model() *valuation.Model {
	return a.model
}

// Value runs the model for one symbol. The returned report is never nil; on
// failure it carries the error message alongside any warnings produced.
// Request overrides take precedence over the configured assumptions.
func (a *App) Value(ctx context.Context, symbol string, o valuation.Overrides, opts valuation.Options) (*report.Report, error) {
	start := time.Now()
	variant := string(a.model.Config().Variant)

	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return a.fail(report.NewCollector(symbol), variant, err, start)
	}
	out := report.NewCollector(sym)
	log := a.logger.With(zap.String("symbol", sym))

	snap, err := a.fetch(ctx, sym)
	if err != nil {
		log.Warn("snapshot fetch failed", zap.Error(err))
		return a.fail(out, variant, err, start)
	}

	result, err := a.model.Run(snap, a.defaults.Merge(o), opts, report.NewLogReporter(out, log))
	r := out.Finish(result, err)

	outcome := outcomeOf(err)
	if a.metrics != nil {
		a.metrics.RecordValuation(variant, outcome, len(r.Warnings), time.Since(start).Seconds())
		if outcome == OutcomeAborted {
			a.metrics.RecordAbort(codeOf(err))
		}
	}
	if err != nil {
		log.Info("valuation stopped", zap.String("outcome", outcome), zap.Error(err))
		return r, err
	}

	if !opts.WatchOnly {
		a.archiveReport(ctx, r)
	}
	log.Info("valuation complete",
		zap.Float64("value_of_stock", result.ValueOfStock),
		zap.String("currency", result.Currency),
		zap.Duration("duration", time.Since(start)),
	)
	return r, nil
}

func (a *App) fail(out *report.Collector, variant string, err error, start time.Time) (*report.Report, error) {
	if a.metrics != nil {
		a.metrics.RecordValuation(variant, OutcomeError, 0, time.Since(start).Seconds())
	}
	return out.Finish(nil, err), err
}

// fetch loads a snapshot from the selected collector and archives it when
// configured to
func (a *App) fetch(ctx context.Context, symbol string) (*core.Snapshot, error) {
	a.mu.RLock()
	source := a.source
	a.mu.RUnlock()

	c, err := a.collectors.Lookup(source)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	snap, err := c.FetchSnapshot(ctx, symbol)
	if a.metrics != nil {
		a.metrics.RecordSnapshotFetch(c.Name(), err, time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}

	if a.archive != nil && a.cfg.Collector.ArchiveSnapshots && c.Name() != config.SourceArchive {
		if err := a.archive.SaveSnapshot(ctx, snap); err != nil {
			a.logger.Warn("failed to archive snapshot", zap.String("symbol", symbol), zap.Error(err))
		}
	}
	return snap, nil
}

func (a *App) archiveReport(ctx context.Context, r *report.Report) {
	if a.archive == nil || !a.cfg.Storage.ArchiveReports {
		return
	}
	path, err := a.archive.SaveReport(ctx, r)
	if a.metrics != nil {
		a.metrics.RecordReportArchived(err)
	}
	if err != nil {
		a.logger.Warn("failed to archive report", zap.String("symbol", r.Symbol), zap.Error(err))
		return
	}
	a.logger.Debug("report archived", zap.String("path", path))
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, core.ErrZeroDividend),
		errors.Is(err, core.ErrCurrencyMismatch),
		errors.Is(err, core.ErrInvalidModelInputs):
		return OutcomeAborted
	default:
		return OutcomeError
	}
}

func codeOf(err error) string {
	var ce *core.Error
	if errors.As(err, &ce) {
		return ce.Code
	}
	return "UNKNOWN"
}

// ValueWatchlist values every watchlist symbol in value-only mode. Reports
// come back in watchlist order; failed symbols carry their error.
func (a *App) ValueWatchlist(ctx context.Context) []*report.Report {
	items := a.GetWatchlistItems()
	reports := make([]*report.Report, len(items))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(watchlistConcurrency)
	for i, item := range items {
		g.Go(func() error {
			reports[i], _ = a.Value(ctx, item.Symbol, valuation.Overrides{}, valuation.Options{WatchOnly: true})
			return nil
		})
	}
	_ = g.Wait()
	return reports
}

// Start begins the watchlist refresh loop
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	interval := a.interval
	a.mu.Unlock()

	a.logger.Info("DDM starting",
		zap.Int("watchlist_count", len(a.GetWatchlist())),
		zap.Duration("interval", interval),
	)

	a.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("DDM shutting down")
			a.mu.Lock()
			a.running = false
			a.mu.Unlock()
			return ctx.Err()
		case <-ticker.C:
			a.RunOnce(ctx)
		}
	}
}

// Stop stops the refresh loop
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		a.cancel()
	}
}

// RunOnce refreshes the cached watchlist values
func (a *App) RunOnce(ctx context.Context) {
	if len(a.GetWatchlist()) == 0 {
		a.logger.Debug("no symbols in watchlist")
		return
	}

	reports := a.ValueWatchlist(ctx)
	if ctx.Err() != nil {
		return
	}

	a.mu.Lock()
	a.latest = reports
	a.lastRefresh = time.Now()
	a.mu.Unlock()

	failed := 0
	for _, r := range reports {
		if r.Error != "" {
			failed++
		}
	}
	a.logger.Debug("watchlist refreshed", zap.Int("symbols", len(reports)), zap.Int("failed", failed))
}

// LatestValues returns the last refreshed watchlist reports and when they
// were produced; nil before the first refresh.
func (a *App) LatestValues() ([]*report.Report, time.Time) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.latest == nil {
		return nil, time.Time{}
	}
	out := make([]*report.Report, len(a.latest))
	copy(out, a.latest)
	return out, a.lastRefresh
}

// GetStats returns application statistics
func (a *App) GetStats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"running":      a.running,
		"watchlist":    len(a.watchlistItems),
		"collectors":   a.collectors.Names(),
		"source":       a.source,
		"variant":      string(a.model.Config().Variant),
		"archive":      a.archive != nil,
		"last_refresh": a.lastRefresh,
	}
}

// GetWatchlist returns the current watchlist symbols.
func (a *App) GetWatchlist() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]string, len(a.watchlistItems))
	for i, item := range a.watchlistItems {
		result[i] = item.Symbol
	}
	return result
}

// GetWatchlistItems returns the full watchlist items.
func (a *App) GetWatchlistItems() []WatchlistItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	result := make([]WatchlistItem, len(a.watchlistItems))
	copy(result, a.watchlistItems)
	return result
}

// SetWatchlist replaces the watchlist; invalid and duplicate symbols are
// skipped.
func (a *App) SetWatchlist(symbols []string) {
	a.mu.Lock()
	a.watchlistItems = []WatchlistItem{}
	a.watchlistSet = make(map[string]struct{}, len(symbols))
	a.mu.Unlock()
	for _, s := range symbols {
		a.AddToWatchlist(s)
	}
}

// AddToWatchlist adds a symbol to the watchlist.
func (a *App) AddToWatchlist(symbol string) bool {
	return a.AddToWatchlistWithName(symbol, "")
}

// AddToWatchlistWithName adds a symbol with a display name. It reports
// whether the symbol was added.
func (a *App) AddToWatchlistWithName(symbol, name string) bool {
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		a.logger.Warn("ignoring invalid watchlist symbol", zap.String("symbol", symbol))
		return false
	}

	a.mu.Lock()
	if _, exists := a.watchlistSet[sym]; exists {
		a.mu.Unlock()
		return false
	}
	a.watchlistSet[sym] = struct{}{}
	if name == "" {
		name = sym
	}
	a.watchlistItems = append(a.watchlistItems, WatchlistItem{Symbol: sym, Name: name})
	n := len(a.watchlistItems)
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.SetWatchlistSize(n)
	}
	return true
}

// RemoveFromWatchlist removes a symbol from the watchlist.
func (a *App) RemoveFromWatchlist(symbol string) bool {
	sym, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return false
	}

	a.mu.Lock()
	if _, exists := a.watchlistSet[sym]; !exists {
		a.mu.Unlock()
		return false
	}
	delete(a.watchlistSet, sym)
	for i, item := range a.watchlistItems {
		if item.Symbol == sym {
			a.watchlistItems = append(a.watchlistItems[:i], a.watchlistItems[i+1:]...)
			break
		}
	}
	n := len(a.watchlistItems)
	a.mu.Unlock()

	if a.metrics != nil {
		a.metrics.SetWatchlistSize(n)
	}
	return true
}

// GetCollectors returns all registered collectors.
func (a *App) GetCollectors() []collector.Collector {
	return a.collectors.GetAll()
}
