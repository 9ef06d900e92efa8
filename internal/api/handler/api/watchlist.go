// internal/api/handler/api/watchlist.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/newthinker/ddm/internal/api/response"
	"github.com/newthinker/ddm/internal/collector"
	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/report"
)

// WatchlistApp defines the interface needed from app.App.
type WatchlistApp interface {
	GetWatchlist() []string
	AddToWatchlistWithName(symbol, name string) bool
	RemoveFromWatchlist(symbol string) bool
	ValueWatchlist(ctx context.Context) []*report.Report
	LatestValues() ([]*report.Report, time.Time)
}

// WatchlistHandler handles watchlist API requests.
type WatchlistHandler struct {
	app WatchlistApp
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(app WatchlistApp) *WatchlistHandler {
	return &WatchlistHandler{app: app}
}

// AddRequest is the request body for adding a symbol.
type AddRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name,omitempty"`
}

// WatchlistValue is one row of the watchlist values response.
type WatchlistValue struct {
	Symbol       string   `json:"symbol"`
	ValueOfStock *float64 `json:"value_of_stock,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// List returns all symbols in the watchlist.
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	symbols := h.app.GetWatchlist()
	response.JSON(w, http.StatusOK, map[string]any{
		"symbols": symbols,
		"count":   len(symbols),
	})
}

// Add adds a symbol to the watchlist.
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigInvalid, err))
		return
	}

	if req.Symbol == "" {
		response.Error(w, http.StatusBadRequest,
			core.WrapError(core.ErrConfigMissing, nil))
		return
	}

	symbol, err := collector.NormalizeSymbol(req.Symbol)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	added := h.app.AddToWatchlistWithName(symbol, req.Name)

	status := http.StatusCreated
	if !added {
		status = http.StatusOK
	}
	response.JSON(w, status, map[string]any{
		"symbol": symbol,
		"added":  added,
	})
}

// Remove removes a symbol from the watchlist.
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request, symbol string) {
	removed := h.app.RemoveFromWatchlist(symbol)
	if !removed {
		response.Error(w, http.StatusNotFound, core.ErrSymbolNotFound)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  symbol,
		"removed": true,
	})
}

// Values returns the value of stock of every watchlist symbol. The cached
// refresh is served when one exists unless refresh=true is given.
func (h *WatchlistHandler) Values(w http.ResponseWriter, r *http.Request) {
	reports, at := h.app.LatestValues()
	if reports == nil || r.URL.Query().Get("refresh") == "true" {
		reports = h.app.ValueWatchlist(r.Context())
		at = time.Now()
	}

	values := make([]WatchlistValue, len(reports))
	for i, rep := range reports {
		values[i] = WatchlistValue{
			Symbol:       rep.Symbol,
			ValueOfStock: rep.ValueOfStock,
			Currency:     rep.Currency,
			Warnings:     rep.Warnings,
			Error:        rep.Error,
		}
		if rep.Result != nil {
			price := rep.Result.Price
			values[i].Price = &price
		}
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"values":     values,
		"count":      len(values),
		"updated_at": at.UTC(),
	})
}
