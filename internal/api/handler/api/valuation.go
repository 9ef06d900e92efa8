// internal/api/handler/api/valuation.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/newthinker/ddm/internal/api/response"
	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/report"
	"github.com/newthinker/ddm/internal/valuation"
)

// ValuationApp defines the interface needed from app.App.
type ValuationApp interface {
	Value(ctx context.Context, symbol string, o valuation.Overrides, opts valuation.Options) (*report.Report, error)
}

// ValuationHandler handles valuation API requests.
type ValuationHandler struct {
	app ValuationApp
}

// NewValuationHandler creates a new valuation handler.
func NewValuationHandler(app ValuationApp) *ValuationHandler {
	return &ValuationHandler{app: app}
}

// Get values one symbol. Query parameters override assumptions:
// discount_rate (percent), expected_dividend, growth_in_perpetuity,
// linear_regression_weight (0-100), beta, risk_free_rate, market_premium,
// historic_years. watch=true returns the value only; format=text renders
// the report as plain text.
func (h *ValuationHandler) Get(w http.ResponseWriter, r *http.Request, symbol string) {
	q := r.URL.Query()

	o, err := ParseOverrides(q)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	var opts valuation.Options
	if watch := q.Get("watch"); watch != "" {
		opts.WatchOnly, err = strconv.ParseBool(watch)
		if err != nil {
			response.Error(w, http.StatusBadRequest,
				core.WrapError(core.ErrConfigInvalid, fmt.Errorf("watch: %w", err)))
			return
		}
	}

	rep, err := h.app.Value(r.Context(), symbol, o, opts)
	if err != nil {
		status := response.StatusFor(err)
		if status == http.StatusUnprocessableEntity && rep != nil {
			response.ErrorWithData(w, status, err, rep)
			return
		}
		response.Error(w, status, err)
		return
	}

	if q.Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		report.WriteText(w, rep)
		return
	}
	response.JSON(w, http.StatusOK, rep)
}

// ParseOverrides reads assumption overrides from query parameters.
// Absent parameters stay nil; malformed ones return ErrConfigInvalid.
func ParseOverrides(q url.Values) (valuation.Overrides, error) {
	var o valuation.Overrides
	floats := []struct {
		name string
		dst  **float64
	}{
		{"discount_rate", &o.DiscountRate},
		{"expected_dividend", &o.ExpectedDividend},
		{"growth_in_perpetuity", &o.GrowthInPerpetuity},
		{"linear_regression_weight", &o.LinearRegressionWeight},
		{"beta", &o.Beta},
		{"risk_free_rate", &o.RiskFreeRate},
		{"market_premium", &o.MarketPremium},
	}
	for _, f := range floats {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return o, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("%s: %q is not a number", f.name, raw))
		}
		*f.dst = &v
	}

	if raw := q.Get("historic_years"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return o, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("historic_years: %q is not an integer", raw))
		}
		o.HistoricYears = &n
	}

	if w := o.LinearRegressionWeight; w != nil && (*w < 0 || *w > 100) {
		return o, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("linear_regression_weight must be between 0 and 100, got %g", *w))
	}
	return o, nil
}
