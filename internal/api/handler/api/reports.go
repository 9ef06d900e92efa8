// internal/api/handler/api/reports.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/newthinker/ddm/internal/api/response"
	"github.com/newthinker/ddm/internal/collector"
	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/report"
)

// ReportArchive defines the interface needed from archive.Archive.
type ReportArchive interface {
	ListReports(ctx context.Context, symbol string) ([]string, error)
	LoadReport(ctx context.Context, path string) (*report.Report, error)
}

// ReportsHandler serves archived valuation reports.
type ReportsHandler struct {
	archive ReportArchive
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(archive ReportArchive) *ReportsHandler {
	return &ReportsHandler{archive: archive}
}

// List returns the archive paths of every report of symbol, oldest first.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	paths, err := h.archive.ListReports(r.Context(), symbol)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"symbol":  symbol,
		"reports": paths,
		"count":   len(paths),
	})
}

// Latest returns the most recent archived report of symbol.
func (h *ReportsHandler) Latest(w http.ResponseWriter, r *http.Request, symbol string) {
	symbol, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err)
		return
	}

	paths, err := h.archive.ListReports(r.Context(), symbol)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, err)
		return
	}
	if len(paths) == 0 {
		response.Error(w, http.StatusNotFound,
			core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("no archived reports for %s", symbol)))
		return
	}

	// paths are ordered by day only; compare creation times within the last day
	day := path.Dir(paths[len(paths)-1])
	var latest *report.Report
	for i := len(paths) - 1; i >= 0 && path.Dir(paths[i]) == day; i-- {
		rep, err := h.archive.LoadReport(r.Context(), paths[i])
		if err != nil {
			response.Error(w, http.StatusInternalServerError, err)
			return
		}
		if latest == nil || rep.CreatedAt.After(latest.CreatedAt) {
			latest = rep
		}
	}
	response.JSON(w, http.StatusOK, latest)
}
