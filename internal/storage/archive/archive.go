package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/report"
	"github.com/newthinker/ddm/internal/snapshot"
)

const (
	snapshotsDir = "snapshots"
	reportsDir   = "reports"
)

// SnapshotPath is where the snapshot document of symbol lives
func SnapshotPath(symbol string) string {
	return path.Join(snapshotsDir, strings.ToUpper(symbol)+".json")
}

// ReportPath files reports by symbol and creation day
func ReportPath(r *report.Report) string {
	return path.Join(reportsDir, strings.ToUpper(r.Symbol), r.CreatedAt.Format("2006/01/02"), r.ID+".json")
}

// Archive keeps snapshots and reports in a Storage
type Archive struct {
	store Storage
}

// New wraps store
func New(store Storage) *Archive {
	return &Archive{store: store}
}

// SaveSnapshot replaces the stored snapshot of s.Symbol
func (a *Archive) SaveSnapshot(ctx context.Context, s *core.Snapshot) error {
	data, err := snapshot.Marshal(s)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return a.store.Write(ctx, SnapshotPath(s.Symbol), data)
}

// LoadSnapshot reads the stored snapshot of symbol.
// A symbol that was never stored returns ErrSymbolNotFound.
func (a *Archive) LoadSnapshot(ctx context.Context, symbol string) (*core.Snapshot, error) {
	data, err := a.store.Read(ctx, SnapshotPath(symbol))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, core.WrapError(core.ErrSymbolNotFound, fmt.Errorf("no archived snapshot for %s", symbol))
	}
	if err != nil {
		return nil, err
	}
	s, err := snapshot.Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Symbol == "" {
		s.Symbol = strings.ToUpper(symbol)
	}
	return s, nil
}

// Symbols lists every symbol with a stored snapshot
func (a *Archive) Symbols(ctx context.Context) ([]string, error) {
	paths, err := a.store.List(ctx, snapshotsDir)
	if err != nil {
		return nil, err
	}
	symbols := make([]string, 0, len(paths))
	for _, p := range paths {
		if path.Ext(p) == ".json" {
			symbols = append(symbols, strings.TrimSuffix(path.Base(p), ".json"))
		}
	}
	slices.Sort(symbols)
	return symbols, nil
}

// SaveReport stores r and returns its path
func (a *Archive) SaveReport(ctx context.Context, r *report.Report) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", core.WrapError(core.ErrStorageFailed, err)
	}
	p := ReportPath(r)
	if err := a.store.Write(ctx, p, data); err != nil {
		return "", err
	}
	return p, nil
}

// LoadReport reads a report stored by SaveReport
func (a *Archive) LoadReport(ctx context.Context, p string) (*report.Report, error) {
	data, err := a.store.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	var r report.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}
	return &r, nil
}

// ListReports returns the stored report paths of symbol sorted by day
func (a *Archive) ListReports(ctx context.Context, symbol string) ([]string, error) {
	paths, err := a.store.List(ctx, path.Join(reportsDir, strings.ToUpper(symbol)))
	if err != nil {
		return nil, err
	}
	slices.Sort(paths)
	return paths, nil
}
