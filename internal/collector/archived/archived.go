// Package archived serves snapshots previously stored in the archive, for
// offline runs and reproducible valuations.
package archived

import (
	"context"

	"github.com/newthinker/ddm/internal/collector"
	"github.com/newthinker/ddm/internal/core"
	"github.com/newthinker/ddm/internal/storage/archive"
)

// Archived implements collector.Collector over an archive
type Archived struct {
	archive *archive.Archive
}

// New creates a collector reading from a
func New(a *archive.Archive) *Archived {
	return &Archived{archive: a}
}

func (c *Archived) Name() string {
	return "archive"
}

func (c *Archived) Init(cfg collector.Config) error {
	return nil
}

func (c *Archived) FetchSnapshot(ctx context.Context, symbol string) (*core.Snapshot, error) {
	symbol, err := collector.NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	return c.archive.LoadSnapshot(ctx, symbol)
}

// Symbols lists the symbols this collector can serve
func (c *Archived) Symbols(ctx context.Context) ([]string, error) {
	return c.archive.Symbols(ctx)
}
