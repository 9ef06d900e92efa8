package collector

import (
	"context"
	"time"

	"github.com/newthinker/ddm/internal/core"
)

// Config holds collector configuration
type Config struct {
	Enabled   bool
	BaseURL   string
	APIKey    string
	RateLimit int // requests per second
	Timeout   time.Duration
	Extra     map[string]any
}

// Collector assembles the input snapshot of a symbol
type Collector interface {
	Name() string
	Init(cfg Config) error

	// FetchSnapshot returns every series the model reads. Unknown symbols
	// return core.ErrSymbolNotFound.
	FetchSnapshot(ctx context.Context, symbol string) (*core.Snapshot, error)
}
