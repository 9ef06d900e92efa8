package app

import (
	"context"
	"fmt"

	"github.com/newthinker/ddm/internal/core"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartSchedule refreshes the watchlist on a standard five field cron
// schedule instead of a fixed interval. It blocks until ctx is done or Stop
// is called.
func (a *App) StartSchedule(ctx context.Context, spec string) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return core.WrapError(core.ErrConfigInvalid, fmt.Errorf("refresh schedule %q: %w", spec, err))
	}

	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return fmt.Errorf("app already running")
	}
	a.running = true

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.mu.Unlock()

	c := cron.New()
	c.Schedule(schedule, cron.FuncJob(func() { a.RunOnce(ctx) }))

	a.logger.Info("DDM starting",
		zap.Int("watchlist_count", len(a.GetWatchlist())),
		zap.String("schedule", spec),
	)

	a.RunOnce(ctx)
	c.Start()

	<-ctx.Done()
	// wait for a refresh in flight
	<-c.Stop().Done()

	a.logger.Info("DDM shutting down")
	a.mu.Lock()
	a.running = false
	a.mu.Unlock()
	return ctx.Err()
}
