package bridge

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper evicts pending requests older than the wait budget on a fixed
// interval. The interval should be shorter than the budget so staleness
// stays bounded without busy-looping.
type Sweeper struct {
	tracker  *Tracker
	budget   time.Duration
	interval time.Duration
}

// NewSweeper builds a sweeper over tracker. A non-positive interval
// falls back to half the budget.
func NewSweeper(tracker *Tracker, budget, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = budget / 2
	}
	return &Sweeper{tracker: tracker, budget: budget, interval: interval}
}

// Run sweeps until ctx is cancelled. A failure in one pass is logged and
// never terminates the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	slog.Info("expiry sweeper started", "budget", s.budget, "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("expiry sweeper stopped")
			return nil
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Sweeper) sweep() {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("sweep pass panicked", "panic", r)
		}
	}()

	if n := s.tracker.SweepExpired(s.budget); n > 0 {
		slog.Info("stale pending requests evicted", "count", n, "remaining", s.tracker.Len())
	}
}
