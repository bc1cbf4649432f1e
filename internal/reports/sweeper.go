package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/JaimeStill/meridian/pkg/lifecycle"
)

const staleReason = "generation timed out"

// Sweeper periodically fails reports left pending or generating, which
// happens when the process stops while a task is in flight.
type Sweeper struct {
	store      Store
	schedule   string
	staleAfter time.Duration
	cron       *cron.Cron
	logger     *slog.Logger
	now        func() time.Time
}

// NewSweeper creates a Sweeper that runs on schedule, a standard cron
// expression or descriptor such as "@every 5m".
func NewSweeper(store Store, schedule string, staleAfter time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		store:      store,
		schedule:   schedule,
		staleAfter: staleAfter,
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.DiscardLogger),
			cron.SkipIfStillRunning(cron.DiscardLogger),
		)),
		logger: logger.With("system", "reports", "component", "sweeper"),
		now:    time.Now,
	}
}

// Start registers the sweep and stops the scheduler on shutdown, waiting for
// a running sweep to finish.
func (s *Sweeper) Start(lc *lifecycle.Coordinator) error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(lc.Context()); err != nil {
			s.logger.Error("stale report sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule stale report sweep %q: %w", s.schedule, err)
	}

	s.logger.Info("starting stale report sweeper", "schedule", s.schedule, "stale_after", s.staleAfter)
	s.cron.Start()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		<-s.cron.Stop().Done()
		s.logger.Info("stale report sweeper stopped")
	})

	return nil
}

// Sweep fails every pending or generating report not updated within the
// stale window and returns how many were failed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.staleAfter)

	n, err := s.store.FailStale(ctx, cutoff, staleReason)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.logger.Warn("stale reports failed", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
