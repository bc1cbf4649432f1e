// Package dispatch runs detached background tasks that outlive the request
// that scheduled them while remaining bound to the application lifecycle.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/meridian/pkg/lifecycle"
)

// Task is a unit of detached work.
type Task func(ctx context.Context) error

// Dispatcher schedules tasks in their own goroutines. There is no pool, queue,
// or deduplication: every call to Go starts one goroutine immediately.
type Dispatcher struct {
	ctx    context.Context
	group  errgroup.Group
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// New creates a Dispatcher. Tasks scheduled before Start receive a background context.
func New(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		ctx:    context.Background(),
		logger: logger.With("system", "dispatch"),
	}
}

// Start binds task contexts to the lifecycle and drains in-flight tasks on shutdown.
func (d *Dispatcher) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting dispatcher")

	d.mu.Lock()
	d.ctx = lc.Context()
	d.mu.Unlock()

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.logger.Info("draining dispatched tasks")
		d.Wait()
		d.logger.Info("dispatcher stopped")
	})

	return nil
}

// Go schedules fn under name. The returned error, or a recovered panic, is
// logged; nothing is reported back to the caller. Tasks scheduled after Wait
// has been called are dropped.
func (d *Dispatcher) Go(name string, fn Task) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, task dropped", "task", name)
		return
	}

	ctx := d.ctx
	d.group.Go(func() error {
		d.run(ctx, name, fn)
		return nil
	})
}

// Wait closes the dispatcher to new tasks and blocks until every scheduled task returns.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.group.Wait()
}

func (d *Dispatcher) run(ctx context.Context, name string, fn Task) {
	start := time.Now()
	logger := d.logger.With("task", name)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("task panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
		}
	}()

	if err := fn(ctx); err != nil {
		logger.Error("task failed", "error", err, "duration", time.Since(start))
		return
	}

	logger.Debug("task completed", "duration", time.Since(start))
}
