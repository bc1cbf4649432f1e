// Package lifecycle coordinates startup readiness and graceful shutdown across subsystems.
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// StartupPending is reported by Pending until every startup hook has returned.
const StartupPending = "startup"

// ReadinessChecker reports whether a subsystem is ready to serve traffic.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator manages startup and shutdown hooks for the application lifecycle.
type Coordinator struct {
	ctx        context.Context
	cancel     context.CancelFunc
	startupWg  sync.WaitGroup
	shutdownWg sync.WaitGroup
	ready      bool
	readyMu    sync.RWMutex
	checkers   []namedChecker
}

type namedChecker struct {
	name    string
	checker ReadinessChecker
}

// New creates a Coordinator with a cancellable context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator's context, cancelled on shutdown.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// OnStartup registers a function to run concurrently during startup.
func (c *Coordinator) OnStartup(fn func()) {
	c.startupWg.Go(fn)
}

// OnShutdown registers a function to run concurrently during shutdown.
// Shutdown hooks should block on <-c.Context().Done() before executing cleanup.
func (c *Coordinator) OnShutdown(fn func()) {
	c.shutdownWg.Go(fn)
}

// Track adds a named subsystem whose readiness gates Ready once startup
// hooks complete.
func (c *Coordinator) Track(name string, checker ReadinessChecker) {
	c.readyMu.Lock()
	defer c.readyMu.Unlock()
	c.checkers = append(c.checkers, namedChecker{name: name, checker: checker})
}

// Ready returns true after all startup hooks have completed and every tracked
// subsystem reports ready.
func (c *Coordinator) Ready() bool {
	return len(c.Pending()) == 0
}

// Pending names what is holding readiness back: StartupPending while startup
// hooks run, then each tracked subsystem that is not ready, in Track order.
func (c *Coordinator) Pending() []string {
	c.readyMu.RLock()
	defer c.readyMu.RUnlock()
	if !c.ready {
		return []string{StartupPending}
	}

	var pending []string
	for _, nc := range c.checkers {
		if !nc.checker.Ready() {
			pending = append(pending, nc.name)
		}
	}
	return pending
}

// WaitForStartup blocks until all startup hooks have completed and sets the ready flag.
func (c *Coordinator) WaitForStartup() {
	c.startupWg.Wait()
	c.readyMu.Lock()
	c.ready = true
	c.readyMu.Unlock()
}

// Shutdown cancels the context and waits for shutdown hooks to complete
// within the given timeout.
func (c *Coordinator) Shutdown(timeout time.Duration) error {
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.shutdownWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}
