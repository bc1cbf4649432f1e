package dispatch_test

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JaimeStill/meridian/pkg/dispatch"
	"github.com/JaimeStill/meridian/pkg/lifecycle"
)

func TestGoRunsTasks(t *testing.T) {
	d := dispatch.New(slog.Default())

	var count atomic.Int32
	for range 5 {
		d.Go("count", func(ctx context.Context) error {
			count.Add(1)
			return nil
		})
	}

	d.Wait()

	if got := count.Load(); got != 5 {
		t.Errorf("tasks run: got %d, want 5", got)
	}
}

func TestGoDoesNotBlockCaller(t *testing.T) {
	d := dispatch.New(slog.Default())

	release := make(chan struct{})
	returned := make(chan struct{})

	go func() {
		d.Go("blocked", func(ctx context.Context) error {
			<-release
			return nil
		})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Go blocked on task completion")
	}

	close(release)
	d.Wait()
}

func TestTaskErrorsAndPanicsAreContained(t *testing.T) {
	d := dispatch.New(slog.Default())

	var after atomic.Bool
	d.Go("fails", func(ctx context.Context) error {
		return errors.New("boom")
	})
	d.Go("panics", func(ctx context.Context) error {
		panic("unexpected")
	})
	d.Go("succeeds", func(ctx context.Context) error {
		after.Store(true)
		return nil
	})

	d.Wait()

	if !after.Load() {
		t.Error("a failing task prevented others from running")
	}
}

func TestGoAfterWaitIsDropped(t *testing.T) {
	d := dispatch.New(slog.Default())
	d.Wait()

	var ran atomic.Bool
	d.Go("late", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	d.Wait()

	if ran.Load() {
		t.Error("task scheduled after Wait should not run")
	}
}

func TestStartBindsLifecycleContext(t *testing.T) {
	lc := lifecycle.New()
	d := dispatch.New(slog.Default())
	if err := d.Start(lc); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	lc.WaitForStartup()

	cancelled := make(chan struct{})
	d.Go("waits", func(ctx context.Context) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})

	if err := lc.Shutdown(5 * time.Second); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case <-cancelled:
	default:
		t.Error("task context was not cancelled by lifecycle shutdown")
	}
}
