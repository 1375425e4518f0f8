package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// TaskRunner runs detached background work such as live answer scoring.
// Each task gets its own timeout context, independent of the request that
// spawned it. Tasks run at most once and in no particular order.
type TaskRunner struct {
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewTaskRunner(timeout time.Duration) *TaskRunner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &TaskRunner{timeout: timeout}
}

// Go starts fn in its own goroutine. Errors and panics are logged, never returned.
func (r *TaskRunner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	BackgroundTasks.WithLabelValues(name).Inc()
	go func() {
		defer r.wg.Done()
		defer BackgroundTasks.WithLabelValues(name).Dec()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		err := func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic: %v", p)
					slog.Error("Background task panicked", "task", name, "stack", string(debug.Stack()))
				}
			}()
			return fn(ctx)
		}()
		if err != nil {
			BackgroundTaskFailures.WithLabelValues(name).Inc()
			slog.Error("Background task failed", "task", name, "error", err)
			return
		}
		slog.Debug("Background task finished", "task", name)
	}()
}

// Wait blocks until every started task has returned.
func (r *TaskRunner) Wait() {
	r.wg.Wait()
}

// Shutdown waits for running tasks or gives up when ctx is done.
func (r *TaskRunner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
