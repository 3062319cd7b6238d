// Package scheduler repeats a sync pass on a fixed interval. Passes
// never overlap: a tick that fires while the previous pass is still
// running is dropped, not queued.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

// Runner is one schedulable unit of work.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// RunnerFunc adapts a plain function to the Runner interface.
type RunnerFunc func(ctx context.Context) error

// RunOnce calls f.
func (f RunnerFunc) RunOnce(ctx context.Context) error { return f(ctx) }

// Scheduler triggers a Runner immediately and then on every interval
// tick until the context is canceled.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	log      *slog.Logger

	mu       sync.Mutex
	passDone chan struct{} // closed when the in-flight pass returns, nil when idle
}

// New returns a Scheduler for the given runner and interval.
func New(runner Runner, interval time.Duration, log *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		log:      log,
	}
}

// Run blocks until ctx is canceled, returning ctx.Err(). The first pass
// starts immediately; subsequent passes start on ticker ticks. A pass
// error is logged and the loop keeps going.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.dispatch(ctx)

	for {
		select {
		case <-ctx.Done():
			// Let an in-flight pass observe the cancellation and finish
			// its cleanup before the loop returns.
			s.mu.Lock()
			done := s.passDone
			s.mu.Unlock()
			if done != nil {
				<-done
			}
			s.log.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.dispatch(ctx)
		}
	}
}

// dispatch starts a pass in its own goroutine unless one is already
// running, in which case the tick is dropped.
func (s *Scheduler) dispatch(ctx context.Context) {
	s.mu.Lock()
	if s.passDone != nil {
		s.mu.Unlock()
		s.log.Warn("sync pass still running, skipping this interval")
		return
	}
	done := make(chan struct{})
	s.passDone = done
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.passDone = nil
			s.mu.Unlock()
			close(done)
		}()
		if err := s.runOne(ctx); err != nil && ctx.Err() == nil {
			s.log.Error("sync pass failed", "error", err)
		}
	}()
}

// runOne shields the scheduler loop from a panicking pass.
func (s *Scheduler) runOne(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync pass panicked: %v", r)
			s.log.Error("sync pass panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	return s.runner.RunOnce(ctx)
}
