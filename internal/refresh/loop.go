package refresh

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the fixed period between refresh cycles.
const DefaultInterval = 30 * time.Second

// Runner runs one refresh cycle.
type Runner interface {
	Run(ctx context.Context) error
}

// Loop runs a cycle at start and then on every tick. A tick that fires while
// the previous cycle is still in flight is skipped. Cycles are never canceled
// once started, not even when the loop stops.
type Loop struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger

	running atomic.Bool
	wg      sync.WaitGroup

	started atomic.Int64
	skipped atomic.Int64
}

// NewLoop creates a Loop. A non-positive interval means DefaultInterval.
func NewLoop(runner Runner, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		runner:   runner,
		interval: interval,
		logger:   slog.Default().With("component", "refresh.loop"),
	}
}

// Run blocks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("Refresh loop started", "interval", l.interval)
	l.tick(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Refresh loop stopped", "cycles", l.started.Load(), "skipped", l.skipped.Load())
			return ctx.Err()
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	if !l.running.CompareAndSwap(false, true) {
		l.skipped.Add(1)
		l.logger.Warn("Previous refresh still in flight, skipping tick")
		return
	}
	l.started.Add(1)
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.running.Store(false)

		start := time.Now()
		if err := l.runner.Run(context.WithoutCancel(ctx)); err != nil {
			l.logger.Error("Refresh cycle failed", "error", err, "duration", time.Since(start))
			return
		}
		l.logger.Debug("Refresh cycle completed", "duration", time.Since(start))
	}()
}

// Wait blocks until the in-flight cycle, if any, has finished.
func (l *Loop) Wait() {
	l.wg.Wait()
}

// Started reports how many cycles the loop has started.
func (l *Loop) Started() int64 { return l.started.Load() }

// Skipped reports how many ticks were skipped because a cycle was in flight.
func (l *Loop) Skipped() int64 { return l.skipped.Load() }
