/*
scheduler.go - Automated annual accrual

PURPOSE:
  The engine has no clock. This scheduler wakes up periodically and runs
  RunAnnualAccrual as of January 1 of the current year until that year's
  run completes. A process that was down on January 1 catches up on its
  first check; employees already accrued for the year are skipped by the
  run itself, and employees hired later in the year are never reset.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Checks once immediately on start
  - Remembers the last year it completed. A run with failed employees
    does not complete the year, so the next check retries them; the
    accrual is idempotent per (employee, as-of), so the others are skipped

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewAccrualScheduler(runner, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerAccrual endpoint (manual run)
  - timeoff/accrual_run.go: RunAnnualAccrual
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/timeoff"
)

// AccrualRunner is the part of timeoff.AccrualRunner the scheduler needs.
type AccrualRunner interface {
	RunAnnualAccrual(ctx context.Context, asOf generic.TimePoint) (timeoff.AccrualSummary, error)
}

// AccrualScheduler triggers the yearly accrual run.
type AccrualScheduler struct {
	Runner        AccrualRunner
	CheckInterval time.Duration
	Enabled       bool
	Logger        *zap.Logger

	now     func() time.Time
	lastRun int
	ticker  *time.Ticker
	stop    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
}

// NewAccrualScheduler creates a new scheduler.
func NewAccrualScheduler(runner AccrualRunner, logger *zap.Logger) *AccrualScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccrualScheduler{
		Runner:        runner,
		CheckInterval: time.Hour,
		Enabled:       true,
		Logger:        logger.Named("scheduler"),
		now:           time.Now,
		stop:          make(chan struct{}),
	}
}

// WithClock replaces the scheduler's time source.
func (s *AccrualScheduler) WithClock(now func() time.Time) *AccrualScheduler {
	s.now = now
	return s
}

// Start begins the scheduler.
func (s *AccrualScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		s.Logger.Info("scheduler disabled, not starting")
		return
	}
	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	s.Logger.Info("scheduler started", zap.Duration("check_interval", s.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight run.
func (s *AccrualScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		s.ticker = nil
		s.Logger.Info("scheduler stopped")
	}
}

func (s *AccrualScheduler) run() {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-s.stop
		cancel()
	}()

	s.RunNow(ctx)
	for {
		select {
		case <-s.ticker.C:
			s.RunNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunNow performs one check. It returns true if an accrual run was made.
func (s *AccrualScheduler) RunNow(ctx context.Context) bool {
	year := s.now().Year()
	if year <= s.lastRun {
		return false
	}

	asOf := generic.StartOfYear(year)
	summary, err := s.Runner.RunAnnualAccrual(ctx, asOf)
	if err != nil {
		s.Logger.Error("annual accrual failed", zap.Int("year", year), zap.Error(err))
		return false
	}
	if len(summary.Failed) > 0 {
		s.Logger.Warn("annual accrual incomplete, retrying on next check",
			zap.Int("year", year), zap.Int("failed", len(summary.Failed)))
	} else {
		s.lastRun = year
	}
	s.Logger.Info("annual accrual completed",
		zap.String("as_of", asOf.String()),
		zap.Int("processed", summary.Processed),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failed)))
	return true
}
