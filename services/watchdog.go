package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"plagiarism-check-platform/internal/logger"
)

// StuckCheckFailer is implemented by the check store.
type StuckCheckFailer interface {
	FailStuckChecks(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// Watchdog periodically fails checks stuck in Processing. A worker
// crash after the job's last retry leaves a check Processing forever;
// the watchdog is the backstop that makes Processing an observably
// transient state.
type Watchdog struct {
	scheduler  *gocron.Scheduler
	checks     StuckCheckFailer
	clock      Clock
	stuckAfter time.Duration
	cron       string
}

func NewWatchdog(checks StuckCheckFailer, clock Clock, cron string, stuckAfter time.Duration) *Watchdog {
	return &Watchdog{
		scheduler:  gocron.NewScheduler(time.UTC),
		checks:     checks,
		clock:      clock,
		stuckAfter: stuckAfter,
		cron:       cron,
	}
}

// Start registers the sweep job and runs the scheduler in the
// background.
func (w *Watchdog) Start() error {
	if _, err := w.scheduler.Cron(w.cron).Tag("check-watchdog").Do(w.Sweep); err != nil {
		return err
	}
	w.scheduler.StartAsync()
	logger.Info("check watchdog started", "cron", w.cron, "stuck_after", w.stuckAfter)
	return nil
}

func (w *Watchdog) Stop() {
	w.scheduler.Stop()
}

// Sweep runs one pass. Exported so it can be invoked directly in tests
// and from the worker on startup.
func (w *Watchdog) Sweep() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := w.clock.Now()
	cutoff := now.Add(-w.stuckAfter)
	failed, err := w.checks.FailStuckChecks(ctx, cutoff, now)
	if err != nil {
		logger.Error("watchdog sweep failed", "error", err)
		return err
	}
	if failed > 0 {
		logger.Warn("watchdog failed stuck checks", "count", failed, "cutoff", cutoff)
	}
	return nil
}
