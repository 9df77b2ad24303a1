// Package scheduler runs the periodic housekeeping of the service: debug
// snapshots older than the retention window are removed.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper deletes files older than maxAge.
type Sweeper interface {
	Sweep(maxAge time.Duration, now time.Time) (int, error)
}

// Scheduler wraps robfig/cron and owns the sweep job.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	maxAge  time.Duration
	spec    string // cron spec, e.g. "@every 6h"
	log     *slog.Logger
	now     func() time.Time
}

// New creates a Scheduler that sweeps every intervalHours hours.
func New(sweeper Sweeper, maxAge time.Duration, intervalHours int, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cron.DefaultLogger), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		sweeper: sweeper,
		maxAge:  maxAge,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
		log:     log.With("component", "scheduler"),
		now:     time.Now,
	}
}

// Start registers the job and starts the scheduler. One sweep also runs
// immediately so a restart cleans up without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.log.Info("cron started", "spec", s.spec)

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// RunOnce performs a single sweep. Errors are logged.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	removed, err := s.sweeper.Sweep(s.maxAge, s.now())
	if err != nil {
		s.log.Warn("snapshot sweep incomplete", "removed", removed, "err", err)
		return
	}
	s.log.Info("snapshot sweep done", "removed", removed, "max_age", s.maxAge)
}
