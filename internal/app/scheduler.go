/**
 * @description
 * Cron scheduler for the weekly usage sweep.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron     *cron.Cron
	monitor  *UsageMonitor
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(monitor *UsageMonitor, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		monitor:  monitor,
		schedule: schedule,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.runUsageSweep); err != nil {
		s.logger.Error("failed to schedule usage sweep", "error", err)
	} else {
		s.logger.Info("scheduled usage sweep", "schedule", s.schedule)
	}

	s.cron.Start()
}

func (s *Scheduler) runUsageSweep() {
	s.logger.Info("starting usage sweep job")
	s.monitor.CheckAllUsers(context.Background())
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
