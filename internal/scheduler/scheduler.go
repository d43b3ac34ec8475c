package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/eliezerRevach/finance-data/internal/logger"
	"github.com/eliezerRevach/finance-data/internal/pipeline"
)

// Scheduler triggers export runs on a cron schedule.
type Scheduler struct {
	Cron   *cron.Cron
	Runner *pipeline.Runner
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner *pipeline.Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Ctx:    ctx,
	}
}

// Register registers the export task.
func (s *Scheduler) Register(exportCron string) error {
	if _, err := s.Cron.AddFunc(exportCron, s.exportTask); err != nil {
		return fmt.Errorf("register export task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.L().Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	logger.L().Info().Msg("scheduler stopped")
}

// RunNow executes the export task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.exportTask()
}

func (s *Scheduler) exportTask() {
	if err := s.Ctx.Err(); err != nil {
		logger.L().Warn().Err(err).Msg("skipping export, context done")
		return
	}
	s.Runner.Run(s.Ctx)
}
