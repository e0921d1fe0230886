// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs an unattended migration at a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// RunFunc runs a whole migration and returns the number of steps.
type RunFunc func(ctx context.Context) (int, error)

// StatusFunc returns the recorded migration status.
type StatusFunc func(ctx context.Context) (string, error)

// Result is the outcome of the scheduled run.
type Result struct {
	Steps int
	Err   error
	// Skipped is set when the site was already migrated.
	Skipped bool
}

// Scheduler fires the migration once, at the first tick of its schedule.
// A failed run is not retried: part of the data may already be migrated.
type Scheduler struct {
	cron      *cron.Cron
	run       RunFunc
	status    StatusFunc
	completed string
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
	done   chan Result
}

// New creates a new scheduler instance. A status equal to completed makes
// the run a no-op.
func New(run RunFunc, status StatusFunc, completed string, logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		run:       run,
		status:    status,
		completed: completed,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan Result, 1),
	}
}

// Start schedules the run at spec, a standard cron expression or descriptor
// such as "@every 1h".
func (s *Scheduler) Start(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	if _, err := s.cron.AddFunc(spec, s.Trigger); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "schedule", spec)
	return nil
}

// Trigger runs the migration now unless it already ran.
func (s *Scheduler) Trigger() {
	s.once.Do(func() {
		s.done <- s.execute()
	})
}

func (s *Scheduler) execute() Result {
	if s.status != nil {
		status, err := s.status(s.ctx)
		if err != nil {
			s.logger.Error("reading migration status failed", "error", err)
			return Result{Err: err}
		}
		if status == s.completed {
			s.logger.Info("site already migrated, nothing to do")
			return Result{Skipped: true}
		}
	}

	s.logger.Info("scheduled migration started")
	steps, err := s.run(s.ctx)
	if err != nil {
		s.logger.Error("scheduled migration failed", "steps", steps, "error", err)
		return Result{Steps: steps, Err: err}
	}
	s.logger.Info("scheduled migration finished", "steps", steps)
	return Result{Steps: steps}
}

// Done delivers the result of the run.
func (s *Scheduler) Done() <-chan Result {
	return s.done
}

// Stop cancels a run in progress and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
