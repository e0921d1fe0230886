// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// DriverFactory builds a driver with freshly loaded settings.
type DriverFactory func(ctx context.Context) (*Driver, error)

// Runner drives a whole migration from one process, feeding each response
// back as the next request. Steps are paced by a rate limiter.
type Runner struct {
	newDriver DriverFactory
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewRunner creates a runner. A zero interval runs steps back to back.
func NewRunner(newDriver DriverFactory, interval time.Duration, logger *slog.Logger) *Runner {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Runner{
		newDriver: newDriver,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// Run executes every step until the driver reports done. It returns the
// number of steps run.
func (r *Runner) Run(ctx context.Context) (int, error) {
	d, err := r.newDriver(ctx)
	if err != nil {
		return 0, err
	}
	req := d.Start()

	steps := 0
	for {
		if err := r.limiter.Wait(ctx); err != nil {
			return steps, err
		}
		if steps > 0 {
			if d, err = r.newDriver(ctx); err != nil {
				return steps, err
			}
		}

		resp, err := d.Handle(ctx, req)
		if err != nil {
			return steps, err
		}
		steps++

		if resp.Done {
			r.logger.Info("migration completed", "steps", steps)
			return steps, nil
		}
		r.logger.Info(resp.Message, "next_action", resp.Action, "next_step", resp.Step)
		req = Request{Action: resp.Action, Step: resp.Step}
	}
}
