// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DoneMessage is reported once the last stage completes.
const DoneMessage = "Done!"

// Request asks the driver to run one step of a stage.
type Request struct {
	Action string `json:"action"`
	Step   int    `json:"step"`
}

// Response tells the caller what to submit next.
type Response struct {
	Action     string `json:"action,omitempty"`
	Message    string `json:"message"`
	Step       int    `json:"step,omitempty"`
	Done       bool   `json:"done,omitempty"`
	Percentage int    `json:"-"`
}

// Observer is notified after every step.
type Observer interface {
	ObserveStep(stage string, d time.Duration, pct int, err error)
}

// StatusRecorder persists the last completed position.
type StatusRecorder interface {
	RecordStatus(ctx context.Context, status string) error
}

// Driver runs one step per call and computes the next request.
// It holds no progress state between calls.
type Driver struct {
	chain     *Chain
	logger    *slog.Logger
	preflight func(ctx context.Context) error
	observer  Observer
	status    StatusRecorder
	translate func(msg string) string
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithPreflight runs check before the first step of the first stage.
func WithPreflight(check func(ctx context.Context) error) DriverOption {
	return func(d *Driver) { d.preflight = check }
}

// WithObserver reports step timings and outcomes.
func WithObserver(o Observer) DriverOption {
	return func(d *Driver) { d.observer = o }
}

// WithStatus records progress after every successful step.
func WithStatus(s StatusRecorder) DriverOption {
	return func(d *Driver) { d.status = s }
}

// WithTranslator localizes stage messages.
func WithTranslator(fn func(msg string) string) DriverOption {
	return func(d *Driver) { d.translate = fn }
}

// NewDriver creates a driver over chain.
func NewDriver(chain *Chain, logger *slog.Logger, opts ...DriverOption) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Driver{
		chain:     chain,
		logger:    logger,
		translate: func(msg string) string { return msg },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start returns the request that begins a migration.
func (d *Driver) Start() Request {
	s := d.chain.First()
	return Request{Action: s.Action, Step: s.Step}
}

// Handle runs req.Step of req.Action. Malformed requests fail with
// ErrProtocol before any stage is touched.
func (d *Driver) Handle(ctx context.Context, req Request) (Response, error) {
	if req.Action == "" {
		return Response{}, fmt.Errorf("%w: missing action", ErrProtocol)
	}
	if req.Step < 1 {
		return Response{}, fmt.Errorf("%w: step must be at least 1, got %d", ErrProtocol, req.Step)
	}
	stage, ok := d.chain.Stage(req.Action)
	if !ok {
		return Response{}, fmt.Errorf("%w: unknown action %q", ErrProtocol, req.Action)
	}

	if d.preflight != nil && req.Step == 1 && d.chain.IsFirst(req.Action) {
		if err := d.preflight(ctx); err != nil {
			return Response{}, err
		}
	}

	log := d.logger.With("stage", req.Action, "step", req.Step)
	start := time.Now()

	pct, err := d.runStep(ctx, stage, req.Step)
	if d.observer != nil {
		d.observer.ObserveStep(req.Action, time.Since(start), pct, err)
	}
	if err != nil {
		log.Error("migration step failed", "error", err)
		return Response{}, fmt.Errorf("%s step %d: %w", req.Action, req.Step, err)
	}
	log.Info("migration step processed", "percentage", pct, "duration", time.Since(start))

	next, done := d.chain.Advance(State{Action: req.Action, Step: req.Step}, pct)

	if d.status != nil {
		status := req.Action
		if done {
			status = StatusCompleted
		}
		if err := d.status.RecordStatus(ctx, status); err != nil {
			log.Warn("recording migration status failed", "error", err)
		}
	}

	if done {
		return Response{Done: true, Message: d.translate(DoneMessage), Percentage: 100}, nil
	}
	return Response{
		Action:     next.Action,
		Step:       next.Step,
		Message:    fmt.Sprintf("%s : %d%%", d.translate(stage.Message()), pct),
		Percentage: pct,
	}, nil
}

func (d *Driver) runStep(ctx context.Context, stage Stage, step int) (int, error) {
	if err := stage.ProcessStep(ctx, step); err != nil {
		return 0, err
	}
	return stage.PercentageComplete(ctx, step)
}
