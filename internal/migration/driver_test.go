// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/olegiv/wpml2pll/internal/testutil"
)

// fakeStage reports pcts[step-1] after each step.
type fakeStage struct {
	name  string
	pcts  []int
	steps []int
	err   error
}

func (f *fakeStage) Name() string    { return f.name }
func (f *fakeStage) Message() string { return "Processing " + f.name }

func (f *fakeStage) ProcessStep(_ context.Context, step int) error {
	f.steps = append(f.steps, step)
	return f.err
}

func (f *fakeStage) PercentageComplete(_ context.Context, step int) (int, error) {
	if step-1 < len(f.pcts) {
		return f.pcts[step-1], nil
	}
	return 100, nil
}

type recordingObserver struct {
	stages []string
	errs   int
}

func (o *recordingObserver) ObserveStep(stage string, _ time.Duration, _ int, err error) {
	o.stages = append(o.stages, stage)
	if err != nil {
		o.errs++
	}
}

type memoryStatus struct{ values []string }

func (m *memoryStatus) RecordStatus(_ context.Context, s string) error {
	m.values = append(m.values, s)
	return nil
}

func newTestDriver(t *testing.T, opts []DriverOption, stages ...Stage) *Driver {
	t.Helper()
	chain, err := NewChain(stages...)
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}
	return NewDriver(chain, testutil.TestLoggerSilent(), opts...)
}

func TestNewChainRejectsDuplicates(t *testing.T) {
	if _, err := NewChain(&fakeStage{name: "a"}, &fakeStage{name: "a"}); err == nil {
		t.Error("expected error for duplicate stage names")
	}
	if _, err := NewChain(); err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestChainAdvance(t *testing.T) {
	chain, err := NewChain(&fakeStage{name: "a"}, &fakeStage{name: "b"})
	if err != nil {
		t.Fatalf("NewChain: %v", err)
	}

	tests := []struct {
		name     string
		state    State
		pct      int
		want     State
		wantDone bool
	}{
		{"same stage next step", State{Action: "a", Step: 3}, 60, State{Action: "a", Step: 4}, false},
		{"next stage", State{Action: "a", Step: 3}, 100, State{Action: "b", Step: 1}, false},
		{"last stage finished", State{Action: "b", Step: 1}, 100, State{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, done := chain.Advance(tt.state, tt.pct)
			if done != tt.wantDone {
				t.Fatalf("done = %v, want %v", done, tt.wantDone)
			}
			if !done && next != tt.want {
				t.Errorf("Advance(%v, %d) = %v, want %v", tt.state, tt.pct, next, tt.want)
			}
		})
	}

	if first := chain.First(); first != (State{Action: "a", Step: 1}) {
		t.Errorf("First() = %v", first)
	}
}

func TestDriverProtocolErrors(t *testing.T) {
	stage := &fakeStage{name: "a"}
	d := newTestDriver(t, nil, stage)
	ctx := context.Background()

	tests := []struct {
		name string
		req  Request
	}{
		{"missing action", Request{Step: 1}},
		{"zero step", Request{Action: "a", Step: 0}},
		{"negative step", Request{Action: "a", Step: -2}},
		{"unknown action", Request{Action: "nope", Step: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Handle(ctx, tt.req); !errors.Is(err, ErrProtocol) {
				t.Errorf("Handle(%+v) error = %v, want ErrProtocol", tt.req, err)
			}
		})
	}
	if len(stage.steps) != 0 {
		t.Errorf("stage ran steps %v on protocol errors", stage.steps)
	}
}

func TestDriverSequencesStages(t *testing.T) {
	a := &fakeStage{name: "a", pcts: []int{40, 80, 100}}
	b := &fakeStage{name: "b"}
	obs := &recordingObserver{}
	status := &memoryStatus{}
	d := newTestDriver(t, []DriverOption{WithObserver(obs), WithStatus(status)}, a, b)
	ctx := context.Background()

	req := d.Start()
	if req != (Request{Action: "a", Step: 1}) {
		t.Fatalf("Start() = %+v", req)
	}

	var messages []string
	for range 10 {
		resp, err := d.Handle(ctx, req)
		if err != nil {
			t.Fatalf("Handle(%+v): %v", req, err)
		}
		messages = append(messages, resp.Message)
		if resp.Done {
			break
		}
		req = Request{Action: resp.Action, Step: resp.Step}
	}

	wantMessages := []string{
		"Processing a : 40%",
		"Processing a : 80%",
		"Processing a : 100%",
		DoneMessage,
	}
	if !slices.Equal(messages, wantMessages) {
		t.Errorf("messages = %q, want %q", messages, wantMessages)
	}
	if !slices.Equal(a.steps, []int{1, 2, 3}) {
		t.Errorf("a steps = %v", a.steps)
	}
	if !slices.Equal(b.steps, []int{1}) {
		t.Errorf("b steps = %v", b.steps)
	}
	if want := []string{"a", "a", "a", "b"}; !slices.Equal(obs.stages, want) {
		t.Errorf("observed stages = %v, want %v", obs.stages, want)
	}
	if want := []string{"a", "a", "a", StatusCompleted}; !slices.Equal(status.values, want) {
		t.Errorf("recorded status = %v, want %v", status.values, want)
	}
}

func TestDriverStageFailure(t *testing.T) {
	boom := errors.New("duplicate entry")
	a := &fakeStage{name: "a", err: boom}
	obs := &recordingObserver{}
	d := newTestDriver(t, []DriverOption{WithObserver(obs)}, a)

	_, err := d.Handle(context.Background(), Request{Action: "a", Step: 2})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if errors.Is(err, ErrProtocol) {
		t.Error("stage failure reported as a protocol error")
	}
	if obs.errs != 1 {
		t.Errorf("observed errors = %d, want 1", obs.errs)
	}
}

func TestDriverPreflightOnlyAtStart(t *testing.T) {
	calls := 0
	failing := errors.New("not ready")
	check := func(context.Context) error {
		calls++
		return failing
	}
	a := &fakeStage{name: "a", pcts: []int{50}}
	b := &fakeStage{name: "b"}
	d := newTestDriver(t, []DriverOption{WithPreflight(check)}, a, b)
	ctx := context.Background()

	if _, err := d.Handle(ctx, Request{Action: "a", Step: 1}); !errors.Is(err, failing) {
		t.Errorf("first step error = %v, want %v", err, failing)
	}
	if len(a.steps) != 0 {
		t.Errorf("stage ran steps %v after a failed preflight", a.steps)
	}

	for _, req := range []Request{{Action: "a", Step: 2}, {Action: "b", Step: 1}} {
		if _, err := d.Handle(ctx, req); err != nil {
			t.Fatalf("Handle(%+v): %v", req, err)
		}
	}
	if calls != 1 {
		t.Errorf("preflight ran %d times, want 1", calls)
	}
}

func TestDriverTranslatesMessages(t *testing.T) {
	a := &fakeStage{name: "a"}
	d := newTestDriver(t, []DriverOption{WithTranslator(func(msg string) string { return "[" + msg + "]" })}, a)

	resp, err := d.Handle(context.Background(), Request{Action: "a", Step: 1})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !resp.Done || resp.Message != "[Done!]" {
		t.Errorf("response = %+v, want done with [Done!]", resp)
	}
}
