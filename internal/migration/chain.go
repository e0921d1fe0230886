// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"fmt"
)

// State is the caller-held position in the migration.
type State struct {
	Action string
	Step   int
}

// Chain is the ordered list of stages. Transitions are computed by Advance
// from the current state and the stage's percentage alone.
type Chain struct {
	stages []Stage
	index  map[string]int
}

// NewChain builds a chain. Stage names must be unique.
func NewChain(stages ...Stage) (*Chain, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("migration chain has no stages")
	}
	c := &Chain{stages: stages, index: make(map[string]int, len(stages))}
	for i, s := range stages {
		if _, dup := c.index[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate stage %q", s.Name())
		}
		c.index[s.Name()] = i
	}
	return c, nil
}

// First returns the starting state.
func (c *Chain) First() State {
	return State{Action: c.stages[0].Name(), Step: 1}
}

// Stage looks up a stage by name.
func (c *Chain) Stage(name string) (Stage, bool) {
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.stages[i], true
}

// IsFirst reports whether name is the first stage.
func (c *Chain) IsFirst(name string) bool {
	return c.stages[0].Name() == name
}

// Advance returns the state following cur after a step that reported pct.
// Below 100 the same stage runs again at step+1; at 100 the next stage starts
// at step 1, or done is true after the last stage.
func (c *Chain) Advance(cur State, pct int) (next State, done bool) {
	if pct < 100 {
		return State{Action: cur.Action, Step: cur.Step + 1}, false
	}
	i, ok := c.index[cur.Action]
	if !ok || i+1 >= len(c.stages) {
		return State{}, true
	}
	return State{Action: c.stages[i+1].Name(), Step: 1}, false
}
