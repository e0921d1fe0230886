// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
)

// StatusOption is the option recording migration progress.
const StatusOption = "wpml-importer-status"

// StatusCompleted is recorded once every stage has run.
const StatusCompleted = "completed"

// OptionStatus records progress in the WordPress options table.
type OptionStatus struct {
	options OptionStore
}

// NewOptionStatus creates a status recorder.
func NewOptionStatus(o OptionStore) *OptionStatus {
	return &OptionStatus{options: o}
}

// RecordStatus stores the last stage that ran, or StatusCompleted.
func (s *OptionStatus) RecordStatus(ctx context.Context, status string) error {
	return s.options.Set(ctx, StatusOption, status)
}

// Status returns the recorded status; empty when no migration ran.
func (s *OptionStatus) Status(ctx context.Context) (string, error) {
	return s.options.String(ctx, StatusOption)
}
