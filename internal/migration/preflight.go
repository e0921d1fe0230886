// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/wpml"
)

const activePluginsOption = "active_plugins"

// PreflightError lists why the site cannot be migrated.
type PreflightError struct {
	Problems []string
}

func (e *PreflightError) Error() string {
	return "cannot migrate: " + strings.Join(e.Problems, "; ")
}

// Unwrap lets callers match ErrPrecondition.
func (e *PreflightError) Unwrap() error {
	return ErrPrecondition
}

// Preflight checks the site before the first stage runs: WPML data must be
// present, WPML must be deactivated, and Polylang must not have languages yet.
func Preflight(ctx context.Context, opts OptionStore, langs LanguageModel) error {
	_, ok, err := opts.Get(ctx, wpml.SettingsOption)
	if err != nil {
		return err
	}
	if !ok {
		return &PreflightError{Problems: []string{"WPML is not installed on this website"}}
	}

	var problems []string

	active, _, err := opts.Get(ctx, activePluginsOption)
	if err != nil {
		return err
	}
	for _, plugin := range options.ToStrings(active) {
		if strings.HasPrefix(plugin, "sitepress-multilingual-cms/") {
			problems = append(problems, "WPML is activated, deactivate it first")
			break
		}
	}

	existing, err := langs.Languages(ctx)
	if err != nil {
		return fmt.Errorf("listing languages: %w", err)
	}
	if len(existing) > 0 {
		problems = append(problems, "Polylang already has languages on this website")
	}

	if len(problems) > 0 {
		return &PreflightError{Problems: problems}
	}
	return nil
}
