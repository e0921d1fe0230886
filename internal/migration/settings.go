// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"

	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/wpml"
)

// DefaultBatchSize is the number of rows or groups handled per step.
const DefaultBatchSize = 25000

// Settings is everything the stages read from the site, loaded once per call.
type Settings struct {
	// SourceFound is false when the WPML settings option is missing.
	SourceFound     bool
	Source          wpml.Settings
	DefaultCategory int64
	Theme           string
	// MenuLocations maps theme menu locations to the assigned menu term id.
	MenuLocations map[string]int64

	BatchSize             int
	ExcludedStringDomains []string
}

// LoadSettings reads the WPML configuration, the default category and the
// active theme's menu locations.
func LoadSettings(ctx context.Context, opts OptionStore, batchSize int, excludedDomains []string) (Settings, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	s := Settings{
		BatchSize:             batchSize,
		ExcludedStringDomains: excludedDomains,
		MenuLocations:         map[string]int64{},
	}

	raw, found, err := opts.Get(ctx, wpml.SettingsOption)
	if err != nil {
		return s, fmt.Errorf("loading WPML settings: %w", err)
	}
	_, isMap := raw.(map[string]any)
	s.SourceFound = found && isMap
	s.Source = wpml.ParseSettings(options.ToMap(raw))

	defaultCategory, _, err := opts.Get(ctx, "default_category")
	if err != nil {
		return s, err
	}
	s.DefaultCategory = options.ToInt(defaultCategory)

	if s.Theme, err = opts.String(ctx, "stylesheet"); err != nil {
		return s, err
	}
	if s.Theme != "" {
		mods, err := opts.Map(ctx, "theme_mods_"+s.Theme)
		if err != nil {
			return s, err
		}
		for loc, menu := range options.ToMap(mods["nav_menu_locations"]) {
			s.MenuLocations[loc] = options.ToInt(menu)
		}
	}

	return s, nil
}
