// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"log/slog"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/options"
)

// PolylangOption is the option holding the Polylang settings record.
const PolylangOption = "polylang"

// MenusStage assigns each theme menu location a menu per language.
type MenusStage struct {
	source   SourceReader
	options  OptionStore
	settings Settings
	rows     RowCounter
	logger   *slog.Logger
}

// NewMenusStage creates the menu location stage.
func NewMenusStage(source SourceReader, opts OptionStore, settings Settings, rows RowCounter, logger *slog.Logger) *MenusStage {
	if rows == nil {
		rows = nopRows{}
	}
	return &MenusStage{source: source, options: opts, settings: settings, rows: rows, logger: logger}
}

func (s *MenusStage) Name() string    { return StageMenus }
func (s *MenusStage) Message() string { return "Processing menus" }

func (s *MenusStage) PercentageComplete(context.Context, int) (int, error) { return 100, nil }

// ProcessStep writes nav_menus[theme][location][language] = menu id for every
// location whose assigned menu belongs to a translation group.
func (s *MenusStage) ProcessStep(ctx context.Context, _ int) error {
	if s.settings.Theme == "" {
		s.logger.Warn("no active theme, menu locations skipped")
		return nil
	}

	rows, err := s.source.MenuTranslations(ctx)
	if err != nil {
		return err
	}
	groups := model.GroupTranslations(rows, nil)

	assigned := MenuLocations(groups, s.settings.MenuLocations)
	if len(assigned) == 0 {
		return nil
	}

	settings, err := s.options.Map(ctx, PolylangOption)
	if err != nil {
		return err
	}
	navMenus := options.ToMap(settings["nav_menus"])
	theme := options.ToMap(navMenus[s.settings.Theme])

	written := 0
	for _, loc := range options.SortedKeys(assigned) {
		perLang := options.ToMap(theme[loc])
		for _, m := range assigned[loc].Members {
			perLang[m.Language] = m.ObjectID
			written++
		}
		theme[loc] = perLang
	}
	navMenus[s.settings.Theme] = theme
	settings["nav_menus"] = navMenus

	if err := s.options.Set(ctx, PolylangOption, settings); err != nil {
		return err
	}
	s.rows.AddRows(StageMenus, "menu_locations", written)
	return nil
}

// MenuLocations maps each location to the translation group containing its
// assigned menu. Locations with no menu or no matching group are left out.
func MenuLocations(groups []model.TranslationGroup, locations map[string]int64) map[string]model.TranslationGroup {
	out := make(map[string]model.TranslationGroup)
	for _, loc := range options.SortedKeys(locations) {
		menu := locations[loc]
		if menu <= 0 {
			continue
		}
		for _, g := range groups {
			if g.Contains(menu) {
				out[loc] = g
				break
			}
		}
	}
	return out
}
