// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/wpml2pll/internal/model"
)

// LocaleLookup returns the bundled metadata for a locale.
type LocaleLookup func(locale string) (model.LanguageMeta, bool)

// LanguagesStage creates the Polylang languages in the WPML order.
type LanguagesStage struct {
	source   SourceReader
	target   LanguageModel
	settings Settings
	lookup   LocaleLookup
	rows     RowCounter
	logger   *slog.Logger
}

// NewLanguagesStage creates the language provisioning stage.
func NewLanguagesStage(source SourceReader, target LanguageModel, settings Settings, lookup LocaleLookup, rows RowCounter, logger *slog.Logger) *LanguagesStage {
	if rows == nil {
		rows = nopRows{}
	}
	return &LanguagesStage{source: source, target: target, settings: settings, lookup: lookup, rows: rows, logger: logger}
}

func (s *LanguagesStage) Name() string    { return StageLanguages }
func (s *LanguagesStage) Message() string { return "Processing languages" }

// ProcessStep adds every active language. A language that cannot be added is
// logged and skipped.
func (s *LanguagesStage) ProcessStep(ctx context.Context, _ int) error {
	langs, err := s.source.ActiveLanguages(ctx)
	if err != nil {
		return err
	}

	added := 0
	for _, l := range OrderLanguages(langs, s.settings.Source.LanguagesOrder) {
		fields := model.LanguageFields{
			Slug:         l.Code,
			Locale:       l.Locale,
			Name:         l.Name,
			TermGroup:    0,
			NoDefaultCat: true,
		}
		if s.lookup != nil {
			if meta, ok := s.lookup(l.Locale); ok {
				fields.RTL = meta.RTL
				fields.Flag = meta.Flag
			}
		}

		if err := s.target.AddLanguage(ctx, fields); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Warn("language not added", "language", l.Code, "locale", l.Locale, "error", err)
			continue
		}
		added++
	}
	s.rows.AddRows(StageLanguages, "languages", added)

	if _, err := s.target.DeleteTranslationGroups(ctx, model.TaxonomyTermTranslations); err != nil {
		return fmt.Errorf("removing bootstrap translation groups: %w", err)
	}
	return s.target.CleanLanguagesCache(ctx)
}

func (s *LanguagesStage) PercentageComplete(context.Context, int) (int, error) { return 100, nil }

// OrderLanguages sorts langs by order, appending languages missing from
// order in their original sequence. Codes in order with no language are ignored.
func OrderLanguages(langs []model.SourceLanguage, order []string) []model.SourceLanguage {
	byCode := make(map[string]model.SourceLanguage, len(langs))
	for _, l := range langs {
		byCode[l.Code] = l
	}

	out := make([]model.SourceLanguage, 0, len(langs))
	used := make(map[string]bool, len(langs))
	for _, code := range order {
		if l, ok := byCode[code]; ok && !used[code] {
			out = append(out, l)
			used[code] = true
		}
	}
	for _, l := range langs {
		if !used[l.Code] {
			out = append(out, l)
			used[l.Code] = true
		}
	}
	return out
}
