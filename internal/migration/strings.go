// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"log/slog"

	"github.com/olegiv/wpml2pll/internal/model"
)

// StringsStage merges WPML string translations into the Polylang catalogs.
type StringsStage struct {
	source   SourceReader
	target   LanguageModel
	catalogs CatalogStore
	settings Settings
	rows     RowCounter
	logger   *slog.Logger
}

// NewStringsStage creates the strings translation stage.
func NewStringsStage(source SourceReader, target LanguageModel, catalogs CatalogStore, settings Settings, rows RowCounter, logger *slog.Logger) *StringsStage {
	if rows == nil {
		rows = nopRows{}
	}
	return &StringsStage{source: source, target: target, catalogs: catalogs, settings: settings, rows: rows, logger: logger}
}

func (s *StringsStage) Name() string    { return StageStrings }
func (s *StringsStage) Message() string { return "Processing strings translations" }

// PercentageComplete reports the share of string translation rows handled.
func (s *StringsStage) PercentageComplete(ctx context.Context, step int) (int, error) {
	total, err := s.source.CountStringTranslations(ctx, s.settings.ExcludedStringDomains)
	if err != nil {
		return 0, err
	}
	return Percentage(step, s.settings.BatchSize, total), nil
}

// ProcessStep loads each language catalog touched by the batch, adds the
// batch entries and saves it back.
func (s *StringsStage) ProcessStep(ctx context.Context, step int) error {
	rows, err := s.source.StringTranslations(ctx, s.settings.ExcludedStringDomains,
		offset(step, s.settings.BatchSize), s.settings.BatchSize)
	if err != nil {
		return err
	}

	var order []string
	byLang := make(map[string][]model.StringTranslation)
	for _, r := range rows {
		if r.Source == "" || r.Translation == "" {
			continue
		}
		if _, ok := byLang[r.Language]; !ok {
			order = append(order, r.Language)
		}
		byLang[r.Language] = append(byLang[r.Language], r)
	}

	for _, code := range order {
		lang, err := s.target.Language(ctx, code)
		if err != nil {
			return err
		}
		if lang == nil {
			s.logger.Debug("strings for unknown language skipped", "language", code, "count", len(byLang[code]))
			continue
		}

		catalog, err := s.catalogs.LoadCatalog(ctx, *lang)
		if err != nil {
			return err
		}
		for _, r := range byLang[code] {
			catalog.Add(r.Source, r.Translation)
		}
		if err := s.catalogs.SaveCatalog(ctx, *lang, catalog); err != nil {
			return err
		}
		s.rows.AddRows(StageStrings, "strings", len(byLang[code]))
	}
	return nil
}
