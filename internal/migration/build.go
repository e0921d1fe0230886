// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"log/slog"

	"github.com/olegiv/wpml2pll/internal/store"
)

// Deps are the collaborators the stages run against.
type Deps struct {
	DB       store.DB
	Tables   store.Tables
	Source   SourceReader
	Target   LanguageModel
	Catalogs CatalogStore
	Options  OptionStore
	Locales  LocaleLookup
	Rows     RowCounter
	Logger   *slog.Logger
}

// NewStages returns every stage in execution order.
func NewStages(d Deps, s Settings) []Stage {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return []Stage{
		NewLanguagesStage(d.Source, d.Target, s, d.Locales, d.Rows, logger),
		NewLinker(PostKind(d.Source, s), d.DB, d.Tables, d.Target, s.BatchSize, d.Rows, logger),
		NewLinker(TermKind(d.Source, s), d.DB, d.Tables, d.Target, s.BatchSize, d.Rows, logger),
		NewMenusStage(d.Source, d.Options, s, d.Rows, logger),
		NewNoLanguageStage(d.Target, s, d.Rows, logger),
		NewStringsStage(d.Source, d.Target, d.Catalogs, s, d.Rows, logger),
		NewOptionsStage(d.Options, s, logger),
	}
}
