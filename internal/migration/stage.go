// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package migration moves a WordPress site from WPML to Polylang in
// resumable steps. Each stage processes one bounded batch per call and
// reports how far along it is; the driver decides what runs next.
package migration

import (
	"context"
	"errors"

	"github.com/olegiv/wpml2pll/internal/model"
)

// Stage names, in execution order.
const (
	StageLanguages  = "create_languages"
	StagePosts      = "process_posts"
	StageTerms      = "process_terms"
	StageMenus      = "process_menus"
	StageNoLanguage = "process_no_language_objects"
	StageStrings    = "process_strings_translations"
	StageOptions    = "process_options"
)

// StageOrder lists every stage in the order they run.
var StageOrder = []string{
	StageLanguages,
	StagePosts,
	StageTerms,
	StageMenus,
	StageNoLanguage,
	StageStrings,
	StageOptions,
}

var (
	// ErrProtocol reports a malformed driver request. No stage ran.
	ErrProtocol = errors.New("invalid migration request")
	// ErrPrecondition reports a site that cannot be migrated as is.
	ErrPrecondition = errors.New("migration precondition failed")
)

// Stage is one resumable unit of the migration.
type Stage interface {
	Name() string
	// Message describes what the stage is doing, for progress display.
	Message() string
	// ProcessStep handles batch number step, starting at 1.
	ProcessStep(ctx context.Context, step int) error
	// PercentageComplete reports progress after step has been processed.
	PercentageComplete(ctx context.Context, step int) (int, error)
}

// SourceReader reads the WPML data.
type SourceReader interface {
	ActiveLanguages(ctx context.Context) ([]model.SourceLanguage, error)
	CountGroups(ctx context.Context, elementTypes []string) (int, error)
	GroupIDs(ctx context.Context, elementTypes []string, offset, limit int) ([]int64, error)
	PostGroupMembers(ctx context.Context, elementTypes []string, trids []int64) ([]model.TranslationRow, error)
	TermGroupMembers(ctx context.Context, elementTypes []string, trids []int64) ([]model.TranslationRow, error)
	MenuTranslations(ctx context.Context) ([]model.TranslationRow, error)
	CountStringTranslations(ctx context.Context, excludedDomains []string) (int, error)
	StringTranslations(ctx context.Context, excludedDomains []string, offset, limit int) ([]model.StringTranslation, error)
}

// LanguageModel is the Polylang side of the migration.
type LanguageModel interface {
	AddLanguage(ctx context.Context, f model.LanguageFields) error
	Languages(ctx context.Context) ([]model.Language, error)
	Language(ctx context.Context, slug string) (*model.Language, error)
	SetLanguageInMass(ctx context.Context, t model.ObjectType, ids []int64, slug string) (int, error)
	ObjectsWithNoLanguage(ctx context.Context, limit int) (model.NoLanguageObjects, error)
	CleanLanguagesCache(ctx context.Context) error
	UpdateLanguageCounts(ctx context.Context) error
	DeleteTranslationGroups(ctx context.Context, taxonomy string) (int, error)
}

// CatalogStore loads and saves per-language string catalogs.
type CatalogStore interface {
	LoadCatalog(ctx context.Context, lang model.Language) (*model.Catalog, error)
	SaveCatalog(ctx context.Context, lang model.Language, c *model.Catalog) error
}

// OptionStore reads and writes WordPress options.
type OptionStore interface {
	Get(ctx context.Context, name string) (any, bool, error)
	Map(ctx context.Context, name string) (map[string]any, error)
	String(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name string, value any) error
	Delete(ctx context.Context, name string) error
}

// RowCounter receives the number of rows a stage wrote.
type RowCounter interface {
	AddRows(stage, kind string, n int)
}

type nopRows struct{}

func (nopRows) AddRows(string, string, int) {}
