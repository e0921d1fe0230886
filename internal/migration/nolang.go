// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"log/slog"

	"github.com/olegiv/wpml2pll/internal/model"
)

// NoLanguageStage gives the default language to every translatable object
// left without one.
type NoLanguageStage struct {
	target   LanguageModel
	settings Settings
	rows     RowCounter
	logger   *slog.Logger
}

// NewNoLanguageStage creates the sweep stage.
func NewNoLanguageStage(target LanguageModel, settings Settings, rows RowCounter, logger *slog.Logger) *NoLanguageStage {
	if rows == nil {
		rows = nopRows{}
	}
	return &NoLanguageStage{target: target, settings: settings, rows: rows, logger: logger}
}

func (s *NoLanguageStage) Name() string    { return StageNoLanguage }
func (s *NoLanguageStage) Message() string { return "Processing objects with no language" }

func (s *NoLanguageStage) PercentageComplete(context.Context, int) (int, error) { return 100, nil }

// ProcessStep loops until no object without a language remains. A pass that
// assigns nothing ends the loop, since repeating it cannot make progress.
func (s *NoLanguageStage) ProcessStep(ctx context.Context, _ int) error {
	lang := s.settings.Source.DefaultLanguage
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		objs, err := s.target.ObjectsWithNoLanguage(ctx, s.settings.BatchSize)
		if err != nil {
			return err
		}
		if objs.Empty() {
			break
		}

		posts, err := s.target.SetLanguageInMass(ctx, model.ObjectPost, objs.Posts, lang)
		if err != nil {
			return err
		}
		terms, err := s.target.SetLanguageInMass(ctx, model.ObjectTerm, objs.Terms, lang)
		if err != nil {
			return err
		}

		if posts+terms == 0 {
			s.logger.Warn("objects left without language",
				"language", lang, "posts", len(objs.Posts), "terms", len(objs.Terms))
			break
		}
		total += posts + terms
	}

	s.rows.AddRows(StageNoLanguage, "language_relations", total)
	return nil
}
