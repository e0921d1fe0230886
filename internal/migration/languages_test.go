// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"slices"
	"testing"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/testutil"
)

func codes(langs []model.SourceLanguage) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = l.Code
	}
	return out
}

func TestOrderLanguages(t *testing.T) {
	langs := []model.SourceLanguage{{Code: "en"}, {Code: "de"}, {Code: "fr"}, {Code: "it"}}

	tests := []struct {
		name  string
		order []string
		want  []string
	}{
		{"exhaustive order", []string{"fr", "en", "de", "it"}, []string{"fr", "en", "de", "it"}},
		{"missing appended", []string{"fr", "en"}, []string{"fr", "en", "de", "it"}},
		{"unknown codes ignored", []string{"xx", "it", "it"}, []string{"it", "en", "de", "fr"}},
		{"no order", nil, []string{"en", "de", "fr", "it"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := codes(OrderLanguages(langs, tt.order)); !slices.Equal(got, tt.want) {
				t.Errorf("OrderLanguages(%v) = %v, want %v", tt.order, got, tt.want)
			}
		})
	}
}

func TestLanguagesStage(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()

	testutil.AddSourceLanguage(t, s.db, "en", "en_US", "English", true)
	testutil.AddSourceLanguage(t, s.db, "de", "de_DE", "Deutsch", true)
	testutil.AddSourceLanguage(t, s.db, "fr", "fr_FR", "Français", true)
	testutil.AddSourceLanguage(t, s.db, "ar", "ar", "العربية", true)
	testutil.AddSourceLanguage(t, s.db, "es", "es_ES", "Español", false)
	s.wpmlSettings(map[string]any{
		"default_language": "fr",
		"languages_order":  []any{"fr", "en", "de"},
	})

	// Leftover from Polylang's own install.
	testutil.AddTerm(t, s.db, model.TaxonomyTermTranslations, "pll_leftover")

	st := s.settings(100)
	deps := s.deps(st)
	stage := NewLanguagesStage(deps.Source, deps.Target, st, deps.Locales, s.rows, deps.Logger)

	if err := stage.ProcessStep(ctx, 1); err != nil {
		t.Fatalf("ProcessStep: %v", err)
	}
	pct, err := stage.PercentageComplete(ctx, 1)
	if err != nil {
		t.Fatalf("PercentageComplete: %v", err)
	}
	if pct != 100 {
		t.Errorf("PercentageComplete = %d, want 100", pct)
	}

	langs, err := deps.Target.Languages(ctx)
	if err != nil {
		t.Fatalf("Languages: %v", err)
	}
	var slugs []string
	for _, l := range langs {
		slugs = append(slugs, l.Slug)
		if l.Order != 0 {
			t.Errorf("%s order = %d, want 0", l.Slug, l.Order)
		}
	}
	if want := []string{"fr", "en", "de", "ar"}; !slices.Equal(slugs, want) {
		t.Fatalf("languages = %v, want %v", slugs, want)
	}
	if !langs[3].RTL {
		t.Error("ar is not RTL")
	}
	if langs[2].Flag != "de" {
		t.Errorf("de flag = %q, want de", langs[2].Flag)
	}
	if got := s.rows.counts[StageLanguages+"/languages"]; got != 4 {
		t.Errorf("language rows = %d, want 4", got)
	}

	checkCount(t, s, 0, `SELECT COUNT(*) FROM wp_term_taxonomy WHERE taxonomy = 'term_translations'`)
}

func TestLanguagesStageContinuesOnDuplicate(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()

	testutil.AddSourceLanguage(t, s.db, "en", "en_US", "English", true)
	testutil.AddSourceLanguage(t, s.db, "fr", "fr_FR", "Français", true)
	s.wpmlSettings(map[string]any{"languages_order": []any{"en", "fr"}})

	st := s.settings(100)
	deps := s.deps(st)
	s.addLanguages(deps.Target, "en")

	stage := NewLanguagesStage(deps.Source, deps.Target, st, deps.Locales, s.rows, deps.Logger)
	if err := stage.ProcessStep(ctx, 1); err != nil {
		t.Fatalf("ProcessStep: %v", err)
	}

	if fr := language(t, deps.Target, "fr"); fr == nil {
		t.Error("fr was not created")
	}
	if got := s.rows.counts[StageLanguages+"/languages"]; got != 1 {
		t.Errorf("language rows = %d, want 1", got)
	}
}
