// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/testutil"
)

// driverFactory wires the real stages the way the command does.
func (s *site) driverFactory() DriverFactory {
	return func(ctx context.Context) (*Driver, error) {
		st, err := LoadSettings(ctx, s.options, 100, nil)
		if err != nil {
			return nil, err
		}
		deps := s.deps(st)
		chain, err := NewChain(NewStages(deps, st)...)
		if err != nil {
			return nil, err
		}
		return NewDriver(chain, testutil.TestLoggerSilent(),
			WithPreflight(func(ctx context.Context) error { return Preflight(ctx, s.options, deps.Target) }),
			WithStatus(NewOptionStatus(s.options)),
		), nil
	}
}

func TestRunnerMigratesSite(t *testing.T) {
	s := newSite(t)
	ctx := context.Background()

	testutil.AddSourceLanguage(t, s.db, "en", "en_US", "English", true)
	testutil.AddSourceLanguage(t, s.db, "fr", "fr_FR", "Français", true)
	s.wpmlSettings(map[string]any{
		"default_language":   "en",
		"languages_order":    []any{"en", "fr"},
		"default_categories": map[string]any{"en": 1},
	})
	testutil.SetOption(t, s.db, "active_plugins", []any{"polylang/polylang.php"})

	uncategorized, _ := testutil.AddTerm(t, s.db, "category", "uncategorized")
	hello := testutil.AddPost(t, s.db, "post", "hello")
	bonjour := testutil.AddPost(t, s.db, "post", "bonjour")
	orphan := testutil.AddPost(t, s.db, "page", "orphan")
	testutil.AddTranslation(t, s.db, "post_post", hello, 1, "en")
	testutil.AddTranslation(t, s.db, "post_post", bonjour, 1, "fr")
	addString(t, s, "theme", "Hello", map[string]string{"fr": "Bonjour"})

	steps, err := NewRunner(s.driverFactory(), 0, testutil.TestLoggerSilent()).Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if steps != len(StageOrder) {
		t.Errorf("steps = %d, want %d", steps, len(StageOrder))
	}

	status, err := NewOptionStatus(s.options).Status(ctx)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != StatusCompleted {
		t.Errorf("status = %q, want %q", status, StatusCompleted)
	}

	m := s.model(s.settings(100))
	en := language(t, m, "en")
	fr := language(t, m, "fr")
	if en == nil || fr == nil {
		t.Fatalf("languages not created: en=%v fr=%v", en, fr)
	}

	relations := []struct {
		name string
		ttID int64
		want []int64
	}{
		{"en posts", en.TermTaxonomyID, []int64{hello, orphan}},
		{"fr posts", fr.TermTaxonomyID, []int64{bonjour}},
		{"en terms", en.TLTermTaxonomyID, []int64{uncategorized}},
	}
	for _, r := range relations {
		if got := s.relations(r.ttID); !slices.Equal(got, r.want) {
			t.Errorf("%s = %v, want %v", r.name, got, r.want)
		}
	}
	if got := options.ToInt(s.groupOf(model.TaxonomyPostTranslations, hello)["fr"]); got != bonjour {
		t.Errorf("fr translation of %d = %d, want %d", hello, got, bonjour)
	}

	catalog, err := m.LoadCatalog(ctx, *fr)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got, ok := catalog.Translate("Hello"); !ok || got != "Bonjour" {
		t.Errorf("Translate(Hello) = %q, %v, want Bonjour", got, ok)
	}

	pll, err := s.options.Map(ctx, PolylangOption)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if pll["default_lang"] != "en" {
		t.Errorf("default_lang = %v, want en", pll["default_lang"])
	}
	if got := options.ToInt(pll["force_lang"]); got != 1 {
		t.Errorf("force_lang = %d, want 1", got)
	}
}

func TestRunnerStopsOnPreflight(t *testing.T) {
	s := newSite(t)

	steps, err := NewRunner(s.driverFactory(), 0, testutil.TestLoggerSilent()).Run(context.Background())
	if !errors.Is(err, ErrPrecondition) {
		t.Fatalf("Run error = %v, want ErrPrecondition", err)
	}
	if steps != 0 {
		t.Errorf("steps = %d, want 0", steps)
	}

	status, err := NewOptionStatus(s.options).Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status != "" {
		t.Errorf("status = %q, want empty", status)
	}
}

func TestRunnerHonoursCancellation(t *testing.T) {
	s := newSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(s.driverFactory(), 0, testutil.TestLoggerSilent()).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}
