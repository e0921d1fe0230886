// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/wpml"
)

// Polylang URL modes (force_lang).
const (
	forceLangDirectory = 1
	forceLangDomains   = 3
)

// syncFields maps WPML sync flags to the fields Polylang synchronizes.
var syncFields = []struct {
	Flag  string
	Field string
	isSet func(wpml.Settings) bool
}{
	{"sync_page_ordering", "menu_order", func(s wpml.Settings) bool { return s.SyncPageOrdering }},
	{"sync_page_parent", "post_parent", func(s wpml.Settings) bool { return s.SyncPageParent }},
	{"sync_page_template", "_wp_page_template", func(s wpml.Settings) bool { return s.SyncPageTemplate }},
	{"sync_ping_status", "ping_status", func(s wpml.Settings) bool { return s.SyncPingStatus }},
	{"sync_comment_status", "comment_status", func(s wpml.Settings) bool { return s.SyncCommentStatus }},
	{"sync_sticky_flag", "sticky_posts", func(s wpml.Settings) bool { return s.SyncStickyFlag }},
}

// OptionsStage writes the Polylang settings derived from WPML's.
type OptionsStage struct {
	options  OptionStore
	settings Settings
	logger   *slog.Logger
}

// NewOptionsStage creates the options stage.
func NewOptionsStage(opts OptionStore, settings Settings, logger *slog.Logger) *OptionsStage {
	return &OptionsStage{options: opts, settings: settings, logger: logger}
}

func (s *OptionsStage) Name() string    { return StageOptions }
func (s *OptionsStage) Message() string { return "Processing options" }

func (s *OptionsStage) PercentageComplete(context.Context, int) (int, error) { return 100, nil }

// ProcessStep updates the Polylang record, the default category and the
// dismissed notices, then drops the cached rewrite rules.
func (s *OptionsStage) ProcessStep(ctx context.Context, _ int) error {
	if !s.settings.SourceFound {
		s.logger.Warn("WPML settings not found, options left unchanged")
		return nil
	}

	current, err := s.options.Map(ctx, PolylangOption)
	if err != nil {
		return err
	}
	ApplyOptions(current, s.settings.Source)
	if err := s.options.Set(ctx, PolylangOption, current); err != nil {
		return err
	}

	src := s.settings.Source
	if cat, ok := src.DefaultCategories[src.DefaultLanguage]; ok && cat > 0 {
		if err := s.options.Set(ctx, "default_category", strconv.FormatInt(cat, 10)); err != nil {
			return err
		}
	}

	if err := s.dismissWizard(ctx); err != nil {
		return err
	}

	// WordPress rebuilds the rules on the next request.
	return s.options.Delete(ctx, "rewrite_rules")
}

// ApplyOptions overwrites the Polylang fields WPML has an equivalent for and
// leaves every other field of pll untouched.
func ApplyOptions(pll map[string]any, src wpml.Settings) {
	pll["rewrite"] = int64(1)
	pll["hide_default"] = int64(1)
	pll["redirect_lang"] = int64(1)
	pll["default_lang"] = src.DefaultLanguage

	// Query parameter mode has no Polylang equivalent and falls back to directories.
	if src.LanguageNegotiationType == wpml.NegotiationDomain {
		pll["force_lang"] = int64(forceLangDomains)
	} else {
		pll["force_lang"] = int64(forceLangDirectory)
	}

	domains := make(map[string]any, len(src.LanguageDomains))
	for lang, domain := range src.LanguageDomains {
		domains[lang] = domain
	}
	pll["domains"] = domains

	if len(src.CustomPostsSync) > 0 {
		pll["post_types"] = anyList(src.CustomPostTypes())
		media := int64(0)
		if src.CustomPostsSync["attachment"] {
			media = 1
		}
		pll["media_support"] = media
	}
	if len(src.TaxonomiesSync) > 0 {
		pll["taxonomies"] = anyList(src.CustomTaxonomies())
	}

	sync := []any{}
	for _, f := range syncFields {
		if f.isSet(src) {
			sync = append(sync, f.Field)
		}
	}
	pll["sync"] = sync
}

func anyList(names []string) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

func (s *OptionsStage) dismissWizard(ctx context.Context) error {
	raw, _, err := s.options.Get(ctx, "pll_dismissed_notices")
	if err != nil {
		return err
	}
	notices := options.ToList(raw)
	for _, n := range notices {
		if options.ToString(n) == "wizard" {
			return nil
		}
	}
	return s.options.Set(ctx, "pll_dismissed_notices", append(notices, "wizard"))
}
