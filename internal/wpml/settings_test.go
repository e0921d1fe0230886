// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package wpml

import (
	"reflect"
	"testing"
)

func TestParseSettings(t *testing.T) {
	raw := map[string]any{
		"default_language":          "fr",
		"languages_order":           []any{"fr", "en", "de"},
		"language_negotiation_type": "2",
		"language_domains":          map[string]any{"en": "example.com", "fr": "example.fr"},
		"custom_posts_sync_option":  map[string]any{"book": "1", "movie": int64(0), "post": int64(1), "wp_template": int64(1)},
		"taxonomies_sync_option":    map[string]any{"genre": int64(1), "wp_theme": int64(1), "category": int64(1)},
		"default_categories":        map[string]any{"fr": "12", "en": int64(1)},
		"sync_page_ordering":        int64(1),
		"sync_sticky_flag":          "0",
	}

	s := ParseSettings(raw)

	if s.DefaultLanguage != "fr" {
		t.Errorf("DefaultLanguage = %q", s.DefaultLanguage)
	}
	if !reflect.DeepEqual(s.LanguagesOrder, []string{"fr", "en", "de"}) {
		t.Errorf("LanguagesOrder = %v", s.LanguagesOrder)
	}
	if s.LanguageNegotiationType != NegotiationDomain {
		t.Errorf("LanguageNegotiationType = %d", s.LanguageNegotiationType)
	}
	if s.DefaultCategories["fr"] != 12 {
		t.Errorf("DefaultCategories[fr] = %d", s.DefaultCategories["fr"])
	}
	if s.LanguageDomains["fr"] != "example.fr" {
		t.Errorf("LanguageDomains[fr] = %q", s.LanguageDomains["fr"])
	}
	if !s.SyncPageOrdering || s.SyncStickyFlag {
		t.Errorf("sync flags = %v/%v", s.SyncPageOrdering, s.SyncStickyFlag)
	}

	wantPosts := []string{"post", "page", "wp_block", "book"}
	if got := s.TranslatedPostTypes(); !reflect.DeepEqual(got, wantPosts) {
		t.Errorf("TranslatedPostTypes() = %v, want %v", got, wantPosts)
	}
	wantTax := []string{"category", "post_tag", "genre"}
	if got := s.TranslatedTaxonomies(); !reflect.DeepEqual(got, wantTax) {
		t.Errorf("TranslatedTaxonomies() = %v, want %v", got, wantTax)
	}
	if got := s.CustomPostTypes(); !reflect.DeepEqual(got, []string{"book"}) {
		t.Errorf("CustomPostTypes() = %v", got)
	}
	if got := s.CustomTaxonomies(); !reflect.DeepEqual(got, []string{"genre"}) {
		t.Errorf("CustomTaxonomies() = %v", got)
	}
}

func TestCustomTypesSkipCoreTypes(t *testing.T) {
	s := Settings{
		CustomPostsSync: map[string]bool{"attachment": true, "wp_navigation": true, "event": true, "draft_type": false},
		TaxonomiesSync:  map[string]bool{"post_format": true, "nav_menu": true, "genre": true},
	}

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"CustomPostTypes", s.CustomPostTypes(), []string{"event"}},
		{"CustomTaxonomies", s.CustomTaxonomies(), []string{"genre"}},
		// Core types with translation enabled are still migrated.
		{"TranslatedPostTypes", s.TranslatedPostTypes(), []string{"post", "page", "wp_block", "attachment", "event", "wp_navigation"}},
		{"TranslatedTaxonomies", s.TranslatedTaxonomies(), []string{"category", "post_tag", "genre", "nav_menu", "post_format"}},
	}
	for _, tt := range tests {
		if !reflect.DeepEqual(tt.got, tt.want) {
			t.Errorf("%s() = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestParseSettingsEmpty(t *testing.T) {
	s := ParseSettings(map[string]any{})

	if s.LanguageNegotiationType != 0 || len(s.LanguagesOrder) != 0 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if got := s.TranslatedTaxonomies(); !reflect.DeepEqual(got, BuiltinTaxonomies) {
		t.Errorf("TranslatedTaxonomies() = %v", got)
	}
	if s.CustomTaxonomies() != nil {
		t.Errorf("CustomTaxonomies() = %v, want nil", s.CustomTaxonomies())
	}
}
