// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package wpml

import (
	"github.com/olegiv/wpml2pll/internal/options"
)

// SettingsOption is the option holding the WPML configuration.
const SettingsOption = "icl_sitepress_settings"

// Language negotiation types.
const (
	NegotiationDirectory = 1
	NegotiationDomain    = 2
	NegotiationParameter = 3
)

// Built-in types that are always translatable and never listed in the
// Polylang custom post type or taxonomy settings.
var (
	BuiltinPostTypes  = []string{"post", "page", "wp_block"}
	BuiltinTaxonomies = []string{"category", "post_tag"}

	excludedPostTypes  = map[string]bool{"wp_template": true}
	excludedTaxonomies = map[string]bool{"wp_theme": true, "wp_template_part_area": true}

	// Types registered by WordPress core. Polylang never lists them as custom.
	wordpressPostTypes = map[string]bool{
		"post": true, "page": true, "attachment": true, "revision": true, "nav_menu_item": true,
		"custom_css": true, "customize_changeset": true, "oembed_cache": true, "user_request": true,
		"wp_block": true, "wp_template": true, "wp_template_part": true, "wp_global_styles": true,
		"wp_navigation": true, "wp_font_family": true, "wp_font_face": true,
	}
	wordpressTaxonomies = map[string]bool{
		"category": true, "post_tag": true, "nav_menu": true, "link_category": true,
		"post_format": true, "wp_theme": true, "wp_template_part_area": true, "wp_pattern_category": true,
	}
)

// Settings is the subset of the WPML configuration the migration reads.
type Settings struct {
	DefaultLanguage         string
	LanguagesOrder          []string
	LanguageNegotiationType int
	LanguageDomains         map[string]string
	CustomPostsSync         map[string]bool
	TaxonomiesSync          map[string]bool
	DefaultCategories       map[string]int64

	SyncPageOrdering  bool
	SyncPageParent    bool
	SyncPageTemplate  bool
	SyncPingStatus    bool
	SyncCommentStatus bool
	SyncStickyFlag    bool
}

// ParseSettings builds Settings from the decoded settings option.
func ParseSettings(raw map[string]any) Settings {
	s := Settings{
		DefaultLanguage:         options.ToString(raw["default_language"]),
		LanguagesOrder:          options.ToStrings(raw["languages_order"]),
		LanguageNegotiationType: int(options.ToInt(raw["language_negotiation_type"])),
		LanguageDomains:         map[string]string{},
		CustomPostsSync:         truthyMap(raw["custom_posts_sync_option"]),
		TaxonomiesSync:          truthyMap(raw["taxonomies_sync_option"]),
		DefaultCategories:       map[string]int64{},

		SyncPageOrdering:  options.Truthy(raw["sync_page_ordering"]),
		SyncPageParent:    options.Truthy(raw["sync_page_parent"]),
		SyncPageTemplate:  options.Truthy(raw["sync_page_template"]),
		SyncPingStatus:    options.Truthy(raw["sync_ping_status"]),
		SyncCommentStatus: options.Truthy(raw["sync_comment_status"]),
		SyncStickyFlag:    options.Truthy(raw["sync_sticky_flag"]),
	}

	for lang, domain := range options.ToMap(raw["language_domains"]) {
		s.LanguageDomains[lang] = options.ToString(domain)
	}
	for lang, id := range options.ToMap(raw["default_categories"]) {
		s.DefaultCategories[lang] = options.ToInt(id)
	}

	return s
}

func truthyMap(v any) map[string]bool {
	out := map[string]bool{}
	for k, val := range options.ToMap(v) {
		out[k] = options.Truthy(val)
	}
	return out
}

// TranslatedPostTypes returns the built-in post types plus every custom
// post type with translation enabled, in a stable order.
func (s Settings) TranslatedPostTypes() []string {
	return translated(BuiltinPostTypes, s.CustomPostsSync, excludedPostTypes)
}

// TranslatedTaxonomies returns the built-in taxonomies plus every custom
// taxonomy with translation enabled, in a stable order.
func (s Settings) TranslatedTaxonomies() []string {
	return translated(BuiltinTaxonomies, s.TaxonomiesSync, excludedTaxonomies)
}

// CustomPostTypes returns the enabled post types WordPress core does not
// register, as listed in the Polylang post_types setting.
func (s Settings) CustomPostTypes() []string {
	return custom(s.CustomPostsSync, wordpressPostTypes)
}

// CustomTaxonomies returns the enabled taxonomies WordPress core does not
// register, as listed in the Polylang taxonomies setting.
func (s Settings) CustomTaxonomies() []string {
	return custom(s.TaxonomiesSync, wordpressTaxonomies)
}

func translated(builtin []string, enabled, excluded map[string]bool) []string {
	skip := make(map[string]bool, len(builtin)+len(excluded))
	for _, b := range builtin {
		skip[b] = true
	}
	for name := range excluded {
		skip[name] = true
	}
	out := append([]string(nil), builtin...)
	return append(out, custom(enabled, skip)...)
}

func custom(enabled, skip map[string]bool) []string {
	var out []string
	for _, name := range options.SortedKeys(enabled) {
		if enabled[name] && !skip[name] {
			out = append(out, name)
		}
	}
	return out
}
