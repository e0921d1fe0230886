// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// SourceLanguage is an active WPML language as read from icl_languages.
type SourceLanguage struct {
	Code   string // language code, becomes the Polylang slug
	Locale string // WordPress locale, e.g. fr_FR
	Name   string // self-referential display name
}

// LanguageFields describes a language to be provisioned in Polylang.
type LanguageFields struct {
	Slug         string
	Locale       string
	Name         string
	RTL          bool
	Flag         string
	TermGroup    int
	NoDefaultCat bool
}

// Language is a Polylang language as stored in the target taxonomies.
type Language struct {
	TermID int64  `json:"term_id"`
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
	RTL    bool   `json:"rtl"`
	Flag   string `json:"flag_code"`
	Order  int    `json:"term_group"`
	Count  int64  `json:"count"`

	// TermTaxonomyID is the row in the "language" taxonomy, used to tag posts.
	TermTaxonomyID int64 `json:"term_taxonomy_id"`
	// TLTermTaxonomyID is the row in the "term_language" taxonomy, used to tag terms.
	TLTermTaxonomyID int64 `json:"tl_term_taxonomy_id"`
}

// TaxonomyIDFor returns the language tag for the given object type.
func (l *Language) TaxonomyIDFor(t ObjectType) int64 {
	if t == ObjectTerm {
		return l.TLTermTaxonomyID
	}
	return l.TermTaxonomyID
}

// LanguageMeta is the locale metadata Polylang keeps for known locales.
type LanguageMeta struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	RTL  bool   `yaml:"rtl"`
	Flag string `yaml:"flag"`
}
