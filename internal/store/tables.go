// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"fmt"
	"regexp"
)

// DefaultPrefix is the stock WordPress table prefix.
const DefaultPrefix = "wp_"

var validPrefix = regexp.MustCompile(`^[A-Za-z0-9_]{0,32}$`)

// Tables resolves WordPress table names for a given prefix.
type Tables struct {
	prefix string
}

// NewTables validates prefix and returns a table name resolver.
// The prefix is interpolated into SQL so only [A-Za-z0-9_] is accepted.
func NewTables(prefix string) (Tables, error) {
	if !validPrefix.MatchString(prefix) {
		return Tables{}, fmt.Errorf("invalid table prefix %q", prefix)
	}
	return Tables{prefix: prefix}, nil
}

// MustTables is NewTables for known-good prefixes.
func MustTables(prefix string) Tables {
	t, err := NewTables(prefix)
	if err != nil {
		panic(err)
	}
	return t
}

// Prefix returns the table prefix.
func (t Tables) Prefix() string { return t.prefix }

func (t Tables) Options() string           { return t.prefix + "options" }
func (t Tables) Posts() string             { return t.prefix + "posts" }
func (t Tables) PostMeta() string          { return t.prefix + "postmeta" }
func (t Tables) Terms() string             { return t.prefix + "terms" }
func (t Tables) TermMeta() string          { return t.prefix + "termmeta" }
func (t Tables) TermTaxonomy() string      { return t.prefix + "term_taxonomy" }
func (t Tables) TermRelationships() string { return t.prefix + "term_relationships" }

func (t Tables) ICLTranslations() string          { return t.prefix + "icl_translations" }
func (t Tables) ICLLanguages() string             { return t.prefix + "icl_languages" }
func (t Tables) ICLLanguagesTranslations() string { return t.prefix + "icl_languages_translations" }
func (t Tables) ICLStrings() string               { return t.prefix + "icl_strings" }
func (t Tables) ICLStringTranslations() string    { return t.prefix + "icl_string_translations" }

// Side tables owned by the migration tool. They carry the site prefix so
// several sites can share one database.
func (t Tables) Members() string { return t.prefix + "wpml2pll_translation_members" }
func (t Tables) Events() string  { return t.prefix + "wpml2pll_events" }
func (t Tables) Version() string { return t.prefix + "wpml2pll_db_version" }
