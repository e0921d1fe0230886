// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"database/sql"
	"testing"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/polylang"
	"github.com/olegiv/wpml2pll/internal/store"
	"github.com/olegiv/wpml2pll/internal/testutil"
	"github.com/olegiv/wpml2pll/internal/wpml"
)

// site is a WordPress database with WPML data and the real collaborators.
type site struct {
	t       *testing.T
	db      *sql.DB
	tables  store.Tables
	options *options.Store
	source  *wpml.Reader
	rows    *rowCounts
}

type rowCounts struct {
	counts map[string]int
}

func (r *rowCounts) AddRows(stage, kind string, n int) {
	r.counts[stage+"/"+kind] += n
}

func newSite(t *testing.T) *site {
	t.Helper()
	db, tables := testutil.WordPressDB(t)
	return siteOf(t, db, tables)
}

// addSite creates another site under prefix in the same database.
func (s *site) addSite(prefix string) *site {
	s.t.Helper()
	return siteOf(s.t, s.db, testutil.AddSite(s.t, s.db, prefix))
}

func siteOf(t *testing.T, db *sql.DB, tables store.Tables) *site {
	return &site{
		t:       t,
		db:      db,
		tables:  tables,
		options: options.New(db, tables),
		source:  wpml.NewReader(db, tables),
		rows:    &rowCounts{counts: map[string]int{}},
	}
}

// wpmlSettings stores the WPML settings option.
func (s *site) wpmlSettings(v map[string]any) {
	s.t.Helper()
	testutil.SetSiteOption(s.t, s.db, s.tables, wpml.SettingsOption, v)
}

func (s *site) settings(batchSize int) Settings {
	s.t.Helper()
	st, err := LoadSettings(context.Background(), s.options, batchSize, nil)
	if err != nil {
		s.t.Fatalf("LoadSettings: %v", err)
	}
	return st
}

func (s *site) model(st Settings) *polylang.Model {
	return polylang.NewModel(s.db, s.tables, nil, testutil.TestLoggerSilent(),
		polylang.WithTranslatedTypes(st.Source.TranslatedPostTypes(), st.Source.TranslatedTaxonomies()))
}

func (s *site) deps(st Settings) Deps {
	m := s.model(st)
	return Deps{
		DB:       s.db,
		Tables:   s.tables,
		Source:   s.source,
		Target:   m,
		Catalogs: m,
		Options:  s.options,
		Locales:  polylang.LookupLocale,
		Rows:     s.rows,
		Logger:   testutil.TestLoggerSilent(),
	}
}

// addLanguages provisions Polylang languages directly.
func (s *site) addLanguages(m LanguageModel, codes ...string) {
	s.t.Helper()
	locales := map[string]string{"en": "en_US", "fr": "fr_FR", "de": "de_DE"}
	for _, code := range codes {
		if err := m.AddLanguage(context.Background(), model.LanguageFields{Slug: code, Locale: locales[code], Name: code}); err != nil {
			s.t.Fatalf("AddLanguage(%s): %v", code, err)
		}
	}
}

// addPostGroup inserts one post per language sharing trid and returns their ids.
func (s *site) addPostGroup(trid int64, langs ...string) []int64 {
	s.t.Helper()
	ids := make([]int64, 0, len(langs))
	for _, lang := range langs {
		id := testutil.AddSitePost(s.t, s.db, s.tables, "post", "post-"+lang)
		testutil.AddSiteTranslation(s.t, s.db, s.tables, "post_post", id, trid, lang)
		ids = append(ids, id)
	}
	return ids
}

// relations returns the object ids related to a term_taxonomy id.
func (s *site) relations(ttID int64) []int64 {
	s.t.Helper()
	rows, err := s.db.Query(`SELECT object_id FROM `+s.tables.TermRelationships()+` WHERE term_taxonomy_id = ? ORDER BY object_id`, ttID)
	if err != nil {
		s.t.Fatalf("query relations: %v", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			s.t.Fatalf("scan: %v", err)
		}
		ids = append(ids, id)
	}
	return ids
}

// groupOf returns the translation group description of an object.
func (s *site) groupOf(taxonomy string, objectID int64) map[string]any {
	s.t.Helper()
	var raw string
	err := s.db.QueryRow(`
		SELECT tt.description FROM `+s.tables.TermTaxonomy()+` tt
		JOIN `+s.tables.TermRelationships()+` tr ON tr.term_taxonomy_id = tt.term_taxonomy_id
		WHERE tt.taxonomy = ? AND tr.object_id = ?`, taxonomy, objectID).Scan(&raw)
	if err != nil {
		s.t.Fatalf("group of %d: %v", objectID, err)
	}
	v, err := options.Decode(raw)
	if err != nil {
		s.t.Fatalf("decode group: %v", err)
	}
	return options.ToMap(v)
}
