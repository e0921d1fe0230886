// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers: loggers and a throwaway
// WordPress database carrying the WPML and Polylang tables.
package testutil

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/elliotchance/phpserialize"

	"github.com/olegiv/wpml2pll/internal/store"

	_ "github.com/mattn/go-sqlite3"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent discards everything.
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var schema = []string{
	`CREATE TABLE wp_options (
		option_id INTEGER PRIMARY KEY AUTOINCREMENT,
		option_name TEXT NOT NULL UNIQUE,
		option_value TEXT NOT NULL,
		autoload TEXT NOT NULL DEFAULT 'yes'
	)`,
	`CREATE TABLE wp_posts (
		ID INTEGER PRIMARY KEY AUTOINCREMENT,
		post_author INTEGER NOT NULL DEFAULT 0,
		post_date DATETIME,
		post_date_gmt DATETIME,
		post_content TEXT NOT NULL DEFAULT '',
		post_title TEXT NOT NULL DEFAULT '',
		post_excerpt TEXT NOT NULL DEFAULT '',
		post_status TEXT NOT NULL DEFAULT 'publish',
		comment_status TEXT NOT NULL DEFAULT 'open',
		ping_status TEXT NOT NULL DEFAULT 'open',
		post_name TEXT NOT NULL DEFAULT '',
		to_ping TEXT NOT NULL DEFAULT '',
		pinged TEXT NOT NULL DEFAULT '',
		post_modified DATETIME,
		post_modified_gmt DATETIME,
		post_content_filtered TEXT NOT NULL DEFAULT '',
		post_type TEXT NOT NULL DEFAULT 'post'
	)`,
	`CREATE TABLE wp_postmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		post_id INTEGER NOT NULL,
		meta_key TEXT,
		meta_value TEXT
	)`,
	`CREATE TABLE wp_terms (
		term_id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL DEFAULT '',
		term_group INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE wp_termmeta (
		meta_id INTEGER PRIMARY KEY AUTOINCREMENT,
		term_id INTEGER NOT NULL,
		meta_key TEXT,
		meta_value TEXT
	)`,
	`CREATE TABLE wp_term_taxonomy (
		term_taxonomy_id INTEGER PRIMARY KEY AUTOINCREMENT,
		term_id INTEGER NOT NULL,
		taxonomy TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		parent INTEGER NOT NULL DEFAULT 0,
		count INTEGER NOT NULL DEFAULT 0,
		UNIQUE (term_id, taxonomy)
	)`,
	`CREATE TABLE wp_term_relationships (
		object_id INTEGER NOT NULL,
		term_taxonomy_id INTEGER NOT NULL,
		term_order INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (object_id, term_taxonomy_id)
	)`,
	`CREATE TABLE wp_icl_translations (
		translation_id INTEGER PRIMARY KEY AUTOINCREMENT,
		element_type TEXT NOT NULL,
		element_id INTEGER,
		trid INTEGER NOT NULL,
		language_code TEXT NOT NULL,
		source_language_code TEXT
	)`,
	`CREATE TABLE wp_icl_languages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		english_name TEXT NOT NULL DEFAULT '',
		default_locale TEXT,
		active INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE wp_icl_languages_translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		language_code TEXT NOT NULL,
		display_language_code TEXT NOT NULL,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE wp_icl_strings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		language TEXT NOT NULL DEFAULT 'en',
		context TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL DEFAULT '',
		value TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE wp_icl_string_translations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		string_id INTEGER NOT NULL,
		language TEXT NOT NULL,
		status INTEGER NOT NULL DEFAULT 10,
		value TEXT
	)`,
}

// WordPressDB creates a temporary SQLite database with the WordPress, WPML
// and Polylang tables used by the migration, plus the tool's own side tables.
// Tables use the default "wp_" prefix.
func WordPressDB(t *testing.T) (*sql.DB, store.Tables) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wordpress.db")
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db, AddSite(t, db, store.DefaultPrefix)
}

// AddSite creates the WordPress tables and the tool's side tables for another
// site sharing db under prefix.
func AddSite(t *testing.T, db *sql.DB, prefix string) store.Tables {
	t.Helper()

	tables, err := store.NewTables(prefix)
	if err != nil {
		t.Fatalf("NewTables: %v", err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(strings.ReplaceAll(stmt, store.DefaultPrefix, prefix)); err != nil {
			t.Fatalf("creating schema: %v", err)
		}
	}

	if err := store.Migrate(context.Background(), db, "sqlite3", tables); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	return tables
}

// Exec runs a statement and fails the test on error.
func Exec(t *testing.T, db *sql.DB, query string, args ...any) sql.Result {
	t.Helper()
	res, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	return res
}

// SetOption stores an option, PHP-serializing non-string values.
func SetOption(t *testing.T, db *sql.DB, name string, value any) {
	t.Helper()
	SetSiteOption(t, db, store.MustTables(store.DefaultPrefix), name, value)
}

// SetSiteOption is SetOption for the site behind tables.
func SetSiteOption(t *testing.T, db *sql.DB, tables store.Tables, name string, value any) {
	t.Helper()
	raw, ok := value.(string)
	if !ok {
		b, err := phpserialize.Marshal(value, nil)
		if err != nil {
			t.Fatalf("serializing option %s: %v", name, err)
		}
		raw = string(b)
	}
	Exec(t, db, `DELETE FROM `+tables.Options()+` WHERE option_name = ?`, name)
	Exec(t, db, `INSERT INTO `+tables.Options()+` (option_name, option_value) VALUES (?, ?)`, name, raw)
}

// AddSourceLanguage inserts an icl_languages row and its self-named translation.
func AddSourceLanguage(t *testing.T, db *sql.DB, code, locale, name string, active bool) {
	t.Helper()
	Exec(t, db, `INSERT INTO wp_icl_languages (code, english_name, default_locale, active) VALUES (?, ?, ?, ?)`,
		code, name, locale, active)
	Exec(t, db, `INSERT INTO wp_icl_languages_translations (language_code, display_language_code, name) VALUES (?, ?, ?)`,
		code, code, name)
}

// AddPost inserts a post of the given type and returns its id.
func AddPost(t *testing.T, db *sql.DB, postType, title string) int64 {
	t.Helper()
	return AddSitePost(t, db, store.MustTables(store.DefaultPrefix), postType, title)
}

// AddSitePost is AddPost for the site behind tables.
func AddSitePost(t *testing.T, db *sql.DB, tables store.Tables, postType, title string) int64 {
	t.Helper()
	res := Exec(t, db, `INSERT INTO `+tables.Posts()+` (post_title, post_name, post_type) VALUES (?, ?, ?)`, title, title, postType)
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId: %v", err)
	}
	return id
}

// AddTerm inserts a term in taxonomy and returns its term id and term_taxonomy id.
func AddTerm(t *testing.T, db *sql.DB, taxonomy, name string) (termID, ttID int64) {
	t.Helper()
	res := Exec(t, db, `INSERT INTO wp_terms (name, slug) VALUES (?, ?)`, name, name)
	termID, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId: %v", err)
	}
	res = Exec(t, db, `INSERT INTO wp_term_taxonomy (term_id, taxonomy) VALUES (?, ?)`, termID, taxonomy)
	ttID, err = res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId: %v", err)
	}
	return termID, ttID
}

// AddTranslation inserts an icl_translations row.
func AddTranslation(t *testing.T, db *sql.DB, elementType string, elementID, trid int64, lang string) {
	t.Helper()
	AddSiteTranslation(t, db, store.MustTables(store.DefaultPrefix), elementType, elementID, trid, lang)
}

// AddSiteTranslation is AddTranslation for the site behind tables.
func AddSiteTranslation(t *testing.T, db *sql.DB, tables store.Tables, elementType string, elementID, trid int64, lang string) {
	t.Helper()
	Exec(t, db, `INSERT INTO `+tables.ICLTranslations()+` (element_type, element_id, trid, language_code) VALUES (?, ?, ?, ?)`,
		elementType, elementID, trid, lang)
}

// CountRows returns SELECT COUNT(*) for query.
func CountRows(t *testing.T, db *sql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	if err := db.QueryRowContext(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count %q: %v", query, err)
	}
	return n
}
