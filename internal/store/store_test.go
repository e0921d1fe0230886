// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/olegiv/wpml2pll/internal/store"
	"github.com/olegiv/wpml2pll/internal/testutil"
)

func TestNewTables(t *testing.T) {
	tests := []struct {
		prefix  string
		wantErr bool
	}{
		{"wp_", false},
		{"", false},
		{"site2_", false},
		{"wp_; DROP TABLE", true},
		{"wp-", true},
		{"abcdefghijklmnopqrstuvwxyz0123456789", true},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			tables, err := store.NewTables(tt.prefix)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewTables(%q) err = %v, wantErr %v", tt.prefix, err, tt.wantErr)
			}
			if err == nil && tables.Options() != tt.prefix+"options" {
				t.Errorf("Options() = %q", tables.Options())
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := store.Placeholders(n); got != want {
			t.Errorf("Placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestMigrateCreatesSideTables(t *testing.T) {
	db, tables := testutil.WordPressDB(t)

	// Running twice is a no-op.
	if err := store.Migrate(context.Background(), db, "sqlite3", tables); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}

	for _, table := range []string{tables.Members(), tables.Events()} {
		n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM "+table)
		if n != 0 {
			t.Errorf("%s has %d rows, want 0", table, n)
		}
	}
}

func TestMigrateKeepsSitesApart(t *testing.T) {
	db, wp := testutil.WordPressDB(t)
	other := testutil.AddSite(t, db, "b_")

	testutil.Exec(t, db, `INSERT INTO `+wp.Members()+` (group_id, taxonomy, language_code, object_id) VALUES (1, 'post_translations', 'en', 10)`)

	if n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM "+other.Members()); n != 0 {
		t.Errorf("%s has %d rows, want 0", other.Members(), n)
	}
	for _, tables := range []store.Tables{wp, other} {
		n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM "+tables.Version()+" WHERE version_id > 0")
		if n != 2 {
			t.Errorf("%s records %d versions, want 2", tables.Version(), n)
		}
	}
}

func TestBulkInsertChunks(t *testing.T) {
	db, tables := testutil.WordPressDB(t)
	ctx := context.Background()

	// Two columns at MaxParams per statement forces several statements.
	total := store.MaxParams + 10
	rows := make([][]any, total)
	for i := range rows {
		rows[i] = []any{int64(i + 1), int64(7)}
	}

	n, err := store.BulkInsert(ctx, db, tables.TermRelationships(), []string{"object_id", "term_taxonomy_id"}, rows)
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if n != int64(total) {
		t.Errorf("written = %d, want %d", n, total)
	}
	if got := testutil.CountRows(t, db, "SELECT COUNT(*) FROM wp_term_relationships"); got != total {
		t.Errorf("row count = %d, want %d", got, total)
	}
}

func TestBulkInsertRejectsRaggedRows(t *testing.T) {
	db, tables := testutil.WordPressDB(t)

	_, err := store.BulkInsert(context.Background(), db, tables.TermRelationships(),
		[]string{"object_id", "term_taxonomy_id"}, [][]any{{int64(1)}})
	if err == nil {
		t.Fatal("expected error for short row")
	}
}

func TestWithTxRollsBack(t *testing.T) {
	db, _ := testutil.WordPressDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, db, func(tx store.DBTX) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO wp_terms (name, slug) VALUES ('a', 'a')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx err = %v, want boom", err)
	}
	if n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM wp_terms"); n != 0 {
		t.Errorf("terms = %d after rollback, want 0", n)
	}
}
