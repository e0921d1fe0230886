// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package options_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/testutil"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"plain string", "twentytwentyfour", "twentytwentyfour"},
		{"serialized string", `s:5:"hello";`, "hello"},
		{"int", "i:42;", int64(42)},
		{"bool", "b:1;", true},
		{"null", "N;", nil},
		{"list", `a:2:{i:0;s:2:"fr";i:1;s:2:"en";}`, []any{"fr", "en"}},
		{"map", `a:1:{s:2:"fr";i:3;}`, map[string]any{"fr": int64(3)}},
		{"sparse int keys", `a:1:{i:5;s:1:"x";}`, map[string]any{"5": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := options.Decode(tt.raw)
			if err != nil {
				t.Fatalf("Decode(%q): %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{"", false},
		{"0", false},
		{"1", true},
		{int64(0), false},
		{int64(2), true},
		{false, false},
		{[]any{}, false},
		{map[string]any{"a": int64(1)}, true},
	}
	for _, tt := range tests {
		if got := options.Truthy(tt.v); got != tt.want {
			t.Errorf("Truthy(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestToInt(t *testing.T) {
	tests := []struct {
		v    any
		want int64
	}{
		{"7", 7},
		{int64(7), 7},
		{"abc", 0},
		{true, 1},
	}
	for _, tt := range tests {
		if got := options.ToInt(tt.v); got != tt.want {
			t.Errorf("ToInt(%#v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestStoreRoundTrip(t *testing.T) {
	db, tables := testutil.WordPressDB(t)
	ctx := context.Background()
	s := options.New(db, tables)

	if _, ok, err := s.Get(ctx, "polylang"); err != nil || ok {
		t.Fatalf("Get(polylang) found = %v, err = %v; want missing", ok, err)
	}

	value := map[string]any{
		"default_lang": "fr",
		"rewrite":      int64(1),
		"post_types":   []any{"book"},
		"nav_menus": map[string]any{
			"theme": map[string]any{"primary": map[string]any{"fr": int64(3)}},
		},
	}
	if err := s.Set(ctx, "polylang", value); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Map(ctx, "polylang")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if !reflect.DeepEqual(got, value) {
		t.Errorf("Map = %#v, want %#v", got, value)
	}

	// Overwrite with the same value must not insert a duplicate row.
	if err := s.Set(ctx, "polylang", value); err != nil {
		t.Fatalf("second Set: %v", err)
	}
	if n := testutil.CountRows(t, db, "SELECT COUNT(*) FROM wp_options WHERE option_name = 'polylang'"); n != 1 {
		t.Errorf("polylang rows = %d, want 1", n)
	}

	if err := s.Set(ctx, "stylesheet", "twentytwentyfour"); err != nil {
		t.Fatalf("Set(stylesheet): %v", err)
	}
	theme, err := s.String(ctx, "stylesheet")
	if err != nil {
		t.Fatalf("String: %v", err)
	}
	if theme != "twentytwentyfour" {
		t.Errorf("stylesheet = %q", theme)
	}

	for range 2 {
		if err := s.Delete(ctx, "stylesheet"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
	}
	if _, ok, err := s.Get(ctx, "stylesheet"); err != nil || ok {
		t.Errorf("Get(stylesheet) found = %v, err = %v; want deleted", ok, err)
	}
}

func TestMapOfScalarIsEmpty(t *testing.T) {
	db, tables := testutil.WordPressDB(t)
	ctx := context.Background()
	testutil.SetOption(t, db, "blogname", "My blog")

	m, err := options.New(db, tables).Map(ctx, "blogname")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if len(m) != 0 {
		t.Errorf("Map(blogname) = %v, want empty", m)
	}
}
