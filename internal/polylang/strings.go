// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package polylang

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/options"
)

// StringsMetaKey is the language term meta holding string translations.
const StringsMetaKey = "_pll_strings_translations"

// LoadCatalog reads the strings translations stored for a language.
// A language without stored translations yields an empty catalog.
func (m *Model) LoadCatalog(ctx context.Context, lang model.Language) (*model.Catalog, error) {
	raw, ok, err := m.catalogMeta(ctx, lang.TermID)
	if err != nil {
		return nil, err
	}
	c := model.NewCatalog()
	if !ok {
		return c, nil
	}

	v, err := options.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding strings translations for %s: %w", lang.Slug, err)
	}
	for _, item := range options.ToList(v) {
		pair := options.ToList(item)
		if len(pair) < 2 {
			continue
		}
		c.Add(options.ToString(pair[0]), options.ToString(pair[1]))
	}
	return c, nil
}

// SaveCatalog stores the catalog for a language, replacing what was stored.
func (m *Model) SaveCatalog(ctx context.Context, lang model.Language, c *model.Catalog) error {
	entries := c.Entries()
	pairs := make([]any, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, []any{e.Source, e.Translation})
	}
	raw, err := options.Encode(pairs)
	if err != nil {
		return fmt.Errorf("encoding strings translations for %s: %w", lang.Slug, err)
	}

	_, exists, err := m.catalogMeta(ctx, lang.TermID)
	if err != nil {
		return err
	}

	if exists {
		query := fmt.Sprintf(`UPDATE %s SET meta_value = ? WHERE term_id = ? AND meta_key = ?`, m.tables.TermMeta())
		_, err = m.db.ExecContext(ctx, query, raw, lang.TermID, StringsMetaKey)
	} else {
		query := fmt.Sprintf(`INSERT INTO %s (term_id, meta_key, meta_value) VALUES (?, ?, ?)`, m.tables.TermMeta())
		_, err = m.db.ExecContext(ctx, query, lang.TermID, StringsMetaKey, raw)
	}
	if err != nil {
		return fmt.Errorf("saving strings translations for %s: %w", lang.Slug, err)
	}
	return nil
}

func (m *Model) catalogMeta(ctx context.Context, termID int64) (string, bool, error) {
	query := fmt.Sprintf(`SELECT meta_value FROM %s WHERE term_id = ? AND meta_key = ? ORDER BY meta_id LIMIT 1`, m.tables.TermMeta())

	var raw sql.NullString
	err := m.db.QueryRowContext(ctx, query, termID, StringsMetaKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading strings translations: %w", err)
	}
	return raw.String, true, nil
}
