// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package polylang

import (
	"context"
	"fmt"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/store"
)

// SetLanguageInMass tags objects with a language. Unknown languages are a
// no-op. It returns the number of objects tagged.
func (m *Model) SetLanguageInMass(ctx context.Context, t model.ObjectType, ids []int64, slug string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	lang, err := m.Language(ctx, slug)
	if err != nil {
		return 0, err
	}
	if lang == nil {
		m.logger.Warn("cannot assign unknown language", "language", slug, "type", t, "objects", len(ids))
		return 0, nil
	}
	ttID := lang.TaxonomyIDFor(t)
	if ttID == 0 {
		return 0, fmt.Errorf("language %s has no %s taxonomy", slug, t)
	}

	seen := make(map[int64]bool, len(ids))
	rows := make([][]any, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, []any{id, ttID})
	}

	n, err := store.BulkInsert(ctx, m.db, m.tables.TermRelationships(), []string{"object_id", "term_taxonomy_id"}, rows)
	if err != nil {
		return int(n), fmt.Errorf("assigning language %s: %w", slug, err)
	}
	if err := m.UpdateLanguageCounts(ctx); err != nil {
		return int(n), err
	}
	return int(n), nil
}

// ObjectsWithNoLanguage returns up to limit posts and up to limit terms of
// translatable types that carry no language tag.
func (m *Model) ObjectsWithNoLanguage(ctx context.Context, limit int) (model.NoLanguageObjects, error) {
	var out model.NoLanguageObjects

	langs, err := m.Languages(ctx)
	if err != nil {
		return out, err
	}
	if len(langs) == 0 || limit <= 0 {
		return out, nil
	}

	postTags := make([]int64, 0, len(langs))
	termTags := make([]int64, 0, len(langs))
	for _, l := range langs {
		postTags = append(postTags, l.TermTaxonomyID)
		if l.TLTermTaxonomyID != 0 {
			termTags = append(termTags, l.TLTermTaxonomyID)
		}
	}

	if len(m.postTypes) > 0 {
		query := fmt.Sprintf(`
			SELECT p.ID FROM %s AS p
			WHERE p.post_type IN (%s) AND p.post_status != 'auto-draft'
			AND p.ID NOT IN (SELECT object_id FROM %s WHERE term_taxonomy_id IN (%s))
			ORDER BY p.ID
			LIMIT ?`,
			m.tables.Posts(), store.Placeholders(len(m.postTypes)),
			m.tables.TermRelationships(), store.Placeholders(len(postTags)))

		args := append(store.StringArgs(m.postTypes), store.Int64Args(postTags)...)
		if out.Posts, err = m.ids(ctx, query, append(args, limit)); err != nil {
			return out, fmt.Errorf("failed to query posts without language: %w", err)
		}
	}

	if len(m.taxonomies) > 0 && len(termTags) > 0 {
		query := fmt.Sprintf(`
			SELECT DISTINCT tt.term_id FROM %s AS tt
			WHERE tt.taxonomy IN (%s)
			AND tt.term_id NOT IN (SELECT object_id FROM %s WHERE term_taxonomy_id IN (%s))
			ORDER BY tt.term_id
			LIMIT ?`,
			m.tables.TermTaxonomy(), store.Placeholders(len(m.taxonomies)),
			m.tables.TermRelationships(), store.Placeholders(len(termTags)))

		args := append(store.StringArgs(m.taxonomies), store.Int64Args(termTags)...)
		if out.Terms, err = m.ids(ctx, query, append(args, limit)); err != nil {
			return out, fmt.Errorf("failed to query terms without language: %w", err)
		}
	}

	return out, nil
}

func (m *Model) ids(ctx context.Context, query string, args []any) ([]int64, error) {
	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// DeleteTranslationGroups removes every term of a translation taxonomy
// together with its relationships and recorded members. It returns the
// number of groups removed.
func (m *Model) DeleteTranslationGroups(ctx context.Context, taxonomy string) (int, error) {
	query := fmt.Sprintf(`SELECT term_taxonomy_id, term_id FROM %s WHERE taxonomy = ?`, m.tables.TermTaxonomy())
	rows, err := m.db.QueryContext(ctx, query, taxonomy)
	if err != nil {
		return 0, fmt.Errorf("failed to query %s groups: %w", taxonomy, err)
	}
	var ttIDs, termIDs []int64
	for rows.Next() {
		var ttID, termID int64
		if err := rows.Scan(&ttID, &termID); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("failed to scan %s group: %w", taxonomy, err)
		}
		ttIDs = append(ttIDs, ttID)
		termIDs = append(termIDs, termID)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return 0, err
	}
	if len(ttIDs) == 0 {
		return 0, nil
	}

	err = store.WithTx(ctx, m.db, func(tx store.DBTX) error {
		for start := 0; start < len(ttIDs); start += store.MaxParams {
			end := min(start+store.MaxParams, len(ttIDs))
			tts := store.Int64Args(ttIDs[start:end])
			terms := store.Int64Args(termIDs[start:end])
			in := store.Placeholders(end - start)

			stmts := []struct {
				query string
				args  []any
			}{
				{fmt.Sprintf(`DELETE FROM %s WHERE term_taxonomy_id IN (%s)`, m.tables.TermRelationships(), in), tts},
				{fmt.Sprintf(`DELETE FROM %s WHERE group_id IN (%s)`, m.tables.Members(), in), tts},
				{fmt.Sprintf(`DELETE FROM %s WHERE term_taxonomy_id IN (%s)`, m.tables.TermTaxonomy(), in), tts},
				{fmt.Sprintf(`DELETE FROM %s WHERE term_id IN (%s)`, m.tables.Terms(), in), terms},
			}
			for _, s := range stmts {
				if _, err := tx.ExecContext(ctx, s.query, s.args...); err != nil {
					return fmt.Errorf("deleting %s groups: %w", taxonomy, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("translation groups deleted", "taxonomy", taxonomy, "count", len(ttIDs))
	return len(ttIDs), nil
}
