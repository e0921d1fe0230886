// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package wpml reads the WPML source data: settings, active languages,
// translation groups and string translations.
package wpml

import (
	"context"
	"fmt"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/store"
)

// Element type prefixes used in icl_translations.element_type.
const (
	postElementPrefix = "post_"
	termElementPrefix = "tax_"
	navMenuElement    = "tax_nav_menu"
)

// Reader reads data from the WPML tables of a WordPress database.
type Reader struct {
	db     store.DBTX
	tables store.Tables
}

// NewReader creates a WPML reader.
func NewReader(db store.DBTX, tables store.Tables) *Reader {
	return &Reader{db: db, tables: tables}
}

// ActiveLanguages returns the active languages with their self-referential names.
func (r *Reader) ActiveLanguages(ctx context.Context) ([]model.SourceLanguage, error) {
	query := fmt.Sprintf(`
		SELECT l.code, COALESCE(l.default_locale, ''), lt.name
		FROM %s AS l
		INNER JOIN %s AS lt ON l.code = lt.language_code
		WHERE l.active = 1 AND lt.language_code = lt.display_language_code
		ORDER BY l.id`,
		r.tables.ICLLanguages(), r.tables.ICLLanguagesTranslations())

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var langs []model.SourceLanguage
	for rows.Next() {
		var l model.SourceLanguage
		if err := rows.Scan(&l.Code, &l.Locale, &l.Name); err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

// PostElementTypes returns the element_type values for post types.
func PostElementTypes(postTypes []string) []string {
	return prefixed(postElementPrefix, postTypes)
}

// TermElementTypes returns the element_type values for taxonomies.
func TermElementTypes(taxonomies []string) []string {
	return prefixed(termElementPrefix, taxonomies)
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = prefix + n
	}
	return out
}

// CountGroups returns the number of distinct trids among elementTypes.
func (r *Reader) CountGroups(ctx context.Context, elementTypes []string) (int, error) {
	if len(elementTypes) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT trid) FROM %s WHERE element_type IN (%s)`,
		r.tables.ICLTranslations(), store.Placeholders(len(elementTypes)))

	var n int
	if err := r.db.QueryRowContext(ctx, query, store.StringArgs(elementTypes)...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count translation groups: %w", err)
	}
	return n, nil
}

// GroupIDs returns a page of distinct trids among elementTypes, ordered by trid.
func (r *Reader) GroupIDs(ctx context.Context, elementTypes []string, offset, limit int) ([]int64, error) {
	if len(elementTypes) == 0 || limit <= 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT DISTINCT trid FROM %s
		WHERE element_type IN (%s)
		ORDER BY trid
		LIMIT ? OFFSET ?`,
		r.tables.ICLTranslations(), store.Placeholders(len(elementTypes)))

	args := append(store.StringArgs(elementTypes), limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query translation groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trid: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PostGroupMembers returns the (trid, language, post id) rows of the given groups.
func (r *Reader) PostGroupMembers(ctx context.Context, elementTypes []string, trids []int64) ([]model.TranslationRow, error) {
	if len(elementTypes) == 0 || len(trids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT trid, language_code, COALESCE(element_id, 0)
		FROM %s
		WHERE trid IN (%s) AND element_type IN (%s)
		ORDER BY translation_id`,
		r.tables.ICLTranslations(), store.Placeholders(len(trids)), store.Placeholders(len(elementTypes)))

	args := append(store.Int64Args(trids), store.StringArgs(elementTypes)...)
	return r.translationRows(ctx, query, args)
}

// TermGroupMembers returns the (trid, language, term id) rows of the given groups.
// WPML keys terms by term_taxonomy_id; rows are resolved to term ids.
func (r *Reader) TermGroupMembers(ctx context.Context, elementTypes []string, trids []int64) ([]model.TranslationRow, error) {
	if len(elementTypes) == 0 || len(trids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT wpml.trid, wpml.language_code, tt.term_id
		FROM %s AS wpml
		INNER JOIN %s AS tt
			ON tt.term_taxonomy_id = wpml.element_id
			AND tt.taxonomy = SUBSTR(wpml.element_type, %d)
		WHERE wpml.trid IN (%s) AND wpml.element_type IN (%s)
		ORDER BY wpml.translation_id`,
		r.tables.ICLTranslations(), r.tables.TermTaxonomy(), len(termElementPrefix)+1,
		store.Placeholders(len(trids)), store.Placeholders(len(elementTypes)))

	args := append(store.Int64Args(trids), store.StringArgs(elementTypes)...)
	return r.translationRows(ctx, query, args)
}

// MenuTranslations returns every (trid, language, menu term id) row of nav menus.
func (r *Reader) MenuTranslations(ctx context.Context) ([]model.TranslationRow, error) {
	query := fmt.Sprintf(`
		SELECT wpml.trid, wpml.language_code, tt.term_id
		FROM %s AS wpml
		INNER JOIN %s AS tt
			ON tt.term_taxonomy_id = wpml.element_id
			AND tt.taxonomy = 'nav_menu'
		WHERE wpml.element_type = ?
		ORDER BY wpml.trid, wpml.translation_id`,
		r.tables.ICLTranslations(), r.tables.TermTaxonomy())

	return r.translationRows(ctx, query, []any{navMenuElement})
}

func (r *Reader) translationRows(ctx context.Context, query string, args []any) ([]model.TranslationRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query translations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.TranslationRow
	for rows.Next() {
		var tr model.TranslationRow
		if err := rows.Scan(&tr.TRID, &tr.Language, &tr.ObjectID); err != nil {
			return nil, fmt.Errorf("failed to scan translation: %w", err)
		}
		out = append(out, tr)
	}
	return out, rows.Err()
}

// stringsFilter returns the WHERE clause excluding string domains.
func stringsFilter(excludedDomains []string) (string, []any) {
	if len(excludedDomains) == 0 {
		return "", nil
	}
	return fmt.Sprintf("WHERE s.context NOT IN (%s)", store.Placeholders(len(excludedDomains))),
		store.StringArgs(excludedDomains)
}

// CountStringTranslations returns the number of string translation rows.
func (r *Reader) CountStringTranslations(ctx context.Context, excludedDomains []string) (int, error) {
	where, args := stringsFilter(excludedDomains)
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s AS s
		INNER JOIN %s AS st ON st.string_id = s.id
		%s`,
		r.tables.ICLStrings(), r.tables.ICLStringTranslations(), where)

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count string translations: %w", err)
	}
	return n, nil
}

// StringTranslations returns a page of string translations ordered by
// translation id. Rows with an empty source or translation are dropped.
func (r *Reader) StringTranslations(ctx context.Context, excludedDomains []string, offset, limit int) ([]model.StringTranslation, error) {
	if limit <= 0 {
		return nil, nil
	}
	where, args := stringsFilter(excludedDomains)
	query := fmt.Sprintf(`
		SELECT st.language, s.value, COALESCE(st.value, '')
		FROM %s AS s
		INNER JOIN %s AS st ON st.string_id = s.id
		%s
		ORDER BY st.id
		LIMIT ? OFFSET ?`,
		r.tables.ICLStrings(), r.tables.ICLStringTranslations(), where)

	args = append(args, limit, offset)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query string translations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.StringTranslation
	for rows.Next() {
		var st model.StringTranslation
		if err := rows.Scan(&st.Language, &st.Source, &st.Translation); err != nil {
			return nil, fmt.Errorf("failed to scan string translation: %w", err)
		}
		if st.Source == "" || st.Translation == "" {
			continue
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
