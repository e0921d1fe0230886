// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package polylang writes the Polylang data model: languages stored as terms
// of the "language" and "term_language" taxonomies, language tags as term
// relationships, and the plugin's settings record.
package polylang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/wpml2pll/internal/cache"
	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/store"
)

// OptionName is the option holding the Polylang settings record.
const OptionName = "polylang"

const (
	languagesCacheKey  = "languages"
	termLanguagePrefix = "pll_"
)

// ErrLanguageExists is returned when adding a language whose slug is taken.
var ErrLanguageExists = errors.New("language already exists")

// Model is the Polylang language model backed by the WordPress tables.
type Model struct {
	db         store.DB
	tables     store.Tables
	cache      cache.Cache
	options    *options.Store
	logger     *slog.Logger
	postTypes  []string
	taxonomies []string
	cacheTTL   time.Duration
}

// Option configures a Model.
type Option func(*Model)

// WithTranslatedTypes sets the post types and taxonomies considered
// translatable by ObjectsWithNoLanguage.
func WithTranslatedTypes(postTypes, taxonomies []string) Option {
	return func(m *Model) {
		m.postTypes = postTypes
		m.taxonomies = taxonomies
	}
}

// WithCacheTTL sets how long the language list stays cached.
func WithCacheTTL(ttl time.Duration) Option {
	return func(m *Model) { m.cacheTTL = ttl }
}

// NewModel creates a language model. A nil cache means a private in-memory cache.
func NewModel(db store.DB, tables store.Tables, c cache.Cache, logger *slog.Logger, opts ...Option) *Model {
	if c == nil {
		c = cache.NewMemoryCache(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Model{
		db:         db,
		tables:     tables,
		cache:      c,
		options:    options.New(db, tables),
		logger:     logger,
		postTypes:  []string{"post", "page", "wp_block"},
		taxonomies: []string{"category", "post_tag"},
		cacheTTL:   10 * time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddLanguage creates a language and its companion term_language term.
// The first language added becomes the default when none is set yet.
func (m *Model) AddLanguage(ctx context.Context, f model.LanguageFields) error {
	if f.Slug == "" || f.Locale == "" || f.Name == "" {
		return fmt.Errorf("adding language: slug, locale and name are required")
	}

	existing, err := m.Language(ctx, f.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("adding language %s: %w", f.Slug, ErrLanguageExists)
	}

	rtl := int64(0)
	if f.RTL {
		rtl = 1
	}
	description, err := options.Encode(map[string]any{
		"locale":    f.Locale,
		"rtl":       rtl,
		"flag_code": f.Flag,
	})
	if err != nil {
		return fmt.Errorf("encoding language %s: %w", f.Slug, err)
	}

	err = store.WithTx(ctx, m.db, func(tx store.DBTX) error {
		if _, err := m.insertTerm(ctx, tx, f.Name, f.Slug, f.TermGroup, model.TaxonomyLanguage, description); err != nil {
			return err
		}
		_, err := m.insertTerm(ctx, tx, f.Name, termLanguagePrefix+f.Slug, 0, model.TaxonomyTermLanguage, "")
		return err
	})
	if err != nil {
		return fmt.Errorf("adding language %s: %w", f.Slug, err)
	}

	settings, err := m.options.Map(ctx, OptionName)
	if err != nil {
		return err
	}
	if options.ToString(settings["default_lang"]) == "" {
		settings["default_lang"] = f.Slug
		if err := m.options.Set(ctx, OptionName, settings); err != nil {
			return err
		}
	}

	m.logger.Info("language added", "slug", f.Slug, "locale", f.Locale)
	return m.CleanLanguagesCache(ctx)
}

func (m *Model) insertTerm(ctx context.Context, tx store.DBTX, name, slug string, group int, taxonomy, description string) (int64, error) {
	res, err := tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, slug, term_group) VALUES (?, ?, ?)`, m.tables.Terms()),
		name, slug, group)
	if err != nil {
		return 0, fmt.Errorf("inserting term %s: %w", slug, err)
	}
	termID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (term_id, taxonomy, description, parent, count) VALUES (?, ?, ?, 0, 0)`, m.tables.TermTaxonomy()),
		termID, taxonomy, description)
	if err != nil {
		return 0, fmt.Errorf("inserting %s taxonomy for %s: %w", taxonomy, slug, err)
	}
	return termID, nil
}

// Languages returns every language ordered by term_group then term id.
func (m *Model) Languages(ctx context.Context) ([]model.Language, error) {
	var langs []model.Language
	if ok, err := cache.GetJSON(ctx, m.cache, languagesCacheKey, &langs); err == nil && ok {
		return langs, nil
	} else if err != nil {
		m.logger.Warn("language cache read failed", "error", err)
	}

	langs, err := m.loadLanguages(ctx)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(ctx, m.cache, languagesCacheKey, langs, m.cacheTTL); err != nil {
		m.logger.Warn("language cache write failed", "error", err)
	}
	return langs, nil
}

func (m *Model) loadLanguages(ctx context.Context) ([]model.Language, error) {
	query := fmt.Sprintf(`
		SELECT t.term_id, t.name, t.slug, t.term_group, tt.term_taxonomy_id, tt.description, tt.count
		FROM %s AS t
		INNER JOIN %s AS tt ON tt.term_id = t.term_id
		WHERE tt.taxonomy = ?
		ORDER BY t.term_group, t.term_id`,
		m.tables.Terms(), m.tables.TermTaxonomy())

	rows, err := m.db.QueryContext(ctx, query, model.TaxonomyLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to query languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var langs []model.Language
	for rows.Next() {
		var (
			l           model.Language
			description string
		)
		if err := rows.Scan(&l.TermID, &l.Name, &l.Slug, &l.Order, &l.TermTaxonomyID, &description, &l.Count); err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		meta, err := options.Decode(description)
		if err != nil {
			m.logger.Warn("invalid language description", "slug", l.Slug, "error", err)
		}
		props := options.ToMap(meta)
		l.Locale = options.ToString(props["locale"])
		l.RTL = options.Truthy(props["rtl"])
		l.Flag = options.ToString(props["flag_code"])
		langs = append(langs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tl, err := m.termLanguageIDs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range langs {
		langs[i].TLTermTaxonomyID = tl[langs[i].Slug]
	}
	return langs, nil
}

// termLanguageIDs maps language slugs to their term_language term_taxonomy ids.
func (m *Model) termLanguageIDs(ctx context.Context) (map[string]int64, error) {
	query := fmt.Sprintf(`
		SELECT t.slug, tt.term_taxonomy_id
		FROM %s AS t
		INNER JOIN %s AS tt ON tt.term_id = t.term_id
		WHERE tt.taxonomy = ?`,
		m.tables.Terms(), m.tables.TermTaxonomy())

	rows, err := m.db.QueryContext(ctx, query, model.TaxonomyTermLanguage)
	if err != nil {
		return nil, fmt.Errorf("failed to query term languages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int64)
	for rows.Next() {
		var (
			slug string
			id   int64
		)
		if err := rows.Scan(&slug, &id); err != nil {
			return nil, fmt.Errorf("failed to scan term language: %w", err)
		}
		if len(slug) > len(termLanguagePrefix) && slug[:len(termLanguagePrefix)] == termLanguagePrefix {
			out[slug[len(termLanguagePrefix):]] = id
		}
	}
	return out, rows.Err()
}

// Language returns the language with the given slug, or nil when unknown.
func (m *Model) Language(ctx context.Context, slug string) (*model.Language, error) {
	langs, err := m.Languages(ctx)
	if err != nil {
		return nil, err
	}
	for i := range langs {
		if langs[i].Slug == slug {
			return &langs[i], nil
		}
	}
	return nil, nil
}

// CleanLanguagesCache drops the cached language list.
func (m *Model) CleanLanguagesCache(ctx context.Context) error {
	if err := m.cache.Delete(ctx, languagesCacheKey); err != nil && !errors.Is(err, cache.ErrCacheMiss) {
		return fmt.Errorf("cleaning languages cache: %w", err)
	}
	return nil
}

// UpdateLanguageCounts recomputes the number of objects tagged with each language.
func (m *Model) UpdateLanguageCounts(ctx context.Context) error {
	langs, err := m.Languages(ctx)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET count = (SELECT COUNT(*) FROM %s WHERE term_taxonomy_id = ?)
		WHERE term_taxonomy_id = ?`,
		m.tables.TermTaxonomy(), m.tables.TermRelationships())

	for _, l := range langs {
		for _, ttID := range []int64{l.TermTaxonomyID, l.TLTermTaxonomyID} {
			if ttID == 0 {
				continue
			}
			if _, err := m.db.ExecContext(ctx, query, ttID, ttID); err != nil {
				return fmt.Errorf("updating count for %s: %w", l.Slug, err)
			}
		}
	}
	return m.CleanLanguagesCache(ctx)
}
