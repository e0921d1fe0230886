// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package migration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/wpml2pll/internal/model"
	"github.com/olegiv/wpml2pll/internal/options"
	"github.com/olegiv/wpml2pll/internal/store"
	"github.com/olegiv/wpml2pll/internal/wpml"
)

// ObjectKind is what the linker needs to know about one object type.
type ObjectKind struct {
	Stage   string
	Message string
	Type    model.ObjectType
	// TranslationTaxonomy holds the group terms, e.g. post_translations.
	TranslationTaxonomy string

	CountGroups  func(ctx context.Context) (int, error)
	GroupIDs     func(ctx context.Context, offset, limit int) ([]int64, error)
	GroupMembers func(ctx context.Context, trids []int64) ([]model.TranslationRow, error)
	// Exclude drops members that must not be linked. May be nil.
	Exclude func(objectID int64) bool
}

// PostKind links posts of every translatable post type.
func PostKind(source SourceReader, s Settings) ObjectKind {
	types := wpml.PostElementTypes(s.Source.TranslatedPostTypes())
	return ObjectKind{
		Stage:               StagePosts,
		Message:             "Processing posts languages and translations",
		Type:                model.ObjectPost,
		TranslationTaxonomy: model.TaxonomyPostTranslations,
		CountGroups: func(ctx context.Context) (int, error) {
			return source.CountGroups(ctx, types)
		},
		GroupIDs: func(ctx context.Context, offset, limit int) ([]int64, error) {
			return source.GroupIDs(ctx, types, offset, limit)
		},
		GroupMembers: func(ctx context.Context, trids []int64) ([]model.TranslationRow, error) {
			return source.PostGroupMembers(ctx, types, trids)
		},
	}
}

// TermKind links terms of every translatable taxonomy. The default category
// is left alone.
func TermKind(source SourceReader, s Settings) ObjectKind {
	types := wpml.TermElementTypes(s.Source.TranslatedTaxonomies())
	defaultCategory := s.DefaultCategory
	return ObjectKind{
		Stage:               StageTerms,
		Message:             "Processing terms languages and translations",
		Type:                model.ObjectTerm,
		TranslationTaxonomy: model.TaxonomyTermTranslations,
		CountGroups: func(ctx context.Context) (int, error) {
			return source.CountGroups(ctx, types)
		},
		GroupIDs: func(ctx context.Context, offset, limit int) ([]int64, error) {
			return source.GroupIDs(ctx, types, offset, limit)
		},
		GroupMembers: func(ctx context.Context, trids []int64) ([]model.TranslationRow, error) {
			return source.TermGroupMembers(ctx, types, trids)
		},
		Exclude: func(id int64) bool {
			return defaultCategory > 0 && id == defaultCategory
		},
	}
}

// Linker tags objects with their language and recreates WPML translation
// groups as Polylang translation terms, one batch of groups per step.
type Linker struct {
	kind      ObjectKind
	db        store.DB
	tables    store.Tables
	languages LanguageModel
	batchSize int
	rows      RowCounter
	logger    *slog.Logger
	newName   func() string
}

// NewLinker creates a linking stage for kind.
func NewLinker(kind ObjectKind, db store.DB, tables store.Tables, languages LanguageModel, batchSize int, rows RowCounter, logger *slog.Logger) *Linker {
	if rows == nil {
		rows = nopRows{}
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Linker{
		kind:      kind,
		db:        db,
		tables:    tables,
		languages: languages,
		batchSize: batchSize,
		rows:      rows,
		logger:    logger,
		newName:   groupName,
	}
}

func groupName() string {
	return "pll_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (l *Linker) Name() string    { return l.kind.Stage }
func (l *Linker) Message() string { return l.kind.Message }

// PercentageComplete reports the share of groups handled after step.
func (l *Linker) PercentageComplete(ctx context.Context, step int) (int, error) {
	total, err := l.kind.CountGroups(ctx)
	if err != nil {
		return 0, err
	}
	return Percentage(step, l.batchSize, total), nil
}

// ProcessStep links the groups of batch step. All writes of a step share one
// transaction so a failed step leaves nothing behind and can be retried.
func (l *Linker) ProcessStep(ctx context.Context, step int) error {
	langs, err := l.languages.Languages(ctx)
	if err != nil {
		return err
	}
	tags := make(map[string]int64, len(langs))
	for i := range langs {
		if id := langs[i].TaxonomyIDFor(l.kind.Type); id != 0 {
			tags[langs[i].Slug] = id
		}
	}

	trids, err := l.kind.GroupIDs(ctx, offset(step, l.batchSize), l.batchSize)
	if err != nil {
		return err
	}
	if len(trids) == 0 {
		return nil
	}

	rows, err := l.kind.GroupMembers(ctx, trids)
	if err != nil {
		return err
	}

	skipped := 0
	groups := model.GroupTranslations(rows, func(r model.TranslationRow) bool {
		if l.kind.Exclude != nil && l.kind.Exclude(r.ObjectID) {
			return false
		}
		if _, ok := tags[r.Language]; !ok {
			skipped++
			return false
		}
		return true
	})
	if skipped > 0 {
		l.logger.Debug("members in unknown languages skipped", "stage", l.kind.Stage, "count", skipped)
	}
	if len(groups) == 0 {
		return nil
	}

	var tagged, linked int64
	err = store.WithTx(ctx, l.db, func(tx store.DBTX) error {
		var err error
		if tagged, err = l.processLanguages(ctx, tx, groups, tags); err != nil {
			return err
		}
		linked, err = l.processTranslations(ctx, tx, groups)
		return err
	})
	if err != nil {
		return err
	}

	l.rows.AddRows(l.kind.Stage, "language_relations", int(tagged))
	l.rows.AddRows(l.kind.Stage, "translation_relations", int(linked))
	l.logger.Debug("translation groups linked", "stage", l.kind.Stage, "step", step,
		"groups", len(groups), "language_relations", tagged, "translation_relations", linked)

	return l.languages.UpdateLanguageCounts(ctx)
}

// processLanguages tags every member with its language.
func (l *Linker) processLanguages(ctx context.Context, tx store.DBTX, groups []model.TranslationGroup, tags map[string]int64) (int64, error) {
	type pair struct{ object, tt int64 }
	seen := make(map[pair]bool)
	var rows [][]any
	for _, g := range groups {
		for _, m := range g.Members {
			p := pair{m.ObjectID, tags[m.Language]}
			if seen[p] {
				continue
			}
			seen[p] = true
			rows = append(rows, []any{p.object, p.tt})
		}
	}
	return store.BulkInsert(ctx, tx, l.tables.TermRelationships(), []string{"object_id", "term_taxonomy_id"}, rows)
}

// processTranslations creates one translation term per group and links the
// members to it.
func (l *Linker) processTranslations(ctx context.Context, tx store.DBTX, groups []model.TranslationGroup) (int64, error) {
	names := make([]string, len(groups))
	termRows := make([][]any, len(groups))
	for i := range groups {
		names[i] = l.newName()
		termRows[i] = []any{names[i], names[i], 0}
	}
	if _, err := store.BulkInsert(ctx, tx, l.tables.Terms(), []string{"name", "slug", "term_group"}, termRows); err != nil {
		return 0, err
	}

	termIDs, err := l.lookupTermIDs(ctx, tx, names)
	if err != nil {
		return 0, err
	}

	taxRows := make([][]any, 0, len(groups))
	groupTerm := make([]int64, len(groups))
	for i, g := range groups {
		termID, ok := termIDs[names[i]]
		if !ok {
			return 0, fmt.Errorf("translation term %s for trid %d not found", names[i], g.TRID)
		}
		groupTerm[i] = termID
		description, err := options.Encode(groupPayload(g))
		if err != nil {
			return 0, fmt.Errorf("encoding group %d: %w", g.TRID, err)
		}
		taxRows = append(taxRows, []any{termID, l.kind.TranslationTaxonomy, description, 0, len(g.Members)})
	}
	if _, err := store.BulkInsert(ctx, tx, l.tables.TermTaxonomy(),
		[]string{"term_id", "taxonomy", "description", "parent", "count"}, taxRows); err != nil {
		return 0, err
	}

	ttIDs, err := l.lookupTermTaxonomyIDs(ctx, tx, groupTerm)
	if err != nil {
		return 0, err
	}

	var memberRows, relRows [][]any
	for i, g := range groups {
		ttID, ok := ttIDs[groupTerm[i]]
		if !ok {
			return 0, fmt.Errorf("translation taxonomy for trid %d not found", g.TRID)
		}
		for _, m := range g.Members {
			memberRows = append(memberRows, []any{ttID, l.kind.TranslationTaxonomy, m.Language, m.ObjectID})
			relRows = append(relRows, []any{m.ObjectID, ttID})
		}
	}

	if _, err := store.BulkInsert(ctx, tx, l.tables.Members(),
		[]string{"group_id", "taxonomy", "language_code", "object_id"}, memberRows); err != nil {
		return 0, err
	}
	return store.BulkInsert(ctx, tx, l.tables.TermRelationships(), []string{"object_id", "term_taxonomy_id"}, relRows)
}

// groupPayload is the serialized group description Polylang reads:
// language => object id.
func groupPayload(g model.TranslationGroup) map[string]any {
	out := make(map[string]any, len(g.Members))
	for _, m := range g.Members {
		out[m.Language] = m.ObjectID
	}
	return out
}

func (l *Linker) lookupTermIDs(ctx context.Context, tx store.DBTX, slugs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(slugs))
	for start := 0; start < len(slugs); start += store.MaxParams {
		chunk := slugs[start:min(start+store.MaxParams, len(slugs))]
		query := fmt.Sprintf(`SELECT term_id, slug FROM %s WHERE slug IN (%s)`,
			l.tables.Terms(), store.Placeholders(len(chunk)))

		rows, err := tx.QueryContext(ctx, query, store.StringArgs(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("failed to query translation terms: %w", err)
		}
		for rows.Next() {
			var (
				id   int64
				slug string
			)
			if err := rows.Scan(&id, &slug); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan translation term: %w", err)
			}
			out[slug] = id
		}
		_ = rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (l *Linker) lookupTermTaxonomyIDs(ctx context.Context, tx store.DBTX, termIDs []int64) (map[int64]int64, error) {
	out := make(map[int64]int64, len(termIDs))
	step := store.MaxParams - 1
	for start := 0; start < len(termIDs); start += step {
		chunk := termIDs[start:min(start+step, len(termIDs))]
		query := fmt.Sprintf(`SELECT term_taxonomy_id, term_id FROM %s WHERE taxonomy = ? AND term_id IN (%s)`,
			l.tables.TermTaxonomy(), store.Placeholders(len(chunk)))

		args := append([]any{l.kind.TranslationTaxonomy}, store.Int64Args(chunk)...)
		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to query translation taxonomies: %w", err)
		}
		for rows.Next() {
			var ttID, termID int64
			if err := rows.Scan(&ttID, &termID); err != nil {
				_ = rows.Close()
				return nil, fmt.Errorf("failed to scan translation taxonomy: %w", err)
			}
			out[termID] = ttID
		}
		_ = rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
