// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// ObjectType distinguishes the two kinds of objects Polylang tags with a language.
type ObjectType string

// Object types
const (
	ObjectPost ObjectType = "post"
	ObjectTerm ObjectType = "term"
)

// Translation taxonomies used by Polylang to store translation groups.
const (
	TaxonomyPostTranslations = "post_translations"
	TaxonomyTermTranslations = "term_translations"
	TaxonomyLanguage         = "language"
	TaxonomyTermLanguage     = "term_language"
)

// TranslationRow is a single row of icl_translations joined to its object.
type TranslationRow struct {
	TRID     int64
	Language string
	ObjectID int64
}

// Member is one object of a translation group.
type Member struct {
	Language string
	ObjectID int64
}

// TranslationGroup is the set of objects sharing a WPML trid,
// at most one per language, in first-seen language order.
type TranslationGroup struct {
	TRID    int64
	Members []Member
}

// Contains reports whether objectID is a member of the group.
func (g TranslationGroup) Contains(objectID int64) bool {
	for _, mem := range g.Members {
		if mem.ObjectID == objectID {
			return true
		}
	}
	return false
}

// GroupTranslations folds rows into translation groups.
// Rows with a zero object id or empty language are dropped, a later row for
// the same (trid, language) replaces an earlier one, and groups left without
// members are omitted. keep may be nil.
func GroupTranslations(rows []TranslationRow, keep func(TranslationRow) bool) []TranslationGroup {
	var groups []TranslationGroup
	index := make(map[int64]int)

	for _, r := range rows {
		if r.ObjectID <= 0 || r.Language == "" {
			continue
		}
		if keep != nil && !keep(r) {
			continue
		}
		gi, ok := index[r.TRID]
		if !ok {
			gi = len(groups)
			index[r.TRID] = gi
			groups = append(groups, TranslationGroup{TRID: r.TRID})
		}
		g := &groups[gi]
		replaced := false
		for i := range g.Members {
			if g.Members[i].Language == r.Language {
				g.Members[i].ObjectID = r.ObjectID
				replaced = true
				break
			}
		}
		if !replaced {
			g.Members = append(g.Members, Member{Language: r.Language, ObjectID: r.ObjectID})
		}
	}

	return groups
}

// StringTranslation is a translated WPML string.
type StringTranslation struct {
	Language    string
	Source      string
	Translation string
}

// NoLanguageObjects lists objects that carry no language tag.
type NoLanguageObjects struct {
	Posts []int64
	Terms []int64
}

// Empty reports whether there is nothing left to assign.
func (o NoLanguageObjects) Empty() bool {
	return len(o.Posts) == 0 && len(o.Terms) == 0
}
