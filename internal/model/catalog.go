// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// CatalogEntry is a source string and its translation.
type CatalogEntry struct {
	Source      string
	Translation string
}

// Catalog is a per-language strings translation catalog.
// Entries keep insertion order; adding an existing source replaces its translation.
type Catalog struct {
	entries []CatalogEntry
	index   map[string]int
}

// NewCatalog creates a catalog seeded with entries.
func NewCatalog(entries ...CatalogEntry) *Catalog {
	c := &Catalog{index: make(map[string]int)}
	for _, e := range entries {
		c.Add(e.Source, e.Translation)
	}
	return c
}

// Add sets the translation for source. Empty sources are ignored.
func (c *Catalog) Add(source, translation string) {
	if source == "" {
		return
	}
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[source]; ok {
		c.entries[i].Translation = translation
		return
	}
	c.index[source] = len(c.entries)
	c.entries = append(c.entries, CatalogEntry{Source: source, Translation: translation})
}

// Translate returns the translation for source.
func (c *Catalog) Translate(source string) (string, bool) {
	i, ok := c.index[source]
	if !ok {
		return "", false
	}
	return c.entries[i].Translation, true
}

// Entries returns the catalog entries in insertion order.
func (c *Catalog) Entries() []CatalogEntry {
	out := make([]CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
