// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package polylang

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/olegiv/wpml2pll/internal/model"
)

//go:embed locales.yaml
var localesYAML []byte

var (
	localesOnce sync.Once
	locales     map[string]model.LanguageMeta
	byCode      map[string]string // language code => first locale key
	localesErr  error
)

func loadLocales() (map[string]model.LanguageMeta, error) {
	localesOnce.Do(func() {
		var m map[string]model.LanguageMeta
		if err := yaml.Unmarshal(localesYAML, &m); err != nil {
			localesErr = fmt.Errorf("parsing locale metadata: %w", err)
			return
		}
		locales = m

		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		byCode = make(map[string]string, len(keys))
		for _, k := range keys {
			if _, ok := byCode[m[k].Code]; !ok {
				byCode[m[k].Code] = k
			}
		}
	})
	return locales, localesErr
}

// LookupLocale returns the bundled metadata for a WordPress locale.
// Locales missing from the table are canonicalised as BCP 47 tags, so
// "pt-br" resolves to pt_BR, and a bare or unknown regional variant falls
// back to the most likely locale of its language ("de" to de_DE).
func LookupLocale(locale string) (model.LanguageMeta, bool) {
	m, err := loadLocales()
	if err != nil {
		return model.LanguageMeta{}, false
	}
	if meta, ok := m[locale]; ok {
		return meta, true
	}

	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil {
		return model.LanguageMeta{}, false
	}
	base, _ := tag.Base()
	region, conf := tag.Region()

	var candidates []string
	if conf != language.No {
		candidates = append(candidates, base.String()+"_"+region.String())
	}
	candidates = append(candidates, base.String())
	if likely, c := language.Make(base.String()).Region(); c != language.No {
		candidates = append(candidates, base.String()+"_"+likely.String())
	}
	if key, ok := byCode[base.String()]; ok {
		candidates = append(candidates, key)
	}

	for _, key := range candidates {
		if meta, ok := m[key]; ok {
			return meta, true
		}
	}
	return model.LanguageMeta{}, false
}
