// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package options

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/elliotchance/phpserialize"
)

// IsSerialized reports whether raw looks like a PHP serialized value.
func IsSerialized(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "N;" {
		return true
	}
	if len(raw) < 4 || raw[1] != ':' {
		return false
	}
	switch raw[0] {
	case 'a', 'O':
		return strings.HasSuffix(raw, "}")
	case 's':
		return strings.HasSuffix(raw, `";`)
	case 'i', 'b', 'd':
		return strings.HasSuffix(raw, ";")
	}
	return false
}

// Decode unserializes a PHP value. Non-serialized input is returned as a string.
// Arrays become []any when their keys are 0..n-1, map[string]any otherwise.
func Decode(raw string) (any, error) {
	if !IsSerialized(raw) {
		return raw, nil
	}
	data := []byte(strings.TrimSpace(raw))

	switch data[0] {
	case 'N':
		return nil, nil
	case 's':
		return phpserialize.UnmarshalString(data)
	case 'i':
		return phpserialize.UnmarshalInt(data)
	case 'b':
		return phpserialize.UnmarshalBool(data)
	case 'd':
		return phpserialize.UnmarshalFloat(data)
	case 'a':
		m, err := phpserialize.UnmarshalAssociativeArray(data)
		if err != nil {
			return nil, err
		}
		return normalize(m), nil
	}
	return nil, fmt.Errorf("unsupported serialized value type %q", data[0])
}

// Encode serializes v as PHP would.
func Encode(v any) (string, error) {
	b, err := phpserialize.Marshal(v, nil)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		if list, ok := asList(t); ok {
			return list
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[ToString(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	}
	return v
}

func asList(m map[any]any) ([]any, bool) {
	if len(m) == 0 {
		return nil, false
	}
	keys := make([]int64, 0, len(m))
	for k := range m {
		i, ok := k.(int64)
		if !ok {
			return nil, false
		}
		keys = append(keys, i)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	for i, k := range keys {
		if k != int64(i) {
			return nil, false
		}
	}
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = normalize(m[k])
	}
	return out, true
}

// ToString converts a decoded scalar to its PHP string form.
func ToString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// ToInt converts a decoded scalar to an integer, returning 0 when it is not numeric.
func ToInt(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}

// Truthy mirrors PHP's truthiness: "", "0", 0, false, nil and empty arrays are false.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case int64:
		return t != 0
	case int:
		return t != 0
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	}
	return true
}

// ToMap returns v as a string-keyed map. Lists are keyed by index.
// Anything else yields an empty map.
func ToMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case []any:
		out := make(map[string]any, len(t))
		for i, val := range t {
			out[strconv.Itoa(i)] = val
		}
		return out
	}
	return map[string]any{}
}

// ToList returns the values of a decoded array, in key order for lists.
func ToList(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case map[string]any:
		keys := SortedKeys(t)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			out = append(out, t[k])
		}
		return out
	}
	return nil
}

// ToStrings returns the string values of a decoded array.
func ToStrings(v any) []string {
	list := ToList(v)
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, ToString(item))
	}
	return out
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
