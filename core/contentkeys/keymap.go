// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package contentkeys

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// Entry is one extracted text fragment.
type Entry struct {
	// Tag is the name of the element the fragment came from
	// (h1-h6, p, li or span).
	Tag string `json:"tag"`

	// Content is the trimmed, tag-stripped text of the fragment.
	Content string `json:"content"`
}

// KeyMap maps normalized keys to the fragments they were derived from.
//
// A KeyMap belongs to one content item in one language and is regenerated
// wholesale whenever the item is saved.
type KeyMap map[string]Entry

// Keys returns the keys of m in ascending order.
func (m KeyMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a shallow copy of m. The copy of a nil map is an empty map.
func (m KeyMap) Clone() KeyMap {
	out := make(KeyMap, len(m))
	maps.Copy(out, m)

	return out
}

// UnmarshalJSON accepts the object form as well as null and [] for an
// empty map. WordPress encodes an empty PHP array as [].
func (m *KeyMap) UnmarshalJSON(data []byte) error {
	if isEmptyJSON(data) {
		*m = KeyMap{}

		return nil
	}

	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("contentkeys: decode key map: %w", err)
	}

	*m = raw

	return nil
}

// LocalizedKeyMaps holds one KeyMap per language code, as persisted for a
// content item.
type LocalizedKeyMaps map[string]KeyMap

// For returns the map stored for lang. The result is nil when lang has no map.
func (l LocalizedKeyMaps) For(lang string) KeyMap {
	if l == nil {
		return nil
	}

	return l[lang]
}

// Languages returns the languages that have a non-empty map, sorted.
func (l LocalizedKeyMaps) Languages() []string {
	out := make([]string, 0, len(l))

	for lang, m := range l {
		if len(m) > 0 {
			out = append(out, lang)
		}
	}

	slices.Sort(out)

	return out
}

// UnmarshalJSON accepts null and [] for an item without any key maps.
func (l *LocalizedKeyMaps) UnmarshalJSON(data []byte) error {
	if isEmptyJSON(data) {
		*l = LocalizedKeyMaps{}

		return nil
	}

	var raw map[string]KeyMap
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("contentkeys: decode localized key maps: %w", err)
	}

	*l = raw

	return nil
}

func isEmptyJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)

	return len(trimmed) == 0 ||
		bytes.Equal(trimmed, []byte("null")) ||
		bytes.Equal(trimmed, []byte("[]")) ||
		bytes.Equal(trimmed, []byte(`""`))
}
