// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package contentkeys

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"
)

// Lookup resolves a key to its translation in the display language.
//
// An empty result, a result equal to key, or a non-nil error all mean the
// key has no translation.
type Lookup func(key string) (string, error)

// MapLookup returns a Lookup backed by a plain map.
func MapLookup(translations map[string]string) Lookup {
	return func(key string) (string, error) {
		return translations[key], nil
	}
}

// Result is the outcome of one localization pass.
type Result struct {
	HTML string

	// Replaced counts substituted occurrences.
	Replaced int

	// Skipped counts entries without a usable translation.
	Skipped int
}

// Localizer substitutes translations into rendered HTML.
//
// The zero value is ready to use and does not log.
type Localizer struct {
	Logger zerolog.Logger
}

// Localize is a convenience for (&Localizer{}).Localize(src, keys, lookup).HTML.
func Localize(src string, keys KeyMap, lookup Lookup) string {
	return (&Localizer{}).Localize(src, keys, lookup).HTML
}

type substitution struct {
	key         string
	order       int
	pattern     *regexp.Regexp
	translation string
}

type match struct {
	start, end int
	sub        *substitution
}

// Localize replaces, inside the text nodes of src, every case-insensitive
// literal occurrence of an entry's content with the translation of its key.
//
// All matches are located in the original text before anything is replaced,
// so the order of keys cannot change the outcome. Where candidate matches
// overlap, the leftmost wins, then the longest, then the smallest key.
// Markup, attributes and the contents of script and style elements are copied
// through unchanged. A lookup that fails or panics only skips its own key.
func (l *Localizer) Localize(src string, keys KeyMap, lookup Lookup) Result {
	res := Result{HTML: src}

	if len(keys) == 0 || lookup == nil || src == "" {
		return res
	}

	subs := make([]*substitution, 0, len(keys))

	for i, key := range keys.Keys() {
		entry := keys[key]

		translation, ok := l.resolve(key, lookup)
		if !ok || entry.Content == "" {
			res.Skipped++

			continue
		}

		pattern, err := regexp.Compile("(?i)" + regexp.QuoteMeta(entry.Content))
		if err != nil {
			// RE2 rejects invalid UTF-8, e.g. content from a Latin-1 body.
			l.Logger.Debug().Err(err).Str("key", key).Msg("Content is not a valid pattern, keeping source text")

			res.Skipped++

			continue
		}

		subs = append(subs, &substitution{
			key:         key,
			order:       i,
			pattern:     pattern,
			translation: translation,
		})
	}

	if len(subs) == 0 {
		return res
	}

	var (
		out  strings.Builder
		last int
	)

	for _, span := range textSpans(src) {
		for _, m := range matchesIn(src[span[0]:span[1]], subs) {
			out.WriteString(src[last : span[0]+m.start])
			out.WriteString(m.sub.translation)

			last = span[0] + m.end
			res.Replaced++
		}
	}

	if res.Replaced == 0 {
		return res
	}

	out.WriteString(src[last:])
	res.HTML = out.String()

	l.Logger.Debug().
		Int("replaced", res.Replaced).
		Int("skipped", res.Skipped).
		Int("keys", len(keys)).
		Msg("Localized content")

	return res
}

// resolve calls lookup for key, isolating errors and panics.
func (l *Localizer) resolve(key string, lookup Lookup) (translation string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.Logger.Warn().
				Str("key", key).
				Interface("panic", r).
				Msg("Translation lookup panicked, keeping source text")

			translation, ok = "", false
		}
	}()

	t, err := lookup(key)
	if err != nil {
		l.Logger.Debug().Err(err).Str("key", key).Msg("Translation lookup failed")

		return "", false
	}

	if t == "" || t == key {
		return "", false
	}

	return t, true
}

// matchesIn returns the non-overlapping matches of subs in text, in order.
func matchesIn(text string, subs []*substitution) []match {
	var candidates []match

	for _, sub := range subs {
		for _, loc := range sub.pattern.FindAllStringIndex(text, -1) {
			if loc[0] == loc[1] {
				continue
			}

			candidates = append(candidates, match{start: loc[0], end: loc[1], sub: sub})
		}
	}

	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.start != b.start {
			return a.start < b.start
		}

		if a.end != b.end {
			return a.end > b.end
		}

		return a.sub.order < b.sub.order
	})

	chosen := candidates[:0]
	end := 0

	for _, c := range candidates {
		if c.start < end {
			continue
		}

		chosen = append(chosen, c)
		end = c.end
	}

	return chosen
}

// textSpans returns the byte ranges of the text nodes of src, skipping the
// contents of script and style elements.
func textSpans(src string) [][2]int {
	var (
		spans  [][2]int
		offset int
		inRaw  bool
	)

	z := html.NewTokenizer(strings.NewReader(src))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return spans
		}

		raw := z.Raw()
		start := offset
		offset += len(raw)

		switch tt {
		case html.TextToken:
			if !inRaw {
				spans = append(spans, [2]int{start, offset})
			}
		case html.StartTagToken:
			name, _ := z.TagName()
			inRaw = isRawTextElement(name)
		case html.EndTagToken:
			inRaw = false
		default:
		}
	}
}

func isRawTextElement(name []byte) bool {
	return string(name) == "script" || string(name) == "style"
}
