// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package contentkeys

import (
	"regexp"
	"strings"
)

// MaxKeyLength is the length in bytes above which a key is cut back
// to its last complete hyphen-delimited segment.
const MaxKeyLength = 50

var (
	// \s in RE2 omits the vertical tab, so the class is spelled out.
	disallowedKeyChars = regexp.MustCompile(`[^a-z0-9\t\n\v\f\r -]`)
	whitespaceRuns     = regexp.MustCompile(`[\t\n\v\f\r ]+`)
	hyphenRuns         = regexp.MustCompile(`-+`)
	trailingSegment    = regexp.MustCompile(`-[^-]*$`)
)

// Normalize derives the translation key for a text fragment.
//
//	"This is Heading H2" -> "this-is-heading-h2"
//
// Only ASCII letters are lowercased; every other non-alphanumeric character
// is dropped. Keys longer than [MaxKeyLength] are cut to that length and then
// lose their trailing partial segment, so a key never ends mid-word unless it
// is a single segment. Normalize is idempotent.
func Normalize(text string) string {
	key := asciiLower(text)
	key = disallowedKeyChars.ReplaceAllString(key, "")
	key = whitespaceRuns.ReplaceAllString(key, "-")
	key = hyphenRuns.ReplaceAllString(key, "-")
	key = strings.Trim(key, "-")

	if len(key) > MaxKeyLength {
		key = key[:MaxKeyLength]
		key = trailingSegment.ReplaceAllString(key, "")
	}

	return key
}

// asciiLower lowercases A-Z and leaves every other byte alone.
//
// strings.ToLower would fold some non-ASCII letters (e.g. the Kelvin sign)
// into ASCII ones and change which characters survive normalization.
func asciiLower(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for i := range len(s) {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}

		b.WriteByte(c)
	}

	return b.String()
}
