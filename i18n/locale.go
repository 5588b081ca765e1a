// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"slices"
	"sort"

	"golang.org/x/text/language"
)

// BaseLocale is the locale used until Setup installs the configured default.
const BaseLocale = "en"

// baseTag is the tag of the default locale.
var baseTag = language.Make(BaseLocale)

// Languages returns the list of supported language tags.
//
// The returned slice is a copy, is sorted by tag string, and is safe to retain.
//
// Setup must be called successfully before using Languages; otherwise it panics.
func Languages() []language.Tag {
	if matcher == nil {
		panic("i18n: Setup must be called before calling Languages")
	}

	out := slices.Clone(supportedTags)

	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })

	return out
}

// Locales returns the supported locale codes with the default first, in
// configuration order. Before Setup it returns only [BaseLocale].
func Locales() []string {
	if len(supportedLocales) == 0 {
		return []string{BaseLocale}
	}

	return slices.Clone(supportedLocales)
}

// DefaultLocale returns the locale code of the default language.
func DefaultLocale() string {
	return localeOf(baseTag)
}

// Supported reports whether locale is one of the served locale codes.
// Matching is exact: "en" is supported, "EN" and "en-US" are not.
func Supported(locale string) bool {
	return slices.Contains(Locales(), locale)
}

// localeOf returns the locale code (the base language) of t.
func localeOf(t language.Tag) string {
	base, _ := t.Base()

	return base.String()
}
