// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package seo builds page metadata and schema.org JSON-LD documents.
package seo

import (
	"regexp"
	"strings"

	"codeberg.org/antigravity/frontend/config"
)

// Meta description limits.
const (
	MetaDescriptionLength = 160
	ExcerptLength         = 120
)

// Site identifies the public site that URLs and documents refer to.
type Site struct {
	// URL is the public origin without a trailing slash.
	URL  string
	Name string

	Locales       []string
	DefaultLocale string
}

// FromConfig returns the Site described by config.Global.
func FromConfig() Site {
	return Site{
		URL:           strings.TrimRight(config.Global.Site.URL.String(), "/"),
		Name:          config.Global.Site.Name,
		Locales:       config.Global.Site.Locales,
		DefaultLocale: config.Global.Site.DefaultLocale,
	}
}

// CanonicalURL returns the absolute URL of path in locale.
func (s Site) CanonicalURL(locale, path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return s.URL + "/" + locale + path
}

// Alternate is one hreflang link.
type Alternate struct {
	// Hreflang is a locale code or "x-default".
	Hreflang string
	URL      string
}

// Alternates returns one link per site locale, followed by x-default
// pointing at the default locale.
func (s Site) Alternates(path string) []Alternate {
	out := make([]Alternate, 0, len(s.Locales)+1)

	for _, locale := range s.Locales {
		out = append(out, Alternate{Hreflang: locale, URL: s.CanonicalURL(locale, path)})
	}

	if s.DefaultLocale != "" {
		out = append(out, Alternate{Hreflang: "x-default", URL: s.CanonicalURL(s.DefaultLocale, path)})
	}

	return out
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// TruncateForMeta strips tags from s and cuts it to at most maxLength
// characters, ending cut text with "...".
func TruncateForMeta(s string, maxLength int) string {
	stripped := []rune(stripTags(s))
	if len(stripped) <= maxLength {
		return string(stripped)
	}

	return strings.TrimSpace(string(stripped[:max(maxLength-3, 0)])) + "..."
}

// TruncateExcerpt strips tags from s and keeps maxLength characters,
// appending "..." to cut text.
func TruncateExcerpt(s string, maxLength int) string {
	stripped := []rune(stripTags(s))
	if len(stripped) <= maxLength {
		return string(stripped)
	}

	return strings.TrimSpace(string(stripped[:maxLength])) + "..."
}
