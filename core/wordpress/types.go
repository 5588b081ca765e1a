// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package wordpress

import (
	"errors"
	"slices"
	"strings"
	"time"

	"codeberg.org/antigravity/frontend/core/contentkeys"
)

// ErrNotFound is returned when WordPress has no item for the requested slug.
var ErrNotFound = errors.New("content not found")

var errUnknownContentType = errors.New("unknown content type")

// ContentType is the kind of a managed content item.
type ContentType string

const (
	Tool ContentType = "tool"
	Page ContentType = "page"
)

// ParseContentType parses "tool" or "page". The WordPress post type names
// "ag_tool" and "ag_page" are accepted too.
func ParseContentType(s string) (ContentType, error) {
	switch ContentType(strings.TrimPrefix(s, "ag_")) {
	case Tool:
		return Tool, nil
	case Page:
		return Page, nil
	default:
		return "", errUnknownContentType
	}
}

// Post is a blog post.
type Post struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`

	// Content is empty in post listings.
	Content string `json:"content,omitempty"`

	// Date is the publication date as sent by WordPress.
	Date          string `json:"date"`
	Author        string `json:"author"`
	FeaturedImage string `json:"featuredImage,omitempty"`
}

// dateLayouts are the date formats WordPress uses across its APIs.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
}

// PublishedAt parses Date. It returns the zero time for unparseable dates.
func (p Post) PublishedAt() time.Time {
	return parseDate(p.Date)
}

// SEO holds the per-item search engine overrides set in the WordPress editor.
type SEO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical"`
	Keywords    string `json:"keywords"`
	OGImage     string `json:"ogImage"`
}

// Content is one language variant of a tool or managed page.
type Content struct {
	ID     int64       `json:"id"`
	Slug   string      `json:"slug"`
	Type   ContentType `json:"type"`
	Locale string      `json:"locale"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// HTML is the body in Locale, or in the default locale when the item has
	// no body in Locale.
	HTML string `json:"content"`

	FeaturedImage string `json:"featuredImage"`
	SEO           SEO    `json:"seo"`

	// SchemaType is the schema.org type of the item. Defaults to "WebPage".
	SchemaType string `json:"schemaType"`

	TranslationKeys  contentkeys.LocalizedKeyMaps `json:"translationKeys"`
	AvailableLocales []string                     `json:"availableLocales"`

	// Modified is the last modification time as sent by WordPress.
	Modified string `json:"modified"`
}

// ModifiedAt parses Modified. It returns the zero time for unparseable dates.
func (c *Content) ModifiedAt() time.Time {
	return parseDate(c.Modified)
}

// IsAvailableIn reports whether the item has its own body in locale.
func (c *Content) IsAvailableIn(locale string) bool {
	return slices.Contains(c.AvailableLocales, locale)
}

// KeysFor returns the key map matching the body that is rendered for locale.
//
// The body of a locale the item is not available in is the default-locale
// body, so the default-locale map is returned for it.
func (c *Content) KeysFor(locale, defaultLocale string) contentkeys.KeyMap {
	if c.IsAvailableIn(locale) {
		return c.TranslationKeys.For(locale)
	}

	return c.TranslationKeys.For(defaultLocale)
}

// SitemapEntry lists one published item.
type SitemapEntry struct {
	Slug     string   `json:"slug"`
	Modified string   `json:"modified"`
	Locales  []string `json:"locales,omitempty"`
}

// Sitemap lists every published item by kind.
type Sitemap struct {
	Tools []SitemapEntry `json:"tools"`
	Pages []SitemapEntry `json:"pages"`
	Posts []SitemapEntry `json:"posts"`
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Time{}
}
