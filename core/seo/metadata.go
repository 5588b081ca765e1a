// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package seo

import (
	"strings"
)

// Open Graph types.
const (
	OGWebsite = "website"
	OGArticle = "article"
)

// Metadata is everything rendered into the <head> of a page.
type Metadata struct {
	Title       string
	SiteName    string
	Description string
	Canonical   string
	Keywords    []string
	OGImage     string
	OGType      string
	Locale      string
	Alternates  []Alternate

	PublishedTime string
	ModifiedTime  string
	Author        string
	NoIndex       bool

	// JSONLD documents are rendered as application/ld+json scripts.
	JSONLD []any
}

// Overrides are the SEO fields an editor can set per item. Empty fields
// keep the generated values.
type Overrides struct {
	Title       string
	Description string
	Canonical   string

	// Keywords is a comma-separated list.
	Keywords string
	OGImage  string
}

// Page returns the metadata of path in locale with the canonical URL,
// alternates and default image filled in.
func (s Site) Page(locale, path, title, description string) Metadata {
	return Metadata{
		Title:       title,
		SiteName:    s.Name,
		Description: TruncateForMeta(description, MetaDescriptionLength),
		Canonical:   s.CanonicalURL(locale, path),
		OGImage:     s.URL + "/og-image.png",
		OGType:      OGWebsite,
		Locale:      locale,
		Alternates:  s.Alternates(path),
	}
}

// Apply replaces generated values with the non-empty overrides.
func (m *Metadata) Apply(o Overrides) {
	if o.Title != "" {
		m.Title = o.Title
	}

	if o.Description != "" {
		m.Description = TruncateForMeta(o.Description, MetaDescriptionLength)
	}

	if o.Canonical != "" {
		m.Canonical = o.Canonical
	}

	if o.OGImage != "" {
		m.OGImage = o.OGImage
	}

	if o.Keywords != "" {
		m.Keywords = m.Keywords[:0]

		for k := range strings.SplitSeq(o.Keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				m.Keywords = append(m.Keywords, k)
			}
		}
	}
}

// FullTitle is the <title> text.
func (m *Metadata) FullTitle() string {
	switch {
	case m.Title == "":
		return m.SiteName
	case m.SiteName == "" || m.Title == m.SiteName:
		return m.Title
	default:
		return m.Title + " | " + m.SiteName
	}
}
