// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template"
	"codeberg.org/antigravity/frontend/server/utils"
	"codeberg.org/antigravity/frontend/views"
)

// reservedSections are first path segments that managed pages cannot use.
var reservedSections = []string{"blog", "tools", "api"}

// ToolPage is the handler for the /{locale}/tools/{slug} page.
func ToolPage(w http.ResponseWriter, r *http.Request) error {
	slug := utils.GetPathVar(r, "slug")

	return renderContent(w, r, wordpress.Tool, slug, "/tools/"+slug)
}

// ManagedPage is the handler for pages managed in WordPress, served at
// /{locale}/{path...}. The WordPress slug is the last path segment.
func ManagedPage(w http.ResponseWriter, r *http.Request) error {
	path := strings.Trim(utils.GetPathVar(r, "path"), "/")
	if path == "" {
		return errPageNotFound
	}

	segments := strings.Split(path, "/")
	if slices.Contains(reservedSections, segments[0]) || slices.Contains(segments, "") {
		return fmt.Errorf("%w: %s", errPageNotFound, path)
	}

	return renderContent(w, r, wordpress.Page, segments[len(segments)-1], "/"+path)
}

// renderContent renders the tool or page with the given slug, served at path
// after the locale segment.
func renderContent(w http.ResponseWriter, r *http.Request, typ wordpress.ContentType, slug, path string) error {
	wp, err := client()
	if err != nil {
		return err
	}

	locale := pageLocale(r)

	content, err := wp.GetContent(upstreamContext(r), typ, slug, locale)
	if err != nil {
		return err
	}

	setPublicCache(w)

	pageData := views.ContentData{
		Content:      content,
		HTML:         localizeContent(r.Context(), content, locale),
		Untranslated: len(content.AvailableLocales) > 0 && !content.IsAvailableIn(locale),
	}

	meta := contentMetadata(r, content, locale, path)

	return views.Layout(meta, views.Content(pageData)).Render(r.Context(), w)
}

// contentMetadata builds the head of a tool or page, applying the SEO
// overrides set in WordPress.
func contentMetadata(r *http.Request, c *wordpress.Content, locale, path string) seo.Metadata {
	s := seo.FromConfig()

	description := c.Description
	if description == "" {
		description = seo.PlainText(c.HTML)
	}

	meta := s.Page(locale, path, c.Title, description)
	if c.FeaturedImage != "" {
		meta.OGImage = c.FeaturedImage
	}

	meta.Apply(seo.Overrides{
		Title:       c.SEO.Title,
		Description: c.SEO.Description,
		Canonical:   c.SEO.Canonical,
		Keywords:    c.SEO.Keywords,
		OGImage:     c.SEO.OGImage,
	})

	modified := template.MachineDate(c.ModifiedAt())
	meta.ModifiedTime = modified

	data := seo.PageData{
		Title:         meta.Title,
		Description:   meta.Description,
		URL:           meta.Canonical,
		Image:         meta.OGImage,
		DatePublished: modified,
		DateModified:  modified,
	}

	crumbs := []seo.Crumb{{Name: i18n.Tr(r.Context(), "Home"), URL: s.CanonicalURL(locale, "")}}

	if c.Type == wordpress.Tool {
		meta.JSONLD = []any{s.Tool(data)}
	} else {
		if c.SchemaType == seo.TypeFAQPage {
			data.FAQs = seo.ExtractFAQs(c.HTML)
		}

		meta.JSONLD = []any{s.ForType(c.SchemaType, data)}
	}

	crumbs = append(crumbs, seo.Crumb{Name: meta.Title, URL: meta.Canonical})
	meta.JSONLD = append(meta.JSONLD, seo.Breadcrumbs(crumbs))

	return meta
}
