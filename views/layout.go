// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template"
)

// Layout wraps body in the document shell: <head> built from meta, the site
// header and the footer.
func Layout(meta seo.Metadata, body templ.Component) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw("<!DOCTYPE html><html")
		hw.attr("lang", meta.Locale)
		hw.raw("><head>")
		hw.component(ctx, Head(meta))
		hw.raw("</head><body>")
		hw.component(ctx, siteHeader())
		hw.raw(`<main class="container">`)
		hw.component(ctx, body)
		hw.raw("</main>")
		hw.component(ctx, siteFooter())
		hw.raw("</body></html>")
	})
}

// Head renders the contents of <head>.
func Head(meta seo.Metadata) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw("<title>")
		hw.text(meta.FullTitle())
		hw.raw("</title>")

		metaName(hw, "description", meta.Description)

		metaName(hw, "keywords", strings.Join(meta.Keywords, ", "))

		metaName(hw, "author", meta.Author)

		if meta.NoIndex {
			metaName(hw, "robots", "noindex, nofollow")
		}

		if meta.Canonical != "" {
			hw.raw(`<link rel="canonical"`)
			hw.href(meta.Canonical)
			hw.raw(">")
		}

		for _, alt := range meta.Alternates {
			hw.raw(`<link rel="alternate"`)
			hw.attr("hreflang", alt.Hreflang)
			hw.href(alt.URL)
			hw.raw(">")
		}

		metaProperty(hw, "og:title", meta.Title)
		metaProperty(hw, "og:description", meta.Description)
		metaProperty(hw, "og:url", meta.Canonical)
		metaProperty(hw, "og:site_name", meta.SiteName)
		metaProperty(hw, "og:locale", meta.Locale)
		metaProperty(hw, "og:type", meta.OGType)
		metaProperty(hw, "og:image", meta.OGImage)
		metaProperty(hw, "article:published_time", meta.PublishedTime)
		metaProperty(hw, "article:modified_time", meta.ModifiedTime)

		metaName(hw, "twitter:card", "summary_large_image")
		metaName(hw, "twitter:title", meta.Title)
		metaName(hw, "twitter:description", meta.Description)
		metaName(hw, "twitter:image", meta.OGImage)

		for _, doc := range meta.JSONLD {
			ld, err := seo.MarshalJSONLD(doc)
			if err != nil {
				log.Ctx(ctx).Warn().Err(err).Msg("Skipping structured data")

				continue
			}

			hw.raw(`<script type="application/ld+json">`, ld, "</script>")
		}

		hw.raw(`<link rel="stylesheet" href="/css/main.css">`)
	})
}

func metaName(hw *htmlWriter, name, content string) {
	if content == "" {
		return
	}

	hw.raw("<meta")
	hw.attr("name", name)
	hw.attr("content", content)
	hw.raw(">")
}

func metaProperty(hw *htmlWriter, property, content string) {
	if content == "" {
		return
	}

	hw.raw("<meta")
	hw.attr("property", property)
	hw.attr("content", content)
	hw.raw(">")
}

func siteHeader() templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		cd := commonData(ctx)
		locale := i18n.LocaleFrom(ctx)
		current := cd.PathWithoutLocale

		hw.raw(`<header class="site-header"><nav class="container">`)

		hw.raw(`<a class="brand"`)
		hw.href(template.LocalizedPath(locale, ""))
		hw.raw(">")
		hw.text(cd.SiteName)
		hw.raw("</a><ul>")

		navLink(hw, template.LocalizedPath(locale, ""), i18n.Tr(ctx, "Home"), current == "")
		// The blog is published in the default language only.
		navLink(hw, template.LocalizedPath(i18n.DefaultLocale(), "/blog"), i18n.Tr(ctx, "Blog"),
			template.IsFirstPathPart(current, "/blog"))

		hw.raw(`</ul><ul class="languages"`)
		hw.attr("aria-label", i18n.Tr(ctx, "Language"))
		hw.raw(">")

		for _, l := range i18n.Locales() {
			hw.raw("<li><a")
			hw.href(template.LocalizedPath(l, current))
			hw.attr("hreflang", l)
			hw.attr("lang", l)

			if l == locale {
				hw.raw(` aria-current="true"`)
			}

			hw.raw(">")
			hw.text(languageName(l))
			hw.raw("</a></li>")
		}

		hw.raw("</ul></nav></header>")
	})
}

func navLink(hw *htmlWriter, href, label string, active bool) {
	hw.raw("<li><a")
	hw.href(href)

	if active {
		hw.raw(` aria-current="page"`)
	}

	hw.raw(">")
	hw.text(label)
	hw.raw("</a></li>")
}

// languageName returns the name of a language in that language.
func languageName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return locale
	}

	if name := display.Self.Name(tag); name != "" {
		return name
	}

	return locale
}

func siteFooter() templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<footer class="site-footer"><p class="container">&copy; `)
		hw.text(strconv.Itoa(time.Now().Year()))
		hw.raw(" ")
		hw.text(commonData(ctx).SiteName)
		hw.raw(". ")
		hw.text(i18n.Tr(ctx, "All rights reserved."))
		hw.raw("</p></footer>")
	})
}
