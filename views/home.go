// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"context"

	"github.com/a-h/templ"

	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template"
)

// HomeData is the data of the home page.
type HomeData struct {
	Posts []wordpress.Post
	Tools []wordpress.SitemapEntry
}

// Home renders the home page: the tool list followed by the latest posts.
func Home(data HomeData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		locale := i18n.LocaleFrom(ctx)

		hw.raw(`<section class="hero"><h1>`)
		hw.text(i18n.Tr(ctx, "Free online tools"))
		hw.raw("</h1><p>")
		hw.text(i18n.Tr(ctx, "Simple tools that work in your browser."))
		hw.raw("</p></section>")

		if len(data.Tools) > 0 {
			hw.raw(`<section class="tools"><h2>`)
			hw.text(i18n.TrN(ctx, "{{.Count}} tool", "{{.Count}} tools", len(data.Tools), "Count", len(data.Tools)))
			hw.raw(`</h2><ul class="tool-grid">`)

			for _, tool := range data.Tools {
				hw.raw("<li><a")
				hw.href(template.LocalizedPath(locale, "/tools/"+tool.Slug))
				hw.raw(">")
				hw.text(template.TitleFromSlug(tool.Slug))
				hw.raw("</a></li>")
			}

			hw.raw("</ul></section>")
		}

		hw.raw(`<section class="latest-posts"><h2>`)
		hw.text(i18n.Tr(ctx, "Latest posts"))
		hw.raw("</h2>")
		hw.component(ctx, PostList(data.Posts))
		hw.raw("<p><a")
		hw.href(template.LocalizedPath(i18n.DefaultLocale(), "/blog"))
		hw.raw(">")
		hw.text(i18n.Tr(ctx, "View all posts"))
		hw.raw("</a></p></section>")
	})
}

// PostList renders post cards linking to the blog.
func PostList(posts []wordpress.Post) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		if len(posts) == 0 {
			hw.raw(`<p class="empty">`)
			hw.text(i18n.Tr(ctx, "No posts yet."))
			hw.raw("</p>")

			return
		}

		hw.raw(`<ul class="post-list">`)

		for _, post := range posts {
			href := template.LocalizedPath(i18n.DefaultLocale(), "/blog/"+post.Slug)

			hw.raw(`<li class="post-card"><h3><a`)
			hw.href(href)
			hw.raw(">")
			hw.text(post.Title)
			hw.raw("</a></h3>")
			hw.component(ctx, postMeta(post))
			hw.raw("<p>")
			hw.text(seo.TruncateExcerpt(seo.PlainText(post.Excerpt), seo.ExcerptLength))
			hw.raw("</p><a")
			hw.href(href)
			hw.raw(` class="read-more">`)
			hw.text(i18n.Tr(ctx, "Read more"))
			hw.raw("</a></li>")
		}

		hw.raw("</ul>")
	})
}

func postMeta(post wordpress.Post) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		published := post.PublishedAt()

		hw.raw(`<p class="post-meta">`)

		if !published.IsZero() {
			hw.raw("<time")
			hw.attr("datetime", template.MachineDate(published))
			hw.raw(">")
			hw.text(template.NaturalDate(ctx, published))
			hw.raw("</time>")
		}

		if post.Author != "" {
			hw.raw(` <span class="author">`)
			hw.text(i18n.Tr(ctx, "By {{.Author}}", "Author", post.Author))
			hw.raw("</span>")
		}

		hw.raw("</p>")
	})
}
