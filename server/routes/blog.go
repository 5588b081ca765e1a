// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"

	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template"
	"codeberg.org/antigravity/frontend/server/utils"
	"codeberg.org/antigravity/frontend/views"
)

// BlogPage is the handler for the /{locale}/blog page.
func BlogPage(w http.ResponseWriter, r *http.Request) error {
	wp, err := client()
	if err != nil {
		return err
	}

	locale := pageLocale(r)

	posts, err := wp.GetPosts(upstreamContext(r), locale)
	if err != nil {
		return err
	}

	setPublicCache(w)

	s := blogSite()
	title := i18n.Tr(r.Context(), "Blog")
	meta := s.Page(locale, "/blog", title, i18n.Tr(r.Context(), "Latest posts"))
	meta.JSONLD = []any{
		s.WebPage(seo.PageData{Title: title, URL: meta.Canonical}),
		seo.Breadcrumbs([]seo.Crumb{
			{Name: i18n.Tr(r.Context(), "Home"), URL: s.CanonicalURL(locale, "")},
			{Name: title, URL: meta.Canonical},
		}),
	}

	return views.Layout(meta, views.Blog(posts)).Render(r.Context(), w)
}

// BlogPostPage is the handler for the /{locale}/blog/{slug} page.
func BlogPostPage(w http.ResponseWriter, r *http.Request) error {
	wp, err := client()
	if err != nil {
		return err
	}

	locale := pageLocale(r)

	post, err := wp.GetPost(upstreamContext(r), utils.GetPathVar(r, "slug"))
	if err != nil {
		return err
	}

	setPublicCache(w)

	s := blogSite()
	path := "/blog/" + post.Slug
	published := template.MachineDate(post.PublishedAt())

	excerpt := seo.PlainText(post.Excerpt)
	if excerpt == "" {
		excerpt = seo.PlainText(post.Content)
	}

	meta := s.Page(locale, path, post.Title, excerpt)
	meta.OGType = seo.OGArticle
	meta.PublishedTime = published
	meta.Author = post.Author

	image := post.FeaturedImage
	if image == "" {
		image = seo.FirstImage(post.Content)
	}

	if image != "" {
		meta.OGImage = image
	}

	meta.JSONLD = []any{
		s.Article(seo.TypeBlogPosting, seo.PageData{
			Title:         post.Title,
			Description:   meta.Description,
			URL:           meta.Canonical,
			Image:         meta.OGImage,
			DatePublished: published,
			Author:        post.Author,
		}),
		seo.Breadcrumbs([]seo.Crumb{
			{Name: i18n.Tr(r.Context(), "Home"), URL: s.CanonicalURL(locale, "")},
			{Name: i18n.Tr(r.Context(), "Blog"), URL: s.CanonicalURL(locale, "/blog")},
			{Name: post.Title, URL: meta.Canonical},
		}),
	}

	return views.Layout(meta, views.BlogPost(post)).Render(r.Context(), w)
}
