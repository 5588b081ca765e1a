// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/views"
)

// homePostCount is the number of posts listed on the home page.
const homePostCount = 6

// HomePage is the handler for the /{locale} page.
func HomePage(w http.ResponseWriter, r *http.Request) error {
	wp, err := client()
	if err != nil {
		return err
	}

	locale := pageLocale(r)
	ctx := upstreamContext(r)

	var (
		pageData views.HomeData
		g        errgroup.Group
	)

	g.Go(func() error {
		posts, err := latestPosts(ctx, wp, locale)
		if err != nil {
			return err
		}

		pageData.Posts = posts[:min(len(posts), homePostCount)]

		return nil
	})

	// The tool list is optional; the page renders without it.
	g.Go(func() error {
		sitemap, err := wp.GetSitemap(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Rendering home page without tools")

			return nil
		}

		pageData.Tools = sitemap.Tools

		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	setPublicCache(w)

	s := seo.FromConfig()
	meta := s.Page(locale, "", s.Name, i18n.Tr(r.Context(), "Simple tools that work in your browser."))
	meta.JSONLD = []any{s.Organization(), s.WebSite()}

	return views.Layout(meta, views.Home(pageData)).Render(r.Context(), w)
}

// latestPosts returns the posts of locale, or the default posts when
// WordPress has none in locale.
func latestPosts(ctx context.Context, wp *wordpress.Client, locale string) ([]wordpress.Post, error) {
	if locale != i18n.DefaultLocale() {
		posts, err := wp.GetPostsByLanguage(ctx, locale)
		if err == nil && len(posts) > 0 {
			return posts, nil
		}

		if err != nil {
			log.Debug().Err(err).Str("locale", locale).Msg("Falling back to default posts")
		}
	}

	return wp.GetPosts(ctx, locale)
}
