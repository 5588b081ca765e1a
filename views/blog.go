// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"context"

	"github.com/a-h/templ"

	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
)

// Blog renders the blog index.
func Blog(posts []wordpress.Post) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<header class="page-header"><h1>`)
		hw.text(i18n.Tr(ctx, "Blog"))
		hw.raw("</h1></header>")
		hw.component(ctx, PostList(posts))
	})
}

// BlogPost renders one post.
func BlogPost(post *wordpress.Post) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<article class="post"><header class="page-header"><h1>`)
		hw.text(post.Title)
		hw.raw("</h1>")
		hw.component(ctx, postMeta(*post))
		hw.raw("</header>")

		if post.FeaturedImage != "" {
			hw.raw(`<img class="featured"`)
			hw.attr("src", string(templ.URL(post.FeaturedImage)))
			hw.attr("alt", post.Title)
			hw.raw(">")
		}

		hw.raw(`<div class="prose">`)
		hw.component(ctx, templ.Raw(post.Content))
		hw.raw("</div></article>")
	})
}
