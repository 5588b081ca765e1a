// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"context"

	"github.com/a-h/templ"

	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template"
)

// ContentData is the data of a tool or managed page.
type ContentData struct {
	Content *wordpress.Content

	// HTML is the localized body.
	HTML string

	// Untranslated is set when the body is shown in the default language
	// because the item has none in the requested one.
	Untranslated bool
}

// Content renders a tool or a managed page.
func Content(data ContentData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		c := data.Content

		hw.raw(`<article class="content content-`)
		hw.text(string(c.Type))
		hw.raw(`"><header class="page-header"><h1>`)
		hw.text(c.Title)
		hw.raw("</h1>")

		if c.Description != "" {
			hw.raw(`<p class="lead">`)
			hw.text(c.Description)
			hw.raw("</p>")
		}

		hw.raw("</header>")

		if data.Untranslated {
			hw.raw(`<p class="notice">`)
			hw.text(i18n.Tr(ctx, "This page is not yet available in your language."))
			hw.raw("</p>")
		}

		hw.raw(`<div class="prose">`)
		hw.component(ctx, templ.Raw(data.HTML))
		hw.raw("</div>")

		if modified := c.ModifiedAt(); !modified.IsZero() {
			hw.raw(`<footer class="content-meta"><time`)
			hw.attr("datetime", template.MachineDate(modified))
			hw.raw(">")
			hw.text(i18n.Tr(ctx, "Last updated {{.Date}}", "Date", template.NaturalDate(ctx, modified)))
			hw.raw("</time></footer>")
		}

		hw.raw("</article>")
	})
}
