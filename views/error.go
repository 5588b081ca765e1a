// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"context"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template"
)

// ErrorData is the data of the error page.
type ErrorData struct {
	StatusCode int
	Error      error
}

// ErrorTitle returns the heading shown for status.
func ErrorTitle(ctx context.Context, status int) string {
	switch status {
	case http.StatusNotFound:
		return i18n.Tr(ctx, "Page not found")
	case http.StatusBadGateway:
		return i18n.Tr(ctx, "Content is temporarily unavailable")
	default:
		return i18n.Tr(ctx, "Something went wrong")
	}
}

// Error renders the body of the error page.
func Error(data ErrorData) templ.Component {
	return component(func(ctx context.Context, hw *htmlWriter) {
		hw.raw(`<section class="error"><p class="status">`)
		hw.text(strconv.Itoa(data.StatusCode))
		hw.raw("</p><h1>")
		hw.text(ErrorTitle(ctx, data.StatusCode))
		hw.raw("</h1><p>")

		switch data.StatusCode {
		case http.StatusNotFound:
			hw.text(i18n.Tr(ctx, "The page you requested does not exist."))
		case http.StatusBadGateway:
			hw.text(i18n.Tr(ctx, "WordPress is unreachable right now. Please try again later."))
		default:
			hw.text(i18n.Tr(ctx, "An unexpected error occurred."))
		}

		hw.raw("</p>")

		if data.Error != nil && commonData(ctx).InDevelopment {
			hw.raw(`<pre class="details">`)
			hw.text(data.Error.Error())
			hw.raw("</pre>")
		}

		hw.raw("<p><a")
		hw.href(template.LocalizedPath(i18n.LocaleFrom(ctx), ""))
		hw.raw(">")
		hw.text(i18n.Tr(ctx, "Back to home"))
		hw.raw("</a></p></section>")
	})
}
