// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package views renders the pages of the frontend as templ components.

Text and attribute values are always escaped. WordPress bodies are the only
markup written as is, through [templ.Raw].
*/
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"codeberg.org/antigravity/frontend/server/request_context"
	"codeberg.org/antigravity/frontend/server/template/commondata"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if hw.err != nil {
			return
		}

		_, hw.err = io.WriteString(hw.w, s)
	}
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) attr(name, value string) {
	hw.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes an href attribute, sanitizing unsafe URL schemes.
func (hw *htmlWriter) href(url string) {
	hw.attr("href", string(templ.URL(url)))
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}

	hw.err = c.Render(ctx, hw.w)
}

// component builds a templ.Component from a function writing to an htmlWriter.
func component(fn func(ctx context.Context, hw *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		fn(ctx, hw)

		return hw.err
	})
}

func commonData(ctx context.Context) commondata.PageCommonData {
	return request_context.FromContext(ctx).CommonData
}
