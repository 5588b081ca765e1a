// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

// LangParam is the query parameter that overrides the negotiated language.
// The value "auto" ignores [LangCookie] and negotiates from headers alone.
const LangParam = "lang"

// LangCookie remembers the locale a visitor last chose.
const LangCookie = "antigravity_lang"

type tagKey struct{}

// WithTag returns a copy of ctx carrying t.
func WithTag(ctx context.Context, t language.Tag) context.Context {
	return context.WithValue(ctx, tagKey{}, t)
}

// WithLocale returns a copy of ctx carrying the language of a locale code
// such as "es".
func WithLocale(ctx context.Context, locale string) context.Context {
	return WithTag(ctx, language.Make(locale))
}

// WithRequest returns a copy of ctx carrying the language negotiated for r.
func WithRequest(ctx context.Context, r *http.Request) context.Context {
	return WithTag(ctx, FromRequest(r))
}

// TagFrom returns the language carried by ctx, or the default language.
func TagFrom(ctx context.Context) language.Tag {
	if ctx == nil {
		return baseTag
	}

	if t, ok := ctx.Value(tagKey{}).(language.Tag); ok && t != (language.Tag{}) {
		return t
	}

	return baseTag
}

// LocaleFrom returns the locale code of the language carried by ctx.
func LocaleFrom(ctx context.Context) string {
	return localeOf(TagFrom(ctx))
}

// FromRequest negotiates the served language closest to what r asks for.
// The query parameter wins over the cookie, which wins over Accept-Language.
// Before Setup, and for a nil request, it returns the default language.
func FromRequest(r *http.Request) language.Tag {
	if r == nil || matcher == nil {
		return baseTag
	}

	// MatchStrings may attach extensions to the tag it returns. The index
	// selects the plain served tag.
	_, index := language.MatchStrings(matcher, preferences(r)...)

	return supportedTags[index]
}

// preferences lists the language hints in r, strongest first.
func preferences(r *http.Request) []string {
	var hints []string

	switch q := r.URL.Query().Get(LangParam); {
	case strings.EqualFold(q, "auto"):
	case q != "":
		hints = append(hints, q)

		fallthrough
	default:
		if c, err := r.Cookie(LangCookie); err == nil && c.Value != "" {
			hints = append(hints, c.Value)
		}
	}

	if accept := r.Header.Get("Accept-Language"); accept != "" {
		hints = append(hints, accept)
	}

	return hints
}
