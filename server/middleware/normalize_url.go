// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"slices"
	"strings"

	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/request_context"
)

// englishOnlySections are first path segments after the locale that only
// exist in the default locale.
var englishOnlySections = []string{"blog"}

// NormalizeURL is a middleware that handles URL normalization by:
//  1. Removing trailing slashes from URLs (except root).
//  2. Redirecting the root path to the visitor's preferred locale.
//  3. Redirecting localized blog paths to the default locale.
func NormalizeURL(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if hasTrailingSlash(r) {
		removeTrailingSlash(w, r)

		return
	}

	if r.URL.Path == "/" {
		redirectToLocale(w, r, i18n.LocaleFrom(i18n.WithRequest(r.Context(), r)), "")

		return
	}

	if rest, ok := defaultOnlyPath(r.URL.Path); ok {
		redirectToLocale(w, r, i18n.DefaultLocale(), rest)

		return
	}

	next.ServeHTTP(w, r)
}

// LocaleFromPath installs the language of a supported locale path segment
// into the request context, so that translations follow the URL rather than
// the visitor's negotiated preference.
func LocaleFromPath(w http.ResponseWriter, r *http.Request, next http.Handler) {
	locale, _ := splitLocale(r.URL.Path)
	if locale == "" || !i18n.Supported(locale) {
		next.ServeHTTP(w, r)

		return
	}

	ctx := i18n.WithLocale(r.Context(), locale)
	request_context.FromContext(ctx).T = i18n.TagFrom(ctx)

	next.ServeHTTP(w, r.WithContext(ctx))
}

// hasTrailingSlash checks if a request path has a trailing slash (except root).
func hasTrailingSlash(r *http.Request) bool {
	return r.URL.Path != "/" && strings.HasSuffix(r.URL.Path, "/")
}

// removeTrailingSlash removes trailing slash and redirects.
func removeTrailingSlash(w http.ResponseWriter, r *http.Request) {
	target := *r.URL

	target.Path = strings.TrimRight(target.Path, "/")
	if target.Path == "" {
		target.Path = "/"
	}

	target.RawPath = ""

	http.Redirect(w, r, target.RequestURI(), http.StatusPermanentRedirect)
}

// defaultOnlyPath reports whether path is a non-default locale version of an
// English-only section, returning the path after the locale.
func defaultOnlyPath(path string) (string, bool) {
	locale, rest := splitLocale(path)
	if locale == "" || locale == i18n.DefaultLocale() || !i18n.Supported(locale) {
		return "", false
	}

	section, _, _ := strings.Cut(strings.TrimPrefix(rest, "/"), "/")

	return rest, slices.Contains(englishOnlySections, section)
}

// splitLocale splits "/es/blog/x" into "es" and "/blog/x".
func splitLocale(path string) (string, string) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", path
	}

	locale, rest, found := strings.Cut(trimmed, "/")
	if found {
		rest = "/" + rest
	}

	return locale, rest
}

// redirectToLocale redirects to /{locale}{rest}, keeping the query string.
// The redirect is temporary since the target depends on the visitor.
func redirectToLocale(w http.ResponseWriter, r *http.Request, locale, rest string) {
	target := "/" + locale + rest
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}
