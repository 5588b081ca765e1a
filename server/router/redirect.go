// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// The code in this file redirects unprefixed URLs of the old site to their
// localized counterparts.
//
// Add more redirects in (*Router).DefineRoutes

package router

import (
	"net/http"

	"codeberg.org/antigravity/frontend/i18n"
)

// redirectToDefaultLocale redirects a path without a locale segment to the
// same path in the default locale, preserving the query string.
//
// Example:   /blog/hello?x=1   ->   /en/blog/hello?x=1
func redirectToDefaultLocale(w http.ResponseWriter, r *http.Request) {
	target := "/" + i18n.DefaultLocale() + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}
