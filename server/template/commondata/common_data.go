// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package commondata

import (
	"net/http"
	"strings"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/server/utils"
)

// PageCommonData holds common variables accessible in views and handlers.
//
// It is populated once per request and attached to the
// request_context.RequestContext.
//
// Usage:
//
//	// In an HTTP handler:
//	cd := request_context.FromRequest(r).CommonData
//	// Now you can access fields like cd.BaseURL, cd.PathWithoutLocale, etc.
type PageCommonData struct {
	// BaseURL is the origin URL (scheme + host) of the current request.
	BaseURL string

	// CurrentPath is the URL path from request (e.g., "/es/tools/resizer").
	CurrentPath string

	// PathWithoutLocale is CurrentPath without its leading locale segment
	// (e.g., "/tools/resizer"). It links the same page in other languages.
	PathWithoutLocale string

	// FullURL is the complete URL (scheme + host + path) of the request, not including query parameters.
	FullURL string

	// SiteName is the public name of the site.
	SiteName string

	// Queries is the URL query parameters (first value only for each key).
	Queries map[string]string

	// InDevelopment exposes error details on error pages.
	InDevelopment bool
}

// IsLocale reports whether a path segment names a served locale.
type IsLocale func(segment string) bool

// PopulatePageCommonData fills the PageCommonData struct from the request.
func PopulatePageCommonData(r *http.Request, data *PageCommonData, isLocale IsLocale) {
	data.BaseURL = utils.GetOriginFromRequest(r)
	data.CurrentPath = r.URL.Path
	data.FullURL = data.BaseURL + r.URL.Path
	data.PathWithoutLocale = StripLocale(r.URL.Path, isLocale)
	data.SiteName = config.Global.Site.Name
	data.InDevelopment = config.Global.Development.InDevelopment

	data.Queries = make(map[string]string)

	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			data.Queries[k] = v[0]
		}
	}
}

// StripLocale removes a leading locale segment from path.
//
//	StripLocale("/es/blog", ...) == "/blog"
//	StripLocale("/es", ...)      == ""
//	StripLocale("/about", ...)   == "/about"
func StripLocale(path string, isLocale IsLocale) string {
	rest := strings.TrimPrefix(path, "/")

	segment, tail, found := strings.Cut(rest, "/")
	if isLocale == nil || !isLocale(segment) {
		return path
	}

	if !found {
		return ""
	}

	return "/" + tail
}
