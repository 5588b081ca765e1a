// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"strings"
	"sync"

	"codeberg.org/antigravity/frontend/config"
)

// contentSecurityPolicy allows WordPress media from any https origin.
// JSON-LD blocks are data, so scripts stay limited to 'self'.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"base-uri 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"font-src 'self'",
	"connect-src 'self'",
	"img-src 'self' data: https:",
	"media-src 'self' https:",
	"form-action 'self'",
	"frame-ancestors 'none'",
}, "; ") + ";"

// deniedFeatures are switched off for every page through Permissions-Policy.
var deniedFeatures = []string{
	"accelerometer", "ambient-light-sensor", "battery", "camera",
	"display-capture", "document-domain", "encrypted-media",
	"execution-while-not-rendered", "execution-while-out-of-viewport",
	"geolocation", "gyroscope", "magnetometer", "microphone", "midi",
	"navigation-override", "payment", "publickey-credentials-get",
	"screen-wake-lock", "sync-xhr", "usb", "web-share", "xr-spatial-tracking",
}

var permissionsPolicy = strings.Join(deniedFeatures, "=(), ") + "=()"

// cacheRules map request paths to a default Cache-Control value. The first
// matching rule wins. Page handlers later upgrade cacheable pages to a shared
// policy.
var cacheRules = []struct {
	match func(path string) bool
	value string
}{
	{hasPrefix("/api/"), "no-store"},
	{hasPrefix("/css/"), "max-age=604800"},
	{hasPrefix("/img/"), "max-age=1209600"},
	{hasSuffix(".txt", ".json"), "max-age=86400"},
}

const defaultCacheControl = "private, no-cache"

// clearSiteData makes browsers drop their cache once per development run.
var clearSiteData sync.Once

// SetResponseHeaders sets the security, cache and version headers shared by
// all responses. HSTS is left to the TLS-terminating proxy.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	h := w.Header()

	h.Set("Referrer-Policy", "no-referrer")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Permissions-Policy", permissionsPolicy)
	h.Set("Content-Security-Policy", contentSecurityPolicy)
	h.Set("Cache-Control", cacheControlFor(r.URL.Path))
	h.Set("Antigravity-Version", config.BuildVersion)
	h.Set("Antigravity-Revision", config.Global.Build.Revision())

	if config.Global.Development.InDevelopment {
		clearSiteData.Do(func() { h.Set("Clear-Site-Data", `"cache"`) })
	}

	next.ServeHTTP(w, r)
}

func cacheControlFor(path string) string {
	for _, rule := range cacheRules {
		if rule.match(path) {
			return rule.value
		}
	}

	return defaultCacheControl
}

func hasPrefix(prefix string) func(string) bool {
	return func(path string) bool { return strings.HasPrefix(path, prefix) }
}

func hasSuffix(suffixes ...string) func(string) bool {
	return func(path string) bool {
		for _, suffix := range suffixes {
			if strings.HasSuffix(path, suffix) {
				return true
			}
		}

		return false
	}
}
