// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "time"

const (
	// Default upstream cache TTL in minutes. WordPress content is fetched with
	// an hourly revalidation window.
	defaultCacheTTLMinutes = 60
	// Default rendered page cache TTL in minutes.
	defaultPageCacheTTLMinutes = 10
	// Default HTTP cache max age in seconds.
	defaultHTTPCacheMaxAgeSeconds = 30
	// Default HTTP cache stale while revalidate in seconds.
	defaultHTTPCacheStaleWhileRevalidateSeconds = 60
	// Default WordPress request timeout in seconds.
	defaultWordPressTimeoutSeconds = 10
)

// SetDefaults populates the configuration with default values.
func (cfg *ServerConfig) SetDefaults() {
	cfg.Basic.Host = "localhost"
	cfg.Basic.Port = "8282"

	cfg.Site.RawURL = "http://localhost:8282"
	cfg.Site.Name = "Antigravity"
	cfg.Site.DefaultLocale = "en"
	cfg.Site.Locales = []string{"en", "es", "fr", "de"}

	cfg.WordPress.RawGraphQLURL = "http://localhost:8080/graphql"
	cfg.WordPress.RawRESTURL = "http://localhost:8080/wp-json"
	cfg.WordPress.Timeout = defaultWordPressTimeoutSeconds * time.Second
	cfg.WordPress.MockFallback = true

	cfg.Content.RawCollisionPolicy = "merge"
	cfg.Content.ExtractFallback = true
	cfg.Content.Localize = true

	cfg.Cache.Enabled = true
	cfg.Cache.Size = 100
	cfg.Cache.TTL = defaultCacheTTLMinutes * time.Minute
	cfg.Cache.Compress = false

	cfg.PageCache.Enabled = false
	cfg.PageCache.Size = 200
	cfg.PageCache.TTL = defaultPageCacheTTLMinutes * time.Minute

	cfg.Store.Enabled = false
	cfg.Store.Path = "./data/content.db"

	cfg.HTTPCache.MaxAge = defaultHTTPCacheMaxAgeSeconds * time.Second
	cfg.HTTPCache.StaleWhileRevalidate = defaultHTTPCacheStaleWhileRevalidateSeconds * time.Second

	cfg.Development.SaveResponses = false
	cfg.Development.ResponseSaveLocation = "/tmp/antigravity/responses"

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"

	cfg.Limiter.Enabled = false
	cfg.Limiter.IPv4Prefix = 24
	cfg.Limiter.IPv6Prefix = 48
	cfg.Limiter.Rate = 1
	cfg.Limiter.Burst = 20

	cfg.Internationalization.StrictMissingKeys = false
}
