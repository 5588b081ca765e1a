// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
)

var errNoClient = errors.New("WordPress client is not configured")

// setPublicCache marks a page as cacheable by shared caches.
func setPublicCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d, stale-while-revalidate=%d",
		int(config.Global.HTTPCache.MaxAge.Seconds()),
		int(config.Global.HTTPCache.StaleWhileRevalidate.Seconds())))
}

// pageLocale returns the locale segment of the request path. Page routes are
// only registered under served locales, so anything else means the default.
func pageLocale(r *http.Request) string {
	segment, _, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	if i18n.Supported(segment) {
		return segment
	}

	return i18n.DefaultLocale()
}

// upstreamContext is the context for WordPress requests made on behalf of r.
func upstreamContext(r *http.Request) context.Context {
	return wordpress.WithIncomingHeaders(r.Context(), r.Header)
}

// client returns the configured WordPress client.
func client() (*wordpress.Client, error) {
	if wordpress.Default == nil {
		return nil, errNoClient
	}

	return wordpress.Default, nil
}

// blogSite is the site as seen from the blog, which only exists in the
// default locale.
func blogSite() seo.Site {
	s := seo.FromConfig()
	s.Locales = []string{s.DefaultLocale}

	return s
}

// localizeContent returns the body of c with its text translated into locale.
//
// The key map is the one matching the delivered body. When WordPress sent
// none and extraction fallback is enabled, the keys are derived from the
// body itself.
func localizeContent(ctx context.Context, c *wordpress.Content, locale string) string {
	cfg := config.Global.Content
	if !cfg.Localize || c.HTML == "" {
		return c.HTML
	}

	logger := log.With().Str("sys", "localize").Str("slug", c.Slug).Str("locale", locale).Logger()

	keys := c.KeysFor(locale, i18n.DefaultLocale())
	if len(keys) == 0 && cfg.ExtractFallback {
		extractor := contentkeys.Extractor{Policy: cfg.CollisionPolicy, Logger: logger}

		var err error

		keys, err = extractor.Extract(c.HTML)
		if err != nil {
			logger.Warn().Err(err).Msg("Serving content without localization")

			return c.HTML
		}
	}

	if len(keys) == 0 {
		return c.HTML
	}

	localizer := contentkeys.Localizer{Logger: logger}

	return localizer.Localize(c.HTML, keys, i18n.ContentLookup(ctx)).HTML
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(v)
}
