// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/server/middleware"
	"codeberg.org/antigravity/frontend/server/middleware/limiter"
	"codeberg.org/antigravity/frontend/server/middleware/set_request_context"
	"codeberg.org/antigravity/frontend/server/pagecache"
)

func (router *Router) RegisterMiddleware() {
	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.NormalizeURL)                // trailing slashes, locale redirects
	router.Use(set_request_context.WithRequestContext) // needed for everything else
	router.Use(middleware.LocaleFromPath)              // the URL locale wins over negotiation
	router.Use(middleware.SetResponseHeaders)          // all pages need this

	if config.Global.Limiter.Enabled {
		router.Use(limiter.Evaluate)
	}

	router.Use(pagecache.Serve) // innermost, so cached pages keep the headers above
}
