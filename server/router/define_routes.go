// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"fmt"
	"io/fs"
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/revalidate"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/assets"
	"codeberg.org/antigravity/frontend/server/middleware"
	"codeberg.org/antigravity/frontend/server/routes"
)

// DefineRoutes registers the static, API and page routes.
//
// Page routes are registered once per served locale, so a path under an
// unknown locale falls through to the not found page.
func (router *Router) DefineRoutes() {
	static := fileServer()
	router.Handle("GET /css/", static)
	router.Handle("GET /img/", static)

	router.HandleFunc("GET /healthz", middleware.CatchError(routes.Healthz))

	router.HandleFunc("POST /api/translation-keys", middleware.CatchError(routes.TranslationKeys))
	router.HandleFunc("GET "+revalidate.Endpoint, middleware.CatchError(routes.Revalidate))
	router.HandleFunc("POST "+revalidate.Endpoint, middleware.CatchError(routes.Revalidate))

	// Unprefixed URLs of the previous site
	router.HandleFunc("GET /blog", redirectToDefaultLocale)
	router.HandleFunc("GET /blog/{slug}", redirectToDefaultLocale)
	router.HandleFunc("GET /tools/{slug}", redirectToDefaultLocale)

	for _, locale := range i18n.Locales() {
		prefix := "GET /" + locale

		router.HandleFunc(prefix, middleware.CatchError(routes.HomePage))
		router.HandleFunc(prefix+"/blog", middleware.CatchError(routes.BlogPage))
		router.HandleFunc(prefix+"/blog/{slug}", middleware.CatchError(routes.BlogPostPage))
		router.HandleFunc(prefix+"/tools/{slug}", middleware.CatchError(routes.ToolPage))
		router.HandleFunc(prefix+"/{path...}", middleware.CatchError(routes.ManagedPage))
	}

	router.HandleFunc("GET /", middleware.CatchError(routes.NotFound))

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

// fileServer serves the embedded stylesheets and images. Their
// Cache-Control comes from middleware.SetResponseHeaders.
func fileServer() http.Handler {
	static, err := fs.Sub(assets.FS, "assets/static")
	if err != nil {
		panic(fmt.Errorf("embedded assets/static is missing: %w", err))
	}

	files := http.FileServerFS(static)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Embedded files only change with a new binary, and every instance
		// gets a new cache ID, so the ID works as a strong validator.
		w.Header().Set("ETag", `"`+config.Global.Instance.FileServerCacheID+`"`)
		files.ServeHTTP(w, r)
	})
}

// registerDebugRoutes exposes pprof and a flight recorder snapshot of the
// last minute of execution traces. Development only.
func registerDebugRoutes(router *Router) {
	recorder := trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})
	if err := recorder.Start(); err != nil {
		panic(err)
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)

	for name, handler := range map[string]http.HandlerFunc{
		"cmdline": pprof.Cmdline,
		"profile": pprof.Profile,
		"symbol":  pprof.Symbol,
		"trace":   pprof.Trace,
	} {
		router.HandleFunc("GET /debug/pprof/"+name, handler)
	}

	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = recorder.WriteTo(w)
	})
}
