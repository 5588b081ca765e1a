// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package pagecache keeps rendered pages in memory so that repeated visits
// skip WordPress and rendering entirely until the page is revalidated.
package pagecache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/requests/lrucache"
)

// HeaderCacheStatus reports whether a response came from the page cache.
const HeaderCacheStatus = "X-Page-Cache"

var cache *lrucache.LRUCache

// page is the gob-encoded form of a rendered response.
type page struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Setup initializes the page cache from config.Global.
func Setup() {
	if !config.Global.PageCache.Enabled {
		cache = nil

		log.Info().Msg("Page cache is disabled, skipping page cache initialization")

		return
	}

	var err error

	// Rendered HTML compresses well, so values are always compressed.
	cache, err = lrucache.NewLRUCache(config.Global.PageCache.Size, true)
	if err != nil {
		panic(fmt.Sprintf("failed to create page cache: %v", err))
	}

	log.Info().
		Int("size", config.Global.PageCache.Size).
		Dur("ttl", config.Global.PageCache.TTL).
		Msg("Initialized page cache")
}

// Serve is a middleware that answers GET requests for pages from the cache
// and stores successful, publicly cacheable responses.
func Serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if cache == nil || r.Method != http.MethodGet || !isPagePath(r.URL.Path) {
		next.ServeHTTP(w, r)

		return
	}

	key := r.URL.RequestURI()

	if cached, ok := lookup(key); ok {
		maps.Copy(w.Header(), cached.Header)
		w.Header().Set(HeaderCacheStatus, "HIT")
		w.WriteHeader(cached.StatusCode)

		_, _ = w.Write(cached.Body)

		return
	}

	recorder := httptest.NewRecorder()
	next.ServeHTTP(recorder, r)

	if recorder.Code == http.StatusOK && isPublic(recorder.Header()) {
		store(key, r.URL.Path, recorder)
	}

	maps.Copy(w.Header(), recorder.Header())
	w.Header().Set(HeaderCacheStatus, "MISS")
	w.WriteHeader(recorder.Code)

	if _, err := recorder.Body.WriteTo(w); err != nil {
		log.Err(err).Msg("Failed to write response body")
	}
}

// Invalidate removes every cached page whose path starts with one of
// pathPrefixes, and returns the removed paths.
func Invalidate(pathPrefixes ...string) []string {
	if cache == nil || len(pathPrefixes) == 0 {
		return nil
	}

	removed := cache.RemoveTagPrefixes(pathPrefixes...)

	log.Info().
		Strs("prefixes", pathPrefixes).
		Strs("paths", removed).
		Msg("Invalidated cached pages")

	return removed
}

// Len returns the number of cached pages.
func Len() int {
	if cache == nil {
		return 0
	}

	return cache.Len()
}

func isPagePath(path string) bool {
	for _, prefix := range []string{"/api/", "/css/", "/img/", "/js/", "/fonts/", "/healthz"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}

	return true
}

func isPublic(h http.Header) bool {
	return strings.Contains(h.Get("Cache-Control"), "public")
}

func lookup(key string) (*page, bool) {
	raw, ok := cache.Get(key)
	if !ok {
		return nil, false
	}

	var p page
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&p); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to decode cached page; removing")
		cache.Remove(key)

		return nil, false
	}

	return &p, true
}

func store(key, path string, recorder *httptest.ResponseRecorder) {
	header := recorder.Header().Clone()

	// Timings describe the render that produced the page, not later hits.
	header.Del("Server-Timing")
	header.Del(HeaderCacheStatus)

	var buf bytes.Buffer

	if err := gob.NewEncoder(&buf).Encode(page{
		StatusCode: recorder.Code,
		Header:     header,
		Body:       recorder.Body.Bytes(),
	}); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to serialize page for cache")

		return
	}

	cache.Add(key, path, buf.Bytes(), config.Global.PageCache.TTL)
}
