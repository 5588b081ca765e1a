// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/requests/lrucache"
)

// cache holds gob-encoded upstream responses keyed by a hash of their URL
// and tagged with the URL itself. Nil when caching is disabled.
var cache *lrucache.LRUCache

type cachedResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// cachePolicy is what the cache may do for one GET request.
type cachePolicy struct {
	// hit is a fresh cached response.
	hit *cachedResponse

	// store allows caching a 200 response.
	store bool
}

// Setup creates the upstream response cache from config.Global. With the
// cache disabled, every request goes upstream.
func Setup() {
	cfg := config.Global.Cache

	if !cfg.Enabled {
		cache = nil

		log.Info().Msg("Upstream response cache disabled")

		return
	}

	var err error

	cache, err = lrucache.NewLRUCache(cfg.Size, cfg.Compress)
	if err != nil {
		panic(fmt.Sprintf("failed to create cache: %v", err))
	}

	log.Info().
		Int("size", cfg.Size).
		Dur("ttl", cfg.TTL).
		Bool("compress", cfg.Compress).
		Msg("Initialized upstream response cache")
}

// cacheKey hashes url. Upstream requests carry no credentials, so the URL
// identifies the response.
func cacheKey(url string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(url))

	return strconv.FormatUint(h.Sum64(), 16)
}

func policyFor(url string, incoming http.Header) cachePolicy {
	if cache == nil {
		return cachePolicy{}
	}

	directives := strings.ToLower(incoming.Get("Cache-Control"))
	if strings.Contains(directives, "no-cache") {
		return cachePolicy{}
	}

	policy := cachePolicy{store: !strings.Contains(directives, "no-store")}

	key := cacheKey(url)

	encoded, ok := cache.Get(key)
	if !ok {
		return policy
	}

	var resp cachedResponse
	if err := gob.NewDecoder(bytes.NewReader(encoded)).Decode(&resp); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("Dropping undecodable cache entry")
		cache.Remove(key)

		return policy
	}

	policy.hit = &resp

	return policy
}

func storeResponse(ctx context.Context, url string, resp cachedResponse) {
	if cache == nil {
		return
	}

	resp.Header = resp.Header.Clone()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(resp); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to encode response for cache")

		return
	}

	cache.Add(cacheKey(url), url, buf.Bytes(), config.Global.Cache.TTL)
}

// InvalidateURLs drops the cached responses of every URL starting with one
// of prefixes and returns those URLs. It is a no-op without a cache.
func InvalidateURLs(prefixes []string) (int, []string) {
	if cache == nil || len(prefixes) == 0 {
		return 0, nil
	}

	dropped := cache.RemoveTagPrefixes(prefixes...)

	log.Info().Int("count", len(dropped)).Strs("urls", dropped).Msg("Invalidated cached upstream responses")

	return len(dropped), dropped
}
