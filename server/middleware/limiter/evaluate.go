// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package limiter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
)

// Rate limiting header names.
//
// ref: https://www.ietf.org/archive/id/draft-polli-ratelimit-headers-02.html
const (
	HeaderRateLimitLimit     string = "RateLimit-Limit" // This is intended.
	HeaderRateLimitRemaining string = "RateLimit-Remaining"
	HeaderRateLimitReset     string = "RateLimit-Reset"
)

// isLimitedPath reports whether path belongs to the JSON API.
func isLimitedPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}

// Evaluate is the entrypoint to the limiter middleware.
func Evaluate(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if !isLimitedPath(r.URL.Path) {
		next.ServeHTTP(w, r)

		return
	}

	addr, ok := clientAddr(r)
	if !ok {
		writeJSONError(w, http.StatusBadRequest, "Could not determine client IP")

		return
	}

	cfg := config.Global.Limiter

	if passListed(addr, cfg.PassIPs) {
		next.ServeHTTP(w, r)

		return
	}

	now := timeNow()
	network := networkOf(addr, cfg.IPv4Prefix, cfg.IPv6Prefix)
	q := buckets.get(network, cfg.Rate, cfg.Burst, now).take(now)

	buckets.sweep(now, false)

	setQuotaHeaders(w.Header(), q)

	if !q.Allowed {
		log.Warn().
			Stringer("ip", addr).
			Stringer("network", network).
			Str("path", r.URL.Path).
			Msg("Request blocked, exceeded rate limit")

		writeJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded")

		return
	}

	next.ServeHTTP(w, r)
}

// setQuotaHeaders reports q in the RateLimit headers.
func setQuotaHeaders(h http.Header, q quota) {
	h.Set(HeaderRateLimitLimit, strconv.Itoa(q.Limit))
	h.Set(HeaderRateLimitRemaining, strconv.Itoa(q.Remaining))
	h.Set(HeaderRateLimitReset, strconv.Itoa(int(q.Reset.Seconds())))

	if q.RetryAfter > 0 {
		h.Set("Retry-After", strconv.Itoa(int(q.RetryAfter.Seconds())))
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
