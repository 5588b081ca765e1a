// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package set_request_context installs the per-request state every later
// middleware and handler reads.
package set_request_context

import (
	"net/http"

	"codeberg.org/antigravity/frontend/server/request_context"
)

func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := request_context.WithRequestContext(r.Context(), r)

	next.ServeHTTP(w, r.WithContext(ctx))
}
