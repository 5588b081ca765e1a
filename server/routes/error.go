// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"codeberg.org/antigravity/frontend/core/requests"
	"codeberg.org/antigravity/frontend/core/seo"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/request_context"
	"codeberg.org/antigravity/frontend/views"
)

// errPageNotFound is returned for paths that no route serves.
var errPageNotFound = errors.New("page not found")

// ErrorStatus returns the status of the error page for err, given the
// status the handler had written before failing.
//
// Missing content is a 404. A WordPress failure is a 502, as the frontend
// itself is working. Everything else is a 500.
func ErrorStatus(err error, code int) int {
	switch {
	case code == http.StatusNotFound,
		errors.Is(err, wordpress.ErrNotFound),
		errors.Is(err, errPageNotFound):
		return http.StatusNotFound
	case isUpstreamError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func isUpstreamError(err error) bool {
	if err == nil {
		return false
	}

	if requests.StatusCode(err) > 0 || requests.IsContextCanceled(err) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

// ErrorPage renders an error page.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	rc := request_context.FromRequest(r)
	if rc.StatusCode < http.StatusBadRequest {
		rc.StatusCode = http.StatusInternalServerError
	}

	w.Header().Set("Cache-Control", "no-store")

	if strings.HasPrefix(r.URL.Path, "/api/") {
		_ = writeJSON(w, rc.StatusCode, map[string]string{"error": http.StatusText(rc.StatusCode)})

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(rc.StatusCode)

	ctx := r.Context()

	meta := seo.FromConfig().Page(i18n.LocaleFrom(ctx), rc.CommonData.PathWithoutLocale, views.ErrorTitle(ctx, rc.StatusCode), "")
	meta.Canonical = ""
	meta.Alternates = nil
	meta.NoIndex = true

	pageData := views.ErrorData{
		StatusCode: rc.StatusCode,
		Error:      rc.RequestError,
	}

	_ = views.Layout(meta, views.Error(pageData)).Render(ctx, w)
}

// NotFound is the handler of paths that no other route serves.
func NotFound(_ http.ResponseWriter, _ *http.Request) error {
	return errPageNotFound
}
