// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/audit"
	"codeberg.org/antigravity/frontend/server/request_context"
	"codeberg.org/antigravity/frontend/server/routes"
)

// CatchError adapts a handler that returns an error.
//
// The handler writes into a buffer. When it fails without writing an error
// status, or answers 404, the buffer is dropped and the error page is served
// with the status routes.ErrorStatus picks. Otherwise the buffer is sent as
// is. Either way the exchange is logged as an audit span.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := request_context.FromRequest(r)

		span := audit.Span{
			Destination: audit.ToUser,
			RequestID:   rc.RequestID,
			Method:      r.Method,
			URL:         r.URL.String(),
		}

		span.Begin(r.Context())
		defer span.End()

		buffered := httptest.NewRecorder()
		rc.RequestError = handler(buffered, r)

		if showsErrorPage(rc.RequestError, buffered.Code) {
			rc.StatusCode = routes.ErrorStatus(rc.RequestError, buffered.Code)
			routes.ErrorPage(w, r)
		} else {
			rc.StatusCode = buffered.Code
			flush(w, buffered)
		}

		span.StatusCode = rc.StatusCode
		span.Error = rc.RequestError

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}

func showsErrorPage(err error, status int) bool {
	return status == http.StatusNotFound || (err != nil && status < http.StatusBadRequest)
}

// flush sends a buffered response to w.
func flush(w http.ResponseWriter, buffered *httptest.ResponseRecorder) {
	maps.Copy(w.Header(), buffered.Header())
	w.WriteHeader(buffered.Code)

	if _, err := buffered.Body.WriteTo(w); err != nil {
		log.Err(err).Msg("Failed to write response body")
	}
}
