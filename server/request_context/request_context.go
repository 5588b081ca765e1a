// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package request_context holds the mutable state of one request. It lives
// apart from middleware and routes so that both can import it.
package request_context

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"codeberg.org/antigravity/frontend/core/idgen"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/template/commondata"
)

// RequestContext is shared by pointer between the middleware chain and the
// handler of a request.
type RequestContext struct {
	RequestID string

	// RequestError is the error returned by the handler. Set by
	// middleware.CatchError and rendered by the error page.
	RequestError error

	// StatusCode is the status sent to the client, 200 until a handler or
	// the error page decides otherwise.
	StatusCode int

	// T is the display language: negotiated first, then replaced by the
	// locale segment of the path, if any.
	T language.Tag

	CommonData commondata.PageCommonData
}

type key struct{}

// WithRequestContext negotiates the language of r and returns a copy of ctx
// carrying it and a fresh RequestContext.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	ctx = i18n.WithRequest(ctx, r)

	rc := &RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
		T:          i18n.TagFrom(ctx),
	}

	commondata.PopulatePageCommonData(r, &rc.CommonData, i18n.Supported)

	return context.WithValue(ctx, key{}, rc)
}

// FromContext returns the RequestContext of ctx. Outside a request it returns
// a new zero value, so callers never see nil.
func FromContext(ctx context.Context) *RequestContext {
	rc, ok := ctx.Value(key{}).(*RequestContext)
	if !ok {
		return &RequestContext{}
	}

	return rc
}

func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
