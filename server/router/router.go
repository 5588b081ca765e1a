// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package router assembles the middleware chain and the routes of the
// frontend.
package router

import (
	"net/http"

	"codeberg.org/antigravity/frontend/server/middleware"
)

// Router is an http.ServeMux behind a middleware chain. Routes may be
// registered before or after the chain is built.
type Router struct {
	*http.ServeMux

	middlewares []middleware.Middleware
	chain       http.Handler
}

func NewRouter() *Router {
	mux := http.NewServeMux()

	return &Router{ServeMux: mux, chain: mux}
}

// Use appends m to the chain. The first middleware added runs first.
//
// Use is not safe for concurrent use with ServeHTTP and is meant to be called
// during startup.
func (router *Router) Use(m middleware.Middleware) {
	router.middlewares = append(router.middlewares, m)

	var next http.Handler = router.ServeMux
	for i := len(router.middlewares) - 1; i >= 0; i-- {
		next = middleware.Wrap(router.middlewares[i], next)
	}

	router.chain = next
}

func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.chain.ServeHTTP(w, r)
}
