// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware of the frontend.

Middleware share the [Middleware] signature and are chained by the router in
server/router. Fallible route handlers are adapted to http.Handler by
[CatchError].
*/
package middleware
