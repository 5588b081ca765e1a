// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package limiter is a middleware that rate limits the JSON API of the frontend.

Clients are grouped by IP network (see the ipv4Prefix and ipv6Prefix
settings) and each network shares one token bucket. Rendered pages are not
limited, since they are served from caches in front of WordPress.
*/
package limiter
