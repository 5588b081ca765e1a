// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package wordpress fetches blog posts, tools and managed pages from the headless
WordPress backend.

Blog posts come from WPGraphQL. Tools and pages come from the antigravity/v1
REST namespace, which returns one language variant of an item together with
the translation key maps of every language.

All requests go through package requests, so GET responses are cached and can
be invalidated by URL prefix (see [Client.CacheURLPrefixes]).
*/
package wordpress
