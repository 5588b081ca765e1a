// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n serves the frontend in several languages from gettext catalogues
embedded under po/.

The catalogues hold two kinds of entries. Interface strings use their English
text as msgid:

	i18n.Tr(ctx, "Latest posts")
	i18n.TrN(ctx, "{{.Count}} tool", "{{.Count}} tools", n, "Count", n)

Content fragments extracted from WordPress bodies use their translation key as
msgid, under the "Content" msgctxt, and are resolved through [ContentLookup]:

	msgctxt "Content"
	msgid "this-is-heading"
	msgstr "Esto es un encabezado"

The language travels in the request context. Handlers read it with
[LocaleFrom]; middleware installs it with [WithLocale] or [WithRequest].

With internationalization.strictMissingKeys enabled, each missing interface
string is logged once per locale and shown as "⟦text⟧". Content lookups are
logged but never marked.
*/
package i18n
