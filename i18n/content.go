// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"

	"codeberg.org/antigravity/frontend/core/contentkeys"
)

// ContentContext is the msgctxt under which content translations are stored.
// Their msgids are translation keys, not English text.
const ContentContext = "Content"

// ContentLookup returns a [contentkeys.Lookup] resolving translation keys in
// the language of ctx.
//
// A key without a translation resolves to itself, which the localizer treats
// as "keep the source text". Unlike [Tr], results are never wrapped in strict
// mode, since the lookup result is substituted into page content.
func ContentLookup(ctx context.Context) contentkeys.Lookup {
	loc, matched := resolveLocale(TagFrom(ctx))
	locale := localeOf(matched)

	return func(key string) (string, error) {
		m := message{msgctxt: ContentContext, id: key}

		if text, ok := m.lookup(loc); ok {
			return text, nil
		}

		reportMissing(locale, m.key())

		return key, nil
	}
}
