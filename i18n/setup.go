// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/leonelquinteros/gotext"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

var errNoLocales = errors.New("i18n: at least one locale is required")

var (
	logger zerolog.Logger

	// poDomain is the gettext domain to load under each locale.
	poDomain = "antigravity"

	// localesByTag maps the locale code of each served language to its
	// catalogue. Languages without a .po file have no entry.
	localesByTag map[string]*gotext.Locale

	// supportedTags holds the served languages, default first.
	supportedTags []language.Tag

	// supportedLocales mirrors supportedTags as locale codes.
	supportedLocales []string

	// matcher is a private [language.Matcher] over supportedTags.
	matcher language.Matcher
)

// Setup initialises package i18n for the given locales, loading gettext
// catalogues from fsys and constructing a language matcher.
//
// The expected layout of fsys is:
//
//	po/<locale>.po
//
// The <locale> filename part may use hyphens or underscores. Catalogues for
// languages that are not in locales are ignored, and a served language without
// a catalogue falls back to the msgid. defaultLocale is the matcher's fallback
// and must be one of locales.
//
// Calling Setup again replaces the previously loaded locales and matcher.
func Setup(fsys fs.FS, defaultLocale string, locales []string) error {
	logger = log.With().Str("sys", "i18n").Logger()

	if len(locales) == 0 {
		return errNoLocales
	}

	baseTag = language.Make(defaultLocale)
	localesByTag = make(map[string]*gotext.Locale)
	supportedTags = []language.Tag{baseTag}
	supportedLocales = []string{localeOf(baseTag)}

	for _, raw := range locales {
		t := language.Make(raw)
		if code := localeOf(t); code != supportedLocales[0] {
			supportedTags = append(supportedTags, t)
			supportedLocales = append(supportedLocales, code)
		}
	}

	matcher = language.NewMatcher(supportedTags)

	entries, err := fs.ReadDir(fsys, "po")
	if err != nil {
		return fmt.Errorf("failed to read po directory: %w", err)
	}

	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(fileName, ".po") {
			continue
		}

		t, err := language.Parse(strings.ReplaceAll(strings.TrimSuffix(fileName, ".po"), "_", "-"))
		if err != nil {
			logger.Warn().Err(err).Str("file", fileName).Msg("Skipping invalid locale file")

			continue
		}

		code := localeOf(t)
		if !Supported(code) {
			logger.Debug().Str("file", fileName).Msg("Skipping catalogue for a locale that is not served")

			continue
		}

		po := gotext.NewPoFS(fsys)
		po.ParseFile(path.Join("po", fileName))

		loc := gotext.NewLocale("", code) // Base path is unused when manually adding translators.
		loc.AddTranslator(poDomain, po)

		localesByTag[code] = loc

		logger.Info().
			Str("locale", code).
			Str("domain", poDomain).
			Msg("Loaded locale")
	}

	return nil
}

// resolveLocale matches t to one of the served languages and returns its
// catalogue, which may be nil, and the matched tag.
func resolveLocale(t language.Tag) (*gotext.Locale, language.Tag) {
	if matcher == nil {
		return nil, baseTag
	}

	_, index, _ := matcher.Match(t)
	matched := supportedTags[index]

	return localesByTag[localeOf(matched)], matched
}
