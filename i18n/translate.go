// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"io"
	"strings"
	"sync"
	"text/template"

	"github.com/leonelquinteros/gotext"
	"golang.org/x/text/language"

	"codeberg.org/antigravity/frontend/config"
)

// Markers wrapped around text that has no translation in strict mode.
const (
	missingOpen  = "⟦"
	missingClose = "⟧"
)

var (
	// compiled holds parsed placeholder templates by source text.
	compiled sync.Map

	// reported remembers which locale and key pairs were already logged as
	// missing.
	reported sync.Map
)

// Tr translates msgid, the English UI text, into the language of ctx.
//
// Trailing arguments are name, value pairs substituted into {{.Name}}
// placeholders. A msgid without a translation is returned as is.
func Tr(ctx context.Context, msgid string, kv ...any) string {
	return message{id: msgid}.translate(ctx, kv)
}

// TrN is Tr for a message with a plural form chosen by n.
func TrN(ctx context.Context, singular, plural string, n int, kv ...any) string {
	return message{id: singular, plural: plural, n: n, counted: true}.translate(ctx, kv)
}

// MsgKey is a msgid kept for translation at render time.
type MsgKey string

// Tr translates k in the language of ctx.
func (k MsgKey) Tr(ctx context.Context) string {
	return Tr(ctx, string(k))
}

// Render writes the translation of k, which lets a MsgKey be used as a
// templ component.
func (k MsgKey) Render(ctx context.Context, w io.Writer) error {
	_, err := io.WriteString(w, k.Tr(ctx))

	return err
}

// message identifies one catalogue entry.
type message struct {
	msgctxt string
	id      string
	plural  string
	n       int
	counted bool
}

// source is the untranslated text for m.
func (m message) source() string {
	if m.counted && m.n != 1 {
		return m.plural
	}

	return m.id
}

// key names m in logs the way gettext does, with the context first.
func (m message) key() string {
	if m.msgctxt == "" {
		return m.id
	}

	return m.msgctxt + gotext.EotSeparator + m.id
}

// lookup returns the catalogue translation of m, if loc has one.
func (m message) lookup(loc *gotext.Locale) (string, bool) {
	if loc == nil {
		return "", false
	}

	switch {
	case m.counted && m.msgctxt != "":
		if loc.IsTranslatedNDC(poDomain, m.id, m.n, m.msgctxt) {
			return loc.GetNDC(poDomain, m.id, m.plural, m.n, m.msgctxt), true
		}
	case m.counted:
		if loc.IsTranslatedND(poDomain, m.id, m.n) {
			return loc.GetND(poDomain, m.id, m.plural, m.n), true
		}
	// A singular msgstr only fills plural index 0, so it is checked with n=1.
	// IsTranslatedD and IsTranslatedDC check n=0, which is index 1 under
	// plural=(n != 1).
	case m.msgctxt != "":
		if loc.IsTranslatedNDC(poDomain, m.id, 1, m.msgctxt) {
			return loc.GetDC(poDomain, m.id, m.msgctxt), true
		}
	default:
		if loc.IsTranslatedND(poDomain, m.id, 1) {
			return loc.GetD(poDomain, m.id), true
		}
	}

	return "", false
}

func (m message) translate(ctx context.Context, kv []any) string {
	loc, matched := resolveLocale(TagFrom(ctx))

	text, ok := m.lookup(loc)
	if !ok {
		text = m.source()

		if strict() {
			reportMissing(localeOf(matched), m.key())

			text = missingOpen + text + missingClose
		}
	}

	return fill(matched, text, pairs(kv))
}

// strict reports whether missing translations are logged and marked.
func strict() bool {
	return config.Global.Internationalization.StrictMissingKeys
}

// reportMissing logs a missing translation once per locale and key.
func reportMissing(locale, key string) {
	if !strict() {
		return
	}

	if _, seen := reported.LoadOrStore(locale+"\x00"+key, struct{}{}); seen {
		return
	}

	logger.Warn().Str("locale", locale).Str("key", key).Msg("Missing i18n translation")
}

// fill substitutes data into the placeholders of text. Text without
// placeholders is returned untouched, even when data is empty.
func fill(locale language.Tag, text string, data map[string]any) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	tmpl, err := compile(text)
	if err == nil {
		var sb strings.Builder
		if err = tmpl.Execute(&sb, data); err == nil {
			return sb.String()
		}
	}

	if strict() {
		return missingOpen + text + missingClose
	}

	logger.Warn().Err(err).Stringer("locale", locale).Str("text", text).Msg("Failed to fill translation placeholders")

	return text
}

func compile(text string) (*template.Template, error) {
	if cached, ok := compiled.Load(text); ok {
		return cached.(*template.Template), nil
	}

	// missingkey=error turns a placeholder without a value into an error.
	tmpl, err := template.New("msg").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, err
	}

	compiled.Store(text, tmpl)

	return tmpl, nil
}

// pairs turns alternating names and values into template data. A malformed
// list is a programming error.
func pairs(kv []any) map[string]any {
	if len(kv)%2 != 0 {
		panic("i18n: placeholder arguments must be name, value pairs")
	}

	data := make(map[string]any, len(kv)/2)

	for i := 0; i < len(kv); i += 2 {
		name, ok := kv[i].(string)
		if !ok {
			panic("i18n: placeholder name must be a string")
		}

		data[name] = kv[i+1]
	}

	return data
}
