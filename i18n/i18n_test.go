// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/contentkeys"
)

// Tests in this file reconfigure package state and must not run in parallel.

const testHeader = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Plural-Forms: nplurals=2; plural=(n != 1);\n"
`

var testCatalogues = fstest.MapFS{
	"po/es.po": {Data: []byte(testHeader + `
msgid "Latest posts"
msgstr "Últimas publicaciones"

msgid "{{.Count}} tool"
msgid_plural "{{.Count}} tools"
msgstr[0] "{{.Count}} herramienta"
msgstr[1] "{{.Count}} herramientas"

msgctxt "Content"
msgid "this-is-heading"
msgstr "Esto es un encabezado"

msgctxt "Content"
msgid "some-text-here"
msgstr "Algo de texto aquí."
`)},
	"po/de.po":          {Data: []byte(testHeader)},
	"po/antigravity.pot": {Data: []byte(testHeader)},
	"po/not a tag!.po":   {Data: []byte(testHeader)},
}

func setupTestCatalogues(t *testing.T) {
	t.Helper()

	require.NoError(t, Setup(testCatalogues, "en", []string{"en", "es", "fr"}))
}

func TestSetup(t *testing.T) {
	setupTestCatalogues(t)

	assert.Equal(t, []string{"en", "es", "fr"}, Locales())
	assert.Equal(t, "en", DefaultLocale())
	assert.True(t, Supported("es"))
	assert.False(t, Supported("de"), "catalogue present but locale not served")
	assert.False(t, Supported("EN"))
	assert.Contains(t, localesByTag, "es")
	assert.NotContains(t, localesByTag, "de")
	assert.NotContains(t, localesByTag, "fr")

	assert.Error(t, Setup(testCatalogues, "en", nil))
	assert.Error(t, Setup(fstest.MapFS{}, "en", []string{"en"}))
}

func TestTr(t *testing.T) {
	setupTestCatalogues(t)

	es := WithLocale(context.Background(), "es")
	fr := WithLocale(context.Background(), "fr")

	assert.Equal(t, "Últimas publicaciones", Tr(es, "Latest posts"))
	assert.Equal(t, "Latest posts", Tr(fr, "Latest posts"))
	assert.Equal(t, "Latest posts", Tr(context.Background(), "Latest posts"))
	assert.Equal(t, "3 herramientas", TrN(es, "{{.Count}} tool", "{{.Count}} tools", 3, "Count", 3))
	assert.Equal(t, "1 tool", TrN(fr, "{{.Count}} tool", "{{.Count}} tools", 1, "Count", 1))
}

func TestStrictMissingKeys(t *testing.T) {
	setupTestCatalogues(t)

	config.Global.Internationalization.StrictMissingKeys = true

	t.Cleanup(func() { config.Global.Internationalization.StrictMissingKeys = false })

	es := WithLocale(context.Background(), "es")

	assert.Equal(t, "⟦Not translated⟧", Tr(es, "Not translated"))
	assert.Equal(t, "no-such-key", mustLookup(t, ContentLookup(es), "no-such-key"),
		"content lookups must never be wrapped")
}

func TestFromRequest(t *testing.T) {
	setupTestCatalogues(t)

	tests := []struct {
		name   string
		query  string
		cookie string
		accept string
		want   string
	}{
		{name: "nothing", want: "en"},
		{name: "accept-language", accept: "fr-CH, fr;q=0.9, en;q=0.5", want: "fr"},
		{name: "cookie beats header", cookie: "es", accept: "fr", want: "es"},
		{name: "query beats cookie", query: "fr", cookie: "es", want: "fr"},
		{name: "auto ignores cookie", query: "auto", cookie: "es", accept: "fr", want: "fr"},
		{name: "unsupported falls back", accept: "ja", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?lang="+tt.query, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LangCookie, Value: tt.cookie})
			}

			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}

			tag := FromRequest(r)
			assert.Equal(t, tt.want, tag.String())
			assert.Equal(t, tt.want, LocaleFrom(WithRequest(context.Background(), r)))
		})
	}
}

func TestContentLookup(t *testing.T) {
	setupTestCatalogues(t)

	es := ContentLookup(WithLocale(context.Background(), "es"))
	fr := ContentLookup(WithLocale(context.Background(), "fr"))

	assert.Equal(t, "Esto es un encabezado", mustLookup(t, es, "this-is-heading"))
	assert.Equal(t, "missing-key", mustLookup(t, es, "missing-key"))
	assert.Equal(t, "this-is-heading", mustLookup(t, fr, "this-is-heading"))

	// UI strings live outside the Content context.
	assert.Equal(t, "Latest posts", mustLookup(t, es, "Latest posts"))
}

func TestContentLookupLocalizesExtractedKeys(t *testing.T) {
	setupTestCatalogues(t)

	src := `<h2>This is Heading</h2><p>Some text here.</p>`
	lookup := ContentLookup(WithTag(context.Background(), language.Spanish))

	got := contentkeys.Localize(src, contentkeys.Extract(src), lookup)

	assert.Equal(t, `<h2>Esto es un encabezado</h2><p>Algo de texto aquí.</p>`, got)
}

func mustLookup(t *testing.T, lookup contentkeys.Lookup, key string) string {
	t.Helper()

	s, err := lookup(key)
	require.NoError(t, err)

	return s
}

func TestMsgKey(t *testing.T) {
	setupTestCatalogues(t)

	var component templ.Component = MsgKey("Latest posts")

	var sb strings.Builder
	require.NoError(t, component.Render(WithLocale(context.Background(), "es"), &sb))
	assert.Equal(t, "Últimas publicaciones", sb.String())
}

func TestPlaceholders(t *testing.T) {
	setupTestCatalogues(t)

	ctx := context.Background()

	assert.Equal(t, "By Ana", Tr(ctx, "By {{.Author}}", "Author", "Ana"))
	assert.Equal(t, "By {{.Author}}", Tr(ctx, "By {{.Author}}"), "a missing value keeps the source text")
	assert.Equal(t, "Broken {{.", Tr(ctx, "Broken {{."))
	assert.Panics(t, func() { Tr(ctx, "{{.Count}}", "Count") })
	assert.Panics(t, func() { Tr(ctx, "{{.Count}}", 1, 2) })
}

func TestShippedCatalogues(t *testing.T) {
	require.NoError(t, Setup(os.DirFS(".."), "en", []string{"en", "es", "fr", "de"}))

	tests := []struct {
		locale  string
		content string
		ui      string
	}{
		{"es", "Cuenta tus palabras", "Diciembre"},
		{"fr", "Comptez vos mots", "Décembre"},
		{"de", "Zähle deine Wörter", "Dezember"},
		{"en", "count-your-words", "December"},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			ctx := WithLocale(context.Background(), tt.locale)

			assert.Equal(t, tt.content, mustLookup(t, ContentLookup(ctx), "count-your-words"))
			assert.Equal(t, tt.ui, Tr(ctx, "December"))
		})
	}
}
