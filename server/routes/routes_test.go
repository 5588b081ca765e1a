// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/requests"
	"codeberg.org/antigravity/frontend/core/revalidate"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
)

// Tests in this package reconfigure package state and must not run in parallel.

const testCatalogue = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"

msgctxt "Content"
msgid "count-your-words"
msgstr "Cuenta tus palabras"
`

func TestMain(m *testing.M) {
	catalogues := fstest.MapFS{"po/es.po": {Data: []byte(testCatalogue)}}

	if err := i18n.Setup(catalogues, "en", []string{"en", "es", "fr"}); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		want int
	}{
		{name: "handler wrote 404", code: http.StatusNotFound, want: http.StatusNotFound},
		{name: "missing content", err: fmt.Errorf("tool %q: %w", "x", wordpress.ErrNotFound), want: http.StatusNotFound},
		{name: "unknown path", err: errPageNotFound, want: http.StatusNotFound},
		{name: "upstream status", err: &requests.APIError{StatusCode: 500, Err: errors.New("api")}, want: http.StatusBadGateway},
		{name: "upstream timeout", err: fmt.Errorf("fetch: %w", context.DeadlineExceeded), want: http.StatusBadGateway},
		{name: "network", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: http.StatusBadGateway},
		{name: "anything else", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorStatus(tt.err, tt.code))
		})
	}
}

func TestResourceFor(t *testing.T) {
	tests := []struct {
		path, kind, slug string
	}{
		{path: "/en", kind: "post"},
		{path: "/es/blog", kind: "post"},
		{path: "/en/blog/hello-world", kind: "post", slug: "hello-world"},
		{path: "/fr/tools/word-counter", kind: "tool", slug: "word-counter"},
		{path: "/fr/tools", kind: ""},
		{path: "/es/legal/privacy", kind: "page", slug: "privacy"},
		{path: "/about", kind: ""},
		{path: "/", kind: ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, slug := resourceFor(tt.path)

			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.slug, slug)
		})
	}
}

func TestPageLocale(t *testing.T) {
	assert.Equal(t, "es", pageLocale(httptest.NewRequest(http.MethodGet, "/es/tools/x", nil)))
	assert.Equal(t, "fr", pageLocale(httptest.NewRequest(http.MethodGet, "/fr", nil)))
	assert.Equal(t, "en", pageLocale(httptest.NewRequest(http.MethodGet, "/de/tools/x", nil)))
}

func postJSON(t *testing.T, handler func(http.ResponseWriter, *http.Request) error, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	rr := httptest.NewRecorder()
	require.NoError(t, handler(rr, httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))))

	return rr
}

func TestTranslationKeys(t *testing.T) {
	const colliding = `{"html": "<h2>Hello World</h2><p>Hello, world!</p>", "policy": "%s"}`

	t.Run("default policy", func(t *testing.T) {
		rr := postJSON(t, TranslationKeys, "/api/translation-keys", fmt.Sprintf(colliding, ""))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

		var keys contentkeys.KeyMap
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &keys))
		assert.Equal(t, contentkeys.KeyMap{"hello-world": {Tag: "p", Content: "Hello, world!"}}, keys)
	})

	t.Run("first write wins", func(t *testing.T) {
		rr := postJSON(t, TranslationKeys, "/api/translation-keys", fmt.Sprintf(colliding, "first-write-wins"))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"content":"Hello World"`)
	})

	t.Run("strict", func(t *testing.T) {
		rr := postJSON(t, TranslationKeys, "/api/translation-keys", fmt.Sprintf(colliding, "strict"))

		require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

		var resp collisionResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp.Collisions, 1)
		assert.Equal(t, "hello-world", resp.Collisions[0].Key)
	})

	t.Run("validation", func(t *testing.T) {
		rr := postJSON(t, TranslationKeys, "/api/translation-keys", `{"html": "", "policy": "random"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), `"html"`)
		assert.Contains(t, rr.Body.String(), `"policy"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		rr := postJSON(t, TranslationKeys, "/api/translation-keys", `{"html":`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// fakeSnapshots records deletions.
type fakeSnapshots struct {
	deleted []string
}

func (f *fakeSnapshots) Delete(_ context.Context, typ wordpress.ContentType, slug string) (int64, error) {
	f.deleted = append(f.deleted, string(typ)+"/"+slug)

	return 2, nil
}

func (f *fakeSnapshots) DeletePost(_ context.Context, slug string) (int64, error) {
	f.deleted = append(f.deleted, "post/"+slug)

	return 1, nil
}

func TestRevalidate(t *testing.T) {
	config.Global.Revalidation.Secret = "s3cret"
	snapshots := &fakeSnapshots{}
	Snapshots = snapshots

	t.Cleanup(func() {
		config.Global.Revalidation.Secret = ""
		Snapshots = nil
	})

	get := func(target string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		require.NoError(t, Revalidate(rr, httptest.NewRequest(http.MethodGet, target, nil)))

		return rr
	}

	t.Run("status", func(t *testing.T) {
		rr := get(revalidate.Endpoint)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status": "ok", "message": "Revalidation API is active. Use POST with {secret, path} or GET with ?secret=...&path=..."}`,
			rr.Body.String())
	})

	t.Run("invalid secret", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(revalidate.Endpoint+"?secret=nope&path=/en").Code)

		rr := postJSON(t, Revalidate, revalidate.Endpoint, `{"secret": "nope", "path": "/en"}`)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing path", func(t *testing.T) {
		rr := postJSON(t, Revalidate, revalidate.Endpoint, `{"secret": "s3cret"}`)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Path is required")
	})

	t.Run("relative path", func(t *testing.T) {
		rr := postJSON(t, Revalidate, revalidate.Endpoint, `{"secret": "s3cret", "path": "en/blog"}`)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("post", func(t *testing.T) {
		rr := postJSON(t, Revalidate, revalidate.Endpoint, `{"secret": "s3cret", "path": "/en/blog/hello-world"}`)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp revalidate.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Revalidated)
		assert.Equal(t, "/en/blog/hello-world", resp.Path)
		assert.Positive(t, resp.Timestamp)
	})

	t.Run("query", func(t *testing.T) {
		rr := get(revalidate.Endpoint + "?secret=s3cret&path=/es/tools/word-counter")

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	assert.Equal(t, []string{"post/hello-world", "tool/word-counter"}, snapshots.deleted)
}

func TestRevalidateWithoutSecret(t *testing.T) {
	rr := postJSON(t, Revalidate, revalidate.Endpoint, `{"secret": "", "path": "/en"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestLocalizeContent(t *testing.T) {
	config.Global.Content.Localize = true

	t.Cleanup(func() {
		config.Global.Content.Localize = false
		config.Global.Content.ExtractFallback = false
	})

	content := &wordpress.Content{
		Slug: "word-counter",
		Type: wordpress.Tool,
		HTML: "<h2>Count your words</h2><p>Paste text.</p>",
		TranslationKeys: contentkeys.LocalizedKeyMaps{
			"en": {"count-your-words": {Tag: "h2", Content: "Count your words"}},
		},
		AvailableLocales: []string{"en"},
	}

	es := i18n.WithLocale(context.Background(), "es")

	assert.Equal(t, "<h2>Cuenta tus palabras</h2><p>Paste text.</p>", localizeContent(es, content, "es"))

	t.Run("disabled", func(t *testing.T) {
		config.Global.Content.Localize = false
		defer func() { config.Global.Content.Localize = true }()

		assert.Equal(t, content.HTML, localizeContent(es, content, "es"))
	})

	t.Run("extraction fallback", func(t *testing.T) {
		bare := *content
		bare.TranslationKeys = contentkeys.LocalizedKeyMaps{}

		assert.Equal(t, content.HTML, localizeContent(es, &bare, "es"), "no keys, no fallback")

		config.Global.Content.ExtractFallback = true

		assert.Equal(t, "<h2>Cuenta tus palabras</h2><p>Paste text.</p>", localizeContent(es, &bare, "es"))
	})
}

func TestLocalizeContentLogsOnce(t *testing.T) {
	config.Global.Content.Localize = true

	var buf bytes.Buffer

	savedLogger, savedLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)

	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	t.Cleanup(func() {
		log.Logger = savedLogger
		zerolog.SetGlobalLevel(savedLevel)
		config.Global.Content.Localize = false
	})

	content := &wordpress.Content{
		Slug: "word-counter",
		Type: wordpress.Tool,
		HTML: "<h2>Count your words</h2>",
		TranslationKeys: contentkeys.LocalizedKeyMaps{
			"en": {"count-your-words": {Tag: "h2", Content: "Count your words"}},
		},
	}

	got := localizeContent(i18n.WithLocale(context.Background(), "es"), content, "es")

	assert.Equal(t, "<h2>Cuenta tus palabras</h2>", got)
	assert.Equal(t, 1, strings.Count(buf.String(), `"message":"Localized content"`))
}
