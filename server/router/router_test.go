// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/revalidate"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/assets"
	"codeberg.org/antigravity/frontend/server/middleware"
	"codeberg.org/antigravity/frontend/server/pagecache"
)

const esCatalogue = `msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"

msgid "Blog"
msgstr "Blog"

msgctxt "Content"
msgid "count-your-words"
msgstr "Cuenta tus palabras"
`

const toolJSON = `{
  "id": 7,
  "slug": "word-counter",
  "type": "ag_tool",
  "title": "Word counter",
  "description": "Count the words of any text.",
  "content": "<h2>Count your words</h2><p>Paste your text below.</p>",
  "featuredImage": false,
  "seo": {"title": "", "description": "", "canonical": "", "keywords": "", "ogImage": false},
  "schema": {"type": "SoftwareApplication"},
  "translationKeys": {"en": {"count-your-words": {"tag": "h2", "content": "Count your words"}}},
  "availableLocales": ["en"],
  "modified": "2025-03-01 10:00:00"
}`

const pageJSON = `{
  "id": 9,
  "slug": "privacy",
  "type": "ag_page",
  "title": "Privacy policy",
  "description": "",
  "content": "<p>We keep nothing.</p>",
  "translationKeys": [],
  "availableLocales": ["en", "es"],
  "modified": "2025-02-01 00:00:00"
}`

const postsJSON = `{"data": {"posts": {"nodes": [
  {"slug": "hello-world", "title": "Hello world", "excerpt": "<p>First post</p>", "date": "2025-01-02T03:04:05",
   "author": {"node": {"name": "Ana"}}, "featuredImage": null}
]}}}`

const postJSON = `{"data": {"post": {"slug": "hello-world", "title": "Hello world", "excerpt": "<p>First post</p>",
  "content": "<p>Welcome to the blog.</p>", "date": "2025-01-02T03:04:05",
  "author": {"node": {"name": "Ana"}}, "featuredImage": null}}}`

const sitemapJSON = `{"tools": [{"slug": "word-counter", "modified": "2025-03-01 10:00:00"}], "pages": [], "posts": []}`

const notFoundJSON = `{"code": "not_found", "message": "Content not found", "data": {"status": 404}}`

func TestMain(m *testing.M) {
	catalogues := fstest.MapFS{"po/es.po": {Data: []byte(esCatalogue)}}

	if err := i18n.Setup(catalogues, "en", []string{"en", "es"}); err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

// fakeWordPress serves the REST and GraphQL endpoints used by the frontend
// and counts the requests for the word-counter tool.
func fakeWordPress(t *testing.T, toolHits *atomic.Int32) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch path := r.URL.Path; {
		case path == "/graphql":
			query := r.URL.Query().Get("query")

			switch {
			case strings.Contains(query, "GetPosts("):
				_, _ = w.Write([]byte(postsJSON))
			case strings.Contains(r.URL.Query().Get("variables"), `"hello-world"`):
				_, _ = w.Write([]byte(postJSON))
			default:
				_, _ = w.Write([]byte(`{"data": {"post": null}}`))
			}
		case path == "/wp-json/antigravity/v1/sitemap":
			_, _ = w.Write([]byte(sitemapJSON))
		case strings.HasPrefix(path, "/wp-json/antigravity/v1/posts/"):
			_, _ = w.Write([]byte(`[]`))
		case path == "/wp-json/antigravity/v1/content/tool/word-counter":
			toolHits.Add(1)

			_, _ = w.Write([]byte(toolJSON))
		case path == "/wp-json/antigravity/v1/content/page/privacy":
			_, _ = w.Write([]byte(pageJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(notFoundJSON))
		}
	}))
	t.Cleanup(server.Close)

	return server
}

// newTestRouter configures a site backed by a fake WordPress and returns the
// fully wired router.
func newTestRouter(t *testing.T, toolHits *atomic.Int32) *Router {
	t.Helper()

	server := fakeWordPress(t, toolHits)

	siteURL, err := url.Parse("https://example.com")
	require.NoError(t, err)

	saved := config.Global

	config.Global.Site.URL = *siteURL
	config.Global.Site.Name = "Antigravity"
	config.Global.Site.DefaultLocale = "en"
	config.Global.Site.Locales = []string{"en", "es"}
	config.Global.Content.Localize = true
	config.Global.Revalidation.Secret = "s3cret"
	config.Global.HTTPCache.MaxAge = time.Minute
	config.Global.PageCache.Enabled = true
	config.Global.PageCache.Size = 32
	config.Global.PageCache.TTL = time.Minute

	pagecache.Setup()

	assets.FS = fstest.MapFS{
		"assets/static/css/main.css": {Data: []byte("body { margin: 0; }")},
	}

	wordpress.Default = &wordpress.Client{
		GraphQLURL: server.URL + "/graphql",
		RESTURL:    server.URL + "/wp-json",
		Timeout:    5 * time.Second,
	}

	t.Cleanup(func() {
		config.Global = saved
		wordpress.Default = nil

		pagecache.Setup()
	})

	router := NewRouter()
	router.RegisterMiddleware()
	router.DefineRoutes()

	return router
}

func serve(handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rr
}

func TestPages(t *testing.T) {
	var toolHits atomic.Int32

	router := newTestRouter(t, &toolHits)

	t.Run("home", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/en", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Header().Get("Cache-Control"), "public, max-age=60")
		assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
		assert.Contains(t, rr.Body.String(), `href="/en/tools/word-counter"`)
		assert.Contains(t, rr.Body.String(), `href="/en/blog/hello-world"`)
		assert.Contains(t, rr.Body.String(), `<link rel="canonical" href="https://example.com/en">`)
	})

	t.Run("localized tool", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/es/tools/word-counter", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `<html lang="es">`)
		assert.Contains(t, rr.Body.String(), "<h2>Cuenta tus palabras</h2>")
		assert.Contains(t, rr.Body.String(), "<p>Paste your text below.</p>")
		assert.Contains(t, rr.Body.String(), `"@type":"SoftwareApplication"`)
	})

	t.Run("managed page", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/en/legal/privacy", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "<p>We keep nothing.</p>")
		assert.Contains(t, rr.Body.String(), `<link rel="canonical" href="https://example.com/en/legal/privacy">`)
	})

	t.Run("blog post", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/en/blog/hello-world", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "<p>Welcome to the blog.</p>")
		assert.Contains(t, rr.Body.String(), `"@type":"BlogPosting"`)
	})

	t.Run("localized blog redirects", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/es/blog/hello-world", "")

		assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
		assert.Equal(t, "/en/blog/hello-world", rr.Header().Get("Location"))
	})

	t.Run("missing post", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/en/blog/nope", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
		assert.Contains(t, rr.Body.String(), "Page not found")
	})

	t.Run("missing tool", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/en/tools/nope", "").Code)
	})

	t.Run("reserved section", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/en/api/privacy", "").Code)
	})

	t.Run("unknown locale", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/de/tools/word-counter", "").Code)
	})

	t.Run("root", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/", "")

		assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
		assert.Equal(t, "/en", rr.Header().Get("Location"))
	})

	t.Run("trailing slash", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/en/blog/", "")

		assert.Equal(t, http.StatusPermanentRedirect, rr.Code)
		assert.Equal(t, "/en/blog", rr.Header().Get("Location"))
	})

	t.Run("legacy url", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/tools/word-counter", "")

		assert.Equal(t, http.StatusPermanentRedirect, rr.Code)
		assert.Equal(t, "/en/tools/word-counter", rr.Header().Get("Location"))
	})

	t.Run("static file", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/css/main.css", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "body { margin: 0; }", rr.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		rr := serve(router, http.MethodGet, "/healthz", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"ok"`)
	})
}

func TestPageCacheRevalidation(t *testing.T) {
	var toolHits atomic.Int32

	router := newTestRouter(t, &toolHits)

	const target = "/en/tools/word-counter"

	first := serve(router, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get(pagecache.HeaderCacheStatus))

	second := serve(router, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get(pagecache.HeaderCacheStatus))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), toolHits.Load())

	rejected := serve(router, http.MethodPost, revalidate.Endpoint, `{"secret": "wrong", "path": "`+target+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rejected.Code)
	assert.Equal(t, "HIT", serve(router, http.MethodGet, target, "").Header().Get(pagecache.HeaderCacheStatus))

	accepted := serve(router, http.MethodPost, revalidate.Endpoint, `{"secret": "s3cret", "path": "`+target+`"}`)
	require.Equal(t, http.StatusOK, accepted.Code)
	assert.Contains(t, accepted.Body.String(), `"revalidated":true`)

	third := serve(router, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, third.Code)
	assert.Equal(t, "MISS", third.Header().Get(pagecache.HeaderCacheStatus))
	assert.Equal(t, int32(2), toolHits.Load())
}

func TestTranslationKeysEndpoint(t *testing.T) {
	var toolHits atomic.Int32

	router := newTestRouter(t, &toolHits)

	rr := serve(router, http.MethodPost, "/api/translation-keys", `{"html": "<h1>Image resizer</h1>"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"image-resizer": {"tag": "h1", "content": "Image resizer"}}`, rr.Body.String())
	assert.Empty(t, rr.Header().Get(pagecache.HeaderCacheStatus))

	// Only the catch-all page route accepts GET.
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/api/translation-keys", "").Code)
}

func TestMiddlewareOrder(t *testing.T) {
	t.Parallel()

	var order []string

	record := func(name string) middleware.Middleware {
		return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
			order = append(order, name)
			next.ServeHTTP(w, r)
		}
	}

	router := NewRouter()
	router.Use(record("outer"))
	router.Use(record("inner"))
	router.HandleFunc("GET /ping", func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
		w.WriteHeader(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
