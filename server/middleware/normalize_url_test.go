// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/antigravity/frontend/i18n"
	"codeberg.org/antigravity/frontend/server/request_context"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		requestURL       string
		acceptLanguage   string
		expectedStatus   int
		expectedLocation string
	}{
		{
			name:             "Root redirects to the default locale",
			requestURL:       "/",
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/en",
		},
		{
			name:             "Root redirects to the negotiated locale",
			requestURL:       "/",
			acceptLanguage:   "fr-CH, fr;q=0.9",
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/fr",
		},
		{
			name:             "Root redirect keeps the query",
			requestURL:       "/?lang=de",
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/de?lang=de",
		},
		{
			name:           "Locale home is served",
			requestURL:     "/es",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Default locale blog is served",
			requestURL:     "/en/blog",
			expectedStatus: http.StatusOK,
		},
		{
			name:             "Localized blog index redirects to the default locale",
			requestURL:       "/es/blog",
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/en/blog",
		},
		{
			name:             "Localized blog post redirects with its query",
			requestURL:       "/fr/blog/hello-world?ref=feed",
			expectedStatus:   http.StatusTemporaryRedirect,
			expectedLocation: "/en/blog/hello-world?ref=feed",
		},
		{
			name:           "Section sharing the blog prefix is served",
			requestURL:     "/es/blogger",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unsupported locale is left to the router",
			requestURL:     "/ja/blog",
			expectedStatus: http.StatusOK,
		},
		{
			name:             "Path with trailing slash should redirect",
			requestURL:       "/es/tools/word-counter/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/es/tools/word-counter",
		},
		{
			name:             "Query parameters should be preserved in trailing slash redirect",
			requestURL:       "/en/blog/?page=2&sort=desc",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/en/blog?page=2&sort=desc",
		},
		{
			name:           "API paths are untouched",
			requestURL:     "/api/revalidate",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			handler := Wrap(NormalizeURL, nextHandler)

			req := httptest.NewRequest(http.MethodGet, tt.requestURL, nil)
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
		})
	}
}

func TestHasTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected bool
	}{
		{"/", false},
		{"/en", false},
		{"/en/", true},
		{"/en/tools/word-counter/", true},
		{"/en/tools/word-counter", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.expected, hasTrailingSlash(req))
		})
	}
}

func TestSplitLocale(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path, locale, rest string
	}{
		{"/", "", "/"},
		{"/es", "es", ""},
		{"/es/blog", "es", "/blog"},
		{"/es/blog/x", "es", "/blog/x"},
	}

	for _, tt := range tests {
		locale, rest := splitLocale(tt.path)

		assert.Equal(t, tt.locale, locale, tt.path)
		assert.Equal(t, tt.rest, rest, tt.path)
	}
}

func TestLocaleFromPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path   string
		accept string
		want   string
	}{
		{path: "/es/tools/word-counter", accept: "fr", want: "es"},
		{path: "/de", want: "de"},
		{path: "/api/translation-keys", accept: "fr", want: "fr"},
		{path: "/ja/page", want: "en"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			var (
				locale string
				tag    string
			)

			handler := Wrap(LocaleFromPath, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				locale = i18n.LocaleFrom(r.Context())
				tag = request_context.FromRequest(r).T.String()
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Language", tt.accept)
			}

			req = req.WithContext(request_context.WithRequestContext(req.Context(), req))

			handler.ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.want, locale)
			assert.Equal(t, tt.want, tag)
		})
	}
}
