// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/revalidate"
)

// Commands share package flags and config.Global, so tests run serially.

// run executes the CLI with args and returns its standard output.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// writeConfig writes a configuration pointing WordPress and the frontend at
// serverURL and restores config.Global after the test.
func writeConfig(t *testing.T, serverURL string) string {
	t.Helper()

	saved := config.Global
	t.Cleanup(func() { config.Global = saved })

	return writeFile(t, t.TempDir(), "config.yaml", fmt.Sprintf(`site:
  siteUrl: https://example.com
  defaultLocale: en
  locales: [en, es]
wordpress:
  graphqlUrl: %[1]s/graphql
  restUrl: %[1]s/wp-json
revalidation:
  secret: s3cret
  frontendUrl: %[1]s
content:
  collisionPolicy: merge
  extractFallback: true
`, serverURL))
}

func TestExtract(t *testing.T) {
	dir := t.TempDir()

	page := writeFile(t, dir, "word-counter.html", `<h1>Word counter</h1><p>Count words.</p><p>ok</p>`)
	guide := writeFile(t, dir, "guide.md", `---
slug: resizer
locale: es
title: Redimensionar imágenes
---
## ¿Cómo funciona?

Sube una imagen.
`)

	out, err := run(t, "", "extract", page, guide)
	require.NoError(t, err)

	var maps contentkeys.LocalizedKeyMaps
	require.NoError(t, json.Unmarshal([]byte(out), &maps))

	assert.Equal(t, contentkeys.KeyMap{
		"word-counter": {Tag: "h1", Content: "Word counter"},
		"count-words":  {Tag: "p", Content: "Count words."},
	}, maps["en"])

	assert.Equal(t, contentkeys.KeyMap{
		"redimensionar-imgenes": {Tag: "h1", Content: "Redimensionar imágenes"},
		"cmo-funciona":          {Tag: "h2", Content: "¿Cómo funciona?"},
		"sube-una-imagen":       {Tag: "p", Content: "Sube una imagen."},
	}, maps["es"])
}

func TestExtractStdin(t *testing.T) {
	out, err := run(t, "<h2>Hello World</h2><p>Hello, world!</p>", "extract", "--locale", "fr")
	require.NoError(t, err)
	assert.JSONEq(t, `{"fr": {"hello-world": {"tag": "p", "content": "Hello, world!"}}}`, out)

	_, err = run(t, "<h2>Hello World</h2><p>Hello, world!</p>", "extract", "--policy", "strict")
	require.ErrorIs(t, err, contentkeys.ErrKeyCollision)

	_, err = run(t, "<p>text</p>", "extract", "--policy", "sometimes")
	require.Error(t, err)
}

func TestExtractCollisionAcrossFiles(t *testing.T) {
	dir := t.TempDir()

	first := writeFile(t, dir, "a.html", "<h2>Hello World</h2>")
	second := writeFile(t, dir, "b.html", "<p>Hello, world!</p>")

	out, err := run(t, "", "extract", "--policy", "first-write-wins", first, second)
	require.NoError(t, err)
	assert.JSONEq(t, `{"en": {"hello-world": {"tag": "h2", "content": "Hello World"}}}`, out)

	_, err = run(t, "", "extract", "--policy", "strict", first, second)
	require.ErrorIs(t, err, contentkeys.ErrKeyCollision)
}

func TestPot(t *testing.T) {
	dir := t.TempDir()

	first := writeFile(t, dir, "word-counter.html", `<h1>Word counter</h1><p>Say "hi".</p>`)
	second := writeFile(t, dir, "char-counter.html", `<h1>Word counter</h1>`)

	out, err := run(t, "", "pot", first, second)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "# Content translation keys."))
	assert.Contains(t, out, "#. Word counter\n#: word-counter char-counter\nmsgctxt \"Content\"\nmsgid \"word-counter\"\nmsgstr \"\"\n")
	assert.Contains(t, out, "#. Say \"hi\".\n#: word-counter\nmsgctxt \"Content\"\nmsgid \"say-hi\"\n")
	assert.Less(t, strings.Index(out, `msgid "say-hi"`), strings.Index(out, `msgid "word-counter"`))

	_, err = run(t, "", "pot")
	require.ErrorIs(t, err, errNoPotInput)
}

func TestPoQuote(t *testing.T) {
	assert.Equal(t, `"a \"b\"\n\\c"`, poQuote("a \"b\"\n\\c"))
}

const (
	englishTool = `{"slug": "word-counter", "type": "ag_tool", "content": "<h1>Word counter</h1>",
  "translationKeys": {"en": {"word-counter": {"tag": "h1", "content": "Word counter"}}},
  "availableLocales": ["en"]}`
	englishPage = `{"slug": "about", "type": "ag_page", "content": "<h1>About us</h1>",
  "translationKeys": [], "availableLocales": ["en"]}`
)

func fakeWordPress(t *testing.T, requested *[]string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/wp-json/antigravity/v1/sitemap":
			_, _ = w.Write([]byte(`{"tools": [{"slug": "word-counter"}], "pages": [{"slug": "about"}], "posts": []}`))
		case "/wp-json/antigravity/v1/content/tool/word-counter":
			_, _ = w.Write([]byte(englishTool))
		case "/wp-json/antigravity/v1/content/page/about":
			_, _ = w.Write([]byte(englishPage))
		case "/wp-json/antigravity/v1/translations/word-counter":
			_, _ = w.Write([]byte(`{"en": {"word-counter": {"tag": "h1", "content": "Word counter"}}, "es": []}`))
		case revalidate.Endpoint:
			var req revalidate.Request
			_ = json.NewDecoder(r.Body).Decode(&req)

			if requested != nil {
				*requested = append(*requested, req.Path)
			}

			if req.Secret != "s3cret" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"revalidated": false, "message": "Invalid secret"}`))

				return
			}

			_ = json.NewEncoder(w).Encode(revalidate.Response{Revalidated: true, Path: req.Path, Timestamp: 1700000000000})
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code": "not_found", "message": "Not found"}`))
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestFetch(t *testing.T) {
	server := fakeWordPress(t, nil)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "", "--config", cfg, "fetch", "--type", "tool", "--slug", "word-counter")
	require.NoError(t, err)

	var results map[string]contentkeys.LocalizedKeyMaps
	require.NoError(t, json.Unmarshal([]byte(out), &results))

	want := contentkeys.KeyMap{"word-counter": {Tag: "h1", Content: "Word counter"}}

	// The Spanish body is the English one, so is its key map.
	assert.Equal(t, want, results["tool/word-counter"]["en"])
	assert.Equal(t, want, results["tool/word-counter"]["es"])

	_, err = run(t, "", "--config", cfg, "fetch", "--type", "tool", "--slug", "missing")
	require.Error(t, err)

	_, err = run(t, "", "--config", cfg, "fetch")
	require.ErrorIs(t, err, errNoFetchTarget)
}

func TestFetchAll(t *testing.T) {
	server := fakeWordPress(t, nil)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "", "--config", cfg, "fetch", "--all", "--concurrency", "2")
	require.NoError(t, err)

	var results map[string]contentkeys.LocalizedKeyMaps
	require.NoError(t, json.Unmarshal([]byte(out), &results))

	require.Len(t, results, 2)

	// WordPress sent no map for the page, so it is extracted from the body.
	assert.Equal(t, contentkeys.KeyMap{"about-us": {Tag: "h1", Content: "About us"}}, results["page/about"]["es"])
}

func TestPotFromWordPress(t *testing.T) {
	server := fakeWordPress(t, nil)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "", "--config", cfg, "pot", "--slug", "word-counter")
	require.NoError(t, err)
	assert.Contains(t, out, "#. Word counter\n#: word-counter\nmsgctxt \"Content\"\nmsgid \"word-counter\"\n")
}

func TestRevalidate(t *testing.T) {
	var requested []string

	server := fakeWordPress(t, &requested)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "", "--config", cfg, "revalidate", "--path", "/en/blog", "--type", "tool", "--slug", "word-counter")
	require.NoError(t, err)

	assert.Equal(t, []string{"/en/blog", "/en/tools/word-counter", "/es/tools/word-counter"}, requested)
	assert.Contains(t, out, "revalidated /en/tools/word-counter at 1700000000000\n")

	_, err = run(t, "", "--config", cfg, "revalidate")
	require.ErrorIs(t, err, errNothingToRevalidate)
}
