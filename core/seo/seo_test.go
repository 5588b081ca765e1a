// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package seo

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSite = Site{
	URL:           "https://example.com",
	Name:          "Antigravity",
	Locales:       []string{"en", "es"},
	DefaultLocale: "en",
}

func decode(t *testing.T, doc any) map[string]any {
	t.Helper()

	s, err := MarshalJSONLD(doc)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &out))

	return out
}

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.com/es/tools/resizer", testSite.CanonicalURL("es", "/tools/resizer"))
	assert.Equal(t, "https://example.com/es/about", testSite.CanonicalURL("es", "about"))
	assert.Equal(t, "https://example.com/es", testSite.CanonicalURL("es", ""))
}

func TestAlternates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Alternate{
		{Hreflang: "en", URL: "https://example.com/en/blog"},
		{Hreflang: "es", URL: "https://example.com/es/blog"},
		{Hreflang: "x-default", URL: "https://example.com/en/blog"},
	}, testSite.Alternates("/blog"))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := "<p>" + strings.Repeat("a", 200) + "</p>"

	meta := TruncateForMeta(long, MetaDescriptionLength)
	assert.Len(t, meta, MetaDescriptionLength)
	assert.True(t, strings.HasSuffix(meta, "..."))

	excerpt := TruncateExcerpt(long, ExcerptLength)
	assert.Len(t, excerpt, ExcerptLength+3)

	assert.Equal(t, "Short text", TruncateForMeta("  <b>Short</b> text ", MetaDescriptionLength))
	assert.Equal(t, "ñññ...", TruncateExcerpt("ñññññ", 3), "cuts characters, not bytes")
}

func TestForType(t *testing.T) {
	t.Parallel()

	data := PageData{
		Title:         "Resizer",
		Description:   "Resize images",
		URL:           "https://example.com/en/tools/resizer",
		DatePublished: "2025-01-01",
	}

	tool := decode(t, testSite.ForType(TypeSoftwareApplication, data))
	assert.Equal(t, "https://schema.org", tool["@context"])
	assert.Equal(t, "SoftwareApplication", tool["@type"])
	assert.Equal(t, "Resizer", tool["name"])
	assert.Equal(t, DefaultApplicationCategory, tool["applicationCategory"])
	assert.Equal(t, map[string]any{"@type": "Offer", "price": "0", "priceCurrency": "USD"}, tool["offers"])

	post := decode(t, testSite.ForType(TypeBlogPosting, data))
	assert.Equal(t, "BlogPosting", post["@type"])
	assert.Equal(t, "Resizer", post["headline"])
	assert.Equal(t, "2025-01-01", post["dateModified"], "defaults to the publication date")
	assert.Equal(t, map[string]any{"@type": "WebPage", "@id": data.URL}, post["mainEntityOfPage"])

	page := decode(t, testSite.ForType(TypeWebPage, data))
	assert.Equal(t, "2025-01-01", page["datePublished"])
	assert.Equal(t, map[string]any{"@type": "WebSite", "name": "Antigravity", "url": "https://example.com"}, page["isPartOf"])

	unknown := decode(t, testSite.ForType("Recipe", data))
	assert.Equal(t, "WebPage", unknown["@type"])
	assert.NotContains(t, unknown, "datePublished")

	org := decode(t, testSite.ForType(TypeOrganization, data))
	assert.Equal(t, "https://example.com/logo.png", org["logo"])

	site := decode(t, testSite.WebSite())
	action, ok := site["potentialAction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/search?q={search_term_string}", action["target"])
}

func TestFAQPageAndBreadcrumbs(t *testing.T) {
	t.Parallel()

	faq := decode(t, testSite.ForType(TypeFAQPage, PageData{FAQs: []FAQ{{Question: "Why?", Answer: "Because."}}}))
	assert.Equal(t, []any{map[string]any{
		"@type":          "Question",
		"name":           "Why?",
		"acceptedAnswer": map[string]any{"@type": "Answer", "text": "Because."},
	}}, faq["mainEntity"])

	crumbs := decode(t, Breadcrumbs([]Crumb{{Name: "Home", URL: "/en"}, {Name: "Blog", URL: "/en/blog"}}))
	items, ok := crumbs["itemListElement"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	assert.Equal(t, map[string]any{"@type": "ListItem", "position": float64(2), "name": "Blog", "item": "/en/blog"}, items[1])
}

func TestMarshalJSONLDEscapesHTML(t *testing.T) {
	t.Parallel()

	s, err := MarshalJSONLD(testSite.WebPage(PageData{Title: "</script><b>"}))
	require.NoError(t, err)
	assert.NotContains(t, s, "</script>")
	assert.Contains(t, s, `\u003c/script\u003e`)
}

func TestExtractFAQs(t *testing.T) {
	t.Parallel()

	body := `<h2>What is it?</h2><p>A tool.</p><ul><li>Free.</li></ul>
<h2>Intro</h2><p>Not a question.</p>
<h3>Why use it?</h3>`

	assert.Equal(t, []FAQ{{Question: "What is it?", Answer: "A tool. Free."}}, ExtractFAQs(body))
	assert.Empty(t, ExtractFAQs("<p>nothing</p>"))
}

func TestPlainTextAndFirstImage(t *testing.T) {
	t.Parallel()

	body := `<h2>Fish &amp; Chips</h2>
<script>var x = 1;</script>
<p>Tasty   <img src="/img/a.png"> <img src="/img/b.png"></p>`

	assert.Equal(t, "Fish & Chips Tasty", PlainText(body))
	assert.Equal(t, "/img/a.png", FirstImage(body))
	assert.Empty(t, FirstImage("<p>none</p>"))
}

func TestMetadata(t *testing.T) {
	t.Parallel()

	m := testSite.Page("es", "/tools/resizer", "Resizer", "<p>Resize images</p>")
	assert.Equal(t, "https://example.com/es/tools/resizer", m.Canonical)
	assert.Equal(t, "Resize images", m.Description)
	assert.Equal(t, OGWebsite, m.OGType)
	assert.Equal(t, "https://example.com/og-image.png", m.OGImage)
	assert.Len(t, m.Alternates, 3)
	assert.Equal(t, "Resizer | Antigravity", m.FullTitle())

	m.Apply(Overrides{Title: "Custom", Keywords: "image, resize,,tools ", Canonical: "https://cdn.example.com/x"})
	assert.Equal(t, "Custom", m.Title)
	assert.Equal(t, []string{"image", "resize", "tools"}, m.Keywords)
	assert.Equal(t, "https://cdn.example.com/x", m.Canonical)
	assert.Equal(t, "Resize images", m.Description, "empty overrides keep generated values")

	home := testSite.Page("en", "", "Antigravity", "")
	assert.Equal(t, "Antigravity", home.FullTitle())
}
