// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package wordpress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/tidwall/gjson"

	"codeberg.org/antigravity/frontend/core/contentkeys"
)

// DefaultSchemaType is the schema.org type of items that do not set one.
const DefaultSchemaType = "WebPage"

// GetContent returns the locale variant of the tool or page with the given slug.
//
// When WordPress fails for a reason other than ErrNotFound, the stored
// snapshot is served if there is one.
func (c *Client) GetContent(ctx context.Context, typ ContentType, slug, locale string) (*Content, error) {
	body, err := c.getJSON(ctx, c.restURL("content", string(typ), slug)+"?"+url.Values{"locale": {locale}}.Encode())
	if err == nil {
		var content *Content

		content, err = parseContent(body)
		if err == nil {
			if content.Type == "" {
				content.Type = typ
			}

			if content.Locale == "" {
				content.Locale = locale
			}

			c.saveContent(ctx, content)

			return content, nil
		}
	}

	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%s %q: %w", typ, slug, err)
	}

	c.Logger.Warn().Err(err).
		Str("type", string(typ)).
		Str("slug", slug).
		Str("locale", locale).
		Msg("Failed to fetch content")

	if c.Snapshots != nil {
		if content, snapErr := c.Snapshots.LoadContent(ctx, typ, slug, locale); snapErr == nil {
			c.Logger.Info().Str("slug", slug).Str("locale", locale).Msg("Serving stored content")

			return content, nil
		}
	}

	return nil, fmt.Errorf("failed to fetch %s %q: %w", typ, slug, err)
}

// GetTranslations returns the key maps of the tool or page with the given slug.
func (c *Client) GetTranslations(ctx context.Context, slug string) (contentkeys.LocalizedKeyMaps, error) {
	body, err := c.getJSON(ctx, c.restURL("translations", slug))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch translation keys of %q: %w", slug, err)
	}

	var keys contentkeys.LocalizedKeyMaps
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedResponse, err)
	}

	return keys, nil
}

// GetSitemap lists every published tool, page and post.
func (c *Client) GetSitemap(ctx context.Context) (*Sitemap, error) {
	body, err := c.getJSON(ctx, c.restURL("sitemap"))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}

	root := gjson.ParseBytes(body)

	return &Sitemap{
		Tools: parseSitemapEntries(root.Get("tools")),
		Pages: parseSitemapEntries(root.Get("pages")),
		Posts: parseSitemapEntries(root.Get("posts")),
	}, nil
}

func (c *Client) saveContent(ctx context.Context, content *Content) {
	if c.Snapshots == nil {
		return
	}

	if err := c.Snapshots.SaveContent(ctx, content); err != nil {
		c.Logger.Warn().Err(err).Str("slug", content.Slug).Msg("Failed to store content snapshot")
	}
}

// parseContent decodes a content response, tolerating the false and null
// values PHP sends for unset fields.
func parseContent(body []byte) (*Content, error) {
	root := gjson.ParseBytes(body)

	slug := str(root.Get("slug"))
	if !root.IsObject() || slug == "" {
		return nil, fmt.Errorf("%w: content without a slug", errMalformedResponse)
	}

	// An unknown type is left empty for the caller to fill in.
	typ, _ := ParseContentType(str(root.Get("type")))

	content := &Content{
		ID:            root.Get("id").Int(),
		Slug:          slug,
		Type:          typ,
		Locale:        str(root.Get("locale")),
		Title:         str(root.Get("title")),
		Description:   str(root.Get("description")),
		HTML:          str(root.Get("content")),
		FeaturedImage: str(root.Get("featuredImage")),
		SEO: SEO{
			Title:       str(root.Get("seo.title")),
			Description: str(root.Get("seo.description")),
			Canonical:   str(root.Get("seo.canonical")),
			Keywords:    str(root.Get("seo.keywords")),
			OGImage:     str(root.Get("seo.ogImage")),
		},
		SchemaType:       str(root.Get("schema.type")),
		AvailableLocales: strs(root.Get("availableLocales")),
		Modified:         str(root.Get("modified")),
	}

	if content.SchemaType == "" {
		content.SchemaType = DefaultSchemaType
	}

	if raw := root.Get("translationKeys"); raw.Exists() {
		if err := json.Unmarshal([]byte(raw.Raw), &content.TranslationKeys); err != nil {
			return nil, fmt.Errorf("%w: %w", errMalformedResponse, err)
		}
	}

	if content.TranslationKeys == nil {
		content.TranslationKeys = contentkeys.LocalizedKeyMaps{}
	}

	return content, nil
}

func parseSitemapEntries(v gjson.Result) []SitemapEntry {
	var entries []SitemapEntry

	for _, item := range v.Array() {
		entries = append(entries, SitemapEntry{
			Slug:     str(item.Get("slug")),
			Modified: str(item.Get("modified")),
			Locales:  strs(item.Get("locales")),
		})
	}

	return entries
}
