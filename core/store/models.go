// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/wordpress"
)

type contentSnapshot struct {
	bun.BaseModel `bun:"table:content_snapshots"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Type   string `bun:"type,notnull"`
	Slug   string `bun:"slug,notnull"`
	Locale string `bun:"locale,notnull"`

	ContentID     int64  `bun:"content_id"`
	Title         string `bun:"title"`
	Description   string `bun:"description"`
	HTML          string `bun:"html"`
	FeaturedImage string `bun:"featured_image"`
	SchemaType    string `bun:"schema_type"`
	Modified      string `bun:"modified"`

	// JSON documents.
	TranslationKeys  string `bun:"translation_keys"`
	SEO              string `bun:"seo"`
	AvailableLocales string `bun:"available_locales"`

	FetchedAt time.Time `bun:"fetched_at,notnull"`
}

type postSnapshot struct {
	bun.BaseModel `bun:"table:post_snapshots"`

	Slug          string `bun:"slug,pk"`
	Title         string `bun:"title"`
	Excerpt       string `bun:"excerpt"`
	Content       string `bun:"content"`
	Date          string `bun:"date"`
	Author        string `bun:"author"`
	FeaturedImage string `bun:"featured_image"`

	FetchedAt time.Time `bun:"fetched_at,notnull"`
}

func contentToSnapshot(c *wordpress.Content, fetchedAt time.Time) (*contentSnapshot, error) {
	keys, err := json.Marshal(c.TranslationKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to encode translation keys: %w", err)
	}

	seo, err := json.Marshal(c.SEO)
	if err != nil {
		return nil, fmt.Errorf("failed to encode SEO fields: %w", err)
	}

	locales, err := json.Marshal(c.AvailableLocales)
	if err != nil {
		return nil, fmt.Errorf("failed to encode locales: %w", err)
	}

	return &contentSnapshot{
		Type:             string(c.Type),
		Slug:             c.Slug,
		Locale:           c.Locale,
		ContentID:        c.ID,
		Title:            c.Title,
		Description:      c.Description,
		HTML:             c.HTML,
		FeaturedImage:    c.FeaturedImage,
		SchemaType:       c.SchemaType,
		Modified:         c.Modified,
		TranslationKeys:  string(keys),
		SEO:              string(seo),
		AvailableLocales: string(locales),
		FetchedAt:        fetchedAt,
	}, nil
}

func (m *contentSnapshot) toContent() (*wordpress.Content, error) {
	c := &wordpress.Content{
		ID:            m.ContentID,
		Slug:          m.Slug,
		Type:          wordpress.ContentType(m.Type),
		Locale:        m.Locale,
		Title:         m.Title,
		Description:   m.Description,
		HTML:          m.HTML,
		FeaturedImage: m.FeaturedImage,
		SchemaType:    m.SchemaType,
		Modified:      m.Modified,
	}

	if err := json.Unmarshal([]byte(m.TranslationKeys), &c.TranslationKeys); err != nil {
		return nil, fmt.Errorf("failed to decode translation keys: %w", err)
	}

	if c.TranslationKeys == nil {
		c.TranslationKeys = contentkeys.LocalizedKeyMaps{}
	}

	if err := json.Unmarshal([]byte(m.SEO), &c.SEO); err != nil {
		return nil, fmt.Errorf("failed to decode SEO fields: %w", err)
	}

	if err := json.Unmarshal([]byte(m.AvailableLocales), &c.AvailableLocales); err != nil {
		return nil, fmt.Errorf("failed to decode locales: %w", err)
	}

	return c, nil
}

func postToSnapshot(p wordpress.Post, fetchedAt time.Time) *postSnapshot {
	return &postSnapshot{
		Slug:          p.Slug,
		Title:         p.Title,
		Excerpt:       p.Excerpt,
		Content:       p.Content,
		Date:          p.Date,
		Author:        p.Author,
		FeaturedImage: p.FeaturedImage,
		FetchedAt:     fetchedAt,
	}
}

func (m *postSnapshot) toPost() wordpress.Post {
	return wordpress.Post{
		Slug:          m.Slug,
		Title:         m.Title,
		Excerpt:       m.Excerpt,
		Content:       m.Content,
		Date:          m.Date,
		Author:        m.Author,
		FeaturedImage: m.FeaturedImage,
	}
}
