// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"codeberg.org/antigravity/frontend/core/wordpress"
)

var _ wordpress.Snapshots = (*Store)(nil)

// SaveContent stores c, replacing any snapshot of the same type, slug and locale.
func (s *Store) SaveContent(ctx context.Context, c *wordpress.Content) error {
	model, err := contentToSnapshot(c, s.now())
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().
		Model(model).
		On("CONFLICT (type, slug, locale) DO UPDATE").
		Set("content_id = EXCLUDED.content_id").
		Set("title = EXCLUDED.title").
		Set("description = EXCLUDED.description").
		Set("html = EXCLUDED.html").
		Set("featured_image = EXCLUDED.featured_image").
		Set("schema_type = EXCLUDED.schema_type").
		Set("modified = EXCLUDED.modified").
		Set("translation_keys = EXCLUDED.translation_keys").
		Set("seo = EXCLUDED.seo").
		Set("available_locales = EXCLUDED.available_locales").
		Set("fetched_at = EXCLUDED.fetched_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to save %s %q: %w", c.Type, c.Slug, err)
	}

	return nil
}

// LoadContent returns the snapshot of a content item in locale.
func (s *Store) LoadContent(
	ctx context.Context,
	typ wordpress.ContentType,
	slug, locale string,
) (*wordpress.Content, error) {
	var model contentSnapshot

	err := s.db.NewSelect().
		Model(&model).
		Where("type = ?", string(typ)).
		Where("slug = ?", slug).
		Where("locale = ?", locale).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}

	return model.toContent()
}

// Delete removes the snapshots of a content item in every locale.
func (s *Store) Delete(ctx context.Context, typ wordpress.ContentType, slug string) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*contentSnapshot)(nil)).
		Where("type = ?", string(typ)).
		Where("slug = ?", slug).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete %s %q: %w", typ, slug, err)
	}

	n, _ := res.RowsAffected()

	return n, nil
}

// SavePosts stores posts. Listing queries carry no post body, so an empty
// body never overwrites a stored one.
func (s *Store) SavePosts(ctx context.Context, posts []wordpress.Post) error {
	if len(posts) == 0 {
		return nil
	}

	now := s.now()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, p := range posts {
			_, err := tx.NewInsert().
				Model(postToSnapshot(p, now)).
				On("CONFLICT (slug) DO UPDATE").
				Set("title = EXCLUDED.title").
				Set("excerpt = EXCLUDED.excerpt").
				Set("content = COALESCE(NULLIF(EXCLUDED.content, ''), content)").
				Set("date = EXCLUDED.date").
				Set("author = EXCLUDED.author").
				Set("featured_image = EXCLUDED.featured_image").
				Set("fetched_at = EXCLUDED.fetched_at").
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to save post %q: %w", p.Slug, err)
			}
		}

		return nil
	})
}

// LoadPost returns the snapshot of a single post.
func (s *Store) LoadPost(ctx context.Context, slug string) (*wordpress.Post, error) {
	var model postSnapshot

	err := s.db.NewSelect().
		Model(&model).
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}

	post := model.toPost()

	return &post, nil
}

// LoadPosts returns up to limit posts, newest first.
func (s *Store) LoadPosts(ctx context.Context, limit int) ([]wordpress.Post, error) {
	var models []postSnapshot

	err := s.db.NewSelect().
		Model(&models).
		OrderExpr("date DESC, slug ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if len(models) == 0 {
		return nil, ErrNotFound
	}

	posts := make([]wordpress.Post, 0, len(models))
	for i := range models {
		posts = append(posts, models[i].toPost())
	}

	return posts, nil
}

// DeletePost removes the snapshot of a post.
func (s *Store) DeletePost(ctx context.Context, slug string) (int64, error) {
	res, err := s.db.NewDelete().
		Model((*postSnapshot)(nil)).
		Where("slug = ?", slug).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete post %q: %w", slug, err)
	}

	n, _ := res.RowsAffected()

	return n, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	return fmt.Errorf("store query failed: %w", err)
}
