// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package wordpress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// PostsLimit is the number of posts listed by GetPosts.
const PostsLimit = 20

const postsQuery = `
query GetPosts($first: Int!) {
  posts(first: $first) {
    nodes {
      slug
      title
      excerpt
      date
      author { node { name } }
      featuredImage { node { sourceUrl } }
    }
  }
}`

const postQuery = `
query GetPost($slug: ID!) {
  post(id: $slug, idType: SLUG) {
    slug
    title
    excerpt
    content
    date
    author { node { name } }
    featuredImage { node { sourceUrl } }
  }
}`

// GetPosts returns the latest blog posts.
//
// When WordPress fails, the stored snapshot is served, then placeholder posts
// if MockFallback is set.
func (c *Client) GetPosts(ctx context.Context, locale string) ([]Post, error) {
	data, err := c.query(ctx, postsQuery, map[string]any{"first": PostsLimit})
	if err == nil {
		posts := make([]Post, 0, PostsLimit)
		for _, node := range data.Get("posts.nodes").Array() {
			posts = append(posts, parseGraphQLPost(node))
		}

		c.savePosts(ctx, posts)

		return posts, nil
	}

	c.Logger.Warn().Err(err).Str("locale", locale).Msg("Failed to fetch posts")

	if c.Snapshots != nil {
		if posts, snapErr := c.Snapshots.LoadPosts(ctx, PostsLimit); snapErr == nil && len(posts) > 0 {
			c.Logger.Info().Int("count", len(posts)).Msg("Serving stored posts")

			return posts, nil
		}
	}

	if c.MockFallback {
		c.Logger.Info().Msg("Serving mock posts")

		return mockPosts(time.Now()), nil
	}

	return nil, fmt.Errorf("failed to fetch posts: %w", err)
}

// GetPost returns the blog post with the given slug, or ErrNotFound.
//
// Fallbacks apply as in GetPosts, except that ErrNotFound is returned as is.
func (c *Client) GetPost(ctx context.Context, slug string) (*Post, error) {
	data, err := c.query(ctx, postQuery, map[string]any{"slug": slug})
	if err == nil {
		node := data.Get("post")
		if !node.IsObject() {
			return nil, fmt.Errorf("post %q: %w", slug, ErrNotFound)
		}

		post := parseGraphQLPost(node)
		if post.Slug == "" {
			post.Slug = slug
		}

		c.savePosts(ctx, []Post{post})

		return &post, nil
	}

	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("post %q: %w", slug, err)
	}

	c.Logger.Warn().Err(err).Str("slug", slug).Msg("Failed to fetch post")

	if c.Snapshots != nil {
		if post, snapErr := c.Snapshots.LoadPost(ctx, slug); snapErr == nil && post.Content != "" {
			c.Logger.Info().Str("slug", slug).Msg("Serving stored post")

			return post, nil
		}
	}

	if c.MockFallback {
		c.Logger.Info().Str("slug", slug).Msg("Serving mock post")

		post := mockPost(slug, time.Now())

		return &post, nil
	}

	return nil, fmt.Errorf("failed to fetch post %q: %w", slug, err)
}

// GetPostsByLanguage returns the latest posts assigned to the given language.
func (c *Client) GetPostsByLanguage(ctx context.Context, lang string) ([]Post, error) {
	body, err := c.getJSON(ctx, c.restURL("posts", lang))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s posts: %w", lang, err)
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a list of posts", errMalformedResponse)
	}

	var posts []Post

	for _, item := range root.Array() {
		posts = append(posts, Post{
			Slug:    str(item.Get("slug")),
			Title:   str(item.Get("title")),
			Excerpt: str(item.Get("excerpt")),
			Date:    str(item.Get("date")),
			Author:  str(item.Get("author")),
		})
	}

	return posts, nil
}

func (c *Client) savePosts(ctx context.Context, posts []Post) {
	if c.Snapshots == nil || len(posts) == 0 {
		return
	}

	if err := c.Snapshots.SavePosts(ctx, posts); err != nil {
		c.Logger.Warn().Err(err).Msg("Failed to store post snapshots")
	}
}

func parseGraphQLPost(node gjson.Result) Post {
	return Post{
		Slug:          str(node.Get("slug")),
		Title:         str(node.Get("title")),
		Excerpt:       str(node.Get("excerpt")),
		Content:       str(node.Get("content")),
		Date:          str(node.Get("date")),
		Author:        str(node.Get("author.node.name")),
		FeaturedImage: str(node.Get("featuredImage.node.sourceUrl")),
	}
}

func mockPosts(now time.Time) []Post {
	date := now.UTC().Format(time.RFC3339)

	return []Post{
		{
			Slug:    "hello-world",
			Title:   "Hello World (Mock)",
			Excerpt: "<p>This is a mock post because the WordPress endpoint is not reachable.</p>",
			Date:    date,
			Author:  "Admin",
		},
		{
			Slug:    "headless-wordpress",
			Title:   "Headless WordPress (Mock)",
			Excerpt: "<p>Building a headless CMS site is fun.</p>",
			Date:    date,
			Author:  "Dev",
		},
	}
}

func mockPost(slug string, now time.Time) Post {
	return Post{
		Slug:    slug,
		Title:   "Mock Post: " + slug,
		Excerpt: "<p>Excerpt for mock post " + slug + "</p>",
		Content: "<p>This is the full content of the mock post for slug <strong>" + slug +
			"</strong>.</p><p>Lorem ipsum dolor sit amet...</p>",
		Date:   now.UTC().Format(time.RFC3339),
		Author: "Admin",
	}
}
