// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// source is one content file, rendered to HTML.
type source struct {
	// Name is the file name, or "-" for standard input.
	Name string

	Slug   string
	Locale string
	HTML   string
}

// sourceMeta is the front matter of a Markdown source.
type sourceMeta struct {
	Slug   string `yaml:"slug"`
	Locale string `yaml:"locale"`
	Title  string `yaml:"title"`
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// isMarkdown reports whether name is a Markdown file.
func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}

// parseSource reads a content source. Markdown is rendered to HTML and its
// front matter overrides the slug and locale derived from name and
// defaultLocale. The title is rendered as a level one heading.
func parseSource(name string, r io.Reader, defaultLocale string) (*source, error) {
	src := &source{
		Name:   name,
		Slug:   strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)),
		Locale: defaultLocale,
	}

	if !isMarkdown(name) {
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		src.HTML = string(raw)

		return src, nil
	}

	var meta sourceMeta

	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return nil, fmt.Errorf("failed to parse front matter of %s: %w", name, err)
	}

	var html bytes.Buffer

	if meta.Title != "" {
		// Titles are plain text, so they go through the Markdown renderer
		// for escaping.
		if err := markdown.Convert([]byte("# "+meta.Title+"\n"), &html); err != nil {
			return nil, fmt.Errorf("failed to render title of %s: %w", name, err)
		}
	}

	if err := markdown.Convert(body, &html); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", name, err)
	}

	src.HTML = html.String()

	if meta.Slug != "" {
		src.Slug = meta.Slug
	}

	if meta.Locale != "" {
		src.Locale = meta.Locale
	}

	return src, nil
}

// readSources parses the named files, or standard input when names is empty.
func readSources(names []string, stdin io.Reader, defaultLocale string) ([]*source, error) {
	if len(names) == 0 {
		src, err := parseSource("-", stdin, defaultLocale)
		if err != nil {
			return nil, err
		}

		src.Slug = ""

		return []*source{src}, nil
	}

	sources := make([]*source, 0, len(names))

	for _, name := range names {
		f, err := os.Open(name) // #nosec G304 -- files named on the command line
		if err != nil {
			return nil, fmt.Errorf("failed to open source: %w", err)
		}

		src, err := parseSource(name, f, defaultLocale)
		_ = f.Close()

		if err != nil {
			return nil, err
		}

		sources = append(sources, src)
	}

	return sources, nil
}
