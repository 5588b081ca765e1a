// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/wordpress"
)

var errNoFetchTarget = errors.New("either --type and --slug, or --all, are required")

// fetchTarget is one tool or page.
type fetchTarget struct {
	Type wordpress.ContentType
	Slug string
}

func (t fetchTarget) String() string {
	return string(t.Type) + "/" + t.Slug
}

func newFetchCommand() *cobra.Command {
	var (
		typeName    string
		slug        string
		all         bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Print the key maps WordPress serves for content in every locale",
		Long: `Fetch requests a tool or page in every configured locale and prints, for
each locale, the key map matching the body served in it: the locale's own map
when the item is translated, the default-language map otherwise.

When WordPress has no map for a body and content.extractFallback is enabled,
the map is extracted from the body as the frontend would.`,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wordpress.Setup(nil)

			var targets []fetchTarget

			switch {
			case all:
				sitemap, err := wordpress.Default.GetSitemap(cmd.Context())
				if err != nil {
					return err
				}

				for _, entry := range sitemap.Tools {
					targets = append(targets, fetchTarget{Type: wordpress.Tool, Slug: entry.Slug})
				}

				for _, entry := range sitemap.Pages {
					targets = append(targets, fetchTarget{Type: wordpress.Page, Slug: entry.Slug})
				}
			case typeName != "" && slug != "":
				typ, err := wordpress.ParseContentType(typeName)
				if err != nil {
					return fmt.Errorf("%w: %q", err, typeName)
				}

				targets = append(targets, fetchTarget{Type: typ, Slug: slug})
			default:
				return errNoFetchTarget
			}

			results, err := fetchKeyMaps(cmd.Context(), wordpress.Default, targets, concurrency)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "content type: tool or page")
	cmd.Flags().StringVar(&slug, "slug", "", "content slug")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every tool and page listed in the sitemap")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent WordPress requests")

	return cmd
}

// fetchKeyMaps fetches every target in every configured locale and returns
// the key maps by target and locale.
func fetchKeyMaps(
	ctx context.Context,
	wp *wordpress.Client,
	targets []fetchTarget,
	concurrency int,
) (map[string]contentkeys.LocalizedKeyMaps, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]contentkeys.LocalizedKeyMaps, len(targets))
	)

	locales := config.Global.Site.Locales
	defaultLocale := config.Global.Site.DefaultLocale
	contentCfg := config.Global.Content

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for _, target := range targets {
		results[target.String()] = contentkeys.LocalizedKeyMaps{}
	}

	for _, target := range targets {
		for _, locale := range locales {
			g.Go(func() error {
				content, err := wp.GetContent(ctx, target.Type, target.Slug, locale)
				if err != nil {
					return fmt.Errorf("%s in %s: %w", target, locale, err)
				}

				keys := content.KeysFor(locale, defaultLocale)
				if len(keys) == 0 && contentCfg.ExtractFallback {
					extractor := contentkeys.Extractor{
						Policy: contentCfg.CollisionPolicy,
						Logger: log.With().Str("sys", "contentkeys").Str("slug", target.Slug).Logger(),
					}

					keys, err = extractor.Extract(content.HTML)
					if err != nil {
						return fmt.Errorf("%s in %s: %w", target, locale, err)
					}
				}

				mu.Lock()
				results[target.String()][locale] = keys
				mu.Unlock()

				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
