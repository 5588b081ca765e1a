// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"codeberg.org/antigravity/frontend/core/contentkeys"
)

func newExtractCommand() *cobra.Command {
	var (
		policyName string
		locale     string
	)

	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Print the translation keys of HTML or Markdown sources",
		Long: `Extract scans HTML and Markdown files, or HTML on standard input, and
prints their key maps as JSON, grouped by language.

The language of a Markdown file can be set with "locale" in its front
matter. Maps of files in the same language are merged under --policy.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := contentkeys.ParseCollisionPolicy(policyName)
			if err != nil {
				return err
			}

			sources, err := readSources(args, cmd.InOrStdin(), locale)
			if err != nil {
				return err
			}

			maps, err := extractSources(sources, policy)
			if err != nil {
				return err
			}

			return writeJSON(cmd.OutOrStdout(), maps)
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "merge", "collision policy: merge, first-write-wins or strict")
	cmd.Flags().StringVar(&locale, "locale", "en", "language of sources without a locale in their front matter")

	return cmd
}

// extractSources extracts and merges the key maps of sources by language.
func extractSources(sources []*source, policy contentkeys.CollisionPolicy) (contentkeys.LocalizedKeyMaps, error) {
	maps := contentkeys.LocalizedKeyMaps{}

	for _, src := range sources {
		extractor := contentkeys.Extractor{
			Policy: policy,
			Logger: log.With().Str("sys", "contentkeys").Str("source", src.Name).Logger(),
		}

		keys, err := extractor.Extract(src.HTML)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}

		if maps[src.Locale] == nil {
			maps[src.Locale] = contentkeys.KeyMap{}
		}

		collisions, err := contentkeys.Merge(maps[src.Locale], keys, policy)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}

		for _, c := range collisions {
			log.Warn().
				Str("source", src.Name).
				Str("key", c.Key).
				Str("existing", c.Existing.Content).
				Str("incoming", c.Incoming.Content).
				Msg("Key collides with another source")
		}
	}

	return maps, nil
}
