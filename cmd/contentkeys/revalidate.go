// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/revalidate"
)

var errNothingToRevalidate = errors.New("either --path or --type and --slug are required")

func newRevalidateCommand() *cobra.Command {
	var (
		paths     []string
		typeName  string
		slug      string
		frontPage bool
	)

	cmd := &cobra.Command{
		Use:   "revalidate",
		Short: "Ask the frontend to drop its cached copies of paths",
		Long: `Revalidate sends the configured secret and each path to the frontend's
revalidation API.

With --type and --slug, the paths are those that render the item in every
configured locale.`,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets := append([]string(nil), paths...)

			if typeName != "" && slug != "" {
				targets = append(targets, revalidate.PathsFor(
					revalidate.PostType(typeName), slug, config.Global.Site.Locales, frontPage)...)
			}

			if len(targets) == 0 {
				return errNothingToRevalidate
			}

			client := revalidate.FromConfig()

			var errs []error

			for _, path := range targets {
				resp, err := client.Trigger(cmd.Context(), path)
				if err != nil {
					errs = append(errs, err)

					continue
				}

				fmt.Fprintf(cmd.OutOrStdout(), "revalidated %s at %d\n", resp.Path, resp.Timestamp)
			}

			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringSliceVar(&paths, "path", nil, "frontend path to revalidate (repeatable)")
	cmd.Flags().StringVar(&typeName, "type", "", "WordPress post type of a changed item: post, page or tool")
	cmd.Flags().StringVar(&slug, "slug", "", "slug of the changed item")
	cmd.Flags().BoolVar(&frontPage, "front-page", false, "the changed page is the front page")

	return cmd
}
