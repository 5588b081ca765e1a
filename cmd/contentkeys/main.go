// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Contentkeys is the authoring-side companion of the frontend's translation
pipeline. It derives translation keys from content sources or from
WordPress, writes gettext templates for them and asks the frontend to
revalidate changed paths.

Usage:

	contentkeys extract [--policy strict] [--locale en] [files...]
	contentkeys pot [--slug word-counter] [files...]
	contentkeys fetch --type tool --slug word-counter
	contentkeys fetch --all
	contentkeys revalidate --path /en/blog
	contentkeys revalidate --type post --slug hello-world

Commands that talk to WordPress or to the frontend read the server
configuration (see --config).
*/
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/audit"
)

// configPath is the value of the --config flag.
var configPath string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "contentkeys",
		Short:         "Translation keys for WordPress-managed content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "./config.yaml", "path to the frontend configuration file")

	root.AddCommand(
		newExtractCommand(),
		newPotCommand(),
		newFetchCommand(),
		newRevalidateCommand(),
	)

	return root
}

// loadConfig reads the frontend configuration for commands that need it.
func loadConfig(_ *cobra.Command, _ []string) error {
	if err := config.Global.Load(configPath); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return nil
}

// writeJSON writes v to w as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(v)
}

func main() {
	audit.SetDefaultLogger()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "contentkeys:", err)
		os.Exit(1)
	}
}
