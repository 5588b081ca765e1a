// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/antigravity/frontend/config"
	"codeberg.org/antigravity/frontend/core/contentkeys"
	"codeberg.org/antigravity/frontend/core/wordpress"
	"codeberg.org/antigravity/frontend/i18n"
)

var errNoPotInput = errors.New("either files or --slug are required")

const potHeader = `# Content translation keys.
#
# msgids are translation keys; the extracted comment holds the source text.
msgid ""
msgstr ""
"Content-Type: text/plain; charset=UTF-8\n"
"Content-Transfer-Encoding: 8bit\n"
`

// potEntry is one key of a template, with the sources it appears in.
type potEntry struct {
	Entry      contentkeys.Entry
	References []string
}

func newPotCommand() *cobra.Command {
	var (
		slug   string
		locale string
	)

	cmd := &cobra.Command{
		Use:   "pot [files...]",
		Short: "Write a gettext template for content translation keys",
		Long: `Pot prints a gettext template with one msgctxt "Content" entry per
translation key. Keys come from the given source files, or with --slug from
the default-language key map stored in WordPress.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make(map[string]*potEntry)

			switch {
			case slug != "":
				if err := loadConfig(cmd, args); err != nil {
					return err
				}

				wordpress.Setup(nil)

				keys, err := wordpress.Default.GetTranslations(cmd.Context(), slug)
				if err != nil {
					return err
				}

				addPotEntries(entries, keys.For(config.Global.Site.DefaultLocale), slug)
			case len(args) > 0:
				sources, err := readSources(args, nil, locale)
				if err != nil {
					return err
				}

				for _, src := range sources {
					addPotEntries(entries, contentkeys.Extract(src.HTML), src.Slug)
				}
			default:
				return errNoPotInput
			}

			return writePOT(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "read the keys of this tool or page from WordPress")
	cmd.Flags().StringVar(&locale, "locale", "en", "language of sources without a locale in their front matter")

	return cmd
}

// addPotEntries records the keys found in ref. The first text seen for a
// key is kept.
func addPotEntries(entries map[string]*potEntry, keys contentkeys.KeyMap, ref string) {
	for key, entry := range keys {
		e, ok := entries[key]
		if !ok {
			e = &potEntry{Entry: entry}
			entries[key] = e
		}

		if ref != "" && !slices.Contains(e.References, ref) {
			e.References = append(e.References, ref)
		}
	}
}

// writePOT writes entries as a gettext template, sorted by key.
func writePOT(w io.Writer, entries map[string]*potEntry) error {
	var b strings.Builder

	b.WriteString(potHeader)

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	for _, key := range keys {
		e := entries[key]

		b.WriteString("\n")

		for line := range strings.SplitSeq(e.Entry.Content, "\n") {
			fmt.Fprintf(&b, "#. %s\n", strings.TrimSpace(line))
		}

		if len(e.References) > 0 {
			fmt.Fprintf(&b, "#: %s\n", strings.Join(e.References, " "))
		}

		fmt.Fprintf(&b, "msgctxt %s\n", poQuote(i18n.ContentContext))
		fmt.Fprintf(&b, "msgid %s\n", poQuote(key))
		b.WriteString("msgstr \"\"\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

var poEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

// poQuote returns s as a quoted PO string.
func poQuote(s string) string {
	return `"` + poEscaper.Replace(s) + `"`
}
