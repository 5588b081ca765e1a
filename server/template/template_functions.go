// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package template holds helpers shared by views and handlers.
package template

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/a-h/templ"

	"codeberg.org/antigravity/frontend/i18n"
)

// monthNames are msgids, translated when a date is formatted.
var monthNames = [...]i18n.MsgKey{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// NaturalDate formats a date for display in the language of ctx.
//
// English uses "January 2, 2006"; other languages put the day first.
// The zero time formats as "".
func NaturalDate(ctx context.Context, date time.Time) string {
	if date.IsZero() {
		return ""
	}

	month := monthNames[date.Month()-1].Tr(ctx)

	if i18n.LocaleFrom(ctx) == "en" {
		return fmt.Sprintf("%s %d, %d", month, date.Day(), date.Year())
	}

	return fmt.Sprintf("%d %s %d", date.Day(), strings.ToLower(month), date.Year())
}

// MachineDate formats a date for the datetime attribute of <time>.
func MachineDate(date time.Time) string {
	if date.IsZero() {
		return ""
	}

	return date.Format(time.RFC3339)
}

// LocalizedPath prefixes path with a locale segment.
func LocalizedPath(locale, path string) string {
	if path == "/" {
		path = ""
	}

	return "/" + locale + path
}

// TitleFromSlug turns a slug into a display title: "image-resizer" becomes
// "Image resizer".
func TitleFromSlug(slug string) string {
	s := strings.TrimSpace(strings.ReplaceAll(slug, "-", " "))
	if s == "" {
		return ""
	}

	r, size := utf8.DecodeRuneInString(s)

	return string(unicode.ToUpper(r)) + s[size:]
}

// IsFirstPathPart reports whether the first segment of currentPath is
// pathToCheck, ignoring trailing slashes on both.
func IsFirstPathPart(currentPath, pathToCheck string) bool {
	first, _, _ := strings.Cut(strings.TrimPrefix(currentPath, "/"), "/")

	return first != "" && "/"+first == strings.TrimRight(pathToCheck, "/")
}

// RenderToString renders c. A render error is returned as the text itself,
// which is easier to spot in a page than to handle in a template.
func RenderToString(ctx context.Context, c templ.Component) string {
	var sb strings.Builder

	if err := c.Render(ctx, &sb); err != nil {
		return "templ: failed to render component: " + err.Error()
	}

	return sb.String()
}
