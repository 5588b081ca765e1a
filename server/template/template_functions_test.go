// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package template

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"

	"codeberg.org/antigravity/frontend/i18n"
)

func TestNaturalDate(t *testing.T) {
	t.Parallel()

	date := time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "March 7, 2025", NaturalDate(i18n.WithLocale(context.Background(), "en"), date))
	assert.Empty(t, NaturalDate(context.Background(), time.Time{}))
	assert.Equal(t, "2025-03-07T10:00:00Z", MachineDate(date))
	assert.Empty(t, MachineDate(time.Time{}))
}

func TestLocalizedPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/es/blog", LocalizedPath("es", "/blog"))
	assert.Equal(t, "/es", LocalizedPath("es", ""))
	assert.Equal(t, "/es", LocalizedPath("es", "/"))
}

func TestTitleFromSlug(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Image resizer", TitleFromSlug("image-resizer"))
	assert.Equal(t, "Élan", TitleFromSlug("élan"))
	assert.Empty(t, TitleFromSlug("-"))
}

func TestIsFirstPathPart(t *testing.T) {
	t.Parallel()

	assert.True(t, IsFirstPathPart("/blog/hello", "/blog"))
	assert.True(t, IsFirstPathPart("/blog/", "/blog/"))
	assert.False(t, IsFirstPathPart("/tools/x", "/blog"))
	assert.False(t, IsFirstPathPart("", "/blog"))
}

func TestRenderToString(t *testing.T) {
	t.Parallel()

	ok := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<p>hi</p>")

		return err
	})
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	})

	assert.Equal(t, "<p>hi</p>", RenderToString(context.Background(), ok))
	assert.Equal(t, "templ: failed to render component: boom", RenderToString(context.Background(), failing))
}
