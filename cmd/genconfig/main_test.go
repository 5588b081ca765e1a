// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEnv(t *testing.T) {
	t.Parallel()

	env := renderEnv(defaults())

	assert.Contains(t, env, "## Basic\n")
	assert.Contains(t, env, `ANTIGRAVITY_PORT="`)
	assert.Contains(t, env, "# ANTIGRAVITY_REVALIDATION_SECRET=\""+placeholderSecret+"\"\n")
	assert.Contains(t, env, "# ANTIGRAVITY_LOCALES=en,")
	assert.NotContains(t, env, "## Build")
	assert.NotContains(t, env, "## Instance")
}

func TestRenderYAML(t *testing.T) {
	t.Parallel()

	text, err := renderYAML(defaults())
	require.NoError(t, err)

	assert.Contains(t, text, "\nrevalidation:\n")
	assert.Contains(t, text, "  secret: "+placeholderSecret+"\n")
	assert.Contains(t, text, "  # host: ")
	assert.NotContains(t, text, "\n  host: ")
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "deploy")

	require.NoError(t, generate(dir))

	for _, name := range []string{envExample, yamlExample} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}
