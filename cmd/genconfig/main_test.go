// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/twinkle/i18nguard/config"
)

func TestRenderEnv(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.SetDefaults()

	out := renderEnv(cfg)

	assert.Contains(t, out, "## Catalog\n")
	assert.Contains(t, out, "\nI18NGUARD_SOURCE_DIR=\"./i18n\"\n")
	assert.Contains(t, out, "\n# I18NGUARD_WORKERS=4\n")
	assert.Contains(t, out, "\n# I18NGUARD_AUDIT_SOURCE_DIRS=./src,./src/modules\n")
	assert.NotContains(t, out, "## Build")
	assert.NotContains(t, out, "## Run")
}

func TestRenderYAMLLoads(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	cfg.SetDefaults()

	out, err := renderYAML(cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "\ncatalog:\n")
	assert.Contains(t, out, "  sourceDir: ./i18n\n")
	assert.Contains(t, out, "  # workers: 4\n")

	// The example must be a loadable configuration file as it is.
	path := filepath.Join(t.TempDir(), "i18nguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o600))

	loaded := &config.Config{}
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, "./i18n", loaded.Catalog.SourceDir)
}
