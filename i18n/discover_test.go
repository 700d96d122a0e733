// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	for _, name := range []string{"de.json", "en.json", "qqq.json", "pt_BR.json", "zh-hans.json", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o600))
	}

	require.NoError(t, os.Mkdir(filepath.Join(dir, "fr.json"), 0o700))

	locales, err := Discover(dir, []string{DocumentationLocale}, BaseLocale)
	require.NoError(t, err)

	names := make([]string, 0, len(locales))
	for _, l := range locales {
		names = append(names, l.Name)
	}

	assert.Equal(t, []string{"en", "de", "pt_BR", "zh-hans"}, names)
	assert.Equal(t, filepath.Join(dir, "de.json"), locales[1].Path)
	assert.Equal(t, "pt-BR", locales[2].String())
	assert.Equal(t, "zh-Hans", locales[3].String())
}

func TestDiscoverKeepsInvalidCodes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "x-not-a-language-123456789.json"), []byte("{}"), 0o600))

	locales, err := Discover(dir, nil, BaseLocale)
	require.NoError(t, err)
	require.Len(t, locales, 1)
	assert.Equal(t, language.Und, locales[0].Tag)
	assert.Equal(t, "x-not-a-language-123456789", locales[0].String())
}

func TestDiscoverMissingDir(t *testing.T) {
	t.Parallel()

	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil, BaseLocale)
	require.Error(t, err)
}
