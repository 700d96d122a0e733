// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/language"
)

const catalogExt = ".json"

// Discover lists the catalogs in dir.
//
// Files without the .json extension, directories, and codes listed in skip
// are ignored. A code that is not a valid BCP 47 tag is logged and kept with
// an undefined tag. The locale named base is placed first; the rest are
// sorted by code.
//
// It returns an error only if dir cannot be read.
func Discover(dir string, skip []string, base string) ([]Locale, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory: %w", err)
	}

	var locales []Locale

	for _, entry := range entries {
		fileName := entry.Name()
		if entry.IsDir() || filepath.Ext(fileName) != catalogExt {
			continue
		}

		code := strings.TrimSuffix(fileName, catalogExt)
		if code == "" || slices.Contains(skip, code) {
			continue
		}

		tag, err := parseCode(code)
		if err != nil {
			Logger.Warn().
				Err(err).
				Str("file", fileName).
				Msg("Language code is not a valid BCP 47 tag")

			tag = language.Und
		}

		locales = append(locales, Locale{
			Name: code,
			Tag:  tag,
			Path: filepath.Join(dir, fileName),
		})

		Logger.Debug().
			Str("locale", code).
			Str("tag", tag.String()).
			Msg("Found catalog")
	}

	slices.SortFunc(locales, func(a, b Locale) int {
		switch {
		case a.Name == b.Name:
			return 0
		case a.Name == base:
			return -1
		case b.Name == base:
			return 1
		default:
			return strings.Compare(a.Name, b.Name)
		}
	})

	if len(locales) == 0 || locales[0].Name != base {
		Logger.Warn().
			Str("dir", dir).
			Str("locale", base).
			Msg("Base catalog not found")
	}

	return locales, nil
}
