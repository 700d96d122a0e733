// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// BaseLocale is the language whose catalog defines the valid message keys.
const BaseLocale = "en"

// DocumentationLocale is the pseudo-language holding message documentation.
const DocumentationLocale = "qqq"

// Locale is one catalog file.
type Locale struct {
	// Name is the language code taken from the file name.
	Name string

	// Tag is the canonical BCP 47 tag for Name, or [language.Und] when Name
	// does not parse.
	Tag language.Tag

	// Path is the catalog file path.
	Path string
}

// String returns the canonical tag when known, otherwise the raw name.
func (l Locale) String() string {
	if l.Tag == language.Und {
		return l.Name
	}

	return l.Tag.String()
}

// parseCode maps a translatewiki code to a BCP 47 tag.
// Both "pt-br" and "pt_BR" are accepted.
func parseCode(code string) (language.Tag, error) {
	return language.Parse(strings.ReplaceAll(code, "_", "-"))
}
