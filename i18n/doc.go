// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n finds the per-language message catalogs of the gadget.

Catalogs live in a single directory as <code>.json, where <code> is the
language code used by translatewiki.net, for example "de", "pt-br" or
"zh-hans". Codes are mapped to canonical BCP 47 tags for display, but the
original code is what names the output file, so a code that is not a valid
tag ("roa-tara", say) is still processed.

The message documentation pseudo-language "qqq" carries descriptions for
translators rather than interface text and is normally skipped.

# Locating catalogs

	locales, err := i18n.Discover("i18n", []string{"qqq"}, i18n.BaseLocale)

The base locale, when present, comes first; the others follow sorted by code.
*/
package i18n
