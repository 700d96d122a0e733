// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"codeberg.org/twinkle/i18nguard/core/msgcheck"
	"codeberg.org/twinkle/i18nguard/core/sanitize"
	"codeberg.org/twinkle/i18nguard/i18n"
)

const (
	defaultWorkers   = 4
	defaultCacheSize = 2048
)

// SetDefaults populates the configuration with default values.
func (cfg *Config) SetDefaults() {
	cfg.Catalog.SourceDir = "./i18n"
	cfg.Catalog.OutputDir = "./build-i18n"
	cfg.Catalog.BaseLanguage = i18n.BaseLocale
	cfg.Catalog.ScaffoldLanguage = i18n.BaseLocale
	cfg.Catalog.SkipLanguages = []string{i18n.DocumentationLocale}
	cfg.Catalog.Engine = string(sanitize.EngineDOM)
	cfg.Catalog.Workers = defaultWorkers
	cfg.Catalog.TranslationURL = "https://translatewiki.net/wiki/Wikimedia:Twinkle-{key}/{lang}"
	cfg.Catalog.RawPrecompress = nil
	cfg.Catalog.CacheSize = defaultCacheSize
	cfg.Catalog.CacheCompress = false

	cfg.Audit.SourceDirs = []string{"./src", "./src/modules"}
	cfg.Audit.Extensions = []string{".ts"}
	cfg.Audit.LookupFunction = msgcheck.DefaultLookupFunction
	cfg.Audit.ExternalKeysFile = "./src/mw-messages.ts"
	cfg.Audit.DynamicKeys = []string{"@metadata"}
	cfg.Audit.FailOnUnused = false

	cfg.Report.Path = ""

	cfg.Log.Level = "info"
	cfg.Log.Outputs = []string{"/dev/stderr"}
	cfg.Log.Format = "console"
}
