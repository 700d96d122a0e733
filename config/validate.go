// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/twinkle/i18nguard/core/catalog"
	"codeberg.org/twinkle/i18nguard/core/msgcheck"
	"codeberg.org/twinkle/i18nguard/core/sanitize"
)

// validation errors.
var (
	errEmptySourceDir    = errors.New("catalog.sourceDir cannot be empty")
	errEmptyOutputDir    = errors.New("catalog.outputDir cannot be empty")
	errSameDirs          = errors.New("catalog.outputDir must differ from catalog.sourceDir")
	errEmptyBaseLanguage = errors.New("catalog.baseLanguage cannot be empty")
	errInvalidWorkers    = errors.New("catalog.workers must be at least 1")
	errInvalidCacheSize  = errors.New("catalog.cacheSize cannot be negative")
	errNoSourceDirs      = errors.New("audit.sourceDirs cannot be empty")
	errNoExtensions      = errors.New("audit.extensions cannot be empty")
	errInvalidLogLevel   = errors.New("invalid Log.Level")
	errInvalidLogFormat  = errors.New("invalid Log.Format")
)

// validateAndSet validates the configuration and populates derived fields.
func (cfg *Config) validateAndSet() error {
	if err := cfg.validateCatalog(); err != nil {
		return err
	}

	if err := cfg.validateAudit(); err != nil {
		return err
	}

	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil || cfg.Log.Level == "" {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	return nil
}

func (cfg *Config) validateCatalog() error {
	c := &cfg.Catalog

	switch {
	case c.SourceDir == "":
		return errEmptySourceDir
	case c.OutputDir == "":
		return errEmptyOutputDir
	case filepath.Clean(c.SourceDir) == filepath.Clean(c.OutputDir):
		return errSameDirs
	case c.BaseLanguage == "":
		return errEmptyBaseLanguage
	case c.Workers < 1:
		return errInvalidWorkers
	case c.CacheSize < 0:
		return errInvalidCacheSize
	}

	switch sanitize.Engine(c.Engine) {
	case sanitize.EngineDOM, sanitize.EngineBluemonday:
	default:
		return fmt.Errorf("%w: %q", sanitize.ErrUnknownEngine, c.Engine)
	}

	c.Precompress = c.Precompress[:0]

	for _, name := range c.RawPrecompress {
		comp, err := catalog.ParseCompression(strings.ToLower(name))
		if err != nil {
			return err
		}

		c.Precompress = append(c.Precompress, comp)
	}

	if c.TranslationURL != "" && !strings.Contains(c.TranslationURL, "{key}") {
		log.Warn().
			Str("url", c.TranslationURL).
			Msg("catalog.translationUrl has no {key} placeholder; every link will point to the same page")
	}

	return nil
}

func (cfg *Config) validateAudit() error {
	a := &cfg.Audit

	if len(a.SourceDirs) == 0 {
		return errNoSourceDirs
	}

	if len(a.Extensions) == 0 {
		return errNoExtensions
	}

	for i, ext := range a.Extensions {
		if !strings.HasPrefix(ext, ".") {
			a.Extensions[i] = "." + ext
		}
	}

	// The auditor checks the lookup name and compiles the key patterns.
	if _, err := msgcheck.New(nil, nil, msgcheck.Options{
		LookupFunction: a.LookupFunction,
		DynamicKeys:    a.DynamicKeys,
	}); err != nil {
		return err
	}

	if a.ExternalKeysFile == "" {
		log.Warn().Msg("audit.externalKeysFile is empty; platform keys will not be checked")
	}

	return nil
}
