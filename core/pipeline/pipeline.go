// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package pipeline wires the packages of i18nguard into the two stages run by
the command-line tools: building sanitized catalogs, and checking message
key usage.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/trace"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeberg.org/twinkle/i18nguard/config"
	"codeberg.org/twinkle/i18nguard/core/audit"
	"codeberg.org/twinkle/i18nguard/core/catalog"
	"codeberg.org/twinkle/i18nguard/core/memo"
	"codeberg.org/twinkle/i18nguard/core/msgcheck"
	"codeberg.org/twinkle/i18nguard/core/policy"
	"codeberg.org/twinkle/i18nguard/core/report"
	"codeberg.org/twinkle/i18nguard/core/sanitize"
	"codeberg.org/twinkle/i18nguard/core/verify"
	"codeberg.org/twinkle/i18nguard/i18n"
)

var (
	ErrBuildFailed   = errors.New("one or more catalogs failed to build")
	ErrUndefinedKeys = errors.New("undefined message keys are used")
	ErrUnusedKeys    = errors.New("unused message keys found")
)

// Logger is the logger used by package pipeline. [Run] derives it again
// from the global logger, which is configured after package initialization.
var Logger zerolog.Logger = log.With().Str("sys", "pipeline").Logger()

func setupLogger() {
	Logger = log.With().Str("sys", "pipeline").Logger()
}

// Build sanitizes every catalog in the source directory and writes the
// results to the output directory. Each built or failed catalog is added to
// rep.
func Build(ctx context.Context, cfg *config.Config, rep *report.Report) (err error) {
	stage := &audit.Stage{Name: "build", RunID: cfg.Run.ID}
	ctx = stage.Begin(ctx)

	defer func() {
		stage.Error = err
		stage.End()
		stage.Log()
	}()

	p := policy.Default()

	s, err := sanitize.New(p, sanitize.Engine(cfg.Catalog.Engine))
	if err != nil {
		return err
	}

	Logger.Debug().
		Strs("tags", s.Policy().Tags()).
		Strs("attributes", s.Policy().Attrs()).
		Msg("Sanitizer policy")

	var cache *memo.Cache
	if cfg.Catalog.CacheSize > 0 {
		if cache, err = memo.New(cfg.Catalog.CacheSize, cfg.Catalog.CacheCompress); err != nil {
			return fmt.Errorf("failed to create string cache: %w", err)
		}
	}

	b, err := catalog.NewBuilder(s, verify.New(s.Policy()), catalog.Options{
		ScaffoldLanguage: cfg.Catalog.ScaffoldLanguage,
		SeeAlso:          cfg.Catalog.TranslationURL,
		Precompress:      cfg.Catalog.Precompress,
		Cache:            cache,
	})
	if err != nil {
		return err
	}

	locales, err := i18n.Discover(cfg.Catalog.SourceDir, cfg.Catalog.SkipLanguages, cfg.Catalog.BaseLanguage)
	if err != nil {
		return err
	}

	Logger.Info().
		Str("engine", cfg.Catalog.Engine).
		Int("catalogs", len(locales)).
		Int("workers", cfg.Catalog.Workers).
		Msg("Building catalogs")

	results, err := b.BuildAll(ctx, locales, cfg.Catalog.OutputDir, cfg.Catalog.Workers)

	for _, res := range results {
		if res.Err != nil {
			rep.AddFailure(res.Language, res.Err)

			continue
		}

		rep.AddCatalog(res)

		stage.Items++
		stage.Bytes += res.Bytes
	}

	if cache != nil {
		hits, misses := cache.Stats()

		Logger.Debug().
			Int64("hits", hits).
			Int64("misses", misses).
			Int("size", cache.Len()).
			Msg("String cache")
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildFailed, err)
	}

	return nil
}

// Check audits message key usage in the consuming source tree against the
// base catalog and the platform key list. The result is stored in rep.
//
// It fails with ErrUndefinedKeys when a used key is not defined, and with
// ErrUnusedKeys when audit.failOnUnused is set and a key is never used.
func Check(ctx context.Context, cfg *config.Config, rep *report.Report) (err error) {
	stage := &audit.Stage{Name: "check", RunID: cfg.Run.ID}
	ctx = stage.Begin(ctx)

	defer func() {
		stage.Error = err
		stage.End()
		stage.Log()
	}()

	basePath := filepath.Join(cfg.Catalog.SourceDir, cfg.Catalog.BaseLanguage+".json")

	localKeys, err := catalog.LoadKeys(basePath)
	if err != nil {
		return fmt.Errorf("failed to load base catalog: %w", err)
	}

	var platformKeys []string

	if cfg.Audit.ExternalKeysFile != "" {
		src, err := os.ReadFile(cfg.Audit.ExternalKeysFile)
		if err != nil {
			return fmt.Errorf("failed to read platform key list: %w", err)
		}

		if platformKeys, err = msgcheck.ParseKeyList(src); err != nil {
			return fmt.Errorf("failed to parse %s: %w", cfg.Audit.ExternalKeysFile, err)
		}
	}

	paths, err := msgcheck.CollectSources(cfg.Audit.SourceDirs, cfg.Audit.Extensions)
	if err != nil {
		return err
	}

	root := ""
	if wd, err := os.Getwd(); err == nil {
		root = msgcheck.FindProjectRoot(wd)
	}

	a, err := msgcheck.New(localKeys, platformKeys, msgcheck.Options{
		LookupFunction: cfg.Audit.LookupFunction,
		DynamicKeys:    cfg.Audit.DynamicKeys,
		Root:           root,
	})
	if err != nil {
		return err
	}

	trace.WithRegion(ctx, "scan", func() {
		err = a.ScanFiles(paths)
	})

	if err != nil {
		return err
	}

	res := a.Finish()
	rep.SetAudit(res)

	undefined, unused := len(res.Undefined()), len(res.Unused())
	stage.Items = res.Files

	Logger.Info().
		Int("files", res.Files).
		Int("local", len(res.Local)).
		Int("platform", len(res.Platform)).
		Int("undefined", undefined).
		Int("unused", unused).
		Int("computed", res.Computed).
		Msg("Usage audit finished")

	switch {
	case undefined > 0:
		return fmt.Errorf("%w: %d", ErrUndefinedKeys, undefined)
	case unused > 0 && cfg.Audit.FailOnUnused:
		return fmt.Errorf("%w: %d", ErrUnusedKeys, unused)
	}

	return nil
}
