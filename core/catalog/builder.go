// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/trace"

	"golang.org/x/sync/errgroup"

	"codeberg.org/twinkle/i18nguard/core/memo"
	"codeberg.org/twinkle/i18nguard/core/protect"
	"codeberg.org/twinkle/i18nguard/core/sanitize"
	"codeberg.org/twinkle/i18nguard/core/verify"
	"codeberg.org/twinkle/i18nguard/i18n"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Options control a [Builder].
type Options struct {
	// ScaffoldLanguage is the language whose output gets closing nowiki
	// tags split. See [Normalize].
	ScaffoldLanguage string

	// SeeAlso is the translation page link template passed to each
	// [sanitize.Collector].
	SeeAlso string

	// Precompress lists sibling files to write next to each catalog.
	Precompress []Compression

	// Cache, when set, remembers accepted strings across entries and files.
	Cache *memo.Cache
}

// Builder runs catalogs through the sanitizing pipeline and writes them out.
// It is safe for concurrent use.
type Builder struct {
	sanitizer  *sanitize.Sanitizer
	verifier   *verify.Verifier
	opts       Options
	compressor *compressor
}

// FileResult summarises the processing of one catalog.
type FileResult struct {
	Language string
	File     string
	Output   string

	Entries int
	Strings int
	// Dropped counts entries removed by verification.
	Dropped     int
	DroppedKeys []string
	Rejections  []sanitize.Rejection
	CacheHits   int

	// Bytes is the size of the uncompressed output.
	Bytes int

	// Err is set, and every other count left zero, when the file failed.
	Err error
}

// NewBuilder returns a Builder using s to clean strings and v to check them.
func NewBuilder(s *sanitize.Sanitizer, v *verify.Verifier, opts Options) (*Builder, error) {
	comp, err := newCompressor(opts.Precompress)
	if err != nil {
		return nil, err
	}

	return &Builder{
		sanitizer:  s,
		verifier:   v,
		opts:       opts,
		compressor: comp,
	}, nil
}

// Clean runs every string entry of c through the pipeline in place, dropping
// the entries that fail verification.
func (b *Builder) Clean(c *Catalog) *FileResult {
	res := &FileResult{
		Language: c.Language,
		File:     c.File,
		Entries:  len(c.Entries),
	}

	kept := c.Entries[:0]

	for _, e := range c.Entries {
		if !e.IsString {
			kept = append(kept, e)

			continue
		}

		res.Strings++

		clean, ok := b.cleanString(c, e.Key, e.Value, res)
		if !ok {
			res.Dropped++
			res.DroppedKeys = append(res.DroppedKeys, e.Key)

			continue
		}

		e.Value = clean
		kept = append(kept, e)
	}

	c.Entries = kept

	return res
}

func (b *Builder) cleanString(c *Catalog, key, raw string, res *FileResult) (string, bool) {
	text, stripped := protect.Strip(raw)
	if stripped {
		Logger.Warn().
			Str("file", c.File).
			Str("key", key).
			Str("lang", c.Language).
			Msg("Placeholder delimiters removed from string")
	}

	cache := b.opts.Cache
	if cache != nil && !stripped {
		if clean, ok := cache.Get(text); ok {
			res.CacheHits++

			return clean, true
		}
	}

	hidden, spans := protect.Hide(text, protect.Nowiki)

	collector := &sanitize.Collector{
		File:     c.File,
		Key:      key,
		Language: c.Language,
		Logger:   &Logger,
		SeeAlso:  b.opts.SeeAlso,
	}

	clean := protect.Reveal(b.sanitizer.Sanitize(hidden, collector), spans)
	res.Rejections = append(res.Rejections, collector.Rejections...)

	if _, err := b.verifier.Verify(clean); err != nil {
		Logger.Warn().
			Err(err).
			Str("file", c.File).
			Str("key", key).
			Str("lang", c.Language).
			Str("string", clean).
			Msg("Suspicious string removed at the late stage")

		return "", false
	}

	// Strings that needed cleaning stay uncached; each file logs its own rejections.
	if cache != nil && !stripped && len(collector.Rejections) == 0 {
		cache.Add(text, clean)
	}

	return clean, true
}

// BuildFile loads the catalog of loc, cleans it and writes the result to
// outDir/<name>.json, plus any precompressed siblings.
func (b *Builder) BuildFile(loc i18n.Locale, outDir string) (*FileResult, error) {
	c, err := Load(loc.Path, loc.Name)
	if err != nil {
		return nil, err
	}

	res := b.Clean(c)

	out, err := c.MarshalIndent()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s: %w", loc.Path, err)
	}

	data := []byte(Normalize(string(out), loc.Name == b.opts.ScaffoldLanguage))

	output := filepath.Join(outDir, loc.Name+".json")
	files := []outputFile{{path: output, data: data}}

	for _, f := range b.opts.Precompress {
		packed, err := b.compressor.compress(f, data)
		if err != nil {
			return nil, fmt.Errorf("failed to compress %s: %w", output, err)
		}

		files = append(files, outputFile{path: output + f.Ext(), data: packed})
	}

	if err := os.MkdirAll(outDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeFiles(files); err != nil {
		return nil, err
	}

	res.Output = output
	res.Bytes = len(data)

	Logger.Info().
		Stringer("locale", loc).
		Str("output", res.Output).
		Int("entries", len(c.Entries)).
		Int("dropped", res.Dropped).
		Int("rejections", len(res.Rejections)).
		Msg("Catalog written")

	return res, nil
}

type outputFile struct {
	path string
	data []byte
}

// writeFiles writes every file, or none: on error the files already written
// are removed again.
func writeFiles(files []outputFile) error {
	for i, f := range files {
		if err := os.WriteFile(f.path, f.data, filePerm); err != nil {
			for _, done := range files[:i] {
				_ = os.Remove(done.path)
			}

			return fmt.Errorf("failed to write catalog: %w", err)
		}
	}

	return nil
}

// BuildAll builds every locale with at most workers files in flight.
//
// A failing file does not stop the others. Results are returned in locale
// order, failed files included with Err set, together with the joined errors.
func (b *Builder) BuildAll(ctx context.Context, locales []i18n.Locale, outDir string, workers int) ([]*FileResult, error) {
	results := make([]*FileResult, len(locales))
	errs := make([]error, len(locales))

	var g errgroup.Group

	g.SetLimit(max(workers, 1))

	for i, loc := range locales {
		g.Go(func() error {
			trace.WithRegion(ctx, "catalog:"+loc.Name, func() {
				res, err := b.BuildFile(loc, outDir)
				if err != nil {
					Logger.Error().
						Err(err).
						Str("file", loc.Path).
						Msg("Catalog failed")

					errs[i] = fmt.Errorf("%s: %w", loc.Name, err)
					results[i] = &FileResult{Language: loc.Name, File: loc.Path, Err: err}

					return
				}

				results[i] = res
			})

			return nil
		})
	}

	_ = g.Wait()

	return results, errors.Join(errs...)
}
