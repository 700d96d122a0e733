// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package report collects the outcome of a pipeline run and writes it as YAML.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-yaml"

	"codeberg.org/twinkle/i18nguard/core/catalog"
	"codeberg.org/twinkle/i18nguard/core/msgcheck"
)

const filePerm = 0o644

// Report is the summary of one run. It is safe for concurrent use.
type Report struct {
	mu sync.Mutex

	RunID    string           `yaml:"runId"`
	Version  string           `yaml:"version"`
	Started  string           `yaml:"started"`
	Catalogs []CatalogSummary `yaml:"catalogs,omitempty"`
	Failed   []FailedCatalog  `yaml:"failed,omitempty"`
	Audit    *AuditSummary    `yaml:"audit,omitempty"`
}

// CatalogSummary describes one written catalog.
type CatalogSummary struct {
	Language    string      `yaml:"language"`
	Output      string      `yaml:"output"`
	Entries     int         `yaml:"entries"`
	Strings     int         `yaml:"strings"`
	Rejections  []Rejection `yaml:"rejections,omitempty"`
	DroppedKeys []string    `yaml:"droppedKeys,omitempty"`
	CacheHits   int         `yaml:"cacheHits,omitempty"`
	Bytes       int         `yaml:"bytes"`
}

// Rejection is one piece of markup removed from a string.
type Rejection struct {
	Key     string `yaml:"key"`
	Kind    string `yaml:"kind"`
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// FailedCatalog is a catalog that could not be built.
type FailedCatalog struct {
	Language string `yaml:"language"`
	Error    string `yaml:"error"`
}

// AuditSummary is the outcome of the usage audit.
type AuditSummary struct {
	Files     int                `yaml:"files"`
	Local     int                `yaml:"localKeys"`
	Platform  int                `yaml:"platformKeys"`
	Computed  int                `yaml:"computedCalls"`
	Undefined int                `yaml:"undefined"`
	Unused    int                `yaml:"unused"`
	Findings  []msgcheck.Finding `yaml:"findings,omitempty"`
}

// New returns an empty report for a run.
func New(runID, version, started string) *Report {
	return &Report{RunID: runID, Version: version, Started: started}
}

// AddCatalog records a built catalog.
func (r *Report) AddCatalog(res *catalog.FileResult) {
	s := CatalogSummary{
		Language:    res.Language,
		Output:      res.Output,
		Entries:     res.Entries,
		Strings:     res.Strings,
		DroppedKeys: res.DroppedKeys,
		CacheHits:   res.CacheHits,
		Bytes:       res.Bytes,
	}

	for _, rej := range res.Rejections {
		s.Rejections = append(s.Rejections, Rejection{
			Key:     rej.Key,
			Kind:    string(rej.Kind),
			Name:    rej.Name,
			Content: rej.Content,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Catalogs = append(r.Catalogs, s)
}

// AddFailure records a catalog that could not be built.
func (r *Report) AddFailure(lang string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Failed = append(r.Failed, FailedCatalog{Language: lang, Error: err.Error()})
}

// SetAudit records the usage audit result.
func (r *Report) SetAudit(res *msgcheck.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Audit = &AuditSummary{
		Files:     res.Files,
		Local:     len(res.Local),
		Platform:  len(res.Platform),
		Computed:  res.Computed,
		Undefined: len(res.Undefined()),
		Unused:    len(res.Unused()),
		Findings:  res.Findings,
	}
}

// Write stores the report as YAML at path, creating parent directories.
func (r *Report) Write(path string) error {
	r.mu.Lock()
	data, err := yaml.MarshalWithOptions(r, yaml.IndentSequence(true))
	r.mu.Unlock()

	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}
