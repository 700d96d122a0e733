// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package msgcheck reconciles the message keys used by the gadget source with
the keys its catalogs define.

Usage is found by pattern, not by parsing: a call of the lookup function
whose first argument is a single string literal, as in

	msg('summary-blocked', user)

counts as a use of "summary-blocked". Keys built at runtime cannot be seen
this way; calls whose first argument is not a literal are counted and logged
so the gap stays visible, and keys known to be used dynamically can be
exempted from unused warnings with glob patterns.
*/
package msgcheck

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/gobwas/glob"
)

const DefaultLookupFunction = "msg"

var (
	ErrInvalidLookup  = errors.New("invalid lookup function name")
	ErrInvalidPattern = errors.New("invalid dynamic key pattern")
)

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// Severity grades a [Finding].
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is one problem reported by the audit.
type Finding struct {
	Severity Severity `yaml:"severity"`
	Message  string   `yaml:"message"`
	Key      string   `yaml:"key,omitempty"`
	// Call is the matched source text, for findings tied to a call site.
	Call string `yaml:"call,omitempty"`
	File string `yaml:"file,omitempty"`
	Line int    `yaml:"line,omitempty"`
	// Platform marks findings about keys from the platform list.
	Platform bool `yaml:"platform,omitempty"`
}

// Usage is the number of uses found for one key.
type Usage struct {
	Key   string `yaml:"key"`
	Count int    `yaml:"count"`
}

// Result is the outcome of an audit.
type Result struct {
	// Local and Platform keep the declaration order of their key lists.
	Local    []Usage
	Platform []Usage
	Findings []Finding
	// Computed counts lookup calls whose key is not a literal.
	Computed int
	Files    int
}

// Count returns the uses recorded for key, or -1 if key is not defined.
func (r *Result) Count(key string) int {
	for _, list := range [][]Usage{r.Local, r.Platform} {
		for _, u := range list {
			if u.Key == key {
				return u.Count
			}
		}
	}

	return -1
}

// Undefined returns the error findings.
func (r *Result) Undefined() []Finding {
	return r.filter(SeverityError)
}

// Unused returns the warning findings.
func (r *Result) Unused() []Finding {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(s Severity) []Finding {
	var out []Finding

	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}

	return out
}

// Options configure an [Auditor].
type Options struct {
	// LookupFunction is the name of the message lookup function.
	// Empty means [DefaultLookupFunction].
	LookupFunction string

	// DynamicKeys are glob patterns for keys used through computed lookups.
	// Matching keys never produce unused warnings.
	DynamicKeys []string

	// Root, when set, makes reported file paths relative to it.
	Root string
}

// Auditor counts key usage over source files. Scan each file, then call
// Finish. An Auditor is not safe for concurrent use.
type Auditor struct {
	local    []Usage
	platform []Usage
	localIdx map[string]int
	platIdx  map[string]int

	literalCall *regexp.Regexp
	anyCall     *regexp.Regexp
	dynamic     []glob.Glob
	root        string

	findings []Finding
	computed int
	files    int
}

// New returns an Auditor for the given local and platform key lists.
// A key present in both lists counts as local.
func New(localKeys, platformKeys []string, opts Options) (*Auditor, error) {
	name := opts.LookupFunction
	if name == "" {
		name = DefaultLookupFunction
	}

	if !identifierRegexp.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLookup, name)
	}

	prefix := regexp.QuoteMeta(name)
	if name[0] != '$' {
		prefix = `\b` + prefix
	}

	a := &Auditor{
		localIdx:    make(map[string]int, len(localKeys)),
		platIdx:     make(map[string]int, len(platformKeys)),
		literalCall: regexp.MustCompile(prefix + `\((?:'([^'\n]*)'|"([^"\n]*)")(?:,[^\n]*?)?\)`),
		anyCall:     regexp.MustCompile(prefix + `\(`),
		root:        opts.Root,
	}

	for _, key := range localKeys {
		if _, ok := a.localIdx[key]; !ok {
			a.localIdx[key] = len(a.local)
			a.local = append(a.local, Usage{Key: key})
		}
	}

	for _, key := range platformKeys {
		if _, ok := a.platIdx[key]; !ok {
			a.platIdx[key] = len(a.platform)
			a.platform = append(a.platform, Usage{Key: key})
		}
	}

	for _, pattern := range opts.DynamicKeys {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPattern, pattern, err)
		}

		a.dynamic = append(a.dynamic, g)
	}

	return a, nil
}

// ScanFiles reads and scans each file in paths.
func (a *Auditor) ScanFiles(paths []string) error {
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read source file: %w", err)
		}

		a.Scan(path, src)
	}

	return nil
}

// Scan counts the lookups in src, recording an error finding for every
// literal key that is neither local nor platform.
func (a *Auditor) Scan(file string, src []byte) {
	a.files++
	file = relPath(a.root, file)
	literalAt := make(map[int]struct{})

	for _, m := range a.literalCall.FindAllSubmatchIndex(src, -1) {
		literalAt[m[0]] = struct{}{}

		var key string
		if m[2] >= 0 {
			key = string(src[m[2]:m[3]])
		} else {
			key = string(src[m[4]:m[5]])
		}

		if i, ok := a.localIdx[key]; ok {
			a.local[i].Count++

			continue
		}

		if i, ok := a.platIdx[key]; ok {
			a.platform[i].Count++

			continue
		}

		f := Finding{
			Severity: SeverityError,
			Message:  "No such message is defined",
			Key:      key,
			Call:     string(src[m[0]:m[1]]),
			File:     file,
			Line:     lineAt(src, m[0]),
		}
		a.findings = append(a.findings, f)

		Logger.Error().
			Str("call", f.Call).
			Str("at", fmt.Sprintf("%s:%d", f.File, f.Line)).
			Msg(f.Message)
	}

	for _, m := range a.anyCall.FindAllIndex(src, -1) {
		if _, ok := literalAt[m[0]]; ok || isDeclaration(src, m[0]) {
			continue
		}

		a.computed++

		Logger.Info().
			Str("at", fmt.Sprintf("%s:%d", file, lineAt(src, m[0]))).
			Msg("Message key is not a literal and was not checked")
	}
}

// Finish records the unused keys and returns the result. Keys matching a
// dynamic key pattern are not reported.
func (a *Auditor) Finish() *Result {
	for _, u := range a.local {
		if u.Count == 0 && !a.isDynamic(u.Key) {
			a.unused(u.Key, false)
		}
	}

	for _, u := range a.platform {
		if u.Count == 0 && !a.isDynamic(u.Key) {
			a.unused(u.Key, true)
		}
	}

	return &Result{
		Local:    a.local,
		Platform: a.platform,
		Findings: a.findings,
		Computed: a.computed,
		Files:    a.files,
	}
}

func (a *Auditor) unused(key string, platform bool) {
	f := Finding{
		Severity: SeverityWarning,
		Message:  "Message is unused",
		Key:      key,
		Platform: platform,
	}
	if platform {
		f.Message = "Platform message is unused"
	}

	a.findings = append(a.findings, f)

	Logger.Warn().Str("key", key).Msg(f.Message)
}

func (a *Auditor) isDynamic(key string) bool {
	for _, g := range a.dynamic {
		if g.Match(key) {
			return true
		}
	}

	return false
}

func lineAt(src []byte, offset int) int {
	return bytes.Count(src[:offset], []byte("\n")) + 1
}

// isDeclaration reports whether the call at offset is the function's own
// declaration, as in "function msg(".
func isDeclaration(src []byte, offset int) bool {
	return bytes.HasSuffix(bytes.TrimRight(src[:offset], " \t"), []byte("function"))
}
