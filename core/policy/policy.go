// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package policy holds the allowlist of markup that translated strings may carry.

A [Policy] is plain data: a set of tag names and a set of attribute names,
both lowercase. It is built once and shared read-only by the sanitizer and
the verifier.
*/
package policy

import (
	"slices"
	"strings"
)

// DefaultTags are the tags translators may use.
var DefaultTags = []string{
	"a",
	"b",

	// Not seen in practice yet, but might help RTL languages.
	"bdi",
	"bdo",

	"code",
	"em",
	"i",
	"kbd",
	"li",
	"nowiki",
	"ol",
	"p",
	"pre",
	"span",
	"strong",
	"syntaxhighlight",
	"ul",
	"var",
}

// DefaultAttributes are the attributes translators may use on any allowed tag.
var DefaultAttributes = []string{"class", "dir", "href", "target"}

// Policy is an immutable allowlist of tag and attribute names.
type Policy struct {
	tags  map[string]struct{}
	attrs map[string]struct{}
}

// New builds a Policy. Names are lowercased and deduplicated; empty names are ignored.
func New(tags, attrs []string) *Policy {
	return &Policy{
		tags:  toSet(tags),
		attrs: toSet(attrs),
	}
}

// Default returns the policy used for production catalogs.
func Default() *Policy {
	return New(DefaultTags, DefaultAttributes)
}

// AllowsTag reports whether tag (any case) is permitted.
func (p *Policy) AllowsTag(tag string) bool {
	_, ok := p.tags[strings.ToLower(tag)]

	return ok
}

// AllowsAttr reports whether the attribute name (any case) is permitted.
func (p *Policy) AllowsAttr(name string) bool {
	_, ok := p.attrs[strings.ToLower(name)]

	return ok
}

// Tags returns the allowed tag names, sorted. The slice is a copy.
func (p *Policy) Tags() []string {
	return sortedKeys(p.tags)
}

// Attrs returns the allowed attribute names, sorted. The slice is a copy.
func (p *Policy) Attrs() []string {
	return sortedKeys(p.attrs)
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))

	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		set[name] = struct{}{}
	}

	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}

	slices.Sort(out)

	return out
}
