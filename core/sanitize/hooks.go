// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package sanitize

import (
	"strings"

	"github.com/rs/zerolog"
)

// Hooks observe every decision the sanitizer makes.
//
// ElementSeen is called for each element, comment and doctype node. When the
// node is not allowed, outer holds its rendered markup and the call happens
// before the node is removed; for allowed nodes outer is empty.
//
// AttributeSeen is called for each attribute of an allowed element, before a
// disallowed attribute is dropped.
type Hooks interface {
	ElementSeen(tag string, allowed bool, outer string)
	AttributeSeen(tag, name, value string, allowed bool)
}

// Discard is a Hooks implementation that ignores all decisions.
var Discard Hooks = discard{}

type discard struct{}

func (discard) ElementSeen(string, bool, string)           {}
func (discard) AttributeSeen(string, string, string, bool) {}

// RejectionKind tells what kind of markup was rejected.
type RejectionKind string

const (
	RejectedElement   RejectionKind = "element"
	RejectedAttribute RejectionKind = "attribute"
)

// Rejection describes one piece of markup removed by the sanitizer.
type Rejection struct {
	File     string
	Key      string
	Language string
	Kind     RejectionKind
	// Name is the tag name ("#comment" for comments) or the attribute name.
	Name string
	// Content is the rendered element, or the attribute value.
	Content string
}

// Collector records rejections for one catalog entry and logs each one as it happens.
//
// The caller owns the Collector and passes it to [Sanitizer.Sanitize]. The
// zero value records without logging.
type Collector struct {
	File     string
	Key      string
	Language string

	// Logger, when set, receives one warning per rejection.
	Logger *zerolog.Logger

	// SeeAlso is a link template for the translation page; "{key}" and
	// "{lang}" are substituted. Empty disables the link.
	SeeAlso string

	Rejections []Rejection
}

// ElementSeen implements [Hooks].
func (c *Collector) ElementSeen(tag string, allowed bool, outer string) {
	if allowed {
		return
	}

	c.record(Rejection{Kind: RejectedElement, Name: tag, Content: outer})
}

// AttributeSeen implements [Hooks].
func (c *Collector) AttributeSeen(tag, name, value string, allowed bool) {
	if allowed {
		return
	}

	c.record(Rejection{Kind: RejectedAttribute, Name: name, Content: value})
}

func (c *Collector) record(r Rejection) {
	r.File = c.File
	r.Key = c.Key
	r.Language = c.Language

	c.Rejections = append(c.Rejections, r)

	if c.Logger == nil {
		return
	}

	event := c.Logger.Warn().
		Str("file", r.File).
		Str("key", r.Key).
		Str("lang", r.Language)

	if r.Kind == RejectedElement {
		event = event.Str("fragment", r.Content)
	} else {
		event = event.Str("attr", r.Name).Str("value", r.Content)
	}

	if link := c.link(); link != "" {
		event = event.Str("see", link)
	}

	if r.Kind == RejectedElement {
		event.Msg("Disallowed tag found and sanitized")
	} else {
		event.Msg("Disallowed attribute found and sanitized")
	}
}

func (c *Collector) link() string {
	if c.SeeAlso == "" {
		return ""
	}

	return strings.NewReplacer("{key}", c.Key, "{lang}", c.Language).Replace(c.SeeAlso)
}
