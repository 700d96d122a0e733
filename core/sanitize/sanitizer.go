// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package sanitize cleans translated strings down to the markup a [policy.Policy] allows.

Elements that are not allowed are unwrapped, keeping their text, except for
elements that carry executable or foreign content (script, style, iframe,
svg and the like), which are removed together with everything inside them.
Attributes that are not allowed are removed. Attribute values are left
alone; checking them is the job of package verify.

Every decision is reported to a caller-supplied [Hooks], normally a
[*Collector] scoped to one catalog entry:

	c := &sanitize.Collector{File: "de.json", Key: "welcome", Language: "de"}
	clean := s.Sanitize(raw, c)

The output for a given input and policy is always the same.
*/
package sanitize

import (
	"errors"
	"fmt"

	"codeberg.org/twinkle/i18nguard/core/policy"
)

// Engine names an implementation of the cleaning step.
type Engine string

const (
	// EngineDOM walks an x/net/html parse tree. It is the default.
	EngineDOM Engine = "dom"

	// EngineBluemonday hands the cleaning to bluemonday, with hooks driven
	// by a report-only walk of the same parse tree.
	EngineBluemonday Engine = "bluemonday"
)

// ErrUnknownEngine is returned by [New] for an unsupported [Engine].
var ErrUnknownEngine = errors.New("unknown sanitizer engine")

type engine interface {
	clean(text string, hooks Hooks) string
}

// Sanitizer applies a policy to strings. It is safe for concurrent use.
type Sanitizer struct {
	policy *policy.Policy
	engine engine
}

// New returns a Sanitizer for p using the given engine.
func New(p *policy.Policy, e Engine) (*Sanitizer, error) {
	s := &Sanitizer{policy: p}

	switch e {
	case EngineDOM, "":
		s.engine = &domEngine{policy: p}
	case EngineBluemonday:
		s.engine = newBluemondayEngine(p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, e)
	}

	return s, nil
}

// Policy returns the policy the sanitizer enforces.
func (s *Sanitizer) Policy() *policy.Policy {
	return s.policy
}

// Sanitize returns text with all disallowed markup removed. A nil hooks is
// treated as [Discard].
func (s *Sanitizer) Sanitize(text string, hooks Hooks) string {
	if hooks == nil {
		hooks = Discard
	}

	return s.engine.clean(text, hooks)
}
