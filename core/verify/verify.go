// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package verify re-checks sanitized strings with a small set of regular expressions.

It shares no code with package sanitize. If the sanitizer were outdated or
compromised, these checks still reject strings that carry a tag outside the
policy, a javascript: URL or an inline event handler. A rejected string is
meant to be dropped as a whole, never repaired.
*/
package verify

import (
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	"codeberg.org/twinkle/i18nguard/core/policy"
)

var (
	ErrDisallowedTag = errors.New("disallowed tag")
	ErrScriptURI     = errors.New("script URI")
	ErrEventHandler  = errors.New("event handler attribute")
)

var (
	openingTagRegexp   = regexp.MustCompile(`<(\w+)`)
	charRefOrSpace     = regexp.MustCompile(`&\w+;|\s+`)
	whitespaceRegexp   = regexp.MustCompile(`\s+`)
	scriptURIRegexp    = regexp.MustCompile(`(?i)javascript:`)
	eventHandlerRegexp = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// Rejection is the error returned for a string that failed verification.
type Rejection struct {
	// Err is one of ErrDisallowedTag, ErrScriptURI or ErrEventHandler.
	Err error
	// Fragment is the part of the string that triggered the rejection.
	Fragment string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %q", r.Err, r.Fragment)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// Verifier checks strings against a policy. It is safe for concurrent use.
type Verifier struct {
	policy *policy.Policy
}

// New returns a Verifier for p.
func New(p *policy.Policy) *Verifier {
	return &Verifier{policy: p}
}

// Verify returns s unchanged when it passes every check, or a *Rejection.
func (v *Verifier) Verify(s string) (string, error) {
	for _, m := range openingTagRegexp.FindAllStringSubmatch(s, -1) {
		if !v.policy.AllowsTag(m[1]) {
			return "", &Rejection{Err: ErrDisallowedTag, Fragment: m[0]}
		}
	}

	if containsScriptURI(s) {
		return "", &Rejection{Err: ErrScriptURI, Fragment: s}
	}

	if m := eventHandlerRegexp.FindString(s); m != "" {
		return "", &Rejection{Err: ErrEventHandler, Fragment: m}
	}

	return s, nil
}

// containsScriptURI looks for "javascript:" once with character references
// and whitespace stripped, and once with references decoded, so that both
// "java&#09;script:" and "&#106;avascript:" are caught.
func containsScriptURI(s string) bool {
	if scriptURIRegexp.MatchString(charRefOrSpace.ReplaceAllString(s, "")) {
		return true
	}

	decoded := whitespaceRegexp.ReplaceAllString(html.UnescapeString(s), "")

	return scriptURIRegexp.MatchString(strings.ReplaceAll(decoded, "\x00", ""))
}
