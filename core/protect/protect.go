// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package protect hides verbatim blocks from the sanitizer and puts them back afterwards.
//
// A hidden block is replaced by "\x01N\x02", where N is its 1-based index in
// the hidden list. The delimiters are C0 control characters, which do not
// occur in translated interface text.
package protect

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	placeholderOpen  = "\x01"
	placeholderClose = "\x02"
)

// Nowiki matches a <nowiki> block with optional attributes, including its content.
var Nowiki = regexp.MustCompile(`<nowiki(?: [\w ]+(?:=[^<>]+?)?| *)>(?s:.*?)</nowiki *>`)

var placeholderRegexp = regexp.MustCompile(`\x01(\d+)\x02`)

// Hide replaces every non-overlapping match of pattern in text with a placeholder
// and returns the rewritten text together with the hidden matches in order.
func Hide(text string, pattern *regexp.Regexp) (string, []string) {
	var hidden []string

	out := pattern.ReplaceAllStringFunc(text, func(match string) string {
		hidden = append(hidden, match)

		return placeholder(len(hidden))
	})

	return out, hidden
}

// Reveal substitutes placeholders with their hidden text until none that can
// be resolved remains. Placeholders that were themselves hidden are handled by
// the repeated rounds; the number of rounds is bounded by len(hidden)+1.
//
// A placeholder whose index is out of range is left as is.
func Reveal(text string, hidden []string) string {
	if len(hidden) == 0 {
		return text
	}

	for range len(hidden) + 1 {
		if !strings.Contains(text, placeholderOpen) {
			break
		}

		replaced := false

		text = placeholderRegexp.ReplaceAllStringFunc(text, func(match string) string {
			n, err := strconv.Atoi(match[1 : len(match)-1])
			if err != nil || n < 1 || n > len(hidden) {
				return match
			}

			replaced = true

			return hidden[n-1]
		})

		if !replaced {
			break
		}
	}

	return text
}

// Strip removes placeholder delimiters from text, so that input cannot forge
// a placeholder of its own. It reports whether anything was removed.
func Strip(text string) (string, bool) {
	if !strings.ContainsAny(text, placeholderOpen+placeholderClose) {
		return text, false
	}

	return strings.NewReplacer(placeholderOpen, "", placeholderClose, "").Replace(text), true
}

func placeholder(n int) string {
	return placeholderOpen + strconv.Itoa(n) + placeholderClose
}
