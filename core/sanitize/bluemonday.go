// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package sanitize

import (
	"github.com/microcosm-cc/bluemonday"

	"codeberg.org/twinkle/i18nguard/core/policy"
)

// bluemondayEngine cleans with bluemonday. bluemonday has no hooks of its
// own, so the DOM walker runs first in report-only mode; both walk the output
// of the same x/net/html tokenizer and apply the same allowlist.
//
// bluemonday decodes &nbsp; to U+00A0, leaves optional end tags out and
// escapes quotes in text, so its output is serialized again by the DOM
// writer. Only allowed markup is left at that point.
type bluemondayEngine struct {
	inspector *domEngine
	bm        *bluemonday.Policy
}

func newBluemondayEngine(p *policy.Policy) *bluemondayEngine {
	tags := p.Tags()

	bm := bluemonday.NewPolicy()
	bm.AllowElements(tags...)
	// bluemonday unwraps elements it does not know to be safe without
	// attributes; every allowed tag is fine bare.
	bm.AllowNoAttrs().OnElements(tags...)
	bm.AllowAttrs(p.Attrs()...).Globally()

	skip := make([]string, 0, len(dropContent))
	for tag := range dropContent {
		skip = append(skip, tag)
	}

	bm.SkipElementsContent(skip...)

	return &bluemondayEngine{
		inspector: &domEngine{policy: p},
		bm:        bm,
	}
}

func (e *bluemondayEngine) clean(text string, hooks Hooks) string {
	_ = e.inspector.pass(text, hooks)

	return e.inspector.clean(e.bm.Sanitize(text), Discard)
}
