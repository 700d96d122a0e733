// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package sanitize

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/twinkle/i18nguard/core/policy"
)

// adversarial is shared by the idempotence, closure and fuzz tests.
var adversarial = []string{
	"",
	"plain text",
	"<script>alert(1)</script><b>ok</b>",
	`<a href="javascript:alert(1)">x</a>`,
	`<img src=x onerror=alert(1)>`,
	`<span class="x" style="color:red" onclick="e()">t</span>`,
	"<b><i>x</b>y</i>",
	"<p>a<p>b",
	"<li><blockquote><li>x</li></blockquote></li>",
	"<table><tr><td>x</td></tr></table>y",
	`<math><mi xlink:href="javascript:alert(1)">x</mi></math>`,
	`<svg><a href="x">y</a></svg>z`,
	`<noscript><p title="</noscript><img src=x onerror=alert(1)>">`,
	"<!-- comment -->text",
	"</ li>",
	"a&nbsp;b &amp; c &lt;d&gt;",
	"5 < 6 > 4",
	"<pre>\n\nx</pre>",
	"<B CLASS=y>x</B>",
	`<form><input value="x"></form>`,
	"\x011\x02 hidden",
	`<a href="https://en.wikipedia.org/wiki/WP:TW" target="_blank" rel="noopener">TW</a>`,
	`<style>b { color: red }</style>t`,
	`<iframe src="https://evil.example"></iframe>after`,
	`<bdo dir="rtl">abc</bdo>`,
	`<p><b>x<p>y`,
	"<a><a>nested</a></a>",
}

func newDOM(t *testing.T, p *policy.Policy) *Sanitizer {
	t.Helper()

	s, err := New(p, EngineDOM)
	require.NoError(t, err)

	return s
}

func TestSanitizeScriptSubtree(t *testing.T) {
	t.Parallel()

	s := newDOM(t, policy.New([]string{"b"}, nil))
	c := &Collector{File: "de.json", Key: "k", Language: "de"}

	out := s.Sanitize("<script>alert(1)</script><b>ok</b>", c)

	assert.Equal(t, "<b>ok</b>", out)
	require.Len(t, c.Rejections, 1)
	assert.Equal(t, RejectedElement, c.Rejections[0].Kind)
	assert.Equal(t, "script", c.Rejections[0].Name)
	assert.Equal(t, "<script>alert(1)</script>", c.Rejections[0].Content)
	assert.Equal(t, "de.json", c.Rejections[0].File)
}

func TestSanitizeDOM(t *testing.T) {
	t.Parallel()

	s := newDOM(t, policy.Default())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unwrap div", "<i>a</i> <div>b</div>", "<i>a</i> b"},
		{"drop attributes", `<span class="x" style="color:red" onclick="e()">t</span>`, `<span class="x">t</span>`},
		{"comment", "<!-- c -->x", "x"},
		{"img removed", `<img src=x onerror=alert(1)>`, ""},
		{"entities", "<b>a &amp; b</b>", "<b>a &amp; b</b>"},
		{"nbsp kept as reference", "a&nbsp;b", "a&nbsp;b"},
		{"angle brackets escaped", "5 < 6 > 4", "5 &lt; 6 &gt; 4"},
		{"lowercased", "<B>x</B>", "<b>x</b>"},
		{"link", `<a href="https://x" target="_blank" rel="noopener">l</a>`, `<a href="https://x" target="_blank">l</a>`},
		{"href value untouched", `<a href="javascript:alert(1)">x</a>`, `<a href="javascript:alert(1)">x</a>`},
		{"svg subtree", `<svg><a href="x">y</a></svg>z`, "z"},
		{"style subtree", "<style>b{}</style>t", "t"},
		{"pre newline", "<pre>\n\nx</pre>", "<pre>\n\nx</pre>"},
		{"placeholder survives", "\x011\x02 text", "\x011\x02 text"},
		{"misnested", "<b><i>x</b>y</i>", "<b><i>x</i></b><i>y</i>"},
		{"paragraphs", "<p>a<p>b", "<p>a</p><p>b</p>"},
		{"nested list item", "<li><blockquote><li>x</li></blockquote></li>", "<li></li><li>x</li>"},
		{"attribute quotes", `<span class='a"b'>t</span>`, `<span class="a&quot;b">t</span>`},
		{"mxss noscript", `<noscript><p title="</noscript><img src=x onerror=alert(1)>">`, `"&gt;`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, s.Sanitize(tt.in, nil))
		})
	}
}

func TestSanitizeEnginesAgree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"nbsp kept as reference", "a&nbsp;b", "a&nbsp;b"},
		{"literal nbsp", "a\u00a0b", "a&nbsp;b"},
		{"paragraphs closed", "<p>a<p>b", "<p>a</p><p>b</p>"},
		{"list items closed", "<ul><li>a<li>b</ul>", "<ul><li>a</li><li>b</li></ul>"},
		{"quotes in text", `it's "x"`, `it's "x"`},
		{"attribute quotes", `<span class='a"b'>t</span>`, `<span class="a&quot;b">t</span>`},
		{"misnested", "<b><i>x</b>y</i>", "<b><i>x</i></b><i>y</i>"},
		{"script subtree", "<script>alert(1)</script><b>ok</b>", "<b>ok</b>"},
		{"angle brackets escaped", "5 < 6 > 4", "5 &lt; 6 &gt; 4"},
		{"lowercased", "<B>x</B>", "<b>x</b>"},
	}

	for _, engine := range []Engine{EngineDOM, EngineBluemonday} {
		s, err := New(policy.Default(), engine)
		require.NoError(t, err)

		for _, tt := range tests {
			t.Run(string(engine)+"/"+tt.name, func(t *testing.T) {
				t.Parallel()

				assert.Equal(t, tt.want, s.Sanitize(tt.in, nil))
			})
		}
	}
}

func TestSanitizeReportsAttributes(t *testing.T) {
	t.Parallel()

	s := newDOM(t, policy.Default())
	c := &Collector{}

	s.Sanitize(`<span class="x" style="color:red" onclick="e()">t</span>`, c)

	require.Len(t, c.Rejections, 2)
	assert.Equal(t, RejectedAttribute, c.Rejections[0].Kind)
	assert.Equal(t, "style", c.Rejections[0].Name)
	assert.Equal(t, "color:red", c.Rejections[0].Content)
	assert.Equal(t, "onclick", c.Rejections[1].Name)
}

func TestSanitizeReportsComments(t *testing.T) {
	t.Parallel()

	s := newDOM(t, policy.Default())
	c := &Collector{}

	assert.Empty(t, s.Sanitize("</ li>", c))
	require.Len(t, c.Rejections, 1)
	assert.Equal(t, "#comment", c.Rejections[0].Name)
}

func TestSanitizeIdempotent(t *testing.T) {
	t.Parallel()

	for _, engine := range []Engine{EngineDOM, EngineBluemonday} {
		s, err := New(policy.Default(), engine)
		require.NoError(t, err)

		for _, in := range adversarial {
			once := s.Sanitize(in, nil)
			assert.Equal(t, once, s.Sanitize(once, nil), "engine %s, input %q", engine, in)
		}
	}
}

func TestSanitizeAllowlistClosure(t *testing.T) {
	t.Parallel()

	p := policy.Default()

	for _, engine := range []Engine{EngineDOM, EngineBluemonday} {
		s, err := New(p, engine)
		require.NoError(t, err)

		for _, in := range adversarial {
			out := s.Sanitize(in, nil)

			doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
			require.NoError(t, err)

			doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
				n := sel.Get(0)
				assert.True(t, p.AllowsTag(n.Data), "engine %s: tag %q in %q", engine, n.Data, out)

				for _, a := range n.Attr {
					assert.True(t, p.AllowsAttr(a.Key), "engine %s: attribute %q in %q", engine, a.Key, out)
				}
			})
		}
	}
}

func TestCollectorLogs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := zerolog.New(&buf)
	s := newDOM(t, policy.Default())
	c := &Collector{
		File:     "fr.json",
		Key:      "warn-tag",
		Language: "fr",
		Logger:   &logger,
		SeeAlso:  "https://translatewiki.net/wiki/Wikimedia:Twinkle-{key}/{lang}",
	}

	s.Sanitize(`<div onclick="x">y</div>`, c)

	out := buf.String()
	assert.Contains(t, out, "Disallowed tag found and sanitized")
	assert.Contains(t, out, `"key":"warn-tag"`)
	assert.Contains(t, out, "Wikimedia:Twinkle-warn-tag/fr")
	assert.NotContains(t, out, "Disallowed attribute", "attributes of dropped elements are not inspected")
}

func TestUnknownEngine(t *testing.T) {
	t.Parallel()

	_, err := New(policy.Default(), "regex")
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestBluemondayEngine(t *testing.T) {
	t.Parallel()

	s, err := New(policy.Default(), EngineBluemonday)
	require.NoError(t, err)

	c := &Collector{}

	assert.Equal(t, "<b>ok</b>", s.Sanitize("<script>alert(1)</script><b>ok</b>", c))
	assert.Equal(t, "x", s.Sanitize("<div>x</div>", c))
	assert.Equal(t, `<span class="c">t</span>`, s.Sanitize(`<span onclick="x" class="c">t</span>`, c))
	assert.Equal(t, "<nowiki>n</nowiki>", s.Sanitize("<nowiki>n</nowiki>", c))

	names := make([]string, 0, len(c.Rejections))
	for _, r := range c.Rejections {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{"script", "div", "onclick"}, names)
}

func FuzzSanitizeIdempotent(f *testing.F) {
	for _, seed := range adversarial {
		f.Add(seed)
	}

	s, err := New(policy.Default(), EngineDOM)
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, in string) {
		once := s.Sanitize(in, nil)
		if twice := s.Sanitize(once, nil); twice != once {
			t.Errorf("not idempotent for %q:\n once: %q\ntwice: %q", in, once, twice)
		}
	})
}
