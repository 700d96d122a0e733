// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package sanitize

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"codeberg.org/twinkle/i18nguard/core/policy"
)

// maxPasses bounds the re-cleaning of the engine's own output. Unwrapping can
// produce markup that the HTML parser restructures (e.g. an <li> directly
// inside an <li>), so the output is cleaned again until it stops changing.
const maxPasses = 3

// dropContent lists disallowed elements that are removed with their subtree
// instead of being unwrapped.
var dropContent = map[string]struct{}{
	"applet":    {},
	"base":      {},
	"embed":     {},
	"frame":     {},
	"frameset":  {},
	"iframe":    {},
	"link":      {},
	"math":      {},
	"meta":      {},
	"noembed":   {},
	"noframes":  {},
	"noscript":  {},
	"object":    {},
	"plaintext": {},
	"script":    {},
	"select":    {},
	"style":     {},
	"svg":       {},
	"template":  {},
	"textarea":  {},
	"title":     {},
	"xmp":       {},
}

// rawText lists elements whose text children are serialized without escaping.
var rawText = map[string]struct{}{
	"iframe":    {},
	"noembed":   {},
	"noframes":  {},
	"noscript":  {},
	"plaintext": {},
	"script":    {},
	"style":     {},
	"xmp":       {},
}

var voidElements = map[string]struct{}{
	"area":   {},
	"base":   {},
	"br":     {},
	"col":    {},
	"embed":  {},
	"hr":     {},
	"img":    {},
	"input":  {},
	"keygen": {},
	"link":   {},
	"meta":   {},
	"param":  {},
	"source": {},
	"track":  {},
	"wbr":    {},
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "\u00a0", "&nbsp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

// fragmentContext is the element translated strings are parsed inside.
var fragmentContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

type domEngine struct {
	policy *policy.Policy
}

func (e *domEngine) clean(text string, hooks Hooks) string {
	out := e.pass(text, hooks)

	for range maxPasses - 1 {
		next := e.pass(out, hooks)
		if next == out {
			break
		}

		out = next
	}

	return out
}

// pass parses text as a fragment and serializes the allowed part of the tree.
func (e *domEngine) pass(text string, hooks Hooks) string {
	nodes, err := html.ParseFragment(strings.NewReader(text), fragmentContext)
	if err != nil {
		// Only reader errors end up here, which strings.Reader never returns.
		return ""
	}

	w := &domWriter{policy: e.policy, hooks: hooks}
	for _, n := range nodes {
		w.node(n)
	}

	return w.b.String()
}

type domWriter struct {
	policy *policy.Policy
	hooks  Hooks
	b      strings.Builder
}

func (w *domWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Parent != nil && isRawText(n.Parent) {
			w.b.WriteString(n.Data)
		} else {
			textEscaper.WriteString(&w.b, n.Data)
		}
	case html.ElementNode:
		w.element(n)
	case html.CommentNode:
		w.hooks.ElementSeen("#comment", false, "<!--"+n.Data+"-->")
	case html.DoctypeNode:
		w.hooks.ElementSeen("!doctype", false, "<!DOCTYPE "+n.Data+">")
	default:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			w.node(c)
		}
	}
}

func (w *domWriter) element(n *html.Node) {
	tag := n.Data

	if n.Namespace != "" || !w.policy.AllowsTag(tag) {
		w.hooks.ElementSeen(tag, false, render(n))

		if _, drop := dropContent[strings.ToLower(tag)]; drop || n.Namespace != "" {
			return
		}

		w.children(n)

		return
	}

	w.hooks.ElementSeen(tag, true, "")

	w.b.WriteByte('<')
	w.b.WriteString(tag)

	for _, a := range n.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}

		allowed := a.Namespace == "" && w.policy.AllowsAttr(a.Key)
		w.hooks.AttributeSeen(tag, name, a.Val, allowed)

		if !allowed {
			continue
		}

		w.b.WriteByte(' ')
		w.b.WriteString(a.Key)
		w.b.WriteString(`="`)
		attrEscaper.WriteString(&w.b, a.Val)
		w.b.WriteByte('"')
	}

	w.b.WriteByte('>')

	if _, void := voidElements[tag]; void {
		return
	}

	// The parser drops a newline right after these start tags, so one is
	// added back when the content itself starts with a newline.
	if tag == "pre" || tag == "textarea" || tag == "listing" {
		if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
			w.b.WriteByte('\n')
		}
	}

	w.children(n)

	w.b.WriteString("</")
	w.b.WriteString(tag)
	w.b.WriteByte('>')
}

func (w *domWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func isRawText(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Namespace != "" {
		return false
	}

	_, ok := rawText[n.Data]

	return ok
}

// render returns the markup of n for diagnostics.
func render(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return n.Data
	}

	return buf.String()
}
