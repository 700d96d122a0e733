// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package msgcheck

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

var (
	ErrNoArray = errors.New("no array literal found")
	ErrSyntax  = errors.New("invalid key list")
)

// ParseKeyList reads the platform message keys from a generated source
// file holding one array literal of string literals, such as
//
//	export default [
//		'blockedtext', // shown on block notices
//		"watchthis",
//	];
//
// Everything before the first '[' is ignored. Only single- and
// double-quoted strings are accepted, separated by commas with an optional
// trailing comma. Whitespace and comments may appear between tokens. After
// the closing ']' only an optional ';' and whitespace may follow.
//
// The file is never evaluated.
func ParseKeyList(src []byte) ([]string, error) {
	start := bytes.IndexByte(src, '[')
	if start < 0 {
		return nil, ErrNoArray
	}

	p := &listParser{src: src, pos: start + 1}
	keys := []string{}

	for closed := false; !closed; {
		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if p.eof() {
			return nil, p.errorf("unterminated array")
		}

		if p.src[p.pos] == ']' {
			p.pos++

			break
		}

		key, err := p.stringLiteral()
		if err != nil {
			return nil, err
		}

		keys = append(keys, key)

		if err := p.skipSpace(); err != nil {
			return nil, err
		}

		if p.eof() {
			return nil, p.errorf("unterminated array")
		}

		switch p.src[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			closed = true
		default:
			return nil, p.errorf("expected ',' or ']'")
		}
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	if !p.eof() && p.src[p.pos] == ';' {
		p.pos++
	}

	if err := p.skipSpace(); err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.errorf("unexpected content after array")
	}

	return keys, nil
}

type listParser struct {
	src []byte
	pos int
}

func (p *listParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *listParser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: offset %d: %s", ErrSyntax, p.pos, fmt.Sprintf(format, args...))
}

// skipSpace skips whitespace and comments.
func (p *listParser) skipSpace() error {
	for !p.eof() {
		r, size := utf8.DecodeRune(p.src[p.pos:])

		switch {
		case unicode.IsSpace(r) || r == '\uFEFF':
			p.pos += size

		case bytes.HasPrefix(p.src[p.pos:], []byte("//")):
			end := bytes.IndexByte(p.src[p.pos:], '\n')
			if end < 0 {
				p.pos = len(p.src)
			} else {
				p.pos += end + 1
			}

		case bytes.HasPrefix(p.src[p.pos:], []byte("/*")):
			end := bytes.Index(p.src[p.pos+2:], []byte("*/"))
			if end < 0 {
				return p.errorf("unterminated comment")
			}

			p.pos += end + 4

		default:
			return nil
		}
	}

	return nil
}

func (p *listParser) stringLiteral() (string, error) {
	quote := p.src[p.pos]

	switch quote {
	case '\'', '"':
	case '`':
		return "", p.errorf("template literals are not supported")
	default:
		return "", p.errorf("expected string literal")
	}

	p.pos++

	var b strings.Builder

	for {
		if p.eof() {
			return "", p.errorf("unterminated string")
		}

		c := p.src[p.pos]

		switch {
		case c == quote:
			p.pos++

			return b.String(), nil

		case c == '\n' || c == '\r':
			return "", p.errorf("newline in string")

		case c == '\\':
			p.pos++

			if err := p.escape(&b); err != nil {
				return "", err
			}

		default:
			r, size := utf8.DecodeRune(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
}

// escape decodes the escape sequence following a backslash.
func (p *listParser) escape(b *strings.Builder) error {
	if p.eof() {
		return p.errorf("unterminated string")
	}

	r, size := utf8.DecodeRune(p.src[p.pos:])
	p.pos += size

	switch r {
	case 'n':
		b.WriteByte('\n')
	case 't':
		b.WriteByte('\t')
	case 'r':
		b.WriteByte('\r')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		if !p.eof() && isDigit(p.src[p.pos]) {
			return p.errorf("octal escapes are not supported")
		}

		b.WriteByte(0)
	case '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return p.errorf("octal escapes are not supported")
	case 'x':
		v, err := p.hex(2)
		if err != nil {
			return err
		}

		b.WriteRune(rune(v))
	case 'u':
		v, err := p.unicodeEscape()
		if err != nil {
			return err
		}

		b.WriteRune(v)
	case '\r':
		// Line continuation, CRLF or lone CR.
		if !p.eof() && p.src[p.pos] == '\n' {
			p.pos++
		}
	case '\n', '\u2028', '\u2029':
		// Line continuation.
	default:
		// Identity escape, including \' \" and \\.
		b.WriteRune(r)
	}

	return nil
}

// unicodeEscape decodes \uXXXX or \u{X...} after the 'u', joining a
// surrogate pair written as two escapes.
func (p *listParser) unicodeEscape() (rune, error) {
	if !p.eof() && p.src[p.pos] == '{' {
		end := bytes.IndexByte(p.src[p.pos:], '}')
		if end < 2 {
			return 0, p.errorf("invalid unicode escape")
		}

		v, err := strconv.ParseUint(string(p.src[p.pos+1:p.pos+end]), 16, 32)
		if err != nil || v > unicode.MaxRune {
			return 0, p.errorf("invalid unicode escape")
		}

		p.pos += end + 1

		return rune(v), nil
	}

	v, err := p.hex(4)
	if err != nil {
		return 0, err
	}

	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, nil
	}

	if bytes.HasPrefix(p.src[p.pos:], []byte(`\u`)) {
		save := p.pos
		p.pos += 2

		if lo, err := p.hex(4); err == nil {
			if pair := utf16.DecodeRune(r, rune(lo)); pair != unicode.ReplacementChar {
				return pair, nil
			}
		}

		p.pos = save
	}

	// Lone surrogates have no UTF-8 form.
	return unicode.ReplacementChar, nil
}

func (p *listParser) hex(n int) (uint64, error) {
	if p.pos+n > len(p.src) {
		return 0, p.errorf("truncated escape")
	}

	v, err := strconv.ParseUint(string(p.src[p.pos:p.pos+n]), 16, 32)
	if err != nil {
		return 0, p.errorf("invalid hex escape")
	}

	p.pos += n

	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
