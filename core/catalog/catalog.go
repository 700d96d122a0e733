// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package catalog reads, cleans and writes per-language message catalogs.

A catalog is a JSON object mapping message keys to values. String values are
interface text and go through the sanitizing pipeline; any other JSON value
is carried over byte for byte. Entry order is kept from the input file.
*/
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

var (
	ErrMalformed = errors.New("catalog is not valid JSON")
	ErrNotObject = errors.New("catalog is not a JSON object")
)

var indentOptions = &pretty.Options{Indent: "\t"}

// Entry is one key/value pair of a catalog.
type Entry struct {
	Key string

	// Value is the decoded string when IsString is set.
	Value    string
	IsString bool

	// Raw is the JSON encoding of the value as read from the file.
	Raw string
}

// Catalog is an ordered list of entries for one language.
type Catalog struct {
	Language string
	File     string
	Entries  []Entry
}

// Parse decodes data as a catalog.
//
// When a key occurs more than once, the last value wins and the entry keeps
// the position of the first occurrence.
func Parse(data []byte, lang, file string) (*Catalog, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, file)
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: %s", ErrNotObject, file)
	}

	c := &Catalog{Language: lang, File: file}
	seen := make(map[string]int)

	root.ForEach(func(key, value gjson.Result) bool {
		e := Entry{
			Key:      key.String(),
			Raw:      value.Raw,
			IsString: value.Type == gjson.String,
		}
		if e.IsString {
			e.Value = value.Str
		}

		if i, ok := seen[e.Key]; ok {
			c.Entries[i] = e
		} else {
			seen[e.Key] = len(c.Entries)
			c.Entries = append(c.Entries, e)
		}

		return true
	})

	return c, nil
}

// Load reads and parses the catalog file at path.
func Load(path, lang string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	return Parse(data, lang, path)
}

// LoadKeys returns the keys of the catalog at path, in file order.
func LoadKeys(path string) ([]string, error) {
	c, err := Load(path, "")
	if err != nil {
		return nil, err
	}

	return c.Keys(), nil
}

// Keys returns the entry keys in order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.Entries))
	for i, e := range c.Entries {
		keys[i] = e.Key
	}

	return keys
}

// MarshalIndent encodes the catalog as a tab-indented JSON object in entry
// order. HTML characters in strings are not escaped, and there is no
// trailing newline.
func (c *Catalog) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, e := range c.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeString(&buf, e.Key); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		if e.IsString {
			if err := writeString(&buf, e.Value); err != nil {
				return nil, err
			}
		} else {
			buf.WriteString(e.Raw)
		}
	}

	buf.WriteByte('}')

	out := pretty.PrettyOptions(buf.Bytes(), indentOptions)

	return bytes.TrimSuffix(out, []byte("\n")), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode string: %w", err)
	}

	// Encode terminates each value with a newline.
	buf.Truncate(buf.Len() - 1)

	return nil
}

// Normalize rewrites serialized catalog text for embedding.
//
// The &nbsp; and &#32; references become plain spaces. For the scaffold
// language, whose JSON is pasted into a wikitext page, every closing nowiki
// tag is split so the page parser cannot see one.
func Normalize(text string, scaffold bool) string {
	text = strings.NewReplacer("&nbsp;", " ", "&#32;", " ").Replace(text)

	if scaffold {
		text = strings.ReplaceAll(text, "</nowiki>", `</" + String("") + "nowiki>`)
	}

	return text
}
