// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	data := []byte(`{
	"zeta": "last <b>first</b>",
	"alpha": ["x", 1],
	"dup": "one",
	"num": 3.50,
	"dup": "two",
	"esc\"key": "a b"
}`)

	c, err := Parse(data, "de", "de.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "dup", "num", `esc"key`}, c.Keys())

	assert.True(t, c.Entries[0].IsString)
	assert.Equal(t, "last <b>first</b>", c.Entries[0].Value)

	assert.False(t, c.Entries[1].IsString)
	assert.JSONEq(t, `["x", 1]`, c.Entries[1].Raw)

	assert.Equal(t, "two", c.Entries[2].Value)
	assert.Equal(t, "3.50", c.Entries[3].Raw)
	assert.Equal(t, "a b", c.Entries[4].Value)
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		err  error
	}{
		{name: "truncated", data: `{"a": "b"`, err: ErrMalformed},
		{name: "garbage", data: `not json`, err: ErrMalformed},
		{name: "array", data: `["a"]`, err: ErrNotObject},
		{name: "string", data: `"a"`, err: ErrNotObject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Parse([]byte(tt.data), "de", "de.json")
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestMarshalIndent(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`{"b":"<b>x</b> & y","a":{"k":true},"q":"say \"hi\""}`), "de", "de.json")
	require.NoError(t, err)

	out, err := c.MarshalIndent()
	require.NoError(t, err)

	want := "{\n" +
		"\t\"b\": \"<b>x</b> & y\",\n" +
		"\t\"a\": {\n" +
		"\t\t\"k\": true\n" +
		"\t},\n" +
		"\t\"q\": \"say \\\"hi\\\"\"\n" +
		"}"

	assert.Equal(t, want, string(out))
}

func TestMarshalIndentEmpty(t *testing.T) {
	t.Parallel()

	c, err := Parse([]byte(`{}`), "de", "de.json")
	require.NoError(t, err)

	out, err := c.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		scaffold bool
		want     string
	}{
		{name: "nbsp", in: `"a&nbsp;b"`, want: `"a b"`},
		{name: "space reference", in: `"a&#32;b"`, want: `"a b"`},
		{name: "other references kept", in: `"a&amp;b&lt;"`, want: `"a&amp;b&lt;"`},
		{name: "nowiki kept outside scaffold", in: `"<nowiki>x</nowiki>"`, want: `"<nowiki>x</nowiki>"`},
		{
			name:     "nowiki split in scaffold",
			in:       `"<nowiki>x</nowiki> and <nowiki>y</nowiki>"`,
			scaffold: true,
			want:     `"<nowiki>x</" + String("") + "nowiki> and <nowiki>y</" + String("") + "nowiki>"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, Normalize(tt.in, tt.scaffold))
		})
	}
}
