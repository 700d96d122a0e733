// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package catalog

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression names a precompressed sibling format.
type Compression string

const (
	Gzip Compression = "gzip"
	Zstd Compression = "zstd"
)

var ErrUnknownCompression = errors.New("unknown compression")

// Ext returns the file extension for c.
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// ParseCompression validates a configured compression name.
func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case Gzip, Zstd:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCompression, name)
	}
}

type compressor struct {
	zstdEnc *zstd.Encoder
}

func newCompressor(formats []Compression) (*compressor, error) {
	c := &compressor{}

	for _, f := range formats {
		if f != Zstd {
			continue
		}

		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}

		c.zstdEnc = enc
	}

	return c, nil
}

func (c *compressor) compress(f Compression, data []byte) ([]byte, error) {
	switch f {
	case Zstd:
		return c.zstdEnc.EncodeAll(data, nil), nil

	case Gzip:
		var buf bytes.Buffer

		w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
		if err != nil {
			return nil, err
		}

		if _, err := w.Write(data); err != nil {
			return nil, err
		}

		if err := w.Close(); err != nil {
			return nil, err
		}

		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCompression, f)
	}
}
