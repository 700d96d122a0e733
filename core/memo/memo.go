// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package memo provides a fixed-capacity least-recently-used string cache.

It remembers the accepted output of the sanitizing pipeline for a given raw
string, so identical strings shared between catalogs (untranslated fallbacks,
product names) are processed once. Values can be kept zstd-compressed when
that makes them smaller.
*/
package memo

import (
	"container/list"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidSize = errors.New("must provide a positive size")

// Cache is safe for concurrent use. Construct it with [New].
type Cache struct {
	size  int
	order *list.List // front is most recently used
	items map[string]*list.Element
	mu    sync.Mutex

	enc *zstd.Encoder
	dec *zstd.Decoder

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key        string
	value      []byte
	compressed bool
}

// New creates a cache holding at most size strings.
//
// If compress is true, values are stored zstd-compressed when this reduces
// their size.
func New(size int, compress bool) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	c := &Cache{
		size:  size,
		order: list.New(),
		items: make(map[string]*list.Element, size),
	}

	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.enc = enc
		c.dec = dec
	}

	return c, nil
}

// Add stores value under key, making it the most recently used entry.
// It reports whether an older entry was evicted.
func (c *Cache) Add(key, value string) bool {
	stored, compressed := c.pack(value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.MoveToFront(el)

		e := el.Value.(*entry)
		e.value = stored
		e.compressed = compressed

		return false
	}

	c.items[key] = c.order.PushFront(&entry{key: key, value: stored, compressed: compressed})

	if c.order.Len() <= c.size {
		return false
	}

	oldest := c.order.Back()
	c.order.Remove(oldest)
	delete(c.items, oldest.Value.(*entry).key)

	return true
}

// Get returns the value for key and marks it as most recently used.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()

	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		c.misses.Add(1)

		return "", false
	}

	c.order.MoveToFront(el)
	e := el.Value.(*entry)
	stored, compressed := e.value, e.compressed

	c.mu.Unlock()

	value, ok := c.unpack(stored, compressed)
	if !ok {
		c.misses.Add(1)

		return "", false
	}

	c.hits.Add(1)

	return value, true
}

// Len returns the number of cached strings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

// Stats returns the number of lookups that hit and missed.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// pack runs without the lock; EncodeAll is safe for concurrent use.
func (c *Cache) pack(value string) ([]byte, bool) {
	raw := []byte(value)
	if c.enc == nil || len(raw) == 0 {
		return raw, false
	}

	packed := c.enc.EncodeAll(raw, nil)
	if len(packed) < len(raw) {
		return packed, true
	}

	return raw, false
}

func (c *Cache) unpack(stored []byte, compressed bool) (string, bool) {
	if !compressed {
		return string(stored), true
	}

	decoded, err := c.dec.DecodeAll(stored, nil)
	if err != nil {
		return "", false
	}

	return string(decoded), true
}
