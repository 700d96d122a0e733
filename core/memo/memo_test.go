// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package memo

import (
	"strconv"
	"strings"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{false, true} {
		cache, err := New(3, compress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cache.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", cache.Len())
		}
	}

	if _, err := New(0, false); err != ErrInvalidSize {
		t.Errorf("expected ErrInvalidSize, got %v", err)
	}
}

func TestCacheEviction(t *testing.T) {
	t.Parallel()

	cache, err := New(2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache.Add("a", "1")
	cache.Add("b", "2")

	// Touch "a" so "b" becomes the oldest.
	if _, ok := cache.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}

	if !cache.Add("c", "3") {
		t.Error("expected an eviction")
	}

	if _, ok := cache.Get("b"); ok {
		t.Error("expected b to be evicted")
	}

	if v, ok := cache.Get("a"); !ok || v != "1" {
		t.Errorf("expected a=1, got %q (%v)", v, ok)
	}

	hits, misses := cache.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits and 1 miss, got %d and %d", hits, misses)
	}
}

func TestCacheUpdate(t *testing.T) {
	t.Parallel()

	cache, err := New(2, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cache.Add("a", "1")

	if cache.Add("a", "2") {
		t.Error("updating a key must not evict")
	}

	if v, _ := cache.Get("a"); v != "2" {
		t.Errorf("expected updated value, got %q", v)
	}

	if cache.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", cache.Len())
	}
}

func TestCacheCompression(t *testing.T) {
	t.Parallel()

	cache, err := New(4, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	long := strings.Repeat("<b>Twinkle</b> ", 200)
	cache.Add("long", long)
	cache.Add("short", "x")
	cache.Add("empty", "")

	for key, want := range map[string]string{"long": long, "short": "x", "empty": ""} {
		got, ok := cache.Get(key)
		if !ok || got != want {
			t.Errorf("%s: got %d bytes (%v), want %d bytes", key, len(got), ok, len(want))
		}
	}

	el := cache.items["long"]
	if !el.Value.(*entry).compressed {
		t.Error("expected the repetitive value to be stored compressed")
	}
}

func TestCacheConcurrent(t *testing.T) {
	t.Parallel()

	cache, err := New(50, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup

	for g := range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for i := range 100 {
				key := strconv.Itoa((g * 100) + i)
				cache.Add(key, strings.Repeat(key, 20))

				if v, ok := cache.Get(key); ok && v != strings.Repeat(key, 20) {
					t.Errorf("corrupt value for %s", key)
				}
			}
		}()
	}

	wg.Wait()

	if cache.Len() != 50 {
		t.Errorf("expected a full cache of 50, got %d", cache.Len())
	}
}
