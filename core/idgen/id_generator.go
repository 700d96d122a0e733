// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen makes short identifiers for pipeline runs.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Make makes a run ID from the UTC start time, to the second, and 3 bytes
// of entropy, e.g. "20250314T092653-x3Fa".
func Make() string {
	return MakeAt(time.Now())
}

// MakeAt is [Make] for a given start time.
func MakeAt(t time.Time) string {
	var entropy [3]byte

	_, _ = rand.Read(entropy[:])

	return stamp(t) + "-" + base64.RawURLEncoding.EncodeToString(entropy[:])
}

func stamp(t time.Time) string {
	return t.UTC().Format("20060102T150405")
}
