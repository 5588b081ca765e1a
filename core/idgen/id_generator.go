// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen makes short identifiers for requests, audit spans and
// cache-busting asset URLs.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// entropyBytes is the random part of an ID, 4 URL-safe characters.
const entropyBytes = 3

// Make returns an ID made of the UTC wall-clock time (HHMMSS) followed by
// random characters. IDs sort by time within a day and are unique enough to
// correlate the log lines of one request.
func Make() string {
	return makeAt(time.Now())
}

func makeAt(t time.Time) string {
	var entropy [entropyBytes]byte

	// crypto/rand.Read never returns an error.
	_, _ = rand.Read(entropy[:])

	return t.UTC().Format("150405") + base64.RawURLEncoding.EncodeToString(entropy[:])
}
