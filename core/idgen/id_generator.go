// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Make makes a short ID with a 6 byte timestamp and 3 bytes of entropy.
//
// It is used for request IDs and cache-busting tags, not for secrets.
func Make() string {
	entropy := [3]byte{'a', 'a', 'a'}

	_, _ = rand.Read(entropy[:])

	return maketime(time.Now()) + base64.RawURLEncoding.EncodeToString(entropy[:])
}

// Token returns n random bytes encoded as unpadded URL-safe base64.
func Token(n int) string {
	buf := make([]byte, n)

	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(buf)

	return base64.RawURLEncoding.EncodeToString(buf)
}

func maketime(t time.Time) string {
	return t.Format("150405")
}
