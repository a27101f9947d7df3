// Copyright 2025, the Pinmark contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package slug turns titles into URL path segments.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is used when a title has no ASCII letters or digits left after folding.
const Fallback = "image"

var (
	disallowed = regexp.MustCompile(`[^\w\s-]`)
	separators = regexp.MustCompile(`[-\s]+`)

	// strip combining marks after decomposition so "Café" becomes "Cafe"
	asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Make converts title to a lowercase, hyphen separated ASCII slug.
//
// Characters outside ASCII are dropped after accent folding.
func Make(title string) string {
	folded, _, err := transform.String(asciiFold, title)
	if err != nil {
		folded = title
	}

	folded = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}

		return r
	}, folded)

	s := disallowed.ReplaceAllString(strings.ToLower(folded), "")
	s = separators.ReplaceAllString(strings.TrimSpace(s), "-")
	s = strings.Trim(s, "-_")

	if s == "" {
		return Fallback
	}

	return s
}
