// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides text normalization helpers for place names.
package textutils

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// UpperASCIIFolding normalizes a string by removing accents, uppercasing,
// and trimming spaces.
func UpperASCIIFolding(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			norm.NFD,
			runes.Remove(runes.In(unicode.Mn)),
			norm.NFC,
		),
		strings.TrimSpace(strings.ToUpper(s)),
	)

	return s
}

// NormalizeKey canonicalizes a free-text place name into the form used as
// cache key: accents folded, uppercased, runs of whitespace collapsed, and
// trailing punctuation removed. Returns "" when nothing remains.
func NormalizeKey(s string) string {
	s = UpperASCIIFolding(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimRight(s, ".,;: ")

	return s
}
