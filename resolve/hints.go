// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"strings"

	"github.com/jcodagnone/lanedist/utils/textutils"
)

// Hints holds the keyword vocabularies used to infer a port-type category
// from a place name. The lists are configuration data, not algorithm: they
// can be replaced wholesale by the caller.
type Hints struct {
	// AirportKeywords mark a name as an air freight location.
	AirportKeywords []string

	// SeaportKeywords mark a name as a sea freight location.
	SeaportKeywords []string
}

// DefaultHints returns the stock airport/seaport vocabulary.
func DefaultHints() *Hints {
	return &Hints{
		AirportKeywords: []string{
			"AIRPORT", "APT", "INTL", "INTERNATIONAL", "AIRFIELD", "AEROPUERTO",
		},
		SeaportKeywords: []string{
			"PORT", "SEAPORT", "HARBOR", "HARBOUR", "TERMINAL", "WHARF",
			"DOCK", "PIER", "PUERTO",
		},
	}
}

// Category infers a provider category filter from the place name, or ""
// when no hint matches. Matching is on whole words so "Portland" does not
// trigger the seaport vocabulary.
func (h *Hints) Category(name string) string {
	if h == nil {
		return ""
	}

	words := tokenize(name)

	for _, kw := range h.AirportKeywords {
		if words[kw] {
			return "airport"
		}
	}

	for _, kw := range h.SeaportKeywords {
		if words[kw] {
			return "port"
		}
	}

	return ""
}

func tokenize(name string) map[string]bool {
	normalized := textutils.NormalizeKey(name)

	words := make(map[string]bool)

	for _, w := range strings.FieldsFunc(normalized, func(r rune) bool {
		return !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9')
	}) {
		words[w] = true
	}

	return words
}
