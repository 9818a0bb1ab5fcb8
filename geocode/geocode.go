// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode wraps the external forward-geocoding provider behind a
// rate-limited, retrying adapter. All knowledge of the provider's wire
// format stays inside this package.
package geocode

import (
	"context"
	"strings"

	"github.com/jcodagnone/lanedist/spatial"
)

// Candidate is one geocoding result for a query, after parsing and before
// or after filtering/deduplication.
type Candidate struct {
	Point     spatial.Point
	PlaceName string
	Category  string
}

// Request describes one forward-geocoding call.
type Request struct {
	// Query is the free-text place, e.g. "Chicago, US".
	Query string

	// Limit caps the number of features requested from the provider.
	Limit int

	// Types is the server-side place-type filter, e.g. ["place", "locality"].
	Types []string

	// CategoryFilter keeps only features whose category contains this
	// keyword (case-insensitive). Applied client-side; empty means no
	// filtering.
	CategoryFilter string
}

// Forwarder resolves a free-text query to zero or more candidates.
type Forwarder interface {
	Forward(ctx context.Context, req Request) ([]Candidate, error)
}

// SplitCityCountry splits a compound "City, Country" query into its parts.
// Everything after the first comma is treated as the country; absent
// country yields "".
func SplitCityCountry(place string) (city, country string) {
	parts := strings.SplitN(place, ",", 2)

	city = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		country = strings.TrimSpace(parts[1])
	}

	return city, country
}

// Dedupe collapses candidates whose coordinates round to the same
// 3-decimal-degree pair, keeping the first-seen representative and the
// original provider order. The provider's own ranking is trusted as a
// relevance proxy.
func Dedupe(candidates []Candidate) []Candidate {
	seen := make(map[spatial.Point]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		key := c.Point.RoundKey()
		if seen[key] {
			continue
		}

		seen[key] = true

		out = append(out, c)
	}

	return out
}
