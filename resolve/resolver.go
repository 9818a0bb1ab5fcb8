// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve decides how a place query turns into coordinates: the
// static reference table first, then the persistent cache, then the
// external geocoder, in strict precedence order.
package resolve

import (
	"context"
	"fmt"
	"log"

	"github.com/jcodagnone/lanedist/cache"
	"github.com/jcodagnone/lanedist/geocode"
	"github.com/jcodagnone/lanedist/locode"
	"github.com/jcodagnone/lanedist/spatial"
)

// Provenance records which source a coordinate result came from.
type Provenance string

const (
	// ProvenanceReference the static code reference table.
	ProvenanceReference Provenance = "reference"
	// ProvenanceCache the persistent geocode cache.
	ProvenanceCache Provenance = "cache"
	// ProvenanceExternal the external geocoding provider.
	ProvenanceExternal Provenance = "external"
)

// Result is a resolved coordinate with its ambiguity flag and provenance.
type Result struct {
	Point      spatial.Point
	Ambiguous  bool
	Provenance Provenance
}

// NotFoundError reports a query that no resolution step could answer.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no coordinates found for %q", e.Query)
}

// generalTypes is the place-type filter for the first external attempt.
var generalTypes = []string{"place", "locality"}

// poiTypes is the place-type filter for the hint-driven re-query.
var poiTypes = []string{"poi"}

// Resolver resolves place queries. Dependencies are injected so tests can
// substitute doubles without global mutation.
type Resolver struct {
	table    *locode.Table
	store    cache.Store
	geocoder geocode.Forwarder
	hints    *Hints
	limit    int
}

// NewResolver creates a resolver. A nil hints falls back to the default
// vocabulary.
func NewResolver(table *locode.Table, store cache.Store, geocoder geocode.Forwarder, hints *Hints) *Resolver {
	if hints == nil {
		hints = DefaultHints()
	}

	return &Resolver{
		table:    table,
		store:    store,
		geocoder: geocoder,
		hints:    hints,
		limit:    5,
	}
}

// ResolvePlace resolves a free-text name plus an optional standardized
// code into coordinates. Precedence, each step short-circuiting:
//
//  1. explicit code against the reference table — codes are authoritative
//     and unambiguous by construction
//  2. the name itself, when shaped like a code, against the reference
//     table — users sometimes put the code in the name field
//  3. the persistent cache
//  4. external geocoding with general place types
//  5. when a port-type hint matches the name, a POI re-query filtered by
//     the inferred category
//  6. any leftover general candidates
//
// Steps 4-6 persist the chosen candidate to the cache. When nothing
// answers, a NotFoundError names the query.
func (r *Resolver) ResolvePlace(ctx context.Context, name, code string) (Result, error) {
	if code != "" {
		if pt, ok := r.table.Lookup(code); ok {
			return Result{Point: pt, Provenance: ProvenanceReference}, nil
		}
	}

	if name == "" {
		return Result{}, &NotFoundError{Query: code}
	}

	if locode.IsValid(name) {
		if pt, ok := r.table.Lookup(name); ok {
			return Result{Point: pt, Provenance: ProvenanceReference}, nil
		}
	}

	pt, ok, err := r.store.Get(name)
	if err != nil {
		return Result{}, fmt.Errorf("reading geocode cache: %w", err)
	}

	if ok {
		return Result{Point: pt, Provenance: ProvenanceCache}, nil
	}

	general, err := r.geocoder.Forward(ctx, geocode.Request{
		Query: name,
		Limit: r.limit,
		Types: generalTypes,
	})
	if err != nil {
		return Result{}, fmt.Errorf("geocoding %q: %w", name, err)
	}

	if len(general) == 1 {
		return r.external(name, general[0], false), nil
	}

	if category := r.hints.Category(name); category != "" {
		pois, err := r.geocoder.Forward(ctx, geocode.Request{
			Query:          name,
			Limit:          r.limit,
			Types:          poiTypes,
			CategoryFilter: category,
		})
		if err != nil {
			return Result{}, fmt.Errorf("geocoding %q as %s: %w", name, category, err)
		}

		if len(pois) > 0 {
			return r.external(name, pois[0], len(pois) > 1), nil
		}
	}

	if len(general) > 0 {
		return r.external(name, general[0], len(general) > 1), nil
	}

	return Result{}, &NotFoundError{Query: name}
}

// Remembers an externally resolved candidate and shapes the result. Cache
// write failures don't fail the resolution, the coordinates are already in
// hand.
func (r *Resolver) external(name string, c geocode.Candidate, ambiguous bool) Result {
	if err := r.store.Put(name, c.Point); err != nil {
		log.Printf("Caching %q failed: %s", name, err)
	}

	return Result{
		Point:      c.Point,
		Ambiguous:  ambiguous,
		Provenance: ProvenanceExternal,
	}
}
