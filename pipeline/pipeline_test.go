// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/jcodagnone/lanedist/distance"
	"github.com/jcodagnone/lanedist/resolve"
	"github.com/jcodagnone/lanedist/spatial"
)

// mapResolver resolves from a fixed name-to-result map; unknown names
// fail with NotFoundError.
type mapResolver struct {
	results map[string]resolve.Result
	calls   int
}

func (m *mapResolver) ResolvePlace(_ context.Context, name, code string) (resolve.Result, error) {
	m.calls++

	key := name
	if code != "" {
		key = code
	}

	if res, ok := m.results[key]; ok {
		return res, nil
	}

	return resolve.Result{}, &resolve.NotFoundError{Query: key}
}

type fixedRouter struct {
	miles float64
	calls int
}

func (r *fixedRouter) DrivingMiles(_ context.Context, _, _ spatial.Point) (float64, error) {
	r.calls++

	return r.miles, nil
}

func newTestDriver(t *testing.T, resolver PlaceResolver, router distance.Router) *Driver {
	t.Helper()

	d, err := NewDriver(&Options{
		Resolver: resolver,
		Engine:   distance.NewEngine(router),
	})
	if err != nil {
		t.Fatalf("NewDriver() error = %v", err)
	}

	return d
}

func TestRunResolvesBothEndpoints(t *testing.T) {
	resolver := &mapResolver{results: map[string]resolve.Result{
		"Chicago, US":  {Point: spatial.Point{Lat: 41.8781, Lng: -87.6298}, Provenance: resolve.ProvenanceCache},
		"New York, US": {Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}, Provenance: resolve.ProvenanceCache},
	}}
	d := newTestDriver(t, resolver, nil)

	records := d.Run(context.Background(), []Row{
		{Origin: "Chicago, US", Destination: "New York, US"},
	})

	if len(records) != 1 {
		t.Fatalf("Run() returned %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Err != "" {
		t.Fatalf("Err = %q, want empty", rec.Err)
	}

	if rec.DistanceMiles == nil {
		t.Fatal("DistanceMiles = nil, want a value")
	}

	if rec.Method != distance.MethodGreatCircle {
		t.Errorf("Method = %v, want great circle for cache-resolved endpoints", rec.Method)
	}
}

func TestRunNeverAbortsTheBatch(t *testing.T) {
	resolver := &mapResolver{results: map[string]resolve.Result{
		"Chicago, US":  {Point: spatial.Point{Lat: 41.8781, Lng: -87.6298}, Provenance: resolve.ProvenanceCache},
		"New York, US": {Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}, Provenance: resolve.ProvenanceCache},
	}}
	d := newTestDriver(t, resolver, nil)

	records := d.Run(context.Background(), []Row{
		{Origin: "Chicago, US", Destination: "Nowhere"},
		{Origin: "Chicago, US", Destination: "New York, US"},
	})

	if len(records) != 2 {
		t.Fatalf("Run() returned %d records, want 2", len(records))
	}

	bad := records[0]
	if !strings.Contains(bad.Err, "destination:") {
		t.Errorf("Err = %q, want it to name the destination side", bad.Err)
	}

	if bad.Origin == nil {
		t.Error("origin should still resolve when the destination fails")
	}

	if bad.DistanceMiles != nil {
		t.Error("no distance expected with an unresolved endpoint")
	}

	if records[1].Err != "" {
		t.Errorf("second row Err = %q, want clean", records[1].Err)
	}
}

func TestRunReportsBothFailingSides(t *testing.T) {
	d := newTestDriver(t, &mapResolver{}, nil)

	records := d.Run(context.Background(), []Row{
		{Origin: "Nowhere", Destination: "Elsewhere"},
	})

	err := records[0].Err
	if !strings.Contains(err, "origin:") || !strings.Contains(err, "destination:") {
		t.Errorf("Err = %q, want both sides named", err)
	}
}

func TestRunForcesUnambiguousForReferenceLanes(t *testing.T) {
	resolver := &mapResolver{results: map[string]resolve.Result{
		"USCHI": {Point: spatial.Point{Lat: 41.8781, Lng: -87.6298}, Ambiguous: true, Provenance: resolve.ProvenanceReference},
		"USNYC": {Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}, Ambiguous: true, Provenance: resolve.ProvenanceReference},
	}}
	d := newTestDriver(t, resolver, nil)

	records := d.Run(context.Background(), []Row{
		{Origin: "Chicago", OriginCode: "USCHI", Destination: "New York", DestinationCode: "USNYC"},
	})

	rec := records[0]
	if rec.Origin.Ambiguous || rec.Destination.Ambiguous {
		t.Errorf("ambiguity flags = (%v, %v), want both false for a reference lane",
			rec.Origin.Ambiguous, rec.Destination.Ambiguous)
	}
}

func TestRunRoutesWhenAnEndpointIsExternal(t *testing.T) {
	resolver := &mapResolver{results: map[string]resolve.Result{
		"USCHI":        {Point: spatial.Point{Lat: 41.8781, Lng: -87.6298}, Provenance: resolve.ProvenanceReference},
		"New York, US": {Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}, Provenance: resolve.ProvenanceExternal},
	}}
	router := &fixedRouter{miles: 790.5}
	d := newTestDriver(t, resolver, router)

	records := d.Run(context.Background(), []Row{
		{Origin: "Chicago", OriginCode: "USCHI", Destination: "New York, US"},
	})

	rec := records[0]
	if rec.Method != distance.MethodDriving {
		t.Errorf("Method = %v, want driving", rec.Method)
	}

	if rec.DistanceMiles == nil || *rec.DistanceMiles != 790.5 {
		t.Errorf("DistanceMiles = %v, want 790.5", rec.DistanceMiles)
	}

	if router.calls != 1 {
		t.Errorf("router invoked %d times, want 1", router.calls)
	}
}

func TestNewDriverRequiresResolver(t *testing.T) {
	if _, err := NewDriver(&Options{}); err == nil {
		t.Error("NewDriver() expected error without a resolver")
	}
}
