// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jcodagnone/lanedist/resolve"
	"github.com/jcodagnone/lanedist/spatial"
)

func TestReadInputCaseInsensitiveHeaders(t *testing.T) {
	in, err := ReadInput(strings.NewReader(
		"Lane,ORIGIN,Destination\n" +
			"L1,Chicago US,New York US\n"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}

	rows := in.Rows()
	want := []Row{{Origin: "Chicago US", Destination: "New York US"}}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadInputDetectsCodeColumns(t *testing.T) {
	in, err := ReadInput(strings.NewReader(
		"origin,Origin UNLOCODE,destination,dest_code\n" +
			"Chicago,USCHI,New York,USNYC\n"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}

	rows := in.Rows()
	want := []Row{{
		Origin:          "Chicago",
		OriginCode:      "USCHI",
		Destination:     "New York",
		DestinationCode: "USNYC",
	}}

	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
	}
}

func TestReadInputMissingRequiredColumns(t *testing.T) {
	_, err := ReadInput(strings.NewReader("from,to\na,b\n"))
	if err == nil {
		t.Fatal("ReadInput() expected error for missing columns")
	}
}

func TestReadInputRaggedRows(t *testing.T) {
	in, err := ReadInput(strings.NewReader(
		"origin,destination,origin_code\n" +
			"Chicago,New York\n"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}

	rows := in.Rows()
	if rows[0].OriginCode != "" {
		t.Errorf("OriginCode = %q, want empty for a short row", rows[0].OriginCode)
	}
}

func TestWriteOutputPreservesInputAndAppendsResults(t *testing.T) {
	in, err := ReadInput(strings.NewReader(
		"lane,origin,destination\n" +
			"L1,Chicago US,New York US\n" +
			"L2,Nowhere,New York US\n"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}

	miles := 711.944
	records := []Record{
		{
			Origin:        &resolve.Result{Point: spatial.Point{Lat: 41.8781, Lng: -87.6298}, Provenance: resolve.ProvenanceCache},
			Destination:   &resolve.Result{Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}, Ambiguous: true, Provenance: resolve.ProvenanceExternal},
			DistanceMiles: &miles,
		},
		{
			Destination: &resolve.Result{Point: spatial.Point{Lat: 40.7128, Lng: -74.0060}, Provenance: resolve.ProvenanceCache},
			Err:         `origin: no coordinates found for "Nowhere"`,
		},
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, in, records); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	out, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}

	wantHeader := []string{
		"lane", "origin", "destination",
		"origin_latitude", "origin_longitude",
		"destination_latitude", "destination_longitude",
		"is_origin_ambiguous", "is_destination_ambiguous",
		"origin_source", "destination_source",
		"distance_miles", "error",
	}
	if diff := cmp.Diff(wantHeader, out[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}

	wantFirst := []string{
		"L1", "Chicago US", "New York US",
		"41.8781", "-87.6298", "40.7128", "-74.006",
		"false", "true", "cache", "external",
		"711.944", "",
	}
	if diff := cmp.Diff(wantFirst, out[1]); diff != "" {
		t.Errorf("row 1 mismatch (-want +got):\n%s", diff)
	}

	// Unresolved origin renders as empty cells, never zeros.
	wantSecond := []string{
		"L2", "Nowhere", "New York US",
		"", "", "40.7128", "-74.006",
		"", "false", "", "cache",
		"", `origin: no coordinates found for "Nowhere"`,
	}
	if diff := cmp.Diff(wantSecond, out[2]); diff != "" {
		t.Errorf("row 2 mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteOutputFloatsRoundTripExactly(t *testing.T) {
	in, err := ReadInput(strings.NewReader(
		"origin,destination\n" +
			"A,B\n"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}

	// Values with no short decimal representation.
	origin := spatial.Point{Lat: 41.87810000000001, Lng: -87.62979999999999}
	dest := spatial.Point{Lat: 1.0 / 3.0, Lng: -2.0 / 7.0}
	miles := 711.9443121295617

	records := []Record{{
		Origin:        &resolve.Result{Point: origin, Provenance: resolve.ProvenanceCache},
		Destination:   &resolve.Result{Point: dest, Provenance: resolve.ProvenanceCache},
		DistanceMiles: &miles,
	}}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, in, records); err != nil {
		t.Fatalf("WriteOutput() error = %v", err)
	}

	out, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}

	row := out[1]
	cells := map[string]float64{
		"origin_latitude":       origin.Lat,
		"origin_longitude":      origin.Lng,
		"destination_latitude":  dest.Lat,
		"destination_longitude": dest.Lng,
		"distance_miles":        miles,
	}

	for name, want := range cells {
		idx := -1

		for i, header := range out[0] {
			if header == name {
				idx = i

				break
			}
		}

		if idx < 0 {
			t.Fatalf("column %q not found in header %v", name, out[0])
		}

		got, err := strconv.ParseFloat(row[idx], 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q) for %s: %v", row[idx], name, err)
		}

		if got != want {
			t.Errorf("%s round trip = %v, want exactly %v", name, got, want)
		}
	}
}

func TestWriteOutputLengthMismatch(t *testing.T) {
	in, err := ReadInput(strings.NewReader("origin,destination\na,b\n"))
	if err != nil {
		t.Fatalf("ReadInput() error = %v", err)
	}

	if err := WriteOutput(&bytes.Buffer{}, in, nil); err == nil {
		t.Error("WriteOutput() expected error on record count mismatch")
	}
}
