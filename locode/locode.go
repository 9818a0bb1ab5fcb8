// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package locode implements syntactic validation of UN/LOCODE-style
// standardized location codes and the static code-to-coordinates reference
// table loaded at startup.
package locode

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/jcodagnone/lanedist/spatial"
)

// Two alphabetic characters (country) followed by three alphanumeric
// characters (place).
var codePattern = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{3}$`)

// Normalize trims and uppercases a candidate code string.
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// IsValid reports whether the string is shaped like a standardized
// location code after normalization.
func IsValid(s string) bool {
	return codePattern.MatchString(Normalize(s))
}

// Table is an immutable mapping from normalized code to known coordinates.
// It is built once at startup and read-only afterwards.
type Table struct {
	entries map[string]spatial.Point
}

// Len returns the number of entries with usable coordinates.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}

// Lookup returns the coordinates for a code. It succeeds only when the
// string is a syntactically valid code, the normalized code is present, and
// both coordinates were set in the source table.
func (t *Table) Lookup(code string) (spatial.Point, bool) {
	if t == nil || !IsValid(code) {
		return spatial.Point{}, false
	}

	pt, ok := t.entries[Normalize(code)]

	return pt, ok
}

// LoadTable reads the reference table from a CSV file. The header is
// matched case-insensitively: a code column named "code" or "locode", plus
// "latitude" and "longitude" columns. Rows with blank or unparsable
// coordinates are excluded from the table, never treated as (0, 0).
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path) // #nosec G304 - path is provided by admin
	if err != nil {
		return nil, fmt.Errorf("opening reference table: %w", err)
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("reading reference table %s: %w", path, err)
	}

	return t, nil
}

// ReadTable parses reference entries from CSV data.
func ReadTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	codeCol, latCol, lonCol := -1, -1, -1

	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "code", "locode":
			codeCol = i
		case "latitude", "lat":
			latCol = i
		case "longitude", "lon", "lng":
			lonCol = i
		}
	}

	if codeCol < 0 || latCol < 0 || lonCol < 0 {
		return nil, fmt.Errorf("missing required columns, got header %v", header)
	}

	entries := make(map[string]spatial.Point)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}

		code := Normalize(record[codeCol])
		if !codePattern.MatchString(code) {
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[latCol]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[lonCol]), 64)

		// Missing-coordinate rows stay out of the lookup.
		if latErr != nil || lonErr != nil || math.IsNaN(lat) || math.IsNaN(lon) {
			continue
		}

		pt := spatial.Point{Lat: lat, Lng: lon}
		if !pt.Valid() {
			continue
		}

		entries[code] = pt
	}

	return &Table{entries: entries}, nil
}

// NewTable builds a table from an in-memory mapping. Used by tests and by
// callers that source entries elsewhere.
func NewTable(entries map[string]spatial.Point) *Table {
	normalized := make(map[string]spatial.Point, len(entries))

	for code, pt := range entries {
		code = Normalize(code)
		if codePattern.MatchString(code) && pt.Valid() {
			normalized[code] = pt
		}
	}

	return &Table{entries: normalized}
}
