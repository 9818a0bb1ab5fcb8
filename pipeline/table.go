// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jcodagnone/lanedist/resolve"
)

// Output columns appended after the preserved input columns.
var outputColumns = []string{
	"origin_latitude",
	"origin_longitude",
	"destination_latitude",
	"destination_longitude",
	"is_origin_ambiguous",
	"is_destination_ambiguous",
	"origin_source",
	"destination_source",
	"distance_miles",
	"error",
}

// Input is a parsed lane table with its original header and cells kept
// intact so the output can preserve them.
type Input struct {
	Header  []string
	Records [][]string

	origin      int
	destination int
	originCode  int
	destCode    int
}

// ReadInput parses a CSV lane table. The origin and destination columns
// are matched case-insensitively; optional code columns are detected by a
// header naming both a side and a code field.
func ReadInput(r io.Reader) (*Input, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lane table: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("lane table is empty")
	}

	in := &Input{
		Header:      rows[0],
		Records:     rows[1:],
		origin:      -1,
		destination: -1,
		originCode:  -1,
		destCode:    -1,
	}

	for i, name := range in.Header {
		name = strings.ToLower(strings.TrimSpace(name))

		switch name {
		case "origin":
			in.origin = i

			continue
		case "destination":
			in.destination = i

			continue
		}

		if !strings.Contains(name, "code") && !strings.Contains(name, "unloc") {
			continue
		}

		switch {
		case strings.Contains(name, "orig"):
			in.originCode = i
		case strings.Contains(name, "dest"):
			in.destCode = i
		}
	}

	if in.origin < 0 || in.destination < 0 {
		return nil, fmt.Errorf("lane table needs 'origin' and 'destination' columns, got %v", in.Header)
	}

	return in, nil
}

// LoadInput reads a lane table from a file.
func LoadInput(path string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lane table %s: %w", path, err)
	}
	defer f.Close()

	return ReadInput(f)
}

// Rows maps the parsed records onto pipeline rows.
func (in *Input) Rows() []Row {
	rows := make([]Row, 0, len(in.Records))

	for _, rec := range in.Records {
		rows = append(rows, Row{
			Origin:          cell(rec, in.origin),
			OriginCode:      cell(rec, in.originCode),
			Destination:     cell(rec, in.destination),
			DestinationCode: cell(rec, in.destCode),
		})
	}

	return rows
}

func cell(rec []string, idx int) string {
	if idx < 0 || idx >= len(rec) {
		return ""
	}

	return strings.TrimSpace(rec[idx])
}

// WriteOutput writes the annotated table: every input column preserved,
// followed by the resolution and distance columns. records must align
// one-to-one with in.Records.
func WriteOutput(w io.Writer, in *Input, records []Record) error {
	if len(records) != len(in.Records) {
		return fmt.Errorf("got %d records for %d input rows", len(records), len(in.Records))
	}

	writer := csv.NewWriter(w)

	width := len(in.Header)

	if err := writer.Write(append(append([]string{}, in.Header...), outputColumns...)); err != nil {
		return fmt.Errorf("writing output header: %w", err)
	}

	for i, rec := range records {
		row := make([]string, width, width+len(outputColumns))
		copy(row, in.Records[i])

		row = append(row,
			formatCoord(rec.Origin, func(r *resolve.Result) float64 { return r.Point.Lat }),
			formatCoord(rec.Origin, func(r *resolve.Result) float64 { return r.Point.Lng }),
			formatCoord(rec.Destination, func(r *resolve.Result) float64 { return r.Point.Lat }),
			formatCoord(rec.Destination, func(r *resolve.Result) float64 { return r.Point.Lng }),
			formatAmbiguous(rec.Origin),
			formatAmbiguous(rec.Destination),
			formatSource(rec.Origin),
			formatSource(rec.Destination),
			formatMiles(rec.DistanceMiles),
			rec.Err,
		)

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing output row %d: %w", i+1, err)
		}
	}

	writer.Flush()

	return writer.Error()
}

// SaveOutput writes the annotated table to a file.
func SaveOutput(path string, in *Input, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output %s: %w", path, err)
	}

	if err := WriteOutput(f, in, records); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// Unresolved endpoints render as empty cells, never as zeros.
func formatCoord(r *resolve.Result, pick func(*resolve.Result) float64) string {
	if r == nil {
		return ""
	}

	return strconv.FormatFloat(pick(r), 'g', -1, 64)
}

func formatAmbiguous(r *resolve.Result) string {
	if r == nil {
		return ""
	}

	return strconv.FormatBool(r.Ambiguous)
}

func formatSource(r *resolve.Result) string {
	if r == nil {
		return ""
	}

	return string(r.Provenance)
}

func formatMiles(miles *float64) string {
	if miles == nil {
		return ""
	}

	return strconv.FormatFloat(*miles, 'g', -1, 64)
}
