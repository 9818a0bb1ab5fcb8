// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

// Package pipeline drives the row-by-row lane processing: resolve both
// endpoints, pick a distance formula by provenance, and annotate each
// record with the outcome.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/lanedist/distance"
	"github.com/jcodagnone/lanedist/resolve"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// PlaceResolver resolves one endpoint query.
type PlaceResolver interface {
	ResolvePlace(ctx context.Context, name, code string) (resolve.Result, error)
}

// Row is one lane to process, as read from the input table.
type Row struct {
	Origin          string
	OriginCode      string
	Destination     string
	DestinationCode string
}

// Record is the annotated outcome for one Row. Unresolved endpoints and
// uncomputed distances stay nil rather than zero-valued.
type Record struct {
	Row Row

	Origin      *resolve.Result
	Destination *resolve.Result

	DistanceMiles *float64
	Method        distance.Method

	// Err is empty when the row processed cleanly.
	Err string
}

// Options configuration for the pipeline driver.
type Options struct {
	Resolver PlaceResolver
	Engine   *distance.Engine

	// ShowProgress renders a progress bar on stderr when it is a terminal.
	ShowProgress bool
}

type Driver struct {
	resolver     PlaceResolver
	engine       *distance.Engine
	showProgress bool
}

func NewDriver(options *Options) (*Driver, error) {
	if options == nil || options.Resolver == nil {
		return nil, fmt.Errorf("pipeline requires a resolver")
	}

	engine := options.Engine
	if engine == nil {
		engine = distance.NewEngine(nil)
	}

	return &Driver{
		resolver:     options.Resolver,
		engine:       engine,
		showProgress: options.ShowProgress,
	}, nil
}

// Run processes every row, never aborting the batch on a row failure.
// Output order matches input order.
func (d *Driver) Run(ctx context.Context, rows []Row) []Record {
	var bar *progressbar.ProgressBar
	if d.showProgress && isatty.IsTerminal(os.Stderr.Fd()) {
		bar = progressbar.NewOptions(len(rows),
			progressbar.OptionSetDescription("Resolving lanes"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	records := make([]Record, 0, len(rows))

	var resolved, failed, routed int

	bySource := make(map[resolve.Provenance]int)

	for _, row := range rows {
		rec := d.processRow(ctx, row)

		if rec.Err == "" {
			resolved++
		} else {
			failed++
		}

		if rec.Method == distance.MethodDriving {
			routed++
		}

		for _, endpoint := range []*resolve.Result{rec.Origin, rec.Destination} {
			if endpoint != nil {
				bySource[endpoint.Provenance]++
			}
		}

		records = append(records, rec)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	log.Printf("Processed %d lanes: %d resolved (%d routed), %d failed", len(rows), resolved, routed, failed)
	log.Printf("Endpoints by source: %d reference, %d cache, %d external",
		bySource[resolve.ProvenanceReference], bySource[resolve.ProvenanceCache], bySource[resolve.ProvenanceExternal])

	return records
}

// One row: both endpoints are attempted even when the first fails, so the
// error field can name every unresolved side.
func (d *Driver) processRow(ctx context.Context, row Row) Record {
	rec := Record{Row: row}

	var problems []string

	if origin, err := d.resolver.ResolvePlace(ctx, row.Origin, row.OriginCode); err != nil {
		problems = append(problems, fmt.Sprintf("origin: %s", err))
	} else {
		rec.Origin = &origin
	}

	if dest, err := d.resolver.ResolvePlace(ctx, row.Destination, row.DestinationCode); err != nil {
		problems = append(problems, fmt.Sprintf("destination: %s", err))
	} else {
		rec.Destination = &dest
	}

	if len(problems) > 0 {
		rec.Err = strings.Join(problems, "; ")

		return rec
	}

	// A lane anchored on the reference table at both ends is unambiguous
	// by policy.
	if rec.Origin.Provenance == resolve.ProvenanceReference &&
		rec.Destination.Provenance == resolve.ProvenanceReference {
		rec.Origin.Ambiguous = false
		rec.Destination.Ambiguous = false
	}

	useRouted := rec.Origin.Provenance == resolve.ProvenanceExternal ||
		rec.Destination.Provenance == resolve.ProvenanceExternal

	miles, method := d.engine.Miles(ctx, rec.Origin.Point, rec.Destination.Point, useRouted)
	rec.DistanceMiles = &miles
	rec.Method = method

	return rec
}
