// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/lanedist/cache"
	"github.com/jcodagnone/lanedist/distance"
	"github.com/jcodagnone/lanedist/geocode"
	"github.com/jcodagnone/lanedist/locode"
	"github.com/jcodagnone/lanedist/resolve"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

var rootOptions struct {
	cachePath     string
	referencePath string
	traceHTTP     bool
	traceHTTPBody bool
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})

	rootCmd.PersistentFlags().StringVar(
		&rootOptions.cachePath,
		"cache",
		"lanedist.duckdb",
		"Path of the persistent geocode cache",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootOptions.referencePath,
		"reference",
		"",
		"CSV file with the code reference table (code, latitude, longitude)",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.traceHTTP,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootOptions.traceHTTPBody,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}

var rootCmd = &cobra.Command{
	Use:   "lanedist",
	Short: "resolve lane endpoints and compute lane distances",
	Long: `
lanedist resolves free-text place names and standardized location codes
to coordinates through a static reference table, a persistent cache and
the Mapbox geocoder, and computes great-circle or routed driving
distances between the two endpoints of each lane.
`,
}

var Version = "dev"

func Execute(version string) {
	Version = version

	// A .env next to the binary may carry MAPBOX_TOKEN.
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func userAgent() string {
	return fmt.Sprintf("lanedist/%s (+https://github.com/jcodagnone/lanedist)", Version)
}

func mapboxToken() (string, error) {
	token := os.Getenv("MAPBOX_TOKEN")
	if token == "" {
		return "", fmt.Errorf("MAPBOX_TOKEN is not set: a Mapbox access token is required")
	}

	return token, nil
}

func loadReferenceTable() (*locode.Table, error) {
	if rootOptions.referencePath == "" {
		return locode.NewTable(nil), nil
	}

	table, err := locode.LoadTable(rootOptions.referencePath)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded %d reference entries from %s", table.Len(), rootOptions.referencePath)

	return table, nil
}

func newGeocoder() (*geocode.MapboxGeocoder, error) {
	token, err := mapboxToken()
	if err != nil {
		return nil, err
	}

	return geocode.NewMapboxGeocoder(&geocode.MapboxOptions{
		Token:               token,
		UserAgent:           userAgent(),
		EnableHTTPTrace:     rootOptions.traceHTTP,
		EnableHTTPBodyTrace: rootOptions.traceHTTPBody,
	})
}

func newRouter() (*distance.MapboxRouter, error) {
	token, err := mapboxToken()
	if err != nil {
		return nil, err
	}

	return distance.NewMapboxRouter(&distance.MapboxRouterOptions{
		Token:               token,
		UserAgent:           userAgent(),
		EnableHTTPTrace:     rootOptions.traceHTTP,
		EnableHTTPBodyTrace: rootOptions.traceHTTPBody,
	})
}

// buildResolver wires the resolution stack. The returned store must be
// closed through its DB handle.
func buildResolver() (*resolve.Resolver, cache.Store, error) {
	table, err := loadReferenceTable()
	if err != nil {
		return nil, nil, fmt.Errorf("loading reference table: %w", err)
	}

	store, err := cache.Open(rootOptions.cachePath)
	if err != nil {
		return nil, nil, err
	}

	geocoder, err := newGeocoder()
	if err != nil {
		store.DB().Close()

		return nil, nil, err
	}

	return resolve.NewResolver(table, store, geocoder, nil), store, nil
}
