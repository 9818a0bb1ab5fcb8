// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SeedData represents the JSON export file format. The file is sorted by
// place to minimize diffs when checked into version control.
type SeedData struct {
	Version     string    `json:"version"`
	LastUpdated time.Time `json:"last_updated"`
	Entries     []*Entry  `json:"entries"`
}

// ExportToJSON exports all cache entries to a JSON file.
func ExportToJSON(store Store, filepath string) (int, error) {
	entries, err := store.All()
	if err != nil {
		return 0, fmt.Errorf("listing cache entries: %w", err)
	}

	seed := &SeedData{
		Version:     "1.0",
		LastUpdated: time.Now(),
		Entries:     entries,
	}

	data, err := json.MarshalIndent(seed, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0o600); err != nil {
		return 0, fmt.Errorf("writing file: %w", err)
	}

	return len(entries), nil
}

// ImportFromJSON imports cache entries from a JSON file.
func ImportFromJSON(store Store, filepath string) (int, error) {
	data, err := os.ReadFile(filepath) // #nosec G304 - filepath is provided by admin
	if err != nil {
		return 0, fmt.Errorf("reading file: %w", err)
	}

	var seed SeedData
	if err := json.Unmarshal(data, &seed); err != nil {
		return 0, fmt.Errorf("parsing JSON: %w", err)
	}

	if err := store.BulkPut(seed.Entries); err != nil {
		return 0, fmt.Errorf("inserting cache entries: %w", err)
	}

	return len(seed.Entries), nil
}

// SeedIfEmpty seeds the cache from a JSON file if no entries exist.
func SeedIfEmpty(store Store, filepath string) (bool, int, error) {
	count, err := store.Count()
	if err != nil {
		return false, 0, fmt.Errorf("counting cache entries: %w", err)
	}

	if count > 0 {
		return false, count, nil
	}
	// Cache is empty, try to seed
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		// No seed file exists, that's okay
		return false, 0, nil
	}

	imported, err := ImportFromJSON(store, filepath)
	if err != nil {
		return false, 0, err
	}

	return true, imported, nil
}
