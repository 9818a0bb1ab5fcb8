// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/lanedist/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent geocode cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := cache.Open(rootOptions.cachePath)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		count, err := store.Count()
		if err != nil {
			return err
		}

		fmt.Printf("Cache %s: %d entries\n", rootOptions.cachePath, count)

		return nil
	},
}

var cacheExportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Export the cache to a JSON seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := cache.Open(rootOptions.cachePath)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		count, err := cache.ExportToJSON(store, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Exported %d entries to %s\n", count, args[0])

		return nil
	},
}

var cacheImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import entries from a JSON seed file into the cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := cache.Open(rootOptions.cachePath)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		count, err := cache.ImportFromJSON(store, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d entries from %s\n", count, args[0])

		return nil
	},
}

var cacheSeedCmd = &cobra.Command{
	Use:   "seed <file.json>",
	Short: "Populate an empty cache from a JSON seed file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := cache.Open(rootOptions.cachePath)
		if err != nil {
			return err
		}
		defer store.DB().Close()

		seeded, count, err := cache.SeedIfEmpty(store, args[0])
		if err != nil {
			return err
		}

		if !seeded {
			fmt.Println("Cache is not empty, nothing to do.")

			return nil
		}

		fmt.Printf("Seeded %d entries from %s\n", count, args[0])

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheImportCmd)
	cacheCmd.AddCommand(cacheSeedCmd)
}
