// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resolveCode string

var resolveCmd = &cobra.Command{
	Use:   "resolve <place>",
	Short: "Resolve a single place name or code to coordinates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var place string
		if len(args) > 0 {
			place = args[0]
		}

		if place == "" && resolveCode == "" {
			return fmt.Errorf("a place name or --code is required")
		}

		resolver, store, err := buildResolver()
		if err != nil {
			return err
		}
		defer store.DB().Close()

		result, err := resolver.ResolvePlace(cmd.Context(), place, resolveCode)
		if err != nil {
			return err
		}

		fmt.Printf("latitude:  %.6f\n", result.Point.Lat)
		fmt.Printf("longitude: %.6f\n", result.Point.Lng)
		fmt.Printf("ambiguous: %t\n", result.Ambiguous)
		fmt.Printf("source:    %s\n", result.Provenance)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveCode, "code", "", "Explicit standardized location code")
}
