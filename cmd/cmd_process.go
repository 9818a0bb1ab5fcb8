// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/jcodagnone/lanedist/distance"
	"github.com/jcodagnone/lanedist/pipeline"
	"github.com/spf13/cobra"
)

var processOutput string

var processCmd = &cobra.Command{
	Use:   "process <input.csv>",
	Short: "Resolve every lane in a table and annotate it with distances",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := pipeline.LoadInput(args[0])
		if err != nil {
			return err
		}

		resolver, store, err := buildResolver()
		if err != nil {
			return err
		}
		defer store.DB().Close()

		router, err := newRouter()
		if err != nil {
			return err
		}

		driver, err := pipeline.NewDriver(&pipeline.Options{
			Resolver:     resolver,
			Engine:       distance.NewEngine(router),
			ShowProgress: true,
		})
		if err != nil {
			return err
		}

		records := driver.Run(cmd.Context(), input.Rows())

		if err := pipeline.SaveOutput(processOutput, input, records); err != nil {
			return err
		}

		fmt.Printf("Wrote %d lanes to %s\n", len(records), processOutput)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVarP(&processOutput, "output", "o", "", "Output CSV path")
	_ = processCmd.MarkFlagRequired("output")
}
