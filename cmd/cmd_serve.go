// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/jcodagnone/lanedist/api"
	"github.com/jcodagnone/lanedist/distance"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the resolution and distance JSON API (local only)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		resolver, store, err := buildResolver()
		if err != nil {
			return err
		}
		defer store.DB().Close()

		router, err := newRouter()
		if err != nil {
			return err
		}

		server := api.NewServer(resolver, distance.NewEngine(router), store)

		return server.Run(serveAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8080", "Listen address")
}
