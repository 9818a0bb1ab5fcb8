// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jcodagnone/lanedist/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
