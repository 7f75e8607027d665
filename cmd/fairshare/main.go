// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fairshare",
	Short: "A CLI for the Fairshare budget allocation stack",
	Long: `Fairshare is a tool for running and inspecting budget allocations
for aid recipients against a deployed allocator service, and for
evaluating allocation scenarios offline.`,
}

func main() {
	rootCmd.AddCommand(allocateCmd)
	rootCmd.AddCommand(evaluateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
