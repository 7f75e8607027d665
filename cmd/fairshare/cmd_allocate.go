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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jinterlante1206/FairshareLocal/services/allocator/datatypes"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	allocateFile       string // Payload file with params and case records
	allocateURL        string // Allocator service base URL
	allocateJSONOutput bool   // Output raw JSON instead of the table
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Run a budget allocation against the allocator service",
	Long: `Sends an allocation payload (group constraints plus case records) to a
running allocator service and prints the per-recipient allocations and the
run summary.

Examples:
  fairshare allocate --file payload.json
  fairshare allocate --file payload.json --json
  fairshare allocate --file payload.json --url http://localhost:12310`,
	Run: runAllocateCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	allocateCmd.Flags().StringVarP(&allocateFile, "file", "f", "",
		"Payload file with params and case records (required)")
	allocateCmd.Flags().StringVar(&allocateURL, "url", "",
		"Allocator service base URL (default $FAIRSHARE_ALLOCATOR_URL or http://localhost:12310)")
	allocateCmd.Flags().BoolVar(&allocateJSONOutput, "json", false,
		"Output raw JSON for scripting")
	_ = allocateCmd.MarkFlagRequired("file")
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func allocatorBaseURL() string {
	url := allocateURL
	if url == "" {
		url = os.Getenv("FAIRSHARE_ALLOCATOR_URL")
	}
	if url == "" {
		url = "http://localhost:12310"
	}
	return strings.TrimSuffix(strings.Trim(url, "\"' "), "/")
}

func runAllocateCommand(cmd *cobra.Command, args []string) {
	payload, err := os.ReadFile(allocateFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read payload file: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	target := allocatorBaseURL() + "/v1/allocations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to reach the allocator at %s: %v\n", target, err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read response: %v\n", err)
		os.Exit(1)
	}
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Allocator returned status %d:\n%s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	if allocateJSONOutput {
		fmt.Println(string(body))
		return
	}

	var result datatypes.AllocationResponse
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse response: %v\n", err)
		os.Exit(1)
	}
	printAllocationTable(result)
}

// printAllocationTable renders the per-recipient rows and the summary.
func printAllocationTable(result datatypes.AllocationResponse) {
	fmt.Printf("Run %s (%d cases)\n\n", result.RunID, result.Count)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RECIPIENT\tREFERENCE\tALLOCATED\tMET MIN")
	for _, row := range result.Results.Allocations {
		met := "no"
		if row.MetMin {
			met = "yes"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%s\n", row.RecipientID, row.XGBReference, row.RLAllocation, met)
	}
	w.Flush()

	s := result.Results.Summary
	targetMet := "no"
	if s.MinTargetMet {
		targetMet = "yes"
	}
	fmt.Printf("\nBudget: %.2f  Allocated: %.2f  Helped: %d  Target met: %s\n",
		s.TotalBudget, s.TotalAllocated, s.PeopleHelped, targetMet)
}
