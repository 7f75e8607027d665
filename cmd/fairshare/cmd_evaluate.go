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
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jinterlante1206/FairshareLocal/services/allocator/engine"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	evaluateFile    string // Scenario file
	evaluateVerbose bool   // Show per-recipient allocations
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate allocation scenarios offline",
	Long: `Runs the allocation engine locally over a file of scenarios with
precomputed scores and suggestions. No service or model sidecar is needed:
this is for checking how constraint changes play out before deploying them.

The scenario file is a JSON array:

  [
    {
      "name": "tight budget",
      "params": {"budget": 1000, "min_allocation": 100,
                 "max_allocation": 500, "min_people_to_help": 3},
      "recipients": [
        {"id": "CASE-A", "priority_score": 0.8, "suggested_allocation": 400}
      ]
    }
  ]

Examples:
  fairshare evaluate --file scenarios.json
  fairshare evaluate --file scenarios.json --verbose`,
	Run: runEvaluateCommand,
}

// =============================================================================
// COMMAND INITIALIZATION
// =============================================================================

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateFile, "file", "f", "",
		"Scenario file (required)")
	evaluateCmd.Flags().BoolVarP(&evaluateVerbose, "verbose", "v", false,
		"Show per-recipient allocations for each scenario")
	_ = evaluateCmd.MarkFlagRequired("file")
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

type evalParams struct {
	Budget          float64 `json:"budget"`
	MinAllocation   float64 `json:"min_allocation"`
	MaxAllocation   float64 `json:"max_allocation"`
	MinPeopleToHelp int     `json:"min_people_to_help"`
}

type evalRecipient struct {
	ID                  string  `json:"id"`
	PriorityScore       float64 `json:"priority_score"`
	SuggestedAllocation float64 `json:"suggested_allocation"`
}

type evalScenario struct {
	Name       string          `json:"name"`
	Params     evalParams      `json:"params"`
	Recipients []evalRecipient `json:"recipients"`
}

// =============================================================================
// COMMAND IMPLEMENTATION
// =============================================================================

func runEvaluateCommand(cmd *cobra.Command, args []string) {
	raw, err := os.ReadFile(evaluateFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read scenario file: %v\n", err)
		os.Exit(1)
	}

	var scenarios []evalScenario
	if err := json.Unmarshal(raw, &scenarios); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse scenario file: %v\n", err)
		os.Exit(1)
	}
	if len(scenarios) == 0 {
		fmt.Fprintln(os.Stderr, "Scenario file contains no scenarios")
		os.Exit(1)
	}

	eng, err := engine.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize the engine: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tBUDGET\tALLOCATED\tHELPED\tTARGET\tROUNDS")

	failed := 0
	for _, sc := range scenarios {
		cs := engine.ConstraintSet{
			TotalBudget:     sc.Params.Budget,
			MinAllocation:   sc.Params.MinAllocation,
			MaxAllocation:   sc.Params.MaxAllocation,
			MinPeopleTarget: sc.Params.MinPeopleToHelp,
		}
		recipients := make([]engine.Recipient, 0, len(sc.Recipients))
		for _, r := range sc.Recipients {
			recipients = append(recipients, engine.Recipient{
				ID:                  r.ID,
				PriorityScore:       r.PriorityScore,
				SuggestedAllocation: r.SuggestedAllocation,
			})
		}

		result, err := eng.Run(recipients, cs)
		if err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\tERROR: %v\t-\n", sc.Name, err)
			failed++
			continue
		}

		target := "miss"
		if result.Summary.MinTargetMet {
			target = "met"
		}
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d\t%s\t%d\n",
			sc.Name, cs.TotalBudget, result.Summary.TotalAllocated,
			result.Summary.PeopleHelped, target, result.Rounds)

		if evaluateVerbose {
			for _, r := range result.Recipients {
				fmt.Fprintf(w, "  %s\t\t%.2f\t\t\t\n", r.ID, engine.Round2(r.FinalAllocation))
			}
		}
	}
	w.Flush()

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "\n%d scenario(s) failed\n", failed)
		os.Exit(1)
	}
}
