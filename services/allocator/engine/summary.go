// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import "math"

// Summarize derives the run-level report from the final state.
//
// TotalAllocated is computed as TotalBudget - Remaining, which equals the
// sum of grants exactly because Remaining only ever decreased by granted
// amounts. A recipient counts as helped when their final allocation is at
// or above the floor. Monetary outputs are rounded to 2 decimal places for
// presentation; engine state stays full precision.
func Summarize(st RunState, cs ConstraintSet) Summary {
	helped := 0
	for i := range st.Recipients {
		if st.Recipients[i].FinalAllocation >= cs.MinAllocation {
			helped++
		}
	}
	return Summary{
		TotalBudget:    cs.TotalBudget,
		TotalAllocated: Round2(cs.TotalBudget - st.Remaining),
		PeopleHelped:   helped,
		MinTargetMet:   helped >= cs.MinPeopleTarget,
	}
}

// Round2 rounds a monetary value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
