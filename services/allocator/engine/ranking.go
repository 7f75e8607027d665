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

import "sort"

// Rank returns a copy of recipients ordered by priority score, descending.
//
// The sort is stable: recipients with equal scores keep their input order,
// which makes results reproducible given identical inputs. An empty input
// yields an empty ranking and the rest of the pipeline degenerates to a
// zero-allocation summary.
func Rank(recipients []Recipient) []Recipient {
	ranked := make([]Recipient, len(recipients))
	copy(ranked, recipients)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PriorityScore > ranked[j].PriorityScore
	})
	return ranked
}
