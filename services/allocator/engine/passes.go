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

// InitialPass walks the ranked recipients once and converts each suggested
// allocation into a feasible grant.
//
// For each recipient in rank order the candidate amount is the suggestion
// clamped into [MinAllocation, MaxAllocation]. While the remaining budget
// still covers the floor, the recipient is granted
// min(clamped candidate, remaining); otherwise they are granted 0 and the
// pass moves on. Processing in descending-priority order means that under
// a short budget the recipients skipped are the lowest-priority suffix of
// the ranking, never the head.
//
// Once the budget drops below the floor it stays there for the rest of the
// pass (remaining only decreases), so a skipped recipient receives no
// further floor-level grant in this pass. The redistribution pass may
// still top them up; see Redistribute.
//
// The input slice is not modified; the returned state owns a fresh copy.
func InitialPass(ranked []Recipient, cs ConstraintSet) RunState {
	out := make([]Recipient, len(ranked))
	copy(out, ranked)

	remaining := cs.TotalBudget
	for i := range out {
		candidate := clamp(out[i].SuggestedAllocation, cs.MinAllocation, cs.MaxAllocation)
		if remaining >= cs.MinAllocation {
			granted := min(candidate, remaining)
			out[i].FinalAllocation = granted
			remaining -= granted
		} else {
			out[i].FinalAllocation = 0
		}
	}
	return RunState{Recipients: out, Remaining: remaining}
}

// Redistribute distributes any budget left after the initial pass to
// recipients with headroom, proportional to their priority score.
//
// Each round recomputes the eligible set (nonnegative allocation and
// headroom above the minimum increment), then walks it in ranked order
// giving each member min(headroom, remaining * score/totalNeed). The loop
// terminates when the eligible set is empty, when the total eligible score
// is non-positive, when the remaining budget or a whole round's progress
// falls below the minimum increment, or after tun.MaxRounds rounds.
//
// Returns the new state and the number of rounds that ran.
func Redistribute(st RunState, cs ConstraintSet, tun Tunables) (RunState, int) {
	out := make([]Recipient, len(st.Recipients))
	copy(out, st.Recipients)
	remaining := st.Remaining

	rounds := 0
	for remaining > tun.MinIncrement && rounds < tun.MaxRounds {
		rounds++

		eligible := make([]int, 0, len(out))
		totalNeed := 0.0
		for i := range out {
			if out[i].FinalAllocation >= 0 && cs.MaxAllocation-out[i].FinalAllocation > tun.MinIncrement {
				eligible = append(eligible, i)
				totalNeed += out[i].PriorityScore
			}
		}
		if len(eligible) == 0 || totalNeed <= 0 {
			break
		}

		distributed := 0.0
		for _, i := range eligible {
			if remaining <= tun.MinIncrement {
				break
			}
			headroom := cs.MaxAllocation - out[i].FinalAllocation
			needRatio := out[i].PriorityScore / totalNeed
			share := min(headroom, remaining*needRatio)
			if share > tun.MinIncrement {
				out[i].FinalAllocation += share
				remaining -= share
				distributed += share
			}
		}
		if distributed < tun.MinIncrement {
			break
		}
	}

	return RunState{Recipients: out, Remaining: remaining}, rounds
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
