// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"math"
	"strings"
	"testing"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

func threeRecipients() []Recipient {
	return []Recipient{
		{ID: "R1", PriorityScore: 9, SuggestedAllocation: 400},
		{ID: "R2", PriorityScore: 5, SuggestedAllocation: 400},
		{ID: "R3", PriorityScore: 1, SuggestedAllocation: 400},
	}
}

func TestRun_ScenarioSufficiency(t *testing.T) {
	e := newTestEngine(t)
	cs := ConstraintSet{TotalBudget: 1200, MinAllocation: 100, MaxAllocation: 500, MinPeopleTarget: 3}

	res, err := e.Run(threeRecipients(), cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for _, r := range res.Recipients {
		if r.FinalAllocation < 400 {
			t.Errorf("%s allocation = %v, want >= 400", r.ID, r.FinalAllocation)
		}
		if r.FinalAllocation > cs.MaxAllocation {
			t.Errorf("%s allocation = %v, exceeds cap %v", r.ID, r.FinalAllocation, cs.MaxAllocation)
		}
	}
	if res.Summary.TotalAllocated > cs.TotalBudget {
		t.Errorf("total allocated = %v, exceeds budget %v", res.Summary.TotalAllocated, cs.TotalBudget)
	}
	if res.Summary.PeopleHelped != 3 {
		t.Errorf("people helped = %d, want 3", res.Summary.PeopleHelped)
	}
	if !res.Summary.MinTargetMet {
		t.Error("min target met = false, want true")
	}
}

func TestRun_ScenarioScarcity(t *testing.T) {
	e := newTestEngine(t)
	cs := ConstraintSet{TotalBudget: 250, MinAllocation: 100, MaxAllocation: 500, MinPeopleTarget: 3}

	res, err := e.Run(threeRecipients(), cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Recipients come back ranked; the score-1 case is last and gets the
	// smallest share (here: nothing).
	last := res.Recipients[len(res.Recipients)-1]
	if last.ID != "R3" {
		t.Fatalf("last ranked recipient = %s, want R3", last.ID)
	}
	for _, r := range res.Recipients {
		if last.FinalAllocation > r.FinalAllocation {
			t.Errorf("R3 received %v, more than %s's %v", last.FinalAllocation, r.ID, r.FinalAllocation)
		}
	}
	if res.Summary.TotalAllocated > 250 {
		t.Errorf("total allocated = %v, exceeds budget 250", res.Summary.TotalAllocated)
	}
	if res.Summary.MinTargetMet {
		t.Error("min target met = true, want false under scarcity")
	}
}

func TestRun_ScenarioSurplusRedistribution(t *testing.T) {
	e := newTestEngine(t)
	cs := ConstraintSet{TotalBudget: 1000, MinAllocation: 50, MaxAllocation: 600, MinPeopleTarget: 2}
	recipients := []Recipient{
		{ID: "R1", PriorityScore: 8, SuggestedAllocation: 100},
		{ID: "R2", PriorityScore: 2, SuggestedAllocation: 100},
	}

	res, err := e.Run(recipients, cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if res.Recipients[0].FinalAllocation != 600 {
		t.Errorf("R1 allocation = %v, want 600 (pushed to cap)", res.Recipients[0].FinalAllocation)
	}
	if res.Recipients[1].FinalAllocation != 400 {
		t.Errorf("R2 allocation = %v, want 400 (absorbs the rest)", res.Recipients[1].FinalAllocation)
	}
	if res.Summary.TotalAllocated != 1000 {
		t.Errorf("total allocated = %v, want 1000", res.Summary.TotalAllocated)
	}
}

func TestRun_ScenarioZeroBudget(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name          string
		target        int
		wantTargetMet bool
	}{
		{"target zero", 0, true},
		{"target positive", 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := ConstraintSet{TotalBudget: 0, MinAllocation: 100, MaxAllocation: 500, MinPeopleTarget: tt.target}

			res, err := e.Run(threeRecipients(), cs)
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}

			for _, r := range res.Recipients {
				if r.FinalAllocation != 0 {
					t.Errorf("%s allocation = %v, want 0", r.ID, r.FinalAllocation)
				}
			}
			if res.Summary.PeopleHelped != 0 {
				t.Errorf("people helped = %d, want 0", res.Summary.PeopleHelped)
			}
			if res.Summary.MinTargetMet != tt.wantTargetMet {
				t.Errorf("min target met = %v, want %v", res.Summary.MinTargetMet, tt.wantTargetMet)
			}
		})
	}
}

func TestRun_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	cs := ConstraintSet{TotalBudget: 777.77, MinAllocation: 33.3, MaxAllocation: 250.1, MinPeopleTarget: 4}
	recipients := []Recipient{
		{ID: "a", PriorityScore: 3.14, SuggestedAllocation: 120.5},
		{ID: "b", PriorityScore: 3.14, SuggestedAllocation: 90.25},
		{ID: "c", PriorityScore: 7.7, SuggestedAllocation: 400},
		{ID: "d", PriorityScore: 0.1, SuggestedAllocation: 10},
	}

	first, err := e.Run(recipients, cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	second, err := e.Run(recipients, cs)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	for i := range first.Recipients {
		a, b := first.Recipients[i], second.Recipients[i]
		if a.ID != b.ID || a.FinalAllocation != b.FinalAllocation {
			t.Errorf("run divergence at %d: %s=%v vs %s=%v", i, a.ID, a.FinalAllocation, b.ID, b.FinalAllocation)
		}
	}
	if first.Summary != second.Summary {
		t.Errorf("summary divergence: %+v vs %+v", first.Summary, second.Summary)
	}
}

func TestRun_BudgetConservation(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		cs   ConstraintSet
	}{
		{"tight", ConstraintSet{TotalBudget: 150, MinAllocation: 100, MaxAllocation: 500}},
		{"ample", ConstraintSet{TotalBudget: 5000, MinAllocation: 100, MaxAllocation: 500}},
		{"surplus", ConstraintSet{TotalBudget: 2000, MinAllocation: 50, MaxAllocation: 900}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Run(threeRecipients(), tt.cs)
			if err != nil {
				t.Fatalf("Run() error: %v", err)
			}

			total := 0.0
			for _, r := range res.Recipients {
				if r.FinalAllocation < 0 || r.FinalAllocation > tt.cs.MaxAllocation {
					t.Errorf("%s allocation = %v, out of bounds", r.ID, r.FinalAllocation)
				}
				total += r.FinalAllocation
			}
			if total > tt.cs.TotalBudget+1e-6 {
				t.Errorf("sum of grants = %v, exceeds budget %v", total, tt.cs.TotalBudget)
			}
			if math.Abs(res.Summary.TotalAllocated-Round2(total)) > 0.01 {
				t.Errorf("summary total = %v, sum of grants = %v", res.Summary.TotalAllocated, total)
			}
		})
	}
}

func TestRun_InputValidation(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name       string
		cs         ConstraintSet
		recipients []Recipient
		wantField  string
	}{
		{
			name:       "negative budget",
			cs:         ConstraintSet{TotalBudget: -1, MinAllocation: 10, MaxAllocation: 20},
			recipients: threeRecipients(),
			wantField:  "TotalBudget",
		},
		{
			name:       "max below min",
			cs:         ConstraintSet{TotalBudget: 100, MinAllocation: 50, MaxAllocation: 20},
			recipients: threeRecipients(),
			wantField:  "MaxAllocation",
		},
		{
			name:       "negative people target",
			cs:         ConstraintSet{TotalBudget: 100, MinAllocation: 10, MaxAllocation: 20, MinPeopleTarget: -1},
			recipients: threeRecipients(),
			wantField:  "MinPeopleTarget",
		},
		{
			name:       "empty recipients",
			cs:         ConstraintSet{TotalBudget: 100, MinAllocation: 10, MaxAllocation: 20},
			recipients: nil,
			wantField:  "recipient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Run(tt.recipients, tt.cs)
			if err == nil {
				t.Fatal("Run() returned nil error, want validation failure")
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q does not name %q", err.Error(), tt.wantField)
			}
		})
	}
}

func TestLoadTunables_EmbeddedDefaults(t *testing.T) {
	tun, err := LoadTunables()
	if err != nil {
		t.Fatalf("LoadTunables() error: %v", err)
	}
	if tun.MinIncrement != 1.0 {
		t.Errorf("min increment = %v, want 1.0", tun.MinIncrement)
	}
	if tun.MaxRounds != 10 {
		t.Errorf("max rounds = %d, want 10", tun.MaxRounds)
	}
}

func TestNewWithTunables_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		tun  Tunables
	}{
		{"zero increment", Tunables{MinIncrement: 0, MaxRounds: 10}},
		{"negative increment", Tunables{MinIncrement: -1, MaxRounds: 10}},
		{"zero rounds", Tunables{MinIncrement: 1, MaxRounds: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWithTunables(tt.tun); err == nil {
				t.Error("NewWithTunables() accepted invalid tunables")
			}
		})
	}
}
