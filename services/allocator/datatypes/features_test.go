// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"testing"
)

func boolPtr(b bool) *bool       { return &b }
func f64Ptr(v float64) *float64  { return &v }

func fullRecord() CaseRecord {
	return CaseRecord{
		RecipientID: "R1",
		CaseMetadata: &CaseMetadata{
			Status:        2,
			ReopenedCount: 1,
			IsActive:      boolPtr(false),
		},
		Demographics: &Demographics{
			FamilySize:           f64Ptr(6),
			DeceasedParentCount:  1,
			EducationBurden:      3,
			MaritalVulnerability: 2,
		},
		MedicalProfile: &MedicalProfile{
			DisabilityWeight:       0.7,
			ChronicConditionWeight: 0.4,
			RequiresUrgentCare:     true,
			MedicationCount:        5,
		},
		HousingAndLiving: &HousingAndLiving{
			IsRented:              true,
			MonthlyRent:           350,
			InfrastructureDeficit: 2,
			HasElectricity:        boolPtr(false),
			OvercrowdingRatio:     f64Ptr(2.5),
		},
		FinancialLiquidity: &FinancialLiquidity{
			CurrentCardBalance: 12.5,
			CardStatus:         1,
		},
		FinancialHistory: &FinancialHistory{
			TotalReceivedLastMonth: 200,
		},
	}
}

func TestFeatureVector_OrderIsTrainingContract(t *testing.T) {
	got := fullRecord().FeatureVector(0.42)

	want := []float64{
		2, 1, 0, // case: status, reopened, is_active
		6, 1, 3, 2, // demo: family size, deceased, edu burden, marital vuln
		0.7, 0.4, 1, 5, // med: disability, chronic, urgent, count
		1, 350, 2, 0, 2.5, // house: rented, rent, infra, elec, ratio
		12.5, 1, // fin: balance, status
		200,  // hist: last month
		0.42, // scorer suggestion
	}

	if len(got) != FeatureCount {
		t.Fatalf("vector length = %d, want %d", len(got), FeatureCount)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("feature %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFeatureVector_DefaultsForMissingGroups(t *testing.T) {
	got := CaseRecord{RecipientID: "R2"}.FeatureVector(0)

	want := []float64{
		0, 0, 1, // is_active defaults to true
		1, 0, 0, 0, // family size defaults to 1
		0, 0, 0, 0,
		0, 0, 0, 1, 1.0, // electricity defaults to true, ratio to 1.0
		0, 0,
		0,
		0,
	}

	if len(got) != FeatureCount {
		t.Fatalf("vector length = %d, want %d", len(got), FeatureCount)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("feature %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestPolicyObservation_AppendsConstraints(t *testing.T) {
	got := fullRecord().PolicyObservation(0.42, 5000, 50, 1000)

	if len(got) != FeatureCount+3 {
		t.Fatalf("observation length = %d, want %d", len(got), FeatureCount+3)
	}
	tail := got[FeatureCount:]
	if tail[0] != 5000 || tail[1] != 50 || tail[2] != 1000 {
		t.Errorf("constraint tail = %v, want [5000 50 1000]", tail)
	}
}

func TestAllocationParams_ToConstraintSet(t *testing.T) {
	p := AllocationParams{
		Budget:          f64Ptr(5000),
		MinAllocation:   f64Ptr(50),
		MaxAllocation:   f64Ptr(1000),
		MinPeopleToHelp: intPtr(5),
	}

	cs := p.ToConstraintSet()

	if cs.TotalBudget != 5000 || cs.MinAllocation != 50 || cs.MaxAllocation != 1000 || cs.MinPeopleTarget != 5 {
		t.Errorf("constraint set = %+v", cs)
	}
}

func TestFeedbackEdit_Validate(t *testing.T) {
	tests := []struct {
		name    string
		edit    FeedbackEdit
		wantErr bool
	}{
		{
			name:    "complete",
			edit:    FeedbackEdit{RecipientID: "R1", HumanFinal: f64Ptr(550), AISuggested: f64Ptr(408.57)},
			wantErr: false,
		},
		{
			name:    "missing recipient",
			edit:    FeedbackEdit{HumanFinal: f64Ptr(550), AISuggested: f64Ptr(408.57)},
			wantErr: true,
		},
		{
			name:    "missing human value",
			edit:    FeedbackEdit{RecipientID: "R1", AISuggested: f64Ptr(408.57)},
			wantErr: true,
		},
		{
			name:    "missing ai value",
			edit:    FeedbackEdit{RecipientID: "R1", HumanFinal: f64Ptr(550)},
			wantErr: true,
		},
		{
			name:    "zero values are present values",
			edit:    FeedbackEdit{RecipientID: "R1", HumanFinal: f64Ptr(0), AISuggested: f64Ptr(0)},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.edit.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func intPtr(v int) *int { return &v }
