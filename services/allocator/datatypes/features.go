// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file maps raw case records to the feature vectors consumed by the
// scoring and policy models. The element order is the training-time
// contract with the model sidecars: changing it silently breaks every
// deployed model, so both vector builders and the tests pin it.
package datatypes

// FeatureCount is the number of case features, excluding the appended
// constraint scalars.
const FeatureCount = 20

// CaseRecord is one aid case as submitted by the case-management system.
//
// Subgroup pointers may be nil; missing groups contribute their default
// feature values. Optional fields inside the groups are pointers when
// their default is not the Go zero value (IsActive and HasElectricity
// default to true, FamilySize to 1, OvercrowdingRatio to 1.0).
type CaseRecord struct {
	RecipientID string `json:"RecipientId" binding:"required"`

	CaseMetadata       *CaseMetadata       `json:"CaseMetadata"`
	Demographics       *Demographics       `json:"Demographics"`
	MedicalProfile     *MedicalProfile     `json:"MedicalProfile"`
	HousingAndLiving   *HousingAndLiving   `json:"HousingAndLiving"`
	FinancialLiquidity *FinancialLiquidity `json:"FinancialLiquidity"`
	FinancialHistory   *FinancialHistory   `json:"FinancialHistory"`
}

type CaseMetadata struct {
	Status        float64 `json:"Status"`
	ReopenedCount float64 `json:"ReopenedCount"`
	IsActive      *bool   `json:"IsActive"`
}

type Demographics struct {
	FamilySize           *float64 `json:"FamilySize"`
	DeceasedParentCount  float64  `json:"DeceasedParentCount"`
	EducationBurden      float64  `json:"EducationBurden"`
	MaritalVulnerability float64  `json:"MaritalVulnerability"`
}

type MedicalProfile struct {
	DisabilityWeight       float64 `json:"DisabilityWeight"`
	ChronicConditionWeight float64 `json:"ChronicConditionWeight"`
	RequiresUrgentCare     bool    `json:"RequiresUrgentCare"`
	MedicationCount        float64 `json:"MedicationCount"`
}

type HousingAndLiving struct {
	IsRented              bool     `json:"IsRented"`
	MonthlyRent           float64  `json:"MonthlyRent"`
	InfrastructureDeficit float64  `json:"InfrastructureDeficit"`
	HasElectricity        *bool    `json:"HasElectricity"`
	OvercrowdingRatio     *float64 `json:"OvercrowdingRatio"`
}

type FinancialLiquidity struct {
	CurrentCardBalance float64 `json:"CurrentCardBalance"`
	CardStatus         float64 `json:"CardStatus"`
}

type FinancialHistory struct {
	TotalReceivedLastMonth float64 `json:"TotalReceivedLastMonth"`
}

// FeatureVector flattens the record into the model-input order used during
// training. scorerSuggestion is the scorer's reference value appended as
// the final element (zero before scoring has run).
func (r CaseRecord) FeatureVector(scorerSuggestion float64) []float64 {
	v := make([]float64, 0, FeatureCount)

	var caseStatus, reopened, isActive float64 = 0, 0, 1
	if r.CaseMetadata != nil {
		caseStatus = r.CaseMetadata.Status
		reopened = r.CaseMetadata.ReopenedCount
		isActive = boolFeature(r.CaseMetadata.IsActive, true)
	}
	v = append(v, caseStatus, reopened, isActive)

	var familySize float64 = 1
	var deceased, eduBurden, maritalVuln float64
	if r.Demographics != nil {
		if r.Demographics.FamilySize != nil {
			familySize = *r.Demographics.FamilySize
		}
		deceased = r.Demographics.DeceasedParentCount
		eduBurden = r.Demographics.EducationBurden
		maritalVuln = r.Demographics.MaritalVulnerability
	}
	v = append(v, familySize, deceased, eduBurden, maritalVuln)

	var disability, chronic, urgent, medCount float64
	if r.MedicalProfile != nil {
		disability = r.MedicalProfile.DisabilityWeight
		chronic = r.MedicalProfile.ChronicConditionWeight
		if r.MedicalProfile.RequiresUrgentCare {
			urgent = 1
		}
		medCount = r.MedicalProfile.MedicationCount
	}
	v = append(v, disability, chronic, urgent, medCount)

	var isRented, rent, infra float64
	var elec float64 = 1
	var ratio float64 = 1.0
	if r.HousingAndLiving != nil {
		if r.HousingAndLiving.IsRented {
			isRented = 1
		}
		rent = r.HousingAndLiving.MonthlyRent
		infra = r.HousingAndLiving.InfrastructureDeficit
		elec = boolFeature(r.HousingAndLiving.HasElectricity, true)
		if r.HousingAndLiving.OvercrowdingRatio != nil {
			ratio = *r.HousingAndLiving.OvercrowdingRatio
		}
	}
	v = append(v, isRented, rent, infra, elec, ratio)

	var balance, cardStatus float64
	if r.FinancialLiquidity != nil {
		balance = r.FinancialLiquidity.CurrentCardBalance
		cardStatus = r.FinancialLiquidity.CardStatus
	}
	v = append(v, balance, cardStatus)

	var lastMonth float64
	if r.FinancialHistory != nil {
		lastMonth = r.FinancialHistory.TotalReceivedLastMonth
	}
	v = append(v, lastMonth, scorerSuggestion)

	return v
}

// PolicyObservation builds the policy model's input: the feature vector
// with the constraint scalars appended, matching the observation space the
// policy was trained against.
func (r CaseRecord) PolicyObservation(scorerSuggestion, budget, minAlloc, maxAlloc float64) []float64 {
	return append(r.FeatureVector(scorerSuggestion), budget, minAlloc, maxAlloc)
}

func boolFeature(b *bool, def bool) float64 {
	v := def
	if b != nil {
		v = *b
	}
	if v {
		return 1
	}
	return 0
}
