package diagnosis

import (
	"context"
	"sort"
	"strings"

	"github.com/mediq/mediq/internal/platform/knowledge"
)

// Demographic boundaries and weights for the risk profile.
const (
	infantAgeLimit  = 5
	elderlyAgeFloor = 65

	ageFactorWeight     = 1.5
	genderFactorWeight  = 0.5
	historyFactorWeight = 1.0

	// riskAdjustmentStep is the per-matching-factor confidence multiplier
	// increment applied by the aggregator; riskAdjustmentCap bounds it.
	riskAdjustmentStep = 0.08
	riskAdjustmentCap  = 1.25

	// elevatedRiskThreshold is the summed factor weight above which the risk
	// stage flags a Moderate urgency floor.
	elevatedRiskThreshold = 3.5
)

// historyRiskTerms maps free-text history entries onto canonical risk factors.
var historyRiskTerms = map[string]string{
	"diabetes":            "diabetes",
	"diabetic":            "diabetes",
	"hypertension":        "hypertension",
	"high blood pressure": "hypertension",
	"asthma":              "asthma",
	"smoking":             "smoking",
	"smoker":              "smoking",
	"obesity":             "obesity",
	"obese":               "obesity",
	"heart disease":       "heart disease",
	"cardiac":             "heart disease",
	"copd":                "copd",
	"pregnant":            "pregnancy",
	"pregnancy":           "pregnancy",
	"hiv":                 "immunocompromised",
	"cancer":              "immunocompromised",
	"chemotherapy":        "immunocompromised",
	"immunocompromised":   "immunocompromised",
	"dengue":              "prior dengue",
	"allergy":             "allergy",
	"allergies":           "allergy",
}

// RiskAssessor combines age, gender and historical risk factors into weighted
// per-condition confidence adjustments. It never produces a diagnosis on its
// own; the aggregator applies its adjustments.
type RiskAssessor struct{}

func NewRiskAssessor() *RiskAssessor { return &RiskAssessor{} }

func (a *RiskAssessor) Kind() StageKind { return StageRisk }

func (a *RiskAssessor) Run(_ context.Context, in PatientInput, pctx Context) StageResult {
	factors := deriveRiskFactors(in, pctx)

	names := make(map[string]bool, len(factors))
	var weightSum float64
	for _, f := range factors {
		names[f.Name] = true
		weightSum += f.Weight
	}

	adjustments := make(map[string]float64)
	for _, cond := range knowledge.Conditions() {
		matches := 0
		for _, rf := range cond.RiskFactors {
			if names[rf] {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		mult := 1 + riskAdjustmentStep*float64(matches)
		if mult > riskAdjustmentCap {
			mult = riskAdjustmentCap
		}
		adjustments[cond.Name] = mult
	}

	urgency := UrgencyLow
	if weightSum >= elevatedRiskThreshold {
		urgency = UrgencyModerate
	}

	return StageResult{
		Stage:   StageRisk,
		Success: true,
		Urgency: urgency,
		Risk:    &RiskPayload{Factors: factors, Adjustments: adjustments},
	}
}

func deriveRiskFactors(in PatientInput, pctx Context) []RiskFactor {
	seen := make(map[string]bool)
	var factors []RiskFactor
	add := func(name string, weight float64) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		factors = append(factors, RiskFactor{Name: name, Weight: weight})
	}

	if in.Age > 0 && in.Age < infantAgeLimit {
		add("infant", ageFactorWeight)
	}
	if in.Age >= elderlyAgeFloor {
		add("elderly", ageFactorWeight)
	}

	switch in.Gender {
	case "male", "m":
		add("male", genderFactorWeight)
	case "female", "f":
		add("female", genderFactorWeight)
	}

	for _, entry := range in.MedicalHistory {
		lowered := strings.ToLower(entry)
		matched := matchHistoryTerms(lowered)
		for _, term := range matched {
			add(term, historyFactorWeight)
		}
	}

	for _, rf := range pctx.RiskFactors {
		add(strings.ToLower(rf), historyFactorWeight)
	}

	return factors
}

// matchHistoryTerms returns the canonical risk factors found in one history
// entry, in deterministic order.
func matchHistoryTerms(entry string) []string {
	var matched []string
	for term := range historyRiskTerms {
		if strings.Contains(entry, term) {
			matched = append(matched, historyRiskTerms[term])
		}
	}
	sort.Strings(matched)
	return matched
}
