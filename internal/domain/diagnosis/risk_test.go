package diagnosis

import (
	"context"
	"testing"
)

func factorNames(factors []RiskFactor) map[string]float64 {
	names := make(map[string]float64, len(factors))
	for _, f := range factors {
		names[f.Name] = f.Weight
	}
	return names
}

func TestRiskAssessor_Demographics(t *testing.T) {
	a := NewRiskAssessor()

	result := a.Run(context.Background(), PatientInput{Age: 70, Gender: "female"}, Context{})
	if !result.Success {
		t.Fatalf("stage failed: %s", result.Error)
	}

	names := factorNames(result.Risk.Factors)
	if names["elderly"] != ageFactorWeight {
		t.Errorf("expected elderly factor with weight %.1f, got %v", ageFactorWeight, names)
	}
	if names["female"] != genderFactorWeight {
		t.Errorf("expected female factor, got %v", names)
	}
	if _, ok := names["infant"]; ok {
		t.Error("a 70 year old is not an infant")
	}
}

func TestRiskAssessor_HistoryTerms(t *testing.T) {
	a := NewRiskAssessor()

	in := PatientInput{
		Age:            40,
		MedicalHistory: []string{"Type 2 diabetic since 2015", "former smoker"},
	}
	result := a.Run(context.Background(), in, Context{})

	names := factorNames(result.Risk.Factors)
	if _, ok := names["diabetes"]; !ok {
		t.Errorf("expected diabetes factor, got %v", names)
	}
	if _, ok := names["smoking"]; !ok {
		t.Errorf("expected smoking factor, got %v", names)
	}
}

func TestRiskAssessor_AdjustmentsTargetMatchingConditions(t *testing.T) {
	a := NewRiskAssessor()

	in := PatientInput{
		Age:            72,
		Gender:         "male",
		MedicalHistory: []string{"hypertension", "diabetes"},
	}
	result := a.Run(context.Background(), in, Context{})

	adj := result.Risk.Adjustments
	// Heart Attack lists elderly, male, hypertension and diabetes: four
	// matches would exceed the cap.
	if got := adj["Heart Attack"]; got != riskAdjustmentCap {
		t.Errorf("expected capped adjustment for Heart Attack, got %f", got)
	}
	covid := adj["COVID-19"]
	if covid <= 1 {
		t.Errorf("expected an elevated COVID-19 adjustment, got %f", covid)
	}
	if covid > riskAdjustmentCap {
		t.Errorf("adjustment exceeds cap: %f", covid)
	}
	if _, ok := adj["Appendicitis"]; ok {
		t.Error("conditions with no matching risk factors must get no adjustment")
	}
}

func TestRiskAssessor_UrgencyFloor(t *testing.T) {
	a := NewRiskAssessor()

	calm := a.Run(context.Background(), PatientInput{Age: 30}, Context{})
	if calm.Urgency != UrgencyLow {
		t.Errorf("expected Low urgency for a healthy adult, got %s", calm.Urgency)
	}

	loaded := a.Run(context.Background(), PatientInput{
		Age:            80,
		Gender:         "male",
		MedicalHistory: []string{"diabetes", "heart disease", "smoking"},
	}, Context{})
	if loaded.Urgency != UrgencyModerate {
		t.Errorf("expected Moderate urgency floor for a loaded risk profile, got %s", loaded.Urgency)
	}
}

func TestRiskAssessor_ContextRiskFactorsMerged(t *testing.T) {
	a := NewRiskAssessor()

	pctx := Context{RiskFactors: []string{"Asthma"}}
	result := a.Run(context.Background(), PatientInput{Age: 25}, pctx)

	names := factorNames(result.Risk.Factors)
	if _, ok := names["asthma"]; !ok {
		t.Errorf("expected prior-session risk factors to carry over, got %v", names)
	}
}
