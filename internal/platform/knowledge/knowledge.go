// Package knowledge holds the embedded reference table of medical conditions
// used by the diagnosis pipeline. It is a curated evidence source, not a
// clinical authority: entries carry the symptom vocabulary, severity class,
// endemic-region hints and risk factors the matching heuristics key on.
package knowledge

import "strings"

// Severity classifies how dangerous a condition is when untreated.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns the ordering of a severity class; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityModerate:
		return 1
	default:
		return 0
	}
}

// Condition is one entry in the reference knowledge source.
type Condition struct {
	Name         string
	SymptomTerms []string
	Severity     Severity
	RegionTerms  []string
	RiskFactors  []string
	// Prevalence is a base-rate weight in [0,1]; commoner conditions score
	// higher on equal symptom evidence.
	Prevalence float64
}

var conditions = []Condition{
	{
		Name:         "Common Cold",
		SymptomTerms: []string{"cough", "sore throat", "runny nose", "sneezing", "congestion", "headache"},
		Severity:     SeverityLow,
		RiskFactors:  []string{"infant"},
		Prevalence:   0.9,
	},
	{
		Name:         "Flu",
		SymptomTerms: []string{"fever", "cough", "sore throat", "body pain", "fatigue", "headache", "chills"},
		Severity:     SeverityModerate,
		RiskFactors:  []string{"elderly", "infant", "asthma", "copd", "pregnancy"},
		Prevalence:   0.8,
	},
	{
		Name:         "Dengue",
		SymptomTerms: []string{"fever", "headache", "body pain", "rash", "joint pain", "eye pain", "nausea"},
		Severity:     SeverityHigh,
		RegionTerms:  []string{"dengue", "tropical", "india", "southeast asia", "brazil", "philippines", "monsoon"},
		RiskFactors:  []string{"prior dengue"},
		Prevalence:   0.5,
	},
	{
		Name:         "Malaria",
		SymptomTerms: []string{"fever", "chills", "sweating", "headache", "body pain", "nausea", "vomiting"},
		Severity:     SeverityHigh,
		RegionTerms:  []string{"malaria", "tropical", "africa", "india", "southeast asia", "swamp"},
		RiskFactors:  []string{"pregnancy", "infant"},
		Prevalence:   0.45,
	},
	{
		Name:         "Typhoid",
		SymptomTerms: []string{"fever", "abdominal pain", "headache", "weakness", "constipation", "diarrhea"},
		Severity:     SeverityHigh,
		RegionTerms:  []string{"typhoid", "tropical", "india", "contaminated water"},
		Prevalence:   0.35,
	},
	{
		Name:         "COVID-19",
		SymptomTerms: []string{"fever", "cough", "shortness of breath", "fatigue", "loss of smell", "loss of taste", "sore throat"},
		Severity:     SeverityHigh,
		RiskFactors:  []string{"elderly", "diabetes", "hypertension", "obesity", "immunocompromised"},
		Prevalence:   0.6,
	},
	{
		Name:         "Pneumonia",
		SymptomTerms: []string{"fever", "cough", "shortness of breath", "chest pain", "fatigue", "chills"},
		Severity:     SeverityHigh,
		RiskFactors:  []string{"elderly", "infant", "smoking", "copd", "immunocompromised"},
		Prevalence:   0.4,
	},
	{
		Name:         "Gastroenteritis",
		SymptomTerms: []string{"diarrhea", "vomiting", "nausea", "abdominal pain", "fever", "dehydration"},
		Severity:     SeverityModerate,
		RegionTerms:  []string{"contaminated water"},
		RiskFactors:  []string{"infant", "elderly"},
		Prevalence:   0.7,
	},
	{
		Name:         "Migraine",
		SymptomTerms: []string{"headache", "nausea", "light sensitivity", "aura", "vomiting"},
		Severity:     SeverityLow,
		RiskFactors:  []string{"female", "stress"},
		Prevalence:   0.6,
	},
	{
		Name:         "Meningitis",
		SymptomTerms: []string{"fever", "headache", "stiff neck", "confusion", "light sensitivity", "rash"},
		Severity:     SeverityCritical,
		RiskFactors:  []string{"infant", "immunocompromised"},
		Prevalence:   0.1,
	},
	{
		Name:         "Heart Attack",
		SymptomTerms: []string{"chest pain", "shortness of breath", "arm pain", "sweating", "nausea", "dizziness"},
		Severity:     SeverityCritical,
		RiskFactors:  []string{"elderly", "male", "smoking", "hypertension", "diabetes", "obesity", "heart disease"},
		Prevalence:   0.25,
	},
	{
		Name:         "Appendicitis",
		SymptomTerms: []string{"abdominal pain", "nausea", "vomiting", "fever", "loss of appetite"},
		Severity:     SeverityCritical,
		Prevalence:   0.2,
	},
	{
		Name:         "Urinary Tract Infection",
		SymptomTerms: []string{"burning urination", "frequent urination", "abdominal pain", "fever", "cloudy urine"},
		Severity:     SeverityModerate,
		RiskFactors:  []string{"female", "diabetes", "elderly"},
		Prevalence:   0.55,
	},
	{
		Name:         "Asthma",
		SymptomTerms: []string{"shortness of breath", "wheezing", "cough", "chest tightness"},
		Severity:     SeverityModerate,
		RiskFactors:  []string{"asthma", "smoking", "allergy"},
		Prevalence:   0.5,
	},
	{
		Name:         "Chikungunya",
		SymptomTerms: []string{"fever", "joint pain", "rash", "headache", "body pain", "fatigue"},
		Severity:     SeverityModerate,
		RegionTerms:  []string{"chikungunya", "tropical", "india", "africa", "monsoon"},
		Prevalence:   0.3,
	},
	{
		Name:         "Hepatitis A",
		SymptomTerms: []string{"jaundice", "fatigue", "nausea", "abdominal pain", "fever", "dark urine"},
		Severity:     SeverityModerate,
		RegionTerms:  []string{"contaminated water", "tropical"},
		Prevalence:   0.25,
	},
}

// Conditions returns the full reference table. Callers must not mutate the
// returned entries.
func Conditions() []Condition {
	return conditions
}

// Lookup finds a condition by case-insensitive name.
func Lookup(name string) (Condition, bool) {
	for _, c := range conditions {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Condition{}, false
}

// SeverityOf returns the severity class of a named condition, defaulting to
// moderate for conditions outside the reference table so unknown candidates
// are not treated as harmless.
func SeverityOf(name string) Severity {
	if c, ok := Lookup(name); ok {
		return c.Severity
	}
	return SeverityModerate
}
