package diagnosis

import (
	"context"
	"strings"
)

// symptomSynonyms maps colloquial phrasings onto the canonical symptom
// vocabulary shared with the knowledge base.
var symptomSynonyms = map[string]string{
	"body ache":            "body pain",
	"body aches":           "body pain",
	"myalgia":              "body pain",
	"muscle pain":          "body pain",
	"temperature":          "fever",
	"high temperature":     "fever",
	"feverish":             "fever",
	"throwing up":          "vomiting",
	"puking":               "vomiting",
	"stomach ache":         "abdominal pain",
	"stomach pain":         "abdominal pain",
	"belly pain":           "abdominal pain",
	"loose motion":         "diarrhea",
	"loose motions":        "diarrhea",
	"breathlessness":       "shortness of breath",
	"difficulty breathing": "shortness of breath",
	"breathing difficulty": "shortness of breath",
	"tiredness":            "fatigue",
	"exhaustion":           "fatigue",
	"head ache":            "headache",
	"migraine":             "headache",
	"cold":                 "runny nose",
	"blocked nose":         "congestion",
	"stuffy nose":          "congestion",
	"throat pain":          "sore throat",
	"loss of smell":        "loss of smell",
	"cannot smell":         "loss of smell",
	"dizzy":                "dizziness",
	"light headed":         "dizziness",
}

// redFlagSymptoms are tokens that on their own raise the stage-flagged
// urgency floor, so a single alarming signal survives aggregation.
var redFlagSymptoms = map[string]UrgencyLevel{
	"chest pain":          UrgencyHigh,
	"shortness of breath": UrgencyHigh,
	"stiff neck":          UrgencyHigh,
	"confusion":           UrgencyHigh,
	"unconscious":         UrgencyCritical,
	"severe bleeding":     UrgencyCritical,
	"seizure":             UrgencyCritical,
}

// SymptomStructurer extracts a deduplicated, ordered list of discrete symptom
// tokens from the free-text narrative.
type SymptomStructurer struct{}

func NewSymptomStructurer() *SymptomStructurer { return &SymptomStructurer{} }

func (a *SymptomStructurer) Kind() StageKind { return StageSymptoms }

func (a *SymptomStructurer) Run(_ context.Context, in PatientInput, _ Context) StageResult {
	tokens := TokenizeSymptoms(in.Symptoms)

	urgency := UrgencyLow
	for _, t := range tokens {
		if u, ok := redFlagSymptoms[t]; ok {
			urgency = MaxUrgency(urgency, u)
		}
	}

	return StageResult{
		Stage:    StageSymptoms,
		Success:  true,
		Urgency:  urgency,
		Symptoms: &SymptomPayload{Symptoms: tokens},
	}
}

// TokenizeSymptoms splits a free-text symptom narrative into canonical,
// deduplicated tokens in first-occurrence order.
func TokenizeSymptoms(text string) []string {
	lowered := strings.ToLower(text)
	for _, sep := range []string{" and ", " with ", " plus ", " also "} {
		lowered = strings.ReplaceAll(lowered, sep, ",")
	}

	parts := strings.FieldsFunc(lowered, func(r rune) bool {
		return r == ',' || r == ';' || r == '.' || r == '\n'
	})

	seen := make(map[string]bool)
	var tokens []string
	for _, p := range parts {
		token := strings.Join(strings.Fields(p), " ")
		if token == "" {
			continue
		}
		if canonical, ok := symptomSynonyms[token]; ok {
			token = canonical
		}
		if !seen[token] {
			seen[token] = true
			tokens = append(tokens, token)
		}
	}
	return tokens
}
