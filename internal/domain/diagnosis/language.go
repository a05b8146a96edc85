package diagnosis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mediq/mediq/internal/platform/reasoning"
)

// regionalTerms maps non-English and regional symptom vocabulary onto the
// canonical English terms. The table is intentionally additive: translation
// annotates, it never drops the original phrasing.
var regionalTerms = map[string]map[string]string{
	"hindi": {
		"bukhar":     "fever",
		"sir dard":   "headache",
		"sardard":    "headache",
		"badan dard": "body pain",
		"khansi":     "cough",
		"ulti":       "vomiting",
		"dast":       "diarrhea",
		"kamzori":    "weakness",
		"pet dard":   "abdominal pain",
	},
	"spanish": {
		"fiebre":            "fever",
		"dolor de cabeza":   "headache",
		"dolor de cuerpo":   "body pain",
		"tos":               "cough",
		"vomito":            "vomiting",
		"vómito":            "vomiting",
		"diarrea":           "diarrhea",
		"dolor de garganta": "sore throat",
		"cansancio":         "fatigue",
	},
	"bengali": {
		"jor":         "fever",
		"matha betha": "headache",
		"gaye betha":  "body pain",
		"kashi":       "cough",
		"bomi":        "vomiting",
	},
}

// LanguageNormalizer maps a potentially non-English symptom narrative into a
// normalized English one. When a reasoning provider is configured it is asked
// to translate; the local term table is the deterministic fallback, so the
// stage still succeeds offline.
type LanguageNormalizer struct {
	provider reasoning.Provider
}

func NewLanguageNormalizer(provider reasoning.Provider) *LanguageNormalizer {
	return &LanguageNormalizer{provider: provider}
}

func (a *LanguageNormalizer) Kind() StageKind { return StageLanguage }

func (a *LanguageNormalizer) Run(ctx context.Context, in PatientInput, _ Context) StageResult {
	payload := &LanguagePayload{
		OriginalText:   in.Symptoms,
		SourceLanguage: in.Language,
	}

	if in.Language == "" || in.Language == "english" {
		payload.NormalizedText = in.Symptoms
		return StageResult{Stage: StageLanguage, Success: true, Language: payload}
	}

	if a.provider != nil {
		if translated, err := a.translate(ctx, in); err == nil && strings.TrimSpace(translated) != "" {
			payload.NormalizedText = strings.TrimSpace(translated)
			payload.Annotations = append(payload.Annotations,
				fmt.Sprintf("translated from %s by reasoning provider", in.Language))
			return StageResult{Stage: StageLanguage, Success: true, Language: payload}
		}
		// Provider errors degrade to the local table rather than failing the stage.
	}

	normalized, annotations, passedThrough := a.applyTermTable(in.Language, in.Symptoms)
	payload.NormalizedText = normalized
	payload.Annotations = annotations
	payload.PassedThrough = passedThrough
	return StageResult{Stage: StageLanguage, Success: true, Language: payload}
}

func (a *LanguageNormalizer) translate(ctx context.Context, in PatientInput) (string, error) {
	system := "You translate patient symptom descriptions into plain English medical terms. " +
		"Reply with the translated text only, keeping every reported symptom."
	prompt := fmt.Sprintf("Language: %s\nSymptoms: %s", in.Language, in.Symptoms)
	return a.provider.Complete(ctx, system, prompt)
}

// applyTermTable substitutes known regional terms and records an annotation
// per substitution so later stages keep the terminology context. The third
// return reports an unknown language whose text was forwarded untouched.
func (a *LanguageNormalizer) applyTermTable(language, text string) (string, []string, bool) {
	table, ok := regionalTerms[language]
	if !ok {
		return text, []string{fmt.Sprintf("no term table for language %q, text passed through", language)}, true
	}

	terms := make([]string, 0, len(table))
	for term := range table {
		terms = append(terms, term)
	}
	// Longest-first keeps multi-word terms intact; alphabetical within equal
	// length keeps the substitution order deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	normalized := strings.ToLower(text)
	var annotations []string
	for _, term := range terms {
		if strings.Contains(normalized, term) {
			english := table[term]
			normalized = strings.ReplaceAll(normalized, term, english)
			annotations = append(annotations, fmt.Sprintf("%s term %q normalized to %q", language, term, english))
		}
	}
	return normalized, annotations, false
}
