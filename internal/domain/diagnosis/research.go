package diagnosis

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mediq/mediq/internal/platform/knowledge"
	"github.com/mediq/mediq/internal/platform/reasoning"
)

// Scoring weights for the literature matching heuristic. Symptom overlap
// dominates; prevalence and regional incidence break the remaining ground.
const (
	symptomMatchWeight = 70.0
	prevalenceWeight   = 15.0
	regionWeight       = 15.0

	// providerCandidateScore is the modest evidence score assigned to
	// candidates suggested by the reasoning provider but not matched locally.
	providerCandidateScore = 40.0

	maxResearchCandidates = 8
)

// LiteratureResearcher maps the symptom set onto ranked candidate conditions
// using the embedded knowledge source, optionally augmented by a reasoning
// provider. Ordering is deterministic: score descending, alphabetical on ties.
type LiteratureResearcher struct {
	provider reasoning.Provider
}

func NewLiteratureResearcher(provider reasoning.Provider) *LiteratureResearcher {
	return &LiteratureResearcher{provider: provider}
}

func (a *LiteratureResearcher) Kind() StageKind { return StageResearch }

func (a *LiteratureResearcher) Run(ctx context.Context, in PatientInput, _ Context) StageResult {
	tokens := TokenizeSymptoms(in.Symptoms)
	if len(tokens) == 0 {
		return StageResult{
			Stage:    StageResearch,
			Success:  true,
			Research: &ResearchPayload{Candidates: []ResearchCandidate{}},
		}
	}

	candidates := MatchConditions(tokens, in.Location)
	candidates = a.mergeProviderCandidates(ctx, in, tokens, candidates)

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Condition < candidates[j].Condition
	})
	if len(candidates) > maxResearchCandidates {
		candidates = candidates[:maxResearchCandidates]
	}

	return StageResult{
		Stage:    StageResearch,
		Success:  true,
		Research: &ResearchPayload{Candidates: candidates},
	}
}

// MatchConditions scores every knowledge condition with at least one symptom
// match against the token set. An empty location skips the regional bonus.
// The aggregator also calls this to recover candidates from the normalized
// narrative when the raw-text lookup came up empty.
func MatchConditions(tokens []string, location string) []ResearchCandidate {
	if len(tokens) == 0 {
		return nil
	}

	location = strings.ToLower(location)
	var candidates []ResearchCandidate

	for _, cond := range knowledge.Conditions() {
		matched := matchedSymptoms(tokens, cond.SymptomTerms)
		if len(matched) == 0 {
			continue
		}

		matchRatio := float64(len(matched)) / float64(len(tokens))
		score := symptomMatchWeight*matchRatio + prevalenceWeight*cond.Prevalence

		cand := ResearchCandidate{
			Condition:       cond.Name,
			MatchedSymptoms: matched,
			Citations:       []string{fmt.Sprintf("kb:conditions/%s", slug(cond.Name))},
		}

		if term := regionHit(location, cond.RegionTerms); term != "" {
			score += regionWeight
			cand.Epidemiology = fmt.Sprintf("regional incidence signal: %q", term)
		}

		cand.Score = score
		candidates = append(candidates, cand)
	}
	return candidates
}

// mergeProviderCandidates asks the reasoning provider for additional candidate
// conditions and merges any that exist in the knowledge source and were not
// already matched. Provider failures are ignored: the local result stands.
func (a *LiteratureResearcher) mergeProviderCandidates(ctx context.Context, in PatientInput, tokens []string, candidates []ResearchCandidate) []ResearchCandidate {
	if a.provider == nil {
		return candidates
	}

	system := "You are a clinical literature assistant. Given symptoms, reply with a " +
		"comma-separated list of up to five candidate condition names and nothing else."
	prompt := fmt.Sprintf("Symptoms: %s. Patient location: %s.", strings.Join(tokens, ", "), in.Location)

	reply, err := a.provider.Complete(ctx, system, prompt)
	if err != nil {
		return candidates
	}

	have := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		have[strings.ToLower(c.Condition)] = true
	}

	for _, name := range strings.Split(reply, ",") {
		name = strings.TrimSpace(name)
		cond, ok := knowledge.Lookup(name)
		if !ok || have[strings.ToLower(cond.Name)] {
			continue
		}
		have[strings.ToLower(cond.Name)] = true
		candidates = append(candidates, ResearchCandidate{
			Condition: cond.Name,
			Score:     providerCandidateScore,
			Citations: []string{"provider:literature-suggestion"},
		})
	}
	return candidates
}

func matchedSymptoms(tokens, terms []string) []string {
	var matched []string
	for _, t := range tokens {
		for _, term := range terms {
			if t == term {
				matched = append(matched, t)
				break
			}
		}
	}
	return matched
}

func regionHit(location string, terms []string) string {
	if location == "" {
		return ""
	}
	for _, term := range terms {
		if strings.Contains(location, term) {
			return term
		}
	}
	return ""
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
