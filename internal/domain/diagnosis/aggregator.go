package diagnosis

import (
	"fmt"
	"sort"
	"time"

	"github.com/mediq/mediq/internal/platform/knowledge"
)

// Evidence weights per stage. They are renormalized to sum to 100 over the
// stages that actually succeeded, so confidences stay comparable across runs
// with partial failures. The risk assessor does not carry evidence weight:
// it acts through per-candidate multiplicative adjustments instead.
var evidenceWeights = map[StageKind]float64{
	StageLanguage: 15,
	StageSymptoms: 35,
	StageResearch: 50,
}

const (
	// maxDifferential caps the secondary diagnosis list.
	maxDifferential = 5

	// historyRecurrenceBonus is added to candidates the patient was
	// previously diagnosed with, reflecting continuity of care.
	historyRecurrenceBonus = 5.0

	// confidenceCeiling keeps the pipeline from ever claiming certainty.
	confidenceCeiling = 98.0

	// failSafeConfidence is reported when no usable evidence exists.
	failSafeConfidence = 20.0

	// lowEvidenceThreshold marks results whose primary confidence is too
	// thin to act on without clinical review.
	lowEvidenceThreshold = 30.0
)

// Aggregator combines the stage results into one ranked differential
// diagnosis. It is a pure function of its inputs.
type Aggregator struct{}

func NewAggregator() *Aggregator { return &Aggregator{} }

// Aggregate produces the final DiagnosisResult. It never returns an error:
// when all stages failed (or surfaced no candidates) it emits the fail-safe
// high-urgency, low-confidence result so callers always receive an actionable
// response.
func (g *Aggregator) Aggregate(results []StageResult, pctx Context, now time.Time) *DiagnosisResult {
	byStage := make(map[StageKind]StageResult, len(results))
	urgencyFloor := UrgencyLow
	anySuccess := false
	for _, r := range results {
		byStage[r.Stage] = r
		if r.Success {
			anySuccess = true
			if r.Urgency != "" {
				urgencyFloor = MaxUrgency(urgencyFloor, r.Urgency)
			}
		}
	}

	if !anySuccess {
		return failSafeResult("no reasoning stage produced evidence", urgencyFloor, results, now)
	}

	scores := g.combineEvidence(byStage)
	if len(scores) == 0 {
		return failSafeResult("no candidate condition matched the reported symptoms", urgencyFloor, results, now)
	}

	g.applyRiskAdjustments(scores, byStage)
	g.applyHistoryBonus(scores, pctx)

	candidates := rankCandidates(scores)

	primary := candidates[0]
	differential := candidates[1:]
	if len(differential) > maxDifferential {
		differential = differential[:maxDifferential]
	}

	urgency := UrgencyFromSeverity(knowledge.SeverityOf(primary.Condition))
	urgency = MaxUrgency(urgency, urgencyFloor)

	return &DiagnosisResult{
		PrimaryDiagnosis: primary,
		Differential:     differential,
		UrgencyLevel:     urgency,
		LowEvidence:      primary.Confidence < lowEvidenceThreshold,
		Evidence:         evidenceSummary(results),
		GeneratedAt:      now,
	}
}

// combineEvidence computes the weighted per-candidate confidence over the
// successful evidence stages, renormalized so weights sum to 100.
func (g *Aggregator) combineEvidence(byStage map[StageKind]StageResult) map[string]float64 {
	var totalWeight float64
	for kind, w := range evidenceWeights {
		if r, ok := byStage[kind]; ok && r.Success {
			totalWeight += w
		}
	}
	if totalWeight == 0 {
		return nil
	}

	// Candidate set comes from the researcher; the other evidence stages
	// contribute per-candidate corroboration scores.
	research, ok := byStage[StageResearch]
	if !ok || !research.Success || research.Research == nil {
		return nil
	}

	var structured []string
	symptomsOK := false
	if r, ok := byStage[StageSymptoms]; ok && r.Success && r.Symptoms != nil {
		symptomsOK = true
		structured = r.Symptoms.Symptoms
	}

	// Full marks when the narrative needed no translation or was fully
	// annotated; partial when an unknown language passed through. A narrative
	// the normalizer actually rewrote supersedes the raw one, because the
	// structurer and researcher only ever saw the untranslated text.
	languageScore := 0.0
	var normTokens []string
	if r, ok := byStage[StageLanguage]; ok && r.Success && r.Language != nil {
		languageScore = 100.0
		if r.Language.PassedThrough {
			languageScore = 60.0
		}
		if r.Language.NormalizedText != r.Language.OriginalText {
			normTokens = TokenizeSymptoms(r.Language.NormalizedText)
		}
	}

	candidates := research.Research.Candidates
	if len(candidates) == 0 && len(normTokens) > 0 {
		// The raw-text lookup found nothing, so match over the normalized
		// narrative instead. The regional bonus is researcher enrichment and
		// is not reapplied here.
		candidates = MatchConditions(normTokens, "")
	}

	overlapTokens := structured
	if len(normTokens) > 0 {
		overlapTokens = normTokens
	}

	scores := make(map[string]float64)
	for _, cand := range candidates {
		contribution := evidenceWeights[StageResearch] * cand.Score / 100

		if symptomsOK && len(overlapTokens) > 0 {
			overlap := float64(len(matchedSymptoms(overlapTokens, conditionTerms(cand.Condition)))) / float64(len(overlapTokens))
			contribution += evidenceWeights[StageSymptoms] * overlap
		}
		if languageScore > 0 {
			contribution += evidenceWeights[StageLanguage] * languageScore / 100
		}

		scores[cand.Condition] = contribution * 100 / totalWeight
	}
	return scores
}

func (g *Aggregator) applyRiskAdjustments(scores map[string]float64, byStage map[StageKind]StageResult) {
	risk, ok := byStage[StageRisk]
	if !ok || !risk.Success || risk.Risk == nil {
		return
	}
	for cond, mult := range risk.Risk.Adjustments {
		if s, ok := scores[cond]; ok {
			scores[cond] = s * mult
		}
	}
}

func (g *Aggregator) applyHistoryBonus(scores map[string]float64, pctx Context) {
	for cond := range scores {
		if pctx.HasPriorCondition(cond) {
			scores[cond] += historyRecurrenceBonus
		}
	}
}

// rankCandidates sorts candidates descending by confidence. Ties go to the
// more severe condition, erring toward caution; equal severity falls back to
// alphabetical order for determinism.
func rankCandidates(scores map[string]float64) []Candidate {
	candidates := make([]Candidate, 0, len(scores))
	for cond, score := range scores {
		if score > confidenceCeiling {
			score = confidenceCeiling
		}
		candidates = append(candidates, Candidate{
			Condition:  cond,
			Confidence: roundConfidence(score),
			Severity:   string(knowledge.SeverityOf(cond)),
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		si := knowledge.SeverityOf(candidates[i].Condition).Rank()
		sj := knowledge.SeverityOf(candidates[j].Condition).Rank()
		if si != sj {
			return si > sj
		}
		return candidates[i].Condition < candidates[j].Condition
	})
	return candidates
}

func failSafeResult(reason string, floor UrgencyLevel, results []StageResult, now time.Time) *DiagnosisResult {
	return &DiagnosisResult{
		PrimaryDiagnosis: Candidate{
			Condition:  "Undifferentiated condition",
			Confidence: failSafeConfidence,
			Severity:   string(knowledge.SeverityModerate),
		},
		Differential: []Candidate{},
		UrgencyLevel: MaxUrgency(UrgencyHigh, floor),
		LowEvidence:  true,
		Evidence:     append(evidenceSummary(results), "fail-safe: "+reason),
		GeneratedAt:  now,
	}
}

func evidenceSummary(results []StageResult) []string {
	var summary []string
	for _, r := range results {
		if !r.Success {
			continue
		}
		switch r.Stage {
		case StageLanguage:
			if r.Language != nil {
				summary = append(summary, fmt.Sprintf("%s: normalized from %s", r.Stage, r.Language.SourceLanguage))
			}
		case StageSymptoms:
			if r.Symptoms != nil {
				summary = append(summary, fmt.Sprintf("%s: %d symptoms", r.Stage, len(r.Symptoms.Symptoms)))
			}
		case StageResearch:
			if r.Research != nil {
				summary = append(summary, fmt.Sprintf("%s: %d candidates", r.Stage, len(r.Research.Candidates)))
			}
		case StageRisk:
			if r.Risk != nil {
				summary = append(summary, fmt.Sprintf("%s: %d risk factors", r.Stage, len(r.Risk.Factors)))
			}
		}
	}
	return summary
}

func conditionTerms(name string) []string {
	if c, ok := knowledge.Lookup(name); ok {
		return c.SymptomTerms
	}
	return nil
}

// roundConfidence keeps confidences on a stable two-decimal scale so equal
// evidence always compares equal.
func roundConfidence(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
