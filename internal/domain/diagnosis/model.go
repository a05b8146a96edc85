package diagnosis

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediq/mediq/internal/platform/knowledge"
)

// UrgencyLevel classifies how fast a diagnosis should be acted on.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "Low"
	UrgencyModerate UrgencyLevel = "Moderate"
	UrgencyHigh     UrgencyLevel = "High"
	UrgencyCritical UrgencyLevel = "Critical"
)

// Rank returns the ordering of an urgency level; higher is more urgent.
func (u UrgencyLevel) Rank() int {
	switch u {
	case UrgencyCritical:
		return 3
	case UrgencyHigh:
		return 2
	case UrgencyModerate:
		return 1
	case UrgencyLow:
		return 0
	default:
		return -1
	}
}

// MaxUrgency returns the more urgent of two levels.
func MaxUrgency(a, b UrgencyLevel) UrgencyLevel {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// UrgencyFromSeverity maps a condition severity class to an urgency level.
func UrgencyFromSeverity(s knowledge.Severity) UrgencyLevel {
	switch s {
	case knowledge.SeverityCritical:
		return UrgencyCritical
	case knowledge.SeverityHigh:
		return UrgencyHigh
	case knowledge.SeverityModerate:
		return UrgencyModerate
	default:
		return UrgencyLow
	}
}

// PatientInput is the canonical, validated diagnosis request. Immutable once
// produced by the normalizer.
type PatientInput struct {
	Symptoms       string   `json:"symptoms"`
	Language       string   `json:"language"`
	Age            int      `json:"age,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	Location       string   `json:"location,omitempty"`
	MedicalHistory []string `json:"medical_history"`
	UploadedFiles  []string `json:"uploaded_files"`
}

// StageKind identifies one reasoning stage of the pipeline.
type StageKind string

const (
	StageLanguage StageKind = "language_normalizer"
	StageSymptoms StageKind = "symptom_structurer"
	StageResearch StageKind = "literature_researcher"
	StageRisk     StageKind = "risk_assessor"
)

// AllStages lists every stage in registration order.
var AllStages = []StageKind{StageLanguage, StageSymptoms, StageResearch, StageRisk}

// LanguagePayload is the language normalizer's output: the symptom narrative
// rendered in normalized English plus annotations for regional terminology.
// The original text is always preserved.
type LanguagePayload struct {
	OriginalText   string   `json:"original_text"`
	NormalizedText string   `json:"normalized_text"`
	SourceLanguage string   `json:"source_language"`
	Annotations    []string `json:"annotations,omitempty"`
	// PassedThrough is set when no translation path existed for the source
	// language and the text was forwarded untouched.
	PassedThrough bool `json:"passed_through,omitempty"`
}

// SymptomPayload is the symptom structurer's output: deduplicated, ordered
// symptom tokens.
type SymptomPayload struct {
	Symptoms []string `json:"symptoms"`
}

// ResearchCandidate is one condition surfaced by the literature researcher,
// with its evidence score and supporting context.
type ResearchCandidate struct {
	Condition       string   `json:"condition"`
	Score           float64  `json:"score"`
	MatchedSymptoms []string `json:"matched_symptoms,omitempty"`
	Epidemiology    string   `json:"epidemiology,omitempty"`
	Citations       []string `json:"citations,omitempty"`
}

// ResearchPayload is the literature researcher's output: a ranked candidate
// condition list.
type ResearchPayload struct {
	Candidates []ResearchCandidate `json:"candidates"`
}

// RiskFactor is one weighted risk signal derived from demographics or history.
type RiskFactor struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// RiskPayload is the risk assessor's output. Adjustments maps condition name
// to a confidence multiplier applied by the aggregator (1.0 = neutral).
type RiskPayload struct {
	Factors     []RiskFactor       `json:"factors"`
	Adjustments map[string]float64 `json:"adjustments,omitempty"`
}

// StageResult is the tagged-variant output of one stage run. Exactly one
// payload field matching Stage is set on success; failed stages carry a
// best-effort degraded payload or none at all.
type StageResult struct {
	Stage      StageKind    `json:"stage"`
	Success    bool         `json:"success"`
	Error      string       `json:"error,omitempty"`
	DurationMS int64        `json:"duration_ms"`
	Urgency    UrgencyLevel `json:"urgency,omitempty"`

	Language *LanguagePayload `json:"language,omitempty"`
	Symptoms *SymptomPayload  `json:"symptoms,omitempty"`
	Research *ResearchPayload `json:"research,omitempty"`
	Risk     *RiskPayload     `json:"risk,omitempty"`
}

// Candidate is one entry of the final differential with a 0-100 confidence.
type Candidate struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Severity   string  `json:"severity"`
}

// DiagnosisResult is the aggregator's output: a ranked differential diagnosis.
// PrimaryDiagnosis always carries the maximum confidence among candidates.
type DiagnosisResult struct {
	PrimaryDiagnosis Candidate    `json:"primary_diagnosis"`
	Differential     []Candidate  `json:"differential"`
	UrgencyLevel     UrgencyLevel `json:"urgency_level"`
	LowEvidence      bool         `json:"low_evidence"`
	Evidence         []string     `json:"evidence"`
	GeneratedAt      time.Time    `json:"generated_at"`
}

// Session status values.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// DiagnosisSession is the persisted trace of one pipeline run. It is created
// with status pending and updated exactly once at the end of the run.
type DiagnosisSession struct {
	ID           uuid.UUID        `json:"id"`
	PatientID    string           `json:"patient_id"`
	Status       string           `json:"status"`
	Input        PatientInput     `json:"input"`
	StageResults []StageResult    `json:"stage_results,omitempty"`
	Result       *DiagnosisResult `json:"result,omitempty"`
	Error        *string          `json:"error,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// ConditionFrequency counts a condition's occurrences across prior sessions.
type ConditionFrequency struct {
	Condition string    `json:"condition"`
	Count     int       `json:"count"`
	LastSeen  time.Time `json:"last_seen"`
}

// Context is the continuity profile derived from a patient's recent sessions.
// A zero Context is the normal first-time-patient case.
type Context struct {
	PriorSessions   int                  `json:"prior_sessions"`
	PriorConditions []ConditionFrequency `json:"prior_conditions,omitempty"`
	RiskFactors     []string             `json:"risk_factors,omitempty"`
}
