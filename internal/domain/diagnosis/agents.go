package diagnosis

import "context"

// StageAgent is one independent reasoning step of the pipeline. Agents are
// pure with respect to the run: they read the canonical input and the patient
// context and produce a StageResult, never mutating either. Agents must not
// panic on malformed but non-empty input; internal failures are reported via
// Success=false with a best-effort degraded payload.
type StageAgent interface {
	Kind() StageKind
	Run(ctx context.Context, in PatientInput, pctx Context) StageResult
}

func failedResult(kind StageKind, err error) StageResult {
	return StageResult{Stage: kind, Success: false, Error: err.Error()}
}
