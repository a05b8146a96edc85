package diagnosis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultStageTimeout bounds one stage's run when no timeout is configured.
const DefaultStageTimeout = 8 * time.Second

// Pipeline runs one diagnosis request end to end: context load, concurrent
// stage fan-out, aggregation, and session recording.
type Pipeline struct {
	agents       []StageAgent
	loader       *ContextLoader
	aggregator   *Aggregator
	repo         SessionRepository
	stageTimeout time.Duration
	logger       zerolog.Logger
	now          func() time.Time
}

func NewPipeline(agents []StageAgent, loader *ContextLoader, repo SessionRepository, stageTimeout time.Duration, logger zerolog.Logger) *Pipeline {
	if stageTimeout <= 0 {
		stageTimeout = DefaultStageTimeout
	}
	return &Pipeline{
		agents:       agents,
		loader:       loader,
		aggregator:   NewAggregator(),
		repo:         repo,
		stageTimeout: stageTimeout,
		logger:       logger,
		now:          time.Now,
	}
}

// Run executes the pipeline for one canonical input. The returned session is
// the persisted trace; a persistence failure is logged as an audit gap but
// never blocks the diagnosis. Run returns an error only when the caller's
// context is cancelled before aggregation.
func (p *Pipeline) Run(ctx context.Context, patientID string, input PatientInput) (*DiagnosisResult, *DiagnosisSession, error) {
	session := &DiagnosisSession{
		ID:        uuid.New(),
		PatientID: patientID,
		Status:    StatusPending,
		Input:     input,
		CreatedAt: p.now(),
	}
	if err := p.repo.Create(ctx, session); err != nil {
		p.logger.Error().Err(err).Str("session_id", session.ID.String()).
			Msg("session create failed, diagnosis continues without audit record")
	}

	pctx, err := p.loader.Load(ctx, patientID)
	if err != nil {
		// A history lookup failure is not a first-time patient: log it and
		// proceed with an empty context.
		p.logger.Warn().Err(err).Str("patient_id", patientID).Msg("context load failed")
		pctx = Context{}
	}

	results := p.runStages(ctx, input, pctx)

	if ctx.Err() != nil {
		p.recordEnd(session, StatusFailed, results, nil, ctx.Err())
		return nil, session, fmt.Errorf("diagnosis cancelled: %w", ctx.Err())
	}

	result := p.aggregator.Aggregate(results, pctx, p.now())
	p.recordEnd(session, StatusCompleted, results, result, nil)

	return result, session, nil
}

// runStages fans the agents out concurrently and joins all results. Every
// agent gets its own deadline; a slow or panicking stage becomes a failed
// StageResult, never a failed request. Results arrive in registration order.
func (p *Pipeline) runStages(ctx context.Context, input PatientInput, pctx Context) []StageResult {
	type indexed struct {
		idx    int
		result StageResult
	}

	ch := make(chan indexed, len(p.agents))
	for i, agent := range p.agents {
		go func(i int, agent StageAgent) {
			ch <- indexed{idx: i, result: p.runStage(ctx, agent, input, pctx)}
		}(i, agent)
	}

	results := make([]StageResult, len(p.agents))
	for range p.agents {
		r := <-ch
		results[r.idx] = r.result
	}
	return results
}

// runStage executes one agent with a per-stage timeout and panic capture,
// recording elapsed time regardless of outcome.
func (p *Pipeline) runStage(ctx context.Context, agent StageAgent, input PatientInput, pctx Context) StageResult {
	stageCtx, cancel := context.WithTimeout(ctx, p.stageTimeout)
	defer cancel()

	start := p.now()
	done := make(chan StageResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().Str("stage", string(agent.Kind())).
					Str("panic", fmt.Sprintf("%v", r)).Msg("stage panicked")
				done <- failedResult(agent.Kind(), fmt.Errorf("stage panicked: %v", r))
			}
		}()
		done <- agent.Run(stageCtx, input, pctx)
	}()

	var result StageResult
	select {
	case result = <-done:
	case <-stageCtx.Done():
		result = failedResult(agent.Kind(), fmt.Errorf("stage timed out after %s", p.stageTimeout))
	}

	result.DurationMS = p.now().Sub(start).Milliseconds()
	return result
}

// recordEnd finalizes the session exactly once. Persistence failures are
// surfaced to operators via the log, not to the caller.
func (p *Pipeline) recordEnd(session *DiagnosisSession, status string, results []StageResult, result *DiagnosisResult, cause error) {
	completed := p.now()
	session.Status = status
	session.StageResults = results
	session.Result = result
	session.CompletedAt = &completed
	if cause != nil {
		msg := cause.Error()
		session.Error = &msg
	}

	// The pipeline's own context may already be cancelled; the audit write
	// gets a short independent deadline so computed results still land.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.repo.Update(ctx, session); err != nil {
		p.logger.Error().Err(err).Str("session_id", session.ID.String()).
			Str("status", status).Msg("session update failed, audit record incomplete")
	}
}
