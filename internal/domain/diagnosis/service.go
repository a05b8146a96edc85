package diagnosis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service exposes the diagnosis operations consumed by the HTTP layer.
type Service struct {
	repo     SessionRepository
	pipeline *Pipeline
	now      func() time.Time
}

func NewService(repo SessionRepository, pipeline *Pipeline) *Service {
	return &Service{repo: repo, pipeline: pipeline, now: time.Now}
}

// Diagnose validates the raw request and runs the pipeline for it.
func (s *Service) Diagnose(ctx context.Context, patientID string, req DiagnoseRequest) (*DiagnosisResult, error) {
	input, err := NormalizeInput(req)
	if err != nil {
		return nil, err
	}

	result, _, err := s.pipeline.Run(ctx, patientID, input)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PatientHistory is the history listing plus the derived patient summary.
type PatientHistory struct {
	PatientID     string               `json:"patient_id"`
	Sessions      []*DiagnosisSession  `json:"sessions"`
	TotalSessions int                  `json:"total_sessions"`
	Conditions    []ConditionFrequency `json:"conditions,omitempty"`
}

// History returns a patient's sessions newest-first, capped at limit, with a
// condition-frequency summary derived from the returned page.
func (s *Service) History(ctx context.Context, patientID string, limit, offset int) (*PatientHistory, error) {
	if patientID == "" {
		return nil, &ValidationError{Field: "userId", Message: "userId is required"}
	}

	sessions, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []*DiagnosisSession{}
	}

	derived := DeriveContext(sessions)
	return &PatientHistory{
		PatientID:     patientID,
		Sessions:      sessions,
		TotalSessions: total,
		Conditions:    derived.PriorConditions,
	}, nil
}

// Session returns one session by id.
func (s *Service) Session(ctx context.Context, id uuid.UUID) (*DiagnosisSession, error) {
	return s.repo.GetByID(ctx, id)
}

// Analytics reduces the sessions within the timeframe window into per-status
// counts and per-agent performance metrics.
func (s *Service) Analytics(ctx context.Context, timeframe Timeframe) (*AnalyticsReport, error) {
	sessions, err := s.repo.ListSince(ctx, timeframe.Since(s.now()))
	if err != nil {
		return nil, fmt.Errorf("list sessions since: %w", err)
	}
	return ReduceSessions(timeframe, sessions), nil
}
