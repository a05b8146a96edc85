package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepoPG{pool: pool}
}

const sessionCols = `id, patient_id, status, input, stage_results, result, error, created_at, completed_at`

func (r *sessionRepoPG) Create(ctx context.Context, s *DiagnosisSession) error {
	input, err := json.Marshal(s.Input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO diagnosis_session (id, patient_id, status, input, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.PatientID, s.Status, input, s.CreatedAt)
	return err
}

func (r *sessionRepoPG) Update(ctx context.Context, s *DiagnosisSession) error {
	stages, err := json.Marshal(s.StageResults)
	if err != nil {
		return fmt.Errorf("marshal stage results: %w", err)
	}
	var result []byte
	if s.Result != nil {
		if result, err = json.Marshal(s.Result); err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE diagnosis_session
		SET status = $2, stage_results = $3, result = $4, error = $5, completed_at = $6
		WHERE id = $1`,
		s.ID, s.Status, stages, result, s.Error, s.CompletedAt)
	return err
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DiagnosisSession, error) {
	return scanSession(r.pool.QueryRow(ctx, `SELECT `+sessionCols+` FROM diagnosis_session WHERE id = $1`, id))
}

func (r *sessionRepoPG) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*DiagnosisSession, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM diagnosis_session WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionCols+` FROM diagnosis_session
		WHERE patient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*DiagnosisSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *sessionRepoPG) ListSince(ctx context.Context, since time.Time) ([]*DiagnosisSession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+sessionCols+` FROM diagnosis_session
		WHERE created_at >= $1
		ORDER BY created_at DESC`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DiagnosisSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func scanSession(row pgx.Row) (*DiagnosisSession, error) {
	var s DiagnosisSession
	var input, stages, result []byte
	err := row.Scan(&s.ID, &s.PatientID, &s.Status, &input, &stages, &result, &s.Error, &s.CreatedAt, &s.CompletedAt)
	if err != nil {
		return nil, err
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &s.Input); err != nil {
			return nil, fmt.Errorf("unmarshal input: %w", err)
		}
	}
	if len(stages) > 0 {
		if err := json.Unmarshal(stages, &s.StageResults); err != nil {
			return nil, fmt.Errorf("unmarshal stage results: %w", err)
		}
	}
	if len(result) > 0 {
		var dr DiagnosisResult
		if err := json.Unmarshal(result, &dr); err != nil {
			return nil, fmt.Errorf("unmarshal result: %w", err)
		}
		s.Result = &dr
	}
	return &s, nil
}
