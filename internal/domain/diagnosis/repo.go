package diagnosis

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionRepository persists diagnosis sessions. ListByPatient returns
// sessions newest-first; ListSince feeds the analytics reducer.
type SessionRepository interface {
	Create(ctx context.Context, s *DiagnosisSession) error
	Update(ctx context.Context, s *DiagnosisSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*DiagnosisSession, error)
	ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*DiagnosisSession, int, error)
	ListSince(ctx context.Context, since time.Time) ([]*DiagnosisSession, error)
}
