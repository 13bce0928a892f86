package ports

import (
	"context"
	"time"

	"github.com/loopline-labs/sovscope/internal/core/domain"
)

type EvidenceProvider interface {
	Collect(ctx context.Context, query string, limit int) ([]domain.EvidenceRecord, error)
	Name() string
}

type InvestigationRepository interface {
	SaveInvestigation(ctx context.Context, inv *domain.Investigation) error
	SaveEvidenceBatch(ctx context.Context, investigationID string, records []domain.EvidenceRecord) error
	FindInvestigation(ctx context.Context, id string) (*domain.Investigation, error)
	FindRecent(ctx context.Context, since time.Time, limit int) ([]domain.Investigation, error)
	FindByQuery(ctx context.Context, query string, limit int) ([]domain.Investigation, error)
	FindEvidence(ctx context.Context, investigationID string) ([]domain.EvidenceRecord, error)
}
