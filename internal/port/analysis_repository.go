package port

import (
	"context"

	"github.com/google/uuid"

	"claritax/internal/domain"
)

// AnalysisRepository persists bulk analysis jobs and their items.
type AnalysisRepository interface {
	CreateJob(ctx context.Context, job *domain.AnalysisJob) error
	FinishJob(ctx context.Context, job *domain.AnalysisJob) error
	GetJob(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error)
	InsertItems(ctx context.Context, items []domain.AnalysisItem) error
	ListItems(ctx context.Context, jobID uuid.UUID) ([]domain.AnalysisItem, error)
}
