package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"claritax/internal/domain"
	"claritax/internal/port"
)

type analysisRepo struct {
	db *sqlx.DB
}

// NewAnalysisRepo creates a new PostgreSQL-backed AnalysisRepository.
func NewAnalysisRepo(db *sqlx.DB) port.AnalysisRepository {
	return &analysisRepo{db: db}
}

func (r *analysisRepo) CreateJob(ctx context.Context, job *domain.AnalysisJob) error {
	job.ID = uuid.New()
	job.CreatedAt = time.Now().UTC()
	job.Status = domain.AnalysisStatusProcessing

	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO analysis_jobs (id, file_name, s3_bucket, s3_key, status, item_count, found_count, created_at)
		 VALUES (:id, :file_name, :s3_bucket, :s3_key, :status, :item_count, :found_count, :created_at)`,
		job)
	if err != nil {
		return fmt.Errorf("analysisRepo.CreateJob: %w", err)
	}
	return nil
}

func (r *analysisRepo) FinishJob(ctx context.Context, job *domain.AnalysisJob) error {
	now := time.Now().UTC()
	job.FinishedAt = &now

	_, err := r.db.ExecContext(ctx,
		`UPDATE analysis_jobs
		 SET status = $2, item_count = $3, found_count = $4, finished_at = $5
		 WHERE id = $1`,
		job.ID, job.Status, job.ItemCount, job.FoundCount, job.FinishedAt)
	if err != nil {
		return fmt.Errorf("analysisRepo.FinishJob: %w", err)
	}
	return nil
}

func (r *analysisRepo) GetJob(ctx context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	var job domain.AnalysisJob
	err := r.db.GetContext(ctx, &job,
		`SELECT * FROM analysis_jobs WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAnalysisNotFound
		}
		return nil, fmt.Errorf("analysisRepo.GetJob: %w", err)
	}
	return &job, nil
}

func (r *analysisRepo) InsertItems(ctx context.Context, items []domain.AnalysisItem) error {
	if len(items) == 0 {
		return nil
	}
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO analysis_items
		 (job_id, position, internal_code, description, tariff_code, barcode,
		  quantity, unit_price, status, source, product_id, product_name, breakdown)
		 VALUES
		 (:job_id, :position, :internal_code, :description, :tariff_code, :barcode,
		  :quantity, :unit_price, :status, :source, :product_id, :product_name, :breakdown)`,
		items)
	if err != nil {
		return fmt.Errorf("analysisRepo.InsertItems: %w", err)
	}
	return nil
}

func (r *analysisRepo) ListItems(ctx context.Context, jobID uuid.UUID) ([]domain.AnalysisItem, error) {
	var items []domain.AnalysisItem
	err := r.db.SelectContext(ctx, &items,
		`SELECT * FROM analysis_items WHERE job_id = $1 ORDER BY position`, jobID)
	if err != nil {
		return nil, fmt.Errorf("analysisRepo.ListItems: %w", err)
	}
	return items, nil
}
