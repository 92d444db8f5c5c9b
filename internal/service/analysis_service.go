package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"claritax/internal/batch"
	"claritax/internal/config"
	"claritax/internal/domain"
	"claritax/internal/nfe"
	"claritax/internal/port"
)

// AnalysisResult is a job with its persisted items.
type AnalysisResult struct {
	Job   *domain.AnalysisJob   `json:"job"`
	Items []domain.AnalysisItem `json:"items"`
}

// AnalysisService runs bulk document analyses and serves their results.
type AnalysisService interface {
	AnalyzeDocument(ctx context.Context, fileName string, data []byte) (*AnalysisResult, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisResult, error)
}

type analysisService struct {
	analyzer *batch.Analyzer
	repo     port.AnalysisRepository
	storage  port.ObjectStorage
	s3cfg    *config.S3Config
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(analyzer *batch.Analyzer, repo port.AnalysisRepository, storage port.ObjectStorage, s3cfg *config.S3Config) AnalysisService {
	return &analysisService{analyzer: analyzer, repo: repo, storage: storage, s3cfg: s3cfg}
}

// AnalyzeDocument parses the uploaded invoice XML, archives the raw file,
// resolves every line item through the cascade, and persists the outcome.
func (s *analysisService) AnalyzeDocument(ctx context.Context, fileName string, data []byte) (*AnalysisResult, error) {
	if int64(len(data)) > s.s3cfg.MaxFileSizeMB*1024*1024 {
		return nil, domain.ErrFileTooLarge
	}

	items, err := nfe.Parse(data)
	if err != nil {
		return nil, err
	}

	job := &domain.AnalysisJob{
		FileName: fileName,
		S3Bucket: s.s3cfg.Bucket,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	// Archive the raw document under the job id. Storage failure is not
	// fatal to the analysis; the job just carries no object key.
	key := fmt.Sprintf("analyses/%s.xml", job.ID)
	_, upErr := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: "application/xml",
	})
	if upErr != nil {
		log.Printf("analysis %s: archiving document failed: %v", job.ID, upErr)
	} else {
		job.S3Key = key
	}

	items = s.analyzer.Analyze(ctx, items, func(current, total int) {
		log.Printf("analysis %s: %d/%d", job.ID, current, total)
	})

	persisted := make([]domain.AnalysisItem, 0, len(items))
	found := 0
	for i := range items {
		if items[i].Status == domain.StatusFound {
			found++
		}
		persisted = append(persisted, toAnalysisItem(job.ID, i, &items[i]))
	}

	job.Status = domain.AnalysisStatusCompleted
	job.ItemCount = len(items)
	job.FoundCount = found

	if err := s.repo.InsertItems(ctx, persisted); err != nil {
		return nil, err
	}
	if err := s.repo.FinishJob(ctx, job); err != nil {
		return nil, err
	}

	return &AnalysisResult{Job: job, Items: persisted}, nil
}

func (s *analysisService) GetAnalysis(ctx context.Context, id uuid.UUID) (*AnalysisResult, error) {
	job, err := s.repo.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListItems(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{Job: job, Items: items}, nil
}

func toAnalysisItem(jobID uuid.UUID, position int, item *domain.LineItem) domain.AnalysisItem {
	out := domain.AnalysisItem{
		JobID:        jobID,
		Position:     position,
		InternalCode: item.InternalCode,
		Description:  item.Description,
		TariffCode:   item.TariffCode,
		Barcode:      item.Barcode,
		Quantity:     item.Quantity,
		UnitPrice:    item.UnitPrice,
		Status:       item.Status,
		Source:       item.Source,
	}
	if item.Product != nil {
		id := item.Product.ID
		out.ProductID = &id
		out.ProductName = item.Product.Name
	}
	if item.Breakdown != nil {
		// Marshaling a plain value object; this cannot fail in practice.
		raw, err := json.Marshal(item.Breakdown)
		if err == nil {
			out.Breakdown = raw
		}
	}
	return out
}
