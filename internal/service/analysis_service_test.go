package service_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claritax/internal/batch"
	"claritax/internal/catalog"
	"claritax/internal/config"
	"claritax/internal/domain"
	"claritax/internal/port"
	"claritax/internal/service"
	"claritax/internal/taxengine"
)

type fakeAnalysisRepo struct {
	jobs  map[uuid.UUID]*domain.AnalysisJob
	items map[uuid.UUID][]domain.AnalysisItem
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{
		jobs:  make(map[uuid.UUID]*domain.AnalysisJob),
		items: make(map[uuid.UUID][]domain.AnalysisItem),
	}
}

func (f *fakeAnalysisRepo) CreateJob(_ context.Context, job *domain.AnalysisJob) error {
	job.ID = uuid.New()
	job.Status = domain.AnalysisStatusProcessing
	j := *job
	f.jobs[job.ID] = &j
	return nil
}

func (f *fakeAnalysisRepo) FinishJob(_ context.Context, job *domain.AnalysisJob) error {
	j := *job
	f.jobs[job.ID] = &j
	return nil
}

func (f *fakeAnalysisRepo) GetJob(_ context.Context, id uuid.UUID) (*domain.AnalysisJob, error) {
	job, ok := f.jobs[id]
	if !ok {
		return nil, domain.ErrAnalysisNotFound
	}
	return job, nil
}

func (f *fakeAnalysisRepo) InsertItems(_ context.Context, items []domain.AnalysisItem) error {
	if len(items) == 0 {
		return nil
	}
	f.items[items[0].JobID] = items
	return nil
}

func (f *fakeAnalysisRepo) ListItems(_ context.Context, jobID uuid.UUID) ([]domain.AnalysisItem, error) {
	return f.items[jobID], nil
}

type fakeStorage struct {
	uploads map[string][]byte
	err     error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.uploads[input.Key] = data
	return &port.UploadOutput{Location: "s3://" + input.Bucket + "/" + input.Key}, nil
}

func (f *fakeStorage) Download(_ context.Context, _, key string) ([]byte, error) {
	data, ok := f.uploads[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStorage) Delete(_ context.Context, _, key string) error {
	delete(f.uploads, key)
	return nil
}

const analysisDoc = `<nfeProc><NFe><infNFe>
  <det><prod><cProd>001</cProd><cEAN>7891000100103</cEAN><xProd>LEITE UHT</xProd><NCM>04012010</NCM><qCom>12</qCom><vUnCom>4.99</vUnCom></prod></det>
  <det><prod><cProd>002</cProd><cEAN>SEM GTIN</cEAN><xProd>PRODUTO DESCONHECIDO</xProd><NCM>99999999</NCM><qCom>1</qCom><vUnCom>10.00</vUnCom></prod></det>
</infNFe></NFe></nfeProc>`

func newAnalysisService(repo *fakeAnalysisRepo, storage *fakeStorage) service.AnalysisService {
	catalogRepo := &fakeCatalogRepo{
		products: []domain.ProductRecord{
			{ID: 1, Barcode: "7891000100103", TariffCode: "04012010", Name: "Leite Integral UHT 1L", Category: "alimentos"},
		},
		taxRows: map[int64]map[domain.TaxType]port.RawTaxRow{
			1: {
				domain.TaxTypeIBS: {"aliquota": 8.8, "reducao": 100.0},
				domain.TaxTypeCBS: {"aliquota": 17.7, "reducao": 100.0},
			},
		},
	}
	analyzer := batch.NewAnalyzer(
		catalog.NewResolver(catalogRepo),
		taxengine.NewCalculator(taxengine.DefaultRates()),
	)
	s3cfg := &config.S3Config{Bucket: "test-bucket", MaxFileSizeMB: 1}
	return service.NewAnalysisService(analyzer, repo, storage, s3cfg)
}

func TestAnalyzeDocument_FullPipeline(t *testing.T) {
	repo := newFakeAnalysisRepo()
	storage := newFakeStorage()
	svc := newAnalysisService(repo, storage)

	result, err := svc.AnalyzeDocument(context.Background(), "nota.xml", []byte(analysisDoc))

	require.NoError(t, err)
	require.NotNil(t, result.Job)
	assert.Equal(t, domain.AnalysisStatusCompleted, result.Job.Status)
	assert.Equal(t, 2, result.Job.ItemCount)
	assert.Equal(t, 1, result.Job.FoundCount)
	assert.Equal(t, "analyses/"+result.Job.ID.String()+".xml", result.Job.S3Key)

	require.Len(t, result.Items, 2)
	assert.Equal(t, domain.StatusFound, result.Items[0].Status)
	assert.Equal(t, domain.MatchSourceEAN, result.Items[0].Source)
	assert.NotEmpty(t, result.Items[0].Breakdown)
	assert.Equal(t, domain.StatusNotFound, result.Items[1].Status)
	assert.Empty(t, result.Items[1].Breakdown)

	// Raw document archived under the job key.
	assert.Equal(t, []byte(analysisDoc), storage.uploads[result.Job.S3Key])
}

func TestAnalyzeDocument_StorageFailureIsNotFatal(t *testing.T) {
	repo := newFakeAnalysisRepo()
	storage := newFakeStorage()
	storage.err = errors.New("bucket unreachable")
	svc := newAnalysisService(repo, storage)

	result, err := svc.AnalyzeDocument(context.Background(), "nota.xml", []byte(analysisDoc))

	require.NoError(t, err)
	assert.Equal(t, domain.AnalysisStatusCompleted, result.Job.Status)
	assert.Empty(t, result.Job.S3Key)
}

func TestAnalyzeDocument_FileTooLarge(t *testing.T) {
	svc := newAnalysisService(newFakeAnalysisRepo(), newFakeStorage())

	big := make([]byte, 2*1024*1024)
	_, err := svc.AnalyzeDocument(context.Background(), "nota.xml", big)

	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
}

func TestAnalyzeDocument_MalformedDocument(t *testing.T) {
	svc := newAnalysisService(newFakeAnalysisRepo(), newFakeStorage())

	_, err := svc.AnalyzeDocument(context.Background(), "nota.xml", []byte("not xml"))

	assert.ErrorIs(t, err, domain.ErrDocumentMalformed)
}

func TestGetAnalysis_RoundTrip(t *testing.T) {
	repo := newFakeAnalysisRepo()
	svc := newAnalysisService(repo, newFakeStorage())

	created, err := svc.AnalyzeDocument(context.Background(), "nota.xml", []byte(analysisDoc))
	require.NoError(t, err)

	got, err := svc.GetAnalysis(context.Background(), created.Job.ID)

	require.NoError(t, err)
	assert.Equal(t, created.Job.ID, got.Job.ID)
	assert.Len(t, got.Items, 2)
}

func TestGetAnalysis_NotFound(t *testing.T) {
	svc := newAnalysisService(newFakeAnalysisRepo(), newFakeStorage())

	_, err := svc.GetAnalysis(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrAnalysisNotFound)
}
