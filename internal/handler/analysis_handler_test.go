package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claritax/internal/domain"
	"claritax/internal/handler"
	"claritax/internal/service"
)

type fakeAnalysisService struct {
	result *service.AnalysisResult
	err    error

	lastFileName string
}

func (f *fakeAnalysisService) AnalyzeDocument(_ context.Context, fileName string, _ []byte) (*service.AnalysisResult, error) {
	f.lastFileName = fileName
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeAnalysisService) GetAnalysis(_ context.Context, _ uuid.UUID) (*service.AnalysisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func setupAnalysisRouter(svc service.AnalysisService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewAnalysisHandler(svc)
	r.POST("/analyses", h.Analyze)
	r.GET("/analyses/:id", h.Get)
	r.GET("/analyses/:id/export", h.ExportCSV)
	return r
}

func multipartBody(t *testing.T, fieldName, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func completedResult() *service.AnalysisResult {
	return &service.AnalysisResult{
		Job: &domain.AnalysisJob{
			ID:        uuid.New(),
			FileName:  "nota.xml",
			Status:    domain.AnalysisStatusCompleted,
			ItemCount: 1,
		},
		Items: []domain.AnalysisItem{
			{Position: 0, InternalCode: "001", Description: "LEITE", Status: domain.StatusNotFound},
		},
	}
}

func TestAnalysisHandler_Analyze_OK(t *testing.T) {
	svc := &fakeAnalysisService{result: completedResult()}
	r := setupAnalysisRouter(svc)

	body, contentType := multipartBody(t, "file", "nota.xml", "<nfeProc/>")
	req := httptest.NewRequest(http.MethodPost, "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "nota.xml", svc.lastFileName)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestAnalysisHandler_Analyze_MissingFile(t *testing.T) {
	r := setupAnalysisRouter(&fakeAnalysisService{})

	req := httptest.NewRequest(http.MethodPost, "/analyses", strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisHandler_Analyze_NonXMLRejected(t *testing.T) {
	r := setupAnalysisRouter(&fakeAnalysisService{})

	body, contentType := multipartBody(t, "file", "planilha.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNSUPPORTED_FILE", resp.Error.Code)
}

func TestAnalysisHandler_Analyze_MalformedDocument(t *testing.T) {
	r := setupAnalysisRouter(&fakeAnalysisService{err: domain.ErrDocumentMalformed})

	body, contentType := multipartBody(t, "file", "nota.xml", "not xml")
	req := httptest.NewRequest(http.MethodPost, "/analyses", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DOCUMENT_MALFORMED", resp.Error.Code)
}

func TestAnalysisHandler_Get_OK(t *testing.T) {
	result := completedResult()
	r := setupAnalysisRouter(&fakeAnalysisService{result: result})

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+result.Job.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnalysisHandler_Get_InvalidID(t *testing.T) {
	r := setupAnalysisRouter(&fakeAnalysisService{})

	req := httptest.NewRequest(http.MethodGet, "/analyses/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalysisHandler_Get_NotFound(t *testing.T) {
	r := setupAnalysisRouter(&fakeAnalysisService{err: domain.ErrAnalysisNotFound})

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAnalysisHandler_ExportCSV_OK(t *testing.T) {
	result := completedResult()
	r := setupAnalysisRouter(&fakeAnalysisService{result: result})

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+result.Job.ID.String()+"/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "nota_xml_")

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(body), "Position,Internal Code")
	assert.Contains(t, string(body), "LEITE")
}

func TestAnalysisHandler_ExportCSV_IncompleteJob(t *testing.T) {
	result := completedResult()
	result.Job.Status = domain.AnalysisStatusProcessing
	r := setupAnalysisRouter(&fakeAnalysisService{result: result})

	req := httptest.NewRequest(http.MethodGet, "/analyses/"+result.Job.ID.String()+"/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
