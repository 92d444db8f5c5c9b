package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claritax/internal/domain"
	"claritax/internal/handler"
	"claritax/internal/service"
)

type fakeProductService struct {
	summaries []domain.ProductSummary
	profile   *service.ProductTaxProfile
	lookup    *service.LookupResult
	err       error

	lastMode     domain.SearchMode
	lastCashback bool
}

func (f *fakeProductService) Search(_ context.Context, _ string, mode domain.SearchMode) ([]domain.ProductSummary, error) {
	f.lastMode = mode
	return f.summaries, f.err
}

func (f *fakeProductService) GetByID(_ context.Context, _ int64, useCashback bool) (*service.ProductTaxProfile, error) {
	f.lastCashback = useCashback
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeProductService) GetByBarcode(_ context.Context, _ string, useCashback bool) (*service.ProductTaxProfile, error) {
	f.lastCashback = useCashback
	if f.err != nil {
		return nil, f.err
	}
	return f.profile, nil
}

func (f *fakeProductService) Lookup(_ context.Context, _ string, _ domain.LookupMode, useCashback bool) (*service.LookupResult, error) {
	f.lastCashback = useCashback
	if f.err != nil {
		return nil, f.err
	}
	return f.lookup, nil
}

func setupProductRouter(svc service.ProductService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewProductHandler(svc)
	r.GET("/products/search", h.Search)
	r.GET("/products/barcode/:code", h.GetByBarcode)
	r.GET("/products/:id", h.GetByID)
	r.POST("/products/lookup", h.Lookup)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body []byte) (*httptest.ResponseRecorder, handler.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestProductHandler_Search_OK(t *testing.T) {
	svc := &fakeProductService{summaries: []domain.ProductSummary{{ID: 1, Name: "Leite"}}}
	r := setupProductRouter(svc)

	w, resp := doRequest(t, r, http.MethodGet, "/products/search?q=leite&mode=ncm", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, domain.SearchByTariff, svc.lastMode)
}

func TestProductHandler_Search_DefaultsToNameMode(t *testing.T) {
	svc := &fakeProductService{}
	r := setupProductRouter(svc)

	w, _ := doRequest(t, r, http.MethodGet, "/products/search?q=leite", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.SearchByName, svc.lastMode)
}

func TestProductHandler_Search_InvalidMode(t *testing.T) {
	r := setupProductRouter(&fakeProductService{})

	w, resp := doRequest(t, r, http.MethodGet, "/products/search?q=leite&mode=bogus", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_SEARCH_MODE", resp.Error.Code)
}

func TestProductHandler_GetByID_OK(t *testing.T) {
	svc := &fakeProductService{profile: &service.ProductTaxProfile{Insight: "texto"}}
	r := setupProductRouter(svc)

	w, resp := doRequest(t, r, http.MethodGet, "/products/1?cashback=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.True(t, svc.lastCashback)
}

func TestProductHandler_GetByID_InvalidID(t *testing.T) {
	r := setupProductRouter(&fakeProductService{})

	w, resp := doRequest(t, r, http.MethodGet, "/products/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ID", resp.Error.Code)
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	r := setupProductRouter(&fakeProductService{err: domain.ErrNotFound})

	w, resp := doRequest(t, r, http.MethodGet, "/products/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestProductHandler_GetByBarcode_OK(t *testing.T) {
	svc := &fakeProductService{profile: &service.ProductTaxProfile{}}
	r := setupProductRouter(svc)

	w, resp := doRequest(t, r, http.MethodGet, "/products/barcode/7891000100103", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.False(t, svc.lastCashback)
}

func TestProductHandler_Lookup_OK(t *testing.T) {
	svc := &fakeProductService{lookup: &service.LookupResult{Status: service.LookupFound}}
	r := setupProductRouter(svc)

	body := []byte(`{"query":"leite","mode":"name","cashback":true}`)
	w, resp := doRequest(t, r, http.MethodPost, "/products/lookup", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.True(t, svc.lastCashback)
}

func TestProductHandler_Lookup_MissingFields(t *testing.T) {
	r := setupProductRouter(&fakeProductService{})

	w, resp := doRequest(t, r, http.MethodPost, "/products/lookup", []byte(`{"query":"leite"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_BODY", resp.Error.Code)
}

func TestProductHandler_Lookup_InvalidMode(t *testing.T) {
	r := setupProductRouter(&fakeProductService{err: domain.ErrInvalidLookupMode})

	body := []byte(`{"query":"leite","mode":"bogus"}`)
	w, resp := doRequest(t, r, http.MethodPost, "/products/lookup", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_LOOKUP_MODE", resp.Error.Code)
}
