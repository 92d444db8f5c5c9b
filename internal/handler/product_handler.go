package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"claritax/internal/domain"
	"claritax/internal/service"
)

// ProductHandler handles product lookup endpoints.
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Search handles GET /api/v1/products/search?q=...&mode=name|ncm
func (h *ProductHandler) Search(c *gin.Context) {
	mode := domain.SearchMode(c.DefaultQuery("mode", string(domain.SearchByName)))
	if mode != domain.SearchByName && mode != domain.SearchByTariff {
		HandleError(c, domain.ErrInvalidSearchMode)
		return
	}

	summaries, err := h.productService.Search(c.Request.Context(), c.Query("q"), mode)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summaries)
}

// GetByID handles GET /api/v1/products/:id?cashback=true
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, 400, "INVALID_ID", "product id must be an integer")
		return
	}

	profile, err := h.productService.GetByID(c.Request.Context(), id, cashbackFlag(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, profile)
}

// GetByBarcode handles GET /api/v1/products/barcode/:code?cashback=true
func (h *ProductHandler) GetByBarcode(c *gin.Context) {
	profile, err := h.productService.GetByBarcode(c.Request.Context(), c.Param("code"), cashbackFlag(c))
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, profile)
}

type lookupRequest struct {
	Query    string `json:"query" binding:"required"`
	Mode     string `json:"mode" binding:"required"`
	Cashback bool   `json:"cashback"`
}

// Lookup handles POST /api/v1/products/lookup
func (h *ProductHandler) Lookup(c *gin.Context) {
	var req lookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, 400, "INVALID_BODY", "query and mode are required")
		return
	}

	result, err := h.productService.Lookup(c.Request.Context(), req.Query, domain.LookupMode(req.Mode), req.Cashback)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func cashbackFlag(c *gin.Context) bool {
	return c.Query("cashback") == "true"
}
