package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claritax/internal/csvexport"
	"claritax/internal/domain"
	"claritax/internal/service"
)

// AnalysisHandler handles bulk document analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Analyze handles POST /api/v1/analyses (multipart field "file").
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "multipart field 'file' is required")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xml") {
		HandleError(c, domain.ErrUnsupportedFile)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not open uploaded file")
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "UNREADABLE_FILE", "could not read uploaded file")
		return
	}

	result, err := h.analysisService.AnalyzeDocument(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondCreated(c, result)
}

// Get handles GET /api/v1/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "analysis id must be a UUID")
		return
	}

	result, err := h.analysisService.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ExportCSV handles GET /api/v1/analyses/:id/export
func (h *AnalysisHandler) ExportCSV(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "analysis id must be a UUID")
		return
	}

	result, err := h.analysisService.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}
	if result.Job.Status != domain.AnalysisStatusCompleted {
		HandleError(c, domain.ErrAnalysisIncomplete)
		return
	}

	filename := csvexport.BuildFilename(result.Job.FileName)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}

	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteItems(result.Items); err != nil {
		return
	}
	w.Flush()
}
