package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"claritax/internal/domain"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrAnalysisNotFound):
		return http.StatusNotFound, "ANALYSIS_NOT_FOUND", "analysis not found"
	case errors.Is(err, domain.ErrInvalidSearchMode):
		return http.StatusBadRequest, "INVALID_SEARCH_MODE", "search mode must be name or ncm"
	case errors.Is(err, domain.ErrInvalidLookupMode):
		return http.StatusBadRequest, "INVALID_LOOKUP_MODE", "lookup mode must be barcode or name"
	case errors.Is(err, domain.ErrEmptyQuery):
		return http.StatusBadRequest, "EMPTY_QUERY", "query must not be blank"
	case errors.Is(err, domain.ErrUnsupportedFile):
		return http.StatusBadRequest, "UNSUPPORTED_FILE", "only XML invoice documents are supported"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "file exceeds maximum allowed size"
	case errors.Is(err, domain.ErrDocumentMalformed):
		return http.StatusBadRequest, "DOCUMENT_MALFORMED", "document could not be parsed"
	case errors.Is(err, domain.ErrNoLineItems):
		return http.StatusBadRequest, "NO_LINE_ITEMS", "document contains no line items"
	case errors.Is(err, domain.ErrAnalysisIncomplete):
		return http.StatusConflict, "ANALYSIS_INCOMPLETE", "analysis has not finished"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusInternalServerError, "UPLOAD_FAILED", "file upload to storage failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)
	if status >= 500 {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
	}
	RespondError(c, status, code, msg)
}
