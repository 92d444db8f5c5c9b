package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidSearchMode  = errors.New("invalid search mode")
	ErrInvalidLookupMode  = errors.New("invalid lookup mode")
	ErrEmptyQuery         = errors.New("query must not be blank")
	ErrUnsupportedFile    = errors.New("unsupported document type")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrDocumentMalformed  = errors.New("document could not be parsed")
	ErrNoLineItems        = errors.New("document contains no line items")
	ErrAnalysisNotFound   = errors.New("analysis not found")
	ErrAnalysisIncomplete = errors.New("analysis has not finished")
	ErrUploadFailed       = errors.New("file upload to storage failed")
)
