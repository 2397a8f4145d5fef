package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeFetch              ErrorType = "FETCH_ERROR"
	ErrorTypeExtraction         ErrorType = "EXTRACTION_ERROR"
	ErrorTypeNoExtractorMatched ErrorType = "NO_EXTRACTOR_MATCHED"
	ErrorTypeConversion         ErrorType = "CONVERSION_ERROR"
	ErrorTypeBuilder            ErrorType = "BUILDER_ERROR"
	ErrorTypeConfig             ErrorType = "CONFIG_ERROR"
	ErrorTypeOCR                ErrorType = "OCR_ERROR"
	ErrorTypeValidation         ErrorType = "VALIDATION_ERROR"
	ErrorTypeRateLimit          ErrorType = "RATE_LIMIT_ERROR"
	ErrorTypeNotFound           ErrorType = "NOT_FOUND_ERROR"
	ErrorTypeInternal           ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type          ErrorType `json:"type"`
	Message       string    `json:"message"`
	StatusCode    int       `json:"statusCode"`
	ErrorCode     string    `json:"errorCode"`
	IsOperational bool      `json:"isOperational"`
	Recovery      string    `json:"recoverySuggestion,omitempty"`
	Err           error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// Codes of transient failures. Fetch, conversion and OCR errors are only
// worth another attempt when they carry one of these.
const (
	CodeFetchTimeout         = "FETCH_TIMEOUT"
	CodeFetchRateLimited     = "FETCH_RATE_LIMITED"
	CodeProvidersRateLimited = "PROVIDERS_RATE_LIMITED"
	CodeProvidersUnavailable = "PROVIDERS_UNAVAILABLE"
	CodeOCRTimeout           = "OCR_TIMEOUT"
	CodeOCRRateLimited       = "OCR_RATE_LIMITED"
)

var transientCodes = map[string]bool{
	CodeFetchTimeout:         true,
	CodeFetchRateLimited:     true,
	CodeProvidersRateLimited: true,
	CodeProvidersUnavailable: true,
	CodeOCRTimeout:           true,
	CodeOCRRateLimited:       true,
}

// IsRetryable reports whether re-running the whole import may succeed:
// rate limits and timeouts only. Missing pages, rejected documents and a
// fallback chain that failed outright are final.
func (e *AppError) IsRetryable() bool {
	switch e.Type {
	case ErrorTypeRateLimit:
		return true
	case ErrorTypeFetch, ErrorTypeConversion, ErrorTypeOCR:
		return transientCodes[e.ErrorCode]
	case ErrorTypeInternal:
		return e.StatusCode >= 500
	default:
		return false
	}
}

// IsRateLimited reports whether an upstream asked us to slow down.
func (e *AppError) IsRateLimited() bool {
	switch e.ErrorCode {
	case CodeFetchRateLimited, CodeProvidersRateLimited, CodeOCRRateLimited:
		return true
	}
	return e.Type == ErrorTypeRateLimit
}

// As returns the first AppError in err's chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// NewFetchError creates a fetch error (502). Fetch failures end the pipeline run.
func NewFetchError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeFetch,
		Message:       message,
		StatusCode:    http.StatusBadGateway,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Verify the URL is reachable and try again later.",
		Err:           err,
	}
}

// NewExtractionError creates an extraction error (422)
func NewExtractionError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeExtraction,
		Message:       message,
		StatusCode:    http.StatusUnprocessableEntity,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Make sure the source contains a recipe with ingredients or instructions.",
		Err:           err,
	}
}

// NewNoExtractorMatchedError reports that every structured extractor rejected the document.
func NewNoExtractorMatchedError(err error) *AppError {
	return &AppError{
		Type:          ErrorTypeNoExtractorMatched,
		Message:       "no structured extractor matched the document",
		StatusCode:    http.StatusUnprocessableEntity,
		ErrorCode:     "NO_EXTRACTOR_MATCHED",
		IsOperational: true,
		Recovery:      "The page has no recognizable recipe markup.",
		Err:           err,
	}
}

// NewConversionError creates a conversion error (502)
func NewConversionError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeConversion,
		Message:       message,
		StatusCode:    http.StatusBadGateway,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Check provider credentials and quotas, or enable fallback providers.",
		Err:           err,
	}
}

// NewBuilderError creates an error for an invalid import request (400)
func NewBuilderError(message string, errorCode string) *AppError {
	return &AppError{
		Type:          ErrorTypeBuilder,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Specify exactly one source and a compatible set of options.",
	}
}

// NewConfigError creates a configuration error (500)
func NewConfigError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeConfig,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Check the configuration file and environment variables.",
		Err:           err,
	}
}

// NewOCRError creates an OCR error (502)
func NewOCRError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeOCR,
		Message:       message,
		StatusCode:    http.StatusBadGateway,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      "Try a sharper image with legible text.",
		Err:           err,
	}
}

// NewValidationError creates a new validation error (400)
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       message,
		StatusCode:    http.StatusBadRequest,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewNotFoundError creates a new not found error (404)
func NewNotFoundError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeNotFound,
		Message:       message,
		StatusCode:    http.StatusNotFound,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewRateLimitError creates a new rate limit error (429)
func NewRateLimitError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:          ErrorTypeRateLimit,
		Message:       message,
		StatusCode:    http.StatusTooManyRequests,
		ErrorCode:     errorCode,
		IsOperational: true,
		Recovery:      suggestion,
	}
}

// NewInternalError creates a new internal error (500)
func NewInternalError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:          ErrorTypeInternal,
		Message:       message,
		StatusCode:    http.StatusInternalServerError,
		ErrorCode:     errorCode,
		IsOperational: false,
		Err:           err,
	}
}
