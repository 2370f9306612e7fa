package main

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes application errors
type ErrorType string

const (
	ErrorTypeInput      ErrorType = "input"
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeSearch     ErrorType = "search"
	ErrorTypeAI         ErrorType = "ai"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes
const (
	// Input error codes
	ErrInputShape       = "INPUT_001"
	ErrInputBlank       = "INPUT_002"
	ErrInputURL         = "INPUT_003"
	ErrInputBlockedHost = "INPUT_004"

	// Extraction error codes
	ErrExtractExhausted = "EXTRACT_001"
	ErrExtractQuality   = "EXTRACT_002"
	ErrExtractFetch     = "EXTRACT_003"

	// Search error codes
	ErrSearchUpstream = "SEARCH_001"

	// AI error codes
	ErrAIUpstream = "AI_001"
	ErrAITimeout  = "AI_002"

	// Config error codes
	ErrConfigMissingKey = "CONFIG_001"
	ErrConfigInvalid    = "CONFIG_002"
)

// AppError is the application error type carried across the pipeline
type AppError struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Inner   error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("[%s-%s] %s: %v", e.Type, e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("[%s-%s] %s", e.Type, e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Inner
}

// NewError creates a new AppError
func NewError(errType ErrorType, code, message string, inner error) *AppError {
	return &AppError{
		Type:    errType,
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

// Common error constructors
func NewInputError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeInput, code, message, inner)
}

func NewExtractionError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeExtraction, code, message, inner)
}

func NewAIError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeAI, code, message, inner)
}

func NewConfigError(code, message string, inner error) *AppError {
	return NewError(ErrorTypeConfig, code, message, inner)
}

// HTTPStatus maps an error to the status the API surface should return.
// Invalid input is the caller's fault; extraction means the target page
// could not be read; AI upstream failures are transient infrastructure
// problems; a missing credential means the service is misconfigured.
func HTTPStatus(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}
	switch appErr.Type {
	case ErrorTypeInput:
		return http.StatusBadRequest
	case ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	case ErrorTypeAI:
		return http.StatusBadGateway
	case ErrorTypeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsTransient reports whether a retry may succeed
func IsTransient(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case ErrAIUpstream, ErrAITimeout, ErrSearchUpstream, ErrExtractFetch:
		return true
	}
	return false
}
