package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same code and message, so a sentinel
// matches the same error wrapped with a cause.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of the sentinel carrying err as its cause.
func Wrap(sentinel *DomainError, err error) *DomainError {
	return NewDomainErrorWithCause(sentinel.Code, sentinel.Message, err)
}

// CodeOf returns the code of the first DomainError in err's chain.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeUnavailable      = "UNAVAILABLE"
)

// Pipeline error codes
const (
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeParse             = "PARSE_ERROR"
	ErrCodeEmbeddingService  = "EMBEDDING_SERVICE_ERROR"
	ErrCodeDimensionMismatch = "DIMENSION_MISMATCH"
	ErrCodeGenerationService = "GENERATION_SERVICE_ERROR"
	ErrCodePersistence       = "PERSISTENCE_ERROR"
	ErrCodeUpstream          = "UPSTREAM_ERROR"
)

// Validation errors
var (
	ErrInvalidKnowledgeKind = NewDomainError(ErrCodeValidation, "invalid knowledge kind")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
	ErrInvalidSignature     = NewDomainError(ErrCodeUnauthorized, "invalid webhook signature")
)

// Not found errors
var (
	ErrKnowledgeNotFound   = NewDomainError(ErrCodeNotFound, "knowledge item not found")
	ErrMeetingTypeNotFound = NewDomainError(ErrCodeNotFound, "meeting type not found")
	ErrPersonaNotFound     = NewDomainError(ErrCodeNotFound, "persona not found")
	ErrTranscriptNotFound  = NewDomainError(ErrCodeNotFound, "transcript not found")
	ErrIssueNotFound       = NewDomainError(ErrCodeNotFound, "jira issue not found")
)

// Already exists errors
var (
	ErrTranscriptAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "transcript already exists")
)

// Availability errors
var (
	ErrJiraNotConfigured      = NewDomainError(ErrCodeUnavailable, "jira integration is not configured")
	ErrStorageNotConfigured   = NewDomainError(ErrCodeUnavailable, "object storage is not configured")
	ErrRetrievalNotConfigured = NewDomainError(ErrCodeUnavailable, "knowledge retrieval is not configured")
	ErrWebhookNotConfigured   = NewDomainError(ErrCodeUnavailable, "webhook secret is not configured")
	ErrGenerationUnavailable  = NewDomainError(ErrCodeUnavailable, "text generation is not configured")
)

// Pipeline errors
var (
	ErrUnsupportedFormat      = NewDomainError(ErrCodeUnsupportedFormat, "unsupported file format")
	ErrParse                  = NewDomainError(ErrCodeParse, "failed to parse file")
	ErrEmbeddingService       = NewDomainError(ErrCodeEmbeddingService, "embedding service failed")
	ErrDimensionMismatch      = NewDomainError(ErrCodeDimensionMismatch, "vector dimension mismatch")
	ErrGenerationService      = NewDomainError(ErrCodeGenerationService, "generation service failed")
	ErrPersistence            = NewDomainError(ErrCodePersistence, "failed to persist transcript")
	ErrStorageOperationFailed = NewDomainError(ErrCodeInternalError, "storage operation failed")
	ErrUpstream               = NewDomainError(ErrCodeUpstream, "upstream service failed")
)
