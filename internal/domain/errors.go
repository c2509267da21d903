package domain

import "fmt"

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

// Is matches domain errors by code and message so wrapped copies compare equal
// to the sentinels below.
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

// WithCause returns a copy of e carrying err as its cause
func (e *DomainError) WithCause(err error) *DomainError {
	return NewDomainErrorWithCause(e.Code, e.Message, err)
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrURLRequired = NewDomainError(ErrCodeValidation, "URL is required")
	ErrInvalidURL  = NewDomainError(ErrCodeValidation, "Invalid URL format")
)

// Not found errors
var (
	ErrItemNotFound         = NewDomainError(ErrCodeNotFound, "Item not found")
	ErrSnapshotNotFound     = NewDomainError(ErrCodeNotFound, "Snapshot not found")
	ErrEmbeddingJobNotFound = NewDomainError(ErrCodeNotFound, "Embedding job not found")
)

// Already exists errors
var (
	ErrURLAlreadyExists = NewDomainError(ErrCodeAlreadyExists, "URL already exists in your library")
)

// Internal errors
var (
	ErrStorageFailure = NewDomainError(ErrCodeInternalError, "Failed to save item")
)
