package domain

import (
	"errors"
)

var (
	// ErrMissingQuery signals a request without a query string.
	ErrMissingQuery = errors.New("query parameter is missing")
	// ErrInvalidParameter signals a threshold or date filter outside its contract.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidFile signals a missing upload or a disallowed file extension.
	ErrInvalidFile = errors.New("invalid file")
	// ErrUnauthorized signals a missing or mismatched passphrase.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRetrieval signals a document search service failure.
	ErrRetrieval = errors.New("retrieval error")
	// ErrIngestion signals a document ingestion failure.
	ErrIngestion = errors.New("ingestion error")
	// ErrScoringFailed signals a categorization failure. Never surfaced to clients.
	ErrScoringFailed = errors.New("scoring failed")
	// ErrGenerationFailed signals a text generation failure. Never surfaced to clients.
	ErrGenerationFailed = errors.New("generation failed")
)

// ParameterError wraps ErrInvalidParameter with a client-facing message.
type ParameterError struct {
	Message string
}

func (e *ParameterError) Error() string { return e.Message }

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// NewParameterError creates an invalid parameter error with a verbatim message.
func NewParameterError(msg string) error {
	return &ParameterError{Message: msg}
}
