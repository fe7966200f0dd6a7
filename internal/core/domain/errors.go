package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoDocuments indicates ingestion found no loadable documents.
	// No index is written when this is returned.
	ErrNoDocuments = errors.New("no documents available")

	// ErrExtractorNotFound indicates no page extractor handles a file type.
	ErrExtractorNotFound = errors.New("no extractor for file type")

	// ErrEmbeddingFailed indicates a chunk could not be embedded.
	// The ingestion run is aborted and the prior collection is kept.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrEmbeddingMismatch indicates the query embedder differs from the
	// embedder that built the collection.
	ErrEmbeddingMismatch = errors.New("embedding model mismatch")

	// ErrRetrievalFailed indicates the collection could not be searched.
	ErrRetrievalFailed = errors.New("retrieval failed")

	// ErrUnknownCategory indicates a category name absent from the catalogue.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrLLMUnavailable indicates the LLM service is not configured or unreachable.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrConfigNotFound indicates a referenced configuration file is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// wrapInvalid returns an ErrInvalidInput with a formatted detail.
func wrapInvalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
