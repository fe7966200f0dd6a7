package domain

import (
	"fmt"
	"time"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "customer_service_docs"

// CollectionInfo describes a persisted collection.
type CollectionInfo struct {
	Name string

	// EmbeddingModel and Dimensions identify the embedder that built the
	// collection. Queries must use the same embedder.
	EmbeddingModel string
	Dimensions     int

	// Chunks is the number of indexed chunks.
	Chunks int

	CreatedAt time.Time
}

// IngestionReport summarises one ingestion run.
type IngestionReport struct {
	RunID      string
	Collection string
	Documents  []string
	Skipped    []SkippedFile
	Chunks     int
	Duration   time.Duration
}

// ValidateChunks checks that chunks can be stored under info: the
// collection is named and every chunk carries an embedding of
// info.Dimensions.
func (info CollectionInfo) ValidateChunks(chunks []Chunk) error {
	if info.Name == "" {
		return wrapInvalid("collection name is empty")
	}
	if info.Dimensions <= 0 {
		return wrapInvalid("collection %q has no embedding dimensions", info.Name)
	}
	for _, c := range chunks {
		if len(c.Embedding) != info.Dimensions {
			return fmt.Errorf("%w: chunk %s has %d dimensions, collection %q expects %d",
				ErrEmbeddingMismatch, c.ID, len(c.Embedding), info.Name, info.Dimensions)
		}
	}
	return nil
}
