package driven

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// CollectionStore persists named collections of embedded chunks and
// searches them by vector similarity.
//
// Reads may run concurrently with each other. Replace must be atomic:
// after it returns, the collection holds either the complete new chunk
// set or, on error, the complete previous one.
type CollectionStore interface {
	// Replace discards every chunk of info.Name and stores chunks in its
	// place. Every chunk must carry an embedding of info.Dimensions.
	Replace(ctx context.Context, info domain.CollectionInfo, chunks []domain.Chunk) error

	// Search returns at most k chunks of the collection ordered by
	// increasing cosine distance to vector, ties broken with
	// domain.CompareRetrieved. Only chunks passing filter are considered.
	// A missing or empty collection yields an empty result.
	Search(ctx context.Context, name string, vector []float32, k int, filter *domain.Filter) ([]domain.RetrievedChunk, error)

	// Info describes a collection. Returns domain.ErrNotFound if it does
	// not exist.
	Info(ctx context.Context, name string) (*domain.CollectionInfo, error)

	// Chunks returns every chunk of the collection ordered by Index,
	// embeddings included.
	Chunks(ctx context.Context, name string) ([]domain.Chunk, error)

	// Close releases resources.
	Close() error
}
