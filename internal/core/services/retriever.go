package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Retriever finds the chunks of a collection nearest to a query.
type Retriever struct {
	embedder   driven.EmbeddingService
	store      driven.CollectionStore
	collection string
}

// NewRetriever creates a retriever over collection. embedder must be the
// embedder the collection was built with.
func NewRetriever(embedder driven.EmbeddingService, store driven.CollectionStore, collection string) *Retriever {
	return &Retriever{embedder: embedder, store: store, collection: collection}
}

// Collection returns the collection name searched.
func (r *Retriever) Collection() string {
	return r.collection
}

// Retrieve returns at most k chunks ordered by increasing cosine distance.
// A non-positive k selects domain.DefaultTopK. A missing or empty
// collection, or a filter matching nothing, yields an empty result.
//
// Returns domain.ErrEmbeddingMismatch if the collection was built by a
// different embedding model or dimension.
func (r *Retriever) Retrieve(
	ctx context.Context, query string, k int, filter *domain.Filter,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}

	info, err := r.store.Info(ctx, r.collection)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("Collection %q does not exist", r.collection)
		return []domain.RetrievedChunk{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("describe collection: %w", err)
	}
	if info.EmbeddingModel != r.embedder.ModelName() {
		return nil, fmt.Errorf("%w: collection %q was built with %q, query embedder is %q",
			domain.ErrEmbeddingMismatch, r.collection, info.EmbeddingModel, r.embedder.ModelName())
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vector) != info.Dimensions {
		return nil, fmt.Errorf("%w: collection %q has %d dimensions, query vector has %d",
			domain.ErrEmbeddingMismatch, r.collection, info.Dimensions, len(vector))
	}

	results, err := r.store.Search(ctx, r.collection, vector, k, filter)
	if err != nil {
		return nil, fmt.Errorf("search collection: %w", err)
	}
	logger.Debug("Retrieved %d chunks (k=%d)", len(results), k)
	return results, nil
}
