package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

type collection struct {
	info   domain.CollectionInfo
	chunks []domain.Chunk
}

// CollectionStore is an in-memory implementation of driven.CollectionStore.
// Search is a brute-force cosine scan.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]*collection),
	}
}

// Replace swaps the collection's contents for chunks.
func (s *CollectionStore) Replace(_ context.Context, info domain.CollectionInfo, chunks []domain.Chunk) error {
	if err := info.ValidateChunks(chunks); err != nil {
		return err
	}

	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = slices.Clone(c.Embedding)
		stored[i] = c
	}
	slices.SortStableFunc(stored, func(a, b domain.Chunk) int { return a.Index - b.Index })
	info.Chunks = len(stored)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[info.Name] = &collection{info: info, chunks: stored}
	return nil
}

// Search scores every chunk passing filter and returns the k closest.
func (s *CollectionStore) Search(
	ctx context.Context, name string, vector []float32, k int, filter *domain.Filter,
) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	coll, ok := s.collections[name]
	s.mu.RUnlock()
	if !ok {
		return []domain.RetrievedChunk{}, nil
	}

	results := make([]domain.RetrievedChunk, 0, len(coll.chunks))
	for _, c := range coll.chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !filter.Matches(c.Source) {
			continue
		}
		results = append(results, domain.RetrievedChunk{
			Chunk:    c,
			Distance: domain.CosineDistance(vector, c.Embedding),
		})
	}
	return domain.TopK(results, k), nil
}

// Info describes a collection.
func (s *CollectionStore) Info(_ context.Context, name string) (*domain.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	info := coll.info
	return &info, nil
}

// Chunks returns a copy of every chunk in the collection.
func (s *CollectionStore) Chunks(_ context.Context, name string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return slices.Clone(coll.chunks), nil
}

// Close is a no-op for the in-memory store.
func (s *CollectionStore) Close() error {
	return nil
}
