package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DefaultEmbedBatchSize is the number of chunks embedded per request.
const DefaultEmbedBatchSize = 64

// IndexBuilder embeds chunks and replaces a collection with them.
type IndexBuilder struct {
	embedder  driven.EmbeddingService
	store     driven.CollectionStore
	batchSize int
	now       func() time.Time
}

// NewIndexBuilder creates an index builder.
func NewIndexBuilder(embedder driven.EmbeddingService, store driven.CollectionStore) *IndexBuilder {
	return &IndexBuilder{
		embedder:  embedder,
		store:     store,
		batchSize: DefaultEmbedBatchSize,
		now:       time.Now,
	}
}

// SetBatchSize changes the embedding batch size. Non-positive sizes are ignored.
func (b *IndexBuilder) SetBatchSize(n int) {
	if n > 0 {
		b.batchSize = n
	}
}

// Build embeds every chunk, then replaces collection in one store call.
// Any embedding failure aborts the build before the store is touched, so
// the previous collection stays intact.
func (b *IndexBuilder) Build(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to index", domain.ErrInvalidInput)
	}

	indexed, err := b.embed(ctx, chunks)
	if err != nil {
		return err
	}

	info := domain.CollectionInfo{
		Name:           collection,
		EmbeddingModel: b.embedder.ModelName(),
		Dimensions:     len(indexed[0].Embedding),
		Chunks:         len(indexed),
		CreatedAt:      b.now().UTC(),
	}

	logger.Debug("Replacing collection %q with %d chunks (%s, %d dims)",
		collection, len(indexed), info.EmbeddingModel, info.Dimensions)
	if err := b.store.Replace(ctx, info, indexed); err != nil {
		return fmt.Errorf("store collection: %w", err)
	}
	return nil
}

func (b *IndexBuilder) embed(ctx context.Context, chunks []domain.Chunk) ([]domain.Chunk, error) {
	indexed := make([]domain.Chunk, len(chunks))
	copy(indexed, chunks)

	dims := 0
	for start := 0; start < len(indexed); start += b.batchSize {
		end := min(start+b.batchSize, len(indexed))
		texts := make([]string, 0, end-start)
		for _, c := range indexed[start:end] {
			texts = append(texts, c.Content)
		}

		vectors, err := b.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: chunks %d-%d: %w", domain.ErrEmbeddingFailed, start, end-1, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks",
				domain.ErrEmbeddingFailed, len(vectors), len(texts))
		}

		for i, v := range vectors {
			c := &indexed[start+i]
			if len(v) == 0 {
				return nil, fmt.Errorf("%w: empty vector for chunk %s", domain.ErrEmbeddingFailed, c.ID)
			}
			if dims == 0 {
				dims = len(v)
			} else if len(v) != dims {
				return nil, fmt.Errorf("%w: chunk %s has %d dimensions, expected %d",
					domain.ErrEmbeddingFailed, c.ID, len(v), dims)
			}
			c.Embedding = v
		}
		logger.Debug("Embedded %d/%d chunks", end, len(indexed))
	}
	return indexed, nil
}
