package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func testChunk(index int, source string, embedding ...float32) domain.Chunk {
	return domain.Chunk{
		ID:            domain.ChunkKey(source, index*10),
		Index:         index,
		Source:        source,
		Offset:        index * 10,
		Content:       "chunk content",
		PageReference: "Page 1",
		Embedding:     embedding,
	}
}

func seededStore(t *testing.T) *CollectionStore {
	t.Helper()
	store := NewCollectionStore()
	info := domain.CollectionInfo{Name: "docs", EmbeddingModel: "test", Dimensions: 2}
	require.NoError(t, store.Replace(context.Background(), info, []domain.Chunk{
		testChunk(1, "a.pdf", 1, 0),
		testChunk(2, "b.pdf", 0, 1),
		testChunk(3, "a.pdf", 1, 1),
	}))
	return store
}

func TestCollectionStore_Info(t *testing.T) {
	store := seededStore(t)

	info, err := store.Info(context.Background(), "docs")

	require.NoError(t, err)
	assert.Equal(t, "test", info.EmbeddingModel)
	assert.Equal(t, 2, info.Dimensions)
	assert.Equal(t, 3, info.Chunks)
}

func TestCollectionStore_Info_NotFound(t *testing.T) {
	_, err := NewCollectionStore().Info(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCollectionStore_Search_OrdersByDistance(t *testing.T) {
	store := seededStore(t)

	results, err := store.Search(context.Background(), "docs", []float32{1, 0}, 3, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 1, results[0].Chunk.Index)
	assert.Equal(t, 3, results[1].Chunk.Index)
	assert.Equal(t, 2, results[2].Chunk.Index)
	assert.InDelta(t, 0, results[0].Distance, 1e-9)
}

func TestCollectionStore_Search_TopK(t *testing.T) {
	store := seededStore(t)

	results, err := store.Search(context.Background(), "docs", []float32{1, 0}, 1, nil)

	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestCollectionStore_Search_Filter(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	results, err := store.Search(ctx, "docs", []float32{1, 0}, 5, domain.NewSourceFilter("b.pdf"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b.pdf", results[0].Chunk.Source)

	results, err = store.Search(ctx, "docs", []float32{1, 0}, 5, domain.NewSourceFilter())
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollectionStore_Search_MissingCollection(t *testing.T) {
	results, err := NewCollectionStore().Search(context.Background(), "missing", []float32{1, 0}, 5, nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCollectionStore_Search_TiesBrokenByIndex(t *testing.T) {
	store := NewCollectionStore()
	info := domain.CollectionInfo{Name: "docs", Dimensions: 2}
	require.NoError(t, store.Replace(context.Background(), info, []domain.Chunk{
		testChunk(7, "a.pdf", 1, 0),
		testChunk(2, "a.pdf", 1, 0),
		testChunk(5, "a.pdf", 1, 0),
	}))

	results, err := store.Search(context.Background(), "docs", []float32{1, 0}, 5, nil)

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []int{2, 5, 7}, []int{results[0].Chunk.Index, results[1].Chunk.Index, results[2].Chunk.Index})
}

func TestCollectionStore_Replace_DiscardsPrevious(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	info := domain.CollectionInfo{Name: "docs", Dimensions: 2}

	require.NoError(t, store.Replace(ctx, info, []domain.Chunk{testChunk(1, "c.pdf", 1, 0)}))

	chunks, err := store.Chunks(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "c.pdf", chunks[0].Source)
}

func TestCollectionStore_Replace_DimensionMismatchKeepsPrevious(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	info := domain.CollectionInfo{Name: "docs", Dimensions: 2}

	err := store.Replace(ctx, info, []domain.Chunk{testChunk(1, "c.pdf", 1, 0, 0)})
	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)

	chunks, err := store.Chunks(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestCollectionStore_Chunks_IsCopy(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	chunks, err := store.Chunks(ctx, "docs")
	require.NoError(t, err)
	chunks[0].Content = "mutated"

	again, err := store.Chunks(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "chunk content", again[0].Content)
}

func TestCollectionStore_ConcurrentReadsDuringReplace(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	info := domain.CollectionInfo{Name: "docs", Dimensions: 2}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			results, err := store.Search(ctx, "docs", []float32{1, 0}, 5, nil)
			assert.NoError(t, err)
			assert.NotEmpty(t, results)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Replace(ctx, info, []domain.Chunk{testChunk(1, "a.pdf", 1, 0)}))
		}()
	}
	wg.Wait()
}

func TestCollectionStore_Close(t *testing.T) {
	assert.NoError(t, NewCollectionStore().Close())
}
