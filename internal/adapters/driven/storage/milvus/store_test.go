package milvus

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// fakeBackend keeps collections in memory and records calls.
type fakeBackend struct {
	collections map[string]*fakeCollection
	calls       []string

	insertErr error
	searchErr error
	renameErr func(from, to string) error
	lastExpr  string
	lastK     int
}

type fakeCollection struct {
	description string
	chunks      []domain.Chunk
	rows        []int
	indexed     bool
	loaded      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{collections: make(map[string]*fakeCollection)}
}

func (f *fakeBackend) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeBackend) HasCollection(_ context.Context, name string) (bool, error) {
	_, ok := f.collections[name]
	return ok, nil
}

func (f *fakeBackend) CreateCollection(_ context.Context, name, description string, _ int) error {
	f.record("create " + name)
	f.collections[name] = &fakeCollection{description: description}
	return nil
}

func (f *fakeBackend) Insert(_ context.Context, name string, _, firstRow int, chunks []domain.Chunk) error {
	f.record("insert " + name)
	if f.insertErr != nil {
		return f.insertErr
	}
	c := f.collections[name]
	for i, chunk := range chunks {
		c.chunks = append(c.chunks, chunk)
		c.rows = append(c.rows, firstRow+i)
	}
	return nil
}

func (f *fakeBackend) Flush(_ context.Context, name string) error {
	f.record("flush " + name)
	return nil
}

func (f *fakeBackend) CreateIndex(_ context.Context, name string) error {
	f.record("index " + name)
	f.collections[name].indexed = true
	return nil
}

func (f *fakeBackend) Load(_ context.Context, name string) error {
	f.record("load " + name)
	f.collections[name].loaded = true
	return nil
}

func (f *fakeBackend) Drop(_ context.Context, name string) error {
	f.record("drop " + name)
	delete(f.collections, name)
	return nil
}

func (f *fakeBackend) Rename(_ context.Context, from, to string) error {
	f.record("rename " + from + " " + to)
	if f.renameErr != nil {
		if err := f.renameErr(from, to); err != nil {
			return err
		}
	}
	f.collections[to] = f.collections[from]
	delete(f.collections, from)
	return nil
}

func (f *fakeBackend) Description(_ context.Context, name string) (string, error) {
	return f.collections[name].description, nil
}

func (f *fakeBackend) Search(_ context.Context, name string, vector []float32, k int, expr string) ([]hit, error) {
	f.lastExpr = expr
	f.lastK = k
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var hits []hit
	for _, c := range f.collections[name].chunks {
		hits = append(hits, hit{chunk: c, score: float32(1 - domain.CosineDistance(vector, c.Embedding))})
	}
	return hits, nil
}

// Query returns the rows in the window in reverse order, so callers must sort.
func (f *fakeBackend) Query(_ context.Context, name string, fromRow, toRow int) ([]domain.Chunk, error) {
	f.record(fmt.Sprintf("query %s %d-%d", name, fromRow, toRow))
	c := f.collections[name]
	var chunks []domain.Chunk
	for i, row := range c.rows {
		if row >= fromRow && row < toRow {
			chunks = append(chunks, c.chunks[i])
		}
	}
	slices.Reverse(chunks)
	return chunks, nil
}

func (f *fakeBackend) Close(context.Context) error { return nil }

func testInfo() domain.CollectionInfo {
	return domain.CollectionInfo{
		Name:           "docs",
		EmbeddingModel: "nomic-embed-text",
		Dimensions:     2,
		CreatedAt:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "a.pdf#0", Index: 1, Source: "a.pdf", Content: "alpha", PageReference: "Page 1", Embedding: []float32{1, 0}},
		{ID: "b.pdf#0", Index: 2, Source: "b.pdf", Content: "beta", PageReference: "Page 1", Embedding: []float32{0, 1}},
	}
}

func TestStore_Replace_StagesThenRenames(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	fake.collections["docs"] = &fakeCollection{}

	require.NoError(t, store.Replace(context.Background(), testInfo(), testChunks()))

	assert.Equal(t, []string{
		"create docs_staging",
		"insert docs_staging",
		"flush docs_staging",
		"index docs_staging",
		"rename docs docs_previous",
		"rename docs_staging docs",
		"drop docs_previous",
		"load docs",
	}, fake.calls)
	require.Contains(t, fake.collections, "docs")
	assert.NotContains(t, fake.collections, "docs_staging")
	assert.True(t, fake.collections["docs"].indexed)
	assert.True(t, fake.collections["docs"].loaded)
	assert.Len(t, fake.collections["docs"].chunks, 2)
	assert.NotContains(t, fake.collections, "docs_previous")
}

func TestStore_Replace_RenameFailureKeepsLive(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testInfo(), testChunks()))

	fake.renameErr = func(from, _ string) error {
		if from == "docs_staging" {
			return errors.New("rename rpc failed")
		}
		return nil
	}
	err := store.Replace(ctx, testInfo(), testChunks()[:1])

	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename rpc failed")
	require.Contains(t, fake.collections, "docs")
	assert.Len(t, fake.collections["docs"].chunks, 2)
	assert.NotContains(t, fake.collections, "docs_staging")
	assert.NotContains(t, fake.collections, "docs_previous")

	chunks, err := store.Chunks(ctx, "docs")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestStore_Replace_MoveAsideFailureKeepsLive(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testInfo(), testChunks()))

	fake.renameErr = func(from, _ string) error {
		if from == "docs" {
			return errors.New("collection busy")
		}
		return nil
	}
	err := store.Replace(ctx, testInfo(), testChunks()[:1])

	require.Error(t, err)
	assert.Len(t, fake.collections["docs"].chunks, 2)
	assert.NotContains(t, fake.collections, "docs_staging")
}

func TestStore_Replace_DropsLeftoverPrevious(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	fake.collections["docs"] = &fakeCollection{}
	fake.collections["docs_previous"] = &fakeCollection{}

	require.NoError(t, store.Replace(context.Background(), testInfo(), testChunks()))

	assert.Equal(t, "drop docs_previous", fake.calls[0])
	assert.NotContains(t, fake.collections, "docs_previous")
}

func TestStore_Replace_InsertFailureKeepsLive(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	require.NoError(t, store.Replace(context.Background(), testInfo(), testChunks()))

	fake.insertErr = errors.New("connection reset")
	err := store.Replace(context.Background(), testInfo(), testChunks()[:1])

	require.Error(t, err)
	assert.Len(t, fake.collections["docs"].chunks, 2)
	assert.NotContains(t, fake.collections, "docs_staging")
}

func TestStore_Replace_DropsLeftoverStaging(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	fake.collections["docs_staging"] = &fakeCollection{}

	require.NoError(t, store.Replace(context.Background(), testInfo(), testChunks()))

	assert.Equal(t, "drop docs_staging", fake.calls[0])
}

func TestStore_Replace_RestoresInterruptedSwap(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testInfo(), testChunks()))
	fake.collections["docs_previous"] = fake.collections["docs"]
	delete(fake.collections, "docs")

	fake.insertErr = errors.New("connection reset")
	require.Error(t, store.Replace(ctx, testInfo(), testChunks()[:1]))

	require.Contains(t, fake.collections, "docs")
	assert.Len(t, fake.collections["docs"].chunks, 2)
	assert.NotContains(t, fake.collections, "docs_previous")
}

func TestStore_Replace_Batches(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}

	chunks := make([]domain.Chunk, insertBatch+1)
	for i := range chunks {
		chunks[i] = domain.Chunk{ID: domain.ChunkKey("a.pdf", i), Index: i + 1, Source: "a.pdf", Embedding: []float32{1, 0}}
	}
	require.NoError(t, store.Replace(context.Background(), testInfo(), chunks))

	inserts := 0
	for _, c := range fake.calls {
		if c == "insert docs_staging" {
			inserts++
		}
	}
	assert.Equal(t, 2, inserts)
}

func TestStore_Replace_DimensionMismatch(t *testing.T) {
	store := &Store{backend: newFakeBackend()}
	chunks := testChunks()
	chunks[0].Embedding = []float32{1, 0, 0}

	err := store.Replace(context.Background(), testInfo(), chunks)

	assert.ErrorIs(t, err, domain.ErrEmbeddingMismatch)
}

func TestStore_InfoAndChunks(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testInfo(), testChunks()))

	info, err := store.Info(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", info.EmbeddingModel)
	assert.Equal(t, 2, info.Dimensions)
	assert.Equal(t, 2, info.Chunks)
	assert.True(t, testInfo().CreatedAt.Equal(info.CreatedAt))

	chunks, err := store.Chunks(ctx, "docs")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 1, chunks[0].Index)
	assert.Equal(t, 2, chunks[1].Index)
}

func TestStore_Chunks_ReadsInPages(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()

	chunks := make([]domain.Chunk, 2*queryPage+7)
	for i := range chunks {
		chunks[i] = domain.Chunk{ID: domain.ChunkKey("a.pdf", i), Index: 2 * i, Source: "a.pdf", Embedding: []float32{1, 0}}
	}
	require.NoError(t, store.Replace(ctx, testInfo(), chunks))
	fake.calls = nil

	got, err := store.Chunks(ctx, "docs")

	require.NoError(t, err)
	require.Len(t, got, len(chunks))
	for i, c := range got {
		assert.Equal(t, 2*i, c.Index)
	}
	assert.Equal(t, []string{
		fmt.Sprintf("query docs 0-%d", queryPage),
		fmt.Sprintf("query docs %d-%d", queryPage, 2*queryPage),
		fmt.Sprintf("query docs %d-%d", 2*queryPage, len(chunks)),
	}, fake.calls)
}

func TestStore_Info_NotFound(t *testing.T) {
	store := &Store{backend: newFakeBackend()}

	_, err := store.Info(context.Background(), "docs")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = store.Chunks(context.Background(), "docs")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Info_ForeignCollection(t *testing.T) {
	fake := newFakeBackend()
	fake.collections["docs"] = &fakeCollection{description: "someone else's collection"}

	_, err := (&Store{backend: fake}).Info(context.Background(), "docs")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not created by docqa")
}

func TestStore_Search(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testInfo(), testChunks()))

	results, err := store.Search(ctx, "docs", []float32{1, 0}, 0, nil)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a.pdf", results[0].Chunk.Source)
	assert.InDelta(t, 0, results[0].Distance, 1e-6)
	assert.InDelta(t, 1, results[1].Distance, 1e-6)
	assert.Equal(t, domain.DefaultTopK, fake.lastK)
	assert.Empty(t, fake.lastExpr)
}

func TestStore_Search_Filter(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	ctx := context.Background()
	require.NoError(t, store.Replace(ctx, testInfo(), testChunks()))

	_, err := store.Search(ctx, "docs", []float32{1, 0}, 3, domain.NewSourceFilter("b.pdf"))
	require.NoError(t, err)
	assert.Equal(t, `source in ["b.pdf"]`, fake.lastExpr)

	fake.lastExpr = "untouched"
	results, err := store.Search(ctx, "docs", []float32{1, 0}, 3, domain.NewSourceFilter())
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, "untouched", fake.lastExpr)
}

func TestStore_Search_MissingCollection(t *testing.T) {
	results, err := (&Store{backend: newFakeBackend()}).Search(context.Background(), "docs", []float32{1, 0}, 5, nil)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_Search_Error(t *testing.T) {
	fake := newFakeBackend()
	store := &Store{backend: fake}
	require.NoError(t, store.Replace(context.Background(), testInfo(), testChunks()))
	fake.searchErr = errors.New("timeout")

	_, err := store.Search(context.Background(), "docs", []float32{1, 0}, 5, nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "searching collection docs")
}

func TestFilterExpr(t *testing.T) {
	assert.Empty(t, filterExpr(nil))
	assert.Equal(t, `source in []`, filterExpr(domain.NewSourceFilter()))
	assert.Equal(t, `source in ["a.pdf", "quote\"d.pdf"]`, filterExpr(domain.NewSourceFilter("a.pdf", `quote"d.pdf`)))
}

func TestStagingName(t *testing.T) {
	assert.Equal(t, "customer_service_docs_staging", stagingName(domain.DefaultCollection))
}
