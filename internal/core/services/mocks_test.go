package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockExtractor implements driven.PageExtractor with canned pages per file name.
type mockExtractor struct {
	exts  []string
	pages map[string][]string
	errs  map[string]error
}

func (m *mockExtractor) Extensions() []string { return m.exts }

func (m *mockExtractor) ExtractPages(_ context.Context, path string) ([]string, error) {
	name := filepath.Base(path)
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	return m.pages[name], nil
}

// mockEmbedder implements driven.EmbeddingService. It wraps another
// embedder and fails the batch call numbered failOnBatch (1-based).
type mockEmbedder struct {
	driven.EmbeddingService
	mu          sync.Mutex
	batches     int
	batchSizes  []int
	failOnBatch int
	embedErr    error
	short       bool
	model       string
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batches++
	n := m.batches
	m.batchSizes = append(m.batchSizes, len(texts))
	m.mu.Unlock()

	if m.failOnBatch == n {
		return nil, errors.New("embedding backend down")
	}
	vectors, err := m.EmbeddingService.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if m.short {
		return vectors[:len(vectors)-1], nil
	}
	return vectors, nil
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.EmbeddingService.Embed(ctx, text)
}

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return m.EmbeddingService.ModelName()
}

// mockLLM implements driven.LLMService.
type mockLLM struct {
	mu       sync.Mutex
	response string
	err      error
	panicVal any
	calls    int
	prompts  []string
	opts     []driven.GenerateOptions
}

func (m *mockLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()

	if m.panicVal != nil {
		panic(m.panicVal)
	}
	return m.response, m.err
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

func (m *mockLLM) lastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

// mockPromptStore implements driven.PromptStore.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(string) (string, error) { return m.template, m.err }

// failingStore implements driven.CollectionStore, delegating to inner
// and optionally failing operations.
type failingStore struct {
	driven.CollectionStore
	replaceErr error
	infoErr    error
	searchErr  error
	replaces   int
}

func (s *failingStore) Replace(ctx context.Context, info domain.CollectionInfo, chunks []domain.Chunk) error {
	s.replaces++
	if s.replaceErr != nil {
		return s.replaceErr
	}
	return s.CollectionStore.Replace(ctx, info, chunks)
}

func (s *failingStore) Info(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	if s.infoErr != nil {
		return nil, s.infoErr
	}
	return s.CollectionStore.Info(ctx, name)
}

func (s *failingStore) Search(
	ctx context.Context, name string, vector []float32, k int, filter *domain.Filter,
) ([]domain.RetrievedChunk, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.CollectionStore.Search(ctx, name, vector, k, filter)
}

// mockWatcher implements driven.DirWatcher with a test-fed channel.
type mockWatcher struct {
	changes chan string
	err     error
}

func (m *mockWatcher) Watch(ctx context.Context, _ string) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make(chan string)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-m.changes:
				if !ok {
					return
				}
				select {
				case out <- p:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// --- Helpers ---

// writeDocs creates files in a temp directory and returns it.
func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	return dir
}

func retrievedChunk(index int, source, page, content string, distance float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			ID:            domain.ChunkKey(source, index*100),
			Index:         index,
			Source:        source,
			PageReference: page,
			Content:       content,
		},
		Distance: distance,
	}
}
