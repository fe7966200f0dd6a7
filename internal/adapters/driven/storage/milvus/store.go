// Package milvus provides a driven.CollectionStore backed by a Milvus server.
//
// Each collection is a Milvus collection with an HNSW index over the chunk
// vectors using the COSINE metric. Collection metadata lives in the schema
// description. Replace builds a staging collection and swaps it in by
// renames, so searches never observe a partial chunk set and a failed swap
// leaves the previous collection in place.
package milvus

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.CollectionStore = (*Store)(nil)

const (
	// insertBatch is the number of rows sent per insert call.
	insertBatch = 512

	// stagingSuffix names the collection built during Replace.
	stagingSuffix = "_staging"

	// previousSuffix names the live collection while it is being swapped out.
	previousSuffix = "_previous"

	// queryPage is the number of rows read per query. Milvus caps a query
	// result at 16384 rows.
	queryPage = 1000

	// closeTimeout bounds the client shutdown.
	closeTimeout = 5 * time.Second
)

// collectionMeta is the JSON stored in the schema description.
type collectionMeta struct {
	EmbeddingModel string    `json:"embedding_model"`
	Dimensions     int       `json:"dimensions"`
	Chunks         int       `json:"chunks"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store is a Milvus-backed collection store.
type Store struct {
	backend backend
}

// NewStore connects to the Milvus server at address.
func NewStore(ctx context.Context, address string) (*Store, error) {
	b, err := dial(ctx, address)
	if err != nil {
		return nil, err
	}
	return &Store{backend: b}, nil
}

// Replace builds the chunk set in a staging collection, then swaps it in.
func (s *Store) Replace(ctx context.Context, info domain.CollectionInfo, chunks []domain.Chunk) error {
	if err := info.ValidateChunks(chunks); err != nil {
		return err
	}

	staging := stagingName(info.Name)
	previous := previousName(info.Name)
	if err := s.restorePrevious(ctx, previous, info.Name); err != nil {
		return err
	}
	for _, leftover := range []string{staging, previous} {
		if err := s.dropIfExists(ctx, leftover); err != nil {
			return err
		}
	}

	desc, err := encodeMeta(info, len(chunks))
	if err != nil {
		return err
	}
	if err := s.backend.CreateCollection(ctx, staging, desc, info.Dimensions); err != nil {
		return fmt.Errorf("creating staging collection: %w", err)
	}

	if err := s.fill(ctx, staging, info.Dimensions, chunks); err != nil {
		s.discard(ctx, staging)
		return err
	}

	if err := s.swap(ctx, staging, previous, info.Name); err != nil {
		return err
	}
	if err := s.backend.Load(ctx, info.Name); err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}

	logger.Debug("milvus collection %s replaced with %d chunks", info.Name, len(chunks))
	return nil
}

// swap moves live aside, renames staging to live and drops the old
// collection. If staging cannot take its place the old collection is
// renamed back.
func (s *Store) swap(ctx context.Context, staging, previous, live string) error {
	hadLive, err := s.backend.HasCollection(ctx, live)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", live, err)
	}
	if hadLive {
		if err := s.backend.Rename(ctx, live, previous); err != nil {
			s.discard(ctx, staging)
			return fmt.Errorf("moving collection %s aside: %w", live, err)
		}
	}

	if err := s.backend.Rename(ctx, staging, live); err != nil {
		if hadLive {
			if restoreErr := s.backend.Rename(ctx, previous, live); restoreErr != nil {
				logger.Error("restoring collection %s from %s: %v", live, previous, restoreErr)
			}
		}
		s.discard(ctx, staging)
		return fmt.Errorf("renaming staging collection: %w", err)
	}

	if hadLive {
		s.discard(ctx, previous)
	}
	return nil
}

// restorePrevious renames a collection left aside by an interrupted swap
// back to live when live is missing.
func (s *Store) restorePrevious(ctx context.Context, previous, live string) error {
	hasPrevious, err := s.backend.HasCollection(ctx, previous)
	if err != nil || !hasPrevious {
		return err
	}
	hasLive, err := s.backend.HasCollection(ctx, live)
	if err != nil || hasLive {
		return err
	}
	logger.Warn("restoring collection %s from %s", live, previous)
	if err := s.backend.Rename(ctx, previous, live); err != nil {
		return fmt.Errorf("restoring collection %s: %w", live, err)
	}
	return nil
}

// discard drops name, logging failure. The next Replace drops leftovers.
func (s *Store) discard(ctx context.Context, name string) {
	if err := s.backend.Drop(ctx, name); err != nil {
		logger.Warn("dropping collection %s: %v", name, err)
	}
}

func (s *Store) fill(ctx context.Context, name string, dim int, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += insertBatch {
		end := min(start+insertBatch, len(chunks))
		if err := s.backend.Insert(ctx, name, dim, start, chunks[start:end]); err != nil {
			return fmt.Errorf("inserting chunks %d-%d: %w", start, end, err)
		}
	}
	if err := s.backend.Flush(ctx, name); err != nil {
		return fmt.Errorf("flushing collection: %w", err)
	}
	if err := s.backend.CreateIndex(ctx, name); err != nil {
		return fmt.Errorf("creating vector index: %w", err)
	}
	return nil
}

func (s *Store) dropIfExists(ctx context.Context, name string) error {
	exists, err := s.backend.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("checking collection %s: %w", name, err)
	}
	if !exists {
		return nil
	}
	if err := s.backend.Drop(ctx, name); err != nil {
		return fmt.Errorf("dropping collection %s: %w", name, err)
	}
	return nil
}

// Search runs an ANN query and converts COSINE similarity to distance.
func (s *Store) Search(
	ctx context.Context, name string, vector []float32, k int, filter *domain.Filter,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	if filter != nil && len(filter.Sources) == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	exists, err := s.backend.HasCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking collection %s: %w", name, err)
	}
	if !exists {
		return []domain.RetrievedChunk{}, nil
	}

	hits, err := s.backend.Search(ctx, name, vector, k, filterExpr(filter))
	if err != nil {
		return nil, fmt.Errorf("searching collection %s: %w", name, err)
	}

	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, h := range hits {
		results = append(results, domain.RetrievedChunk{
			Chunk:    h.chunk,
			Distance: 1 - float64(h.score),
		})
	}
	return domain.TopK(results, k), nil
}

// Info decodes the collection metadata from the schema description.
func (s *Store) Info(ctx context.Context, name string) (*domain.CollectionInfo, error) {
	exists, err := s.backend.HasCollection(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking collection %s: %w", name, err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	desc, err := s.backend.Description(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("describing collection %s: %w", name, err)
	}
	return decodeMeta(name, desc)
}

// Chunks queries every row of the collection, vectors included, one page
// of rows at a time.
func (s *Store) Chunks(ctx context.Context, name string) ([]domain.Chunk, error) {
	info, err := s.Info(ctx, name)
	if err != nil {
		return nil, err
	}
	if info.Chunks == 0 {
		return []domain.Chunk{}, nil
	}

	chunks := make([]domain.Chunk, 0, info.Chunks)
	for from := 0; from < info.Chunks; from += queryPage {
		page, err := s.backend.Query(ctx, name, from, min(from+queryPage, info.Chunks))
		if err != nil {
			return nil, fmt.Errorf("querying collection %s rows %d-%d: %w", name, from, from+queryPage, err)
		}
		chunks = append(chunks, page...)
	}
	sortByIndex(chunks)
	return chunks, nil
}

// Close disconnects from the server.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return s.backend.Close(ctx)
}

func stagingName(name string) string {
	return name + stagingSuffix
}

func previousName(name string) string {
	return name + previousSuffix
}

// filterExpr renders a filter as a Milvus boolean expression.
// A nil filter yields no expression.
func filterExpr(filter *domain.Filter) string {
	if filter == nil {
		return ""
	}
	quoted := make([]string, len(filter.Sources))
	for i, src := range filter.Sources {
		quoted[i] = strconv.Quote(src)
	}
	return fieldSource + " in [" + strings.Join(quoted, ", ") + "]"
}

func encodeMeta(info domain.CollectionInfo, chunks int) (string, error) {
	data, err := json.Marshal(collectionMeta{
		EmbeddingModel: info.EmbeddingModel,
		Dimensions:     info.Dimensions,
		Chunks:         chunks,
		CreatedAt:      info.CreatedAt.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encoding collection metadata: %w", err)
	}
	return string(data), nil
}

func decodeMeta(name, desc string) (*domain.CollectionInfo, error) {
	var meta collectionMeta
	if err := json.Unmarshal([]byte(desc), &meta); err != nil {
		return nil, fmt.Errorf("collection %s was not created by docqa: %w", name, err)
	}
	return &domain.CollectionInfo{
		Name:           name,
		EmbeddingModel: meta.EmbeddingModel,
		Dimensions:     meta.Dimensions,
		Chunks:         meta.Chunks,
		CreatedAt:      meta.CreatedAt,
	}, nil
}

func sortByIndex(chunks []domain.Chunk) {
	slices.SortFunc(chunks, func(a, b domain.Chunk) int { return cmp.Compare(a.Index, b.Index) })
}
