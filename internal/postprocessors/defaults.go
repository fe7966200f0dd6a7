package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// ChunkerName is the registry name of the recursive chunker.
const ChunkerName = "chunker"

// Config keys understood by the chunker builder.
const (
	keyChunkSize = "chunk_size"
	keyOverlap   = "overlap"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) error {
	return r.Register(ChunkerName, buildChunker)
}

// ChunkerConfig returns the chunker config for the given settings.
func ChunkerConfig(s domain.Settings) Config {
	return Config{
		keyChunkSize: s.ChunkSize,
		keyOverlap:   s.ChunkOverlap,
	}
}

// NewChunker builds the chunker for settings through a default registry.
func NewChunker(s domain.Settings) (driven.PostProcessor, error) {
	r := NewRegistry()
	if err := RegisterDefaults(r); err != nil {
		return nil, err
	}
	return r.Build(ChunkerName, ChunkerConfig(s))
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): characters per chunk (default: 1000)
//   - overlap (int): characters shared by neighbouring chunks (default: 100)
//
// Overlap must be smaller than the chunk size.
func buildChunker(cfg Config) (driven.PostProcessor, error) {
	size := chunker.DefaultChunkSize
	overlap := chunker.DefaultChunkOverlap
	if v, ok := cfg.Int(keyChunkSize); ok && v > 0 {
		size = v
	}
	if v, ok := cfg.Int(keyOverlap); ok && v >= 0 {
		overlap = v
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, overlap, size)
	}
	return chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap)), nil
}
