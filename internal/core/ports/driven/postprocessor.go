package driven

import "github.com/custodia-labs/docqa/internal/core/domain"

// PostProcessor turns loaded documents into chunks.
type PostProcessor interface {
	// Name returns the processor name for logging.
	Name() string

	// Process splits docs into chunks. Chunk indices follow the order of
	// docs, then split order, and are unique across the call.
	Process(docs []domain.SourceDocument) []domain.Chunk
}
