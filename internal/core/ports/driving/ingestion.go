package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// IngestionService builds collections from a directory of documents.
type IngestionService interface {
	// Ingest loads, chunks and indexes every document in sourceDir into
	// collection, replacing the collection atomically.
	Ingest(ctx context.Context, sourceDir, collection string) (domain.IngestionReport, error)

	// Watch runs Ingest whenever sourceDir changes until ctx is cancelled.
	// onRun is called after every run, successful or not.
	Watch(ctx context.Context, sourceDir, collection string, onRun func(domain.IngestionReport, error)) error
}
