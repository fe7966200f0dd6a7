package driven

import "context"

// EmbeddingService turns text into vectors for the index.
//
// Vectors from different models live in different spaces, so a
// collection must be queried with the model that built it. The index
// records ModelName and Dimensions to detect a mismatch.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks reachability without embedding anything where the
	// provider allows it.
	Ping(ctx context.Context) error

	Close() error
}
