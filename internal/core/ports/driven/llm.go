package driven

import "context"

// LLMService completes a rendered prompt. The composer owns refusal and
// citation handling, so adapters return the model text untouched.
type LLMService interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	ModelName() string

	// Ping checks credentials and reachability without generating.
	Ping(ctx context.Context) error

	Close() error
}

// GenerateOptions tunes one completion. Zero values leave the provider
// default in place, except MaxTokens for APIs that require it.
type GenerateOptions struct {
	MaxTokens   int
	Temperature float64
	StopWords   []string
}
