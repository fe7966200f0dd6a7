package driving

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// QueryService answers questions from the indexed collection.
type QueryService interface {
	// AnswerQuestion retrieves context for query, restricted by filter when
	// non-nil, and composes a cited answer. Model failures are reported in
	// the answer text. Only infrastructure failures return an error.
	AnswerQuestion(ctx context.Context, query string, filter *domain.Filter) (domain.QueryResult, error)
}
