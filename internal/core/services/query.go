package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService answers questions: retrieve, cite, compose.
type QueryService struct {
	retriever *Retriever
	composer  *Composer
	stats     driving.StatsRecorder
	topK      int
	now       func() time.Time
}

// NewQueryService creates a query service. stats is optional.
func NewQueryService(retriever *Retriever, composer *Composer, stats driving.StatsRecorder) *QueryService {
	return &QueryService{
		retriever: retriever,
		composer:  composer,
		stats:     stats,
		topK:      domain.DefaultTopK,
		now:       time.Now,
	}
}

// SetTopK changes the number of chunks retrieved per question.
// Non-positive values select domain.DefaultTopK.
func (s *QueryService) SetTopK(k int) {
	if k <= 0 {
		k = domain.DefaultTopK
	}
	s.topK = k
}

// TopK returns the number of chunks retrieved per question.
func (s *QueryService) TopK() int {
	return s.topK
}

// AnswerQuestion answers query from the chunks passing filter. The sources
// of the result are exactly the chunks given to the model, numbered 1..n.
//
// Blank queries return domain.ErrInvalidInput. Retrieval failures are
// wrapped with domain.ErrRetrievalFailed. Model failures are not errors;
// they are reported in the answer text.
func (s *QueryService) AnswerQuestion(
	ctx context.Context, query string, filter *domain.Filter,
) (domain.QueryResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.QueryResult{}, fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}

	start := s.now()
	logger.Section("Query")
	logger.Debug("Question: %q", query)

	retrieved, err := s.retriever.Retrieve(ctx, query, s.topK, filter)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("%w: %w", domain.ErrRetrievalFailed, err)
	}
	logger.Debug("Found %d relevant chunks", len(retrieved))

	answer := s.composer.Compose(ctx, query, retrieved)

	result := domain.QueryResult{
		Question: query,
		Answer:   answer.Display(),
		Sources:  domain.Citations(retrieved),
		Outcome:  answer.Kind,
		Elapsed:  s.now().Sub(start),
	}
	if s.stats != nil {
		s.stats.Record(result)
	}
	return result, nil
}
