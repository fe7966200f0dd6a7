package services

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func newQueryFixture(t *testing.T, llm *mockLLM) (*QueryService, *failingStore, *StatsAggregator) {
	t.Helper()
	retriever, store, _ := newRetrievalFixture(t)
	stats := NewStatsAggregator(domain.Catalogue{
		{Name: "Finance", Documents: []string{"fin.pdf"}},
		{Name: "Shipping", Documents: []string{"ship.pdf"}},
	})
	return NewQueryService(retriever, NewComposer(llm, nil), stats), store, stats
}

func TestQueryService_AnswerQuestion(t *testing.T) {
	llm := &mockLLM{response: "Revenue grew [Source 1]."}
	svc, _, stats := newQueryFixture(t, llm)
	tick := time.Unix(0, 0)
	svc.now = func() time.Time {
		tick = tick.Add(100 * time.Millisecond)
		return tick
	}

	result, err := svc.AnswerQuestion(context.Background(), "  revenue grew  ", nil)

	require.NoError(t, err)
	assert.Equal(t, "revenue grew", result.Question)
	assert.Equal(t, "Revenue grew [Source 1].", result.Answer)
	assert.Equal(t, domain.AnswerOK, result.Outcome)
	assert.Equal(t, 100*time.Millisecond, result.Elapsed)
	require.Len(t, result.Sources, domain.DefaultTopK)
	for i, src := range result.Sources {
		assert.Equal(t, i+1, src.SourceNum)
	}

	snap := stats.Snapshot()
	assert.Equal(t, 1, snap.Queries)
	assert.Equal(t, 1, snap.SuccessfulQueries)
}

func TestQueryService_SourcesMatchPromptContext(t *testing.T) {
	llm := &mockLLM{response: "answer [Source 2]"}
	svc, _, _ := newQueryFixture(t, llm)

	result, err := svc.AnswerQuestion(context.Background(), "delivery costs", nil)

	require.NoError(t, err)
	prompt := llm.lastPrompt()
	for _, src := range result.Sources {
		assert.Contains(t, prompt, "[Source "+strconv.Itoa(src.SourceNum)+": "+src.Document+", Chunk "+strconv.Itoa(src.ChunkID))
	}
	assert.NotContains(t, prompt, "[Source "+strconv.Itoa(len(result.Sources)+1)+":")
}

func TestQueryService_FilterExcludesOtherDocuments(t *testing.T) {
	svc, _, stats := newQueryFixture(t, &mockLLM{response: "ok [Source 1]"})

	result, err := svc.AnswerQuestion(context.Background(), "revenue grew", domain.NewSourceFilter("ship.pdf"))

	require.NoError(t, err)
	require.Len(t, result.Sources, 3)
	for _, src := range result.Sources {
		assert.Equal(t, "ship.pdf", src.Document)
	}
	snap := stats.Snapshot()
	assert.Equal(t, 3, snap.Categories["Shipping"])
	assert.Equal(t, 0, snap.Categories["Finance"])
}

func TestQueryService_ZeroRetrievalRefuses(t *testing.T) {
	llm := &mockLLM{response: "should not be called"}
	svc, _, stats := newQueryFixture(t, llm)

	result, err := svc.AnswerQuestion(context.Background(), "anything", domain.NewSourceFilter("absent.pdf"))

	require.NoError(t, err)
	assert.Equal(t, domain.RefusalText, result.Answer)
	assert.Equal(t, domain.AnswerRefusal, result.Outcome)
	assert.Empty(t, result.Sources)
	assert.Zero(t, llm.calls)
	assert.Equal(t, 0, stats.Snapshot().SuccessfulQueries)
}

func TestQueryService_ModelErrorIsNotAnError(t *testing.T) {
	svc, _, _ := newQueryFixture(t, &mockLLM{err: errors.New("503")})

	result, err := svc.AnswerQuestion(context.Background(), "revenue", nil)

	require.NoError(t, err)
	assert.Equal(t, domain.AnswerModelError, result.Outcome)
	assert.Equal(t, "Error generating answer: 503", result.Answer)
	assert.NotEmpty(t, result.Sources)
}

func TestQueryService_BlankQuestion(t *testing.T) {
	svc, _, stats := newQueryFixture(t, &mockLLM{})

	_, err := svc.AnswerQuestion(context.Background(), " \t\n", nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, stats.Snapshot().Queries)
}

func TestQueryService_RetrievalFailure(t *testing.T) {
	svc, store, stats := newQueryFixture(t, &mockLLM{})
	store.searchErr = errors.New("disk I/O error")

	_, err := svc.AnswerQuestion(context.Background(), "revenue", nil)

	require.ErrorIs(t, err, domain.ErrRetrievalFailed)
	assert.ErrorContains(t, err, "disk I/O error")
	assert.Zero(t, stats.Snapshot().Queries)
}

func TestQueryService_WithoutStats(t *testing.T) {
	retriever, _, _ := newRetrievalFixture(t)
	svc := NewQueryService(retriever, NewComposer(&mockLLM{response: "ok"}, nil), nil)

	_, err := svc.AnswerQuestion(context.Background(), "revenue", nil)

	assert.NoError(t, err)
}

func TestQueryService_SetTopK(t *testing.T) {
	svc, _, _ := newQueryFixture(t, &mockLLM{response: "ok"})

	svc.SetTopK(2)
	result, err := svc.AnswerQuestion(context.Background(), "revenue", nil)
	require.NoError(t, err)
	assert.Len(t, result.Sources, 2)
	assert.Equal(t, 2, svc.TopK())

	svc.SetTopK(0)
	assert.Equal(t, domain.DefaultTopK, svc.TopK())
}
