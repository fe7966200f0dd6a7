package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// mockQueryService is a mock implementation of driving.QueryService.
type mockQueryService struct {
	result     domain.QueryResult
	err        error
	lastQuery  string
	lastFilter *domain.Filter
	calls      int
}

func (m *mockQueryService) AnswerQuestion(
	_ context.Context,
	query string,
	filter *domain.Filter,
) (domain.QueryResult, error) {
	m.calls++
	m.lastQuery = query
	m.lastFilter = filter
	if m.err != nil {
		return domain.QueryResult{}, m.err
	}
	r := m.result
	r.Question = query
	return r, nil
}

// mockStats is a mock implementation of driving.StatsRecorder.
type mockStats struct {
	snapshot domain.StatsSnapshot
}

func (m *mockStats) Record(domain.QueryResult)      {}
func (m *mockStats) Snapshot() domain.StatsSnapshot { return m.snapshot }
func (m *mockStats) Reset()                         {}

func testCatalogue() domain.Catalogue {
	return domain.Catalogue{
		{Name: "Finance & Banking", Documents: []string{"citi.pdf", "jpm.pdf"}},
		{Name: "Supply Chain", Documents: []string{"ups.pdf"}},
	}
}

func groundedResult() domain.QueryResult {
	return domain.QueryResult{
		Answer: "Revenue was $91 billion [Source 1].",
		Sources: []domain.SourceCitation{
			{SourceNum: 1, Document: "ups.pdf", ChunkID: 12, PageReference: "Page 4", RelevanceScore: 0.12},
		},
		Outcome: domain.AnswerOK,
		Elapsed: 1500 * time.Millisecond,
	}
}

func testSnapshot() domain.StatsSnapshot {
	return domain.StatsSnapshot{
		Queries:           4,
		SuccessfulQueries: 3,
		TotalResponseTime: 8 * time.Second,
		Categories:        map[string]int{"Finance & Banking": 5, "Supply Chain": 2},
		Documents:         map[string]int{"ups.pdf": 2, "citi.pdf": 4, "jpm.pdf": 1},
	}
}
