package tui

import (
	"context"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

// MockQueryService answers every question with a fixed result.
type MockQueryService struct {
	Result domain.QueryResult
	Err    error
}

func (m *MockQueryService) AnswerQuestion(_ context.Context, query string, _ *domain.Filter) (domain.QueryResult, error) {
	if m.Err != nil {
		return domain.QueryResult{}, m.Err
	}
	r := m.Result
	r.Question = query
	return r, nil
}

// MockStatsRecorder returns a fixed snapshot.
type MockStatsRecorder struct {
	Snap   domain.StatsSnapshot
	Resets int
}

func (m *MockStatsRecorder) Record(domain.QueryResult) {}

func (m *MockStatsRecorder) Snapshot() domain.StatsSnapshot { return m.Snap }

func (m *MockStatsRecorder) Reset() {
	m.Resets++
	m.Snap = domain.StatsSnapshot{}
}
