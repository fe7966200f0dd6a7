package services

import (
	"maps"
	"sync"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

// Ensure StatsAggregator implements the interface.
var _ driving.StatsRecorder = (*StatsAggregator)(nil)

// StatsAggregator counts queries and source usage for one session.
// It is safe for concurrent use.
type StatsAggregator struct {
	mu        sync.RWMutex
	catalogue domain.Catalogue
	snap      domain.StatsSnapshot
}

// NewStatsAggregator creates an aggregator attributing documents to the
// categories of catalogue.
func NewStatsAggregator(catalogue domain.Catalogue) *StatsAggregator {
	a := &StatsAggregator{catalogue: catalogue}
	a.Reset()
	return a
}

// Record adds one query result. Every source counts towards its document
// and towards each category listing that document.
func (a *StatsAggregator) Record(result domain.QueryResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snap.Queries++
	a.snap.TotalResponseTime += result.Elapsed
	if result.Outcome == domain.AnswerOK {
		a.snap.SuccessfulQueries++
	}
	for _, src := range result.Sources {
		a.snap.Documents[src.Document]++
		for _, cat := range a.catalogue.CategoriesOf(src.Document) {
			a.snap.Categories[cat]++
		}
	}
}

// Snapshot returns a copy of the counters.
func (a *StatsAggregator) Snapshot() domain.StatsSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap := a.snap
	snap.Categories = maps.Clone(a.snap.Categories)
	snap.Documents = maps.Clone(a.snap.Documents)
	return snap
}

// Reset clears all counters. Every catalogue category is listed with zero.
func (a *StatsAggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap = domain.StatsSnapshot{
		Categories: make(map[string]int, len(a.catalogue)),
		Documents:  make(map[string]int),
	}
	for _, name := range a.catalogue.Names() {
		a.snap.Categories[name] = 0
	}
}
