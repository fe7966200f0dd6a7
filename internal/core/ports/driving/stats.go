package driving

import "github.com/custodia-labs/docqa/internal/core/domain"

// StatsRecorder accumulates usage counters from query results.
// Implementations must be safe for concurrent use.
type StatsRecorder interface {
	// Record adds one query result to the counters.
	Record(result domain.QueryResult)

	// Snapshot returns a copy of the current counters.
	Snapshot() domain.StatsSnapshot

	// Reset clears all counters.
	Reset()
}
