package domain

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// StatsSnapshot is a point-in-time copy of session usage counters.
type StatsSnapshot struct {
	// Queries is the number of questions answered.
	Queries int `json:"query_count"`

	// SuccessfulQueries counts answers that were grounded (AnswerOK).
	SuccessfulQueries int `json:"successful_queries"`

	// TotalResponseTime is the summed answering time.
	TotalResponseTime time.Duration `json:"total_response_time"`

	// Categories counts retrieved sources per category.
	Categories map[string]int `json:"category_stats"`

	// Documents counts retrieved sources per document.
	Documents map[string]int `json:"document_usage"`
}

// AverageResponseTime returns TotalResponseTime divided by Queries.
func (s StatsSnapshot) AverageResponseTime() time.Duration {
	if s.Queries == 0 {
		return 0
	}
	return s.TotalResponseTime / time.Duration(s.Queries)
}

// SuccessRate returns the share of grounded answers in [0, 1].
func (s StatsSnapshot) SuccessRate() float64 {
	if s.Queries == 0 {
		return 0
	}
	return float64(s.SuccessfulQueries) / float64(s.Queries)
}

// DocumentCount is a document with its retrieval count.
type DocumentCount struct {
	Document string `json:"document"`
	Count    int    `json:"count"`
}

// TopDocuments returns the n most retrieved documents, most used first.
// Ties are ordered by document name.
func (s StatsSnapshot) TopDocuments(n int) []DocumentCount {
	out := make([]DocumentCount, 0, len(s.Documents))
	for doc, count := range s.Documents {
		out = append(out, DocumentCount{Document: doc, Count: count})
	}
	slices.SortFunc(out, func(a, b DocumentCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Document, b.Document)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// DisplayName turns a document file name into a readable title:
// "UPS-annualreport.pdf" becomes "UPS annualreport".
func DisplayName(document string) string {
	return strings.NewReplacer(".pdf", "", "_", " ", "-", " ").Replace(document)
}
