// Package domain holds the types every layer shares: source documents and
// their chunks, retrieval filters and results, answers with citations, the
// category catalogue, settings and session statistics.
//
// It imports only the standard library.
package domain
