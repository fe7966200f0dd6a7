// Package services holds the question answering pipeline: ingestion into
// the index, retrieval, prompt composition, the query orchestrator and the
// session statistics. Services only talk to the outside world through the
// driven ports, so every one of them runs against in-memory fakes in tests.
package services
