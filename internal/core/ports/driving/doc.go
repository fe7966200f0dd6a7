// Package driving holds what the CLI, chat and MCP adapters call into:
// ingestion, question answering and session statistics. The services
// package implements them.
package driving
