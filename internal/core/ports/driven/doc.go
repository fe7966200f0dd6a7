// Package driven holds the interfaces core services call out through:
// page extraction, chunking, embedding, the collection store, config,
// prompts and directory watching.
//
// LLMService, PromptStore and DirWatcher may be nil where a service
// documents it. A missing LLM turns every grounded answer into a model
// error rather than failing startup.
//
// This package imports only domain.
package driven
