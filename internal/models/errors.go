package models

import "errors"

// Sentinel error kinds for the ingestion and chat pipelines. Services wrap
// these with fmt.Errorf("...: %w", ...) so callers can classify failures
// with errors.Is while keeping the underlying cause in the chain.
var (
	// ErrLoad indicates a document could not be read or parsed.
	ErrLoad = errors.New("document load failed")

	// ErrConfig indicates invalid configuration or operation parameters.
	ErrConfig = errors.New("invalid configuration")

	// ErrEmbedding indicates the embedding provider failed or returned
	// a malformed vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreCorrupt indicates persisted vector store state could not be
	// loaded. A missing store is not corrupt; a partial one is.
	ErrStoreCorrupt = errors.New("vector store corrupt")

	// ErrContextBuild indicates the prompt could not fit the configured
	// budget even after dropping all droppable parts.
	ErrContextBuild = errors.New("context build failed")

	// ErrBusy indicates the session already has a request in flight.
	ErrBusy = errors.New("session busy")

	// ErrTimeout indicates an upstream call exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrLLM indicates the completion provider failed.
	ErrLLM = errors.New("llm request failed")

	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("not found")
)
