package models

import "time"

// Document represents an ingested PDF in the registry. Pages holds the
// extracted per-page text during ingestion only; the registry persists
// metadata and chunk ids, not page text.
type Document struct {
	ID         string    `json:"id" badgerhold:"key"`
	Filename   string    `json:"filename" badgerhold:"unique"`
	PageCount  int       `json:"page_count"`
	Pages      []string  `json:"-" badgerhold:"-"`
	ChunkIDs   []string  `json:"chunk_ids"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Chunk is a contiguous span of a document's text. Start and End are rune
// offsets into the concatenated document text; Page is the 1-based page on
// which the chunk starts. Chunks are immutable once produced.
type Chunk struct {
	ID         string `json:"id"`
	DocumentID string `json:"document_id"`
	Ordinal    int    `json:"ordinal"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
}

// RetrievalResult pairs a chunk with its similarity to a query.
// Results are ephemeral and never persisted.
type RetrievalResult struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

// IndexFailure records a chunk that could not be embedded during an
// indexing run. The run continues past individual failures.
type IndexFailure struct {
	ChunkID string `json:"chunk_id"`
	Err     error  `json:"-"`
	Reason  string `json:"reason"`
}
