package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// VectorStore owns the vector index: one embedding per chunk id, searched
// by cosine similarity. Implementations support concurrent searches with
// serialized writes.
type VectorStore interface {
	// Index embeds and stores the chunks. Existing chunk ids are updated
	// in place. Per-chunk embedding failures are returned in the failure
	// list; chunks embedded before a failure stay indexed.
	Index(ctx context.Context, chunks []models.Chunk) ([]models.IndexFailure, error)

	// Search returns up to k results ordered by descending similarity,
	// ties broken by insertion order. An empty store returns an empty
	// slice and no error.
	Search(ctx context.Context, query string, k int) ([]models.RetrievalResult, error)

	// RemoveDocument drops every vector belonging to the document.
	RemoveDocument(ctx context.Context, documentID string) error

	// Save persists the index snapshot and manifest.
	Save() error

	// Len reports the number of indexed chunks.
	Len() int

	Close() error
}
