package interfaces

import "context"

// EmbeddingService generates embedding vectors for indexing and querying.
type EmbeddingService interface {
	// EmbedDocument embeds chunk text for indexing.
	EmbedDocument(ctx context.Context, text string) ([]float32, error)

	// EmbedQuery embeds a user query for retrieval.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimension returns the vector dimensionality.
	Dimension() int
}
