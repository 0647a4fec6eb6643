package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// LLMService abstracts a hosted model provider. Implementations map
// provider failures onto the models error kinds (ErrTimeout, ErrLLM,
// ErrEmbedding).
type LLMService interface {
	// Chat generates a completion for the conversation. Messages are in
	// chronological order; system messages carry instructions.
	Chat(ctx context.Context, messages []models.Message) (string, error)

	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedDimension returns the provider's configured output dimensionality.
	EmbedDimension() int

	// Name returns the provider name for logging and health reporting.
	Name() string

	// IsAvailable reports whether the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}
