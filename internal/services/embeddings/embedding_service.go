// -----------------------------------------------------------------------
// Embedding Service - Vector embedding generation over the LLM provider
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Service generates embeddings through the configured LLM provider and
// enforces constant dimensionality across the corpus.
type Service struct {
	llmService interfaces.LLMService
	dimension  int
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*Service)(nil)

// NewService creates an embedding service bound to the given provider.
func NewService(llmService interfaces.LLMService, logger arbor.ILogger) (*Service, error) {
	if llmService == nil {
		return nil, fmt.Errorf("%w: llm service is required", models.ErrConfig)
	}
	dimension := llmService.EmbedDimension()
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: provider %s reports no embedding dimension", models.ErrConfig, llmService.Name())
	}

	return &Service{
		llmService: llmService,
		dimension:  dimension,
		logger:     logger,
	}, nil
}

// EmbedDocument embeds chunk text for indexing.
func (s *Service) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text, "document")
}

// EmbedQuery embeds a user query for retrieval.
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return s.embed(ctx, query, "query")
}

func (s *Service) embed(ctx context.Context, text, kind string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: %s text cannot be empty", models.ErrEmbedding, kind)
	}

	start := time.Now()
	vector, err := s.llmService.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s embedding failed: %w", kind, err)
	}

	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: %s embedding has %d dimensions, expected %d", models.ErrEmbedding, kind, len(vector), s.dimension)
	}

	s.logger.Debug().
		Str("kind", kind).
		Int("text_length", len(text)).
		Dur("duration", time.Since(start)).
		Msg("Embedding generated")

	return vector, nil
}

// Dimension returns the corpus-wide vector dimensionality.
func (s *Service) Dimension() int {
	return s.dimension
}
