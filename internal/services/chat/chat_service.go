// -----------------------------------------------------------------------
// Chat Service - Retrieval-augmented question answering over the corpus
// -----------------------------------------------------------------------

package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// Service answers questions by retrieving relevant chunks, assembling a
// bounded prompt and calling the LLM provider. Each session accepts one
// request at a time; sessions are independent.
type Service struct {
	llmService interfaces.LLMService
	store      interfaces.VectorStore
	registry   interfaces.DocumentStorage
	builder    *ContextBuilder
	sessions   *sessionRegistry
	topK       int
	logger     arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ChatService = (*Service)(nil)

// NewService creates a chat service.
func NewService(
	llmService interfaces.LLMService,
	store interfaces.VectorStore,
	registry interfaces.DocumentStorage,
	builder *ContextBuilder,
	topK int,
	logger arbor.ILogger,
) (*Service, error) {
	if llmService == nil || store == nil || builder == nil {
		return nil, fmt.Errorf("%w: llm service, vector store and context builder are required", models.ErrConfig)
	}
	if topK <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", models.ErrConfig, topK)
	}

	return &Service{
		llmService: llmService,
		store:      store,
		registry:   registry,
		builder:    builder,
		sessions:   newSessionRegistry(),
		topK:       topK,
		logger:     logger,
	}, nil
}

// Chat processes one question for the session. A second request while one
// is in flight fails with ErrBusy; the session recovers after any outcome.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (*models.ChatResponse, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", models.ErrConfig)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", models.ErrConfig)
	}

	sess := s.sessions.get(sessionID)
	if err := sess.begin(); err != nil {
		return nil, err
	}
	defer sess.finish()

	start := time.Now()

	// History is captured before the new turn so the prompt carries only
	// completed exchanges. The user turn itself is recorded as soon as the
	// request is accepted; a later provider failure does not erase it.
	history := sess.snapshotHistory()
	sess.appendTurn(models.RoleUser, message)

	results, err := s.store.Search(ctx, message, s.topK)
	if err != nil {
		return nil, err
	}

	prompt, err := s.builder.Build(message, history, results)
	if err != nil {
		return nil, err
	}

	messages := []models.Message{
		{Role: models.RoleSystem, Content: s.builder.SystemPrompt(len(results) > 0)},
		{Role: models.RoleUser, Content: prompt},
	}

	answer, err := s.llmService.Chat(ctx, messages)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", models.ErrTimeout, err)
		}
		s.logger.Warn().
			Str("session_id", sessionID).
			Err(err).
			Msg("Chat completion failed")
		return nil, err
	}

	sess.appendTurn(models.RoleAssistant, answer)

	sources := s.sourcesFor(ctx, results)

	s.logger.Info().
		Str("session_id", sessionID).
		Int("retrieved", len(results)).
		Int("sources", len(sources)).
		Dur("duration", time.Since(start)).
		Msg("Chat request completed")

	return &models.ChatResponse{
		Response: answer,
		Sources:  sources,
	}, nil
}

// EvictSession drops a session and its history.
func (s *Service) EvictSession(sessionID string) {
	s.sessions.evict(sessionID)
}

// SessionCount reports the number of live sessions.
func (s *Service) SessionCount() int {
	return s.sessions.count()
}

// sourcesFor resolves the distinct source document filenames behind the
// retrieved chunks, in ranking order. Registry lookups are best-effort;
// an unknown document falls back to its id.
func (s *Service) sourcesFor(ctx context.Context, results []models.RetrievalResult) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, r := range results {
		docID := r.Chunk.DocumentID
		if seen[docID] {
			continue
		}
		seen[docID] = true

		name := docID
		if s.registry != nil {
			if doc, err := s.registry.Get(ctx, docID); err == nil && doc.Filename != "" {
				name = doc.Filename
			}
		}
		sources = append(sources, name)
	}
	return sources
}
