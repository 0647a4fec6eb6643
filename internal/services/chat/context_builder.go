package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/responsum/internal/models"
)

// ContextBuilder assembles the model prompt from retrieved chunks and
// conversation history under a character budget. When the budget is
// exceeded it drops the oldest history turns first, then the
// lowest-similarity chunks. The instruction template and the bare
// question are never truncated.
type ContextBuilder struct {
	maxPromptChars  int
	maxHistoryTurns int
}

// NewContextBuilder creates a builder with the given budget and history
// window.
func NewContextBuilder(maxPromptChars, maxHistoryTurns int) (*ContextBuilder, error) {
	if maxPromptChars <= 0 {
		return nil, fmt.Errorf("%w: max prompt chars must be positive, got %d", models.ErrConfig, maxPromptChars)
	}
	if maxHistoryTurns < 0 {
		return nil, fmt.Errorf("%w: max history turns must be non-negative, got %d", models.ErrConfig, maxHistoryTurns)
	}
	return &ContextBuilder{
		maxPromptChars:  maxPromptChars,
		maxHistoryTurns: maxHistoryTurns,
	}, nil
}

// Build produces the prompt sent to the model. Results must already be in
// descending similarity order, as returned by the vector store.
func (b *ContextBuilder) Build(query string, history []models.Turn, results []models.RetrievalResult) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", fmt.Errorf("%w: query is empty", models.ErrContextBuild)
	}

	// Most recent turns, capped by the window.
	turns := history
	if len(turns) > b.maxHistoryTurns {
		turns = turns[len(turns)-b.maxHistoryTurns:]
	}
	chunks := append([]models.RetrievalResult(nil), results...)

	for {
		prompt := b.render(query, turns, chunks)
		if utf8.RuneCountInString(prompt) <= b.maxPromptChars {
			return prompt, nil
		}

		// Oldest history first, then weakest chunks.
		if len(turns) > 0 {
			turns = turns[1:]
			continue
		}
		if len(chunks) > 0 {
			chunks = chunks[:len(chunks)-1]
			continue
		}

		return "", fmt.Errorf("%w: template and question alone exceed the %d character budget", models.ErrContextBuild, b.maxPromptChars)
	}
}

// render assembles the prompt from its surviving parts.
func (b *ContextBuilder) render(query string, turns []models.Turn, chunks []models.RetrievalResult) string {
	var sb strings.Builder

	if len(chunks) > 0 {
		sb.WriteString("RELEVANT CONTEXT:\n\n")
		for i, r := range chunks {
			sb.WriteString(fmt.Sprintf("[%d] (source: %s, page %d)\n%s\n\n", i+1, r.Chunk.DocumentID, r.Chunk.Page, r.Chunk.Text))
		}
	}

	if len(turns) > 0 {
		sb.WriteString("CONVERSATION SO FAR:\n")
		for _, t := range turns {
			sb.WriteString(t.Role)
			sb.WriteString(": ")
			sb.WriteString(t.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("QUESTION: ")
	sb.WriteString(query)

	return sb.String()
}

// SystemPrompt returns the instruction matching the retrieval outcome.
func (b *ContextBuilder) SystemPrompt(hasContext bool) string {
	if hasContext {
		return defaultSystemPrompt
	}
	return noContextSystemPrompt
}

// MaxPromptChars returns the configured budget.
func (b *ContextBuilder) MaxPromptChars() int { return b.maxPromptChars }
