package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// MockService is a deterministic in-process provider used by tests and the
// "mock" provider mode. Embeddings hash token occurrences into a fixed
// number of buckets, so texts sharing vocabulary land near each other
// under cosine similarity. Chat echoes the last user message.
type MockService struct {
	dimension int

	// ChatFn overrides the completion behavior when set.
	ChatFn func(ctx context.Context, messages []models.Message) (string, error)

	// EmbedFn overrides the embedding behavior when set.
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*MockService)(nil)

// NewMockService creates a mock provider with the given dimensionality.
func NewMockService(dimension int) *MockService {
	if dimension <= 0 {
		dimension = 768
	}
	return &MockService{dimension: dimension}
}

// Embed produces a normalized bag-of-words hash embedding.
func (s *MockService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.EmbedFn != nil {
		return s.EmbedFn(ctx, text)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", models.ErrEmbedding)
	}

	vec := make([]float32, s.dimension)
	word := make([]rune, 0, 16)
	flush := func() {
		if len(word) == 0 {
			return
		}
		h := fnv.New32a()
		h.Write([]byte(string(word)))
		vec[int(h.Sum32())%s.dimension]++
		word = word[:0]
	}
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			word = append(word, r)
		case r >= 'A' && r <= 'Z':
			word = append(word, r+('a'-'A'))
		default:
			flush()
		}
	}
	flush()

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	} else {
		vec[0] = 1
	}

	return vec, nil
}

// Chat echoes the last user message, prefixed so tests can assert the
// prompt reached the provider.
func (s *MockService) Chat(ctx context.Context, messages []models.Message) (string, error) {
	if s.ChatFn != nil {
		return s.ChatFn(ctx, messages)
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("%w: messages cannot be empty", models.ErrLLM)
	}
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == models.RoleUser {
			return "echo: " + messages[i].Content, nil
		}
	}
	return "", fmt.Errorf("%w: no user message", models.ErrLLM)
}

// EmbedDimension returns the configured dimensionality.
func (s *MockService) EmbedDimension() int { return s.dimension }

// Name returns the provider name.
func (s *MockService) Name() string { return "mock" }

// IsAvailable always reports true.
func (s *MockService) IsAvailable(ctx context.Context) bool { return true }
