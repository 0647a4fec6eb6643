package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// NewLLMService creates the configured LLM service implementation.
// The Claude provider gets a Gemini embedding delegate when a Gemini key
// is present, since Anthropic exposes no embedding endpoint.
func NewLLMService(cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", string(cfg.LLM.Provider)).Msg("Initializing LLM service")

	switch cfg.LLM.Provider {
	case common.LLMProviderGemini:
		return NewGeminiService(&cfg.Gemini, logger)

	case common.LLMProviderClaude:
		var delegate interfaces.LLMService
		if cfg.Gemini.APIKey != "" {
			gemini, err := NewGeminiService(&cfg.Gemini, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to create gemini embedding delegate: %w", err)
			}
			delegate = gemini
		}
		return NewClaudeService(&cfg.Claude, delegate, logger)

	case common.LLMProviderMock:
		return NewMockService(cfg.Gemini.EmbedDimension), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}
}
