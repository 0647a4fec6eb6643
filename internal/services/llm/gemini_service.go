package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"google.golang.org/genai"
)

// GeminiService implements the LLMService interface on the Google Gemini
// API. It serves both chat completions and embeddings.
type GeminiService struct {
	config  *common.GeminiConfig
	logger  arbor.ILogger
	client  *genai.Client
	timeout time.Duration
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*GeminiService)(nil)

// convertMessagesToGemini converts []models.Message to Gemini Content
// format, extracting the first system message for SystemInstruction.
func convertMessagesToGemini(messages []models.Message) ([]*genai.Content, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	hasUserMessage := false
	for _, msg := range messages {
		if msg.Role == models.RoleUser {
			hasUserMessage = true
			break
		}
	}
	if !hasUserMessage {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	contents := make([]*genai.Content, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		if msg.Role == models.RoleSystem {
			if systemText == "" {
				systemText = msg.Content
			}
			continue
		}

		var geminiRole string
		switch msg.Role {
		case models.RoleAssistant:
			geminiRole = genai.RoleModel
		default:
			geminiRole = genai.RoleUser
		}

		contents = append(contents, &genai.Content{
			Role:  geminiRole,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}

	return contents, systemText, nil
}

// NewGeminiService creates a new Gemini LLM service instance.
func NewGeminiService(cfg *common.GeminiConfig, logger arbor.ILogger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Google API key is required (set GOOGLE_API_KEY, RESPONSUM_GEMINI_API_KEY, or gemini.api_key in config)", models.ErrConfig)
	}

	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-flash"
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = "embedding-001"
	}
	if cfg.EmbedDimension <= 0 {
		cfg.EmbedDimension = 768
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid gemini timeout %q: %v", models.ErrConfig, cfg.Timeout, err)
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	service := &GeminiService{
		config:  cfg,
		logger:  logger,
		client:  client,
		timeout: timeout,
	}

	logger.Info().
		Str("chat_model", cfg.Model).
		Str("embed_model", cfg.EmbedModel).
		Int("embed_dimension", cfg.EmbedDimension).
		Dur("timeout", timeout).
		Msg("Gemini LLM service initialized")

	return service, nil
}

// Embed generates an embedding vector for the given text using the
// configured embedding model and output dimensionality.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", models.ErrEmbedding)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outputDim := int32(s.config.EmbedDimension)
	result, err := s.client.Models.EmbedContent(timeoutCtx, s.config.EmbedModel,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &outputDim})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: embedding call exceeded %s: %v", models.ErrTimeout, s.timeout, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrEmbedding, err)
	}

	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding response", models.ErrEmbedding)
	}

	values := result.Embeddings[0].Values
	if len(values) != s.config.EmbedDimension {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", models.ErrEmbedding, s.config.EmbedDimension, len(values))
	}

	return values, nil
}

// Chat generates a completion for the conversation using the configured
// chat model.
func (s *GeminiService) Chat(ctx context.Context, messages []models.Message) (string, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrLLM, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Temperature),
	}
	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	start := time.Now()
	resp, err := s.client.Models.GenerateContent(timeoutCtx, s.config.Model, contents, config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: chat call exceeded %s: %v", models.ErrTimeout, s.timeout, err)
		}
		return "", fmt.Errorf("%w: %v", models.ErrLLM, err)
	}

	// Iterate candidates until non-empty text is found
	var response strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					response.WriteString(part.Text)
				}
			}
			if response.Len() > 0 {
				break
			}
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("%w: no response generated from chat model", models.ErrLLM)
	}

	s.logger.Debug().
		Int("messages", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Chat completion generated")

	return response.String(), nil
}

// EmbedDimension returns the configured output dimensionality.
func (s *GeminiService) EmbedDimension() int {
	return s.config.EmbedDimension
}

// Name returns the provider name.
func (s *GeminiService) Name() string {
	return string(common.LLMProviderGemini)
}

// IsAvailable reports whether the provider is configured.
func (s *GeminiService) IsAvailable(ctx context.Context) bool {
	return s.client != nil && s.config.APIKey != ""
}
