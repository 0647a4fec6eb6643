package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// ClaudeService implements the LLMService interface on the Anthropic API.
// Claude has no embedding endpoint, so an embedding delegate (normally
// Gemini) backs Embed; without one Embed fails.
type ClaudeService struct {
	config        *common.ClaudeConfig
	logger        arbor.ILogger
	client        anthropic.Client
	timeout       time.Duration
	maxTokens     int
	embedDelegate interfaces.LLMService
}

// Compile-time interface assertion
var _ interfaces.LLMService = (*ClaudeService)(nil)

// convertMessagesToClaude converts []models.Message to Anthropic message
// params, extracting the first system message for the System field.
func convertMessagesToClaude(messages []models.Message) ([]anthropic.MessageParam, string, error) {
	if len(messages) == 0 {
		return nil, "", fmt.Errorf("messages cannot be empty")
	}

	claudeMessages := make([]anthropic.MessageParam, 0, len(messages))
	var systemText string
	for _, msg := range messages {
		switch msg.Role {
		case models.RoleSystem:
			if systemText == "" {
				systemText = msg.Content
			}
		case models.RoleAssistant:
			claudeMessages = append(claudeMessages, anthropic.NewAssistantMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		default:
			claudeMessages = append(claudeMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		}
	}

	if len(claudeMessages) == 0 {
		return nil, "", fmt.Errorf("at least one message must have role 'user'")
	}

	return claudeMessages, systemText, nil
}

// NewClaudeService creates a new Claude LLM service instance. The
// embedDelegate may be nil when embeddings are not needed.
func NewClaudeService(cfg *common.ClaudeConfig, embedDelegate interfaces.LLMService, logger arbor.ILogger) (*ClaudeService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: Anthropic API key is required (set ANTHROPIC_API_KEY, RESPONSUM_CLAUDE_API_KEY, or claude.api_key in config)", models.ErrConfig)
	}

	if cfg.Model == "" {
		cfg.Model = "claude-haiku-3-5-20241022"
	}

	timeout, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid claude timeout %q: %v", models.ErrConfig, cfg.Timeout, err)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	client := anthropic.NewClient(
		option.WithAPIKey(cfg.APIKey),
	)

	service := &ClaudeService{
		config:        cfg,
		logger:        logger,
		client:        client,
		timeout:       timeout,
		maxTokens:     maxTokens,
		embedDelegate: embedDelegate,
	}

	logger.Info().
		Str("model", cfg.Model).
		Dur("timeout", timeout).
		Int("max_tokens", maxTokens).
		Bool("embed_delegate", embedDelegate != nil).
		Msg("Claude LLM service initialized")

	return service, nil
}

// Chat generates a completion for the conversation.
func (s *ClaudeService) Chat(ctx context.Context, messages []models.Message) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrLLM, err)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Model),
		MaxTokens: int64(s.maxTokens),
		Messages:  claudeMessages,
	}
	if s.config.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Temperature))
	}
	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	start := time.Now()
	resp, err := s.client.Messages.New(timeoutCtx, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: chat call exceeded %s: %v", models.ErrTimeout, s.timeout, err)
		}
		return "", fmt.Errorf("%w: %v", models.ErrLLM, err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	if response.Len() == 0 {
		return "", fmt.Errorf("%w: no response generated from Claude API", models.ErrLLM)
	}

	s.logger.Debug().
		Int("messages", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(start)).
		Msg("Chat completion generated")

	return response.String(), nil
}

// Embed delegates embedding generation to the configured delegate.
func (s *ClaudeService) Embed(ctx context.Context, text string) ([]float32, error) {
	if s.embedDelegate == nil {
		return nil, fmt.Errorf("%w: claude has no embedding API and no delegate is configured (set gemini.api_key)", models.ErrConfig)
	}
	return s.embedDelegate.Embed(ctx, text)
}

// EmbedDimension returns the delegate's dimensionality, 0 without one.
func (s *ClaudeService) EmbedDimension() int {
	if s.embedDelegate == nil {
		return 0
	}
	return s.embedDelegate.EmbedDimension()
}

// Name returns the provider name.
func (s *ClaudeService) Name() string {
	return string(common.LLMProviderClaude)
}

// IsAvailable reports whether the provider is configured.
func (s *ClaudeService) IsAvailable(ctx context.Context) bool {
	return s.config.APIKey != ""
}
