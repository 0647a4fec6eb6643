// -----------------------------------------------------------------------
// keycheck - Verifies configured LLM API keys with a minimal call
// -----------------------------------------------------------------------

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
	"github.com/ternarybob/responsum/internal/services/llm"
)

var configFile = flag.String("config", "", "Configuration file path")

func main() {
	flag.Parse()

	config, err := common.LoadFromFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := common.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	checked := 0
	failed := 0

	if config.Gemini.APIKey != "" {
		service, err := llm.NewGeminiService(&config.Gemini, logger)
		if err != nil {
			report("gemini", err)
			failed++
		} else if err := probe(ctx, service); err != nil {
			report("gemini", err)
			failed++
		} else {
			fmt.Printf("gemini: ok (model %s, embed %s/%dd)\n",
				config.Gemini.Model, config.Gemini.EmbedModel, config.Gemini.EmbedDimension)
		}
		checked++
	}

	if config.Claude.APIKey != "" {
		var embedDelegate interfaces.LLMService
		if config.Gemini.APIKey != "" {
			embedDelegate, _ = llm.NewGeminiService(&config.Gemini, logger)
		}
		service, err := llm.NewClaudeService(&config.Claude, embedDelegate, logger)
		if err != nil {
			report("claude", err)
			failed++
		} else if _, err := service.Chat(ctx, []models.Message{
			{Role: models.RoleUser, Content: "Reply with the single word: ok"},
		}); err != nil {
			report("claude", err)
			failed++
		} else {
			fmt.Printf("claude: ok (model %s)\n", config.Claude.Model)
		}
		checked++
	}

	if checked == 0 {
		fmt.Fprintln(os.Stderr, "no API keys configured: set GOOGLE_API_KEY and/or ANTHROPIC_API_KEY")
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// probe exercises both the chat and embedding paths of a provider.
func probe(ctx context.Context, service interfaces.LLMService) error {
	if _, err := service.Chat(ctx, []models.Message{
		{Role: models.RoleUser, Content: "Reply with the single word: ok"},
	}); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	if _, err := service.Embed(ctx, "probe"); err != nil {
		return fmt.Errorf("embed: %w", err)
	}
	return nil
}

func report(provider string, err error) {
	fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", provider, err)
}
