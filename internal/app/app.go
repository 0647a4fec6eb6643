// -----------------------------------------------------------------------
// Application wiring - constructs and owns all services
// -----------------------------------------------------------------------

package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/services/chat"
	"github.com/ternarybob/responsum/internal/services/chunker"
	"github.com/ternarybob/responsum/internal/services/documents"
	"github.com/ternarybob/responsum/internal/services/embeddings"
	"github.com/ternarybob/responsum/internal/services/llm"
	"github.com/ternarybob/responsum/internal/services/pdf"
	"github.com/ternarybob/responsum/internal/services/vectorstore"
	"github.com/ternarybob/responsum/internal/storage/badger"
)

// App holds the wired application services.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB              *badger.BadgerDB
	DocumentStorage interfaces.DocumentStorage
	LLMService      interfaces.LLMService
	VectorStore     interfaces.VectorStore
	ChatService     interfaces.ChatService
	DocumentService interfaces.DocumentService

	scheduler *cron.Cron
}

// New wires the application from configuration.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	db, err := badger.NewBadgerDB(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to open document registry: %w", err)
	}
	registry := badger.NewDocumentStorage(db, logger)

	llmService, err := llm.NewLLMService(cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	embedder, err := embeddings.NewService(llmService, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	store, err := vectorstore.Open(cfg.Storage.VectorPath, embedder, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	ch, err := chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap)
	if err != nil {
		db.Close()
		return nil, err
	}

	extractor := pdf.NewExtractor(logger)

	documentService, err := documents.NewService(extractor, ch, store, registry, cfg.Storage.PDFDir, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	builder, err := chat.NewContextBuilder(cfg.Chat.MaxPromptChars, cfg.Chat.MaxHistoryTurns)
	if err != nil {
		db.Close()
		return nil, err
	}

	chatService, err := chat.NewService(llmService, store, registry, builder, cfg.Retrieval.TopK, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a := &App{
		Config:          cfg,
		Logger:          logger,
		DB:              db,
		DocumentStorage: registry,
		LLMService:      llmService,
		VectorStore:     store,
		ChatService:     chatService,
		DocumentService: documentService,
	}

	logger.Info().
		Str("provider", llmService.Name()).
		Int("chunks", store.Len()).
		Str("pdf_dir", cfg.Storage.PDFDir).
		Msg("Application initialized")

	return a, nil
}

// StartScheduler starts the cron-driven directory re-index when
// processing is enabled.
func (a *App) StartScheduler() error {
	if !a.Config.Processing.Enabled {
		a.Logger.Debug().Msg("Scheduled re-indexing disabled")
		return nil
	}

	a.scheduler = cron.New(cron.WithSeconds())
	_, err := a.scheduler.AddFunc(a.Config.Processing.Schedule, func() {
		common.SafeGo(a.Logger, "scheduled-reindex", func() {
			summary, err := a.DocumentService.IngestDirectory(context.Background())
			if err != nil {
				a.Logger.Warn().Err(err).Msg("Scheduled re-index failed")
				return
			}
			a.Logger.Info().
				Int("indexed", len(summary.Indexed)).
				Int("failed", len(summary.Failed)).
				Msg("Scheduled re-index completed")
		})
	})
	if err != nil {
		return fmt.Errorf("invalid processing schedule %q: %w", a.Config.Processing.Schedule, err)
	}

	a.scheduler.Start()
	a.Logger.Info().Str("schedule", a.Config.Processing.Schedule).Msg("Scheduled re-indexing started")
	return nil
}

// Close releases application resources in reverse construction order.
func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}

	if err := a.VectorStore.Save(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to save vector store on shutdown")
	}
	if err := a.VectorStore.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close vector store")
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			return fmt.Errorf("failed to close document registry: %w", err)
		}
	}
	return nil
}
