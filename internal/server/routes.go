package server

import (
	"github.com/ternarybob/responsum/internal/handlers"
)

// registerRoutes wires handlers onto the router.
func (s *Server) registerRoutes() {
	statusHandler := handlers.NewStatusHandler(s.app.LLMService, s.app.VectorStore, s.app.ChatService, s.app.Logger)
	chatHandler := handlers.NewChatHandler(s.app.ChatService, s.app.Logger)
	documentHandler := handlers.NewDocumentHandler(s.app.DocumentService, s.app.Config.Training.PDFName, s.app.Logger)

	// Liveness and status
	s.router.HandleFunc("/", statusHandler.HandleRoot)
	s.router.HandleFunc("/api/health", statusHandler.HandleHealth)
	s.router.HandleFunc("/api/version", statusHandler.HandleVersion)

	// Chat
	s.router.HandleFunc("/chat", chatHandler.HandleChat)
	s.router.HandleFunc("/chat/reset", chatHandler.HandleReset)

	// Ingestion
	s.router.HandleFunc("/upload-pdf", documentHandler.HandleUpload)
	s.router.HandleFunc("/index-all-pdfs", documentHandler.HandleIndexAll)
	s.router.HandleFunc("/train-with-lte-pdf", documentHandler.HandleTrain)
	s.router.HandleFunc("/api/documents/stats", documentHandler.HandleStats)
}
