package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/common"
	"github.com/ternarybob/responsum/internal/interfaces"
)

// StatusHandler serves liveness, health and version endpoints.
type StatusHandler struct {
	llmService  interfaces.LLMService
	store       interfaces.VectorStore
	chatService interfaces.ChatService
	logger      arbor.ILogger
}

// NewStatusHandler creates a status handler.
func NewStatusHandler(llmService interfaces.LLMService, store interfaces.VectorStore, chatService interfaces.ChatService, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		llmService:  llmService,
		store:       store,
		chatService: chatService,
		logger:      logger,
	}
}

// HandleRoot serves GET / as a liveness probe with a provider summary.
func (h *StatusHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"service":  "responsum",
		"provider": h.llmService.Name(),
		"chunks":   h.store.Len(),
	})
}

// HandleHealth reports provider availability and index state.
func (h *StatusHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	available := h.llmService.IsAvailable(r.Context())
	status := "healthy"
	code := http.StatusOK
	if !available {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	WriteJSON(w, code, map[string]interface{}{
		"status":        status,
		"provider":      h.llmService.Name(),
		"llm_available": available,
		"chunks":        h.store.Len(),
		"sessions":      h.chatService.SessionCount(),
	})
}

// HandleVersion reports build information.
func (h *StatusHandler) HandleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}
