package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsum/internal/interfaces"
	"github.com/ternarybob/responsum/internal/models"
)

// ChatHandler serves POST /chat.
type ChatHandler struct {
	chatService interfaces.ChatService
	logger      arbor.ILogger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chatService interfaces.ChatService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// HandleChat processes a chat request for a session.
func (h *ChatHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		WriteError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, "message is required")
		return
	}

	resp, err := h.chatService.Chat(r.Context(), req.SessionID, req.Message)
	if err != nil {
		h.logger.Warn().
			Str("session_id", req.SessionID).
			Err(err).
			Msg("Chat request failed")
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// HandleReset evicts a session so the conversation starts fresh.
func (h *ChatHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.SessionID == "" {
		WriteError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	h.chatService.EvictSession(req.SessionID)
	h.logger.Info().Str("session_id", req.SessionID).Msg("Session reset")
	WriteSuccess(w, "session reset")
}
