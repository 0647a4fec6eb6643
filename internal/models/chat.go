package models

import "time"

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Turn is a single conversation exchange half. History is append-only and
// owned by the session; it is never reordered or rewritten.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Message is the provider-neutral form passed to LLM services.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse is the answer returned to the client, including the
// distinct source documents that contributed retrieved context.
type ChatResponse struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources,omitempty"`
}

// IngestSummary reports the outcome of an ingestion run.
type IngestSummary struct {
	Indexed  []string `json:"indexed"`
	Failed   []string `json:"failed,omitempty"`
	Chunks   int      `json:"chunks"`
	Duration string   `json:"duration"`
}
