package interfaces

import (
	"context"

	"github.com/ternarybob/responsum/internal/models"
)

// ChatService answers questions over the indexed corpus. One request per
// session at a time; a second concurrent request fails with ErrBusy.
type ChatService interface {
	Chat(ctx context.Context, sessionID, message string) (*models.ChatResponse, error)

	// EvictSession drops a session and its history. Evicting an unknown
	// session is a no-op.
	EvictSession(sessionID string)

	// SessionCount reports the number of live sessions.
	SessionCount() int
}
