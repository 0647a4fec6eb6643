package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/responsum/internal/models"
)

type sessionState int

const (
	stateIdle sessionState = iota
	stateAwaiting
)

// session is the per-conversation state machine. It accepts one request
// at a time: begin moves Idle -> Awaiting, finish always returns to Idle,
// success or not. History is append-only under the session lock.
type session struct {
	mu      sync.Mutex
	id      string
	state   sessionState
	history []models.Turn
}

// begin claims the session for a request. A session already awaiting a
// response rejects with ErrBusy.
func (s *session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateAwaiting {
		return fmt.Errorf("%w: session %s already has a request in flight", models.ErrBusy, s.id)
	}
	s.state = stateAwaiting
	return nil
}

// finish releases the session. The session stays usable after a failed
// request.
func (s *session) finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateIdle
}

// appendTurn records a conversation turn.
func (s *session) appendTurn(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, models.Turn{
		Role:    role,
		Content: content,
		At:      time.Now(),
	})
}

// snapshotHistory returns a copy of the history for prompt assembly.
func (s *session) snapshotHistory() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// sessionRegistry holds sessions keyed by id. Sessions are independent:
// requests on different sessions run concurrently.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*session)}
}

// get returns the session for the id, creating it on first use.
func (r *sessionRegistry) get(id string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		s = &session{id: id}
		r.sessions[id] = s
	}
	return s
}

// evict removes a session and its history.
func (r *sessionRegistry) evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// count reports the number of live sessions.
func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
