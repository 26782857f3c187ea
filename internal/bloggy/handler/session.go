package handler

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/kart-io/logger"
)

// SessionRegistry tracks live websocket connections by client id. All
// mutations happen under one mutex; Unregister is idempotent so the deferred
// cleanup and any error path can both run it.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*websocket.Conn
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*websocket.Conn),
	}
}

// Register records the connection for the client id, replacing any previous
// connection under the same id.
func (r *SessionRegistry) Register(clientID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[clientID]; ok && old != conn {
		_ = old.Close()
	}
	r.sessions[clientID] = conn
	logger.Infow("chat session connected", "client_id", clientID, "sessions", len(r.sessions))
}

// Unregister removes the client's session. Removing an absent id is a no-op.
func (r *SessionRegistry) Unregister(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[clientID]; !ok {
		return
	}
	delete(r.sessions, clientID)
	logger.Infow("chat session disconnected", "client_id", clientID, "sessions", len(r.sessions))
}

// Count returns the number of live sessions.
func (r *SessionRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
