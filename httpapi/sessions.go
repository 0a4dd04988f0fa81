package httpapi

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pkt.systems/remsh/schema"
)

// sessionRegistry tracks live command sessions so shutdown can tell the
// clients to go away instead of cutting them off mid-frame.
type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[schema.SessionID]*wsSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[schema.SessionID]*wsSession)}
}

func (r *sessionRegistry) add(s *wsSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.id] = s
}

func (r *sessionRegistry) remove(id schema.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// closeAll sends a going-away close to every live session and drops the
// connections.
func (r *sessionRegistry) closeAll() {
	r.mu.Lock()
	sessions := make([]*wsSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[schema.SessionID]*wsSession)
	r.mu.Unlock()

	deadline := time.Now().Add(writeWait)
	for _, s := range sessions {
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		s.close()
	}
}
