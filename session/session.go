// session/session.go
package session

import (
	"sync"
	"time"

	"avalon/network"
)

// Session is one live connection. PlayerName stays empty until the
// connection identifies itself through a join or reconnect request.
type Session struct {
	ID         string
	Conn       network.Connection
	PlayerName string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

func (s *Session) Send(event string, data interface{}) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(event, data)
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Registry maps stable player identities to their currently live
// session, and back. It implies no ownership in either direction: a
// closed connection must be explicitly unbound, and unbinding never
// removes the player from the game roster.
type Registry struct {
	sessions map[string]*Session // session ID -> session
	byName   map[string]*Session // player name -> live session
	mutex    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		byName:   make(map[string]*Session),
	}
}

// Add registers a freshly accepted, not yet identified connection.
func (r *Registry) Add(session *Session) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sessions[session.ID] = session
}

// Bind attaches a player identity to a session. Any previous session
// bound to that name is displaced (the player reconnected elsewhere);
// the displaced session is returned so the caller can close it.
func (r *Registry) Bind(name string, session *Session) *Session {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	displaced := r.byName[name]
	if displaced == session {
		displaced = nil
	}
	session.PlayerName = name
	r.byName[name] = session
	return displaced
}

// Unbind removes a session entirely and returns the player name it was
// bound to, or empty if it never identified itself.
func (r *Registry) Unbind(sessionID string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	session, exists := r.sessions[sessionID]
	if !exists {
		return ""
	}
	delete(r.sessions, sessionID)

	name := session.PlayerName
	if name != "" && r.byName[name] == session {
		delete(r.byName, name)
	}
	return name
}

// Resolve returns the session a connection belongs to.
func (r *Registry) Resolve(sessionID string) (*Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	session, exists := r.sessions[sessionID]
	return session, exists
}

// SessionFor returns the live session bound to a player name, if any.
func (r *Registry) SessionFor(name string) (*Session, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	session, exists := r.byName[name]
	return session, exists
}

// BoundSessions returns a snapshot of all identified sessions, safe to
// iterate while the registry keeps changing.
func (r *Registry) BoundSessions() []*Session {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sessions := make([]*Session, 0, len(r.byName))
	for _, s := range r.byName {
		sessions = append(sessions, s)
	}
	return sessions
}
