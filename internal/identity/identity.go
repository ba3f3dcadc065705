// Package identity manages the long-lived UserIdentity tokens that survive
// reconnects, and the transient Session handles bound to a live connection.
//
// Grounded on the teacher's subscriber bookkeeping in hub.go (a
// connection-keyed map guarded by a single mutex); generalized here from
// "one world's subscribers" to "every user's live session".
package identity

import (
	"sync"

	"github.com/google/uuid"
)

// UserID is a stable opaque token identifying a player across reconnects.
type UserID string

// NewUserID mints a fresh opaque identity token.
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// Conn is the minimal connection-handle surface the identity registry needs
// in order to supersede a stale connection when a new one presents the same
// UserID. Concrete websocket sessions implement this.
type Conn interface {
	Close() error
}

// Session binds a UserID to a live connection handle and an optional room.
type Session struct {
	User   UserID
	Conn   Conn
	RoomID string // empty until the session joins or creates a room
}

// Registry tracks the single live Session for each UserID. At most one
// connection may be live per identity: registering a new connection for an
// already-live identity closes and supersedes the previous one.
type Registry struct {
	mu       sync.Mutex
	sessions map[UserID]*Session
}

// NewRegistry constructs an empty identity registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[UserID]*Session)}
}

// Connect registers conn as the live connection for user, superseding and
// closing any previous connection for the same identity. It returns the
// session so callers can attach a room-id later.
func (r *Registry) Connect(user UserID, conn Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[user]; ok && prev.Conn != nil {
		prev.Conn.Close()
	}
	session := &Session{User: user, Conn: conn}
	r.sessions[user] = session
	return session
}

// Lookup returns the live session for user, if any.
func (r *Registry) Lookup(user UserID) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[user]
	return s, ok
}

// SetRoom records which room a session has joined.
func (r *Registry) SetRoom(user UserID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[user]; ok {
		s.RoomID = roomID
	}
}

// Disconnect removes the session for user if it is still bound to conn
// (a session superseded by a newer connection is left untouched, since the
// newer connection owns the identity now).
func (r *Registry) Disconnect(user UserID, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[user]; ok && s.Conn == conn {
		delete(r.sessions, user)
	}
}
