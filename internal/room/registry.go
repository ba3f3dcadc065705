package room

import (
	"sync"
	"time"

	"duelserver/internal/identity"
)

// Config tunes the Registry's timing policy.
type Config struct {
	ForfeitTimeout time.Duration
	RoomTTL        time.Duration
}

// DefaultConfig mirrors the documented environment defaults from
// SPEC_FULL.md §6 (FORFEIT_TIMEOUT_SECONDS=60, ROOM_TTL_MINUTES=60).
func DefaultConfig() Config {
	return Config{
		ForfeitTimeout: 60 * time.Second,
		RoomTTL:        60 * time.Minute,
	}
}

// Registry owns the set of rooms, indexed by room-id, user-id, and
// connection handle (via the owning session, looked up by user-id since a
// connection's identity is already resolved by the gateway before it
// reaches the registry).
type Registry struct {
	cfg Config

	mu        sync.Mutex
	rooms     map[string]*Room
	byUser    map[identity.UserID]string // UserID -> room-id
	clockNow  func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
}

// NewRegistry constructs an empty Room Registry.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		cfg:       cfg,
		rooms:     make(map[string]*Room),
		byUser:    make(map[identity.UserID]string),
		clockNow:  time.Now,
		afterFunc: time.AfterFunc,
	}
}

// Create allocates a fresh waiting Room containing a single participant.
func (reg *Registry) Create(host Participant) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	var id string
	for {
		id = NewID()
		if _, exists := reg.rooms[id]; !exists {
			break
		}
	}
	r := &Room{
		ID:        id,
		Status:    StatusWaiting,
		Players:   []*Participant{&host},
		CreatedAt: reg.clockNow(),
	}
	reg.rooms[id] = r
	reg.byUser[host.User] = id
	return r
}

// Join adds a participant to an existing waiting room.
func (reg *Registry) Join(roomID string, p Participant) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound
	}
	if r.Status != StatusWaiting {
		return nil, errRoomNotWaiting
	}
	if r.Full() {
		return nil, errRoomFull
	}
	r.Players = append(r.Players, &p)
	reg.byUser[p.User] = roomID
	return r, nil
}

// SetReady flips a participant's ready flag and, once both participants are
// ready, transitions the room to starting. The caller is responsible for
// constructing the Match and calling MarkPlaying.
func (reg *Registry) SetReady(roomID string, user identity.UserID, ready bool) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound
	}
	p, ok := r.Participant(user)
	if !ok {
		return nil, errNotParticipant
	}
	p.Ready = ready
	if r.Status == StatusWaiting && r.AllReady() {
		r.Status = StatusStarting
	}
	return r, nil
}

// MarkPlaying attaches the constructed Match and flips the room to playing.
func (reg *Registry) MarkPlaying(roomID string, m Match) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound
	}
	r.Match = m
	r.Status = StatusPlaying
	return r, nil
}

// MarkFinished transitions a room to finished and records the winner.
func (reg *Registry) MarkFinished(roomID string, winner identity.UserID) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound
	}
	r.Status = StatusFinished
	w := winner
	r.Winner = &w
	reg.cancelForfeitTimerLocked(r)
	return r, nil
}

// List returns every room currently known to the registry. When
// joinableOnly is true (the default per SPEC_FULL.md's list-rooms
// supplement), only rooms with Status==StatusWaiting are included.
func (reg *Registry) List(joinableOnly bool) []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	out := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		if joinableOnly && r.Status != StatusWaiting {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Lookup returns a room by id.
func (reg *Registry) Lookup(roomID string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[roomID]
	return r, ok
}

// RoomForUser returns the room-id a UserID last joined, if any — used to
// implement the `rejoin` intent.
func (reg *Registry) RoomForUser(user identity.UserID) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id, ok := reg.byUser[user]
	return id, ok
}

// Leave removes user from roomID by explicit request (the leave-room
// intent), as opposed to a connection drop. Only valid while the room is
// still waiting for players; once a match is starting or playing a
// participant can only leave via disconnect/forfeit. The room is deleted if
// it becomes empty.
func (reg *Registry) Leave(roomID string, user identity.UserID) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound
	}
	if _, ok := r.Participant(user); !ok {
		return nil, errNotParticipant
	}
	if r.Status != StatusWaiting {
		return nil, errRoomNotWaiting
	}
	reg.removeParticipantLocked(r, user)
	return r, nil
}

// Remove deletes a room outright (the gateway uses it when pairing a
// matched room fails and when a match is aborted).
func (reg *Registry) Remove(roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[roomID]
	if !ok {
		return
	}
	reg.cancelForfeitTimerLocked(r)
	if r.Match != nil {
		r.Match.Close()
	}
	for _, p := range r.Players {
		if reg.byUser[p.User] == roomID {
			delete(reg.byUser, p.User)
		}
	}
	delete(reg.rooms, roomID)
}

// Disconnect handles a connection closing. While the room is waiting or
// finished the participant is removed immediately (and the room is deleted
// once empty). While playing or starting, the participant is marked
// disconnected and a forfeit timer is started; onForfeit is invoked from the
// timer goroutine if it is not cancelled by a Reconnect first.
func (reg *Registry) Disconnect(roomID string, user identity.UserID, onForfeit func(roomID string, loser identity.UserID)) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return
	}
	p, ok := r.Participant(user)
	if !ok {
		return
	}

	switch r.Status {
	case StatusWaiting, StatusFinished:
		reg.removeParticipantLocked(r, user)
	case StatusStarting, StatusPlaying:
		p.Conn = nil
		p.Disconnected = true
		reg.startForfeitTimerLocked(r, user, onForfeit)
	}
}

// Reconnect rebinds a connection handle to an existing participant and
// cancels any pending forfeit timer. It returns the room so the caller can
// push a full per-view snapshot.
func (reg *Registry) Reconnect(roomID string, user identity.UserID, conn identity.Conn) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[roomID]
	if !ok {
		return nil, errRoomNotFound
	}
	p, ok := r.Participant(user)
	if !ok {
		return nil, errNotParticipant
	}
	p.Conn = conn
	p.Disconnected = false
	reg.cancelForfeitTimerLocked(r)
	return r, nil
}

func (reg *Registry) startForfeitTimerLocked(r *Room, user identity.UserID, onForfeit func(string, identity.UserID)) {
	if reg.forfeitKeyExists(r, user) {
		return
	}
	if r.forfeitTimers == nil {
		r.forfeitTimers = make(map[identity.UserID]*time.Timer)
	}
	roomID := r.ID
	r.forfeitTimers[user] = reg.afterFunc(reg.cfg.ForfeitTimeout, func() {
		reg.mu.Lock()
		room, ok := reg.rooms[roomID]
		if !ok {
			reg.mu.Unlock()
			return
		}
		delete(room.forfeitTimers, user)
		reg.mu.Unlock()
		if onForfeit != nil {
			onForfeit(roomID, user)
		}
	})
}

func (reg *Registry) forfeitKeyExists(r *Room, user identity.UserID) bool {
	if r.forfeitTimers == nil {
		return false
	}
	_, ok := r.forfeitTimers[user]
	return ok
}

func (reg *Registry) cancelForfeitTimerLocked(r *Room) {
	if r == nil || r.forfeitTimers == nil {
		return
	}
	for user, t := range r.forfeitTimers {
		t.Stop()
		delete(r.forfeitTimers, user)
	}
}

func (reg *Registry) removeParticipantLocked(r *Room, user identity.UserID) {
	for i, p := range r.Players {
		if p.User == user {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	delete(reg.byUser, user)
	if len(r.Players) == 0 {
		reg.cancelForfeitTimerLocked(r)
		delete(reg.rooms, r.ID)
	}
}

// Sweep deletes rooms older than the configured TTL. Intended to run on a
// periodic ticker from the app's wiring code.
func (reg *Registry) Sweep() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	now := reg.clockNow()
	for id, r := range reg.rooms {
		if now.Sub(r.CreatedAt) <= reg.cfg.RoomTTL {
			continue
		}
		reg.cancelForfeitTimerLocked(r)
		if r.Match != nil {
			r.Match.Close()
		}
		for _, p := range r.Players {
			if reg.byUser[p.User] == id {
				delete(reg.byUser, p.User)
			}
		}
		delete(reg.rooms, id)
	}
}
