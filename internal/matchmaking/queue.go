// Package matchmaking implements the FIFO quick-match queue: players who
// ask to be paired with any available opponent rather than sharing a room
// code directly.
//
// Grounded on the teacher's hub.go subscriber list, generalized from "one
// shared world" bookkeeping into an ordered wait-list keyed by identity.
package matchmaking

import (
	"sync"
	"time"

	"duelserver/internal/identity"
)

// Entry is one waiting player in the queue.
type Entry struct {
	User        identity.UserID
	DisplayName string
	DeckRef     string
	EnqueuedAt  time.Time
}

// Pair is two entries popped off the queue together, ready to be handed to
// the room registry to create and start a match.
type Pair struct {
	A, B Entry
}

// Queue is a simple FIFO pairing queue. Safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	order   []identity.UserID
	entries map[identity.UserID]Entry
	nowFunc func() time.Time
}

// NewQueue constructs an empty matchmaking queue.
func NewQueue() *Queue {
	return &Queue{
		entries: make(map[identity.UserID]Entry),
		nowFunc: time.Now,
	}
}

// Enqueue adds user to the back of the queue, replacing any stale entry for
// the same identity (e.g. a reconnect re-issuing the intent).
func (q *Queue) Enqueue(user identity.UserID, displayName, deckRef string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.entries[user]; !exists {
		q.order = append(q.order, user)
	}
	q.entries[user] = Entry{
		User:        user,
		DisplayName: displayName,
		DeckRef:     deckRef,
		EnqueuedAt:  q.nowFunc(),
	}
}

// Leave removes user from the queue, if present. Reports whether an entry
// was actually removed.
func (q *Queue) Leave(user identity.UserID) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.removeLocked(user)
}

func (q *Queue) removeLocked(user identity.UserID) bool {
	if _, ok := q.entries[user]; !ok {
		return false
	}
	delete(q.entries, user)
	for i, u := range q.order {
		if u == user {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// TryPair pops the two oldest waiting entries and returns them, if at least
// two players are currently queued.
func (q *Queue) TryPair() (Pair, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.order) < 2 {
		return Pair{}, false
	}
	aID, bID := q.order[0], q.order[1]
	a, b := q.entries[aID], q.entries[bID]
	q.order = q.order[2:]
	delete(q.entries, aID)
	delete(q.entries, bID)
	return Pair{A: a, B: b}, true
}

// Len reports the current number of waiting players.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}
