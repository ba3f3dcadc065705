package duel

import (
	"context"
	"fmt"
	"sync"

	"duelserver/internal/identity"
	"duelserver/internal/room"
	duellog "duelserver/logging/duel"
)

// Actor is the single-writer-per-room wrapper around a Match: every
// mutation runs serialized on the actor's own goroutine (its mailbox),
// per spec.md §5's concurrency model. The Room Registry only ever talks to
// a room's Match through this type, which satisfies room.Match.
type Actor struct {
	match *Match
	seats map[identity.UserID]int

	jobs chan func()
	done chan struct{}

	mu      sync.Mutex
	aborted bool
}

var _ room.Match = (*Actor)(nil)

// NewActor starts a room's actor goroutine over match, with seat
// assignments (0 or 1) for each participant's stable identity.
func NewActor(match *Match, seats map[identity.UserID]int) *Actor {
	a := &Actor{
		match: match,
		seats: seats,
		jobs:  make(chan func(), 32),
		done:  make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *Actor) run() {
	for {
		select {
		case job, ok := <-a.jobs:
			if !ok {
				return
			}
			a.runJob(job)
		case <-a.done:
			return
		}
	}
}

// runJob executes a single mailbox job with panic recovery, per spec.md §7's
// fatal-error handling: a panic inside a script or rules-engine call aborts
// this Match alone, never the process. Recovery happens here rather than
// inside the job closure itself so it also covers panics the job's own
// result-channel send can't reach.
func (a *Actor) runJob(job func()) {
	defer func() {
		if r := recover(); r != nil {
			a.abort(r)
		}
	}()
	job()
}

// abort marks the actor permanently unusable after a recovered panic,
// publishes it to the match's event stream if one is attached, and stops
// the actor's goroutine. Safe to call more than once.
func (a *Actor) abort(recovered any) {
	a.mu.Lock()
	already := a.aborted
	a.aborted = true
	a.mu.Unlock()
	if already {
		return
	}
	if a.match != nil && a.match.Events != nil {
		duellog.MatchAborted(context.Background(), a.match.Events, duellog.MatchAbortedPayload{
			RoomID: a.match.RoomID,
			Reason: fmt.Sprintf("%v", recovered),
		})
	}
	a.Close()
}

// Aborted reports whether a panic has permanently taken this actor offline.
func (a *Actor) Aborted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.aborted
}

// Seat returns the player index (0 or 1) user occupies, or -1 if user is
// not a participant in this match.
func (a *Actor) Seat(user identity.UserID) int {
	if idx, ok := a.seats[user]; ok {
		return idx
	}
	return -1
}

// Submit runs fn against the match on the actor's own goroutine and blocks
// until it completes, returning whatever error fn reports. Safe to call
// concurrently from any number of caller goroutines (the gateway's
// per-connection readers).
func (a *Actor) Submit(fn func(m *Match) error) error {
	result := make(chan error, 1)
	select {
	case a.jobs <- func() { result <- fn(a.match) }:
	case <-a.done:
		if a.Aborted() {
			return errMatchAborted
		}
		return errActorClosed
	}
	select {
	case err := <-result:
		return err
	case <-a.done:
		if a.Aborted() {
			return errMatchAborted
		}
		return errActorClosed
	}
}

// View runs fn read-only against the match on the actor's own goroutine
// and returns its result, so snapshot construction never races a
// concurrent mutation.
func (a *Actor) View(fn func(m *Match)) error {
	return a.Submit(func(m *Match) error {
		fn(m)
		return nil
	})
}

// Forfeit awards the win to loser's opponent, satisfying room.Match. Safe
// to call from the Room Registry's forfeit-timer goroutine.
func (a *Actor) Forfeit(loser identity.UserID) {
	seat := a.Seat(loser)
	if seat < 0 {
		return
	}
	_ = a.Submit(func(m *Match) error {
		if m.Winner != nil {
			return nil
		}
		winner := otherPlayer(seat)
		m.Winner = &winner
		m.appendLog("opponent forfeited by disconnect timeout")
		return nil
	})
}

// Close stops the actor's goroutine and drains any job still sitting in the
// mailbox buffer, per SPEC_FULL.md §5's graceful-shutdown requirement. Safe
// to call more than once; any Submit racing a Close reports errActorClosed
// (or errMatchAborted, if the close followed a recovered panic) rather than
// blocking forever — the drain here only prevents queued-but-never-run jobs
// from lingering, since every Submit caller already unblocks via the
// now-closed done channel.
func (a *Actor) Close() {
	select {
	case <-a.done:
		return
	default:
		close(a.done)
	}
	for {
		select {
		case <-a.jobs:
		default:
			return
		}
	}
}
