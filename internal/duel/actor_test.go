package duel

import (
	"testing"
	"time"

	"duelserver/internal/identity"

	"github.com/stretchr/testify/require"
)

// TestActorRecoversPanicAndAbortsOnlyThatMatch covers spec.md §7's
// fatal-error handling: a panic inside a Match actor's job is caught, the
// Submit call that triggered it reports errMatchAborted rather than
// hanging or crashing the test process, and every subsequent Submit on the
// same actor reports the same error instead of silently running against
// possibly-corrupted state.
func TestActorRecoversPanicAndAbortsOnlyThatMatch(t *testing.T) {
	m := newTestMatch(t)
	seats := map[identity.UserID]int{"user-a": 0, "user-b": 1}
	a := NewActor(m, seats)
	defer a.Close()

	err := a.Submit(func(m *Match) error {
		panic("boom")
	})
	require.ErrorIs(t, err, errMatchAborted)
	require.True(t, a.Aborted())

	err = a.Submit(func(m *Match) error { return nil })
	require.ErrorIs(t, err, errMatchAborted)
}

// TestActorCloseDrainsQueuedJobs covers SPEC_FULL.md §5's graceful-shutdown
// requirement: Close stops accepting new work and nothing left sitting in
// the mailbox buffer leaks or blocks a caller forever.
func TestActorCloseDrainsQueuedJobs(t *testing.T) {
	m := newTestMatch(t)
	a := NewActor(m, map[identity.UserID]int{"user-a": 0, "user-b": 1})

	done := make(chan struct{})
	go func() {
		_ = a.Submit(func(m *Match) error {
			time.Sleep(20 * time.Millisecond)
			return nil
		})
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	a.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit did not return after Close")
	}
	require.Error(t, a.Submit(func(m *Match) error { return nil }))
}
