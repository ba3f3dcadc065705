package matchmaking

import (
	"testing"

	"duelserver/internal/identity"

	"github.com/stretchr/testify/require"
)

func TestTryPairRequiresTwoEntries(t *testing.T) {
	q := NewQueue()
	_, ok := q.TryPair()
	require.False(t, ok)

	q.Enqueue(identity.NewUserID(), "solo", "deck-1")
	_, ok = q.TryPair()
	require.False(t, ok)
}

func TestTryPairReturnsOldestFirst(t *testing.T) {
	q := NewQueue()
	a := identity.NewUserID()
	b := identity.NewUserID()
	c := identity.NewUserID()
	q.Enqueue(a, "a", "deck-a")
	q.Enqueue(b, "b", "deck-b")
	q.Enqueue(c, "c", "deck-c")

	pair, ok := q.TryPair()
	require.True(t, ok)
	require.Equal(t, a, pair.A.User)
	require.Equal(t, b, pair.B.User)
	require.Equal(t, 1, q.Len())
}

func TestEnqueueReplacesStaleEntryWithoutDuplicatingOrder(t *testing.T) {
	q := NewQueue()
	a := identity.NewUserID()
	q.Enqueue(a, "a", "deck-1")
	q.Enqueue(a, "a", "deck-2")
	require.Equal(t, 1, q.Len())

	b := identity.NewUserID()
	q.Enqueue(b, "b", "deck-b")
	pair, ok := q.TryPair()
	require.True(t, ok)
	require.Equal(t, "deck-2", pair.A.DeckRef)
}

func TestLeaveRemovesEntry(t *testing.T) {
	q := NewQueue()
	a := identity.NewUserID()
	q.Enqueue(a, "a", "deck-a")
	require.True(t, q.Leave(a))
	require.False(t, q.Leave(a))
	require.Equal(t, 0, q.Len())
}
