package room

import (
	"testing"
	"time"

	"duelserver/internal/identity"

	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(Config{ForfeitTimeout: time.Millisecond, RoomTTL: time.Hour})
}

func TestCreateAndJoin(t *testing.T) {
	reg := newTestRegistry()
	host := Participant{User: identity.NewUserID(), DisplayName: "host"}
	r := reg.Create(host)
	require.Equal(t, StatusWaiting, r.Status)
	require.Len(t, r.Players, 1)

	guest := Participant{User: identity.NewUserID(), DisplayName: "guest"}
	joined, err := reg.Join(r.ID, guest)
	require.NoError(t, err)
	require.True(t, joined.Full())
}

func TestJoinRejectsFullOrUnknownRoom(t *testing.T) {
	reg := newTestRegistry()
	host := Participant{User: identity.NewUserID()}
	r := reg.Create(host)
	_, err := reg.Join(r.ID, Participant{User: identity.NewUserID()})
	require.NoError(t, err)

	_, err = reg.Join(r.ID, Participant{User: identity.NewUserID()})
	require.ErrorIs(t, err, errRoomFull)

	_, err = reg.Join("does-not-exist", Participant{User: identity.NewUserID()})
	require.ErrorIs(t, err, errRoomNotFound)
}

func TestSetReadyTransitionsToStarting(t *testing.T) {
	reg := newTestRegistry()
	a, b := identity.NewUserID(), identity.NewUserID()
	r := reg.Create(Participant{User: a})
	reg.Join(r.ID, Participant{User: b})

	r, err := reg.SetReady(r.ID, a, true)
	require.NoError(t, err)
	require.Equal(t, StatusWaiting, r.Status)

	r, err = reg.SetReady(r.ID, b, true)
	require.NoError(t, err)
	require.Equal(t, StatusStarting, r.Status)
}

type fakeMatch struct {
	forfeited identity.UserID
	closed    bool
}

func (f *fakeMatch) Forfeit(loser identity.UserID) { f.forfeited = loser }
func (f *fakeMatch) Close()                        { f.closed = true }

func TestDisconnectWhileWaitingRemovesParticipantAndEmptyRoom(t *testing.T) {
	reg := newTestRegistry()
	a := identity.NewUserID()
	r := reg.Create(Participant{User: a})

	reg.Disconnect(r.ID, a, nil)

	_, ok := reg.Lookup(r.ID)
	require.False(t, ok, "room should be deleted once its last waiting participant disconnects")
}

func TestDisconnectWhilePlayingStartsForfeitTimer(t *testing.T) {
	reg := newTestRegistry()
	a, b := identity.NewUserID(), identity.NewUserID()
	r := reg.Create(Participant{User: a})
	reg.Join(r.ID, Participant{User: b})
	reg.SetReady(r.ID, a, true)
	reg.SetReady(r.ID, b, true)
	match := &fakeMatch{}
	_, err := reg.MarkPlaying(r.ID, match)
	require.NoError(t, err)

	done := make(chan struct{})
	reg.Disconnect(r.ID, a, func(roomID string, loser identity.UserID) {
		require.Equal(t, r.ID, roomID)
		require.Equal(t, a, loser)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("forfeit callback was not invoked before timeout")
	}
}

func TestReconnectCancelsForfeitTimer(t *testing.T) {
	reg := NewRegistry(Config{ForfeitTimeout: 50 * time.Millisecond, RoomTTL: time.Hour})
	a, b := identity.NewUserID(), identity.NewUserID()
	r := reg.Create(Participant{User: a})
	reg.Join(r.ID, Participant{User: b})
	reg.SetReady(r.ID, a, true)
	reg.SetReady(r.ID, b, true)
	reg.MarkPlaying(r.ID, &fakeMatch{})

	called := false
	reg.Disconnect(r.ID, a, func(string, identity.UserID) { called = true })
	_, err := reg.Reconnect(r.ID, a, nil)
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond)
	require.False(t, called, "reconnect must cancel the pending forfeit timer")
}

func TestListJoinableOnly(t *testing.T) {
	reg := newTestRegistry()
	waiting := reg.Create(Participant{User: identity.NewUserID()})
	full := reg.Create(Participant{User: identity.NewUserID()})
	reg.Join(full.ID, Participant{User: identity.NewUserID()})
	reg.SetReady(full.ID, full.Players[0].User, true)
	reg.SetReady(full.ID, full.Players[1].User, true)

	rooms := reg.List(true)
	require.Len(t, rooms, 1)
	require.Equal(t, waiting.ID, rooms[0].ID)

	all := reg.List(false)
	require.Len(t, all, 2)
}

func TestSweepRemovesExpiredRooms(t *testing.T) {
	reg := newTestRegistry()
	r := reg.Create(Participant{User: identity.NewUserID()})
	reg.clockNow = func() time.Time { return time.Now().Add(2 * time.Hour) }

	reg.Sweep()

	_, ok := reg.Lookup(r.ID)
	require.False(t, ok)
}
