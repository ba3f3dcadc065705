package gateway

import (
	"encoding/json"
	"sync"
	"testing"

	"duelserver/internal/catalog"
	"duelserver/internal/effectsrt"
	"duelserver/internal/net/proto"
	"duelserver/internal/room"
	"duelserver/internal/ruleserr"

	"github.com/stretchr/testify/require"
)

func createRoomIntent(deckRef string) proto.ClientIntent {
	return proto.ClientIntent{Type: proto.IntentCreateRoom, DeckRef: deckRef}
}

func joinRoomIntent(roomID, deckRef string) proto.ClientIntent {
	return proto.ClientIntent{Type: proto.IntentJoinRoom, RoomID: roomID, DeckRef: deckRef}
}

func setReadyIntent(ready bool) proto.ClientIntent {
	return proto.ClientIntent{Type: proto.IntentSetReady, Ready: ready}
}

func endTurnIntent() proto.ClientIntent {
	return proto.ClientIntent{Type: proto.IntentEndTurn}
}

// fakeConn captures every frame sent to it instead of writing to a real
// socket, mirroring the teacher's in-process hub tests that assert on
// captured broadcast payloads rather than dialing a live connection.
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) last() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	var frame map[string]any
	_ = json.Unmarshal(c.frames[len(c.frames)-1], &frame)
	return frame
}

func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.frames))
	for i, f := range c.frames {
		var frame map[string]any
		_ = json.Unmarshal(f, &frame)
		out[i], _ = frame["type"].(string)
	}
	return out
}

const fixtureLeader = "OP01-001"
const fixtureVanilla = "OP02-010"

func fixtureCatalog() *catalog.Memory {
	mem := catalog.NewMemory()
	mem.Cards[fixtureLeader] = &catalog.CardDefinition{CardNumber: fixtureLeader, Category: "LEADER", Power: 5000, Life: 4}
	mem.Cards[fixtureVanilla] = &catalog.CardDefinition{CardNumber: fixtureVanilla, Category: "CHARACTER", Cost: 1, Power: 3000}
	cards := make([]string, 20)
	for i := range cards {
		cards[i] = fixtureVanilla
	}
	mem.Decks["deck-a"] = &catalog.DeckList{DeckRef: "deck-a", LeaderCard: fixtureLeader, Cards: cards}
	mem.Decks["deck-b"] = &catalog.DeckList{DeckRef: "deck-b", LeaderCard: fixtureLeader, Cards: cards}
	return mem
}

func newTestGateway() *Gateway {
	cfg := Config{Room: room.Config{}}
	return New(fixtureCatalog(), effectsrt.NewRegistry(), nil, nil, cfg)
}

func TestConnectMintsUserIDWhenNonePresented(t *testing.T) {
	g := newTestGateway()
	conn := &fakeConn{}
	session := g.Connect(conn, "")
	require.NotEmpty(t, session.User)
}

func TestConnectReusesPresentedUserID(t *testing.T) {
	g := newTestGateway()
	conn := &fakeConn{}
	session := g.Connect(conn, "user-123")
	require.Equal(t, "user-123", string(session.User))
}

func TestCreateJoinAndReadyStartsMatch(t *testing.T) {
	g := newTestGateway()
	hostConn, joinConn := &fakeConn{}, &fakeConn{}
	host := g.Connect(hostConn, "host")
	joiner := g.Connect(joinConn, "joiner")

	require.NoError(t, g.route(host, hostConn, createRoomIntent("deck-a")))
	require.NotEmpty(t, host.RoomID)

	require.NoError(t, g.route(joiner, joinConn, joinRoomIntent(host.RoomID, "deck-b")))
	require.Equal(t, host.RoomID, joiner.RoomID)

	require.NoError(t, g.route(host, hostConn, setReadyIntent(true)))
	require.NoError(t, g.route(joiner, joinConn, setReadyIntent(true)))

	a := g.lookupActor(host.RoomID)
	require.NotNil(t, a, "readying both participants should start the match actor")
	require.Contains(t, hostConn.types(), "game-start")
	require.Contains(t, joinConn.types(), "game-start")
}

func TestHandleGameIntentRejectsUnseatedUser(t *testing.T) {
	g := newTestGateway()
	hostConn, joinConn, outsiderConn := &fakeConn{}, &fakeConn{}, &fakeConn{}
	host := g.Connect(hostConn, "host")
	joiner := g.Connect(joinConn, "joiner")
	outsider := g.Connect(outsiderConn, "outsider")

	require.NoError(t, g.route(host, hostConn, createRoomIntent("deck-a")))
	require.NoError(t, g.route(joiner, joinConn, joinRoomIntent(host.RoomID, "deck-b")))
	require.NoError(t, g.route(host, hostConn, setReadyIntent(true)))
	require.NoError(t, g.route(joiner, joinConn, setReadyIntent(true)))

	outsider.RoomID = host.RoomID
	err := g.handleGameIntent(outsider, endTurnIntent())
	require.Error(t, err)
}

func TestEndTurnIntentBroadcastsGameUpdateToBothSeats(t *testing.T) {
	g := newTestGateway()
	hostConn, joinConn := &fakeConn{}, &fakeConn{}
	host := g.Connect(hostConn, "host")
	joiner := g.Connect(joinConn, "joiner")

	require.NoError(t, g.route(host, hostConn, createRoomIntent("deck-a")))
	require.NoError(t, g.route(joiner, joinConn, joinRoomIntent(host.RoomID, "deck-b")))
	require.NoError(t, g.route(host, hostConn, setReadyIntent(true)))
	require.NoError(t, g.route(joiner, joinConn, setReadyIntent(true)))

	require.NoError(t, g.handleGameIntent(host, endTurnIntent()))
	require.Contains(t, hostConn.types(), "game-update")
	require.Contains(t, joinConn.types(), "game-update")
}

// TestHandleActorErrorBroadcastsToBothPlayersOnMatchAbort covers spec.md
// §7's fatal-error handling: a recovered panic notifies both participants,
// not only whoever's intent happened to trigger it, and tears the room's
// actor down.
func TestHandleActorErrorBroadcastsToBothPlayersOnMatchAbort(t *testing.T) {
	g := newTestGateway()
	hostConn, joinConn := &fakeConn{}, &fakeConn{}
	host := g.Connect(hostConn, "host")
	joiner := g.Connect(joinConn, "joiner")

	require.NoError(t, g.route(host, hostConn, createRoomIntent("deck-a")))
	require.NoError(t, g.route(joiner, joinConn, joinRoomIntent(host.RoomID, "deck-b")))
	require.NoError(t, g.route(host, hostConn, setReadyIntent(true)))
	require.NoError(t, g.route(joiner, joinConn, setReadyIntent(true)))

	r, ok := g.Rooms.Lookup(host.RoomID)
	require.True(t, ok)
	a := g.lookupActor(host.RoomID)
	require.NotNil(t, a)

	g.handleActorError(r, a, ruleserr.Fatal(ruleserr.CodeMatchAborted, "boom", nil))

	require.Contains(t, hostConn.types(), "error")
	require.Contains(t, joinConn.types(), "error")
	require.Nil(t, g.lookupActor(host.RoomID))
}

func TestDispatchMalformedPayloadSendsErrorFrame(t *testing.T) {
	g := newTestGateway()
	conn := &fakeConn{}
	session := g.Connect(conn, "solo")
	g.Dispatch(session, conn, []byte("not json"))
	frame := conn.last()
	require.NotNil(t, frame)
	require.Equal(t, "error", frame["type"])
}
