// Package gateway implements the Session Gateway component from
// SPEC_FULL.md §4.7: the per-connection event demultiplexer that translates
// client intents into Room Registry / Matchmaking Queue / Rules Engine
// calls, broadcasts per-view state and pending prompts after every
// successful mutation, and drives reconnection and forfeit notification.
//
// Grounded on the teacher's internal/net/ws session loop (read-loop,
// per-message ack/reject, disconnect-triggers-broadcast shape) generalized
// from "one shared world, every client sees the same state" to "one room
// per match, each client sees its own redacted view".
package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"duelserver/internal/catalog"
	"duelserver/internal/duel"
	"duelserver/internal/effectsrt"
	"duelserver/internal/identity"
	"duelserver/internal/matchmaking"
	"duelserver/internal/net/proto"
	"duelserver/internal/room"
	"duelserver/internal/ruleserr"
	"duelserver/internal/telemetry"
	"duelserver/logging"
	loggateway "duelserver/logging/gateway"
	loggingroom "duelserver/logging/room"

	"golang.org/x/sync/errgroup"
)

// Conn is the per-connection send/close surface the gateway needs. The
// websocket session layer's connection wrapper implements this; it also
// satisfies identity.Conn (Close) so it can be stored directly on a
// room.Participant.
type Conn interface {
	Send(data []byte) error
	Close() error
}

// Config tunes gateway-owned policy that doesn't belong to the Room
// Registry or Matchmaking Queue themselves.
type Config struct {
	Room room.Config
}

// Gateway wires the Identity & Session Registry, Room Registry,
// Matchmaking Queue, Catalog collaborator, and Effect Runtime script
// registry together, and is the only component that knows how to start a
// duel.Actor for a room and push per-view snapshots to its participants.
type Gateway struct {
	Identity *identity.Registry
	Rooms    *room.Registry
	Queue    *matchmaking.Queue
	Catalog  catalog.Source
	Scripts  *effectsrt.Registry
	Logger   telemetry.Logger
	Events   logging.Publisher

	mu     sync.Mutex
	actors map[string]*duel.Actor
}

// New constructs a Gateway ready to accept connections.
func New(catalogSource catalog.Source, scripts *effectsrt.Registry, logger telemetry.Logger, events logging.Publisher, cfg Config) *Gateway {
	roomCfg := cfg.Room
	if roomCfg == (room.Config{}) {
		roomCfg = room.DefaultConfig()
	}
	if events == nil {
		events = logging.NopPublisher{}
	}
	return &Gateway{
		Identity: identity.NewRegistry(),
		Rooms:    room.NewRegistry(roomCfg),
		Queue:    matchmaking.NewQueue(),
		Catalog:  catalogSource,
		Scripts:  scripts,
		Logger:   logger,
		Events:   events,
		actors:   make(map[string]*duel.Actor),
	}
}

// Connect binds conn to a live Session for presentedUser (a UserID the
// client persisted from a previous connect), minting a fresh UserID when
// none is presented. The returned UserID is always echoed back to the
// client so it can persist it across reconnects, per spec.md §6.
func (g *Gateway) Connect(conn Conn, presentedUser string) *identity.Session {
	user := identity.UserID(presentedUser)
	if user == "" {
		user = identity.NewUserID()
	}
	session := g.Identity.Connect(user, conn)
	loggateway.Connected(context.Background(), g.Events, string(user))
	return session
}

// Disconnect tears down everything owned by a closed connection: it leaves
// the matchmaking queue, hands the room off to the Room Registry's
// disconnect policy (forfeit timer while playing, immediate removal while
// waiting/finished), and releases the identity session.
func (g *Gateway) Disconnect(session *identity.Session, conn Conn) {
	if session == nil {
		return
	}
	g.Queue.Leave(session.User)
	if session.RoomID != "" {
		g.Rooms.Disconnect(session.RoomID, session.User, g.onForfeit)
	}
	g.Identity.Disconnect(session.User, conn)
	loggateway.Disconnected(context.Background(), g.Events, string(session.User))
}

// onForfeit is invoked by the Room Registry's forfeit timer goroutine.
func (g *Gateway) onForfeit(roomID string, loser identity.UserID) {
	r, ok := g.Rooms.Lookup(roomID)
	if !ok {
		return
	}
	a := g.lookupActor(roomID)
	if a == nil {
		return
	}
	a.Forfeit(loser)
	loggingroom.Forfeit(context.Background(), g.Events, roomID, string(loser))
	g.finishIfOver(r, a)
}

// logf is a nil-safe logging helper.
func (g *Gateway) logf(format string, args ...any) {
	if g.Logger != nil {
		g.Logger.Printf(format, args...)
	}
}

func (g *Gateway) setActor(roomID string, a *duel.Actor) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actors[roomID] = a
}

func (g *Gateway) lookupActor(roomID string) *duel.Actor {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.actors[roomID]
}

func (g *Gateway) dropActor(roomID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.actors, roomID)
}

// send encodes an event and writes it to a single participant's connection,
// if it still has one (participants who are currently disconnected are
// silently skipped; they'll receive a full game-sync snapshot on rejoin).
func (g *Gateway) send(p *room.Participant, eventType string, payload any) {
	if p == nil || p.Conn == nil {
		return
	}
	conn, ok := p.Conn.(Conn)
	if !ok {
		return
	}
	data, err := proto.Encode(eventType, payload)
	if err != nil {
		g.logf("gateway: encode %s: %v", eventType, err)
		return
	}
	if err := conn.Send(data); err != nil {
		g.logf("gateway: send %s to %s: %v", eventType, p.User, err)
	}
}

func (g *Gateway) sendError(conn Conn, err error) {
	if conn == nil || err == nil {
		return
	}
	rerr, ok := err.(*ruleserr.Error)
	if !ok {
		rerr = ruleserr.Rules(ruleserr.CodeUnknownIntent, err.Error())
	}
	data, encErr := proto.EncodeError(proto.ErrorPayload{
		Kind:    string(rerr.Kind),
		Code:    rerr.Code,
		Message: rerr.Message,
	})
	if encErr != nil {
		return
	}
	_ = conn.Send(data)
}

func roomInfo(r *room.Room) proto.RoomInfo {
	info := proto.RoomInfo{RoomID: r.ID, Status: string(r.Status)}
	for _, p := range r.Players {
		info.Players = append(info.Players, proto.ParticipantInfo{
			DisplayName:  p.DisplayName,
			Ready:        p.Ready,
			Disconnected: p.Disconnected,
		})
	}
	return info
}

// broadcastRoomUpdate pushes a room-update event to every currently
// connected participant of r.
func (g *Gateway) broadcastRoomUpdate(r *room.Room) {
	info := roomInfo(r)
	for _, p := range r.Players {
		g.send(p, proto.EventRoomUpdate, info)
	}
}

// Dispatch decodes and routes a single inbound frame for session, sending
// any resulting error back to conn only (never disturbing the opponent),
// per spec.md §7's propagation rule.
func (g *Gateway) Dispatch(session *identity.Session, conn Conn, raw []byte) {
	intent, err := proto.DecodeClientIntent(raw)
	if err != nil {
		g.sendError(conn, ruleserr.Protocol(ruleserr.CodeMalformedPayload, "malformed payload"))
		return
	}
	if err := g.route(session, conn, intent); err != nil {
		g.sendError(conn, err)
	}
}

func (g *Gateway) route(session *identity.Session, conn Conn, in proto.ClientIntent) error {
	switch in.Type {
	case proto.IntentCreateRoom:
		return g.handleCreateRoom(session, conn, in)
	case proto.IntentJoinRoom:
		return g.handleJoinRoom(session, conn, in)
	case proto.IntentLeaveRoom:
		return g.handleLeaveRoom(session, conn)
	case proto.IntentSetReady:
		return g.handleSetReady(session, conn, in)
	case proto.IntentListRooms:
		return g.handleListRooms(conn)
	case proto.IntentRejoin:
		return g.handleRejoin(session, conn, in)
	case proto.IntentJoinQueue:
		return g.handleJoinQueue(session, in)
	case proto.IntentLeaveQueue:
		return g.handleLeaveQueue(session, conn)
	default:
		return g.handleGameIntent(session, in)
	}
}

func (g *Gateway) handleCreateRoom(session *identity.Session, conn Conn, in proto.ClientIntent) error {
	if session.RoomID != "" {
		return ruleserr.Rules(ruleserr.CodeRoomNotWaiting, "already in a room")
	}
	r := g.Rooms.Create(room.Participant{
		User:        session.User,
		DisplayName: in.DisplayName,
		DeckRef:     in.DeckRef,
		Conn:        conn,
	})
	session.RoomID = r.ID
	g.Identity.SetRoom(session.User, r.ID)
	g.send(r.Players[0], proto.EventRoomCreated, roomInfo(r))
	return nil
}

func (g *Gateway) handleJoinRoom(session *identity.Session, conn Conn, in proto.ClientIntent) error {
	if session.RoomID != "" {
		return ruleserr.Rules(ruleserr.CodeRoomNotWaiting, "already in a room")
	}
	r, err := g.Rooms.Join(in.RoomID, room.Participant{
		User:        session.User,
		DisplayName: in.DisplayName,
		DeckRef:     in.DeckRef,
		Conn:        conn,
	})
	if err != nil {
		return err
	}
	session.RoomID = r.ID
	g.Identity.SetRoom(session.User, r.ID)
	joiner, _ := r.Participant(session.User)
	g.send(joiner, proto.EventRoomJoined, roomInfo(r))
	if opp, ok := r.Opponent(session.User); ok {
		g.send(opp, proto.EventPlayerJoined, roomInfo(r))
	}
	return nil
}

func (g *Gateway) handleLeaveRoom(session *identity.Session, conn Conn) error {
	if session.RoomID == "" {
		return ruleserr.Rules(ruleserr.CodeRoomNotFound, "not in a room")
	}
	roomID := session.RoomID
	r, ok := g.Rooms.Lookup(roomID)
	var opp *room.Participant
	if ok {
		opp, _ = r.Opponent(session.User)
	}
	if _, err := g.Rooms.Leave(roomID, session.User); err != nil {
		return err
	}
	session.RoomID = ""
	g.Identity.SetRoom(session.User, "")
	if opp != nil {
		if r, ok := g.Rooms.Lookup(roomID); ok {
			g.send(opp, proto.EventPlayerLeft, roomInfo(r))
		} else {
			g.send(opp, proto.EventPlayerLeft, proto.RoomInfo{RoomID: roomID})
		}
	}
	return nil
}

func (g *Gateway) handleSetReady(session *identity.Session, conn Conn, in proto.ClientIntent) error {
	if session.RoomID == "" {
		return ruleserr.Rules(ruleserr.CodeRoomNotFound, "not in a room")
	}
	r, err := g.Rooms.SetReady(session.RoomID, session.User, in.Ready)
	if err != nil {
		return err
	}
	g.broadcastRoomUpdate(r)
	if r.Status == room.StatusStarting {
		return g.startMatch(r)
	}
	return nil
}

func (g *Gateway) handleListRooms(conn Conn) error {
	rooms := g.Rooms.List(true)
	list := make([]proto.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		list = append(list, roomInfo(r))
	}
	data, err := proto.Encode(proto.EventRoomList, struct {
		Rooms []proto.RoomInfo `json:"rooms"`
	}{Rooms: list})
	if err != nil {
		return err
	}
	return conn.Send(data)
}

func (g *Gateway) handleRejoin(session *identity.Session, conn Conn, in proto.ClientIntent) error {
	roomID := in.RoomID
	if roomID == "" {
		var ok bool
		roomID, ok = g.Rooms.RoomForUser(session.User)
		if !ok {
			return ruleserr.Authorization(ruleserr.CodeIdentityNotFound, "no room on record for this identity")
		}
	}
	r, err := g.Rooms.Reconnect(roomID, session.User, conn)
	if err != nil {
		return err
	}
	session.RoomID = roomID
	g.Identity.SetRoom(session.User, roomID)
	p, _ := r.Participant(session.User)
	seat := -1
	if a := g.lookupActor(roomID); a != nil {
		seat = a.Seat(session.User)
		var view duel.View
		_ = a.View(func(m *duel.Match) { view = m.ViewFor(seat) })
		g.send(p, proto.EventGameSync, view)
	} else {
		g.send(p, proto.EventRoomJoined, roomInfo(r))
	}
	if opp, ok := r.Opponent(session.User); ok {
		g.send(opp, proto.EventPlayerJoined, roomInfo(r))
	}
	return nil
}

func (g *Gateway) handleJoinQueue(session *identity.Session, in proto.ClientIntent) error {
	g.Queue.Enqueue(session.User, in.DisplayName, in.DeckRef)
	pair, ok := g.Queue.TryPair()
	if !ok {
		if sA, ok := g.Identity.Lookup(session.User); ok {
			conn, _ := sA.Conn.(Conn)
			g.waitingNotice(conn)
		}
		return nil
	}
	return g.pairFromQueue(pair)
}

func (g *Gateway) waitingNotice(conn Conn) {
	if conn == nil {
		return
	}
	data, err := proto.Encode(proto.EventMatchmakingWaiting, struct{}{})
	if err != nil {
		return
	}
	_ = conn.Send(data)
}

func (g *Gateway) pairFromQueue(pair matchmaking.Pair) error {
	connFor := func(entry matchmaking.Entry) Conn {
		s, ok := g.Identity.Lookup(entry.User)
		if !ok || s.Conn == nil {
			return nil
		}
		c, _ := s.Conn.(Conn)
		return c
	}
	r := g.Rooms.Create(room.Participant{
		User:        pair.A.User,
		DisplayName: pair.A.DisplayName,
		DeckRef:     pair.A.DeckRef,
		Conn:        connFor(pair.A),
	})
	if _, err := g.Rooms.Join(r.ID, room.Participant{
		User:        pair.B.User,
		DisplayName: pair.B.DisplayName,
		DeckRef:     pair.B.DeckRef,
		Conn:        connFor(pair.B),
	}); err != nil {
		g.Rooms.Remove(r.ID)
		return err
	}
	for _, entry := range []matchmaking.Entry{pair.A, pair.B} {
		if s, ok := g.Identity.Lookup(entry.User); ok {
			s.RoomID = r.ID
			g.Identity.SetRoom(entry.User, r.ID)
		}
		g.send(mustParticipant(r, entry.User), proto.EventMatchmakingFound, roomInfo(r))
	}
	r, err := g.Rooms.SetReady(r.ID, pair.A.User, true)
	if err != nil {
		return err
	}
	r, err = g.Rooms.SetReady(r.ID, pair.B.User, true)
	if err != nil {
		return err
	}
	return g.startMatch(r)
}

func mustParticipant(r *room.Room, user identity.UserID) *room.Participant {
	p, _ := r.Participant(user)
	return p
}

func (g *Gateway) handleLeaveQueue(session *identity.Session, conn Conn) error {
	if g.Queue.Leave(session.User) {
		data, err := proto.Encode(proto.EventMatchmakingLeft, struct{}{})
		if err == nil {
			_ = conn.Send(data)
		}
	}
	return nil
}

// startMatch fetches both decks and the card definitions they reference
// from the Catalog collaborator, builds the Match, starts its Actor, and
// pushes the initial per-view snapshots. A Catalog failure aborts the
// match with an error pushed to both players, per spec.md §5's suspension
// point and §7's collaborator-error handling.
func (g *Gateway) startMatch(r *room.Room) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if len(r.Players) != 2 {
		return ruleserr.Rules(ruleserr.CodeRoomNotWaiting, "room does not have two participants")
	}
	deckA, err := g.Catalog.GetDeck(ctx, r.Players[0].DeckRef)
	if err != nil {
		g.abortStart(r, err)
		return err
	}
	deckB, err := g.Catalog.GetDeck(ctx, r.Players[1].DeckRef)
	if err != nil {
		g.abortStart(r, err)
		return err
	}
	numbers := append([]string{deckA.LeaderCard, deckB.LeaderCard}, deckA.Cards...)
	numbers = append(numbers, deckB.Cards...)
	defs, err := g.Catalog.ListCards(ctx, numbers)
	if err != nil {
		g.abortStart(r, err)
		return err
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	match := duel.NewMatch(r.ID, g.Scripts, defs, *deckA, *deckB, rng)
	match.Events = g.Events
	match.Players[0].DisplayName = r.Players[0].DisplayName
	match.Players[1].DisplayName = r.Players[1].DisplayName

	seats := map[identity.UserID]int{
		r.Players[0].User: 0,
		r.Players[1].User: 1,
	}
	actor := duel.NewActor(match, seats)
	g.setActor(r.ID, actor)

	if _, err := g.Rooms.MarkPlaying(r.ID, actor); err != nil {
		actor.Close()
		g.dropActor(r.ID)
		return err
	}

	for _, p := range r.Players {
		seat := seats[p.User]
		var view duel.View
		_ = actor.View(func(m *duel.Match) { view = m.ViewFor(seat) })
		g.send(p, proto.EventGameStart, view)
	}
	return nil
}

func (g *Gateway) abortStart(r *room.Room, err error) {
	payload := proto.ErrorPayload{Kind: string(ruleserr.KindCollaborator), Code: ruleserr.CodeCatalogUnreachable, Message: "unable to start match: " + err.Error()}
	for _, p := range r.Players {
		g.send(p, proto.EventError, payload)
	}
}

// handleGameIntent dispatches every in-match intent (main-phase, battle,
// pending-effect, utility) to the room's Actor, then broadcasts the
// resulting per-view snapshots and any targeted prompts.
func (g *Gateway) handleGameIntent(session *identity.Session, in proto.ClientIntent) error {
	if session.RoomID == "" {
		return ruleserr.Rules(ruleserr.CodeRoomNotFound, "not in a room")
	}
	r, ok := g.Rooms.Lookup(session.RoomID)
	if !ok {
		return ruleserr.Rules(ruleserr.CodeRoomNotFound, "room not found")
	}
	a := g.lookupActor(session.RoomID)
	if a == nil {
		return ruleserr.Rules(ruleserr.CodePhaseMismatch, "match has not started")
	}
	seat := a.Seat(session.User)
	if seat < 0 {
		return ruleserr.Authorization(ruleserr.CodeWrongActor, "user is not seated in this match")
	}

	if in.Type == proto.IntentViewTopDeck {
		if err := g.handleViewTopDeck(r, a, seat); err != nil {
			g.handleActorError(r, a, err)
			return err
		}
		return nil
	}

	fn, err := gameIntentFunc(seat, in)
	if err != nil {
		return err
	}
	if err := a.Submit(fn); err != nil {
		g.handleActorError(r, a, err)
		return err
	}
	g.afterMutation(r, a)
	return nil
}

// handleActorError checks whether err reports that the Match actor was just
// aborted by a recovered panic and, if so, notifies both participants (not
// only the one whose intent triggered it) and tears the room down — per
// spec.md §7's fatal-error handling, the match is lost but every other room
// is unaffected. A plain errActorClosed (e.g. a late Submit racing a normal
// game-end teardown) is left to ordinary single-player error propagation.
func (g *Gateway) handleActorError(r *room.Room, a *duel.Actor, err error) {
	rerr, ok := err.(*ruleserr.Error)
	if !ok || rerr.Code != ruleserr.CodeMatchAborted {
		return
	}
	payload := proto.ErrorPayload{Kind: string(rerr.Kind), Code: rerr.Code, Message: "match aborted after an internal error"}
	for _, p := range r.Players {
		g.send(p, proto.EventError, payload)
	}
	a.Close()
	g.dropActor(r.ID)
	g.Rooms.Remove(r.ID)
}

// handleViewTopDeck is handled outside the generic gameIntentFunc dispatch
// because ViewTopDeck reports a revealed card list alongside its error, not
// just an error.
func (g *Gateway) handleViewTopDeck(r *room.Room, a *duel.Actor, seat int) error {
	var revealed []string
	var opErr error
	if err := a.Submit(func(m *duel.Match) error {
		revealed, opErr = m.ViewTopDeck(seat)
		return nil
	}); err != nil {
		return err
	}
	if opErr != nil {
		return opErr
	}
	for _, p := range r.Players {
		if a.Seat(p.User) == seat {
			g.send(p, proto.EventGameUpdate, struct {
				TopDeck []string `json:"topDeck"`
			}{TopDeck: revealed})
		}
	}
	return nil
}

// afterMutation pushes per-view game-update snapshots to both
// participants, any targeted pending-effect/trigger prompt, and — if the
// match just ended — a game-end event followed by marking the room
// finished and tearing down its actor.
func (g *Gateway) afterMutation(r *room.Room, a *duel.Actor) {
	var views [2]duel.View
	var winner *int
	_ = a.View(func(m *duel.Match) {
		views[0] = m.ViewFor(0)
		views[1] = m.ViewFor(1)
		winner = m.Winner
	})

	for _, p := range r.Players {
		seat := a.Seat(p.User)
		if seat < 0 {
			continue
		}
		view := views[seat]
		g.send(p, proto.EventGameUpdate, view)
		if view.PendingEffect != nil && view.PendingEffect.Owner == seat {
			g.send(p, proto.EventPendingEffect, *view.PendingEffect)
		}
		if view.PendingTrigger != nil && view.PendingTrigger.Owner == seat {
			g.send(p, proto.EventTriggerPrompt, *view.PendingTrigger)
		}
	}

	if winner != nil {
		g.finishIfOver(r, a)
	}
}

// finishIfOver marks the room finished and tears down its actor once the
// match has recorded a winner; broadcasts game-end to both participants
// first so the client learns the result even if the room is then swept.
func (g *Gateway) finishIfOver(r *room.Room, a *duel.Actor) {
	var winnerSeat *int
	var views [2]duel.View
	_ = a.View(func(m *duel.Match) {
		winnerSeat = m.Winner
		views[0] = m.ViewFor(0)
		views[1] = m.ViewFor(1)
	})
	if winnerSeat == nil {
		return
	}
	var winnerUser identity.UserID
	for _, p := range r.Players {
		if a.Seat(p.User) == *winnerSeat {
			winnerUser = p.User
		}
	}
	for _, p := range r.Players {
		seat := a.Seat(p.User)
		if seat < 0 {
			continue
		}
		g.send(p, proto.EventGameEnd, views[seat])
	}
	_, _ = g.Rooms.MarkFinished(r.ID, winnerUser)
	a.Close()
	g.dropActor(r.ID)
}

// Sweep deletes rooms older than the configured TTL, closing any actor
// still attached to them. Intended to run on a periodic ticker.
func (g *Gateway) Sweep() {
	before := make(map[string]bool)
	g.mu.Lock()
	for id := range g.actors {
		before[id] = true
	}
	g.mu.Unlock()

	g.Rooms.Sweep()

	g.mu.Lock()
	defer g.mu.Unlock()
	for id := range before {
		if _, ok := g.Rooms.Lookup(id); !ok {
			delete(g.actors, id)
		}
	}
}

// Shutdown drains every in-flight Match actor concurrently, fanning the
// close out across an errgroup so one actor blocked mid-job doesn't delay
// the rest — per SPEC_FULL.md §5's graceful-shutdown requirement. Intended
// to run once, after the HTTP listener has stopped accepting new
// connections, as part of process shutdown.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	actors := make(map[string]*duel.Actor, len(g.actors))
	for id, a := range g.actors {
		actors[id] = a
	}
	g.mu.Unlock()

	eg, _ := errgroup.WithContext(ctx)
	for id, a := range actors {
		id, a := id, a
		eg.Go(func() error {
			a.Close()
			g.dropActor(id)
			return nil
		})
	}
	return eg.Wait()
}
