// Package proto defines the websocket wire protocol between a duel client
// and the gateway: inbound player intents and outbound server events.
//
// Grounded on the teacher's flat-struct client message decoding
// (internal/net/proto's prior ClientMessage) and per-message Encode
// functions, generalized here from the movement/action vocabulary to the
// room/matchmaking/duel intent and event vocabulary.
package proto

import "encoding/json"

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Intent type identifiers, one per inbound operation a client may send.
const (
	IntentCreateRoom    = "create-room"
	IntentJoinRoom      = "join-room"
	IntentLeaveRoom     = "leave-room"
	IntentSetReady      = "set-ready"
	IntentListRooms     = "list-rooms"
	IntentRejoin        = "rejoin"
	IntentJoinQueue     = "join-queue"
	IntentLeaveQueue    = "leave-queue"

	IntentPlayCharacter = "play-character"
	IntentPlayEvent     = "play-event"
	IntentPlayStage     = "play-stage"
	IntentAttachDON     = "attach-don"
	IntentDetachDON     = "detach-don"
	IntentActivateMain  = "activate-main"
	IntentEndTurn       = "end-turn"

	IntentDeclareAttack        = "declare-attack"
	IntentDeclareBlocker       = "declare-blocker"
	IntentSkipBlocker          = "skip-blocker"
	IntentStageCounter         = "stage-counter"
	IntentUnstageCounter       = "unstage-counter"
	IntentConfirmCounter       = "confirm-counter"
	IntentAddManualCounterPower = "add-manual-counter-power"
	IntentSkipCounter          = "skip-counter"

	IntentResolvePendingEffect = "resolve-pending-effect"
	IntentSkipPendingEffect    = "skip-pending-effect"
	IntentRespondTrigger       = "respond-trigger"

	IntentKOTarget         = "ko-target"
	IntentBounceToHand     = "bounce-to-hand"
	IntentBounceToBottom   = "bounce-to-bottom"
	IntentPlayFromTrash    = "play-from-trash"
	IntentModifyPower      = "modify-power"
	IntentTrashFromHand    = "trash-from-hand"
	IntentRestTarget       = "rest-target"
	IntentActivateTarget   = "activate-target"
	IntentMoveDON          = "move-don"
	IntentLifeToHand       = "life-to-hand"
	IntentTrashToLife      = "trash-to-life"
	IntentViewTopDeck      = "view-top-deck"
)

// Event type identifiers, one per outbound notification the gateway may
// push to a client.
const (
	EventRoomCreated        = "room-created"
	EventRoomJoined         = "room-joined"
	EventRoomUpdate         = "room-update"
	EventRoomList           = "room-list"
	EventPlayerJoined       = "player-joined"
	EventPlayerLeft         = "player-left"
	EventMatchmakingWaiting = "matchmaking-waiting"
	EventMatchmakingFound   = "matchmaking-found"
	EventMatchmakingLeft    = "matchmaking-left"
	EventGameStart          = "game-start"
	EventGameUpdate         = "game-update"
	EventGameSync           = "game-sync"
	EventAttackDeclared     = "attack-declared"
	EventCounterStaged      = "counter-staged"
	EventPendingEffect      = "pending-effect-prompt"
	EventTriggerPrompt      = "trigger-prompt"
	EventGameEnd            = "game-end"
	EventError              = "error"
)

// ClientIntent captures an inbound websocket message from a client. Fields
// unused by a given Type are simply left zero; this mirrors the teacher's
// flat ClientMessage rather than a discriminated union, keeping decoding a
// single json.Unmarshal.
type ClientIntent struct {
	Ver  int    `json:"ver,omitempty"`
	Type string `json:"type"`

	RoomID      string `json:"roomId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	DeckRef     string `json:"deckRef,omitempty"`
	Ready       bool   `json:"ready,omitempty"`

	InstanceID string   `json:"instanceId,omitempty"`
	TargetID   string   `json:"targetId,omitempty"`
	Amount     int      `json:"amount,omitempty"`
	ToRested   bool     `json:"toRested,omitempty"`
	Selected   []string `json:"selected,omitempty"`
	Activate   bool     `json:"activate,omitempty"`
}

// DecodeClientIntent converts a raw websocket payload into a ClientIntent.
func DecodeClientIntent(payload []byte) (ClientIntent, error) {
	var msg ClientIntent
	return msg, json.Unmarshal(payload, &msg)
}

// ParticipantInfo renders one room participant for room snapshots.
type ParticipantInfo struct {
	DisplayName  string `json:"displayName"`
	Ready        bool   `json:"ready"`
	Disconnected bool   `json:"disconnected"`
}

// RoomInfo renders a room for room-created/room-joined/room-update/room-list
// events.
type RoomInfo struct {
	RoomID  string            `json:"roomId"`
	Status  string            `json:"status"`
	Players []ParticipantInfo `json:"players"`
}

type envelope struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
}

// Encode wraps any payload value into a typed envelope frame: the payload's
// fields are merged alongside "ver" and "type" via a two-pass marshal, so
// call sites only ever define a plain payload struct.
func Encode(eventType string, payload any) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payloadBytes, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = make(map[string]json.RawMessage)
	}
	verBytes, _ := json.Marshal(Version)
	typeBytes, _ := json.Marshal(eventType)
	fields["ver"] = verBytes
	fields["type"] = typeBytes
	return json.Marshal(fields)
}

// ErrorPayload renders a rejected intent back to its sender.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EncodeError renders an ErrorPayload as a typed error event frame.
func EncodeError(p ErrorPayload) ([]byte, error) {
	return Encode(EventError, p)
}
