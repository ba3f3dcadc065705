// Package duel publishes telemetry events for the Rules Engine: phase
// transitions, turn boundaries, and combat resolution.
//
// Grounded on the teacher's logging/combat category package (one typed
// event constant + payload struct + publish function per occurrence kind).
package duel

import (
	"context"

	"duelserver/logging"
)

const (
	EventPhaseChanged logging.EventType = "duel.phase_changed"
	EventTurnEnded    logging.EventType = "duel.turn_ended"
	EventAttackResolved logging.EventType = "duel.attack_resolved"
	EventLifeLost     logging.EventType = "duel.life_lost"
	EventMatchAborted logging.EventType = "duel.match_aborted"
)

type PhaseChangedPayload struct {
	RoomID string `json:"roomId"`
	Phase  string `json:"phase"`
	Turn   int    `json:"turn"`
	Player int    `json:"player"`
}

type AttackResolvedPayload struct {
	RoomID           string `json:"roomId"`
	AttackerPlayer   int    `json:"attackerPlayer"`
	AttackerInstance string `json:"attackerInstance,omitempty"`
	TargetPlayer     int    `json:"targetPlayer"`
	TargetInstance   string `json:"targetInstance,omitempty"`
	Damage           int    `json:"damage"`
}

type LifeLostPayload struct {
	RoomID string `json:"roomId"`
	Player int    `json:"player"`
	Cards  int    `json:"cards"`
}

type TurnEndedPayload struct {
	RoomID string `json:"roomId"`
	Turn   int    `json:"turn"`
	Player int    `json:"player"`
}

type MatchAbortedPayload struct {
	RoomID string `json:"roomId"`
	Reason string `json:"reason"`
}

func entity(roomID string) logging.EntityRef {
	return logging.EntityRef{Kind: "room", ID: roomID}
}

// PhaseChanged publishes a phase-transition event.
func PhaseChanged(ctx context.Context, pub logging.Publisher, payload PhaseChangedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPhaseChanged,
		Actor:    entity(payload.RoomID),
		Severity: logging.SeverityInfo,
		Category: "duel",
		Payload:  payload,
	})
}

// AttackResolved publishes a completed combat resolution.
func AttackResolved(ctx context.Context, pub logging.Publisher, payload AttackResolvedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttackResolved,
		Actor:    entity(payload.RoomID),
		Severity: logging.SeverityInfo,
		Category: "duel",
		Payload:  payload,
	})
}

// TurnEnded publishes an End-phase turn transfer.
func TurnEnded(ctx context.Context, pub logging.Publisher, payload TurnEndedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTurnEnded,
		Actor:    entity(payload.RoomID),
		Severity: logging.SeverityInfo,
		Category: "duel",
		Payload:  payload,
	})
}

// MatchAborted publishes a Match actor's recovery from a panic, per
// spec.md §7's fatal-error handling: the Match is torn down but the process
// and every other room survive.
func MatchAborted(ctx context.Context, pub logging.Publisher, payload MatchAbortedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventMatchAborted,
		Actor:    entity(payload.RoomID),
		Severity: logging.SeverityError,
		Category: "duel",
		Payload:  payload,
	})
}

// LifeLost publishes a Life-zone damage event.
func LifeLost(ctx context.Context, pub logging.Publisher, payload LifeLostPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventLifeLost,
		Actor:    entity(payload.RoomID),
		Severity: logging.SeverityWarn,
		Category: "duel",
		Payload:  payload,
	})
}
