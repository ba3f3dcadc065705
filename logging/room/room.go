// Package room publishes telemetry events for room and matchmaking
// lifecycle: creation, join, forfeit, and teardown.
//
// Grounded on the teacher's logging/lifecycle category package (spawn/
// despawn events for world entities), generalized here to room lifecycle.
package room

import (
	"context"

	"duelserver/logging"
)

const (
	EventCreated  logging.EventType = "room.created"
	EventJoined   logging.EventType = "room.joined"
	EventForfeit  logging.EventType = "room.forfeit"
	EventFinished logging.EventType = "room.finished"
)

type RoomPayload struct {
	RoomID string `json:"roomId"`
}

type ForfeitPayload struct {
	RoomID string `json:"roomId"`
	Loser  string `json:"loser"`
}

// Created publishes a room-creation event.
func Created(ctx context.Context, pub logging.Publisher, roomID string) {
	publish(ctx, pub, EventCreated, roomID, RoomPayload{RoomID: roomID})
}

// Joined publishes a room-join event.
func Joined(ctx context.Context, pub logging.Publisher, roomID string) {
	publish(ctx, pub, EventJoined, roomID, RoomPayload{RoomID: roomID})
}

// Forfeit publishes a forfeit-by-disconnect-timeout event.
func Forfeit(ctx context.Context, pub logging.Publisher, roomID, loser string) {
	publish(ctx, pub, EventForfeit, roomID, ForfeitPayload{RoomID: roomID, Loser: loser})
}

// Finished publishes a room-finished (match-over) event.
func Finished(ctx context.Context, pub logging.Publisher, roomID string) {
	publish(ctx, pub, EventFinished, roomID, RoomPayload{RoomID: roomID})
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, roomID string, payload any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Actor:    logging.EntityRef{Kind: "room", ID: roomID},
		Severity: logging.SeverityInfo,
		Category: "room",
		Payload:  payload,
	})
}
