// Package don publishes telemetry events for the DON economy: attach and
// per-turn refresh.
//
// Grounded on the teacher's logging/economy category package.
package don

import (
	"context"

	"duelserver/logging"
)

const (
	EventAttached logging.EventType = "don.attached"
	EventRefreshed logging.EventType = "don.refreshed"
)

type AttachedPayload struct {
	RoomID     string `json:"roomId"`
	Player     int    `json:"player"`
	InstanceID string `json:"instanceId"`
	Amount     int    `json:"amount"`
}

type RefreshedPayload struct {
	RoomID string `json:"roomId"`
	Player int    `json:"player"`
	Active int    `json:"active"`
}

// Attached publishes a DON-attach event.
func Attached(ctx context.Context, pub logging.Publisher, payload AttachedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttached,
		Actor:    logging.EntityRef{Kind: "room", ID: payload.RoomID},
		Severity: logging.SeverityDebug,
		Category: "don",
		Payload:  payload,
	})
}

// Refreshed publishes a Refresh-phase DON-untap event.
func Refreshed(ctx context.Context, pub logging.Publisher, payload RefreshedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRefreshed,
		Actor:    logging.EntityRef{Kind: "room", ID: payload.RoomID},
		Severity: logging.SeverityDebug,
		Category: "don",
		Payload:  payload,
	})
}
