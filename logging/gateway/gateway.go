// Package gateway publishes telemetry events for the Session Gateway:
// connects, disconnects, and rejected intents.
//
// Grounded on the teacher's logging/network category package (connection
// lifecycle telemetry).
package gateway

import (
	"context"

	"duelserver/logging"
)

const (
	EventConnected    logging.EventType = "gateway.connected"
	EventDisconnected logging.EventType = "gateway.disconnected"
	EventIntentRejected logging.EventType = "gateway.intent_rejected"
)

type ConnectionPayload struct {
	UserID string `json:"userId"`
}

type IntentRejectedPayload struct {
	UserID string `json:"userId"`
	Intent string `json:"intent"`
	Code   string `json:"code"`
}

// Connected publishes a new-session-bound event.
func Connected(ctx context.Context, pub logging.Publisher, userID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventConnected,
		Actor:    logging.EntityRef{Kind: "user", ID: userID},
		Severity: logging.SeverityInfo,
		Category: "gateway",
		Payload:  ConnectionPayload{UserID: userID},
	})
}

// Disconnected publishes a session-torn-down event.
func Disconnected(ctx context.Context, pub logging.Publisher, userID string) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDisconnected,
		Actor:    logging.EntityRef{Kind: "user", ID: userID},
		Severity: logging.SeverityInfo,
		Category: "gateway",
		Payload:  ConnectionPayload{UserID: userID},
	})
}

// IntentRejected publishes a rejected client intent, for observability into
// client/server protocol drift.
func IntentRejected(ctx context.Context, pub logging.Publisher, payload IntentRejectedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventIntentRejected,
		Actor:    logging.EntityRef{Kind: "user", ID: payload.UserID},
		Severity: logging.SeverityWarn,
		Category: "gateway",
		Payload:  payload,
	})
}
