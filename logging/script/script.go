// Package script publishes telemetry events for the Effect Runtime: hook
// dispatch and pending-interaction open/close.
//
// Grounded on the teacher's logging/status_effects category package
// (scripted, delayed-effect telemetry).
package script

import (
	"context"

	"duelserver/logging"
)

const (
	EventHookDispatched   logging.EventType = "script.hook_dispatched"
	EventPendingOpened    logging.EventType = "script.pending_opened"
	EventPendingResolved  logging.EventType = "script.pending_resolved"
)

type HookDispatchedPayload struct {
	RoomID     string `json:"roomId"`
	CardNumber string `json:"cardNumber"`
	Trigger    string `json:"trigger"`
}

type PendingPayload struct {
	RoomID string `json:"roomId"`
	Owner  int    `json:"owner"`
	Kind   string `json:"kind"`
}

// HookDispatched publishes a script hook invocation.
func HookDispatched(ctx context.Context, pub logging.Publisher, payload HookDispatchedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventHookDispatched,
		Actor:    logging.EntityRef{Kind: "room", ID: payload.RoomID},
		Severity: logging.SeverityDebug,
		Category: "script",
		Payload:  payload,
	})
}

// PendingOpened publishes a newly-opened pending interaction.
func PendingOpened(ctx context.Context, pub logging.Publisher, payload PendingPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPendingOpened,
		Actor:    logging.EntityRef{Kind: "room", ID: payload.RoomID},
		Severity: logging.SeverityInfo,
		Category: "script",
		Payload:  payload,
	})
}

// PendingResolved publishes a closed pending interaction.
func PendingResolved(ctx context.Context, pub logging.Publisher, payload PendingPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPendingResolved,
		Actor:    logging.EntityRef{Kind: "room", ID: payload.RoomID},
		Severity: logging.SeverityInfo,
		Category: "script",
		Payload:  payload,
	})
}
