// Package ruleserr defines the typed error taxonomy shared by the duel
// rules engine, effect runtime, room registry, and gateway.
package ruleserr

import "fmt"

// Kind classifies an error into the taxonomy from the server's error
// handling design: protocol, authorization, rules, script, collaborator,
// and fatal errors are each handled differently by the gateway.
type Kind string

const (
	KindProtocol      Kind = "protocol"
	KindAuthorization Kind = "authorization"
	KindRules         Kind = "rules"
	KindScript        Kind = "script"
	KindCollaborator  Kind = "collaborator"
	KindFatal         Kind = "fatal"
)

// Error is the typed error value returned by engine operations. It never
// leaks internal state; Message is always safe to show to the offending
// client verbatim.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with no wrapped cause.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Wrap constructs an Error that wraps an underlying cause.
func Wrap(kind Kind, code, message string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Cause: cause}
}

// Protocol builds a protocol-kind error (unknown intent, malformed payload).
func Protocol(code, message string) *Error { return New(KindProtocol, code, message) }

// Authorization builds an authorization-kind error (wrong turn, wrong actor).
func Authorization(code, message string) *Error { return New(KindAuthorization, code, message) }

// Rules builds a rules-kind error (phase mismatch, insufficient resource, ...).
func Rules(code, message string) *Error { return New(KindRules, code, message) }

// Collaborator builds a collaborator-kind error (catalog unreachable, ...).
func Collaborator(code, message string, cause error) *Error {
	return Wrap(KindCollaborator, code, message, cause)
}

// Fatal builds a fatal-kind error representing a recovered panic.
func Fatal(code, message string, cause error) *Error {
	return Wrap(KindFatal, code, message, cause)
}

// Is reports whether err is a *Error of the given kind, for use with
// errors.Is-style call sites that only care about the taxonomy bucket.
func Is(err error, kind Kind) bool {
	re, ok := err.(*Error)
	return ok && re.Kind == kind
}

// Common rules-error codes referenced from multiple engine packages.
const (
	CodePhaseMismatch       = "phase_mismatch"
	CodeWrongActor          = "wrong_actor"
	CodeInsufficientDON     = "insufficient_don"
	CodeHandFull            = "hand_full"
	CodeZoneFull            = "zone_full"
	CodeCardNotInZone       = "card_not_in_zone"
	CodeInvalidTarget       = "invalid_target"
	CodeFirstTurnAttack     = "first_turn_attack"
	CodeRestrictionInForce  = "restriction_in_force"
	CodeInvalidSelection    = "invalid_selection"
	CodePendingOutstanding  = "pending_outstanding"
	CodeNoPendingEffect     = "no_pending_effect"
	CodeNotOptional         = "not_optional"
	CodeUnknownIntent       = "unknown_intent"
	CodeMalformedPayload    = "malformed_payload"
	CodeIdentityNotFound    = "identity_not_found"
	CodeRoomFull            = "room_full"
	CodeRoomNotFound        = "room_not_found"
	CodeRoomNotWaiting      = "room_not_waiting"
	CodeCatalogUnreachable  = "catalog_unreachable"
	CodeDeckOut             = "deck_out"
	CodeCharacterCapReached = "character_cap_reached"
	CodeActorClosed         = "actor_closed"
	CodeMatchAborted        = "match_aborted"
)
