package duel

import "duelserver/internal/ruleserr"

var (
	errWrongPhase       = ruleserr.Rules(ruleserr.CodePhaseMismatch, "action not allowed in the current phase")
	errWrongActor       = ruleserr.Authorization(ruleserr.CodeWrongActor, "it is not your turn")
	errWrongDefender    = ruleserr.Authorization(ruleserr.CodeWrongActor, "only the defender may act here")
	errInsufficientDON  = ruleserr.Rules(ruleserr.CodeInsufficientDON, "not enough DON available")
	errHandFull         = ruleserr.Rules(ruleserr.CodeHandFull, "hand operation invalid")
	errZoneFull         = ruleserr.Rules(ruleserr.CodeZoneFull, "zone is full")
	errCardNotInZone    = ruleserr.Rules(ruleserr.CodeCardNotInZone, "card is not in the expected zone")
	errInvalidTarget    = ruleserr.Rules(ruleserr.CodeInvalidTarget, "invalid target")
	errFirstTurnAttack  = ruleserr.Rules(ruleserr.CodeFirstTurnAttack, "no attacks before turn 3")
	errRestrictionInForce = ruleserr.Rules(ruleserr.CodeRestrictionInForce, "blocked by an active effect restriction")
	errInvalidSelection = ruleserr.Rules(ruleserr.CodeInvalidSelection, "selection does not match the candidate set")
	errPendingOutstanding = ruleserr.Rules(ruleserr.CodePendingOutstanding, "another pending interaction is already open")
	errNoPendingEffect  = ruleserr.Rules(ruleserr.CodeNoPendingEffect, "there is no pending effect to resolve")
	errNotOptional      = ruleserr.Rules(ruleserr.CodeNotOptional, "this pending effect cannot be skipped")
	errDeckOut          = ruleserr.Rules(ruleserr.CodeDeckOut, "deck is empty")
	errCharacterCap     = ruleserr.Rules(ruleserr.CodeCharacterCapReached, "five characters are already on the field")
	errActorClosed      = ruleserr.Fatal(ruleserr.CodeActorClosed, "match actor is no longer running", nil)
	errUnknownSeat      = ruleserr.Authorization(ruleserr.CodeWrongActor, "user is not seated in this match")
	errMatchAborted     = ruleserr.Fatal(ruleserr.CodeMatchAborted, "match aborted after an internal error", nil)
)
