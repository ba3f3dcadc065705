package duel

import (
	"context"

	"duelserver/internal/effectsrt"
	donlog "duelserver/logging/don"
	duellog "duelserver/logging/duel"
)

// setPhase updates m.Phase and emits a duel.phase_changed telemetry event.
func (m *Match) setPhase(p Phase) {
	m.Phase = p
	if m.Events == nil {
		return
	}
	duellog.PhaseChanged(context.Background(), m.Events, duellog.PhaseChangedPayload{
		RoomID: m.RoomID,
		Phase:  string(p),
		Turn:   m.TurnNumber,
		Player: m.CurrentPlayerIndex,
	})
}

// advancePhase runs the server-driven phases (refresh/draw/don) for the
// current player in order, stopping once Main is reached and ready to
// accept player intents. Called once at match start and again after End
// transfers the turn. Returns a non-nil error only on deck-out, at which
// point m.Winner is already set.
func (m *Match) advancePhase() error {
	m.runRefresh()
	m.setPhase(PhaseDraw)
	if err := m.runDraw(); err != nil {
		return err
	}
	m.setPhase(PhaseDON)
	m.runDON()
	m.setPhase(PhaseMain)
	return nil
}

func (m *Match) runRefresh() {
	m.setPhase(PhaseRefresh)
	ps := m.Players[m.CurrentPlayerIndex]

	ps.Leader.Rested = false
	for _, s := range ps.Characters {
		s.Rested = false
		s.CanAttackThisTurn = true
	}

	// Refresh moves attached-DON and rested-DON into don_active
	// simultaneously (spec.md §9 open question: this asymmetry with
	// attach-on-KO landing in don_rested is intentional and preserved).
	reclaimed := 0
	if ps.Leader.Instance != nil {
		reclaimed += ps.Leader.AttachedDON
		ps.Leader.AttachedDON = 0
	}
	for _, s := range ps.Characters {
		reclaimed += s.AttachedDON
		s.AttachedDON = 0
	}
	ps.DONActive += reclaimed + ps.DONRested
	ps.DONRested = 0

	if m.Events != nil {
		donlog.Refreshed(context.Background(), m.Events, donlog.RefreshedPayload{
			RoomID: m.RoomID,
			Player: m.CurrentPlayerIndex,
			Active: ps.DONActive,
		})
	}

	ps.TempPowerMods = make(map[string]int)
	ps.Scratchpad = make(map[string]bool)
	clearNonPersistentRestrictions(ps)

	m.expireEffects(effectsrt.ExpiryEndOfTurn)
	m.expireEffects(effectsrt.ExpiryNextTurnStart)
}

func clearNonPersistentRestrictions(ps *PlayerState) {
	ps.Restrictions = make(map[string]bool)
}

// runDraw draws one card for the current player, skipped only on the first
// player's turn 1. A draw from an empty deck is an immediate, terminal loss
// for the drawer.
func (m *Match) runDraw() error {
	if m.TurnNumber == 1 && m.CurrentPlayerIndex == 0 {
		return nil
	}
	if !m.drawOne(m.CurrentPlayerIndex) {
		loser := m.CurrentPlayerIndex
		winner := otherPlayer(loser)
		m.Winner = &winner
		return errDeckOut
	}
	return nil
}

// drawOne moves the top card of player's deck to their hand, reporting
// false if the deck was already empty.
func (m *Match) drawOne(player int) bool {
	ps := m.Players[player]
	if len(ps.Deck) == 0 {
		return false
	}
	last := len(ps.Deck) - 1
	card := ps.Deck[last]
	ps.Deck = ps.Deck[:last]
	ps.Hand = append(ps.Hand, card)
	return true
}

// runDON moves DON from the pool into don_active: 1 on turn 1 for the
// first player, 2 otherwise, clamped to the remaining DON supply.
func (m *Match) runDON() {
	ps := m.Players[m.CurrentPlayerIndex]
	amount := 2
	if m.TurnNumber == 1 && m.CurrentPlayerIndex == 0 {
		amount = 1
	}
	if amount > ps.DONDeck {
		amount = ps.DONDeck
	}
	ps.DONDeck -= amount
	ps.DONActive += amount
}

// runEnd invokes TURN_END, clears per-turn restrictions, expires
// end-of-turn active effects, and transfers the turn.
func (m *Match) runEnd() error {
	m.setPhase(PhaseEnd)
	owner := m.CurrentPlayerIndex
	turn := m.TurnNumber
	m.dispatchHook(effectsrt.TriggerTurnEnd, "", owner)
	clearNonPersistentRestrictions(m.Players[owner])
	m.expireEffects(effectsrt.ExpiryEndOfTurn)

	if m.Events != nil {
		duellog.TurnEnded(context.Background(), m.Events, duellog.TurnEndedPayload{
			RoomID: m.RoomID,
			Turn:   turn,
			Player: owner,
		})
	}

	m.CurrentPlayerIndex = otherPlayer(m.CurrentPlayerIndex)
	m.TurnNumber++
	return m.advancePhase()
}

// expireEffects applies the inverse of every ActiveEffect registered at
// scope, then removes them.
func (m *Match) expireEffects(scope effectsrt.ExpiryScope) {
	var remaining []ActiveEffect
	for _, eff := range m.ActiveEffects {
		if eff.Scope != scope {
			remaining = append(remaining, eff)
			continue
		}
		if eff.PowerDelta != 0 {
			owner := m.ownerOf(eff.InstanceID)
			if owner >= 0 {
				m.Players[owner].TempPowerMods[eff.InstanceID] -= eff.PowerDelta
			}
		}
		// Keyword grants recorded in ActiveEffects are not consulted by any
		// keyword check (hasDynamicKeyword in power.go has no callers), so
		// dropping the entry is all that expiry does for them.
	}
	m.ActiveEffects = remaining
}
