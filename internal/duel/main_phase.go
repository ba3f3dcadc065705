package duel

import (
	"context"

	"duelserver/internal/catalog"
	"duelserver/internal/effectsrt"
	donlog "duelserver/logging/don"
)

// requireMainActor validates that the current phase accepts main-phase
// intents from player.
func (m *Match) requireMainActor(player int) error {
	if m.Phase != PhaseMain && m.Phase != PhaseBattle {
		return errWrongPhase
	}
	if player != m.CurrentPlayerIndex {
		return errWrongActor
	}
	return nil
}

// payCost spends amount DON for player, active first (each active DON spent
// moves to rested), rested only if active is insufficient. Reports false (no mutation) if the player cannot
// afford it — cost payment is all-or-nothing per spec.md §4.1.
func payCost(ps *PlayerState, amount int) bool {
	if ps.DONActive+ps.DONRested < amount {
		return false
	}
	fromActive := amount
	if fromActive > ps.DONActive {
		fromActive = ps.DONActive
	}
	ps.DONActive -= fromActive
	ps.DONRested += fromActive
	return true
}

// PlayCharacter plays a character card from hand.
func (m *Match) PlayCharacter(player int, instanceID string) error {
	if err := m.requireMainActor(player); err != nil {
		return err
	}
	ps := m.Players[player]
	if len(ps.Characters) >= 5 {
		return errCharacterCap
	}
	card, ok := findInHand(ps, instanceID)
	if !ok {
		return errCardNotInZone
	}
	def := m.Catalog[card.CardNumber]
	if def == nil || def.Category != "CHARACTER" {
		return errInvalidTarget
	}
	if !payCost(ps, def.Cost) {
		return errInsufficientDON
	}
	ps.Hand, _ = removeInstance(ps.Hand, instanceID)
	rush := hasKeyword(def, "RUSH")
	ps.Characters = append(ps.Characters, &Slot{Instance: card, CanAttackThisTurn: rush})
	m.registerInstance(card.CardNumber, instanceID, player)
	m.dispatchHook(effectsrt.TriggerOnPlay, instanceID, player)
	return nil
}

// PlayEvent plays and immediately resolves an event card from hand.
func (m *Match) PlayEvent(player int, instanceID string) error {
	if err := m.requireMainActor(player); err != nil {
		return err
	}
	ps := m.Players[player]
	card, ok := findInHand(ps, instanceID)
	if !ok {
		return errCardNotInZone
	}
	def := m.Catalog[card.CardNumber]
	if def == nil || def.Category != "EVENT" {
		return errInvalidTarget
	}
	if !payCost(ps, def.Cost) {
		return errInsufficientDON
	}
	ps.Hand, _ = removeInstance(ps.Hand, instanceID)
	ps.Trash = append(ps.Trash, card)
	m.registerInstance(card.CardNumber, instanceID, player)
	m.dispatchHook(effectsrt.TriggerOnPlay, instanceID, player)
	m.unregisterInstance(instanceID)
	return nil
}

// PlayStage plays a stage card, sending any existing stage to trash.
func (m *Match) PlayStage(player int, instanceID string) error {
	if err := m.requireMainActor(player); err != nil {
		return err
	}
	ps := m.Players[player]
	card, ok := findInHand(ps, instanceID)
	if !ok {
		return errCardNotInZone
	}
	def := m.Catalog[card.CardNumber]
	if def == nil || def.Category != "STAGE" {
		return errInvalidTarget
	}
	if !payCost(ps, def.Cost) {
		return errInsufficientDON
	}
	ps.Hand, _ = removeInstance(ps.Hand, instanceID)
	if ps.Stage != nil && ps.Stage.Instance != nil {
		ps.Trash = append(ps.Trash, ps.Stage.Instance)
		m.unregisterInstance(ps.Stage.Instance.InstanceID)
	}
	ps.Stage = &Slot{Instance: card}
	m.registerInstance(card.CardNumber, instanceID, player)
	m.dispatchHook(effectsrt.TriggerOnPlay, instanceID, player)
	return nil
}

// AttachDONIntent transfers amount DON from the player's pool (rested
// first, then active — reversed from main-phase cost payment, per spec.md
// §4.1's tie-break rule) to the target slot. Named distinctly from the
// script-facing AttachDON (env.go), which operates on a bare instance id
// with no actor/phase validation.
func (m *Match) AttachDONIntent(player int, targetInstance string, amount int) error {
	if err := m.requireMainActor(player); err != nil {
		return err
	}
	ps := m.Players[player]
	slot, owner, ok := m.findSlot(targetInstance)
	if !ok || owner != player {
		return errInvalidTarget
	}
	if ps.DONActive+ps.DONRested < amount {
		return errInsufficientDON
	}
	fromRested := amount
	if fromRested > ps.DONRested {
		fromRested = ps.DONRested
	}
	ps.DONRested -= fromRested
	ps.DONActive -= amount - fromRested
	slot.AttachedDON += amount
	if m.Events != nil {
		donlog.Attached(context.Background(), m.Events, donlog.AttachedPayload{
			RoomID:     m.RoomID,
			Player:     player,
			InstanceID: targetInstance,
			Amount:     amount,
		})
	}
	return nil
}

// DetachDON is the inverse of AttachDON: DON returns to don_active.
func (m *Match) DetachDON(player int, targetInstance string, amount int) error {
	if err := m.requireMainActor(player); err != nil {
		return err
	}
	slot, owner, ok := m.findSlot(targetInstance)
	if !ok || owner != player {
		return errInvalidTarget
	}
	if slot.AttachedDON < amount {
		return errInsufficientDON
	}
	slot.AttachedDON -= amount
	m.Players[player].DONActive += amount
	return nil
}

// ActivateMain runs a card's ACTIVATE_MAIN script; the script itself
// enforces any once-per-turn condition.
func (m *Match) ActivateMain(player int, instanceID string) error {
	if err := m.requireMainActor(player); err != nil {
		return err
	}
	if owner := m.ownerOf(instanceID); owner != player {
		return errInvalidTarget
	}
	m.dispatchHook(effectsrt.TriggerActivateMain, instanceID, player)
	return nil
}

// EndTurn runs the End phase and transfers the turn. It is rejected with
// errWrongPhase while an attack is still being resolved.
func (m *Match) EndTurn(player int) error {
	if player != m.CurrentPlayerIndex {
		return errWrongActor
	}
	if m.BattleStep != BattleStepNone {
		return errWrongPhase
	}
	return m.runEnd()
}

func findInHand(ps *PlayerState, instanceID string) (*CardInstance, bool) {
	for _, c := range ps.Hand {
		if c.InstanceID == instanceID {
			return c, true
		}
	}
	return nil, false
}

func hasKeyword(def *catalog.CardDefinition, keyword string) bool {
	for _, k := range def.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}
