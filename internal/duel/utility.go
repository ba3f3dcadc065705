package duel

import "duelserver/internal/effectsrt"

// This file implements spec.md §4.1's utility operations: semi-manual
// moves used both by scripted effect continuations and by permissive
// manual player controls. Each validates ownership, zone membership, and
// any relevant restriction flag before mutating state.

// KOTarget sends a player's own field instance to trash, running its
// ON_KO hook first, exactly as combat resolution does.
func (m *Match) KOTarget(player int, instanceID string) error {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || owner != player || slot.Instance == nil {
		return errInvalidTarget
	}
	m.koCharacterFromCombat(instanceID)
	return nil
}

// BounceFieldToHand returns a player's own field character to hand. Named
// distinctly from the Env interface's BounceToHand(instanceID), which it
// wraps with an ownership check for direct player-initiated use.
func (m *Match) BounceFieldToHand(player int, instanceID string) error {
	_, owner, ok := m.findSlot(instanceID)
	if !ok || owner != player {
		return errInvalidTarget
	}
	m.bounceToHandInstance(instanceID)
	return nil
}

func (m *Match) bounceToHandInstance(instanceID string) {
	m.BounceToHand(instanceID)
}

// BounceToBottom returns a player's own field character to the bottom of
// their deck.
func (m *Match) BounceToBottom(player int, instanceID string) error {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || owner != player || slot.Instance == nil {
		return errInvalidTarget
	}
	ps := m.Players[owner]
	inst := slot.Instance
	ps.DONRested += slot.AttachedDON
	ps.Characters, _ = removeCharacterSlot(ps.Characters, instanceID)
	delete(ps.TempPowerMods, instanceID)
	m.unregisterInstance(instanceID)
	ps.Deck = append([]*CardInstance{inst}, ps.Deck...)
	return nil
}

// PlayFromTrash plays a character directly from a player's own trash onto
// the field for free, mirroring REVIVE_SELF's field-entry shape.
func (m *Match) PlayFromTrash(player int, instanceID string) error {
	ps := m.Players[player]
	rest, card := removeInstance(ps.Trash, instanceID)
	if card == nil {
		return errCardNotInZone
	}
	if len(ps.Characters) >= 5 {
		ps.Trash = rest
		ps.Trash = append(ps.Trash, card)
		return errCharacterCap
	}
	ps.Trash = rest
	ps.Characters = append(ps.Characters, &Slot{Instance: card})
	m.registerInstance(card.CardNumber, instanceID, player)
	m.dispatchHook(effectsrt.TriggerOnPlay, instanceID, player)
	return nil
}

// TrashFromHand discards a player's own hand card to trash.
func (m *Match) TrashFromHand(player int, instanceID string) error {
	ps := m.Players[player]
	rest, card := removeInstance(ps.Hand, instanceID)
	if card == nil {
		return errCardNotInZone
	}
	ps.Hand = rest
	ps.Trash = append(ps.Trash, card)
	return nil
}

// RestTarget rests a player's own field instance.
func (m *Match) RestTarget(player int, instanceID string) error {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || owner != player {
		return errInvalidTarget
	}
	slot.Rested = true
	return nil
}

// ActivateTarget un-rests a player's own field instance.
func (m *Match) ActivateTarget(player int, instanceID string) error {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || owner != player {
		return errInvalidTarget
	}
	slot.Rested = false
	return nil
}

// MoveDON moves amount DON between a player's own active and rested pools.
// toRested selects the direction.
func (m *Match) MoveDON(player int, amount int, toRested bool) error {
	if player < 0 || player > 1 || amount <= 0 {
		return errInvalidTarget
	}
	ps := m.Players[player]
	if toRested {
		if ps.DONActive < amount {
			return errInsufficientDON
		}
		ps.DONActive -= amount
		ps.DONRested += amount
	} else {
		if ps.DONRested < amount {
			return errInsufficientDON
		}
		ps.DONRested -= amount
		ps.DONActive += amount
	}
	return nil
}

// ModifyPowerManual applies a manual, permanent-for-the-turn power delta to
// a player's own field instance, recorded like any scripted power mod so it
// participates in counter-stage reversal bookkeeping if issued mid-stage.
func (m *Match) ModifyPowerManual(player int, instanceID string, delta int) error {
	_, owner, ok := m.findSlot(instanceID)
	if !ok || owner != player {
		return errInvalidTarget
	}
	m.ModifyPower(instanceID, delta, effectsrt.ExpiryEndOfTurn)
	return nil
}

// ViewTopDeck returns the candidate instance ids of the open search-kind
// PendingEffect, legal only while the player owns that prompt — the
// client-facing read behind a resolve-search prompt.
func (m *Match) ViewTopDeck(player int) ([]string, error) {
	pe := m.PendingEffect
	if pe == nil || pe.Owner != player {
		return nil, errNoPendingEffect
	}
	if pe.Kind != PendingSearchAndSelectToHand && pe.Kind != PendingSearchAndPlay {
		return nil, errInvalidSelection
	}
	return append([]string(nil), pe.Candidates...), nil
}

// LifeToHandManual moves count cards from a player's own Life to hand,
// respecting a cannot-life-to-hand-this-turn restriction.
func (m *Match) LifeToHandManual(player int, count int) error {
	if player < 0 || player > 1 {
		return errInvalidTarget
	}
	if m.Players[player].Restrictions["cannot-life-to-hand-this-turn"] {
		return errRestrictionInForce
	}
	m.LifeToHand(playerKey(player), count)
	return nil
}

// TrashToLife moves a player's own trash card onto the bottom of their Life
// pile face-down, restoring a Life point.
func (m *Match) TrashToLife(player int, instanceID string) error {
	ps := m.Players[player]
	rest, card := removeInstance(ps.Trash, instanceID)
	if card == nil {
		return errCardNotInZone
	}
	ps.Trash = rest
	ps.Life = append([]*CardInstance{card}, ps.Life...)
	return nil
}
