package duel

import (
	"context"

	"duelserver/internal/effectsrt"
	scriptlog "duelserver/logging/script"
)

// openSuspension converts an effectsrt.Suspension into the Match's single
// outstanding PendingEffect slot. A nil suspension is a no-op. Per the
// single-slot invariant, this only ever replaces a nil PendingEffect: every
// caller site that can suspend only runs while no other prompt is open.
func (m *Match) openSuspension(susp *effectsrt.Suspension, owner int) {
	if susp == nil {
		return
	}
	kind, ok := pendingKindFor(susp.Kind)
	if !ok {
		return
	}
	m.PendingEffect = &PendingEffect{
		Kind:           kind,
		Owner:          owner,
		Candidates:     susp.Candidates,
		MinSelect:      susp.MinSelect,
		MaxSelect:      susp.MaxSelect,
		Optional:       susp.Optional,
		Message:        susp.Message,
		Continuation:   susp.Continuation,
		SourceInstance: susp.SourceInstance,
		ActingPlayer:   owner,
	}
	if m.Events != nil {
		scriptlog.PendingOpened(context.Background(), m.Events, scriptlog.PendingPayload{
			RoomID: m.RoomID,
			Owner:  owner,
			Kind:   string(kind),
		})
	}
}

func pendingKindFor(k effectsrt.ActionKind) (PendingEffectKind, bool) {
	switch k {
	case effectsrt.ActionPendingSelectTarget, effectsrt.ActionPendingKOTarget:
		return PendingSelectTarget, true
	case effectsrt.ActionPendingAttachDON:
		return PendingAttachDON, true
	case effectsrt.ActionPendingSearch:
		return PendingSearchAndSelectToHand, true
	case effectsrt.ActionPendingSearchPlay:
		return PendingSearchAndPlay, true
	case effectsrt.ActionPendingPlayFromHand:
		return PendingPlayFromHand, true
	case effectsrt.ActionPendingDiscard, effectsrt.ActionPendingDiscardEvent:
		return PendingDiscardFromHand, true
	case effectsrt.ActionPendingRecoverFromTrash:
		return PendingRecoverFromTrash, true
	default:
		return "", false
	}
}

// validateSelection checks that selected is a subset of pe's candidates of
// legal size, per spec.md §4.3's pending-effect resolution contract.
func (pe *PendingEffect) validateSelection(selected []string) error {
	if len(selected) < pe.MinSelect {
		return errInvalidSelection
	}
	max := pe.MaxSelect
	if max <= 0 {
		max = len(pe.Candidates)
	}
	if len(selected) > max {
		return errInvalidSelection
	}
	candidateSet := make(map[string]bool, len(pe.Candidates))
	for _, c := range pe.Candidates {
		candidateSet[c] = true
	}
	seen := make(map[string]bool, len(selected))
	for _, s := range selected {
		if !candidateSet[s] || seen[s] {
			return errInvalidSelection
		}
		seen[s] = true
	}
	return nil
}

// ResolvePendingEffect answers the single outstanding PendingEffect with
// selected, binds it as SELECTED for the script's continuation, and
// resumes execution — which may itself open a further PendingEffect.
func (m *Match) ResolvePendingEffect(player int, selected []string) error {
	pe := m.PendingEffect
	if pe == nil {
		return errNoPendingEffect
	}
	if player != pe.Owner {
		return errWrongActor
	}
	if err := pe.validateSelection(selected); err != nil {
		return err
	}

	switch pe.Kind {
	case PendingSearchAndSelectToHand:
		m.resolveSearchToHand(pe.Owner, selected, pe.Candidates)
	case PendingSearchAndPlay:
		m.resolveSearchAndPlay(pe.Owner, selected)
	case PendingDiscardFromHand:
		m.resolveDiscardFromHand(pe.Owner, selected)
	case PendingRecoverFromTrash:
		m.resolveRecoverFromTrash(pe.Owner, selected)
	case PendingAttachDON:
		// The continuation (typically ATTACH_DON targeting SELECTED) does
		// the actual DON transfer; nothing to do here but bind SELECTED.
	case PendingPlayFromHand:
		m.resolvePlayFromHand(pe.Owner, selected)
	}

	m.PendingEffect = nil
	if m.Events != nil {
		scriptlog.PendingResolved(context.Background(), m.Events, scriptlog.PendingPayload{
			RoomID: m.RoomID,
			Owner:  pe.Owner,
			Kind:   string(pe.Kind),
		})
	}
	m.targetBinding.selected = selected
	susp, _ := effectsrt.ExecuteActions(m, playerKey(pe.ActingPlayer), pe.SourceInstance, pe.Continuation)
	m.openSuspension(susp, pe.ActingPlayer)
	return nil
}

// SkipPendingEffect declines the single outstanding PendingEffect. Only
// legal when it was marked optional.
func (m *Match) SkipPendingEffect(player int) error {
	pe := m.PendingEffect
	if pe == nil {
		return errNoPendingEffect
	}
	if player != pe.Owner {
		return errWrongActor
	}
	if !pe.Optional {
		return errNotOptional
	}
	m.PendingEffect = nil
	if m.Events != nil {
		scriptlog.PendingResolved(context.Background(), m.Events, scriptlog.PendingPayload{
			RoomID: m.RoomID,
			Owner:  pe.Owner,
			Kind:   string(pe.Kind),
		})
	}
	return nil
}

// resolveSearchToHand moves the selected candidates from deck to hand and
// the remainder of the viewed window to the bottom of the deck, in the
// order the candidates were originally presented.
func (m *Match) resolveSearchToHand(owner int, selected, viewed []string) {
	ps := m.Players[owner]
	selectedSet := make(map[string]bool, len(selected))
	for _, id := range selected {
		selectedSet[id] = true
	}
	var toHand, toBottom []*CardInstance
	remaining := make([]*CardInstance, 0, len(ps.Deck))
	lookup := make(map[string]*CardInstance, len(viewed))
	for _, c := range ps.Deck {
		if contains(viewed, c.InstanceID) {
			lookup[c.InstanceID] = c
			continue
		}
		remaining = append(remaining, c)
	}
	for _, id := range viewed {
		c := lookup[id]
		if c == nil {
			continue
		}
		if selectedSet[id] {
			toHand = append(toHand, c)
		} else {
			toBottom = append(toBottom, c)
		}
	}
	ps.Deck = remaining
	ps.Hand = append(ps.Hand, toHand...)
	// Bottom of the deck is index 0; prepend in the given order.
	ps.Deck = append(append([]*CardInstance(nil), toBottom...), ps.Deck...)
}

// resolveSearchAndPlay puts the single selected instance from the deck
// directly onto the field as a character, bypassing hand and cost payment.
func (m *Match) resolveSearchAndPlay(owner int, selected []string) {
	if len(selected) == 0 {
		return
	}
	ps := m.Players[owner]
	id := selected[0]
	rest, card := removeInstance(ps.Deck, id)
	if card == nil {
		return
	}
	ps.Deck = rest
	if len(ps.Characters) >= 5 {
		ps.Trash = append(ps.Trash, card)
		return
	}
	ps.Characters = append(ps.Characters, &Slot{Instance: card})
	m.registerInstance(card.CardNumber, id, owner)
	m.dispatchHook(effectsrt.TriggerOnPlay, id, owner)
}

func (m *Match) resolveDiscardFromHand(owner int, selected []string) {
	ps := m.Players[owner]
	for _, id := range selected {
		rest, card := removeInstance(ps.Hand, id)
		ps.Hand = rest
		if card != nil {
			ps.Trash = append(ps.Trash, card)
		}
	}
}

func (m *Match) resolveRecoverFromTrash(owner int, selected []string) {
	ps := m.Players[owner]
	for _, id := range selected {
		rest, card := removeInstance(ps.Trash, id)
		ps.Trash = rest
		if card != nil {
			ps.Hand = append(ps.Hand, card)
		}
	}
}

// resolvePlayFromHand plays the selected hand card for free (no cost, no
// phase restriction) as a character, the shape every printed
// PENDING_PLAY_FROM_HAND effect needs.
func (m *Match) resolvePlayFromHand(owner int, selected []string) {
	if len(selected) == 0 {
		return
	}
	ps := m.Players[owner]
	id := selected[0]
	card, ok := findInHand(ps, id)
	if !ok {
		return
	}
	def := m.Catalog[card.CardNumber]
	if def == nil || def.Category != "CHARACTER" || len(ps.Characters) >= 5 {
		return
	}
	ps.Hand, _ = removeInstance(ps.Hand, id)
	ps.Characters = append(ps.Characters, &Slot{Instance: card})
	m.registerInstance(card.CardNumber, id, owner)
	m.dispatchHook(effectsrt.TriggerOnPlay, id, owner)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
