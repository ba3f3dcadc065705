package duel

import (
	"context"

	"duelserver/internal/effectsrt"
	duellog "duelserver/logging/duel"
)

// DeclareAttack begins the Attack Resolution Machine. attackerInstance is
// empty to mean the Leader. Declaring an attack while still in Main
// implicitly advances to Battle, per spec.md §9's preserved source
// behavior.
func (m *Match) DeclareAttack(player int, attackerInstance, targetInstance string) error {
	if player != m.CurrentPlayerIndex {
		return errWrongActor
	}
	if m.Phase != PhaseMain && m.Phase != PhaseBattle {
		return errWrongPhase
	}
	if m.TurnNumber <= 2 {
		return errFirstTurnAttack
	}
	if m.BattleStep != BattleStepNone {
		return errWrongPhase
	}

	ps := m.Players[player]
	attackerSlot, err := m.attackSourceSlot(ps, attackerInstance)
	if err != nil {
		return err
	}
	if attackerSlot.Rested {
		return errInvalidTarget
	}
	if attackerInstance != "" && !attackerSlot.CanAttackThisTurn {
		return errInvalidTarget
	}

	defender := otherPlayer(player)
	dps := m.Players[defender]
	targetSlot, err := m.attackTargetSlot(dps, targetInstance)
	if err != nil {
		return err
	}
	if targetInstance != "" && !targetSlot.Rested {
		return errInvalidTarget
	}

	m.setPhase(PhaseBattle)
	attackerSlot.Rested = true

	attackerID := attackerInstance
	if attackerID == "" {
		attackerID = ps.Leader.Instance.InstanceID
	}
	targetID := targetInstance

	m.PendingAttack = &PendingAttack{
		AttackerPlayer:   player,
		AttackerInstance: attackerInstance,
		TargetPlayer:     defender,
		TargetInstance:   targetInstance,
		AttackerPower:    m.computePower(attackerID),
	}
	if attackerDef := m.Catalog[attackerSlot.Instance.CardNumber]; attackerDef != nil {
		m.PendingAttack.Banish = hasKeyword(attackerDef, "BANISH")
		m.PendingAttack.DoubleAttack = hasKeyword(attackerDef, "DOUBLE_ATTACK")
	}
	if targetID != "" {
		m.PendingAttack.TargetPower = m.computePower(targetID)
	} else {
		m.PendingAttack.TargetPower = m.leaderPower(defender)
	}

	m.targetBinding = resolutionContext{attacker: attackerID, target: targetID}
	m.dispatchHook(effectsrt.TriggerOnAttack, attackerID, player)

	if m.hasActiveBlocker(dps) && !m.PendingAttack.IgnoreBlocker {
		m.BattleStep = BattleStepBlock
	} else {
		m.BattleStep = BattleStepCounter
	}
	return nil
}

func (m *Match) attackSourceSlot(ps *PlayerState, instanceID string) (*Slot, error) {
	if instanceID == "" {
		if ps.Leader.Instance == nil {
			return nil, errInvalidTarget
		}
		return &ps.Leader, nil
	}
	for _, s := range ps.Characters {
		if s.Instance != nil && s.Instance.InstanceID == instanceID {
			return s, nil
		}
	}
	return nil, errInvalidTarget
}

func (m *Match) attackTargetSlot(ps *PlayerState, instanceID string) (*Slot, error) {
	if instanceID == "" {
		if ps.Leader.Instance == nil {
			return nil, errInvalidTarget
		}
		return &ps.Leader, nil
	}
	for _, s := range ps.Characters {
		if s.Instance != nil && s.Instance.InstanceID == instanceID {
			return s, nil
		}
	}
	return nil, errInvalidTarget
}

func (m *Match) hasActiveBlocker(ps *PlayerState) bool {
	for _, s := range ps.Characters {
		if s.Rested || s.Instance == nil {
			continue
		}
		def := m.Catalog[s.Instance.CardNumber]
		if def != nil && hasKeyword(def, "BLOCKER") {
			return true
		}
	}
	return false
}

func (m *Match) leaderPower(player int) int {
	if m.Players[player].Leader.Instance == nil {
		return 0
	}
	return m.computePower(m.Players[player].Leader.Instance.InstanceID)
}

// DeclareBlocker redirects the pending attack's target to blockerInstance,
// an active defending Character with the Blocker keyword.
func (m *Match) DeclareBlocker(player int, blockerInstance string) error {
	if err := m.requireDefenderDuringStep(player, BattleStepBlock); err != nil {
		return err
	}
	dps := m.Players[m.PendingAttack.TargetPlayer]
	slot, err := m.attackTargetSlot(dps, blockerInstance)
	if err != nil || blockerInstance == "" {
		return errInvalidTarget
	}
	def := m.Catalog[slot.Instance.CardNumber]
	if slot.Rested || def == nil || !hasKeyword(def, "BLOCKER") {
		return errInvalidTarget
	}
	slot.Rested = true
	m.PendingAttack.BlockerInstance = blockerInstance
	m.PendingAttack.TargetPower = m.computePower(blockerInstance)
	m.targetBinding.target = blockerInstance
	m.BattleStep = BattleStepCounter
	return nil
}

// SkipBlocker advances straight to the Counter step without redirecting.
func (m *Match) SkipBlocker(player int) error {
	if err := m.requireDefenderDuringStep(player, BattleStepBlock); err != nil {
		return err
	}
	m.BattleStep = BattleStepCounter
	return nil
}

func (m *Match) requireDefenderDuringStep(player int, step BattleStep) error {
	if m.PendingAttack == nil || m.BattleStep != step {
		return errWrongPhase
	}
	if player != m.PendingAttack.TargetPlayer {
		return errWrongDefender
	}
	return nil
}

// recordStagedPowerDelta records a MODIFY_POWER delta into the
// currently-staging StagedCounterEntry, if one is in progress. This is the
// tracking-window mechanism spec.md §9 describes for exact unstage
// reversal.
func (m *Match) recordStagedPowerDelta(instanceID string, delta int) {
	if m.BattleStep != BattleStepCounter || len(m.StagedCounters) == 0 {
		return
	}
	entry := &m.StagedCounters[len(m.StagedCounters)-1]
	if entry.PowerDeltas == nil {
		entry.PowerDeltas = make(map[string]int)
	}
	entry.PowerDeltas[instanceID] += delta
	if t := m.ResolveTargets("", effectsrt.Target{Kind: effectsrt.TargetBattleTarget}); len(t) == 1 && t[0] == instanceID {
		m.applyCounterPower(delta)
	}
}

// StageCounter stages a single counter card from the defender's hand:
// pays its cost, runs its COUNTER script (if any), and accumulates both
// its printed counter value and any scripted power deltas applied to the
// battle target into the defender's target power.
func (m *Match) StageCounter(player int, cardInstanceID string) error {
	if err := m.requireDefenderDuringStep(player, BattleStepCounter); err != nil {
		return err
	}
	ps := m.Players[player]
	card, ok := findInHand(ps, cardInstanceID)
	if !ok {
		return errCardNotInZone
	}
	def := m.Catalog[card.CardNumber]
	if def == nil {
		return errInvalidTarget
	}
	activeBefore := ps.DONActive
	if !payCost(ps, def.Cost) {
		return errInsufficientDON
	}

	ps.Hand, _ = removeInstance(ps.Hand, cardInstanceID)
	entry := StagedCounterEntry{CardInstanceID: cardInstanceID, Card: card, DONSpent: activeBefore - ps.DONActive, PowerDeltas: make(map[string]int)}
	m.StagedCounters = append(m.StagedCounters, entry)

	if def.Counter != 0 {
		m.applyCounterPower(def.Counter)
	}

	m.registerInstance(card.CardNumber, cardInstanceID, player)
	susp, _ := effectsrt.RunHook(m, m.Registry, card.CardNumber, playerKey(player), cardInstanceID, effectsrt.TriggerCounter)
	m.openSuspension(susp, player)
	if m.PendingEffect == nil {
		// Not retained for a SELECT_TARGET continuation; the script already
		// ran to completion so the registration can be dropped again.
		m.unregisterInstance(cardInstanceID)
	}
	return nil
}

func (m *Match) applyCounterPower(delta int) {
	m.PendingAttack.TargetPower += delta
	m.PendingCounterPower += delta
	if len(m.StagedCounters) > 0 {
		m.StagedCounters[len(m.StagedCounters)-1].ManualDelta += delta
	}
}

// UnstageCounter perfectly reverses the staged counter for cardInstanceID:
// refunds its DON cost, reverses every power delta it recorded, and
// returns the card to hand.
func (m *Match) UnstageCounter(player int, cardInstanceID string) error {
	if err := m.requireDefenderDuringStep(player, BattleStepCounter); err != nil {
		return err
	}
	idx := -1
	for i, e := range m.StagedCounters {
		if e.CardInstanceID == cardInstanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errInvalidTarget
	}
	entry := m.StagedCounters[idx]
	ps := m.Players[player]

	ps.DONRested -= entry.DONSpent
	ps.DONActive += entry.DONSpent
	for instanceID, delta := range entry.PowerDeltas {
		if owner := m.ownerOf(instanceID); owner >= 0 {
			m.Players[owner].TempPowerMods[instanceID] -= delta
		}
	}
	m.PendingAttack.TargetPower -= entry.ManualDelta
	m.PendingCounterPower -= entry.ManualDelta

	if entry.Card != nil {
		ps.Hand = append(ps.Hand, entry.Card)
		m.unregisterInstance(cardInstanceID)
	}
	m.StagedCounters = append(m.StagedCounters[:idx], m.StagedCounters[idx+1:]...)
	return nil
}

// AddManualCounterPower adds a manual power bonus not tied to any card,
// recorded as its own zero-card staged entry so skip-counter can reverse
// it symmetrically.
func (m *Match) AddManualCounterPower(player, amount int) error {
	if err := m.requireDefenderDuringStep(player, BattleStepCounter); err != nil {
		return err
	}
	m.StagedCounters = append(m.StagedCounters, StagedCounterEntry{ManualDelta: amount, PowerDeltas: make(map[string]int)})
	m.applyCounterPower(amount)
	return nil
}

// ConfirmCounter moves every staged counter card to trash and advances to
// the Damage step.
func (m *Match) ConfirmCounter(player int) error {
	if err := m.requireDefenderDuringStep(player, BattleStepCounter); err != nil {
		return err
	}
	ps := m.Players[player]
	for _, entry := range m.StagedCounters {
		if entry.Card != nil {
			ps.Trash = append(ps.Trash, entry.Card)
			m.unregisterInstance(entry.CardInstanceID)
		}
	}
	m.StagedCounters = nil
	return m.resolveDamage()
}

// SkipCounter reverses every still-staged effect (as if each were
// unstaged) and advances to Damage.
func (m *Match) SkipCounter(player int) error {
	if err := m.requireDefenderDuringStep(player, BattleStepCounter); err != nil {
		return err
	}
	for len(m.StagedCounters) > 0 {
		last := m.StagedCounters[len(m.StagedCounters)-1]
		if last.Card == nil {
			ps := m.Players[player]
			for instanceID, delta := range last.PowerDeltas {
				ps.TempPowerMods[instanceID] -= delta
			}
			m.PendingAttack.TargetPower -= last.ManualDelta
			m.PendingCounterPower -= last.ManualDelta
			m.StagedCounters = m.StagedCounters[:len(m.StagedCounters)-1]
			continue
		}
		if err := m.UnstageCounter(player, last.CardInstanceID); err != nil {
			return err
		}
	}
	return m.resolveDamage()
}

// resolveDamage compares powers and applies the outcome, per spec.md §4.2.
func (m *Match) resolveDamage() error {
	m.BattleStep = BattleStepDamage
	pa := m.PendingAttack
	attacker := pa.AttackerPlayer
	defender := pa.TargetPlayer

	damage := 0
	targetID := pa.TargetInstance
	if pa.BlockerInstance != "" {
		targetID = pa.BlockerInstance
	}
	if pa.AttackerPower >= pa.TargetPower {
		damage = pa.AttackerPower - pa.TargetPower
		if targetID == "" {
			if err := m.damageLeader(attacker, defender, pa.DoubleAttack, pa.Banish); err != nil {
				m.endBattle()
				return err
			}
		} else {
			m.koCharacterFromCombat(targetID)
		}
	}
	m.emitAttackResolved(pa, attacker, defender, targetID, damage)
	m.endBattle()
	return nil
}

func (m *Match) emitAttackResolved(pa *PendingAttack, attacker, defender int, targetID string, damage int) {
	if m.Events == nil {
		return
	}
	duellog.AttackResolved(context.Background(), m.Events, duellog.AttackResolvedPayload{
		RoomID:           m.RoomID,
		AttackerPlayer:   attacker,
		AttackerInstance: pa.AttackerInstance,
		TargetPlayer:     defender,
		TargetInstance:   targetID,
		Damage:           damage,
	})
}

func (m *Match) damageLeader(attacker, defender int, doubleAttack, banish bool) error {
	hits := 1
	if doubleAttack {
		hits = 2
	}
	dps := m.Players[defender]
	for i := 0; i < hits; i++ {
		if len(dps.Life) == 0 {
			winner := attacker
			m.Winner = &winner
			return nil
		}
		last := len(dps.Life) - 1
		card := dps.Life[last]
		dps.Life = dps.Life[:last]
		if m.Events != nil {
			duellog.LifeLost(context.Background(), m.Events, duellog.LifeLostPayload{
				RoomID: m.RoomID,
				Player: defender,
				Cards:  1,
			})
		}

		script, hasScript := m.Registry.Lookup(card.CardNumber)
		_, hasTrigger := script.Hooks[effectsrt.TriggerTrigger]
		if hasScript && hasTrigger {
			m.PendingTrigger = &PendingTrigger{Owner: defender, CardNumber: card.CardNumber, InstanceID: card.InstanceID}
			dps.Trash = append(dps.Trash, card) // tentative; RespondTrigger may move it to hand instead
			return nil
		}
		if banish {
			dps.RemovedFromGame = append(dps.RemovedFromGame, card)
		} else {
			dps.Hand = append(dps.Hand, card)
		}
	}
	return nil
}

func (m *Match) koCharacterFromCombat(instanceID string) {
	m.dispatchHook(effectsrt.TriggerOnKO, instanceID, m.ownerOf(instanceID))
	m.koCharacter(instanceID)
}

func (m *Match) koCharacter(instanceID string) {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || slot.Instance == nil {
		return
	}
	inst := slot.Instance
	ps := m.Players[owner]
	ps.DONRested += slot.AttachedDON
	ps.Characters, _ = removeCharacterSlot(ps.Characters, instanceID)
	ps.Trash = append(ps.Trash, inst)
	delete(ps.TempPowerMods, instanceID)
	m.unregisterInstance(instanceID)
}

func (m *Match) endBattle() {
	m.expireEffects(effectsrt.ExpiryEndOfBattle)
	m.PendingAttack = nil
	m.StagedCounters = nil
	m.PendingCounterPower = 0
	m.BattleStep = BattleStepNone
	m.targetBinding = resolutionContext{}
}

// RespondTrigger resolves an open PendingTrigger: activate runs the
// script (card ends in trash) or decline moves the card to the defender's
// hand instead.
func (m *Match) RespondTrigger(player int, activate bool) error {
	if m.PendingTrigger == nil {
		return errNoPendingEffect
	}
	if player != m.PendingTrigger.Owner {
		return errWrongDefender
	}
	pt := m.PendingTrigger
	ps := m.Players[player]
	m.PendingTrigger = nil

	if activate {
		susp, _ := effectsrt.RunHook(m, m.Registry, pt.CardNumber, playerKey(player), pt.InstanceID, effectsrt.TriggerTrigger)
		m.openSuspension(susp, player)
		return nil
	}
	var card *CardInstance
	ps.Trash, card = removeInstance(ps.Trash, pt.InstanceID)
	if card != nil {
		ps.Hand = append(ps.Hand, card)
	}
	return nil
}
