package duel

import (
	"math/rand"
	"testing"

	"duelserver/internal/catalog"
	"duelserver/internal/effectsrt"

	"github.com/stretchr/testify/require"
)

// --- fixture catalog -------------------------------------------------

const (
	cardLeaderA     = "OP01-001" // power 5000, life 4
	cardLeaderB     = "OP01-002" // power 5000, life 4
	cardVanilla     = "OP02-010" // cost 1, power 3000, no keyword
	cardRush        = "OP02-011" // cost 0, power 1000, RUSH
	cardBlocker     = "OP02-012" // cost 2, power 3000, BLOCKER
	cardCounterCard = "OP02-013" // cost 0 event, printed counter 2000
	cardOnKO        = "OP02-014" // character with ON_KO: pending select target, -2000 power
	cardTrigger     = "OP02-015" // life card with TRIGGER script: draw 1
	cardScriptCtr   = "OP02-016" // event with COUNTER script: pending select target, +2000
	cardBanish      = "OP02-017" // cost 0, power 9000, BANISH
	cardDoubleAtk   = "OP02-018" // cost 0, power 9000, DOUBLE_ATTACK
)

func fixtureDefs() map[string]*catalog.CardDefinition {
	return map[string]*catalog.CardDefinition{
		cardLeaderA: {CardNumber: cardLeaderA, Category: "LEADER", Power: 5000, Life: 4},
		cardLeaderB: {CardNumber: cardLeaderB, Category: "LEADER", Power: 5000, Life: 4},
		cardVanilla: {CardNumber: cardVanilla, Category: "CHARACTER", Cost: 1, Power: 3000},
		cardRush:    {CardNumber: cardRush, Category: "CHARACTER", Cost: 0, Power: 1000, Keywords: []string{"RUSH"}},
		cardBlocker: {CardNumber: cardBlocker, Category: "CHARACTER", Cost: 2, Power: 3000, Keywords: []string{"BLOCKER"}},
		cardCounterCard: {CardNumber: cardCounterCard, Category: "EVENT", Cost: 0, Counter: 2000},
		cardOnKO:    {CardNumber: cardOnKO, Category: "CHARACTER", Cost: 1, Power: 1000},
		cardTrigger: {CardNumber: cardTrigger, Category: "CHARACTER", Cost: 1, Power: 1000},
		cardScriptCtr: {CardNumber: cardScriptCtr, Category: "EVENT", Cost: 0},
		cardBanish:    {CardNumber: cardBanish, Category: "CHARACTER", Cost: 0, Power: 9000, Keywords: []string{"BANISH"}},
		cardDoubleAtk: {CardNumber: cardDoubleAtk, Category: "CHARACTER", Cost: 0, Power: 9000, Keywords: []string{"DOUBLE_ATTACK"}},
	}
}

func fixtureRegistry() *effectsrt.Registry {
	reg := effectsrt.NewRegistry()
	reg.Load(effectsrt.ScriptDefinition{
		CardNumber: cardOnKO,
		Hooks: map[effectsrt.TriggerType]effectsrt.Hook{
			effectsrt.TriggerOnKO: {
				Actions: []effectsrt.Action{{
					Kind:      effectsrt.ActionPendingSelectTarget,
					Filter:    effectsrt.CandidateFilter{Zone: effectsrt.ZoneOpponentField},
					MinSelect: 1,
					MaxSelect: 1,
					Message:   "choose a unit to weaken",
					Then: []effectsrt.Action{{
						Kind:   effectsrt.ActionModifyPower,
						Target: effectsrt.Target{Kind: effectsrt.TargetSelected},
						Amount: -2000,
						Expiry: effectsrt.ExpiryEndOfTurn,
					}},
				}},
			},
		},
	})
	reg.Load(effectsrt.ScriptDefinition{
		CardNumber: cardTrigger,
		Hooks: map[effectsrt.TriggerType]effectsrt.Hook{
			effectsrt.TriggerTrigger: {
				Actions: []effectsrt.Action{{Kind: effectsrt.ActionDrawCards, Amount: 1}},
			},
		},
	})
	reg.Load(effectsrt.ScriptDefinition{
		CardNumber: cardScriptCtr,
		Hooks: map[effectsrt.TriggerType]effectsrt.Hook{
			effectsrt.TriggerCounter: {
				Actions: []effectsrt.Action{{
					Kind:      effectsrt.ActionPendingSelectTarget,
					Filter:    effectsrt.CandidateFilter{Zone: effectsrt.ZoneOwnField},
					MinSelect: 1,
					MaxSelect: 1,
					Then: []effectsrt.Action{{
						Kind:   effectsrt.ActionModifyPower,
						Target: effectsrt.Target{Kind: effectsrt.TargetSelected},
						Amount: 2000,
					}},
				}},
			},
		},
	})
	return reg
}

// deckOf builds a DeckList with n copies of filler plus the given leader.
func deckOf(leader, filler string, n int) catalog.DeckList {
	cards := make([]string, n)
	for i := range cards {
		cards[i] = filler
	}
	return catalog.DeckList{LeaderCard: leader, Cards: cards}
}

func newTestMatch(t *testing.T) *Match {
	t.Helper()
	defs := fixtureDefs()
	reg := fixtureRegistry()
	rng := rand.New(rand.NewSource(1))
	a := deckOf(cardLeaderA, cardVanilla, 20)
	b := deckOf(cardLeaderB, cardVanilla, 20)
	return NewMatch("ROOM1", reg, defs, a, b, rng)
}

// advanceToTurn runs EndTurn until TurnNumber reaches target (server-driven
// phases only; no characters are played along the way).
func advanceToTurn(t *testing.T, m *Match, target int) {
	t.Helper()
	for m.TurnNumber < target {
		require.NoError(t, m.EndTurn(m.CurrentPlayerIndex))
	}
}

// --- setup / turn structure ------------------------------------------

func TestNewMatchTurnOneSkipsDrawGrantsOneDON(t *testing.T) {
	m := newTestMatch(t)
	require.Equal(t, PhaseMain, m.Phase)
	require.Equal(t, 1, m.TurnNumber)
	require.Equal(t, 0, m.CurrentPlayerIndex)
	require.Len(t, m.Players[0].Hand, 5, "no extra draw on turn 1 for player 0")
	require.Equal(t, 1, m.Players[0].DONActive, "turn 1 grants only 1 DON to the first player")
}

func TestEndTurnDrawsAndGrantsTwoDON(t *testing.T) {
	m := newTestMatch(t)
	require.NoError(t, m.EndTurn(0))
	require.Equal(t, 2, m.TurnNumber)
	require.Equal(t, 1, m.CurrentPlayerIndex)
	require.Len(t, m.Players[1].Hand, 6, "player 1's turn 2 draws one card")
	require.Equal(t, 2, m.Players[1].DONActive)
}

func TestCurrentPlayerFlipsExactlyOncePerEndPhase(t *testing.T) {
	m := newTestMatch(t)
	require.NoError(t, m.EndTurn(0))
	require.Equal(t, 1, m.CurrentPlayerIndex)
	require.NoError(t, m.EndTurn(1))
	require.Equal(t, 0, m.CurrentPlayerIndex)
}

func TestDeckOutIsImmediateLossForDrawer(t *testing.T) {
	m := newTestMatch(t)
	m.Players[1].Deck = nil
	err := m.EndTurn(0)
	require.Error(t, err)
	require.NotNil(t, m.Winner)
	require.Equal(t, 0, *m.Winner)
}

func TestRefreshAttachRestAsymmetry(t *testing.T) {
	m := newTestMatch(t)
	require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	slot := m.Players[0].Characters[0]
	require.NoError(t, m.AttachDONIntent(0, slot.Instance.InstanceID, 1))
	require.Equal(t, 1, slot.AttachedDON)

	// KO'ing mid-turn returns attached DON to don_rested, not don_active.
	m.koCharacter(slot.Instance.InstanceID)
	require.Equal(t, 1, m.Players[0].DONRested)

	// Simulate an attach surviving to refresh instead: attach then refresh
	// moves both rested and attached DON into active simultaneously.
	m2 := newTestMatch(t)
	require.NoError(t, m2.PlayCharacter(0, m2.Players[0].Hand[0].InstanceID))
	slot2 := m2.Players[0].Characters[0]
	require.NoError(t, m2.AttachDONIntent(0, slot2.Instance.InstanceID, 1))
	advanceToTurn(t, m2, 3) // cycles back to player 0's next turn
	require.Equal(t, 0, slot2.AttachedDON, "refresh reclaims attached DON")
}

// --- main phase --------------------------------------------------------

func TestPlayCharacterValidatesCostHandAndCap(t *testing.T) {
	m := newTestMatch(t)
	handCard := m.Players[0].Hand[0]

	// Insufficient DON: drain active pool first.
	m.Players[0].DONActive = 0
	err := m.PlayCharacter(0, handCard.InstanceID)
	require.ErrorIs(t, err, errInsufficientDON)

	m.Players[0].DONActive = 1
	require.NoError(t, m.PlayCharacter(0, handCard.InstanceID))
	require.Len(t, m.Players[0].Characters, 1)
	require.Equal(t, 0, m.Players[0].DONActive)
	require.Equal(t, 1, m.Players[0].DONRested)

	// Unknown instance id.
	require.Error(t, m.PlayCharacter(0, "not-a-real-id"))

	// Character cap: top up hand with enough filler cards to reach 5 on
	// field plus one to spare for the over-cap attempt.
	m.Players[0].DONActive = 10
	for i := 0; i < 10; i++ {
		m.Players[0].Hand = append(m.Players[0].Hand, &CardInstance{InstanceID: uuidLike(i), CardNumber: cardVanilla})
	}
	for len(m.Players[0].Characters) < 5 {
		require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	}
	err = m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID)
	require.ErrorIs(t, err, errCharacterCap)
}

func TestPlayCharacterRushGrantsImmediateAttackEligibility(t *testing.T) {
	m := newTestMatch(t)
	rushCard := &CardInstance{InstanceID: "rush-1", CardNumber: cardRush}
	m.Players[0].Hand = append(m.Players[0].Hand, rushCard)

	require.NoError(t, m.PlayCharacter(0, rushCard.InstanceID))
	require.True(t, m.Players[0].Characters[len(m.Players[0].Characters)-1].CanAttackThisTurn)
}

func uuidLike(n int) string {
	return "filler-" + string(rune('a'+n))
}

// placeCharacter puts a character directly onto player's field, as if it
// had survived from an earlier turn (bypassing the main-phase play intent,
// which only the current player may issue). Registers the instance with
// the Effect Runtime exactly as PlayCharacter would.
func placeCharacter(m *Match, player int, instanceID, cardNumber string, rested bool) *Slot {
	inst := &CardInstance{InstanceID: instanceID, CardNumber: cardNumber, Owner: player}
	slot := &Slot{Instance: inst, Rested: rested}
	m.Players[player].Characters = append(m.Players[player].Characters, slot)
	m.registerInstance(cardNumber, instanceID, player)
	return slot
}

func TestAttachDetachDONRoundTrip(t *testing.T) {
	m := newTestMatch(t)
	require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	slot := m.Players[0].Characters[0]
	before := m.Players[0].DONActive + m.Players[0].DONRested

	require.NoError(t, m.AttachDONIntent(0, slot.Instance.InstanceID, 1))
	require.NoError(t, m.DetachDON(0, slot.Instance.InstanceID, 1))

	require.Equal(t, 0, slot.AttachedDON)
	require.Equal(t, before, m.Players[0].DONActive+m.Players[0].DONRested)
}

// --- invariant helper ---------------------------------------------------

// totalInstances counts every instance a player owns across every zone,
// per spec.md §8 invariant 1.
func totalInstances(ps *PlayerState) int {
	n := 0
	if ps.Leader.Instance != nil {
		n++
	}
	n += len(ps.Characters)
	if ps.Stage != nil && ps.Stage.Instance != nil {
		n++
	}
	n += len(ps.Deck) + len(ps.Hand) + len(ps.Trash) + len(ps.Life) + len(ps.RemovedFromGame)
	return n
}

func donTotal(ps *PlayerState) int {
	attached := ps.Leader.AttachedDON
	for _, s := range ps.Characters {
		attached += s.AttachedDON
	}
	return ps.DONDeck + ps.DONActive + ps.DONRested + attached
}

func TestCardInstanceCountIsConservedAcrossZoneMoves(t *testing.T) {
	m := newTestMatch(t)
	before := totalInstances(m.Players[0])

	require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	require.Equal(t, before, totalInstances(m.Players[0]), "hand to field is a zone move, not a creation")

	slot := m.Players[0].Characters[0]
	require.NoError(t, m.BounceToBottom(0, slot.Instance.InstanceID))
	require.Equal(t, before, totalInstances(m.Players[0]), "field to deck bottom is a zone move, not a creation")
}

func TestDONSupplyInvariantHoldsAcrossPlayAndAttach(t *testing.T) {
	m := newTestMatch(t)
	require.Equal(t, FixedDONSupply, donTotal(m.Players[0]))
	require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	require.Equal(t, FixedDONSupply, donTotal(m.Players[0]))
	slot := m.Players[0].Characters[0]
	require.NoError(t, m.AttachDONIntent(0, slot.Instance.InstanceID, 1))
	require.Equal(t, FixedDONSupply, donTotal(m.Players[0]))
}

// --- attack resolution machine ------------------------------------------

// TestFirstTurnAttackRejected is spec.md §8 scenario 1.
func TestFirstTurnAttackRejected(t *testing.T) {
	m := newTestMatch(t)
	rushCard := &CardInstance{InstanceID: "rush-1", CardNumber: cardRush}
	m.Players[0].Hand = append(m.Players[0].Hand, rushCard)
	require.NoError(t, m.PlayCharacter(0, rushCard.InstanceID))

	err := m.DeclareAttack(0, rushCard.InstanceID, "")
	require.ErrorIs(t, err, errFirstTurnAttack)
	require.Nil(t, m.PendingAttack)
}

func bringToTurn(t *testing.T, m *Match, turn int) {
	t.Helper()
	advanceToTurn(t, m, turn)
}

// TestLeaderVsLeaderDamageWithLifeRevealIntoHand is spec.md §8 scenario 2.
func TestLeaderVsLeaderDamageWithLifeRevealIntoHand(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)
	require.Equal(t, 0, m.CurrentPlayerIndex)

	defenderLifeBefore := len(m.Players[1].Life)
	defenderHandBefore := len(m.Players[1].Hand)

	require.NoError(t, m.DeclareAttack(0, "", ""))
	require.Equal(t, BattleStepCounter, m.BattleStep, "no blocker on the field yet")
	require.NoError(t, m.SkipCounter(1))

	require.Nil(t, m.PendingAttack)
	require.Equal(t, BattleStepNone, m.BattleStep)
	require.Equal(t, defenderLifeBefore-1, len(m.Players[1].Life))
	require.Equal(t, defenderHandBefore+1, len(m.Players[1].Hand))
}

// TestBlockerRedirectsAndCounterReversesDecision is spec.md §8 scenario 3.
func TestBlockerRedirectsAndCounterReversesDecision(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)

	// Give the defender (player 1) a Blocker on the field (placed directly,
	// as if played on an earlier turn — only the current player may issue
	// a main-phase play intent) and a counter event card in hand.
	m.Players[1].DONActive = 10
	blockerSlot := placeCharacter(m, 1, "blocker-1", cardBlocker, false)
	counterCard := &CardInstance{InstanceID: "counter-1", CardNumber: cardCounterCard}
	m.Players[1].Hand = append(m.Players[1].Hand, counterCard)

	// Boost attacker to 6000 power via manual temp mod for a deterministic
	// scenario (leader base power is 5000).
	m.Players[0].TempPowerMods[m.Players[0].Leader.Instance.InstanceID] = 1000

	require.NoError(t, m.DeclareAttack(0, "", ""))
	require.Equal(t, BattleStepBlock, m.BattleStep)
	require.Equal(t, 6000, m.PendingAttack.AttackerPower)

	require.NoError(t, m.DeclareBlocker(1, blockerSlot.Instance.InstanceID))
	require.Equal(t, BattleStepCounter, m.BattleStep)
	require.True(t, blockerSlot.Rested)
	require.Equal(t, 3000, m.PendingAttack.TargetPower)

	require.NoError(t, m.StageCounter(1, counterCard.InstanceID))
	require.Equal(t, 5000, m.PendingAttack.TargetPower)
	require.NoError(t, m.AddManualCounterPower(1, 2000))
	require.Equal(t, 7000, m.PendingAttack.TargetPower)

	require.NoError(t, m.ConfirmCounter(1))
	require.Equal(t, BattleStepNone, m.BattleStep)
	require.Empty(t, m.StagedCounters)
	require.Nil(t, m.PendingAttack)
	require.True(t, blockerSlot.Rested, "blocker stays rested: attack was blocked, no KO")
	found := false
	for _, c := range m.Players[1].Trash {
		if c.InstanceID == counterCard.InstanceID {
			found = true
		}
	}
	require.True(t, found, "confirmed counter card moves to trash")
}

// TestStageUnstagePerfectRollback is spec.md §8 scenario 4.
func TestStageUnstagePerfectRollback(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)

	m.Players[1].DONActive = 10
	defenderTarget := placeCharacter(m, 1, "weak-char", cardVanilla, false)

	scriptCard := &CardInstance{InstanceID: "script-ctr-1", CardNumber: cardScriptCtr}
	m.Players[1].Hand = append(m.Players[1].Hand, scriptCard)

	handBefore := len(m.Players[1].Hand)
	donBefore := m.Players[1].DONActive + m.Players[1].DONRested
	powerBefore := m.computePower(defenderTarget.Instance.InstanceID)

	require.NoError(t, m.DeclareAttack(0, "", ""))
	preStageTargetPower := m.PendingAttack.TargetPower

	require.NoError(t, m.StageCounter(1, scriptCard.InstanceID))
	// Script opened a SELECT_TARGET pending effect; resolve by selecting
	// the defender's own character, which gets +2000 recorded into the
	// staged entry's tracking window. That character is not the battle
	// target (the attack is on the leader), so the pending_attack power
	// snapshot stays put; this exercises MODIFY_POWER + unstage reversal.
	require.NotNil(t, m.PendingEffect)
	require.Equal(t, PendingSelectTarget, m.PendingEffect.Kind)
	require.NoError(t, m.ResolvePendingEffect(1, []string{defenderTarget.Instance.InstanceID}))
	require.Equal(t, powerBefore+2000, m.computePower(defenderTarget.Instance.InstanceID))
	require.Equal(t, preStageTargetPower, m.PendingAttack.TargetPower, "pending_attack power snapshot is untouched by a non-battle-target script mod")

	require.NoError(t, m.UnstageCounter(1, scriptCard.InstanceID))

	require.Equal(t, powerBefore, m.computePower(defenderTarget.Instance.InstanceID), "unstage perfectly reverses the staged power delta")
	require.Equal(t, preStageTargetPower, m.PendingAttack.TargetPower)
	require.Equal(t, handBefore, len(m.Players[1].Hand), "card returned to hand")
	require.Equal(t, donBefore, m.Players[1].DONActive+m.Players[1].DONRested, "DON cost refunded")
	require.Empty(t, m.StagedCounters)
}

// TestOnKOCascadesPendingSelectTarget is spec.md §8 scenario 5.
func TestOnKOCascadesPendingSelectTarget(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)

	m.Players[1].DONActive = 10
	victimSlot := placeCharacter(m, 1, "on-ko-victim", cardOnKO, true) // rested: a legal attack target

	// Attacker leader at 5000 vs a 1000-power target: guaranteed KO.
	require.NoError(t, m.DeclareAttack(0, "", victimSlot.Instance.InstanceID))
	require.NoError(t, m.SkipCounter(1))

	require.NotNil(t, m.PendingEffect, "ON_KO opens a pending select-target prompt")
	require.Equal(t, 1, m.PendingEffect.Owner, "the defender (victim's owner) chooses")
	require.Contains(t, m.PendingEffect.Candidates, m.Players[0].Leader.Instance.InstanceID)

	leaderPowerBefore := m.computePower(m.Players[0].Leader.Instance.InstanceID)
	require.NoError(t, m.ResolvePendingEffect(1, []string{m.Players[0].Leader.Instance.InstanceID}))
	require.Nil(t, m.PendingEffect)
	require.Equal(t, leaderPowerBefore-2000, m.computePower(m.Players[0].Leader.Instance.InstanceID))

	// Victim itself was KO'd into trash.
	for _, s := range m.Players[1].Characters {
		require.NotEqual(t, victimSlot.Instance.InstanceID, s.Instance.InstanceID)
	}
	found := false
	for _, c := range m.Players[1].Trash {
		if c.InstanceID == victimSlot.Instance.InstanceID {
			found = true
		}
	}
	require.True(t, found)
}

func TestLifeOutWinsForAttacker(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)
	m.Players[1].Life = nil

	require.NoError(t, m.DeclareAttack(0, "", ""))
	require.NoError(t, m.SkipCounter(1))

	require.NotNil(t, m.Winner)
	require.Equal(t, 0, *m.Winner)
}

// TestDeclareAttackDerivesBanishAndDoubleAttackFromPrintedKeywords covers
// spec.md §4.2's "derived keyword flags" clause: Banish and DoubleAttack
// come from the attacker's printed keywords, the same way Blocker is read
// off the defender, not only from a scripted ON_ATTACK effect.
func TestDeclareAttackDerivesBanishAndDoubleAttackFromPrintedKeywords(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)
	attacker := placeCharacter(m, 0, "double-1", cardDoubleAtk, false)
	attacker.CanAttackThisTurn = true

	require.NoError(t, m.DeclareAttack(0, attacker.Instance.InstanceID, ""))
	require.True(t, m.PendingAttack.DoubleAttack)
	require.False(t, m.PendingAttack.Banish)
}

func TestDeclareAttackBanishDiscardsRevealedLifeInsteadOfHand(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)
	attacker := placeCharacter(m, 0, "banish-1", cardBanish, false)
	attacker.CanAttackThisTurn = true
	handBefore := len(m.Players[1].Hand)
	removedBefore := len(m.Players[1].RemovedFromGame)

	require.NoError(t, m.DeclareAttack(0, attacker.Instance.InstanceID, ""))
	require.True(t, m.PendingAttack.Banish)
	require.NoError(t, m.SkipCounter(1))

	require.Equal(t, handBefore, len(m.Players[1].Hand))
	require.Equal(t, removedBefore+1, len(m.Players[1].RemovedFromGame))
}

func TestAttackOnRestedOpponentCharacterRequiresRestedTarget(t *testing.T) {
	m := newTestMatch(t)
	bringToTurn(t, m, 3)
	m.Players[1].DONActive = 10
	active := placeCharacter(m, 1, "active-char", cardVanilla, false)
	// An active (non-rested) opponent character is not a legal attack target.
	err := m.DeclareAttack(0, "", active.Instance.InstanceID)
	require.ErrorIs(t, err, errInvalidTarget)
}

// --- pending-effect protocol ---------------------------------------------

func TestPendingEffectOwnerOnlyMayResolve(t *testing.T) {
	m := newTestMatch(t)
	m.PendingEffect = &PendingEffect{Kind: PendingSelectTarget, Owner: 0, Candidates: []string{"x"}, MaxSelect: 1}
	err := m.ResolvePendingEffect(1, []string{"x"})
	require.ErrorIs(t, err, errWrongActor)
}

func TestPendingEffectSelectionValidatedAgainstCandidates(t *testing.T) {
	m := newTestMatch(t)
	m.PendingEffect = &PendingEffect{Kind: PendingSelectTarget, Owner: 0, Candidates: []string{"x"}, MinSelect: 1, MaxSelect: 1}
	err := m.ResolvePendingEffect(0, []string{"not-a-candidate"})
	require.ErrorIs(t, err, errInvalidSelection)
}

func TestSkipPendingEffectRequiresOptional(t *testing.T) {
	m := newTestMatch(t)
	m.PendingEffect = &PendingEffect{Kind: PendingSelectTarget, Owner: 0, Candidates: []string{"x"}, Optional: false}
	err := m.SkipPendingEffect(0)
	require.ErrorIs(t, err, errNotOptional)

	m.PendingEffect.Optional = true
	require.NoError(t, m.SkipPendingEffect(0))
	require.Nil(t, m.PendingEffect)
}

func TestOnlyOnePendingEffectOutstandingAtATime(t *testing.T) {
	m := newTestMatch(t)
	m.PendingEffect = &PendingEffect{Kind: PendingSelectTarget, Owner: 0, Candidates: []string{"x"}, Optional: true}
	// A second attempt to open a suspension while one is outstanding is the
	// caller's responsibility to avoid; openSuspension itself simply
	// overwrites, so the invariant is enforced by call discipline elsewhere
	// (only resolved/skip sites may set a new one). Verify skip clears it
	// cleanly so a subsequent hook dispatch is free to open a new one.
	require.NoError(t, m.SkipPendingEffect(0))
	require.Nil(t, m.PendingEffect)
}

// --- utility operations ---------------------------------------------------

func TestKOTargetReturnsAttachedDONToRested(t *testing.T) {
	m := newTestMatch(t)
	require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	slot := m.Players[0].Characters[0]
	require.NoError(t, m.AttachDONIntent(0, slot.Instance.InstanceID, 1))
	id := slot.Instance.InstanceID

	require.NoError(t, m.KOTarget(0, id))
	require.Empty(t, m.Players[0].Characters)
	require.Equal(t, 1, m.Players[0].DONRested)
	_, _, ok := m.findSlot(id)
	require.False(t, ok)
}

func TestBounceToBottomAndPlayFromTrash(t *testing.T) {
	m := newTestMatch(t)
	require.NoError(t, m.PlayCharacter(0, m.Players[0].Hand[0].InstanceID))
	slot := m.Players[0].Characters[0]
	id := slot.Instance.InstanceID
	deckBefore := len(m.Players[0].Deck)

	require.NoError(t, m.BounceToBottom(0, id))
	require.Equal(t, deckBefore+1, len(m.Players[0].Deck))
	require.Equal(t, id, m.Players[0].Deck[0].InstanceID, "bounced card sits at the bottom (index 0)")

	// Move it to trash manually to exercise PlayFromTrash.
	rest, card := removeInstance(m.Players[0].Deck, id)
	m.Players[0].Deck = rest
	m.Players[0].Trash = append(m.Players[0].Trash, card)
	m.Players[0].DONActive = 5

	require.NoError(t, m.PlayFromTrash(0, id))
	require.Len(t, m.Players[0].Characters, 1)
}

func TestMoveDONBetweenActiveAndRested(t *testing.T) {
	m := newTestMatch(t)
	m.Players[0].DONActive = 3
	m.Players[0].DONRested = 0
	require.NoError(t, m.MoveDON(0, 2, true))
	require.Equal(t, 1, m.Players[0].DONActive)
	require.Equal(t, 2, m.Players[0].DONRested)
	require.Error(t, m.MoveDON(0, 5, true))

	require.NoError(t, m.MoveDON(0, 2, false))
	require.Equal(t, 3, m.Players[0].DONActive)
	require.Equal(t, 0, m.Players[0].DONRested)
}

func TestViewTopDeckOnlyDuringSearchPending(t *testing.T) {
	m := newTestMatch(t)
	_, err := m.ViewTopDeck(0)
	require.Error(t, err)

	m.PendingEffect = &PendingEffect{Kind: PendingSearchAndSelectToHand, Owner: 0, Candidates: []string{"a", "b"}}
	ids, err := m.ViewTopDeck(0)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, ids)

	// Wrong owner.
	_, err = m.ViewTopDeck(1)
	require.Error(t, err)
}

// --- per-view projection ---------------------------------------------------

func TestViewRedactsOpponentHandButRevealsOwnHand(t *testing.T) {
	m := newTestMatch(t)
	v0 := m.ViewFor(0)
	v1 := m.ViewFor(1)

	require.Len(t, v0.Players[0].Hand, 5)
	require.Nil(t, v0.Players[1].Hand)
	require.Equal(t, 5, v0.Players[1].HandCount)

	require.Len(t, v1.Players[1].Hand, 5)
	require.Nil(t, v1.Players[0].Hand)
}

func TestViewHidesPendingEffectCandidatesFromNonOwner(t *testing.T) {
	m := newTestMatch(t)
	m.PendingEffect = &PendingEffect{Kind: PendingSelectTarget, Owner: 0, Candidates: []string{"secret"}, Optional: true}

	v0 := m.ViewFor(0)
	v1 := m.ViewFor(1)
	require.Equal(t, []string{"secret"}, v0.PendingEffect.Candidates)
	require.Nil(t, v1.PendingEffect.Candidates)
}
