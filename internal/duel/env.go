package duel

import (
	"strconv"

	"duelserver/internal/effectsrt"
)

func playerKey(idx int) string { return strconv.Itoa(idx) }

func parsePlayerKey(key string) int {
	idx, err := strconv.Atoi(key)
	if err != nil {
		return -1
	}
	return idx
}

// Match implements effectsrt.Env directly, so the Rules Engine can hand
// itself to RunHook/ExecuteActions without any adapter boilerplate.
var _ effectsrt.Env = (*Match)(nil)

func (m *Match) ResolveTargets(actingPlayer string, t effectsrt.Target) []string {
	player := parsePlayerKey(actingPlayer)
	switch t.Kind {
	case effectsrt.TargetSelf:
		return nil // callers use resolveOrSelf's own-instance fallback
	case effectsrt.TargetLeader:
		if m.Players[player].Leader.Instance == nil {
			return nil
		}
		return []string{m.Players[player].Leader.Instance.InstanceID}
	case effectsrt.TargetSelected, effectsrt.TargetAllSelected:
		return append([]string(nil), m.targetBinding.selected...)
	case effectsrt.TargetBattleTarget:
		if m.PendingAttack == nil {
			return nil
		}
		if m.PendingAttack.BlockerInstance != "" {
			return []string{m.PendingAttack.BlockerInstance}
		}
		if m.PendingAttack.TargetInstance != "" {
			return []string{m.PendingAttack.TargetInstance}
		}
		if m.Players[m.PendingAttack.TargetPlayer].Leader.Instance != nil {
			return []string{m.Players[m.PendingAttack.TargetPlayer].Leader.Instance.InstanceID}
		}
		return nil
	case effectsrt.TargetAttacker:
		if m.targetBinding.attacker != "" {
			return []string{m.targetBinding.attacker}
		}
		return nil
	case effectsrt.TargetTarget:
		if m.targetBinding.target != "" {
			return []string{m.targetBinding.target}
		}
		return nil
	case effectsrt.TargetLiteral:
		return []string{t.InstanceID}
	default:
		return nil
	}
}

func (m *Match) AttachedDON(instanceID string) int {
	slot, _, ok := m.findSlot(instanceID)
	if !ok {
		return 0
	}
	return slot.AttachedDON
}

func (m *Match) RestedDON(player string) int {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 {
		return 0
	}
	return m.Players[idx].DONRested
}

func (m *Match) LifeCount(player string) int {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 {
		return 0
	}
	return len(m.Players[idx].Life)
}

func (m *Match) HasRestriction(instanceID, key string) bool {
	owner := m.ownerOf(instanceID)
	if owner < 0 {
		owner = parsePlayerKey(instanceID)
	}
	if owner < 0 || owner > 1 {
		return false
	}
	return m.Players[owner].Restrictions[key]
}

func (m *Match) IsTurnOwner(player string) bool {
	return parsePlayerKey(player) == m.CurrentPlayerIndex
}

func (m *Match) LeaderCardNumber(player string) string {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 || m.Players[idx].Leader.Instance == nil {
		return ""
	}
	return m.Players[idx].Leader.Instance.CardNumber
}

func (m *Match) LeaderTraits(player string) []string {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 || m.Players[idx].Leader.Instance == nil {
		return nil
	}
	def := m.Catalog[m.Players[idx].Leader.Instance.CardNumber]
	if def == nil {
		return nil
	}
	return def.Traits
}

func (m *Match) IsRested(instanceID string) bool {
	slot, _, ok := m.findSlot(instanceID)
	if !ok {
		return false
	}
	return slot.Rested
}

func (m *Match) ScratchpadGet(instanceID, key string) bool {
	owner := m.ownerOf(instanceID)
	if owner < 0 {
		return false
	}
	return m.Players[owner].Scratchpad[instanceID+":"+key]
}

func (m *Match) ScratchpadSet(instanceID, key string) {
	owner := m.ownerOf(instanceID)
	if owner < 0 {
		return
	}
	if m.Players[owner].Scratchpad == nil {
		m.Players[owner].Scratchpad = make(map[string]bool)
	}
	m.Players[owner].Scratchpad[instanceID+":"+key] = true
}

func (m *Match) AttachDON(instanceID string, amount int) {
	slot, _, ok := m.findSlot(instanceID)
	if !ok {
		return
	}
	slot.AttachedDON += amount
}

func (m *Match) ModifyPower(instanceID string, amount int, expiry effectsrt.ExpiryScope) {
	owner := m.ownerOf(instanceID)
	if owner < 0 {
		return
	}
	if m.Players[owner].TempPowerMods == nil {
		m.Players[owner].TempPowerMods = make(map[string]int)
	}
	m.Players[owner].TempPowerMods[instanceID] += amount
	if expiry != "" && expiry != effectsrt.ExpiryPermanent {
		m.ActiveEffects = append(m.ActiveEffects, ActiveEffect{Scope: expiry, InstanceID: instanceID, PowerDelta: amount})
	}
	m.recordStagedPowerDelta(instanceID, amount)
}

func (m *Match) DrawCards(player string, count int) {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 {
		return
	}
	for i := 0; i < count; i++ {
		m.drawOne(idx)
	}
}

func (m *Match) LifeToHand(player string, count int) {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 {
		return
	}
	ps := m.Players[idx]
	for i := 0; i < count && len(ps.Life) > 0; i++ {
		last := len(ps.Life) - 1
		card := ps.Life[last]
		ps.Life = ps.Life[:last]
		ps.Hand = append(ps.Hand, card)
	}
}

func (m *Match) KOCharacter(instanceID string) {
	m.koCharacter(instanceID)
}

func (m *Match) BounceToHand(instanceID string) {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || slot.Instance == nil {
		return
	}
	inst := slot.Instance
	ps := m.Players[owner]
	ps.DONRested += slot.AttachedDON
	ps.Characters, _ = removeCharacterSlot(ps.Characters, instanceID)
	ps.Hand = append(ps.Hand, inst)
	delete(ps.TempPowerMods, instanceID)
	m.unregisterInstance(instanceID)
}

func (m *Match) GrantKeyword(instanceID, keyword string, expiry effectsrt.ExpiryScope) {
	if expiry != "" && expiry != effectsrt.ExpiryPermanent {
		m.ActiveEffects = append(m.ActiveEffects, ActiveEffect{Scope: expiry, InstanceID: instanceID, Keyword: keyword})
	}
}

func (m *Match) RestSelf(instanceID string) {
	slot, _, ok := m.findSlot(instanceID)
	if !ok {
		return
	}
	slot.Rested = true
}

func (m *Match) SetRestriction(instanceID, key string) {
	owner := m.ownerOf(instanceID)
	if owner < 0 {
		owner = parsePlayerKey(instanceID)
	}
	if owner < 0 || owner > 1 {
		return
	}
	if m.Players[owner].Restrictions == nil {
		m.Players[owner].Restrictions = make(map[string]bool)
	}
	m.Players[owner].Restrictions[key] = true
}

func (m *Match) AddAttackState(instanceID, state string) {
	if m.PendingAttack == nil {
		return
	}
	switch state {
	case "ignore_blocker":
		m.PendingAttack.IgnoreBlocker = true
	case "double_attack":
		m.PendingAttack.DoubleAttack = true
	case "banish":
		m.PendingAttack.Banish = true
	}
}

func (m *Match) AddFieldState(player, state string) {
	idx := parsePlayerKey(player)
	if idx < 0 || idx > 1 {
		return
	}
	if m.Players[idx].Restrictions == nil {
		m.Players[idx].Restrictions = make(map[string]bool)
	}
	m.Players[idx].Restrictions[state] = true
}

func (m *Match) ReviveSelf(instanceID string) {
	owner := m.ownerOf(instanceID)
	if owner < 0 {
		return
	}
	ps := m.Players[owner]
	ps.Trash, _ = removeInstance(ps.Trash, instanceID)
	if len(ps.Characters) >= 5 {
		ps.Trash = append(ps.Trash, &CardInstance{InstanceID: instanceID, Owner: owner})
		return
	}
	inst, _, _ := m.findInstance(instanceID)
	if inst == nil {
		inst = &CardInstance{InstanceID: instanceID, Owner: owner}
	}
	ps.Characters = append(ps.Characters, &Slot{Instance: inst})
	m.registerInstance(inst.CardNumber, instanceID, owner)
}

func (m *Match) Log(message, actingPlayer string) {
	m.appendLog(message)
}

// ComputeCandidates evaluates filter against live match state, implementing
// effectsrt.Env for PENDING_* action support (see pending.go).
func (m *Match) ComputeCandidates(actingPlayer string, filter effectsrt.CandidateFilter) []string {
	player := parsePlayerKey(actingPlayer)
	if player < 0 || player > 1 {
		return nil
	}
	opponent := otherPlayer(player)

	var pool []*CardInstance
	switch filter.Zone {
	case effectsrt.ZoneOwnField:
		pool = m.fieldInstances(player)
	case effectsrt.ZoneOpponentField:
		pool = m.fieldInstances(opponent)
	case effectsrt.ZoneAllField:
		pool = append(m.fieldInstances(player), m.fieldInstances(opponent)...)
	case effectsrt.ZoneOwnHand:
		pool = m.Players[player].Hand
	case effectsrt.ZoneOwnTrash:
		pool = m.Players[player].Trash
	case effectsrt.ZoneOpponentTrash:
		pool = m.Players[opponent].Trash
	case effectsrt.ZoneOwnDeckTopN:
		pool = topOfDeck(m.Players[player].Deck, filter.Count)
	default:
		return nil
	}

	out := make([]string, 0, len(pool))
	for _, c := range pool {
		if c == nil || !m.matchesFilter(c, filter) {
			continue
		}
		out = append(out, c.InstanceID)
	}
	return out
}

// fieldInstances returns every instance currently occupying player's
// Leader, Character, or Stage slots.
func (m *Match) fieldInstances(player int) []*CardInstance {
	ps := m.Players[player]
	var out []*CardInstance
	if ps.Leader.Instance != nil {
		out = append(out, ps.Leader.Instance)
	}
	for _, s := range ps.Characters {
		if s.Instance != nil {
			out = append(out, s.Instance)
		}
	}
	if ps.Stage != nil && ps.Stage.Instance != nil {
		out = append(out, ps.Stage.Instance)
	}
	return out
}

// topOfDeck returns the top n cards of deck (deck's tail is the top); n<=0
// or n beyond the deck's size means the whole deck.
func topOfDeck(deck []*CardInstance, n int) []*CardInstance {
	if n <= 0 || n > len(deck) {
		n = len(deck)
	}
	return deck[len(deck)-n:]
}

func (m *Match) matchesFilter(c *CardInstance, f effectsrt.CandidateFilter) bool {
	if f.ExcludeInstanceID != "" && c.InstanceID == f.ExcludeInstanceID {
		return false
	}
	if f.ExcludeCardNumber != "" && c.CardNumber == f.ExcludeCardNumber {
		return false
	}
	def := m.Catalog[c.CardNumber]
	if def == nil {
		return false
	}
	if f.Category != "" && def.Category != f.Category {
		return false
	}
	if f.Trait != "" && !containsString(def.Traits, f.Trait) {
		return false
	}
	if f.RequireKeyword != "" && !hasKeyword(def, f.RequireKeyword) {
		return false
	}
	if f.MinCost != nil && def.Cost < *f.MinCost {
		return false
	}
	if f.MaxCost != nil && def.Cost > *f.MaxCost {
		return false
	}
	if f.MinPower != nil || f.MaxPower != nil {
		power := def.Power
		if _, _, onField := m.findSlot(c.InstanceID); onField {
			power = m.computePower(c.InstanceID)
		}
		if f.MinPower != nil && power < *f.MinPower {
			return false
		}
		if f.MaxPower != nil && power > *f.MaxPower {
			return false
		}
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// powerProbeEnv wraps a live Match for CONSTANT-hook evaluation: every
// mutator is a no-op except ModifyPower, which only accumulates into
// bonus, since CONSTANT hooks are re-derived every time power is computed
// rather than applied once and tracked as a mutation.
type powerProbeEnv struct {
	*Match
	owner int
	bonus int
}

func (p *powerProbeEnv) ModifyPower(instanceID string, amount int, expiry effectsrt.ExpiryScope) {
	p.bonus += amount
}
func (p *powerProbeEnv) AttachDON(string, int)                          {}
func (p *powerProbeEnv) DrawCards(string, int)                          {}
func (p *powerProbeEnv) LifeToHand(string, int)                         {}
func (p *powerProbeEnv) KOCharacter(string)                             {}
func (p *powerProbeEnv) BounceToHand(string)                            {}
func (p *powerProbeEnv) GrantKeyword(string, string, effectsrt.ExpiryScope) {}
func (p *powerProbeEnv) RestSelf(string)                                {}
func (p *powerProbeEnv) SetRestriction(string, string)                  {}
func (p *powerProbeEnv) AddAttackState(string, string)                  {}
func (p *powerProbeEnv) AddFieldState(string, string)                   {}
func (p *powerProbeEnv) ReviveSelf(string)                              {}
func (p *powerProbeEnv) ScratchpadSet(string, string)                   {}
func (p *powerProbeEnv) Log(string, string)                             {}
func (p *powerProbeEnv) ComputeCandidates(string, effectsrt.CandidateFilter) []string { return nil }
