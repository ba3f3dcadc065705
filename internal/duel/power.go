package duel

import "duelserver/internal/effectsrt"

// computePower returns the current effective power of instanceID: base
// printed power + attached DON * DONPowerIncrement + temporary per-turn
// mods + any currently-registered CONSTANT dynamic bonus from the Effect
// Runtime. Per spec.md §4.1's combat power formula.
func (m *Match) computePower(instanceID string) int {
	slot, owner, ok := m.findSlot(instanceID)
	if !ok || slot.Instance == nil {
		return 0
	}
	def := m.Catalog[slot.Instance.CardNumber]
	base := 0
	if def != nil {
		base = def.Power
	}
	power := base + slot.AttachedDON*DONPowerIncrement
	power += m.Players[owner].TempPowerMods[instanceID]
	power += m.dynamicPowerBonus(instanceID)
	if power < 0 {
		power = 0
	}
	return power
}

// dynamicPowerBonus queries the CONSTANT hook for instanceID by running its
// script against a probe environment that only records MODIFY_POWER deltas
// rather than mutating live state, since CONSTANT hooks are pure queries
// evaluated on demand (they are never "executed" the way triggered hooks
// are; they're re-derived every time power is computed).
func (m *Match) dynamicPowerBonus(instanceID string) int {
	_, owner, ok := m.findSlot(instanceID)
	if !ok {
		return 0
	}
	inst, _, _ := m.findInstance(instanceID)
	if inst == nil {
		return 0
	}
	script, ok := m.Registry.Lookup(inst.CardNumber)
	if !ok {
		return 0
	}
	hook, ok := script.Hooks[effectsrt.TriggerConstant]
	if !ok {
		return 0
	}
	ownerKey := playerKey(owner)
	if !effectsrt.EvaluateConditions(m, ownerKey, instanceID, hook.Conditions) {
		return 0
	}
	probe := &powerProbeEnv{Match: m, owner: owner}
	effectsrt.ExecuteActions(probe, ownerKey, instanceID, hook.Actions)
	return probe.bonus
}

func (m *Match) hasDynamicKeyword(instanceID, keyword string) bool {
	inst, _, ok := m.findInstance(instanceID)
	if !ok {
		return false
	}
	script, ok := m.Registry.Lookup(inst.CardNumber)
	if !ok {
		return false
	}
	hook, ok := script.Hooks[effectsrt.TriggerConstant]
	if !ok {
		return false
	}
	_, owner, _ := m.findSlot(instanceID)
	if !effectsrt.EvaluateConditions(m, playerKey(owner), instanceID, hook.Conditions) {
		return false
	}
	for _, a := range hook.Actions {
		if a.Kind == effectsrt.ActionGrantKeyword && a.Keyword == keyword {
			return true
		}
	}
	return false
}
