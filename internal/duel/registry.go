package duel

import (
	"context"

	"duelserver/internal/effectsrt"
	scriptlog "duelserver/logging/script"
)

// registerInstance records instanceID as live for every trigger type its
// card's script defines hooks for. Per spec.md §4.4, the registry is a map
// trigger-type -> instance-id -> owner; only registered instances are
// considered when a hook is dispatched.
func (m *Match) registerInstance(cardNumber, instanceID string, owner int) {
	script, ok := m.Registry.Lookup(cardNumber)
	if !ok {
		return
	}
	if m.triggers == nil {
		m.triggers = make(map[effectsrt.TriggerType]map[string]int)
	}
	for trigger := range script.Hooks {
		if m.triggers[trigger] == nil {
			m.triggers[trigger] = make(map[string]int)
		}
		m.triggers[trigger][instanceID] = owner
	}
}

// unregisterInstance removes instanceID from every trigger bucket. Called
// on KO, bounce-to-hand, and bounce-to-deck.
func (m *Match) unregisterInstance(instanceID string) {
	for _, bucket := range m.triggers {
		delete(bucket, instanceID)
	}
}

// dispatchHook runs the named trigger for every instance registered for it
// that the dispatch filter selects, per spec.md §4.4's per-hook subject
// rules. For subject-specific hooks (ON_PLAY, ON_ATTACK, ON_BLOCK, ON_KO,
// ACTIVATE_MAIN, COUNTER) callers pass a single subjectInstance. For
// TURN_END callers pass an empty subjectInstance and owner identifies the
// current player; every registered entry owned by that player fires.
func (m *Match) dispatchHook(trigger effectsrt.TriggerType, subjectInstance string, owner int) {
	bucket := m.triggers[trigger]
	if len(bucket) == 0 {
		return
	}
	if subjectInstance != "" {
		instOwner, ok := bucket[subjectInstance]
		if !ok {
			return
		}
		m.runHookForInstance(subjectInstance, instOwner, trigger)
		return
	}
	// TURN_END: fire every entry owned by owner. Copy keys first since
	// actions may unregister instances mid-iteration (e.g. a TURN_END
	// script that KOs its own source).
	var instances []string
	for instanceID, instOwner := range bucket {
		if instOwner == owner {
			instances = append(instances, instanceID)
		}
	}
	for _, instanceID := range instances {
		// A TURN_END script that opens a pending interaction suspends the
		// remaining registered entries for this dispatch; they simply do
		// not fire this turn. The single-slot pending-effect invariant
		// means only one interactive prompt can be outstanding at a time.
		if m.PendingEffect != nil {
			return
		}
		m.runHookForInstance(instanceID, owner, trigger)
	}
}

func (m *Match) runHookForInstance(instanceID string, owner int, trigger effectsrt.TriggerType) {
	inst, _, ok := m.findInstance(instanceID)
	if !ok {
		return
	}
	if m.Events != nil {
		scriptlog.HookDispatched(context.Background(), m.Events, scriptlog.HookDispatchedPayload{
			RoomID:     m.RoomID,
			CardNumber: inst.CardNumber,
			Trigger:    string(trigger),
		})
	}
	susp, _ := effectsrt.RunHook(m, m.Registry, inst.CardNumber, playerKey(owner), instanceID, trigger)
	m.openSuspension(susp, owner)
}
