package effectsrt

// RunHook evaluates the named trigger on a card's script (if any) and, when
// its conditions hold, executes its actions. The bool return reports
// whether the hook fired at all (false both when there is no script/hook
// and when the conditions did not hold); the *Suspension return is non-nil
// when execution opened a PENDING_* prompt partway through, per
// ExecuteActions.
func RunHook(env Env, reg *Registry, cardNumber, actingPlayer, sourceInstance string, trigger TriggerType) (*Suspension, bool) {
	def, ok := reg.Lookup(cardNumber)
	if !ok {
		return nil, false
	}
	hook, ok := def.Hooks[trigger]
	if !ok {
		return nil, false
	}
	if !EvaluateConditions(env, actingPlayer, sourceInstance, hook.Conditions) {
		return nil, false
	}
	return ExecuteActions(env, actingPlayer, sourceInstance, hook.Actions)
}

// RunConstantHooks evaluates every registered CONSTANT hook whose
// conditions currently hold for instanceID's card, used by the power
// computation pass to pull in always-on bonuses (e.g. "+1000 power while
// you have 2 or more DON attached"). CONSTANT hooks never contain PENDING_*
// actions, so any suspension they report is discarded.
func RunConstantHooks(env Env, reg *Registry, cardNumber, actingPlayer, sourceInstance string) {
	RunHook(env, reg, cardNumber, actingPlayer, sourceInstance, TriggerConstant)
}
