package effectsrt

// ExecuteActions runs each action in order against env, from actingPlayer's
// perspective and sourceInstance (the card the hook belongs to).
//
// Three outcomes are possible: (nil, true) when every action ran to
// completion; (nil, false) when a non-pending action failed or the script
// declined to proceed; and (*Suspension, true) when a PENDING_* action
// opened an interactive prompt. In the suspended case the caller is
// responsible for storing the Suspension and, once the player answers,
// resuming by calling ExecuteActions again against Suspension.Continuation
// with SELECTED bound to the answer.
func ExecuteActions(env Env, actingPlayer, sourceInstance string, actions []Action) (*Suspension, bool) {
	for i, a := range actions {
		if a.Kind.IsPending() {
			candidates := env.ComputeCandidates(actingPlayer, a.Filter)
			if len(candidates) == 0 {
				if a.Optional {
					continue
				}
				// No legal candidates for a mandatory pending action is a
				// script-authoring error, not a rules violation; skip it
				// rather than wedging the match.
				env.Log("pending action had no candidates: "+string(a.Kind), actingPlayer)
				continue
			}
			continuation := make([]Action, 0, len(a.Then)+len(actions)-i-1)
			continuation = append(continuation, a.Then...)
			continuation = append(continuation, actions[i+1:]...)
			return &Suspension{
				Kind:           a.Kind,
				Candidates:     candidates,
				MinSelect:      a.MinSelect,
				MaxSelect:      a.MaxSelect,
				Optional:       a.Optional,
				Message:        a.Message,
				Continuation:   continuation,
				SourceInstance: sourceInstance,
				ActingPlayer:   actingPlayer,
			}, true
		}
		if a.Kind == ActionConditional {
			branch := a.Else
			if a.Condition != nil && evaluateCondition(env, actingPlayer, sourceInstance, *a.Condition) {
				branch = a.Then
			}
			sub, ok := ExecuteActions(env, actingPlayer, sourceInstance, branch)
			if sub != nil {
				sub.Continuation = append(sub.Continuation, actions[i+1:]...)
				return sub, ok
			}
			if !ok {
				return nil, false
			}
			continue
		}
		if !executeAction(env, actingPlayer, sourceInstance, a) {
			return nil, false
		}
	}
	return nil, true
}

func executeAction(env Env, actingPlayer, sourceInstance string, a Action) bool {
	switch a.Kind {
	case ActionAttachDON:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.AttachDON(id, a.Amount)
		}
	case ActionModifyPower:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.ModifyPower(id, a.Amount, a.Expiry)
		}
	case ActionDrawCards:
		env.DrawCards(actingPlayer, a.Amount)
	case ActionLifeToHand:
		env.LifeToHand(actingPlayer, a.Amount)
	case ActionKOCharacter:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.KOCharacter(id)
		}
	case ActionBounceToHand:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.BounceToHand(id)
		}
	case ActionGrantKeyword:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.GrantKeyword(id, a.Keyword, a.Expiry)
		}
	case ActionRestSelf:
		env.RestSelf(sourceInstance)
	case ActionSetRestriction:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.SetRestriction(id, a.Restriction)
		}
	case ActionAddAttackState:
		for _, id := range resolveOrSelf(env, actingPlayer, sourceInstance, a.Target) {
			env.AddAttackState(id, a.AttackState)
		}
	case ActionAddFieldState:
		env.AddFieldState(actingPlayer, a.FieldState)
	case ActionReviveSelf:
		env.ReviveSelf(sourceInstance)
	case ActionSetOncePerTurn:
		env.ScratchpadSet(sourceInstance, a.Message)
	case ActionLog:
		env.Log(a.Message, actingPlayer)
	default:
		env.Log("unknown action kind: "+string(a.Kind), actingPlayer)
		return true
	}
	return true
}
