package effectsrt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEnv struct {
	don           map[string]int
	restedDON     map[string]int
	life          map[string]int
	restrictions  map[string]map[string]bool
	turnOwner     string
	powerMods     map[string]int
	drawn         map[string]int
	koed          map[string]bool
	scratchpad    map[string]map[string]bool
	candidates    map[ZoneKind][]string
	logged        []string
}

func newFakeEnv() *fakeEnv {
	return &fakeEnv{
		don:          map[string]int{},
		restedDON:    map[string]int{},
		life:         map[string]int{},
		restrictions: map[string]map[string]bool{},
		powerMods:    map[string]int{},
		drawn:        map[string]int{},
		koed:         map[string]bool{},
		scratchpad:   map[string]map[string]bool{},
		candidates:   map[ZoneKind][]string{},
	}
}

func (f *fakeEnv) ResolveTargets(actingPlayer string, t Target) []string {
	if t.Kind == TargetLiteral {
		return []string{t.InstanceID}
	}
	return []string{"self-instance"}
}
func (f *fakeEnv) AttachedDON(id string) int        { return f.don[id] }
func (f *fakeEnv) RestedDON(p string) int           { return f.restedDON[p] }
func (f *fakeEnv) LifeCount(p string) int           { return f.life[p] }
func (f *fakeEnv) HasRestriction(id, key string) bool {
	return f.restrictions[id] != nil && f.restrictions[id][key]
}
func (f *fakeEnv) IsTurnOwner(p string) bool       { return f.turnOwner == p }
func (f *fakeEnv) LeaderCardNumber(p string) string { return "OP01-001" }
func (f *fakeEnv) LeaderTraits(p string) []string   { return []string{"Straw Hat Crew"} }
func (f *fakeEnv) IsRested(id string) bool          { return false }
func (f *fakeEnv) ScratchpadGet(id, key string) bool {
	return f.scratchpad[id] != nil && f.scratchpad[id][key]
}
func (f *fakeEnv) AttachDON(id string, amount int) { f.don[id] += amount }
func (f *fakeEnv) ModifyPower(id string, amount int, expiry ExpiryScope) {
	f.powerMods[id] += amount
}
func (f *fakeEnv) DrawCards(p string, count int) { f.drawn[p] += count }
func (f *fakeEnv) LifeToHand(p string, count int) {}
func (f *fakeEnv) KOCharacter(id string)          { f.koed[id] = true }
func (f *fakeEnv) BounceToHand(id string)         {}
func (f *fakeEnv) GrantKeyword(id, keyword string, expiry ExpiryScope) {}
func (f *fakeEnv) RestSelf(id string)                  {}
func (f *fakeEnv) SetRestriction(id, key string) {
	if f.restrictions[id] == nil {
		f.restrictions[id] = map[string]bool{}
	}
	f.restrictions[id][key] = true
}
func (f *fakeEnv) AddAttackState(id, state string)      {}
func (f *fakeEnv) AddFieldState(p, state string)        {}
func (f *fakeEnv) ReviveSelf(id string)                 {}
func (f *fakeEnv) ScratchpadSet(id, key string) {
	if f.scratchpad[id] == nil {
		f.scratchpad[id] = map[string]bool{}
	}
	f.scratchpad[id][key] = true
}
func (f *fakeEnv) Log(message, actingPlayer string) { f.logged = append(f.logged, message) }
func (f *fakeEnv) ComputeCandidates(actingPlayer string, filter CandidateFilter) []string {
	return f.candidates[filter.Zone]
}

func TestEvaluateConditionsAttachedDONThreshold(t *testing.T) {
	env := newFakeEnv()
	env.don["self-instance"] = 2
	cond := Condition{Kind: ConditionAttachedDON, CompareOperator: CompareGTE, Threshold: 2}
	require.True(t, EvaluateConditions(env, "p1", "self-instance", []Condition{cond}))

	cond.Threshold = 3
	require.False(t, EvaluateConditions(env, "p1", "self-instance", []Condition{cond}))
}

func TestOncePerTurnConditionAndSetAction(t *testing.T) {
	env := newFakeEnv()
	cond := Condition{Kind: ConditionOncePerTurn, ScratchpadKey: "used-this-turn"}
	require.True(t, EvaluateConditions(env, "p1", "card-1", []Condition{cond}))

	_, _ = ExecuteActions(env, "p1", "card-1", []Action{{Kind: ActionSetOncePerTurn, Message: "used-this-turn"}})
	require.False(t, EvaluateConditions(env, "p1", "card-1", []Condition{cond}))
}

func TestConditionalActionBranches(t *testing.T) {
	env := newFakeEnv()
	env.don["self-instance"] = 5
	action := Action{
		Kind:      ActionConditional,
		Condition: &Condition{Kind: ConditionAttachedDON, CompareOperator: CompareGTE, Threshold: 1},
		Then:      []Action{{Kind: ActionDrawCards, Amount: 1}},
		Else:      []Action{{Kind: ActionDrawCards, Amount: 99}},
	}
	susp, ok := ExecuteActions(env, "p1", "self-instance", []Action{action})
	require.Nil(t, susp)
	require.True(t, ok)
	require.Equal(t, 1, env.drawn["p1"])
}

func TestRunHookFiresOnlyWhenConditionsHold(t *testing.T) {
	reg := NewRegistry()
	reg.Load(ScriptDefinition{
		CardNumber: "OP01-013",
		Hooks: map[TriggerType]Hook{
			TriggerOnPlay: {
				Conditions: []Condition{{Kind: ConditionTurnOwnership}},
				Actions:    []Action{{Kind: ActionDrawCards, Amount: 1}},
			},
		},
	})
	env := newFakeEnv()
	env.turnOwner = "p2"

	susp, ok := RunHook(env, reg, "OP01-013", "p1", "card-1", TriggerOnPlay)
	require.Nil(t, susp)
	require.False(t, ok)
	require.Equal(t, 0, env.drawn["p1"])

	env.turnOwner = "p1"
	susp, ok = RunHook(env, reg, "OP01-013", "p1", "card-1", TriggerOnPlay)
	require.Nil(t, susp)
	require.True(t, ok)
	require.Equal(t, 1, env.drawn["p1"])
}

func TestRunHookSuspendsOnPendingAction(t *testing.T) {
	reg := NewRegistry()
	reg.Load(ScriptDefinition{
		CardNumber: "OP01-050",
		Hooks: map[TriggerType]Hook{
			TriggerOnPlay: {
				Actions: []Action{
					{Kind: ActionPendingKOTarget, Filter: CandidateFilter{Zone: ZoneOpponentField}, MinSelect: 1, MaxSelect: 1,
						Then: []Action{{Kind: ActionLog, Message: "ko resolved"}}},
					{Kind: ActionDrawCards, Amount: 1},
				},
			},
		},
	})
	env := newFakeEnv()
	env.candidates[ZoneOpponentField] = []string{"enemy-1", "enemy-2"}

	susp, ok := RunHook(env, reg, "OP01-050", "p1", "card-1", TriggerOnPlay)
	require.True(t, ok)
	require.NotNil(t, susp)
	require.Equal(t, ActionPendingKOTarget, susp.Kind)
	require.ElementsMatch(t, []string{"enemy-1", "enemy-2"}, susp.Candidates)
	require.Len(t, susp.Continuation, 2) // Then, plus the trailing DRAW_CARDS

	susp, ok = ExecuteActions(env, susp.ActingPlayer, susp.SourceInstance, susp.Continuation)
	require.Nil(t, susp)
	require.True(t, ok)
	require.Equal(t, 1, env.drawn["p1"])
}

// TestUnknownConditionKindEvaluatesTrueAndLogs covers spec.md §4.4/§7's
// forward-compatibility rule: an unrecognized Condition kind must not deny
// the script, only be logged.
func TestUnknownConditionKindEvaluatesTrueAndLogs(t *testing.T) {
	env := newFakeEnv()
	cond := Condition{Kind: ConditionKind("FUTURE_CONDITION")}
	require.True(t, EvaluateConditions(env, "p1", "card-1", []Condition{cond}))
	require.Len(t, env.logged, 1)
}

// TestUnknownActionKindIsSkippedAndLogged covers spec.md §7: an
// unrecognized Action kind is a no-op, not a script failure, and is logged.
func TestUnknownActionKindIsSkippedAndLogged(t *testing.T) {
	env := newFakeEnv()
	susp, ok := ExecuteActions(env, "p1", "card-1", []Action{
		{Kind: ActionKind("FUTURE_ACTION")},
		{Kind: ActionDrawCards, Amount: 1},
	})
	require.Nil(t, susp)
	require.True(t, ok)
	require.Equal(t, 1, env.drawn["p1"])
	require.Len(t, env.logged, 1)
}

func TestRegistryValidateCatchesMissingCandidateFilter(t *testing.T) {
	reg := NewRegistry()
	reg.Load(ScriptDefinition{
		CardNumber: "OP01-099",
		Hooks: map[TriggerType]Hook{
			TriggerOnPlay: {
				Actions: []Action{{Kind: ActionPendingSelectTarget}},
			},
		},
	})
	require.Error(t, reg.Validate())
}
