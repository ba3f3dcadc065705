package effectsrt

// BuiltInScripts materialises a small set of representative card scripts
// covering every hook point and the PENDING_* interaction family.
// SPEC_FULL.md §4.4 treats the full card script library as out of scope
// (spec.md Non-goals: "The full card script library; this spec defines the
// effect runtime and lists the hook points, not every individual card's
// effect") — these entries exist to exercise every ScriptDefinition shape
// end to end, the same role the teacher's BuiltInDefinitions played for
// its own handful of effect contracts.
//
// Grounded on effects/contract/definitions_default.go's "fresh map and
// struct instances per call" convention.
func BuiltInScripts() map[string]ScriptDefinition {
	return map[string]ScriptDefinition{
		"OP01-002": {
			CardNumber: "OP01-002",
			Hooks: map[TriggerType]Hook{
				// "When this character is played, draw 1 card."
				TriggerOnPlay: {
					Actions: []Action{
						{Kind: ActionDrawCards, Target: Target{Kind: TargetSelf}, Amount: 1},
					},
				},
			},
		},
		"OP01-016": {
			CardNumber: "OP01-016",
			Hooks: map[TriggerType]Hook{
				// "On KO, give one of your opponent's characters -2000
				// power until the end of the turn."
				TriggerOnKO: {
					Actions: []Action{
						{
							Kind:      ActionPendingSelectTarget,
							Message:   "Choose an opponent character to weaken",
							MinSelect: 1,
							MaxSelect: 1,
							Optional:  true,
							Filter:    CandidateFilter{Zone: ZoneOpponentField},
							Then: []Action{
								{Kind: ActionModifyPower, Target: Target{Kind: TargetSelected}, Amount: -2000, Expiry: ExpiryEndOfTurn},
							},
						},
					},
				},
			},
		},
		"OP01-031": {
			CardNumber: "OP01-031",
			Hooks: map[TriggerType]Hook{
				// Scripted counter: +2000 power to a selected character,
				// then KO an opponent character with 4000 power or less.
				TriggerCounter: {
					Actions: []Action{
						{
							Kind:      ActionPendingSelectTarget,
							Message:   "Choose a character to give +2000 power",
							MinSelect: 1,
							MaxSelect: 1,
							Filter:    CandidateFilter{Zone: ZoneOwnField},
							Then: []Action{
								{Kind: ActionModifyPower, Target: Target{Kind: TargetSelected}, Amount: 2000, Expiry: ExpiryEndOfBattle},
								{
									Kind:      ActionPendingKOTarget,
									Message:   "KO an opponent character with 4000 power or less",
									MinSelect: 1,
									MaxSelect: 1,
									Optional:  true,
									Filter:    CandidateFilter{Zone: ZoneOpponentField, MaxPower: intPtr(4000)},
									Then: []Action{
										{Kind: ActionKOCharacter, Target: Target{Kind: TargetSelected}},
									},
								},
							},
						},
					},
				},
			},
		},
		"OP01-044": {
			CardNumber: "OP01-044",
			Hooks: map[TriggerType]Hook{
				// TRIGGER: when revealed from Life, draw 1 card.
				TriggerTrigger: {
					Actions: []Action{
						{Kind: ActionDrawCards, Target: Target{Kind: TargetSelf}, Amount: 1},
					},
				},
			},
		},
		"OP01-060": {
			CardNumber: "OP01-060",
			Hooks: map[TriggerType]Hook{
				// ACTIVATE_MAIN, once per turn: search the top 3 cards
				// of the deck for a card to add to hand.
				TriggerActivateMain: {
					Conditions: []Condition{
						{Kind: ConditionOncePerTurn, ScratchpadKey: "op01-060-search"},
					},
					Actions: []Action{
						{Kind: ActionSetOncePerTurn, Message: "op01-060-search"},
						{
							Kind:      ActionPendingSearch,
							Message:   "Look at the top 3 cards of your deck. Add up to 1 to your hand.",
							MinSelect: 0,
							MaxSelect: 1,
							Optional:  true,
							Filter:    CandidateFilter{Zone: ZoneOwnDeckTopN, Count: 3},
						},
					},
				},
			},
		},
	}
}

func intPtr(v int) *int { return &v }
