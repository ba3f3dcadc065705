// Package effectsrt is the scripted Effect Runtime: the interpreter that
// executes designer-authored card effects against live duel state.
//
// Grounded on effects/contract's registry/payload pattern (a Payload marker
// interface, jsonschema struct tags describing a tagged-variant union, and a
// Registry.Validate pass) generalized from "spawn/update/end lifecycle
// payloads for spatial effects" to "conditions and actions for scripted card
// abilities".
package effectsrt

// TriggerType enumerates the hook points the rules engine calls into the
// effect runtime at.
type TriggerType string

const (
	TriggerOnPlay       TriggerType = "ON_PLAY"
	TriggerOnAttack     TriggerType = "ON_ATTACK"
	TriggerOnBlock      TriggerType = "ON_BLOCK"
	TriggerOnKO         TriggerType = "ON_KO"
	TriggerTurnEnd      TriggerType = "TURN_END"
	TriggerActivateMain TriggerType = "ACTIVATE_MAIN"
	TriggerCounter      TriggerType = "COUNTER"
	TriggerTrigger      TriggerType = "TRIGGER" // Life-card reveal trigger
	TriggerConstant     TriggerType = "CONSTANT"
)

// ExpiryScope enumerates the lifetimes a temporary action's effect can have.
type ExpiryScope string

const (
	ExpiryEndOfBattle    ExpiryScope = "END_OF_BATTLE"
	ExpiryEndOfTurn      ExpiryScope = "END_OF_TURN"
	ExpiryNextTurnStart  ExpiryScope = "NEXT_TURN_START"
	ExpiryPermanent      ExpiryScope = "PERMANENT"
)

// Target enumerates the vocabulary a scripted action or condition uses to
// resolve which card instance(s) it applies to.
type Target struct {
	// Kind selects one of the fixed resolution modes; InstanceID is only
	// populated when Kind == TargetLiteral.
	Kind       TargetKind `json:"kind" jsonschema:"enum=SELF,enum=LEADER,enum=SELECTED,enum=ALL_SELECTED,enum=BATTLE_TARGET,enum=ATTACKER,enum=TARGET,enum=LITERAL,required"`
	InstanceID string     `json:"instanceId,omitempty" jsonschema:"description=Concrete instance id, only set when kind is LITERAL"`
}

// TargetKind is the discriminator for Target.
type TargetKind string

const (
	TargetSelf         TargetKind = "SELF"
	TargetLeader       TargetKind = "LEADER"
	TargetSelected     TargetKind = "SELECTED"
	TargetAllSelected  TargetKind = "ALL_SELECTED"
	TargetBattleTarget TargetKind = "BATTLE_TARGET"
	TargetAttacker     TargetKind = "ATTACKER"
	TargetTarget       TargetKind = "TARGET"
	TargetLiteral      TargetKind = "LITERAL"
)

// Condition is a tagged-variant union of the script condition kinds the
// runtime can evaluate. Exactly one of the kind-specific fields is
// meaningful, selected by Kind; this mirrors the contract package's
// Payload-marker convention but keeps the variant inline (as a single
// struct with jsonschema tags) rather than via an interface, since every
// condition kind here is a small value type with no spatial geometry.
type Condition struct {
	Kind ConditionKind `json:"kind" jsonschema:"required"`

	// CompareOperator is shared by the numeric-comparison condition kinds.
	CompareOperator CompareOp `json:"compareOperator,omitempty"`
	Threshold       int       `json:"threshold,omitempty"`

	Target Target `json:"target,omitempty"`

	RestrictionKey string `json:"restrictionKey,omitempty"`
	CardNumber     string `json:"cardNumber,omitempty"`
	Trait          string `json:"trait,omitempty"`
	ScratchpadKey  string `json:"scratchpadKey,omitempty"`
}

// ConditionKind discriminates Condition's variant.
type ConditionKind string

const (
	ConditionAttachedDON       ConditionKind = "ATTACHED_DON_THRESHOLD"
	ConditionRestedDON         ConditionKind = "RESTED_DON_THRESHOLD"
	ConditionLifeCount         ConditionKind = "LIFE_COUNT_COMPARISON"
	ConditionRestrictionActive ConditionKind = "EFFECT_RESTRICTION_PRESENT"
	ConditionTurnOwnership     ConditionKind = "TURN_OWNERSHIP"
	ConditionLeaderCardNumber  ConditionKind = "LEADER_CARD_NUMBER_EQUALS"
	ConditionLeaderTrait       ConditionKind = "LEADER_TRAIT_CONTAINS"
	ConditionSourceNotRested   ConditionKind = "SOURCE_SLOT_NOT_RESTED"
	ConditionOncePerTurn       ConditionKind = "ONCE_PER_TURN"
)

// CompareOp is the comparison operator used by numeric-threshold conditions.
type CompareOp string

const (
	CompareGTE CompareOp = ">="
	CompareGT  CompareOp = ">"
	CompareLTE CompareOp = "<="
	CompareLT  CompareOp = "<"
	CompareEQ  CompareOp = "=="
)

// Action is a tagged-variant union of the script action kinds the runtime
// can execute.
type Action struct {
	Kind ActionKind `json:"kind" jsonschema:"required"`

	Target      Target      `json:"target,omitempty"`
	Amount      int         `json:"amount,omitempty"`
	Expiry      ExpiryScope `json:"expiry,omitempty"`
	Keyword     string      `json:"keyword,omitempty"`
	Restriction string      `json:"restriction,omitempty"`
	AttackState string      `json:"attackState,omitempty"`
	FieldState  string      `json:"fieldState,omitempty"`
	Message     string      `json:"message,omitempty"`

	// Condition and Then/Else support CONDITIONAL_ACTION. Then also
	// carries the continuation for a PENDING_* action: the actions to run
	// once the player's selection is known, with SELECTED bound to it.
	Condition *Condition `json:"condition,omitempty"`
	Then      []Action   `json:"then,omitempty"`
	Else      []Action   `json:"else,omitempty"`

	// Filter/MinSelect/MaxSelect/Optional describe the prompt a PENDING_*
	// action opens: Filter computes the candidate set from live match
	// state, MinSelect/MaxSelect bound the selection size, and Optional
	// allows the acting player to decline entirely. Message is the prompt
	// text shown to the player.
	Filter    CandidateFilter `json:"filter,omitempty"`
	MinSelect int             `json:"minSelect,omitempty"`
	MaxSelect int             `json:"maxSelect,omitempty"`
	Optional  bool            `json:"optional,omitempty"`
}

// ActionKind discriminates Action's variant.
type ActionKind string

const (
	ActionAttachDON      ActionKind = "ATTACH_DON"
	ActionModifyPower    ActionKind = "MODIFY_POWER"
	ActionDrawCards      ActionKind = "DRAW_CARDS"
	ActionLifeToHand     ActionKind = "LIFE_TO_HAND"
	ActionKOCharacter    ActionKind = "KO_CHARACTER"
	ActionBounceToHand   ActionKind = "BOUNCE_TO_HAND"
	ActionGrantKeyword   ActionKind = "GRANT_KEYWORD"
	ActionRestSelf       ActionKind = "REST_SELF"
	ActionSetRestriction ActionKind = "SET_RESTRICTION"
	ActionAddAttackState ActionKind = "ADD_ATTACK_STATE"
	ActionAddFieldState  ActionKind = "ADD_FIELD_STATE"
	ActionReviveSelf     ActionKind = "REVIVE_SELF"
	ActionSetOncePerTurn ActionKind = "SET_ONCE_PER_TURN"
	ActionLog            ActionKind = "LOG"
	ActionConditional    ActionKind = "CONDITIONAL_ACTION"

	// PENDING_* actions suspend script execution until the acting player
	// answers an interactive prompt over a candidate set computed by
	// Filter. ExecuteActions returns a Suspension describing the prompt;
	// the engine resumes the script's Then continuation once the
	// selection is known.
	ActionPendingSelectTarget    ActionKind = "PENDING_SELECT_TARGET"
	ActionPendingKOTarget        ActionKind = "PENDING_KO_TARGET"
	ActionPendingAttachDON       ActionKind = "PENDING_ATTACH_DON"
	ActionPendingSearch          ActionKind = "PENDING_SEARCH"
	ActionPendingSearchPlay      ActionKind = "PENDING_SEARCH_PLAY"
	ActionPendingPlayFromHand    ActionKind = "PENDING_PLAY_FROM_HAND"
	ActionPendingDiscard         ActionKind = "PENDING_DISCARD"
	ActionPendingDiscardEvent    ActionKind = "PENDING_DISCARD_EVENT"
	ActionPendingRecoverFromTrash ActionKind = "PENDING_RECOVER_FROM_TRASH"
)

// pendingActionKinds is the set of ActionKind values that suspend
// execution and must carry a candidate Filter.
var pendingActionKinds = map[ActionKind]bool{
	ActionPendingSelectTarget:     true,
	ActionPendingKOTarget:         true,
	ActionPendingAttachDON:        true,
	ActionPendingSearch:           true,
	ActionPendingSearchPlay:       true,
	ActionPendingPlayFromHand:     true,
	ActionPendingDiscard:          true,
	ActionPendingDiscardEvent:     true,
	ActionPendingRecoverFromTrash: true,
}

// IsPending reports whether kind is one of the PENDING_* suspension kinds.
func (k ActionKind) IsPending() bool { return pendingActionKinds[k] }

// ZoneKind enumerates the card pools a CandidateFilter can draw from.
type ZoneKind string

const (
	ZoneOwnField      ZoneKind = "OWN_FIELD"
	ZoneOpponentField ZoneKind = "OPPONENT_FIELD"
	ZoneAllField      ZoneKind = "ALL_FIELD"
	ZoneOwnHand       ZoneKind = "OWN_HAND"
	ZoneOwnTrash      ZoneKind = "OWN_TRASH"
	ZoneOpponentTrash ZoneKind = "OPPONENT_TRASH"
	ZoneOwnDeckTopN   ZoneKind = "OWN_DECK_TOP_N"
)

// CandidateFilter narrows a zone's contents down to the instances a
// PENDING_* action may offer the acting player.
type CandidateFilter struct {
	Zone              ZoneKind `json:"zone,omitempty"`
	Count             int      `json:"count,omitempty"` // for OWN_DECK_TOP_N; 0 means the whole zone
	Category          string   `json:"category,omitempty"`
	Trait             string   `json:"trait,omitempty"`
	RequireKeyword    string   `json:"requireKeyword,omitempty"`
	ExcludeInstanceID string   `json:"excludeInstanceId,omitempty"`
	ExcludeCardNumber string   `json:"excludeCardNumber,omitempty"`
	MinCost           *int     `json:"minCost,omitempty"`
	MaxCost           *int     `json:"maxCost,omitempty"`
	MinPower          *int     `json:"minPower,omitempty"`
	MaxPower          *int     `json:"maxPower,omitempty"`
}

// Suspension describes an in-flight PENDING_* prompt: ExecuteActions
// returns one instead of completing when a script needs a player's
// interactive answer before it can continue.
type Suspension struct {
	Kind           ActionKind
	Candidates     []string
	MinSelect      int
	MaxSelect      int
	Optional       bool
	Message        string
	Continuation   []Action
	SourceInstance string
	ActingPlayer   string
}

// ScriptDefinition is one designer-authored card script: a set of hooks,
// each mapping a TriggerType to an ordered list of conditions (all must
// hold) and the actions to run when they do.
type ScriptDefinition struct {
	CardNumber string               `json:"cardNumber" jsonschema:"required"`
	Hooks      map[TriggerType]Hook `json:"hooks"`
}

// Hook is one trigger's guarded action list.
type Hook struct {
	Conditions []Condition `json:"conditions,omitempty"`
	Actions    []Action    `json:"actions"`
	Optional   bool        `json:"optional,omitempty"` // player may decline (ON_PLAY "may" effects)
}
