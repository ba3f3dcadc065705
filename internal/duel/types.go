// Package duel implements the Rules Engine and Attack Resolution Machine:
// the per-match authoritative state machine for phases, DON economy,
// combat, and the pending-effect protocol, driven by a per-room actor.
//
// Grounded on the teacher's internal/state ownership-by-id convention
// (arena ownership rather than pointer graphs, per the source's own design
// notes) and on hub.go's single-writer-per-world concurrency shape,
// generalized here to one writer per Match instead of one writer for the
// whole server.
package duel

import (
	"time"

	"duelserver/internal/catalog"
	"duelserver/internal/effectsrt"
	"duelserver/logging"
)

// DONPowerIncrement is the power bonus granted per attached DON.
const DONPowerIncrement = 1000

// FixedDONSupply is the total DON available to each player across a match.
const FixedDONSupply = 10

// Phase enumerates the turn's phase machine.
type Phase string

const (
	PhaseRefresh Phase = "refresh"
	PhaseDraw    Phase = "draw"
	PhaseDON     Phase = "don"
	PhaseMain    Phase = "main"
	PhaseBattle  Phase = "battle"
	PhaseEnd     Phase = "end"
)

// BattleStep enumerates the Attack Resolution Machine's sub-states.
type BattleStep string

const (
	BattleStepNone    BattleStep = "none"
	BattleStepBlock   BattleStep = "block"
	BattleStepCounter BattleStep = "counter"
	BattleStepDamage  BattleStep = "damage"
)

// PendingEffectKind enumerates the interaction kinds a pending effect can
// prompt for.
type PendingEffectKind string

const (
	PendingSearchAndSelectToHand PendingEffectKind = "search-and-select-to-hand"
	PendingSelectTarget          PendingEffectKind = "select-target"
	PendingAttachDON             PendingEffectKind = "attach-don"
	PendingDiscardFromHand       PendingEffectKind = "discard-from-hand"
	PendingRecoverFromTrash      PendingEffectKind = "recover-from-trash"
	PendingPlayFromHand          PendingEffectKind = "play-from-hand"
	PendingSearchAndPlay         PendingEffectKind = "search-and-play"
)

// CardInstance is the immutable-per-instance identity of a card in play.
// Card metadata (power/cost/keywords) is looked up by CardNumber in the
// catalog; the instance only carries identity and ownership.
type CardInstance struct {
	InstanceID string
	CardNumber string
	Owner      int // 0 or 1, index into Match.Players
}

// Slot is one occupied position on the field: Leader, a Character, or the
// Stage. Empty character slots simply don't exist in PlayerState.Characters.
type Slot struct {
	Instance          *CardInstance
	AttachedDON       int
	Rested            bool
	CanAttackThisTurn bool
}

// ActiveEffect is a registered delayed-expiry undo, produced by a
// MODIFY_POWER or GRANT_KEYWORD action carrying a non-permanent expiry
// scope.
type ActiveEffect struct {
	Scope      effectsrt.ExpiryScope
	InstanceID string
	PowerDelta int    // 0 if this entry is a keyword grant, not a power mod
	Keyword    string // empty if this entry is a power mod, not a keyword grant
}

// StagedCounterEntry records one counter card staged during the Counter
// step, along with everything needed to perfectly reverse it on unstage.
type StagedCounterEntry struct {
	CardInstanceID string
	Card           *CardInstance // nil for a zero-card manual power entry
	DONSpent       int
	PowerDeltas    map[string]int // instance-id -> delta applied by this stage
	ManualDelta    int            // non-card manual power addition, reversible too
}

// PendingEffect is the single outstanding scripted interaction. Only
// Owner may resolve or skip it.
type PendingEffect struct {
	Kind          PendingEffectKind
	Owner         int
	Candidates    []string
	MaxSelect     int
	MinSelect     int
	Optional      bool
	Message       string
	Continuation  []effectsrt.Action
	SourceInstance string
	ActingPlayer   int // the player whose turn/script opened this prompt
}

// PendingTrigger is the orthogonal interaction opened by revealing a
// TRIGGER-bearing Life card.
type PendingTrigger struct {
	Owner      int // the defender who must decide
	CardNumber string
	InstanceID string
}

// PlayerState is one side of a Match.
type PlayerState struct {
	Leader     Slot
	Characters []*Slot
	Stage      *Slot

	Deck  []*CardInstance // top of deck is the tail
	Hand  []*CardInstance
	Trash []*CardInstance
	Life  []*CardInstance // top of life is the last element; face-down

	RemovedFromGame []*CardInstance

	DONDeck   int
	DONActive int
	DONRested int

	TempPowerMods map[string]int // instance-id -> signed bonus, cleared at Refresh
	Restrictions  map[string]bool
	Scratchpad    map[string]bool // once-per-turn keys

	DisplayName string
}

// instances returns every CardInstance this player currently owns,
// across every zone, for invariant checking and snapshotting.
func (p *PlayerState) instances() []*CardInstance {
	var out []*CardInstance
	if p.Leader.Instance != nil {
		out = append(out, p.Leader.Instance)
	}
	for _, s := range p.Characters {
		out = append(out, s.Instance)
	}
	if p.Stage != nil && p.Stage.Instance != nil {
		out = append(out, p.Stage.Instance)
	}
	out = append(out, p.Deck...)
	out = append(out, p.Hand...)
	out = append(out, p.Trash...)
	out = append(out, p.Life...)
	out = append(out, p.RemovedFromGame...)
	return out
}

// PendingAttack captures the snapshotted state of a declared attack as it
// moves through the Attack Resolution Machine.
type PendingAttack struct {
	AttackerPlayer   int
	AttackerInstance string // empty string means the Leader
	TargetPlayer     int
	TargetInstance   string // empty string means the Leader

	AttackerPower int
	TargetPower   int

	DoubleAttack  bool
	Banish        bool
	IgnoreBlocker bool

	BlockerInstance string // set once a blocker redirects the target
}

// Match is the authoritative state for one duel, owned exclusively by its
// actor goroutine.
type Match struct {
	RoomID  string
	Players [2]*PlayerState

	Phase              Phase
	TurnNumber         int
	CurrentPlayerIndex int

	BattleStep     BattleStep
	PendingAttack  *PendingAttack
	StagedCounters []StagedCounterEntry
	PendingCounterPower int

	PendingEffect  *PendingEffect
	PendingTrigger *PendingTrigger

	ActiveEffects []ActiveEffect

	Winner *int

	Registry *effectsrt.Registry
	Catalog  map[string]*catalog.CardDefinition

	// triggers maps TriggerType -> instance-id -> owner-player-index, the
	// Effect Runtime registry described in SPEC_FULL.md §4.4. A script is
	// "registered" for a hook while this map contains its instance id.
	triggers map[effectsrt.TriggerType]map[string]int

	// targetBinding holds the current hook-call's ATTACKER/TARGET/
	// BATTLE_TARGET/SELECTED bindings, valid only while a hook or a pending
	// continuation is executing.
	targetBinding resolutionContext

	ActionLog []string

	CreatedAt time.Time

	// Events is the telemetry sink for this match's structured logging
	// (logging/duel, logging/don, logging/script payloads). Nil-safe: a
	// Match constructed without one (e.g. in unit tests) simply emits
	// nothing. Set by the gateway right after construction, per
	// SPEC_FULL.md's per-match structured logging requirement.
	Events logging.Publisher
}

// resolutionContext captures the transient target bindings a single hook
// invocation or pending-effect continuation resolves SELECTED/
// ALL_SELECTED/BATTLE_TARGET/ATTACKER/TARGET against.
type resolutionContext struct {
	selected []string
	attacker string
	target   string
}

// otherPlayer returns the index of the opponent of p.
func otherPlayer(p int) int { return 1 - p }
