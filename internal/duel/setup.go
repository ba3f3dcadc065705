package duel

import (
	"math/rand"
	"time"

	"duelserver/internal/catalog"
	"duelserver/internal/effectsrt"

	"github.com/google/uuid"
)

// startingHandSize is the number of cards drawn into hand during setup,
// before either player's first turn begins.
const startingHandSize = 5

// NewMatch constructs a fresh Match for roomID from each side's resolved
// deck list and the shared card catalog, shuffles each deck with rng, deals
// Life and an opening hand, and advances through turn 1's server-driven
// phases so the match is immediately ready for player 0's Main phase.
//
// Callers pass a seeded *rand.Rand (rather than calling rand.Int() against
// the package-level source directly) so shuffling stays swappable and
// reproducible in tests.
func NewMatch(roomID string, registry *effectsrt.Registry, defs map[string]*catalog.CardDefinition, a, b catalog.DeckList, rng *rand.Rand) *Match {
	m := &Match{
		RoomID:             roomID,
		Players:            [2]*PlayerState{buildPlayerState(defs, a, rng, 0), buildPlayerState(defs, b, rng, 1)},
		Phase:              PhaseMain,
		TurnNumber:         1,
		CurrentPlayerIndex: 0,
		BattleStep:         BattleStepNone,
		Registry:           registry,
		Catalog:            defs,
		triggers:           make(map[effectsrt.TriggerType]map[string]int),
		CreatedAt:          time.Now(),
	}
	for idx, ps := range m.Players {
		if ps.Leader.Instance != nil {
			m.registerInstance(ps.Leader.Instance.CardNumber, ps.Leader.Instance.InstanceID, idx)
		}
	}
	// Turn 1 / player 0 never draws and draws no Life-threatening state, so
	// this first advancePhase call cannot report a deck-out.
	_ = m.advancePhase()
	return m
}

func buildPlayerState(defs map[string]*catalog.CardDefinition, dl catalog.DeckList, rng *rand.Rand, owner int) *PlayerState {
	ps := &PlayerState{
		TempPowerMods: make(map[string]int),
		Restrictions:  make(map[string]bool),
		Scratchpad:    make(map[string]bool),
		DONDeck:       FixedDONSupply,
	}

	leaderDef := defs[dl.LeaderCard]
	if leaderDef != nil {
		ps.Leader.Instance = &CardInstance{InstanceID: uuid.NewString(), CardNumber: dl.LeaderCard, Owner: owner}
	}

	deck := make([]*CardInstance, 0, len(dl.Cards))
	for _, num := range dl.Cards {
		deck = append(deck, &CardInstance{InstanceID: uuid.NewString(), CardNumber: num, Owner: owner})
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	takeTop := func(n int) []*CardInstance {
		if n > len(deck) {
			n = len(deck)
		}
		start := len(deck) - n
		taken := append([]*CardInstance(nil), deck[start:]...)
		deck = deck[:start]
		return taken
	}

	lifeCount := 0
	if leaderDef != nil {
		lifeCount = leaderDef.Life
	}
	ps.Life = append(ps.Life, takeTop(lifeCount)...)
	ps.Hand = append(ps.Hand, takeTop(startingHandSize)...)
	ps.Deck = deck
	return ps
}
