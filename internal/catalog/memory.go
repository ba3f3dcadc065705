package catalog

import (
	"context"

	"duelserver/internal/ruleserr"
)

// Source is the interface the rules engine depends on, satisfied by both
// the HTTP Client and Memory fixtures used in tests.
type Source interface {
	GetCard(ctx context.Context, cardNumber string) (*CardDefinition, error)
	ListCards(ctx context.Context, cardNumbers []string) (map[string]*CardDefinition, error)
	GetDeck(ctx context.Context, deckRef string) (*DeckList, error)
}

// Memory is a fixed, in-memory catalog used by tests and local development
// so the rules engine never has to hit a real collaborator in unit tests.
type Memory struct {
	Cards map[string]*CardDefinition
	Decks map[string]*DeckList
}

// NewMemory constructs an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{
		Cards: make(map[string]*CardDefinition),
		Decks: make(map[string]*DeckList),
	}
}

func (m *Memory) GetCard(_ context.Context, cardNumber string) (*CardDefinition, error) {
	def, ok := m.Cards[cardNumber]
	if !ok {
		return nil, ruleserr.Rules(ruleserr.CodeInvalidSelection, "unknown card number: "+cardNumber)
	}
	return def, nil
}

func (m *Memory) ListCards(ctx context.Context, cardNumbers []string) (map[string]*CardDefinition, error) {
	out := make(map[string]*CardDefinition, len(cardNumbers))
	for _, num := range cardNumbers {
		def, err := m.GetCard(ctx, num)
		if err != nil {
			return nil, err
		}
		out[num] = def
	}
	return out, nil
}

func (m *Memory) GetDeck(_ context.Context, deckRef string) (*DeckList, error) {
	deck, ok := m.Decks[deckRef]
	if !ok {
		return nil, ruleserr.Rules(ruleserr.CodeInvalidSelection, "unknown deck reference: "+deckRef)
	}
	return deck, nil
}

var _ Source = (*Client)(nil)
var _ Source = (*Memory)(nil)
