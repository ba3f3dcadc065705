package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemoryGetCardUnknown(t *testing.T) {
	m := NewMemory()
	_, err := m.GetCard(context.Background(), "OP01-001")
	require.Error(t, err)
}

func TestMemoryListCardsDedupesAndResolves(t *testing.T) {
	m := NewMemory()
	m.Cards["OP01-001"] = &CardDefinition{CardNumber: "OP01-001", Category: "LEADER", Life: 5}
	m.Cards["OP01-002"] = &CardDefinition{CardNumber: "OP01-002", Category: "CHARACTER", Power: 3000}

	out, err := m.ListCards(context.Background(), []string{"OP01-001", "OP01-002", "OP01-001"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, 5, out["OP01-001"].Life)
}

func TestMemoryGetDeck(t *testing.T) {
	m := NewMemory()
	m.Decks["starter-red"] = &DeckList{DeckRef: "starter-red", LeaderCard: "OP01-001", Cards: []string{"OP01-002"}}

	deck, err := m.GetDeck(context.Background(), "starter-red")
	require.NoError(t, err)
	require.Equal(t, "OP01-001", deck.LeaderCard)

	_, err = m.GetDeck(context.Background(), "missing")
	require.Error(t, err)
}
