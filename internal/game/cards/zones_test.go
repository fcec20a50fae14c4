package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undercity/undercity-server-go/internal/game/rng"
)

func deckOf(ids ...string) []Card {
	out := make([]Card, len(ids))
	for i, id := range ids {
		out[i] = Card{ID: id}
	}
	return out
}

func TestDrawFromDeckConsumesNoEntropy(t *testing.T) {
	r := rng.New(3)
	z := &Zones{Deck: deckOf("a", "b", "c")}

	drawn := z.Draw(2, r)

	assert.Len(t, drawn, 2)
	assert.Equal(t, []string{"a", "b"}, z.HandIDs())
	assert.Equal(t, int64(0), r.Calls())
}

func TestDrawReshufflesDiscard(t *testing.T) {
	r := rng.New(3)
	z := &Zones{Deck: deckOf("a"), Discard: deckOf("x", "y", "z")}

	drawn := z.Draw(3, r)

	require.Len(t, drawn, 3)
	assert.Equal(t, "a", drawn[0].ID)
	assert.Equal(t, int64(2), r.Calls())
	assert.Empty(t, z.Discard)
	assert.Len(t, z.Deck, 1)
}

func TestDrawStopsWhenEverythingIsEmpty(t *testing.T) {
	z := &Zones{Deck: deckOf("a")}
	drawn := z.Draw(5, rng.New(1))
	assert.Len(t, drawn, 1)
}

func TestHasOtherInHandExcludesSelf(t *testing.T) {
	z := &Zones{Hand: []Card{{ID: "a", Aspect: AspectGuile}, {ID: "b", Aspect: AspectMalice}}}

	assert.False(t, z.HasOtherInHand(AspectGuile, 0))
	z.Hand = append(z.Hand, Card{ID: "c", Aspect: AspectGuile})
	assert.True(t, z.HasOtherInHand(AspectGuile, 0))
	assert.False(t, z.HasOtherInHand(AspectNone, 0))
}

func TestCleanupAndPromote(t *testing.T) {
	z := &Zones{Hand: deckOf("h"), Played: deckOf("p1", "p2")}

	require.True(t, z.Promote("p2"))
	z.Cleanup()

	assert.Empty(t, z.Hand)
	assert.Empty(t, z.Played)
	assert.Equal(t, []Card{{ID: "h"}, {ID: "p1"}}, z.Discard)
	assert.Equal(t, []Card{{ID: "p2"}}, z.InnerCircle)
	assert.True(t, z.Promote("p1"), "promotion falls back to discard")
	assert.False(t, z.Promote("missing"))
}

func TestDevour(t *testing.T) {
	z := &Zones{Hand: deckOf("a", "b")}
	card, ok := z.Devour(1)
	require.True(t, ok)
	assert.Equal(t, "b", card.ID)
	assert.Equal(t, []string{"a"}, z.HandIDs())
	assert.Len(t, z.Devoured, 1)

	_, ok = z.Devour(4)
	assert.False(t, ok)
}

func TestVictoryPoints(t *testing.T) {
	z := &Zones{
		Deck:        []Card{{ID: "a", DeckVP: 1}},
		Discard:     []Card{{ID: "b", DeckVP: 2}},
		InnerCircle: []Card{{ID: "c", DeckVP: 1, InnerCircleVP: 4}},
	}
	assert.Equal(t, 7, z.VictoryPoints())
}

func TestStaticDatabase(t *testing.T) {
	db := NewStaticDatabase()

	assert.Len(t, db.StarterDeck(), 10)
	for _, id := range db.MarketDeck() {
		card, ok := db.Card(id)
		require.True(t, ok, id)
		assert.Greater(t, card.Cost, 0, id)
	}
	ghoul, ok := db.Card("ghoul")
	require.True(t, ok)
	require.NotNil(t, ghoul.Effects[0].Then)
	assert.Equal(t, EffectSupplant, ghoul.Effects[0].Then.Kind)
}
