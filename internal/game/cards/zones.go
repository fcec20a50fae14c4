package cards

import "github.com/undercity/undercity-server-go/internal/game/rng"

// Zones holds the card zones of one player. The top of the deck is index 0.
type Zones struct {
	Hand        []Card
	Deck        []Card
	Discard     []Card
	Played      []Card
	InnerCircle []Card
	Devoured    []Card
}

// Draw draws up to n cards into the hand. When the deck runs out the discard
// pile is shuffled back in through r; that shuffle is the only entropy a draw
// consumes.
func (z *Zones) Draw(n int, r *rng.SeededRandom) []Card {
	drawn := make([]Card, 0, n)
	for i := 0; i < n; i++ {
		if len(z.Deck) == 0 {
			if len(z.Discard) == 0 {
				break
			}
			z.Deck = append(z.Deck, z.Discard...)
			z.Discard = nil
			r.Shuffle(len(z.Deck), func(a, b int) { z.Deck[a], z.Deck[b] = z.Deck[b], z.Deck[a] })
		}
		card := z.Deck[0]
		z.Deck = z.Deck[1:]
		z.Hand = append(z.Hand, card)
		drawn = append(drawn, card)
	}
	return drawn
}

// IndexInHand returns the first hand index holding id, or -1.
func (z *Zones) IndexInHand(id string) int {
	for i, c := range z.Hand {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// RemoveFromHand removes and returns the card at index i.
func (z *Zones) RemoveFromHand(i int) (Card, bool) {
	if i < 0 || i >= len(z.Hand) {
		return Card{}, false
	}
	card := z.Hand[i]
	z.Hand = append(z.Hand[:i:i], z.Hand[i+1:]...)
	return card, true
}

// HasOtherInHand reports whether a hand card other than the one at index
// except shares aspect.
func (z *Zones) HasOtherInHand(aspect Aspect, except int) bool {
	if aspect == AspectNone {
		return false
	}
	for i, c := range z.Hand {
		if i != except && c.Aspect == aspect {
			return true
		}
	}
	return false
}

// IsPlayed reports whether id is in the played zone.
func (z *Zones) IsPlayed(id string) bool {
	for _, c := range z.Played {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Cleanup moves the hand and the played cards to the discard pile.
func (z *Zones) Cleanup() {
	z.Discard = append(z.Discard, z.Hand...)
	z.Discard = append(z.Discard, z.Played...)
	z.Hand = nil
	z.Played = nil
}

// Promote moves a played (or, failing that, discarded) card to the inner circle.
func (z *Zones) Promote(id string) bool {
	if card, ok := take(&z.Played, id); ok {
		z.InnerCircle = append(z.InnerCircle, card)
		return true
	}
	if card, ok := take(&z.Discard, id); ok {
		z.InnerCircle = append(z.InnerCircle, card)
		return true
	}
	return false
}

// Devour removes the hand card at index i from the game.
func (z *Zones) Devour(i int) (Card, bool) {
	card, ok := z.RemoveFromHand(i)
	if ok {
		z.Devoured = append(z.Devoured, card)
	}
	return card, ok
}

// HandIDs returns the ids of the hand in order.
func (z *Zones) HandIDs() []string {
	ids := make([]string, len(z.Hand))
	for i, c := range z.Hand {
		ids[i] = c.ID
	}
	return ids
}

// VictoryPoints sums deck VP over every owned card and inner-circle VP over
// the inner circle.
func (z *Zones) VictoryPoints() int {
	total := 0
	for _, zone := range [][]Card{z.Hand, z.Deck, z.Discard, z.Played} {
		for _, c := range zone {
			total += c.DeckVP
		}
	}
	for _, c := range z.InnerCircle {
		total += c.InnerCircleVP
	}
	return total
}

func take(zone *[]Card, id string) (Card, bool) {
	for i, c := range *zone {
		if c.ID == id {
			*zone = append((*zone)[:i:i], (*zone)[i+1:]...)
			return c, true
		}
	}
	return Card{}, false
}
