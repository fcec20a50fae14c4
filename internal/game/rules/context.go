package rules

import (
	"github.com/undercity/undercity-server-go/internal/game/cards"
)

// PromotionCredit records how many promotions a played card earned.
type PromotionCredit struct {
	SourceCardID string
	Count        int
}

// Grant is an action a played card paid for and that has not been used yet.
// Commands carrying a card id consume a grant instead of paying the fixed cost.
// Then is the follow-up the effect chains into, empty when there is none.
type Grant struct {
	CardID    string
	Effect    cards.EffectKind
	Then      cards.EffectKind
	Remaining int
}

// TurnContext is the ephemeral per-turn state. A fresh one is created when a
// turn starts and dropped when it ends. Credits are kept in slices so their
// order never depends on map iteration.
type TurnContext struct {
	Seat        int
	Turn        int
	aspectPlays map[cards.Aspect]int
	promotions  []PromotionCredit
	grants      []Grant
}

// NewTurnContext creates the context for seat's turn.
func NewTurnContext(seat, turn int) *TurnContext {
	return &TurnContext{
		Seat:        seat,
		Turn:        turn,
		aspectPlays: make(map[cards.Aspect]int),
	}
}

// FocusEligible snapshots whether a card about to be played from handIndex
// satisfies Focus: another card of its aspect was already played this turn,
// or a different card of the aspect is still in hand. It must be called
// before the card leaves the hand.
func (tc *TurnContext) FocusEligible(card cards.Card, zones *cards.Zones, handIndex int) bool {
	if card.Aspect == cards.AspectNone {
		return false
	}
	if tc.aspectPlays[card.Aspect] > 0 {
		return true
	}
	return zones.HasOtherInHand(card.Aspect, handIndex)
}

// RecordPlay counts a played card's aspect.
func (tc *TurnContext) RecordPlay(aspect cards.Aspect) {
	if aspect == cards.AspectNone {
		return
	}
	tc.aspectPlays[aspect]++
}

// AspectPlays returns how many cards of aspect were played this turn.
func (tc *TurnContext) AspectPlays(aspect cards.Aspect) int {
	return tc.aspectPlays[aspect]
}

// AddPromotionCredit records count pending promotions earned by sourceCardID.
func (tc *TurnContext) AddPromotionCredit(sourceCardID string, count int) {
	if count <= 0 {
		return
	}
	for i := range tc.promotions {
		if tc.promotions[i].SourceCardID == sourceCardID {
			tc.promotions[i].Count += count
			return
		}
	}
	tc.promotions = append(tc.promotions, PromotionCredit{SourceCardID: sourceCardID, Count: count})
}

// PromotionCredits returns the total number of unused promotions.
func (tc *TurnContext) PromotionCredits() int {
	total := 0
	for _, c := range tc.promotions {
		total += c.Count
	}
	return total
}

// PendingPromotions returns a copy of the unused credits, oldest first.
func (tc *TurnContext) PendingPromotions() []PromotionCredit {
	out := make([]PromotionCredit, 0, len(tc.promotions))
	for _, c := range tc.promotions {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	return out
}

// ConsumePromotionCredit uses one promotion credit. When sourceCardID is
// empty the oldest credit is used.
func (tc *TurnContext) ConsumePromotionCredit(sourceCardID string) (string, bool) {
	for i := range tc.promotions {
		c := &tc.promotions[i]
		if c.Count == 0 || (sourceCardID != "" && c.SourceCardID != sourceCardID) {
			continue
		}
		c.Count--
		return c.SourceCardID, true
	}
	return "", false
}

// AddGrant records that cardID paid for count uses of effect.
func (tc *TurnContext) AddGrant(cardID string, effect cards.EffectKind, count int) {
	tc.AddChainedGrant(cardID, effect, "", count)
}

// AddChainedGrant records count uses of effect followed by then.
func (tc *TurnContext) AddChainedGrant(cardID string, effect, then cards.EffectKind, count int) {
	if count <= 0 {
		return
	}
	for i := range tc.grants {
		g := &tc.grants[i]
		if g.CardID == cardID && g.Effect == effect && g.Then == then {
			g.Remaining += count
			return
		}
	}
	tc.grants = append(tc.grants, Grant{CardID: cardID, Effect: effect, Then: then, Remaining: count})
}

// HasGrant reports whether cardID still grants effect, chained or not.
func (tc *TurnContext) HasGrant(cardID string, effect cards.EffectKind) bool {
	return tc.find(cardID, effect, nil) >= 0
}

// HasChainedGrant reports whether cardID still grants effect followed by then.
func (tc *TurnContext) HasChainedGrant(cardID string, effect, then cards.EffectKind) bool {
	return tc.find(cardID, effect, &then) >= 0
}

// ConsumeGrant uses one grant of effect from cardID, chained or not.
func (tc *TurnContext) ConsumeGrant(cardID string, effect cards.EffectKind) bool {
	return tc.consume(tc.find(cardID, effect, nil))
}

// ConsumeChainedGrant uses one grant of effect followed by then.
func (tc *TurnContext) ConsumeChainedGrant(cardID string, effect, then cards.EffectKind) bool {
	return tc.consume(tc.find(cardID, effect, &then))
}

func (tc *TurnContext) find(cardID string, effect cards.EffectKind, then *cards.EffectKind) int {
	for i, g := range tc.grants {
		if g.CardID != cardID || g.Effect != effect || g.Remaining <= 0 {
			continue
		}
		if then != nil && g.Then != *then {
			continue
		}
		return i
	}
	return -1
}

func (tc *TurnContext) consume(i int) bool {
	if i < 0 {
		return false
	}
	tc.grants[i].Remaining--
	return true
}

// Grants returns a copy of the outstanding grants.
func (tc *TurnContext) Grants() []Grant {
	out := make([]Grant, 0, len(tc.grants))
	for _, g := range tc.grants {
		if g.Remaining > 0 {
			out = append(out, g)
		}
	}
	return out
}
