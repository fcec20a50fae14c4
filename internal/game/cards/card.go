// Package cards models cards, their effects and a player's card zones.
package cards

import "fmt"

// Aspect is a card's thematic category, used for Focus matching.
type Aspect string

const (
	AspectNone      Aspect = ""
	AspectAmbition  Aspect = "AMBITION"
	AspectConquest  Aspect = "CONQUEST"
	AspectGuile     Aspect = "GUILE"
	AspectMalice    Aspect = "MALICE"
	AspectObedience Aspect = "OBEDIENCE"
)

// EffectKind identifies what a card effect does.
type EffectKind string

const (
	// Immediate effects resolve while the card is played.
	EffectGainPower     EffectKind = "GAIN_POWER"
	EffectGainInfluence EffectKind = "GAIN_INFLUENCE"
	EffectDraw          EffectKind = "DRAW"
	EffectPromote       EffectKind = "PROMOTE"

	// Targeted effects need player input and are resolved through targeting.
	EffectDeploy      EffectKind = "DEPLOY"
	EffectAssassinate EffectKind = "ASSASSINATE"
	EffectSupplant    EffectKind = "SUPPLANT"
	EffectPlaceSpy    EffectKind = "PLACE_SPY"
	EffectReturnSpy   EffectKind = "RETURN_SPY"
	EffectReturnTroop EffectKind = "RETURN_TROOP"
	EffectMove        EffectKind = "MOVE"
	EffectDevour      EffectKind = "DEVOUR"
)

// IsTargeted reports whether the effect needs a target selection.
func (k EffectKind) IsTargeted() bool {
	switch k {
	case EffectDeploy, EffectAssassinate, EffectSupplant, EffectPlaceSpy,
		EffectReturnSpy, EffectReturnTroop, EffectMove, EffectDevour:
		return true
	default:
		return false
	}
}

// Effect is one clause of a card's text.
type Effect struct {
	Kind   EffectKind
	Amount int
	// Then is resolved only after this effect resolved, e.g.
	// "devour a card in your hand; if you do, supplant a troop".
	Then *Effect
}

func (e Effect) String() string {
	s := string(e.Kind)
	if e.Amount > 1 {
		s = fmt.Sprintf("%s x%d", s, e.Amount)
	}
	if e.Then != nil {
		s += " then " + e.Then.String()
	}
	return s
}

// Card is an immutable card definition. Hands and decks hold copies.
type Card struct {
	ID            string
	Name          string
	Aspect        Aspect
	Cost          int
	DeckVP        int
	InnerCircleVP int
	Effects       []Effect
	// FocusEffects resolve only if Focus is satisfied when the card is played.
	FocusEffects []Effect
}

// HasFocus reports whether the card carries a Focus clause.
func (c Card) HasFocus() bool {
	return len(c.FocusEffects) > 0
}
