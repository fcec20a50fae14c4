// Package command defines the closed set of commands a match accepts and
// their replay-log encoding.
//
// Command is a sealed sum type: every kind has one struct, one Kind constant
// and one case in Encode and Decode. Adding a kind without touching the codec
// is caught by TestEveryKindRoundTrips.
package command

import (
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/player"
)

// Kind is the serialization discriminator of a command.
type Kind string

const (
	KindPlayCard       Kind = "PLAY_CARD"
	KindBuyCard        Kind = "BUY_CARD"
	KindDeploy         Kind = "DEPLOY"
	KindAssassinate    Kind = "ASSASSINATE"
	KindSupplant       Kind = "SUPPLANT"
	KindPlaceSpy       Kind = "PLACE_SPY"
	KindReturnSpy      Kind = "RETURN_SPY"
	KindReturnTroop    Kind = "RETURN_TROOP"
	KindMove           Kind = "MOVE"
	KindDevour         Kind = "DEVOUR"
	KindDevourSupplant Kind = "DEVOUR_SUPPLANT"
	KindPromote        Kind = "PROMOTE"
	KindEndTurn        Kind = "END_TURN"
)

// AllKinds lists every command kind.
func AllKinds() []Kind {
	return []Kind{
		KindPlayCard, KindBuyCard, KindDeploy, KindAssassinate, KindSupplant,
		KindPlaceSpy, KindReturnSpy, KindReturnTroop, KindMove, KindDevour,
		KindDevourSupplant, KindPromote, KindEndTurn,
	}
}

// Command is one player intent. Implementations live in this package only.
type Command interface {
	Kind() Kind
	// Actor is the seat issuing the command.
	Actor() int
	isCommand()
}

// PlayCard plays a card from the hand. HandIndex is the position the card
// had when the command was issued.
type PlayCard struct {
	Seat      int
	CardID    string
	HandIndex int
}

// BuyCard buys a card from the face-up market row.
type BuyCard struct {
	Seat        int
	CardID      string
	MarketIndex int
}

// Targeted commands carry SourceCardID when a played card granted the action.
// An empty SourceCardID means the action was started from the UI and pays its
// fixed cost.

// Deploy places a troop.
type Deploy struct {
	Seat         int
	Node         board.NodeID
	SourceCardID string
}

// Assassinate removes an enemy troop.
type Assassinate struct {
	Seat         int
	Node         board.NodeID
	SourceCardID string
}

// Supplant replaces an enemy troop with one of the actor's.
type Supplant struct {
	Seat         int
	Node         board.NodeID
	SourceCardID string
}

// PlaceSpy places a spy at a site.
type PlaceSpy struct {
	Seat         int
	Site         board.SiteID
	SourceCardID string
}

// ReturnSpy returns the spy of Color from Site.
type ReturnSpy struct {
	Seat         int
	Site         board.SiteID
	Color        player.Color
	SourceCardID string
}

// ReturnTroop returns the troop at Node.
type ReturnTroop struct {
	Seat         int
	Node         board.NodeID
	SourceCardID string
}

// Move moves an enemy troop from Source to Destination.
type Move struct {
	Seat         int
	Source       board.NodeID
	Destination  board.NodeID
	SourceCardID string
}

// Devour removes a hand card from the game. Skipped resolves the grant
// without devouring anything.
type Devour struct {
	Seat         int
	SourceCardID string
	TargetCardID string
	HandIndex    int
	Skipped      bool
}

// DevourSupplant is a devour immediately followed by a supplant, chosen as one
// unit so nothing mutates before both targets are known.
type DevourSupplant struct {
	Seat         int
	SourceCardID string
	TargetCardID string
	HandIndex    int
	Node         board.NodeID
}

// Promote moves a played or discarded card to the inner circle using a
// promotion credit earned by SourceCardID.
type Promote struct {
	Seat         int
	SourceCardID string
	TargetCardID string
}

// EndTurn ends the actor's turn.
type EndTurn struct {
	Seat int
}

func (PlayCard) Kind() Kind       { return KindPlayCard }
func (BuyCard) Kind() Kind        { return KindBuyCard }
func (Deploy) Kind() Kind         { return KindDeploy }
func (Assassinate) Kind() Kind    { return KindAssassinate }
func (Supplant) Kind() Kind       { return KindSupplant }
func (PlaceSpy) Kind() Kind       { return KindPlaceSpy }
func (ReturnSpy) Kind() Kind      { return KindReturnSpy }
func (ReturnTroop) Kind() Kind    { return KindReturnTroop }
func (Move) Kind() Kind           { return KindMove }
func (Devour) Kind() Kind         { return KindDevour }
func (DevourSupplant) Kind() Kind { return KindDevourSupplant }
func (Promote) Kind() Kind        { return KindPromote }
func (EndTurn) Kind() Kind        { return KindEndTurn }

func (c PlayCard) Actor() int       { return c.Seat }
func (c BuyCard) Actor() int        { return c.Seat }
func (c Deploy) Actor() int         { return c.Seat }
func (c Assassinate) Actor() int    { return c.Seat }
func (c Supplant) Actor() int       { return c.Seat }
func (c PlaceSpy) Actor() int       { return c.Seat }
func (c ReturnSpy) Actor() int      { return c.Seat }
func (c ReturnTroop) Actor() int    { return c.Seat }
func (c Move) Actor() int           { return c.Seat }
func (c Devour) Actor() int         { return c.Seat }
func (c DevourSupplant) Actor() int { return c.Seat }
func (c Promote) Actor() int        { return c.Seat }
func (c EndTurn) Actor() int        { return c.Seat }

func (PlayCard) isCommand()       {}
func (BuyCard) isCommand()        {}
func (Deploy) isCommand()         {}
func (Assassinate) isCommand()    {}
func (Supplant) isCommand()       {}
func (PlaceSpy) isCommand()       {}
func (ReturnSpy) isCommand()      {}
func (ReturnTroop) isCommand()    {}
func (Move) isCommand()           {}
func (Devour) isCommand()         {}
func (DevourSupplant) isCommand() {}
func (Promote) isCommand()        {}
func (EndTurn) isCommand()        {}
