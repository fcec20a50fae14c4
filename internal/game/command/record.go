package command

import (
	"errors"
	"fmt"

	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/player"
)

// ErrUnknownKind is returned when a record carries a kind this build does
// not know.
var ErrUnknownKind = errors.New("unknown command kind")

// Record is the replay-log form of a command. Stable ids are preferred; the
// Index fields are positional fallbacks used when an id no longer resolves.
type Record struct {
	Seq  int  `json:"seq"`
	Seat int  `json:"seat"`
	Kind Kind `json:"kind"`

	// CardID is the played, bought or granting card.
	CardID string `json:"card_id,omitempty"`
	// Index is CardID's hand or market position at issue time.
	Index int `json:"index,omitempty"`
	// TargetCardID is the devoured or promoted card.
	TargetCardID string `json:"target_card_id,omitempty"`
	// TargetIndex is TargetCardID's hand position at issue time.
	TargetIndex int `json:"target_index,omitempty"`

	Node       int    `json:"node,omitempty"`
	TargetNode int    `json:"target_node,omitempty"`
	Site       int    `json:"site,omitempty"`
	Color      string `json:"color,omitempty"`
	Skipped    bool   `json:"skipped,omitempty"`
}

// Encode converts cmd into a record with sequence number seq.
func Encode(seq int, cmd Command) Record {
	rec := Record{Seq: seq, Seat: cmd.Actor(), Kind: cmd.Kind()}
	switch c := cmd.(type) {
	case PlayCard:
		rec.CardID, rec.Index = c.CardID, c.HandIndex
	case BuyCard:
		rec.CardID, rec.Index = c.CardID, c.MarketIndex
	case Deploy:
		rec.CardID, rec.Node = c.SourceCardID, int(c.Node)
	case Assassinate:
		rec.CardID, rec.Node = c.SourceCardID, int(c.Node)
	case Supplant:
		rec.CardID, rec.Node = c.SourceCardID, int(c.Node)
	case PlaceSpy:
		rec.CardID, rec.Site = c.SourceCardID, int(c.Site)
	case ReturnSpy:
		rec.CardID, rec.Site, rec.Color = c.SourceCardID, int(c.Site), c.Color.String()
	case ReturnTroop:
		rec.CardID, rec.Node = c.SourceCardID, int(c.Node)
	case Move:
		rec.CardID, rec.Node, rec.TargetNode = c.SourceCardID, int(c.Source), int(c.Destination)
	case Devour:
		rec.CardID, rec.TargetCardID, rec.TargetIndex, rec.Skipped = c.SourceCardID, c.TargetCardID, c.HandIndex, c.Skipped
	case DevourSupplant:
		rec.CardID, rec.TargetCardID, rec.TargetIndex, rec.Node = c.SourceCardID, c.TargetCardID, c.HandIndex, int(c.Node)
	case Promote:
		rec.CardID, rec.TargetCardID = c.SourceCardID, c.TargetCardID
	case EndTurn:
	}
	return rec
}

// Decode rebuilds the command described by rec. It does not consult any
// world state; hydration against a live match happens in the replay manager.
func Decode(rec Record) (Command, error) {
	switch rec.Kind {
	case KindPlayCard:
		return PlayCard{Seat: rec.Seat, CardID: rec.CardID, HandIndex: rec.Index}, nil
	case KindBuyCard:
		return BuyCard{Seat: rec.Seat, CardID: rec.CardID, MarketIndex: rec.Index}, nil
	case KindDeploy:
		return Deploy{Seat: rec.Seat, Node: board.NodeID(rec.Node), SourceCardID: rec.CardID}, nil
	case KindAssassinate:
		return Assassinate{Seat: rec.Seat, Node: board.NodeID(rec.Node), SourceCardID: rec.CardID}, nil
	case KindSupplant:
		return Supplant{Seat: rec.Seat, Node: board.NodeID(rec.Node), SourceCardID: rec.CardID}, nil
	case KindPlaceSpy:
		return PlaceSpy{Seat: rec.Seat, Site: board.SiteID(rec.Site), SourceCardID: rec.CardID}, nil
	case KindReturnSpy:
		color, err := player.ParseColor(rec.Color)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Seq, err)
		}
		return ReturnSpy{Seat: rec.Seat, Site: board.SiteID(rec.Site), Color: color, SourceCardID: rec.CardID}, nil
	case KindReturnTroop:
		return ReturnTroop{Seat: rec.Seat, Node: board.NodeID(rec.Node), SourceCardID: rec.CardID}, nil
	case KindMove:
		return Move{
			Seat:         rec.Seat,
			Source:       board.NodeID(rec.Node),
			Destination:  board.NodeID(rec.TargetNode),
			SourceCardID: rec.CardID,
		}, nil
	case KindDevour:
		return Devour{
			Seat:         rec.Seat,
			SourceCardID: rec.CardID,
			TargetCardID: rec.TargetCardID,
			HandIndex:    rec.TargetIndex,
			Skipped:      rec.Skipped,
		}, nil
	case KindDevourSupplant:
		return DevourSupplant{
			Seat:         rec.Seat,
			SourceCardID: rec.CardID,
			TargetCardID: rec.TargetCardID,
			HandIndex:    rec.TargetIndex,
			Node:         board.NodeID(rec.Node),
		}, nil
	case KindPromote:
		return Promote{Seat: rec.Seat, SourceCardID: rec.CardID, TargetCardID: rec.TargetCardID}, nil
	case KindEndTurn:
		return EndTurn{Seat: rec.Seat}, nil
	default:
		return nil, fmt.Errorf("record %d: %w %q", rec.Seq, ErrUnknownKind, rec.Kind)
	}
}
