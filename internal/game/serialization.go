package game

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/undercity/undercity-server-go/internal/game/cards"
	"golang.org/x/crypto/blake2b"
)

// Checkpoint captures what a replay must reproduce at a turn boundary.
type Checkpoint struct {
	Turn       int        `json:"turn"`
	ActiveSeat int        `json:"active_seat"`
	RNGCalls   int64      `json:"rng_calls"`
	Hands      [][]string `json:"hands"`
	Digest     string     `json:"digest"`
}

// Equal reports whether two checkpoints describe the same state.
func (c Checkpoint) Equal(other Checkpoint) bool {
	if c.Turn != other.Turn || c.ActiveSeat != other.ActiveSeat ||
		c.RNGCalls != other.RNGCalls || c.Digest != other.Digest ||
		len(c.Hands) != len(other.Hands) {
		return false
	}
	for i := range c.Hands {
		if strings.Join(c.Hands[i], ",") != strings.Join(other.Hands[i], ",") {
			return false
		}
	}
	return true
}

// PlayerView is the serializable state of one seat.
type PlayerView struct {
	Seat          int
	Name          string
	Color         string
	Power         int
	Influence     int
	VictoryPoints int
	Troops        int
	Spies         int
	Trophies      int
	Hand          []string
	Deck          []string
	Discard       []string
	Played        []string
	InnerCircle   []string
	Devoured      []string
}

// SiteView is the serializable state of one site.
type SiteView struct {
	ID              int
	Name            string
	Owner           string
	HasTotalControl bool
	Spies           []string
}

// MatchView is a point-in-time copy of the whole match.
type MatchView struct {
	Phase      string
	Turn       int
	Round      int
	ActiveSeat int
	RNGCalls   int64
	Players    []PlayerView
	Occupants  []string
	Sites      []SiteView
	Market     []string
	MarketDeck []string
}

// View snapshots the match.
func (m *Match) View() MatchView {
	v := MatchView{
		Phase:      m.phase.String(),
		Turn:       m.turns.TurnNumber(),
		Round:      m.turns.Round(),
		ActiveSeat: m.turns.ActiveSeat(),
		RNGCalls:   m.rng.Calls(),
		Market:     ids(m.market),
		MarketDeck: ids(m.marketDeck),
	}
	for _, p := range m.players {
		v.Players = append(v.Players, PlayerView{
			Seat:          p.Seat,
			Name:          p.Name,
			Color:         p.Color.String(),
			Power:         p.Pool.Power,
			Influence:     p.Pool.Influence,
			VictoryPoints: p.Pool.VictoryPoints,
			Troops:        p.Troops,
			Spies:         p.Spies,
			Trophies:      p.Trophies,
			Hand:          ids(p.Zones.Hand),
			Deck:          ids(p.Zones.Deck),
			Discard:       ids(p.Zones.Discard),
			Played:        ids(p.Zones.Played),
			InnerCircle:   ids(p.Zones.InnerCircle),
			Devoured:      ids(p.Zones.Devoured),
		})
	}
	for _, n := range m.board.Nodes {
		v.Occupants = append(v.Occupants, n.Occupant.String())
	}
	for _, s := range m.board.Sites {
		sv := SiteView{ID: int(s.ID), Name: s.Name, Owner: s.Owner.String(), HasTotalControl: s.HasTotalControl}
		for _, spy := range s.Spies {
			sv.Spies = append(sv.Spies, spy.String())
		}
		v.Sites = append(v.Sites, sv)
	}
	return v
}

// Digest is a BLAKE2b-256 hash of the view's canonical representation.
func (v MatchView) Digest() string {
	sum := blake2b.Sum256([]byte(v.canonical()))
	return hex.EncodeToString(sum[:])
}

// canonical writes the view in a fixed line format. Every collection is
// already ordered by seat, node or site id, so no sorting is needed.
func (v MatchView) canonical() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "MATCH:%s|%d|%d|%d|%d\n", v.Phase, v.Turn, v.Round, v.ActiveSeat, v.RNGCalls)
	for _, p := range v.Players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%s|%d|%d|%d|%d|%d|%d\n",
			p.Seat, p.Name, p.Color, p.Power, p.Influence, p.VictoryPoints, p.Troops, p.Spies, p.Trophies)
		writeZone(&buf, "HAND", p.Hand)
		writeZone(&buf, "DECK", p.Deck)
		writeZone(&buf, "DISCARD", p.Discard)
		writeZone(&buf, "PLAYED", p.Played)
		writeZone(&buf, "INNER", p.InnerCircle)
		writeZone(&buf, "DEVOURED", p.Devoured)
	}
	writeZone(&buf, "NODES", v.Occupants)
	for _, s := range v.Sites {
		fmt.Fprintf(&buf, "SITE:%d|%s|%s|%t|%s\n", s.ID, s.Name, s.Owner, s.HasTotalControl, strings.Join(s.Spies, ","))
	}
	writeZone(&buf, "MARKET", v.Market)
	writeZone(&buf, "MARKET_DECK", v.MarketDeck)
	return buf.String()
}

func writeZone(buf *bytes.Buffer, name string, ids []string) {
	fmt.Fprintf(buf, "  %s:%s\n", name, strings.Join(ids, ","))
}

func (m *Match) checkpoint() {
	v := m.View()
	cp := Checkpoint{
		Turn:       v.Turn,
		ActiveSeat: v.ActiveSeat,
		RNGCalls:   v.RNGCalls,
		Digest:     v.Digest(),
	}
	for _, p := range v.Players {
		cp.Hands = append(cp.Hands, p.Hand)
	}
	m.checkpoints = append(m.checkpoints, cp)
}

func ids(zone []cards.Card) []string {
	out := make([]string, len(zone))
	for i, c := range zone {
		out[i] = c.ID
	}
	return out
}
