package board

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// fixture is a small map:
//
//	k0 - k1 - r - t0
//	          |
//	          s0
//
// k0,k1 form the city "Keep", t0 the city "Tower", s0 the start site "Camp";
// r is a route node outside every site.
type fixture struct {
	board                 *Board
	keep, tower, camp     SiteID
	k0, k1, route, t0, s0 NodeID
	phase                 rules.MatchPhase
	orch                  *Orchestrator
	red, blue             *player.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{phase: rules.PhasePlaying}

	bld := NewBuilder()
	f.keep = bld.AddSite(SiteSpec{
		Name: "Keep", Kind: SiteCity,
		ControlResource: resources.Influence, ControlAmount: 2,
		TotalControlResource: resources.Power, TotalControlAmount: 3,
		VictoryPoints: 4,
	})
	f.k0 = bld.AddNode(f.keep, Position{})
	f.k1 = bld.AddNode(f.keep, Position{X: 1})
	f.route = bld.AddNode(NoSite, Position{X: 2})
	f.tower = bld.AddSite(SiteSpec{
		Name: "Tower", Kind: SiteCity,
		ControlResource: resources.VictoryPoints, ControlAmount: 1,
		TotalControlResource: resources.VictoryPoints, TotalControlAmount: 2,
	})
	f.t0 = bld.AddNode(f.tower, Position{X: 3})
	f.camp = bld.AddSite(SiteSpec{Name: "Camp", Kind: SiteStart, ControlResource: resources.Power, ControlAmount: 1})
	f.s0 = bld.AddNode(f.camp, Position{X: 2, Y: 1})
	bld.Connect(f.k0, f.k1).Connect(f.k1, f.route).Connect(f.route, f.t0).Connect(f.route, f.s0)

	b, err := bld.Build()
	require.NoError(t, err)
	f.board = b

	f.red = player.New(0, "Red", player.ColorRed, 10, 3)
	f.blue = player.New(1, "Blue", player.ColorBlue, 10, 3)
	lookup := func(c player.Color) (*player.Player, bool) {
		switch c {
		case player.ColorRed:
			return f.red, true
		case player.ColorBlue:
			return f.blue, true
		}
		return nil, false
	}
	f.orch = NewOrchestrator(b, zap.NewNop(), func() rules.MatchPhase { return f.phase }, 1, lookup)
	return f
}

func (f *fixture) occupy(node NodeID, c player.Color) {
	n, _ := f.board.Node(node)
	n.Occupant = c
}

func (f *fixture) site(id SiteID) *Site {
	s, _ := f.board.Site(id)
	return s
}
