package board

import (
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
)

var startSiteNames = []string{"Araumycos", "Blingdenstone", "Gracklstugh", "Ched Nasad"}

// StandardLayout builds the default map: four starting sites, each reached by
// a route into the three-node central city, plus two minor outposts between
// the routes. One neutral troop guards the city.
func StandardLayout() (*Board, error) {
	bld := NewBuilder()

	type startNodes struct{ a, b NodeID }
	starts := make([]startNodes, len(startSiteNames))
	for i, name := range startSiteNames {
		site := bld.AddSite(SiteSpec{
			Name:                 name,
			Kind:                 SiteStart,
			ControlResource:      resources.Influence,
			ControlAmount:        1,
			TotalControlResource: resources.Power,
			TotalControlAmount:   1,
			VictoryPoints:        2,
		})
		x := float64(i) * 4
		starts[i].a = bld.AddNode(site, Position{X: x, Y: 0})
		starts[i].b = bld.AddNode(site, Position{X: x + 1, Y: 1})
		bld.Connect(starts[i].a, starts[i].b)
	}

	city := bld.AddSite(SiteSpec{
		Name:                 "Menzoberranzan",
		Kind:                 SiteCity,
		ControlResource:      resources.Power,
		ControlAmount:        2,
		TotalControlResource: resources.Influence,
		TotalControlAmount:   2,
		VictoryPoints:        5,
	})
	cityNodes := []NodeID{
		bld.AddNode(city, Position{X: 5, Y: 6}),
		bld.AddNode(city, Position{X: 7, Y: 6}),
		bld.AddNode(city, Position{X: 6, Y: 7}),
	}
	bld.Connect(cityNodes[0], cityNodes[1]).
		Connect(cityNodes[1], cityNodes[2]).
		Connect(cityNodes[2], cityNodes[0]).
		Occupy(cityNodes[1], player.ColorNeutral)

	routes := make([]NodeID, len(starts))
	for i := range starts {
		routes[i] = bld.AddNode(NoSite, Position{X: float64(i)*4 + 1, Y: 3})
		bld.Connect(starts[i].b, routes[i]).Connect(routes[i], cityNodes[i%len(cityNodes)])
	}

	for i, name := range []string{"Buiyrandyn", "Phaerlin"} {
		outpost := bld.AddSite(SiteSpec{Name: name, Kind: SiteMinor, VictoryPoints: 1})
		node := bld.AddNode(outpost, Position{X: float64(i)*8 + 3, Y: 4})
		bld.Connect(routes[2*i], node).Connect(node, routes[2*i+1])
	}

	return bld.Build()
}
