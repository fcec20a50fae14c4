package board

import (
	"errors"
	"fmt"

	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
)

// SiteSpec describes a site to add to a board.
type SiteSpec struct {
	Name                 string
	Kind                 SiteKind
	ControlResource      resources.Resource
	ControlAmount        int
	TotalControlResource resources.Resource
	TotalControlAmount   int
	VictoryPoints        int
}

// Builder assembles a board. The first error sticks and is returned by Build.
type Builder struct {
	board *Board
	err   error
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{board: &Board{}}
}

// AddSite appends a site and returns its id.
func (bld *Builder) AddSite(spec SiteSpec) SiteID {
	id := SiteID(len(bld.board.Sites))
	bld.board.Sites = append(bld.board.Sites, Site{
		ID:                   id,
		Name:                 spec.Name,
		Kind:                 spec.Kind,
		ControlResource:      spec.ControlResource,
		ControlAmount:        spec.ControlAmount,
		TotalControlResource: spec.TotalControlResource,
		TotalControlAmount:   spec.TotalControlAmount,
		VictoryPoints:        spec.VictoryPoints,
	})
	return id
}

// AddNode appends a node, optionally inside site, and returns its id.
func (bld *Builder) AddNode(site SiteID, pos Position) NodeID {
	id := NodeID(len(bld.board.Nodes))
	if site != NoSite {
		s, ok := bld.board.Site(site)
		if !ok {
			bld.fail(fmt.Errorf("node %d: unknown site %d", id, site))
			site = NoSite
		} else {
			s.Nodes = append(s.Nodes, id)
		}
	}
	bld.board.Nodes = append(bld.board.Nodes, Node{ID: id, Pos: pos, Site: site})
	return id
}

// Connect links two nodes in both directions.
func (bld *Builder) Connect(a, b NodeID) *Builder {
	na, okA := bld.board.Node(a)
	nb, okB := bld.board.Node(b)
	switch {
	case !okA || !okB:
		bld.fail(fmt.Errorf("connect %d-%d: unknown node", a, b))
	case a == b:
		bld.fail(fmt.Errorf("connect %d-%d: self loop", a, b))
	case contains(na.Neighbors, b):
	default:
		na.Neighbors = append(na.Neighbors, b)
		nb.Neighbors = append(nb.Neighbors, a)
	}
	return bld
}

// Occupy sets an initial occupant, typically a neutral troop.
func (bld *Builder) Occupy(node NodeID, color player.Color) *Builder {
	n, ok := bld.board.Node(node)
	if !ok {
		bld.fail(fmt.Errorf("occupy %d: unknown node", node))
		return bld
	}
	n.Occupant = color
	return bld
}

// Spy places an initial spy marker.
func (bld *Builder) Spy(site SiteID, color player.Color) *Builder {
	s, ok := bld.board.Site(site)
	if !ok {
		bld.fail(fmt.Errorf("spy: unknown site %d", site))
		return bld
	}
	s.addSpy(color)
	return bld
}

// Build validates and returns the board.
func (bld *Builder) Build() (*Board, error) {
	if bld.err != nil {
		return nil, bld.err
	}
	if len(bld.board.Nodes) == 0 {
		return nil, errors.New("board has no nodes")
	}
	for i := range bld.board.Nodes {
		n := &bld.board.Nodes[i]
		for _, nb := range n.Neighbors {
			other, _ := bld.board.Node(nb)
			if !contains(other.Neighbors, n.ID) {
				return nil, fmt.Errorf("node %d: neighbor %d is not symmetric", n.ID, nb)
			}
		}
	}
	return bld.board, nil
}

func (bld *Builder) fail(err error) {
	if bld.err == nil {
		bld.err = err
	}
}

func contains(ids []NodeID, id NodeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
