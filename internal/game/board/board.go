// Package board holds the node graph and everything that reads or mutates
// it: the presence rules, site control and the map orchestrator.
//
// Nodes and sites live in an arena addressed by integer ids. Adjacency and
// site membership are id lists, so nothing holds pointers into the graph.
package board

import (
	"fmt"

	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
)

// NodeID addresses a node in the arena.
type NodeID int

// SiteID addresses a site in the arena.
type SiteID int

// NoSite marks a node outside every site (a route node).
const NoSite SiteID = -1

// Position is cosmetic layout data.
type Position struct {
	X, Y float64
}

// Node is one troop space.
type Node struct {
	ID        NodeID
	Pos       Position
	Neighbors []NodeID
	Occupant  player.Color
	Site      SiteID
}

// SiteKind decides reward and setup eligibility.
type SiteKind int

const (
	// SiteMinor sites only score end-game VP.
	SiteMinor SiteKind = iota
	// SiteCity sites grant control and total-control rewards.
	SiteCity
	// SiteStart sites behave like cities and accept free setup deployments.
	SiteStart
)

func (k SiteKind) String() string {
	switch k {
	case SiteMinor:
		return "MINOR"
	case SiteCity:
		return "CITY"
	case SiteStart:
		return "START"
	default:
		return fmt.Sprintf("SITE_KIND_%d", int(k))
	}
}

// Site is a named group of nodes with control rewards.
type Site struct {
	ID                   SiteID
	Name                 string
	Kind                 SiteKind
	Nodes                []NodeID
	ControlResource      resources.Resource
	ControlAmount        int
	TotalControlResource resources.Resource
	TotalControlAmount   int
	VictoryPoints        int

	Owner           player.Color
	HasTotalControl bool
	// Spies holds at most one marker per color, in placement order.
	Spies []player.Color
}

// RewardEligible reports whether control transitions on the site pay out.
func (s *Site) RewardEligible() bool {
	return s.Kind == SiteCity || s.Kind == SiteStart
}

// HasSpy reports whether color has a spy at the site.
func (s *Site) HasSpy(color player.Color) bool {
	for _, c := range s.Spies {
		if c == color {
			return true
		}
	}
	return false
}

func (s *Site) addSpy(color player.Color) bool {
	if color == player.ColorNone || s.HasSpy(color) {
		return false
	}
	s.Spies = append(s.Spies, color)
	return true
}

func (s *Site) removeSpy(color player.Color) bool {
	for i, c := range s.Spies {
		if c == color {
			s.Spies = append(s.Spies[:i:i], s.Spies[i+1:]...)
			return true
		}
	}
	return false
}

// Board is the arena of nodes and sites.
type Board struct {
	Nodes []Node
	Sites []Site
}

// Node returns the node with id.
func (b *Board) Node(id NodeID) (*Node, bool) {
	if id < 0 || int(id) >= len(b.Nodes) {
		return nil, false
	}
	return &b.Nodes[id], true
}

// Site returns the site with id.
func (b *Board) Site(id SiteID) (*Site, bool) {
	if id < 0 || int(id) >= len(b.Sites) {
		return nil, false
	}
	return &b.Sites[id], true
}

// SiteOf returns the site containing node, if any.
func (b *Board) SiteOf(node NodeID) (*Site, bool) {
	n, ok := b.Node(node)
	if !ok || n.Site == NoSite {
		return nil, false
	}
	return b.Site(n.Site)
}

// FindSite looks a site up by name.
func (b *Board) FindSite(name string) (*Site, bool) {
	for i := range b.Sites {
		if b.Sites[i].Name == name {
			return &b.Sites[i], true
		}
	}
	return nil, false
}

// CountOccupied returns how many nodes color occupies.
func (b *Board) CountOccupied(color player.Color) int {
	count := 0
	for i := range b.Nodes {
		if b.Nodes[i].Occupant == color {
			count++
		}
	}
	return count
}
