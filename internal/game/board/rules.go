package board

import (
	"github.com/undercity/undercity-server-go/internal/game/player"
)

// RuleEngine answers presence and legality questions about the board.
// It never mutates and tolerates unknown ids by answering false.
type RuleEngine struct {
	board *Board
}

// NewRuleEngine creates a rule engine over b.
func NewRuleEngine(b *Board) *RuleEngine {
	if b == nil {
		panic("board: nil board")
	}
	return &RuleEngine{board: b}
}

// HasPresence reports whether color can act at node: it occupies the node or
// a neighbor, or has a spy in the node's site.
func (re *RuleEngine) HasPresence(node NodeID, color player.Color) bool {
	if color == player.ColorNone {
		return false
	}
	n, ok := re.board.Node(node)
	if !ok {
		return false
	}
	if n.Occupant == color {
		return true
	}
	for _, nb := range n.Neighbors {
		if other, ok := re.board.Node(nb); ok && other.Occupant == color {
			return true
		}
	}
	if site, ok := re.board.Site(n.Site); ok && site.HasSpy(color) {
		return true
	}
	return false
}

// HasAnyPresence reports whether color has a troop or spy anywhere.
func (re *RuleEngine) HasAnyPresence(color player.Color) bool {
	if color == player.ColorNone {
		return false
	}
	if re.board.CountOccupied(color) > 0 {
		return true
	}
	for i := range re.board.Sites {
		if re.board.Sites[i].HasSpy(color) {
			return true
		}
	}
	return false
}

// CanDeployAt reports whether color may deploy at node: the node is empty
// and color has presence there, or color has no presence anywhere yet.
func (re *RuleEngine) CanDeployAt(node NodeID, color player.Color) bool {
	n, ok := re.board.Node(node)
	if !ok || n.Occupant != player.ColorNone || color == player.ColorNone {
		return false
	}
	return re.HasPresence(node, color) || !re.HasAnyPresence(color)
}

// CanSetupDeployAt reports whether node is an empty node of a starting site.
func (re *RuleEngine) CanSetupDeployAt(node NodeID) bool {
	n, ok := re.board.Node(node)
	if !ok || n.Occupant != player.ColorNone {
		return false
	}
	site, ok := re.board.Site(n.Site)
	return ok && site.Kind == SiteStart
}

// CanAssassinate reports whether attacker may remove the troop at target.
func (re *RuleEngine) CanAssassinate(target NodeID, attacker player.Color) bool {
	n, ok := re.board.Node(target)
	if !ok || !isEnemy(n.Occupant, attacker) {
		return false
	}
	return re.HasPresence(target, attacker)
}

// CanSupplant has the same target rule as CanAssassinate.
func (re *RuleEngine) CanSupplant(target NodeID, attacker player.Color) bool {
	return re.CanAssassinate(target, attacker)
}

// CanMoveSource reports whether attacker may pick up the enemy troop at source.
func (re *RuleEngine) CanMoveSource(source NodeID, attacker player.Color) bool {
	return re.CanAssassinate(source, attacker)
}

// CanMoveDestination reports whether a troop may be moved to destination.
// Only emptiness matters; no presence is needed.
func (re *RuleEngine) CanMoveDestination(source, destination NodeID) bool {
	if source == destination {
		return false
	}
	n, ok := re.board.Node(destination)
	return ok && n.Occupant == player.ColorNone
}

// CanReturnTroop reports whether requester may return the troop at node.
// Own, enemy and neutral troops all qualify.
func (re *RuleEngine) CanReturnTroop(node NodeID, requester player.Color) bool {
	n, ok := re.board.Node(node)
	if !ok || n.Occupant == player.ColorNone {
		return false
	}
	return re.HasPresence(node, requester)
}

// SitePresence reports whether color has presence at any node of site or a
// spy there.
func (re *RuleEngine) SitePresence(site SiteID, color player.Color) bool {
	s, ok := re.board.Site(site)
	if !ok || color == player.ColorNone {
		return false
	}
	if s.HasSpy(color) {
		return true
	}
	for _, node := range s.Nodes {
		if re.HasPresence(node, color) {
			return true
		}
	}
	return false
}

// CanPlaceSpy reports whether color may place a spy at site.
func (re *RuleEngine) CanPlaceSpy(site SiteID, color player.Color) bool {
	s, ok := re.board.Site(site)
	return ok && color.IsPlayer() && !s.HasSpy(color)
}

// EnemySpyColors lists the distinct spy colors at site other than requester,
// in placement order.
func (re *RuleEngine) EnemySpyColors(site SiteID, requester player.Color) []player.Color {
	s, ok := re.board.Site(site)
	if !ok {
		return nil
	}
	var out []player.Color
	for _, c := range s.Spies {
		if c != requester && c != player.ColorNone {
			out = append(out, c)
		}
	}
	return out
}

// CanReturnSpy reports whether requester has presence at site and there is
// at least one spy of another color to return.
func (re *RuleEngine) CanReturnSpy(site SiteID, requester player.Color) bool {
	return re.SitePresence(site, requester) && len(re.EnemySpyColors(site, requester)) > 0
}

// CanReturnSpecificSpy reports whether requester may return target's spy.
func (re *RuleEngine) CanReturnSpecificSpy(site SiteID, requester, target player.Color) bool {
	s, ok := re.board.Site(site)
	if !ok || target == requester || target == player.ColorNone {
		return false
	}
	return s.HasSpy(target) && re.SitePresence(site, requester)
}

// HasValidDeployTarget reports whether color can deploy anywhere.
func (re *RuleEngine) HasValidDeployTarget(color player.Color) bool {
	return re.anyNode(func(id NodeID) bool { return re.CanDeployAt(id, color) })
}

// HasValidSetupDeployTarget reports whether any starting-site node is free.
func (re *RuleEngine) HasValidSetupDeployTarget() bool {
	return re.anyNode(re.CanSetupDeployAt)
}

// HasValidAssassinateTarget reports whether attacker can assassinate anywhere.
func (re *RuleEngine) HasValidAssassinateTarget(attacker player.Color) bool {
	return re.anyNode(func(id NodeID) bool { return re.CanAssassinate(id, attacker) })
}

// HasValidSupplantTarget reports whether attacker can supplant anywhere.
func (re *RuleEngine) HasValidSupplantTarget(attacker player.Color) bool {
	return re.HasValidAssassinateTarget(attacker)
}

// HasValidMoveTarget reports whether attacker can start a move: an enemy
// troop within presence and at least one empty node somewhere else.
func (re *RuleEngine) HasValidMoveTarget(attacker player.Color) bool {
	return re.anyNode(func(src NodeID) bool {
		if !re.CanMoveSource(src, attacker) {
			return false
		}
		return re.anyNode(func(dst NodeID) bool { return re.CanMoveDestination(src, dst) })
	})
}

// HasValidReturnTroopTarget reports whether requester can return any troop.
func (re *RuleEngine) HasValidReturnTroopTarget(requester player.Color) bool {
	return re.anyNode(func(id NodeID) bool { return re.CanReturnTroop(id, requester) })
}

// HasValidReturnSpyTarget reports whether requester can return any spy.
func (re *RuleEngine) HasValidReturnSpyTarget(requester player.Color) bool {
	return re.anySite(func(id SiteID) bool { return re.CanReturnSpy(id, requester) })
}

// HasValidPlaceSpyTarget reports whether color can place a spy anywhere.
func (re *RuleEngine) HasValidPlaceSpyTarget(color player.Color) bool {
	return re.anySite(func(id SiteID) bool { return re.CanPlaceSpy(id, color) })
}

func (re *RuleEngine) anyNode(pred func(NodeID) bool) bool {
	for i := range re.board.Nodes {
		if pred(NodeID(i)) {
			return true
		}
	}
	return false
}

func (re *RuleEngine) anySite(pred func(SiteID) bool) bool {
	for i := range re.board.Sites {
		if pred(SiteID(i)) {
			return true
		}
	}
	return false
}

func isEnemy(occupant, attacker player.Color) bool {
	return occupant != player.ColorNone && occupant != attacker
}
