package main

import (
	"context"
	"fmt"

	"github.com/undercity/undercity-server-go/internal/game"
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rules"
)

// autoplay drives t with a naive strategy until the match finishes or
// maxTurns turns have been played: play the whole hand, spend Power on
// deployments, buy the first affordable card, end the turn. Every command
// goes through the table's queue, so reads between submissions see a settled
// match.
func autoplay(ctx context.Context, t *game.Table, maxTurns int) error {
	m := t.Match
	for turn := 0; turn < maxTurns && m.Phase() != rules.PhaseFinished; turn++ {
		p, ok := m.Player(m.ActiveSeat())
		if !ok {
			return fmt.Errorf("no active player at seat %d", m.ActiveSeat())
		}

		if m.Phase() == rules.PhaseSetup {
			if node, ok := freeStartNode(m); ok {
				if _, err := submit(ctx, t, command.Deploy{Seat: p.Seat, Node: node}); err != nil {
					return err
				}
			}
		} else if err := playTurn(ctx, t, p); err != nil {
			return err
		}

		if _, err := submit(ctx, t, command.EndTurn{Seat: p.Seat}); err != nil {
			return err
		}
	}
	return nil
}

func playTurn(ctx context.Context, t *game.Table, p *player.Player) error {
	m := t.Match
	for len(p.Zones.Hand) > 0 {
		c := p.Zones.Hand[0]
		out, err := submit(ctx, t, command.PlayCard{Seat: p.Seat, CardID: c.ID, HandIndex: 0})
		if err != nil {
			return err
		}
		if !out.OK() {
			break
		}
	}

	for p.Pool.Get(resources.Power) >= board.DeployCost && p.Troops > 0 {
		node, ok := deployTarget(m, p.Color)
		if !ok {
			break
		}
		out, err := submit(ctx, t, command.Deploy{Seat: p.Seat, Node: node})
		if err != nil {
			return err
		}
		if !out.OK() {
			break
		}
	}

	for i, c := range m.Market() {
		if p.Pool.Get(resources.Influence) >= c.Cost {
			_, err := submit(ctx, t, command.BuyCard{Seat: p.Seat, CardID: c.ID, MarketIndex: i})
			return err
		}
	}
	return nil
}

func submit(ctx context.Context, t *game.Table, cmd command.Command) (rules.Outcome, error) {
	out, err := t.Queue.Submit(ctx, cmd)
	if err != nil {
		return out, fmt.Errorf("submit %s: %w", cmd.Kind(), err)
	}
	return out, nil
}

// freeStartNode returns a setup-legal node in a start site nobody occupies,
// falling back to any setup-legal node.
func freeStartNode(m *game.Match) (board.NodeID, bool) {
	b := m.Board()
	fallback, found := board.NodeID(-1), false
	for i := range b.Nodes {
		id := board.NodeID(i)
		if !m.Rules().CanSetupDeployAt(id) {
			continue
		}
		if !found {
			fallback, found = id, true
		}
		site, ok := b.SiteOf(id)
		if !ok {
			continue
		}
		empty := true
		for _, n := range site.Nodes {
			if b.Nodes[n].Occupant != player.ColorNone {
				empty = false
				break
			}
		}
		if empty {
			return id, true
		}
	}
	return fallback, found
}

func deployTarget(m *game.Match, color player.Color) (board.NodeID, bool) {
	for i := range m.Board().Nodes {
		if m.Rules().CanDeployAt(board.NodeID(i), color) {
			return board.NodeID(i), true
		}
	}
	return -1, false
}
