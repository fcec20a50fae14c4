package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const testSeed = 20240611

func newTestMatch(t *testing.T, names ...string) *Match {
	t.Helper()
	if len(names) == 0 {
		names = []string{"alice", "bob"}
	}
	m, err := NewMatch(zap.NewNop(), testSeed, names, DefaultSettings(), cards.NewStaticDatabase())
	require.NoError(t, err)
	return m
}

func newTestTable(t *testing.T, names ...string) (*Match, *Dispatcher) {
	t.Helper()
	m := newTestMatch(t, names...)
	return m, NewDispatcher(m, NewReplayManager(zap.NewNop()), zap.NewNop())
}

// setupNode returns a free node in a start site nobody occupies yet.
func setupNode(t *testing.T, m *Match) board.NodeID {
	t.Helper()
	b := m.Board()
	for i := range b.Nodes {
		id := board.NodeID(i)
		if !m.Rules().CanSetupDeployAt(id) {
			continue
		}
		site, _ := b.SiteOf(id)
		empty := true
		for _, n := range site.Nodes {
			if b.Nodes[n].Occupant != player.ColorNone {
				empty = false
			}
		}
		if empty {
			return id
		}
	}
	t.Fatal("no free start node")
	return -1
}

func deployNode(t *testing.T, m *Match, color player.Color) board.NodeID {
	t.Helper()
	for i := range m.Board().Nodes {
		if m.Rules().CanDeployAt(board.NodeID(i), color) {
			return board.NodeID(i)
		}
	}
	t.Fatal("no deploy target")
	return -1
}

// finishSetup has every seat deploy once and end its turn.
func finishSetup(t *testing.T, m *Match, d *Dispatcher) {
	t.Helper()
	for range m.Players() {
		seat := m.ActiveSeat()
		out := d.Issue(command.Deploy{Seat: seat, Node: setupNode(t, m)})
		require.True(t, out.OK(), "setup deploy: %s", out.Reason)
		require.True(t, d.Issue(command.EndTurn{Seat: seat}).OK())
	}
	require.Equal(t, rules.PhasePlaying, m.Phase())
}

func card(t *testing.T, m *Match, id string) cards.Card {
	t.Helper()
	c, ok := m.cards.Card(id)
	require.True(t, ok, id)
	return c
}

func activePlayer(t *testing.T, m *Match) *player.Player {
	t.Helper()
	p, ok := m.Player(m.ActiveSeat())
	require.True(t, ok)
	return p
}
