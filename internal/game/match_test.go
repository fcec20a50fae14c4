package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

func TestNewMatchValidation(t *testing.T) {
	db := cards.NewStaticDatabase()

	_, err := NewMatch(zap.NewNop(), 1, []string{"solo"}, DefaultSettings(), db)
	assert.ErrorIs(t, err, ErrPlayerCount)

	_, err = NewMatch(zap.NewNop(), 1, []string{"a", "b", "c", "d", "e"}, DefaultSettings(), db)
	assert.ErrorIs(t, err, ErrPlayerCount)

	assert.Panics(t, func() { _, _ = NewMatch(nil, 1, []string{"a", "b"}, DefaultSettings(), db) })
	assert.Panics(t, func() { _, _ = NewMatch(zap.NewNop(), 1, []string{"a", "b"}, DefaultSettings(), nil) })
}

func TestNewMatchDeal(t *testing.T) {
	m := newTestMatch(t, "alice", "bob", "carol")

	assert.Equal(t, rules.PhaseSetup, m.Phase())
	assert.Equal(t, 1, m.Turn())
	assert.Len(t, m.Market(), 6)
	assert.Equal(t, 24-6, m.MarketDeckSize())
	assert.ElementsMatch(t, []int{0, 1, 2}, m.TurnOrder())
	assert.Equal(t, m.TurnOrder()[0], m.ActiveSeat())
	require.Len(t, m.Checkpoints(), 1)

	for _, p := range m.Players() {
		assert.Len(t, p.Zones.Hand, 5)
		assert.Len(t, p.Zones.Deck, 5)
		assert.Equal(t, 40, p.Troops)
		assert.Equal(t, 5, p.Spies)
	}
}

func TestSameSeedSameMatch(t *testing.T) {
	a := newTestMatch(t, "alice", "bob", "carol")
	b := newTestMatch(t, "alice", "bob", "carol")

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.TurnOrder(), b.TurnOrder())
	assert.Equal(t, a.RNGCalls(), b.RNGCalls())
	assert.Equal(t, a.View().Digest(), b.View().Digest())
	assert.Equal(t, a.Checkpoints(), b.Checkpoints())

	c, err := NewMatch(zap.NewNop(), testSeed+1, []string{"alice", "bob", "carol"}, DefaultSettings(), cards.NewStaticDatabase())
	require.NoError(t, err)
	assert.NotEqual(t, a.View().Digest(), c.View().Digest())
}

func TestSetupPhaseGating(t *testing.T) {
	m, d := newTestTable(t)
	seat := m.ActiveSeat()
	p := activePlayer(t, m)

	out := d.Issue(command.PlayCard{Seat: seat, CardID: p.Zones.Hand[0].ID, HandIndex: 0})
	assert.Equal(t, rules.ReasonWrongPhase, out.Reason)

	out = d.Issue(command.Deploy{Seat: seat, Node: setupNode(t, m), SourceCardID: "enforcer"})
	assert.Equal(t, rules.ReasonWrongPhase, out.Reason)

	out = d.Issue(command.Deploy{Seat: seat, Node: setupNode(t, m)})
	require.True(t, out.OK())
	assert.True(t, out.SetupComplete)
	assert.Equal(t, 39, p.Troops)
	assert.Zero(t, p.Pool.Power, "setup deployment is free")

	out = d.Issue(command.Deploy{Seat: seat, Node: setupNode(t, m)})
	assert.Equal(t, rules.ReasonWrongPhase, out.Reason, "quota already met")

	assert.True(t, d.Issue(command.EndTurn{Seat: seat}).OK())
	assert.Equal(t, rules.PhaseSetup, m.Phase())
}

func TestSetupTransitionsOnce(t *testing.T) {
	m, d := newTestTable(t)

	first := m.ActiveSeat()
	require.True(t, d.Issue(command.Deploy{Seat: first, Node: setupNode(t, m)}).OK())
	out := d.Issue(command.EndTurn{Seat: first})
	assert.False(t, out.PhaseChanged)

	second := m.ActiveSeat()
	require.NotEqual(t, first, second)
	require.True(t, d.Issue(command.Deploy{Seat: second, Node: setupNode(t, m)}).OK())
	out = d.Issue(command.EndTurn{Seat: second})
	assert.True(t, out.PhaseChanged)
	assert.Equal(t, rules.PhasePlaying, m.Phase())

	// The new active seat owns its start site and collects its income.
	require.NotEmpty(t, out.Rewards)
	for _, r := range out.Rewards {
		assert.Equal(t, first, r.Seat)
		assert.Contains(t, []rules.RewardSource{rules.RewardIncome, rules.RewardTotalIncome}, r.Source)
	}

	// A playing-phase deploy never reports setup completion again.
	p := activePlayer(t, m)
	p.Pool.Power = 1
	out = d.Issue(command.Deploy{Seat: p.Seat, Node: deployNode(t, m, p.Color)})
	require.True(t, out.OK())
	assert.False(t, out.SetupComplete)
	assert.False(t, out.PhaseChanged)
}

func TestSetupSafeguard(t *testing.T) {
	m, d := newTestTable(t)

	// Nobody deploys; setup still ends after two full rounds.
	for i := 0; i < 4; i++ {
		require.Equal(t, rules.PhaseSetup, m.Phase())
		require.True(t, d.Issue(command.EndTurn{Seat: m.ActiveSeat()}).OK())
	}
	assert.Equal(t, rules.PhasePlaying, m.Phase())
}

func TestNotActivePlayer(t *testing.T) {
	m, d := newTestTable(t)
	other := m.TurnOrder()[1]

	out := d.Issue(command.EndTurn{Seat: other})
	assert.Equal(t, rules.ReasonNotActivePlayer, out.Reason)

	out = d.Issue(command.EndTurn{Seat: 7})
	assert.Equal(t, rules.ReasonUnknownPlayer, out.Reason)
}

func TestPlayCardFocusSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		hand    []string
		play    []int
		credits int
	}{
		{"alone cannot focus itself", []string{"advocate", "noble"}, []int{0}, 0},
		{"another of the aspect in hand", []string{"advocate", "zealot"}, []int{0}, 1},
		{"aspect played earlier this turn", []string{"zealot", "advocate"}, []int{0, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d := newTestTable(t)
			finishSetup(t, m, d)
			p := activePlayer(t, m)
			p.Zones.Hand = nil
			for _, id := range tt.hand {
				p.Zones.Hand = append(p.Zones.Hand, card(t, m, id))
			}

			for _, idx := range tt.play {
				c := p.Zones.Hand[idx]
				require.True(t, d.Issue(command.PlayCard{Seat: p.Seat, CardID: c.ID, HandIndex: idx}).OK())
			}
			assert.Equal(t, tt.credits, m.TurnContext().PromotionCredits())
		})
	}
}

func TestPlayCardResolvesByID(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Zones.Hand = []cards.Card{card(t, m, "noble"), card(t, m, "soldier")}
	influence, power := p.Pool.Influence, p.Pool.Power

	// Stale index, valid id.
	out := d.Issue(command.PlayCard{Seat: p.Seat, CardID: "soldier", HandIndex: 0})
	require.True(t, out.OK())
	assert.Equal(t, power+1, p.Pool.Power)
	assert.Equal(t, influence, p.Pool.Influence)
	assert.Equal(t, []string{"noble"}, p.Zones.HandIDs())
	require.Len(t, p.Zones.Played, 1)

	out = d.Issue(command.PlayCard{Seat: p.Seat, CardID: "ghost", HandIndex: 0})
	assert.Equal(t, rules.ReasonUnknownCard, out.Reason)
}

func TestCardGrantExemptsCost(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Pool.Power = 0
	troops := p.Troops

	out := d.Issue(command.Deploy{Seat: p.Seat, Node: deployNode(t, m, p.Color)})
	assert.Equal(t, rules.ReasonInsufficientPower, out.Reason)

	p.Zones.Hand = []cards.Card{card(t, m, "enforcer")}
	out = d.Issue(command.PlayCard{Seat: p.Seat, CardID: "enforcer", HandIndex: 0})
	require.True(t, out.OK())
	require.Len(t, out.Pending, 2)
	for _, pe := range out.Pending {
		assert.Equal(t, cards.EffectDeploy, pe.Effect.Kind)
		assert.Equal(t, 1, pe.Effect.Amount)
	}

	rewarded := 0
	for i := 0; i < 2; i++ {
		out = d.Issue(command.Deploy{Seat: p.Seat, Node: deployNode(t, m, p.Color), SourceCardID: "enforcer"})
		require.True(t, out.OK(), "deploy %d: %s", i, out.Reason)
		for _, r := range out.Rewards {
			if r.Resource == resources.Power {
				rewarded += r.Amount
			}
		}
	}
	assert.Equal(t, rewarded, p.Pool.Power, "only site rewards, nothing paid")
	assert.Equal(t, troops-2, p.Troops)

	out = d.Issue(command.Deploy{Seat: p.Seat, Node: deployNode(t, m, p.Color), SourceCardID: "enforcer"})
	assert.Equal(t, rules.ReasonNotGranted, out.Reason)
}

func TestCardOnlyActions(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Pool.Power = 10

	for _, cmd := range []command.Command{
		command.Supplant{Seat: p.Seat, Node: 0},
		command.PlaceSpy{Seat: p.Seat, Site: 0},
		command.ReturnTroop{Seat: p.Seat, Node: 0},
		command.Move{Seat: p.Seat, Source: 0, Destination: 1},
		command.Devour{Seat: p.Seat, Skipped: true},
	} {
		out := d.Issue(cmd)
		assert.Equal(t, rules.ReasonNotGranted, out.Reason, cmd.Kind())
	}
	assert.Equal(t, 10, p.Pool.Power)
}

func TestAssassinateChecksTargetBeforePaying(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Pool.Power = 5

	var own board.NodeID = -1
	for i, n := range m.Board().Nodes {
		if n.Occupant == p.Color {
			own = board.NodeID(i)
		}
	}
	require.NotEqual(t, board.NodeID(-1), own)

	out := d.Issue(command.Assassinate{Seat: p.Seat, Node: own})
	assert.Equal(t, rules.ReasonIllegalTarget, out.Reason)
	assert.Equal(t, 5, p.Pool.Power)
}

func TestDevourSkipConsumesGrant(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Zones.Hand = []cards.Card{card(t, m, "ghoul"), card(t, m, "noble")}

	out := d.Issue(command.PlayCard{Seat: p.Seat, CardID: "ghoul", HandIndex: 0})
	require.True(t, out.OK())
	require.Len(t, out.Pending, 1)
	assert.Equal(t, cards.EffectDevour, out.Pending[0].Effect.Kind)

	require.True(t, d.Issue(command.Devour{Seat: p.Seat, SourceCardID: "ghoul", Skipped: true}).OK())
	assert.Equal(t, []string{"noble"}, p.Zones.HandIDs())

	out = d.Issue(command.Devour{Seat: p.Seat, SourceCardID: "ghoul", TargetCardID: "noble", HandIndex: 0})
	assert.Equal(t, rules.ReasonNotGranted, out.Reason)
}

func TestPromoteFromPlayed(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Zones.Hand = []cards.Card{card(t, m, "zealot"), card(t, m, "noble")}

	require.True(t, d.Issue(command.PlayCard{Seat: p.Seat, CardID: "zealot", HandIndex: 0}).OK())
	require.True(t, d.Issue(command.PlayCard{Seat: p.Seat, CardID: "noble", HandIndex: 0}).OK())

	out := d.Issue(command.Promote{Seat: p.Seat, SourceCardID: "zealot", TargetCardID: "matron"})
	assert.Equal(t, rules.ReasonIllegalTarget, out.Reason)

	require.True(t, d.Issue(command.Promote{Seat: p.Seat, SourceCardID: "zealot", TargetCardID: "noble"}).OK())
	require.Len(t, p.Zones.InnerCircle, 1)
	assert.Equal(t, "noble", p.Zones.InnerCircle[0].ID)

	out = d.Issue(command.Promote{Seat: p.Seat, SourceCardID: "zealot", TargetCardID: "zealot"})
	assert.Equal(t, rules.ReasonNoPromotionCredit, out.Reason)
}

func TestBuyCard(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	target := m.Market()[2]
	deckSize := m.MarketDeckSize()

	p.Pool.Influence = target.Cost - 1
	out := d.Issue(command.BuyCard{Seat: p.Seat, CardID: target.ID, MarketIndex: 2})
	assert.Equal(t, rules.ReasonInsufficientInfluence, out.Reason)

	p.Pool.Influence = target.Cost
	require.True(t, d.Issue(command.BuyCard{Seat: p.Seat, CardID: target.ID, MarketIndex: 2}).OK())
	assert.Zero(t, p.Pool.Influence)
	assert.Equal(t, target.ID, p.Zones.Discard[len(p.Zones.Discard)-1].ID)
	assert.Len(t, m.Market(), 6)
	assert.Equal(t, deckSize-1, m.MarketDeckSize())

	out = d.Issue(command.BuyCard{Seat: p.Seat, CardID: "no-such-card", MarketIndex: 0})
	assert.Equal(t, rules.ReasonUnknownCard, out.Reason)
}

func TestMatchEndsWhenMarketRunsOut(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)
	p := activePlayer(t, m)
	p.Pool.Influence = 1000

	for m.MarketDeckSize() > 0 {
		c := m.Market()[0]
		require.True(t, d.Issue(command.BuyCard{Seat: p.Seat, CardID: c.ID, MarketIndex: 0}).OK())
	}
	assert.Equal(t, rules.PhasePlaying, m.Phase(), "the round is played out")

	for i := 0; i < len(m.Players()) && m.Phase() != rules.PhaseFinished; i++ {
		require.True(t, d.Issue(command.EndTurn{Seat: m.ActiveSeat()}).OK())
	}
	require.Equal(t, rules.PhaseFinished, m.Phase())

	out := d.Issue(command.EndTurn{Seat: m.ActiveSeat()})
	assert.Equal(t, rules.ReasonMatchFinished, out.Reason)
}

func TestMatchEndsWhenBarracksEmpty(t *testing.T) {
	settings := DefaultSettings()
	settings.StartingTroops = 2
	m, err := NewMatch(zap.NewNop(), testSeed, []string{"alice", "bob"}, settings, cards.NewStaticDatabase())
	require.NoError(t, err)
	d := NewDispatcher(m, NewReplayManager(zap.NewNop()), zap.NewNop())
	finishSetup(t, m, d)

	p := activePlayer(t, m)
	p.Pool.Power = 1
	require.True(t, d.Issue(command.Deploy{Seat: p.Seat, Node: deployNode(t, m, p.Color)}).OK())
	require.Zero(t, p.Troops)

	for i := 0; i < len(m.Players()) && m.Phase() != rules.PhaseFinished; i++ {
		require.True(t, d.Issue(command.EndTurn{Seat: m.ActiveSeat()}).OK())
	}
	assert.Equal(t, rules.PhaseFinished, m.Phase())
}

func TestScores(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)

	p := activePlayer(t, m)
	p.Pool.VictoryPoints = 3
	p.Trophies = 2
	p.Zones.InnerCircle = append(p.Zones.InnerCircle, card(t, m, "advocate"))

	scores := m.Scores()
	require.Len(t, scores, 2)
	for _, s := range scores {
		assert.Equal(t, s.VictoryPoints+s.SiteVP+s.Trophies+s.CardVP, s.Total)
		assert.Equal(t, 2, s.SiteVP, "each seat holds one start site")
	}
	s := scores[p.Seat]
	assert.Equal(t, 3, s.VictoryPoints)
	assert.Equal(t, 2, s.Trophies)
	assert.Equal(t, p.Zones.VictoryPoints(), s.CardVP)
}

func TestCheckpointPerTurn(t *testing.T) {
	m, d := newTestTable(t)
	finishSetup(t, m, d)

	cps := m.Checkpoints()
	require.Len(t, cps, 3)
	last := cps[len(cps)-1]
	assert.Equal(t, m.Turn(), last.Turn)
	assert.Equal(t, m.ActiveSeat(), last.ActiveSeat)
	assert.Equal(t, m.RNGCalls(), last.RNGCalls)
	assert.Equal(t, m.View().Digest(), last.Digest)
	for _, p := range m.Players() {
		assert.Equal(t, p.Zones.HandIDs(), last.Hands[p.Seat])
	}
}

// gluttonDatabase adds a card whose Devour has no follow-up.
type gluttonDatabase struct {
	cards.Database
}

func (db gluttonDatabase) Card(id string) (cards.Card, bool) {
	if id == "glutton" {
		return cards.Card{
			ID: "glutton", Name: "Glutton", Aspect: cards.AspectMalice, Cost: 2,
			Effects: []cards.Effect{{Kind: cards.EffectDevour, Amount: 1}},
		}, true
	}
	return db.Database.Card(id)
}

func supplantTarget(t *testing.T, m *Match, color player.Color) board.NodeID {
	t.Helper()
	for i := range m.Board().Nodes {
		if m.Rules().CanSupplant(board.NodeID(i), color) {
			return board.NodeID(i)
		}
	}
	t.Fatal("no supplant target")
	return -1
}

func TestDevourSupplantNeedsChainedEffect(t *testing.T) {
	m, err := NewMatch(zap.NewNop(), testSeed, []string{"alice", "bob"}, DefaultSettings(), gluttonDatabase{cards.NewStaticDatabase()})
	require.NoError(t, err)
	d := NewDispatcher(m, NewReplayManager(zap.NewNop()), zap.NewNop())
	finishSetup(t, m, d)

	p := activePlayer(t, m)
	p.Zones.Hand = []cards.Card{card(t, m, "glutton"), card(t, m, "noble"), card(t, m, "ghoul"), card(t, m, "noble")}
	require.True(t, d.Issue(command.PlayCard{Seat: p.Seat, CardID: "glutton", HandIndex: 0}).OK())

	target := supplantTarget(t, m, p.Color)
	troops, trophies := p.Troops, p.Trophies
	occupant := m.Board().Nodes[target].Occupant

	out := d.Issue(command.DevourSupplant{Seat: p.Seat, SourceCardID: "glutton", TargetCardID: "noble", HandIndex: 0, Node: target})
	assert.Equal(t, rules.ReasonNotGranted, out.Reason)
	assert.Equal(t, troops, p.Troops)
	assert.Equal(t, trophies, p.Trophies)
	assert.Equal(t, occupant, m.Board().Nodes[target].Occupant)
	assert.Equal(t, []string{"noble", "ghoul", "noble"}, p.Zones.HandIDs())
	assert.True(t, m.TurnContext().HasGrant("glutton", cards.EffectDevour), "the plain devour is still available")

	// The ghoul's devour does chain into supplant.
	require.True(t, d.Issue(command.PlayCard{Seat: p.Seat, CardID: "ghoul", HandIndex: 1}).OK())
	out = d.Issue(command.DevourSupplant{Seat: p.Seat, SourceCardID: "ghoul", TargetCardID: "noble", HandIndex: 0, Node: target})
	require.True(t, out.OK(), out.Reason)
	assert.Equal(t, p.Color, m.Board().Nodes[target].Occupant)
	assert.Equal(t, troops-1, p.Troops)
	assert.False(t, m.TurnContext().HasGrant("ghoul", cards.EffectDevour))
	assert.True(t, m.TurnContext().HasGrant("glutton", cards.EffectDevour))
}
