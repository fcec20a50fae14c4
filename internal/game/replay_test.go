package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"github.com/undercity/undercity-server-go/internal/game/targeting"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// playScript drives a short game: setup, then each turn the active player
// plays its whole hand, buys the first affordable market card and passes.
// One out-of-turn command is mixed in.
func playScript(t *testing.T, m *Match, d *Dispatcher, turns int) {
	t.Helper()
	finishSetup(t, m, d)

	for turn := 0; turn < turns; turn++ {
		p := activePlayer(t, m)
		for len(p.Zones.Hand) > 0 {
			c := p.Zones.Hand[0]
			require.True(t, d.Issue(command.PlayCard{Seat: p.Seat, CardID: c.ID, HandIndex: 0}).OK())
		}
		if turn == 0 {
			idle := m.TurnOrder()[1%len(m.TurnOrder())]
			require.False(t, d.Issue(command.EndTurn{Seat: idle}).OK())
		}
		for i, c := range m.Market() {
			if p.Pool.Get(resources.Influence) >= c.Cost {
				require.True(t, d.Issue(command.BuyCard{Seat: p.Seat, CardID: c.ID, MarketIndex: i}).OK())
				break
			}
		}
		require.True(t, d.Issue(command.EndTurn{Seat: p.Seat}).OK())
	}
}

func TestReplayReproducesMatch(t *testing.T) {
	m, d := newTestTable(t, "alice", "bob", "carol")
	playScript(t, m, d, 9)

	rec := d.Recording()
	data, err := rec.Marshal()
	require.NoError(t, err)

	parsed, err := ParseRecording(data)
	require.NoError(t, err)
	assert.Equal(t, m.ID, parsed.MatchID)
	assert.Equal(t, []string{"alice", "bob", "carol"}, parsed.Players)

	res, err := Replay(parsed, cards.NewStaticDatabase(), zap.NewNop(), true)
	require.NoError(t, err)
	assert.False(t, res.Diverged(), "mismatches: %+v", res.Mismatches)
	assert.Equal(t, len(rec.Records), res.Commands)
	assert.Equal(t, 1, res.Failed)

	got := res.Match.Checkpoints()
	require.Len(t, got, len(rec.Checkpoints))
	for i := range got {
		assert.Equal(t, rec.Checkpoints[i].Hands, got[i].Hands, "hands at checkpoint %d", i)
		assert.Equal(t, rec.Checkpoints[i].RNGCalls, got[i].RNGCalls, "rng calls at checkpoint %d", i)
	}
	assert.Equal(t, m.View().Digest(), res.Match.View().Digest())
}

// skirmishDatabase deals every player a starter deck made of targeted cards,
// so each hand cycles through them within two turns.
type skirmishDatabase struct {
	cards.Database
}

func (skirmishDatabase) StarterDeck() []string {
	return []string{
		"ghoul", "assassin", "spymaster", "infiltrator", "tunnel-guide",
		"zealot", "war-chief", "soldier", "soldier", "noble",
	}
}

// skirmish plays turns through a targeting session, always picking the first
// legal target, until every targeted command kind has succeeded once.
type skirmish struct {
	t  *testing.T
	m  *Match
	s  *targeting.Session
	ok map[command.Kind]int
}

var skirmishKinds = []command.Kind{
	command.KindAssassinate,
	command.KindSupplant,
	command.KindPlaceSpy,
	command.KindReturnSpy,
	command.KindMove,
	command.KindDevour,
	command.KindDevourSupplant,
	command.KindPromote,
}

func (sk *skirmish) done() bool {
	for _, k := range skirmishKinds {
		if sk.ok[k] == 0 {
			return false
		}
	}
	return true
}

func (sk *skirmish) playTurn() {
	t, m, s := sk.t, sk.m, sk.s
	t.Helper()
	p := activePlayer(t, m)

	for len(p.Zones.Hand) > 0 {
		i := p.Zones.IndexInHand("ghoul")
		if i < 0 {
			i = 0
		}
		require.True(t, s.PlayCard(i).OK())
		sk.resolve(p)
	}

	for n := 0; n < 3 && s.TryStartDeploy().Kind == rules.OutcomePending; n++ {
		sk.resolve(p)
	}

	out := s.EndTurn()
	if s.State() == targeting.StateSelectingCardToPromote {
		out = s.SelectPromotion(promotionPick(p))
		if s.State() == targeting.StateSelectingCardToPromote {
			out = s.SkipPromotion()
		}
	}
	require.True(t, out.OK(), "end turn: %s", out.Reason)
	require.Equal(t, targeting.StateNormal, s.State())
}

// resolve answers every targeting prompt with the first legal choice.
func (sk *skirmish) resolve(p *player.Player) {
	t, m, s := sk.t, sk.m, sk.s
	t.Helper()
	re := m.Rules()

	for guard := 0; s.State() != targeting.StateNormal; guard++ {
		require.Less(t, guard, 20, "stuck in %s", s.State())

		var out rules.Outcome
		switch s.State() {
		case targeting.StateTargetingDeploy:
			out = s.SelectNode(firstNode(t, m, func(n board.NodeID) bool { return re.CanDeployAt(n, p.Color) }))
		case targeting.StateTargetingAssassinate, targeting.StateTargetingSupplant:
			out = s.SelectNode(firstNode(t, m, func(n board.NodeID) bool { return re.CanAssassinate(n, p.Color) }))
		case targeting.StateTargetingReturn:
			out = s.SelectNode(firstNode(t, m, func(n board.NodeID) bool { return re.CanReturnTroop(n, p.Color) }))
		case targeting.StateTargetingMoveSource:
			out = s.SelectNode(firstNode(t, m, func(n board.NodeID) bool { return re.CanMoveSource(n, p.Color) }))
		case targeting.StateTargetingMoveDestination:
			src := *s.Pending().MoveSource
			out = s.SelectNode(firstNode(t, m, func(n board.NodeID) bool { return re.CanMoveDestination(src, n) }))
		case targeting.StateTargetingPlaceSpy:
			out = s.SelectSite(firstSite(t, m, func(id board.SiteID) bool { return re.CanPlaceSpy(id, p.Color) }))
		case targeting.StateTargetingReturnSpy:
			out = s.SelectSite(firstSite(t, m, func(id board.SiteID) bool { return re.CanReturnSpy(id, p.Color) }))
		case targeting.StateSelectingSpyToReturn:
			out = s.FinalizeSpyReturn(re.EnemySpyColors(*s.Pending().Site, p.Color)[0])
		case targeting.StateTargetingDevourHand:
			// A skipped devour is still a recorded Devour; use it once a
			// chained supplant has been seen so both shapes appear.
			if sk.ok[command.KindDevourSupplant] > 0 && sk.ok[command.KindDevour] == 0 {
				out = s.SkipDevour()
			} else {
				out = s.SelectHandCard(starterIndex(p.Zones.Hand))
			}
		default:
			t.Fatalf("unexpected state %s", s.State())
		}
		require.NotEqual(t, rules.OutcomeFailed, out.Kind, "%s: %s", s.State(), out.Reason)
	}
}

func firstNode(t *testing.T, m *Match, legal func(board.NodeID) bool) board.NodeID {
	t.Helper()
	for i := range m.Board().Nodes {
		if legal(board.NodeID(i)) {
			return board.NodeID(i)
		}
	}
	t.Fatal("no legal node")
	return -1
}

func firstSite(t *testing.T, m *Match, legal func(board.SiteID) bool) board.SiteID {
	t.Helper()
	for i := range m.Board().Sites {
		if legal(board.SiteID(i)) {
			return board.SiteID(i)
		}
	}
	t.Fatal("no legal site")
	return -1
}

// promotionPick and starterIndex prefer starter cards so the targeted cards
// stay in the deck.
func promotionPick(p *player.Player) string {
	candidates := append(append([]cards.Card(nil), p.Zones.Played...), p.Zones.Discard...)
	return candidates[starterIndex(candidates)].ID
}

func starterIndex(zone []cards.Card) int {
	for i, c := range zone {
		if c.ID == "noble" || c.ID == "soldier" {
			return i
		}
	}
	return 0
}

func TestReplayReproducesTargetedCommands(t *testing.T) {
	db := skirmishDatabase{cards.NewStaticDatabase()}
	m, err := NewMatch(zap.NewNop(), testSeed, []string{"alice", "bob"}, DefaultSettings(), db)
	require.NoError(t, err)
	d := NewDispatcher(m, NewReplayManager(zap.NewNop()), zap.NewNop())
	finishSetup(t, m, d)

	sk := &skirmish{t: t, m: m, s: targeting.NewSession(d, zap.NewNop()), ok: make(map[command.Kind]int)}
	d.Events().Subscribe(func(e rules.Event) {
		if e.Outcome.OK() {
			sk.ok[command.Kind(e.Command)]++
		}
	})
	for turn := 0; turn < 60 && !sk.done(); turn++ {
		sk.playTurn()
	}
	for _, k := range skirmishKinds {
		require.Positive(t, sk.ok[k], "no successful %s", k)
	}

	rec := d.Recording()
	var spyColors []string
	for _, r := range rec.Records {
		if r.Kind == command.KindReturnSpy {
			spyColors = append(spyColors, r.Color)
		}
	}
	require.NotEmpty(t, spyColors)
	assert.NotContains(t, spyColors, "", "returned spies carry their color")

	data, err := rec.Marshal()
	require.NoError(t, err)
	parsed, err := ParseRecording(data)
	require.NoError(t, err)

	res, err := Replay(parsed, db, zap.NewNop(), true)
	require.NoError(t, err)
	assert.False(t, res.Diverged(), "mismatches: %+v", res.Mismatches)
	assert.Equal(t, len(rec.Records), res.Commands)
	assert.Zero(t, res.Failed)

	got := res.Match.Checkpoints()
	require.Len(t, got, len(rec.Checkpoints))
	for i := range got {
		assert.Equal(t, rec.Checkpoints[i].Hands, got[i].Hands, "hands at checkpoint %d", i)
		assert.Equal(t, rec.Checkpoints[i].RNGCalls, got[i].RNGCalls, "rng calls at checkpoint %d", i)
	}
	assert.Equal(t, m.View().Digest(), res.Match.View().Digest())
}

func TestReplayDetectsDivergence(t *testing.T) {
	m, d := newTestTable(t)
	playScript(t, m, d, 2)

	rec := d.Recording()
	rec.Checkpoints[len(rec.Checkpoints)-1].Digest = "tampered"

	res, err := Replay(rec, cards.NewStaticDatabase(), zap.NewNop(), true)
	require.NoError(t, err)
	require.True(t, res.Diverged())
	assert.Equal(t, len(rec.Checkpoints)-1, res.Mismatches[0].Index)

	res, err = Replay(rec, cards.NewStaticDatabase(), zap.NewNop(), false)
	require.NoError(t, err)
	assert.False(t, res.Diverged())
}

func TestParseRecordingRejectsMalformed(t *testing.T) {
	valid := func() *Recording {
		return &Recording{
			Version: recordingVersion,
			Seed:    1,
			Players: []string{"a", "b"},
			Records: []command.Record{
				{Seq: 1, Seat: 0, Kind: command.KindEndTurn},
				{Seq: 2, Seat: 1, Kind: command.KindEndTurn},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(r *Recording)
	}{
		{"wrong version", func(r *Recording) { r.Version = 99 }},
		{"sequence gap", func(r *Recording) { r.Records[1].Seq = 3 }},
		{"sequence not from one", func(r *Recording) { r.Records[0].Seq = 0 }},
		{"unknown kind", func(r *Recording) { r.Records[1].Kind = "SUMMON" }},
		{"bad color", func(r *Recording) {
			r.Records[1] = command.Record{Seq: 2, Kind: command.KindReturnSpy, Color: "PURPLE"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			data, err := r.Marshal()
			require.NoError(t, err)
			_, err = ParseRecording(data)
			assert.ErrorIs(t, err, ErrMalformedReplay)
		})
	}

	_, err := ParseRecording([]byte("{not json"))
	assert.ErrorIs(t, err, ErrMalformedReplay)

	data, err := valid().Marshal()
	require.NoError(t, err)
	_, err = ParseRecording(data)
	assert.NoError(t, err)
}

func TestStartReplayMalformedStaysIdle(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	rm := NewReplayManager(zap.New(core))

	_, err := rm.StartReplay([]byte(`{"version":1,"records":[{"seq":2,"kind":"END_TURN"}]}`))
	assert.ErrorIs(t, err, ErrMalformedReplay)
	assert.False(t, rm.IsReplaying())
	assert.Equal(t, 1, logs.FilterMessage("cannot start replay").Len())
}

func TestGetNextCommandHydration(t *testing.T) {
	m := newTestMatch(t)
	seat := m.ActiveSeat()
	p := activePlayer(t, m)
	hand := p.Zones.HandIDs()

	// Move a distinct card to the end so an id lookup has to search.
	p.Zones.Hand[len(hand)-1] = card(t, m, "matron")
	hand = p.Zones.HandIDs()

	core, logs := observer.New(zapcore.DebugLevel)
	rm := NewReplayManager(zap.New(core))
	require.NoError(t, rm.Load([]command.Record{
		{Seq: 1, Seat: seat, Kind: command.KindPlayCard, CardID: "matron", Index: 0},
		{Seq: 2, Seat: seat, Kind: command.KindPlayCard, CardID: "ghost", Index: 1},
		{Seq: 3, Seat: seat, Kind: command.KindPlayCard, CardID: "ghost", Index: 99},
		{Seq: 4, Seat: seat, Kind: command.KindBuyCard, CardID: m.Market()[3].ID, Index: 3},
		{Seq: 5, Seat: seat, Kind: command.KindEndTurn},
	}))
	require.True(t, rm.IsReplaying())
	assert.Equal(t, 5, rm.Remaining())

	// The id wins over a stale position.
	cmd := rm.GetNextCommand(m)
	assert.Equal(t, command.PlayCard{Seat: seat, CardID: "matron", HandIndex: len(hand) - 1}, cmd)
	assert.Zero(t, logs.FilterMessage("stale card reference, using recorded position").Len())

	// Unknown id falls back to the recorded position with a warning.
	cmd = rm.GetNextCommand(m)
	assert.Equal(t, command.PlayCard{Seat: seat, CardID: hand[1], HandIndex: 1}, cmd)
	assert.Equal(t, 1, logs.FilterMessage("stale card reference, using recorded position").Len())

	// Both fail: logged and skipped.
	cmd = rm.GetNextCommand(m)
	assert.Equal(t, command.BuyCard{Seat: seat, CardID: m.Market()[3].ID, MarketIndex: 3}, cmd)
	assert.Equal(t, 1, logs.FilterMessage("replay record dropped").Len())

	assert.Equal(t, command.EndTurn{Seat: seat}, rm.GetNextCommand(m))

	assert.Nil(t, rm.GetNextCommand(m))
	assert.False(t, rm.IsReplaying())
	assert.Equal(t, 1, logs.FilterMessage("replay finished").Len())
}

func TestDispatcherDoesNotRecordWhileReplaying(t *testing.T) {
	m, d := newTestTable(t)
	seat := m.ActiveSeat()
	require.NoError(t, d.replay.Load([]command.Record{
		{Seq: 1, Seat: seat, Kind: command.KindEndTurn},
	}))

	out, ok := d.Step()
	require.True(t, ok)
	assert.True(t, out.OK())
	assert.Empty(t, d.Records())

	_, ok = d.Step()
	assert.False(t, ok)

	// Back to live play: numbering starts at one.
	d.Issue(command.EndTurn{Seat: m.ActiveSeat()})
	require.Len(t, d.Records(), 1)
	assert.Equal(t, 1, d.Records()[0].Seq)
}

func TestRecordingFileRoundTrip(t *testing.T) {
	m, d := newTestTable(t)
	playScript(t, m, d, 2)
	rec := d.Recording()

	dir := filepath.Join(t.TempDir(), "replays")
	path, err := rec.SaveToFile(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, m.ID.String()+".replay"), path)

	loaded, err := LoadRecordingFile(path)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)

	require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o644))
	_, err = LoadRecordingFile(path)
	assert.ErrorIs(t, err, ErrMalformedReplay)

	_, err = LoadRecordingFile(filepath.Join(dir, "missing.replay"))
	assert.Error(t, err)
}
