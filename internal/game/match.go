// Package game ties the board, cards and turn structure into a match and
// provides the command dispatcher and replay machinery around it.
package game

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rng"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// ErrPlayerCount is returned for a match with too few or too many players.
var ErrPlayerCount = errors.New("a match needs 2 to 4 players")

// Settings are the tunable match parameters.
type Settings struct {
	HandSize         int `json:"hand_size"`
	MarketSize       int `json:"market_size"`
	StartingTroops   int `json:"starting_troops"`
	StartingSpies    int `json:"starting_spies"`
	SetupDeployments int `json:"setup_deployments"`
}

// DefaultSettings returns the standard rules.
func DefaultSettings() Settings {
	return Settings{
		HandSize:         5,
		MarketSize:       6,
		StartingTroops:   40,
		StartingSpies:    5,
		SetupDeployments: 1,
	}
}

func (s Settings) normalized() Settings {
	def := DefaultSettings()
	if s.HandSize <= 0 {
		s.HandSize = def.HandSize
	}
	if s.MarketSize <= 0 {
		s.MarketSize = def.MarketSize
	}
	if s.StartingTroops <= 0 {
		s.StartingTroops = def.StartingTroops
	}
	if s.StartingSpies < 0 {
		s.StartingSpies = def.StartingSpies
	}
	if s.SetupDeployments <= 0 {
		s.SetupDeployments = def.SetupDeployments
	}
	return s
}

// Score is one seat's end-game tally.
type Score struct {
	Seat          int
	Name          string
	Color         player.Color
	VictoryPoints int
	SiteVP        int
	Trophies      int
	CardVP        int
	Total         int
}

// Match is the authoritative state of one game. It is driven by one command
// at a time and must not be shared between goroutines without a
// CommandQueue in front of it.
type Match struct {
	ID       uuid.UUID
	logger   *zap.Logger
	settings Settings
	cards    cards.Database
	rng      *rng.SeededRandom
	board    *board.Board
	orch     *board.Orchestrator
	players  []*player.Player
	turns    *rules.TurnManager
	ctx      *rules.TurnContext
	phase    rules.MatchPhase

	market     []cards.Card
	marketDeck []cards.Card
	// set when an end condition is met; the match finishes when the round ends
	endPending bool

	checkpoints []Checkpoint
}

// NewMatch deals a new match. All randomness, from seating order to the
// first hands, is drawn from seed, so two matches built from the same
// arguments are identical.
func NewMatch(logger *zap.Logger, seed int64, names []string, settings Settings, db cards.Database) (*Match, error) {
	if logger == nil {
		panic("game: nil logger")
	}
	if db == nil {
		panic("game: nil card database")
	}
	if len(names) < 2 || len(names) > len(player.PlayerColors) {
		return nil, fmt.Errorf("%w: got %d", ErrPlayerCount, len(names))
	}
	settings = settings.normalized()

	b, err := board.StandardLayout()
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}

	m := &Match{
		ID:       uuid.New(),
		logger:   logger,
		settings: settings,
		cards:    db,
		rng:      rng.New(seed),
		board:    b,
		phase:    rules.PhaseSetup,
	}
	for seat, name := range names {
		m.players = append(m.players, player.New(seat, name, player.PlayerColors[seat], settings.StartingTroops, settings.StartingSpies))
	}
	m.orch = board.NewOrchestrator(b, logger, m.Phase, settings.SetupDeployments, m.playerByColor)

	order := make([]int, len(m.players))
	for i := range order {
		order[i] = i
	}
	m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	m.turns = rules.NewTurnManager(order)

	if m.marketDeck, err = m.shuffledDeck(db.MarketDeck()); err != nil {
		return nil, fmt.Errorf("market deck: %w", err)
	}
	m.refillMarket()

	for _, p := range m.players {
		deck, err := m.shuffledDeck(db.StarterDeck())
		if err != nil {
			return nil, fmt.Errorf("starter deck for seat %d: %w", p.Seat, err)
		}
		p.Zones.Deck = deck
		p.Zones.Draw(settings.HandSize, m.rng)
	}

	m.orch.Control().RecalculateAll()
	m.ctx = rules.NewTurnContext(m.turns.ActiveSeat(), m.turns.TurnNumber())
	m.checkpoint()

	logger.Info("match created",
		zap.String("match_id", m.ID.String()),
		zap.Int64("seed", seed),
		zap.Int("players", len(m.players)),
		zap.Ints("turn_order", order),
		zap.Int64("rng_calls", m.rng.Calls()),
	)
	return m, nil
}

// shuffledDeck resolves ids and shuffles them. The ids are sorted first so
// the collaborator's iteration order cannot leak into the shuffle.
func (m *Match) shuffledDeck(ids []string) ([]cards.Card, error) {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	deck := make([]cards.Card, 0, len(sorted))
	for _, id := range sorted {
		card, ok := m.cards.Card(id)
		if !ok {
			return nil, fmt.Errorf("unknown card %q", id)
		}
		deck = append(deck, card)
	}
	m.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck, nil
}

func (m *Match) refillMarket() {
	for len(m.market) < m.settings.MarketSize && len(m.marketDeck) > 0 {
		m.market = append(m.market, m.marketDeck[0])
		m.marketDeck = m.marketDeck[1:]
	}
}

// Phase returns the current match phase.
func (m *Match) Phase() rules.MatchPhase { return m.phase }

// ActiveSeat returns the seat whose turn it is.
func (m *Match) ActiveSeat() int { return m.turns.ActiveSeat() }

// Turn returns the current turn number, starting at 1.
func (m *Match) Turn() int { return m.turns.TurnNumber() }

// Round returns the current round number, starting at 1.
func (m *Match) Round() int { return m.turns.Round() }

// TurnOrder returns the seating order.
func (m *Match) TurnOrder() []int { return m.turns.Order() }

// Seed returns the seed the match was dealt from.
func (m *Match) Seed() int64 { return m.rng.Seed() }

// RNGCalls returns how many entropy-consuming calls the match made.
func (m *Match) RNGCalls() int64 { return m.rng.Calls() }

// Settings returns the effective match settings.
func (m *Match) Settings() Settings { return m.settings }

// Board returns the board.
func (m *Match) Board() *board.Board { return m.board }

// Rules returns the board rule engine for pre-flight legality checks.
func (m *Match) Rules() *board.RuleEngine { return m.orch.Rules() }

// TurnContext returns the active turn's context.
func (m *Match) TurnContext() *rules.TurnContext { return m.ctx }

// Market returns the face-up market row.
func (m *Match) Market() []cards.Card { return m.market }

// MarketDeckSize returns how many cards are left to refill the market.
func (m *Match) MarketDeckSize() int { return len(m.marketDeck) }

// Checkpoints returns the turn-boundary checkpoints recorded so far.
func (m *Match) Checkpoints() []Checkpoint {
	return append([]Checkpoint(nil), m.checkpoints...)
}

// Players returns the players in seat order.
func (m *Match) Players() []*player.Player { return m.players }

// Player returns the player at seat.
func (m *Match) Player(seat int) (*player.Player, bool) {
	if seat < 0 || seat >= len(m.players) {
		return nil, false
	}
	return m.players[seat], true
}

// Names returns the player names in seat order.
func (m *Match) Names() []string {
	names := make([]string, len(m.players))
	for i, p := range m.players {
		names[i] = p.Name
	}
	return names
}

func (m *Match) playerByColor(c player.Color) (*player.Player, bool) {
	for _, p := range m.players {
		if p.Color == c {
			return p, true
		}
	}
	return nil, false
}

// Execute validates and applies one command. Invalid input never panics or
// returns an error; the outcome carries the reason instead.
func (m *Match) Execute(cmd command.Command) rules.Outcome {
	action := string(cmd.Kind())
	if m.phase == rules.PhaseFinished {
		return m.reject(action, cmd.Actor(), rules.ReasonMatchFinished)
	}
	p, ok := m.Player(cmd.Actor())
	if !ok {
		return m.reject(action, cmd.Actor(), rules.ReasonUnknownPlayer)
	}
	if p.Seat != m.turns.ActiveSeat() {
		return m.reject(action, p.Seat, rules.ReasonNotActivePlayer)
	}
	if m.phase == rules.PhaseSetup {
		switch c := cmd.(type) {
		case command.Deploy:
			if c.SourceCardID != "" || m.orch.SetupDone(p.Seat) {
				return m.reject(action, p.Seat, rules.ReasonWrongPhase)
			}
		case command.EndTurn:
		default:
			return m.reject(action, p.Seat, rules.ReasonWrongPhase)
		}
	}

	switch c := cmd.(type) {
	case command.PlayCard:
		return m.playCard(p, c)
	case command.BuyCard:
		return m.buyCard(p, c)
	case command.Deploy:
		return m.deploy(p, c)
	case command.Assassinate:
		return m.assassinate(p, c)
	case command.Supplant:
		return m.supplant(p, c)
	case command.PlaceSpy:
		return m.placeSpy(p, c)
	case command.ReturnSpy:
		return m.returnSpy(p, c)
	case command.ReturnTroop:
		return m.returnTroop(p, c)
	case command.Move:
		return m.move(p, c)
	case command.Devour:
		return m.devour(p, c)
	case command.DevourSupplant:
		return m.devourSupplant(p, c)
	case command.Promote:
		return m.promote(p, c)
	case command.EndTurn:
		return m.endTurn(p)
	}
	m.logger.Error("unhandled command", zap.String("kind", action))
	return rules.Failed(action, rules.ReasonWrongState)
}

func (m *Match) playCard(p *player.Player, c command.PlayCard) rules.Outcome {
	const action = string(command.KindPlayCard)
	idx := handIndex(&p.Zones, c.CardID, c.HandIndex)
	if idx < 0 {
		return m.reject(action, p.Seat, rules.ReasonUnknownCard)
	}
	card := p.Zones.Hand[idx]

	// Focus must be decided while the card is still in hand, otherwise the
	// card could satisfy its own Focus.
	focus := card.HasFocus() && m.ctx.FocusEligible(card, &p.Zones, idx)

	p.Zones.RemoveFromHand(idx)
	p.Zones.Played = append(p.Zones.Played, card)
	m.ctx.RecordPlay(card.Aspect)

	out := rules.Completed(action)
	effects := card.Effects
	if focus {
		effects = append(effects[:len(effects):len(effects)], card.FocusEffects...)
	}
	for _, e := range effects {
		m.applyEffect(p, card, e, &out)
	}

	m.logger.Debug("card played",
		zap.Int("seat", p.Seat),
		zap.String("card", card.ID),
		zap.Bool("focus", focus),
		zap.Int("pending", len(out.Pending)),
	)
	return out
}

func (m *Match) applyEffect(p *player.Player, card cards.Card, e cards.Effect, out *rules.Outcome) {
	switch e.Kind {
	case cards.EffectGainPower:
		p.Grant(resources.Power, e.Amount)
	case cards.EffectGainInfluence:
		p.Grant(resources.Influence, e.Amount)
	case cards.EffectDraw:
		p.Zones.Draw(e.Amount, m.rng)
	case cards.EffectPromote:
		m.ctx.AddPromotionCredit(card.ID, e.Amount)
	default:
		if !e.Kind.IsTargeted() {
			m.logger.Warn("unknown card effect", zap.String("card", card.ID), zap.String("effect", string(e.Kind)))
			return
		}
		var then cards.EffectKind
		if e.Then != nil {
			then = e.Then.Kind
		}
		m.ctx.AddChainedGrant(card.ID, e.Kind, then, e.Amount)
		one := e
		one.Amount = 1
		for i := 0; i < e.Amount; i++ {
			out.Pending = append(out.Pending, rules.PendingEffect{CardID: card.ID, Effect: one})
		}
	}
}

func (m *Match) buyCard(p *player.Player, c command.BuyCard) rules.Outcome {
	const action = string(command.KindBuyCard)
	idx := c.MarketIndex
	if idx < 0 || idx >= len(m.market) || m.market[idx].ID != c.CardID {
		idx = indexOf(m.market, c.CardID)
	}
	if idx < 0 {
		return m.reject(action, p.Seat, rules.ReasonUnknownCard)
	}
	card := m.market[idx]
	if !p.Pool.Spend(resources.Influence, card.Cost) {
		return m.reject(action, p.Seat, rules.ReasonInsufficientInfluence)
	}
	m.market = append(m.market[:idx:idx], m.market[idx+1:]...)
	p.Zones.Discard = append(p.Zones.Discard, card)
	m.refillMarket()
	if len(m.marketDeck) == 0 && !m.endPending {
		m.endPending = true
		m.logger.Info("market exhausted, match ends with the round", zap.Int("round", m.turns.Round()))
	}

	m.logger.Debug("card bought", zap.Int("seat", p.Seat), zap.String("card", card.ID), zap.Int("cost", card.Cost))
	return rules.Completed(action)
}

// authorize checks that p may take a targeted action: a card-initiated
// action needs an unused grant, a UI-initiated one must afford cost. Nothing
// is consumed here; settle does that once the action succeeded.
func (m *Match) authorize(p *player.Player, sourceCardID string, effect cards.EffectKind, cost int) rules.Reason {
	if sourceCardID != "" {
		if !m.ctx.HasGrant(sourceCardID, effect) {
			return rules.ReasonNotGranted
		}
		return rules.ReasonNone
	}
	if cost < 0 {
		return rules.ReasonNotGranted
	}
	if !p.Pool.CanSpend(resources.Power, cost) {
		return rules.ReasonInsufficientPower
	}
	return rules.ReasonNone
}

func (m *Match) settle(p *player.Player, sourceCardID string, effect cards.EffectKind, cost int) {
	if sourceCardID != "" {
		m.ctx.ConsumeGrant(sourceCardID, effect)
		return
	}
	p.Pool.Spend(resources.Power, cost)
}

// cardOnly marks actions that have no UI-initiated form.
const cardOnly = -1

func (m *Match) deploy(p *player.Player, c command.Deploy) rules.Outcome {
	const action = string(command.KindDeploy)
	var out rules.Outcome
	if c.SourceCardID != "" {
		if reason := m.authorize(p, c.SourceCardID, cards.EffectDeploy, 0); reason != rules.ReasonNone {
			return m.reject(action, p.Seat, reason)
		}
		out = m.orch.DeployFree(p, c.Node)
		if out.OK() {
			m.settle(p, c.SourceCardID, cards.EffectDeploy, 0)
		}
	} else {
		// TryDeploy charges the power itself and knows setup is free.
		out = m.orch.TryDeploy(p, c.Node)
	}
	if out.OK() {
		m.checkBarracks(p)
	}
	return out
}

func (m *Match) assassinate(p *player.Player, c command.Assassinate) rules.Outcome {
	const action = string(command.KindAssassinate)
	if !m.orch.Rules().CanAssassinate(c.Node, p.Color) {
		return m.reject(action, p.Seat, rules.ReasonIllegalTarget)
	}
	if reason := m.authorize(p, c.SourceCardID, cards.EffectAssassinate, board.AssassinateCost); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	out := m.orch.Assassinate(c.Node, p)
	if out.OK() {
		m.settle(p, c.SourceCardID, cards.EffectAssassinate, board.AssassinateCost)
	}
	return out
}

func (m *Match) supplant(p *player.Player, c command.Supplant) rules.Outcome {
	const action = string(command.KindSupplant)
	if reason := m.authorize(p, c.SourceCardID, cards.EffectSupplant, cardOnly); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	out := m.orch.Supplant(c.Node, p)
	if out.OK() {
		m.settle(p, c.SourceCardID, cards.EffectSupplant, 0)
		m.checkBarracks(p)
	}
	return out
}

func (m *Match) placeSpy(p *player.Player, c command.PlaceSpy) rules.Outcome {
	const action = string(command.KindPlaceSpy)
	if reason := m.authorize(p, c.SourceCardID, cards.EffectPlaceSpy, cardOnly); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	out := m.orch.PlaceSpy(c.Site, p)
	if out.OK() {
		m.settle(p, c.SourceCardID, cards.EffectPlaceSpy, 0)
	}
	return out
}

func (m *Match) returnSpy(p *player.Player, c command.ReturnSpy) rules.Outcome {
	const action = string(command.KindReturnSpy)
	if !m.orch.Rules().CanReturnSpecificSpy(c.Site, p.Color, c.Color) {
		return m.reject(action, p.Seat, rules.ReasonIllegalTarget)
	}
	if reason := m.authorize(p, c.SourceCardID, cards.EffectReturnSpy, board.ReturnSpyCost); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	out := m.orch.ReturnSpecificSpy(c.Site, p, c.Color)
	if out.OK() {
		m.settle(p, c.SourceCardID, cards.EffectReturnSpy, board.ReturnSpyCost)
	}
	return out
}

func (m *Match) returnTroop(p *player.Player, c command.ReturnTroop) rules.Outcome {
	const action = string(command.KindReturnTroop)
	if reason := m.authorize(p, c.SourceCardID, cards.EffectReturnTroop, cardOnly); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	out := m.orch.ReturnTroop(c.Node, p)
	if out.OK() {
		m.settle(p, c.SourceCardID, cards.EffectReturnTroop, 0)
	}
	return out
}

func (m *Match) move(p *player.Player, c command.Move) rules.Outcome {
	const action = string(command.KindMove)
	if reason := m.authorize(p, c.SourceCardID, cards.EffectMove, cardOnly); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	out := m.orch.MoveTroop(c.Source, c.Destination, p)
	if out.OK() {
		m.settle(p, c.SourceCardID, cards.EffectMove, 0)
	}
	return out
}

func (m *Match) devour(p *player.Player, c command.Devour) rules.Outcome {
	const action = string(command.KindDevour)
	if reason := m.authorize(p, c.SourceCardID, cards.EffectDevour, cardOnly); reason != rules.ReasonNone {
		return m.reject(action, p.Seat, reason)
	}
	if c.Skipped {
		m.settle(p, c.SourceCardID, cards.EffectDevour, 0)
		m.logger.Debug("devour skipped", zap.Int("seat", p.Seat), zap.String("card", c.SourceCardID))
		return rules.Completed(action)
	}
	idx := handIndex(&p.Zones, c.TargetCardID, c.HandIndex)
	if idx < 0 {
		return m.reject(action, p.Seat, rules.ReasonIllegalTarget)
	}
	card, _ := p.Zones.Devour(idx)
	m.settle(p, c.SourceCardID, cards.EffectDevour, 0)
	m.logger.Debug("card devoured", zap.Int("seat", p.Seat), zap.String("card", card.ID))
	return rules.Completed(action)
}

func (m *Match) devourSupplant(p *player.Player, c command.DevourSupplant) rules.Outcome {
	const action = string(command.KindDevourSupplant)
	if c.SourceCardID == "" || !m.ctx.HasChainedGrant(c.SourceCardID, cards.EffectDevour, cards.EffectSupplant) {
		return m.reject(action, p.Seat, rules.ReasonNotGranted)
	}
	idx := handIndex(&p.Zones, c.TargetCardID, c.HandIndex)
	if idx < 0 || !m.orch.Rules().CanSupplant(c.Node, p.Color) {
		return m.reject(action, p.Seat, rules.ReasonIllegalTarget)
	}
	if p.Troops <= 0 {
		return m.reject(action, p.Seat, rules.ReasonNoTroops)
	}

	card, _ := p.Zones.Devour(idx)
	out := m.orch.Supplant(c.Node, p)
	out.Action = action
	m.ctx.ConsumeChainedGrant(c.SourceCardID, cards.EffectDevour, cards.EffectSupplant)
	m.checkBarracks(p)
	m.logger.Debug("card devoured for supplant",
		zap.Int("seat", p.Seat),
		zap.String("card", card.ID),
		zap.Int("node", int(c.Node)),
	)
	return out
}

func (m *Match) promote(p *player.Player, c command.Promote) rules.Outcome {
	const action = string(command.KindPromote)
	if !p.Zones.IsPlayed(c.TargetCardID) && indexOf(p.Zones.Discard, c.TargetCardID) < 0 {
		return m.reject(action, p.Seat, rules.ReasonIllegalTarget)
	}
	source, ok := m.ctx.ConsumePromotionCredit(c.SourceCardID)
	if !ok {
		return m.reject(action, p.Seat, rules.ReasonNoPromotionCredit)
	}
	p.Zones.Promote(c.TargetCardID)
	m.logger.Debug("card promoted",
		zap.Int("seat", p.Seat),
		zap.String("card", c.TargetCardID),
		zap.String("source", source),
	)
	return rules.Completed(action)
}

// endTurn cleans up, draws a new hand and rotates to the next seat. Phase
// transitions happen here and nowhere else.
func (m *Match) endTurn(p *player.Player) rules.Outcome {
	out := rules.Completed(string(command.KindEndTurn))

	p.Zones.Cleanup()
	p.Zones.Draw(m.settings.HandSize, m.rng)

	next, newRound := m.turns.Advance()

	if m.phase == rules.PhaseSetup && m.setupFinished() {
		m.phase = rules.PhasePlaying
		out.PhaseChanged = true
		m.logger.Info("setup finished", zap.Int("turn", m.turns.TurnNumber()))
	}
	if m.phase == rules.PhasePlaying && newRound && m.endPending {
		m.phase = rules.PhaseFinished
		out.PhaseChanged = true
		m.logger.Info("match finished",
			zap.String("match_id", m.ID.String()),
			zap.Int("rounds", m.turns.Round()-1),
			zap.Any("scores", m.Scores()),
		)
	}

	m.ctx = rules.NewTurnContext(next, m.turns.TurnNumber())
	if m.phase == rules.PhasePlaying {
		if active, ok := m.Player(next); ok {
			out.Rewards = append(out.Rewards, m.orch.Control().DistributeStartOfTurnRewards(active)...)
		}
	}
	m.checkpoint()

	m.logger.Debug("turn ended",
		zap.Int("seat", p.Seat),
		zap.Int("next", next),
		zap.Int("turn", m.turns.TurnNumber()),
		zap.Stringer("phase", m.phase),
	)
	return out
}

// setupFinished reports whether the setup round is over: every player has a
// troop on the board or finished its setup deployments. A match that never
// gets there leaves setup after two full rounds.
func (m *Match) setupFinished() bool {
	done := true
	for _, p := range m.players {
		if m.board.CountOccupied(p.Color) == 0 && !m.orch.SetupDone(p.Seat) {
			done = false
			break
		}
	}
	if done {
		return true
	}
	if m.turns.TurnNumber() > 2*len(m.players) {
		m.logger.Warn("forcing end of setup", zap.Int("turn", m.turns.TurnNumber()))
		return true
	}
	return false
}

func (m *Match) checkBarracks(p *player.Player) {
	if m.phase != rules.PhasePlaying || p.Troops > 0 || m.endPending {
		return
	}
	m.endPending = true
	m.logger.Info("barracks empty, match ends with the round", zap.Int("seat", p.Seat))
}

// Scores tallies every seat, in seat order.
func (m *Match) Scores() []Score {
	scores := make([]Score, len(m.players))
	for i, p := range m.players {
		s := Score{
			Seat:          p.Seat,
			Name:          p.Name,
			Color:         p.Color,
			VictoryPoints: p.Pool.Get(resources.VictoryPoints),
			Trophies:      p.Trophies,
			CardVP:        p.Zones.VictoryPoints(),
		}
		for _, site := range m.board.Sites {
			if site.Owner == p.Color {
				s.SiteVP += site.VictoryPoints
			}
		}
		s.Total = s.VictoryPoints + s.SiteVP + s.Trophies + s.CardVP
		scores[i] = s
	}
	return scores
}

func (m *Match) reject(action string, seat int, reason rules.Reason) rules.Outcome {
	m.logger.Debug("command rejected",
		zap.String("action", action),
		zap.Int("seat", seat),
		zap.String("reason", string(reason)),
	)
	return rules.Failed(action, reason)
}

// handIndex resolves a card by id, preferring the recorded position when it
// still holds that id.
func handIndex(z *cards.Zones, id string, hint int) int {
	if hint >= 0 && hint < len(z.Hand) && z.Hand[hint].ID == id {
		return hint
	}
	return z.IndexInHand(id)
}

func indexOf(zone []cards.Card, id string) int {
	for i, c := range zone {
		if c.ID == id {
			return i
		}
	}
	return -1
}
