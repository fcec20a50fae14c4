package targeting

import (
	"fmt"

	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Host is the match-side collaborator of a session.
type Host interface {
	ActiveSeat() int
	Phase() rules.MatchPhase
	Player(seat int) (*player.Player, bool)
	Rules() *board.RuleEngine
	TurnContext() *rules.TurnContext
	Issue(cmd command.Command) rules.Outcome
}

// Pending is a snapshot of the session's pending targets.
type Pending struct {
	// CardID is the card whose effect is being targeted; empty when the
	// action was started from the UI.
	CardID       string
	Site         *board.SiteID
	MoveSource   *board.NodeID
	DevourCardID string
}

type devourPick struct {
	cardID    string
	handIndex int
}

// Session is the targeting state machine of the local player.
type Session struct {
	host   Host
	logger *zap.Logger
	state  State

	pendingCard string
	pendingThen *cards.Effect
	pendingSite *board.SiteID
	moveSource  *board.NodeID
	devour      *devourPick

	// effects still to be targeted for the card being played, in order
	queue []rules.PendingEffect
}

// NewSession creates a session in the Normal state.
func NewSession(host Host, logger *zap.Logger) *Session {
	if host == nil {
		panic("targeting: nil host")
	}
	if logger == nil {
		panic("targeting: nil logger")
	}
	return &Session{host: host, logger: logger}
}

// State returns the current targeting state.
func (s *Session) State() State { return s.state }

// Pending returns the pending targets.
func (s *Session) Pending() Pending {
	p := Pending{CardID: s.pendingCard, Site: s.pendingSite, MoveSource: s.moveSource}
	if s.devour != nil {
		p.DevourCardID = s.devour.cardID
	}
	return p
}

// QueuedEffects returns how many card effects wait behind the current one.
func (s *Session) QueuedEffects() int { return len(s.queue) }

// TryStartDeploy enters deploy targeting from the UI.
func (s *Session) TryStartDeploy() rules.Outcome {
	const action = string(command.KindDeploy)
	p, out, ok := s.startable(action)
	if !ok {
		return out
	}
	re := s.host.Rules()
	setup := s.host.Phase() == rules.PhaseSetup
	switch {
	case !setup && p.Power() < board.DeployCost:
		return s.reject(action, rules.ReasonInsufficientPower)
	case p.Troops <= 0:
		return s.reject(action, rules.ReasonNoTroops)
	case setup && !re.HasValidSetupDeployTarget(), !setup && !re.HasValidDeployTarget(p.Color):
		return s.reject(action, rules.ReasonNoLegalTarget)
	}
	s.enter(StateTargetingDeploy, "", nil)
	return rules.Waiting(action)
}

// TryStartAssassinate enters assassinate targeting from the UI. The fixed
// cost is paid when the target is chosen.
func (s *Session) TryStartAssassinate() rules.Outcome {
	const action = string(command.KindAssassinate)
	p, out, ok := s.startable(action)
	if !ok {
		return out
	}
	switch {
	case p.Power() < board.AssassinateCost:
		return s.reject(action, rules.ReasonInsufficientPower)
	case !s.host.Rules().HasValidAssassinateTarget(p.Color):
		return s.reject(action, rules.ReasonNoLegalTarget)
	}
	s.enter(StateTargetingAssassinate, "", nil)
	return rules.Waiting(action)
}

// TryStartReturnSpy enters return-spy targeting from the UI.
func (s *Session) TryStartReturnSpy() rules.Outcome {
	const action = string(command.KindReturnSpy)
	p, out, ok := s.startable(action)
	if !ok {
		return out
	}
	switch {
	case p.Power() < board.ReturnSpyCost:
		return s.reject(action, rules.ReasonInsufficientPower)
	case !s.host.Rules().HasValidReturnSpyTarget(p.Color):
		return s.reject(action, rules.ReasonNoLegalTarget)
	}
	s.enter(StateTargetingReturnSpy, "", nil)
	return rules.Waiting(action)
}

// PlayCard plays the hand card at handIndex and starts targeting its
// targeted effects one after another.
func (s *Session) PlayCard(handIndex int) rules.Outcome {
	const action = string(command.KindPlayCard)
	p, out, ok := s.startable(action)
	if !ok {
		return out
	}
	if handIndex < 0 || handIndex >= len(p.Zones.Hand) {
		return s.reject(action, rules.ReasonUnknownCard)
	}
	out = s.host.Issue(command.PlayCard{Seat: p.Seat, CardID: p.Zones.Hand[handIndex].ID, HandIndex: handIndex})
	if !out.OK() {
		return out
	}
	s.queue = append(s.queue[:0], out.Pending...)
	s.advance()
	return out
}

// SelectNode handles a node click in any node-targeting state.
func (s *Session) SelectNode(node board.NodeID) rules.Outcome {
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return s.reject("SELECT_NODE", rules.ReasonUnknownPlayer)
	}
	re := s.host.Rules()

	switch s.state {
	case StateTargetingDeploy:
		legal := re.CanDeployAt(node, p.Color)
		if s.host.Phase() == rules.PhaseSetup {
			legal = re.CanSetupDeployAt(node)
		}
		if !legal {
			return s.retry(string(command.KindDeploy))
		}
		return s.resolve(command.Deploy{Seat: p.Seat, Node: node, SourceCardID: s.pendingCard})

	case StateTargetingAssassinate:
		if !re.CanAssassinate(node, p.Color) {
			return s.retry(string(command.KindAssassinate))
		}
		return s.resolve(command.Assassinate{Seat: p.Seat, Node: node, SourceCardID: s.pendingCard})

	case StateTargetingSupplant:
		if !re.CanSupplant(node, p.Color) {
			return s.retry(string(command.KindSupplant))
		}
		if s.devour != nil {
			return s.resolve(command.DevourSupplant{
				Seat:         p.Seat,
				SourceCardID: s.pendingCard,
				TargetCardID: s.devour.cardID,
				HandIndex:    s.devour.handIndex,
				Node:         node,
			})
		}
		return s.resolve(command.Supplant{Seat: p.Seat, Node: node, SourceCardID: s.pendingCard})

	case StateTargetingReturn:
		if !re.CanReturnTroop(node, p.Color) {
			return s.retry(string(command.KindReturnTroop))
		}
		return s.resolve(command.ReturnTroop{Seat: p.Seat, Node: node, SourceCardID: s.pendingCard})

	case StateTargetingMoveSource:
		if !re.CanMoveSource(node, p.Color) {
			return s.retry(string(command.KindMove))
		}
		src := node
		s.state = StateTargetingMoveDestination
		s.moveSource = &src
		return rules.Waiting(string(command.KindMove))

	case StateTargetingMoveDestination:
		if !re.CanMoveDestination(*s.moveSource, node) {
			// the source stays selected so the player can pick again
			return s.retry(string(command.KindMove))
		}
		return s.resolve(command.Move{
			Seat:         p.Seat,
			Source:       *s.moveSource,
			Destination:  node,
			SourceCardID: s.pendingCard,
		})

	default:
		return s.reject("SELECT_NODE", rules.ReasonWrongState)
	}
}

// SelectSite handles a site click while placing or returning a spy.
func (s *Session) SelectSite(site board.SiteID) rules.Outcome {
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return s.reject("SELECT_SITE", rules.ReasonUnknownPlayer)
	}
	re := s.host.Rules()

	switch s.state {
	case StateTargetingPlaceSpy:
		if !re.CanPlaceSpy(site, p.Color) {
			return s.retry(string(command.KindPlaceSpy))
		}
		return s.resolve(command.PlaceSpy{Seat: p.Seat, Site: site, SourceCardID: s.pendingCard})

	case StateTargetingReturnSpy:
		if !re.SitePresence(site, p.Color) {
			return s.retry(string(command.KindReturnSpy))
		}
		colors := re.EnemySpyColors(site, p.Color)
		switch len(colors) {
		case 0:
			return s.retry(string(command.KindReturnSpy))
		case 1:
			return s.resolve(command.ReturnSpy{Seat: p.Seat, Site: site, Color: colors[0], SourceCardID: s.pendingCard})
		}
		chosen := site
		s.state = StateSelectingSpyToReturn
		s.pendingSite = &chosen
		s.logger.Debug("spy return needs a color",
			zap.Int("site", int(site)),
			zap.Int("candidates", len(colors)),
		)
		return rules.Waiting(string(command.KindReturnSpy))

	default:
		return s.reject("SELECT_SITE", rules.ReasonWrongState)
	}
}

// FinalizeSpyReturn picks which spy to return after an ambiguous site click.
func (s *Session) FinalizeSpyReturn(color player.Color) rules.Outcome {
	const action = string(command.KindReturnSpy)
	if s.state != StateSelectingSpyToReturn {
		return s.reject(action, rules.ReasonWrongState)
	}
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return s.reject(action, rules.ReasonUnknownPlayer)
	}
	if !s.host.Rules().CanReturnSpecificSpy(*s.pendingSite, p.Color, color) {
		return s.retry(action)
	}
	return s.resolve(command.ReturnSpy{Seat: p.Seat, Site: *s.pendingSite, Color: color, SourceCardID: s.pendingCard})
}

// SelectHandCard chooses the card to devour. When the devour chains into a
// supplant the choice is buffered and the session moves on to supplant
// targeting; nothing is issued until the troop is chosen.
func (s *Session) SelectHandCard(handIndex int) rules.Outcome {
	const action = string(command.KindDevour)
	if s.state != StateTargetingDevourHand {
		return s.reject(action, rules.ReasonWrongState)
	}
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return s.reject(action, rules.ReasonUnknownPlayer)
	}
	if handIndex < 0 || handIndex >= len(p.Zones.Hand) {
		return s.retry(action)
	}
	card := p.Zones.Hand[handIndex]

	if then := s.pendingThen; then != nil && then.Kind == cards.EffectSupplant &&
		p.Troops > 0 && s.host.Rules().HasValidSupplantTarget(p.Color) {
		s.state = StateTargetingSupplant
		s.pendingThen = nil
		s.devour = &devourPick{cardID: card.ID, handIndex: handIndex}
		return rules.Waiting(string(command.KindDevourSupplant))
	}
	return s.resolve(command.Devour{
		Seat:         p.Seat,
		SourceCardID: s.pendingCard,
		TargetCardID: card.ID,
		HandIndex:    handIndex,
	})
}

// SkipDevour declines the devour. Any chained follow-up is dropped with it.
func (s *Session) SkipDevour() rules.Outcome {
	const action = string(command.KindDevour)
	if s.state != StateTargetingDevourHand {
		return s.reject(action, rules.ReasonWrongState)
	}
	return s.resolve(command.Devour{Seat: s.host.ActiveSeat(), SourceCardID: s.pendingCard, Skipped: true})
}

// EndTurn ends the turn, first asking for promotions when credits remain.
func (s *Session) EndTurn() rules.Outcome {
	const action = string(command.KindEndTurn)
	p, out, ok := s.startable(action)
	if !ok {
		return out
	}
	if s.promotionsOpen(p) {
		s.state = StateSelectingCardToPromote
		return rules.Waiting(string(command.KindPromote))
	}
	return s.resolve(command.EndTurn{Seat: p.Seat})
}

// SelectPromotion promotes cardID with the oldest unused credit. The turn
// ends on its own once no credit or candidate is left.
func (s *Session) SelectPromotion(cardID string) rules.Outcome {
	const action = string(command.KindPromote)
	if s.state != StateSelectingCardToPromote {
		return s.reject(action, rules.ReasonWrongState)
	}
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return s.reject(action, rules.ReasonUnknownPlayer)
	}
	credits := s.host.TurnContext().PendingPromotions()
	if len(credits) == 0 {
		return s.resolve(command.EndTurn{Seat: p.Seat})
	}
	if !p.Zones.IsPlayed(cardID) && !inZone(p.Zones.Discard, cardID) {
		return s.retry(action)
	}

	out := s.host.Issue(command.Promote{Seat: p.Seat, SourceCardID: credits[0].SourceCardID, TargetCardID: cardID})
	if !out.OK() {
		return out
	}
	if s.promotionsOpen(p) {
		return out
	}
	end := s.resolve(command.EndTurn{Seat: p.Seat})
	end.Absorb(out)
	return end
}

// SkipPromotion forfeits the remaining credits and ends the turn.
func (s *Session) SkipPromotion() rules.Outcome {
	if s.state != StateSelectingCardToPromote {
		return s.reject(string(command.KindEndTurn), rules.ReasonWrongState)
	}
	return s.resolve(command.EndTurn{Seat: s.host.ActiveSeat()})
}

// Cancel drops every pending target and queued effect and returns to Normal.
func (s *Session) Cancel() {
	if s.state != StateNormal {
		s.logger.Debug("targeting cancelled", zap.Stringer("state", s.state))
	}
	s.reset()
	s.queue = nil
}

// Validate reports a broken pending-field invariant.
func (s *Session) Validate() error {
	switch {
	case s.state == StateNormal && (s.pendingCard != "" || s.pendingThen != nil):
		return fmt.Errorf("pending card %q in %s", s.pendingCard, s.state)
	case s.pendingSite != nil && s.state != StateSelectingSpyToReturn:
		return fmt.Errorf("pending site in %s", s.state)
	case s.moveSource != nil && s.state != StateTargetingMoveDestination:
		return fmt.Errorf("move source in %s", s.state)
	case s.state == StateTargetingMoveDestination && s.moveSource == nil:
		return fmt.Errorf("missing move source in %s", s.state)
	case s.devour != nil && s.state != StateTargetingSupplant:
		return fmt.Errorf("devour selection in %s", s.state)
	}
	return nil
}

func (s *Session) startable(action string) (*player.Player, rules.Outcome, bool) {
	if s.state != StateNormal {
		return nil, s.reject(action, rules.ReasonWrongState), false
	}
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return nil, s.reject(action, rules.ReasonUnknownPlayer), false
	}
	return p, rules.Outcome{}, true
}

// resolve issues cmd and moves the session on. An illegal target keeps the
// current state for a retry; any other failure abandons the targeting.
func (s *Session) resolve(cmd command.Command) rules.Outcome {
	out := s.host.Issue(cmd)
	switch {
	case out.OK():
		s.reset()
		s.advance()
	case out.Reason == rules.ReasonIllegalTarget:
	default:
		s.logger.Debug("targeting abandoned",
			zap.String("kind", string(cmd.Kind())),
			zap.String("reason", string(out.Reason)),
		)
		s.reset()
		s.queue = nil
	}
	return out
}

// advance starts the next queued card effect that has a legal target.
func (s *Session) advance() {
	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		if s.begin(next) {
			return
		}
		s.logger.Debug("card effect has no legal target",
			zap.String("card", next.CardID),
			zap.String("effect", next.Effect.String()),
		)
	}
}

func (s *Session) begin(pe rules.PendingEffect) bool {
	p, ok := s.host.Player(s.host.ActiveSeat())
	if !ok {
		return false
	}
	re := s.host.Rules()

	var state State
	switch pe.Effect.Kind {
	case cards.EffectDeploy:
		if p.Troops <= 0 || !re.HasValidDeployTarget(p.Color) {
			return false
		}
		state = StateTargetingDeploy
	case cards.EffectAssassinate:
		if !re.HasValidAssassinateTarget(p.Color) {
			return false
		}
		state = StateTargetingAssassinate
	case cards.EffectSupplant:
		if p.Troops <= 0 || !re.HasValidSupplantTarget(p.Color) {
			return false
		}
		state = StateTargetingSupplant
	case cards.EffectPlaceSpy:
		if p.Spies <= 0 || !re.HasValidPlaceSpyTarget(p.Color) {
			return false
		}
		state = StateTargetingPlaceSpy
	case cards.EffectReturnSpy:
		if !re.HasValidReturnSpyTarget(p.Color) {
			return false
		}
		state = StateTargetingReturnSpy
	case cards.EffectReturnTroop:
		if !re.HasValidReturnTroopTarget(p.Color) {
			return false
		}
		state = StateTargetingReturn
	case cards.EffectMove:
		if !re.HasValidMoveTarget(p.Color) {
			return false
		}
		state = StateTargetingMoveSource
	case cards.EffectDevour:
		if len(p.Zones.Hand) == 0 {
			return false
		}
		state = StateTargetingDevourHand
	default:
		return false
	}
	s.enter(state, pe.CardID, pe.Effect.Then)
	return true
}

func (s *Session) enter(state State, cardID string, then *cards.Effect) {
	s.reset()
	s.state = state
	s.pendingCard = cardID
	s.pendingThen = then
	s.logger.Debug("targeting started", zap.Stringer("state", state), zap.String("card", cardID))
}

func (s *Session) reset() {
	s.state = StateNormal
	s.pendingCard = ""
	s.pendingThen = nil
	s.pendingSite = nil
	s.moveSource = nil
	s.devour = nil
}

func (s *Session) promotionsOpen(p *player.Player) bool {
	if s.host.TurnContext().PromotionCredits() == 0 {
		return false
	}
	return len(p.Zones.Played) > 0 || len(p.Zones.Discard) > 0
}

// retry reports an illegal selection without leaving the current state.
func (s *Session) retry(action string) rules.Outcome {
	s.logger.Debug("illegal target", zap.String("action", action), zap.Stringer("state", s.state))
	return rules.Failed(action, rules.ReasonIllegalTarget)
}

func (s *Session) reject(action string, reason rules.Reason) rules.Outcome {
	s.logger.Debug("action rejected", zap.String("action", action), zap.String("reason", string(reason)))
	return rules.Failed(action, reason)
}

func inZone(zone []cards.Card, id string) bool {
	for _, c := range zone {
		if c.ID == id {
			return true
		}
	}
	return false
}
