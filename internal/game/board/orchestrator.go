package board

import (
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Fixed power costs of UI-initiated actions. A card that grants an action
// exempts the payment but never changes the amount.
const (
	DeployCost      = 1
	AssassinateCost = 3
	ReturnSpyCost   = 3
)

// Action names reported in outcomes.
const (
	ActionDeploy      = "DEPLOY"
	ActionAssassinate = "ASSASSINATE"
	ActionSupplant    = "SUPPLANT"
	ActionPlaceSpy    = "PLACE_SPY"
	ActionReturnTroop = "RETURN_TROOP"
	ActionReturnSpy   = "RETURN_SPY"
	ActionMove        = "MOVE"
)

// OwnerLookup resolves a color to the player holding it.
type OwnerLookup func(color player.Color) (*player.Player, bool)

// Orchestrator applies board mutations. Every operation follows the same
// pattern: legality check, resource check, mutate, recalculate the touched
// sites, log. It is driven by one command at a time and is not reentrant.
type Orchestrator struct {
	board   *Board
	rules   *RuleEngine
	control *ControlEvaluator
	logger  *zap.Logger
	phase   func() rules.MatchPhase
	owners  OwnerLookup

	setupQuota    int
	setupDeployed map[int]int
	setupDone     map[int]bool
}

// NewOrchestrator wires an orchestrator over b. phase reports the current
// match phase; setupQuota is how many setup deployments complete a seat's
// setup. owners may be nil, in which case returned spies are not credited.
func NewOrchestrator(b *Board, logger *zap.Logger, phase func() rules.MatchPhase, setupQuota int, owners OwnerLookup) *Orchestrator {
	if logger == nil {
		panic("board: nil logger")
	}
	if phase == nil {
		panic("board: nil phase source")
	}
	if setupQuota < 1 {
		setupQuota = 1
	}
	return &Orchestrator{
		board:         b,
		rules:         NewRuleEngine(b),
		control:       NewControlEvaluator(b, logger),
		logger:        logger,
		phase:         phase,
		owners:        owners,
		setupQuota:    setupQuota,
		setupDeployed: make(map[int]int),
		setupDone:     make(map[int]bool),
	}
}

// Board returns the underlying board.
func (o *Orchestrator) Board() *Board { return o.board }

// Rules returns the rule engine used for legality checks.
func (o *Orchestrator) Rules() *RuleEngine { return o.rules }

// Control returns the site control evaluator.
func (o *Orchestrator) Control() *ControlEvaluator { return o.control }

// SetupDone reports whether seat already completed its setup deployments.
func (o *Orchestrator) SetupDone(seat int) bool { return o.setupDone[seat] }

// TryDeploy deploys a troop paid with power (free during setup).
func (o *Orchestrator) TryDeploy(p *player.Player, node NodeID) rules.Outcome {
	return o.deploy(p, node, true)
}

// DeployFree deploys a troop whose cost a card already paid.
func (o *Orchestrator) DeployFree(p *player.Player, node NodeID) rules.Outcome {
	return o.deploy(p, node, false)
}

func (o *Orchestrator) deploy(p *player.Player, node NodeID, payPower bool) rules.Outcome {
	setup := o.phase() == rules.PhaseSetup
	if setup {
		if !o.rules.CanSetupDeployAt(node) {
			return o.fail(ActionDeploy, p, rules.ReasonIllegalTarget)
		}
	} else if !o.rules.CanDeployAt(node, p.Color) {
		return o.fail(ActionDeploy, p, rules.ReasonIllegalTarget)
	}
	if p.Troops <= 0 {
		return o.fail(ActionDeploy, p, rules.ReasonNoTroops)
	}
	cost := 0
	if payPower && !setup {
		cost = DeployCost
	}
	if !p.Pool.Spend(resources.Power, cost) {
		return o.fail(ActionDeploy, p, rules.ReasonInsufficientPower)
	}

	out := rules.Completed(ActionDeploy)
	out.Rewards = o.placeTroop(p, node)

	if setup {
		o.setupDeployed[p.Seat]++
		if !o.setupDone[p.Seat] && (o.setupDeployed[p.Seat] >= o.setupQuota || p.Troops == 0) {
			o.setupDone[p.Seat] = true
			out.SetupComplete = true
			o.logger.Info("setup deployment complete", zap.Int("seat", p.Seat))
		}
	}

	o.logger.Debug("troop deployed",
		zap.Int("seat", p.Seat),
		zap.Int("node", int(node)),
		zap.Int("cost", cost),
		zap.Int("troops_left", p.Troops),
	)
	return out
}

// Assassinate removes the troop at node and awards attacker a trophy.
// Empty or self-occupied nodes are a silent no-op. Presence is the caller's
// concern (see RuleEngine.CanAssassinate).
func (o *Orchestrator) Assassinate(node NodeID, attacker *player.Player) rules.Outcome {
	n, ok := o.board.Node(node)
	if !ok || !isEnemy(n.Occupant, attacker.Color) {
		return rules.Failed(ActionAssassinate, rules.ReasonIllegalTarget)
	}
	victim := o.removeTroop(n, attacker)

	out := rules.Completed(ActionAssassinate)
	out.Rewards = o.control.RecalculateSiteState(n.Site, attacker)

	o.logger.Debug("troop assassinated",
		zap.Int("seat", attacker.Seat),
		zap.Int("node", int(node)),
		zap.String("victim", victim.String()),
	)
	return out
}

// Supplant assassinates the troop at node and deploys one of attacker's
// troops in its place, recalculating the site once.
func (o *Orchestrator) Supplant(node NodeID, attacker *player.Player) rules.Outcome {
	if !o.rules.CanSupplant(node, attacker.Color) {
		return o.fail(ActionSupplant, attacker, rules.ReasonIllegalTarget)
	}
	if attacker.Troops <= 0 {
		return o.fail(ActionSupplant, attacker, rules.ReasonNoTroops)
	}
	n, _ := o.board.Node(node)
	victim := o.removeTroop(n, attacker)
	n.Occupant = attacker.Color
	attacker.Troops--

	out := rules.Completed(ActionSupplant)
	out.Rewards = o.control.RecalculateSiteState(n.Site, attacker)

	o.logger.Debug("troop supplanted",
		zap.Int("seat", attacker.Seat),
		zap.Int("node", int(node)),
		zap.String("victim", victim.String()),
	)
	return out
}

// PlaceSpy places one of p's spies at site.
func (o *Orchestrator) PlaceSpy(site SiteID, p *player.Player) rules.Outcome {
	s, ok := o.board.Site(site)
	if !ok {
		return o.fail(ActionPlaceSpy, p, rules.ReasonIllegalTarget)
	}
	if s.HasSpy(p.Color) {
		return o.fail(ActionPlaceSpy, p, rules.ReasonSpyAlreadyPlaced)
	}
	if !o.rules.CanPlaceSpy(site, p.Color) {
		return o.fail(ActionPlaceSpy, p, rules.ReasonIllegalTarget)
	}
	if p.Spies <= 0 {
		return o.fail(ActionPlaceSpy, p, rules.ReasonNoSpies)
	}
	s.addSpy(p.Color)
	p.Spies--

	out := rules.Completed(ActionPlaceSpy)
	out.Rewards = o.control.RecalculateSiteState(site, p)

	o.logger.Debug("spy placed", zap.Int("seat", p.Seat), zap.String("site", s.Name))
	return out
}

// ReturnTroop removes the troop at node. The requester's own troops go back
// to its barracks; other troops leave the board without crediting anyone.
func (o *Orchestrator) ReturnTroop(node NodeID, requester *player.Player) rules.Outcome {
	if !o.rules.CanReturnTroop(node, requester.Color) {
		return o.fail(ActionReturnTroop, requester, rules.ReasonIllegalTarget)
	}
	n, _ := o.board.Node(node)
	returned := n.Occupant
	n.Occupant = player.ColorNone
	if returned == requester.Color {
		requester.Troops++
	}

	out := rules.Completed(ActionReturnTroop)
	out.Rewards = o.control.RecalculateSiteState(n.Site, requester)

	o.logger.Debug("troop returned",
		zap.Int("seat", requester.Seat),
		zap.Int("node", int(node)),
		zap.String("returned", returned.String()),
	)
	return out
}

// ReturnSpecificSpy removes target's spy from site. The spy goes back to its
// owner's supply when the owner is known.
func (o *Orchestrator) ReturnSpecificSpy(site SiteID, requester *player.Player, target player.Color) rules.Outcome {
	if !o.rules.CanReturnSpecificSpy(site, requester.Color, target) {
		return o.fail(ActionReturnSpy, requester, rules.ReasonIllegalTarget)
	}
	s, _ := o.board.Site(site)
	s.removeSpy(target)
	if o.owners != nil {
		if owner, ok := o.owners(target); ok {
			owner.Spies++
		}
	}

	out := rules.Completed(ActionReturnSpy)
	out.Rewards = o.control.RecalculateSiteState(site, requester)

	o.logger.Debug("spy returned",
		zap.Int("seat", requester.Seat),
		zap.String("site", s.Name),
		zap.String("target", target.String()),
	)
	return out
}

// MoveTroop moves the enemy troop at source to destination at no cost and
// recalculates both sites.
func (o *Orchestrator) MoveTroop(source, destination NodeID, active *player.Player) rules.Outcome {
	if !o.rules.CanMoveSource(source, active.Color) || !o.rules.CanMoveDestination(source, destination) {
		return o.fail(ActionMove, active, rules.ReasonIllegalTarget)
	}
	src, _ := o.board.Node(source)
	dst, _ := o.board.Node(destination)
	dst.Occupant = src.Occupant
	src.Occupant = player.ColorNone

	out := rules.Completed(ActionMove)
	out.Rewards = o.control.RecalculateSiteState(src.Site, active)
	if dst.Site != src.Site {
		out.Rewards = append(out.Rewards, o.control.RecalculateSiteState(dst.Site, active)...)
	}

	o.logger.Debug("troop moved",
		zap.Int("seat", active.Seat),
		zap.Int("from", int(source)),
		zap.Int("to", int(destination)),
		zap.String("color", dst.Occupant.String()),
	)
	return out
}

func (o *Orchestrator) placeTroop(p *player.Player, node NodeID) []rules.Reward {
	n, _ := o.board.Node(node)
	n.Occupant = p.Color
	p.Troops--
	return o.control.RecalculateSiteState(n.Site, p)
}

func (o *Orchestrator) removeTroop(n *Node, attacker *player.Player) player.Color {
	victim := n.Occupant
	n.Occupant = player.ColorNone
	attacker.Trophies++
	return victim
}

func (o *Orchestrator) fail(action string, p *player.Player, reason rules.Reason) rules.Outcome {
	o.logger.Debug("board action rejected",
		zap.String("action", action),
		zap.Int("seat", p.Seat),
		zap.String("reason", string(reason)),
	)
	return rules.Failed(action, reason)
}
