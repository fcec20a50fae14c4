package board

import (
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/resources"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// ControlEvaluator recomputes site ownership from occupancy and spies and
// pays out control rewards on transitions.
type ControlEvaluator struct {
	board  *Board
	logger *zap.Logger
}

// NewControlEvaluator creates an evaluator over b.
func NewControlEvaluator(b *Board, logger *zap.Logger) *ControlEvaluator {
	if b == nil {
		panic("board: nil board")
	}
	if logger == nil {
		panic("board: nil logger")
	}
	return &ControlEvaluator{board: b, logger: logger}
}

// ComputeOwner returns the player color holding a strict plurality of the
// site's occupied nodes. Ties, an empty site, or a neutral plurality yield
// no owner.
func (ce *ControlEvaluator) ComputeOwner(site *Site) player.Color {
	counts := make(map[player.Color]int, 4)
	for _, id := range site.Nodes {
		n, ok := ce.board.Node(id)
		if !ok || n.Occupant == player.ColorNone {
			continue
		}
		counts[n.Occupant]++
	}

	best, bestCount, tied := player.ColorNone, 0, false
	for color, count := range counts {
		switch {
		case count > bestCount:
			best, bestCount, tied = color, count, false
		case count == bestCount:
			tied = true
		}
	}
	if tied || !best.IsPlayer() {
		return player.ColorNone
	}
	return best
}

// ComputeTotalControl reports whether owner occupies every node of the site
// and no spy of another color sits there.
func (ce *ControlEvaluator) ComputeTotalControl(site *Site, owner player.Color) bool {
	if owner == player.ColorNone || len(site.Nodes) == 0 {
		return false
	}
	for _, id := range site.Nodes {
		n, ok := ce.board.Node(id)
		if !ok || n.Occupant != owner {
			return false
		}
	}
	for _, spy := range site.Spies {
		if spy != player.ColorNone && spy != owner {
			return false
		}
	}
	return true
}

// RecalculateSiteState refreshes Owner and HasTotalControl and returns the
// rewards granted to acting. Control pays out when ownership passes to the
// acting player; total control pays out, on top of control, when it turns on
// for the acting player. Losing total control costs nothing. acting may be
// nil, in which case state is refreshed without rewards.
func (ce *ControlEvaluator) RecalculateSiteState(siteID SiteID, acting *player.Player) []rules.Reward {
	site, ok := ce.board.Site(siteID)
	if !ok {
		return nil
	}

	oldOwner, oldTotal := site.Owner, site.HasTotalControl
	newOwner := ce.ComputeOwner(site)
	newTotal := ce.ComputeTotalControl(site, newOwner)
	site.Owner, site.HasTotalControl = newOwner, newTotal

	if oldOwner != newOwner || oldTotal != newTotal {
		ce.logger.Debug("site control changed",
			zap.String("site", site.Name),
			zap.String("old_owner", oldOwner.String()),
			zap.String("new_owner", newOwner.String()),
			zap.Bool("old_total", oldTotal),
			zap.Bool("new_total", newTotal),
		)
	}

	if acting == nil || !site.RewardEligible() || newOwner != acting.Color {
		return nil
	}

	var rewards []rules.Reward
	if oldOwner != newOwner {
		rewards = append(rewards, ce.grant(site, acting, site.ControlResource, site.ControlAmount, rules.RewardControl)...)
	}
	if newTotal && !oldTotal {
		rewards = append(rewards, ce.grant(site, acting, site.TotalControlResource, site.TotalControlAmount, rules.RewardTotalControl)...)
	}
	return rewards
}

// RecalculateAll refreshes every site without granting rewards.
func (ce *ControlEvaluator) RecalculateAll() {
	for i := range ce.board.Sites {
		ce.RecalculateSiteState(SiteID(i), nil)
	}
}

// DistributeStartOfTurnRewards pays the active player's recurring income:
// the control reward of every eligible site it owns, plus the total-control
// reward where it has total control.
func (ce *ControlEvaluator) DistributeStartOfTurnRewards(active *player.Player) []rules.Reward {
	if active == nil {
		return nil
	}
	var rewards []rules.Reward
	for i := range ce.board.Sites {
		site := &ce.board.Sites[i]
		if !site.RewardEligible() || site.Owner != active.Color {
			continue
		}
		rewards = append(rewards, ce.grant(site, active, site.ControlResource, site.ControlAmount, rules.RewardIncome)...)
		if site.HasTotalControl {
			rewards = append(rewards, ce.grant(site, active, site.TotalControlResource, site.TotalControlAmount, rules.RewardTotalIncome)...)
		}
	}
	return rewards
}

func (ce *ControlEvaluator) grant(site *Site, p *player.Player, res resources.Resource, amount int, source rules.RewardSource) []rules.Reward {
	if res == resources.None || amount <= 0 {
		return nil
	}
	p.Grant(res, amount)
	ce.logger.Debug("site reward granted",
		zap.String("site", site.Name),
		zap.Int("seat", p.Seat),
		zap.String("resource", string(res)),
		zap.Int("amount", amount),
		zap.String("source", string(source)),
	)
	return []rules.Reward{{
		Seat:     p.Seat,
		SiteID:   int(site.ID),
		Resource: res,
		Amount:   amount,
		Source:   source,
	}}
}
