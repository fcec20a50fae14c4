package rules

import (
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/resources"
)

// OutcomeKind indicates how an action attempt ended.
type OutcomeKind string

const (
	// OutcomeCompleted means the action was applied.
	OutcomeCompleted OutcomeKind = "COMPLETED"
	// OutcomeFailed means nothing changed; Reason says why.
	OutcomeFailed OutcomeKind = "FAILED"
	// OutcomePending means more input is needed (targeting or disambiguation).
	OutcomePending OutcomeKind = "PENDING"
)

// Reason explains a failed outcome.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonIllegalTarget         Reason = "illegal target"
	ReasonNoLegalTarget         Reason = "no legal target"
	ReasonInsufficientPower     Reason = "insufficient power"
	ReasonInsufficientInfluence Reason = "insufficient influence"
	ReasonNoTroops              Reason = "no troops in barracks"
	ReasonNoSpies               Reason = "no spies in barracks"
	ReasonSpyAlreadyPlaced      Reason = "spy already placed at site"
	ReasonNotGranted            Reason = "card does not grant this action"
	ReasonNoPromotionCredit     Reason = "no promotion credit"
	ReasonUnknownCard           Reason = "unknown card"
	ReasonUnknownPlayer         Reason = "unknown player"
	ReasonNotActivePlayer       Reason = "not the active player"
	ReasonWrongPhase            Reason = "not allowed in this phase"
	ReasonWrongState            Reason = "not expected in the current targeting state"
	ReasonMatchFinished         Reason = "match is finished"
)

// IsInsufficientResources reports whether the reason is a failed payment.
func (r Reason) IsInsufficientResources() bool {
	switch r {
	case ReasonInsufficientPower, ReasonInsufficientInfluence, ReasonNoTroops, ReasonNoSpies:
		return true
	default:
		return false
	}
}

// RewardSource tells why a reward was granted.
type RewardSource string

const (
	RewardControl      RewardSource = "CONTROL"
	RewardTotalControl RewardSource = "TOTAL_CONTROL"
	RewardIncome       RewardSource = "INCOME"
	RewardTotalIncome  RewardSource = "TOTAL_INCOME"
)

// Reward is one resource grant produced by site control.
type Reward struct {
	Seat     int
	SiteID   int
	Resource resources.Resource
	Amount   int
	Source   RewardSource
}

// PendingEffect is a targeted card effect waiting for player input.
type PendingEffect struct {
	CardID string
	Effect cards.Effect
}

// Outcome is the synchronous result of an action. It replaces completion and
// failure notifications: the caller that issued the action receives it.
type Outcome struct {
	Kind          OutcomeKind
	Action        string
	Reason        Reason
	Rewards       []Reward
	SetupComplete bool
	PhaseChanged  bool
	Pending       []PendingEffect
}

// Completed builds a successful outcome.
func Completed(action string) Outcome {
	return Outcome{Kind: OutcomeCompleted, Action: action}
}

// Failed builds a failed outcome.
func Failed(action string, reason Reason) Outcome {
	return Outcome{Kind: OutcomeFailed, Action: action, Reason: reason}
}

// Waiting builds a pending outcome.
func Waiting(action string) Outcome {
	return Outcome{Kind: OutcomePending, Action: action}
}

// OK reports whether the action was applied.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeCompleted
}

// Absorb folds the side effects of a nested outcome into o.
func (o *Outcome) Absorb(other Outcome) {
	o.Rewards = append(o.Rewards, other.Rewards...)
	o.Pending = append(o.Pending, other.Pending...)
	o.SetupComplete = o.SetupComplete || other.SetupComplete
	o.PhaseChanged = o.PhaseChanged || other.PhaseChanged
}
