// Package targeting implements the interactive, multi-step resolution of
// board actions: choosing nodes, sites, spies and hand cards before a command
// is issued.
//
// A Session never mutates a match. Every resolved selection becomes a
// command issued through the Host, which is normally the dispatcher.
package targeting

import "fmt"

// State is the targeting phase of a session.
type State int

const (
	StateNormal State = iota
	StateTargetingDeploy
	StateTargetingAssassinate
	StateTargetingReturnSpy
	StateSelectingSpyToReturn
	StateTargetingSupplant
	StateTargetingReturn
	StateTargetingPlaceSpy
	StateTargetingMoveSource
	StateTargetingMoveDestination
	StateTargetingDevourHand
	StateSelectingCardToPromote
)

var stateNames = map[State]string{
	StateNormal:                   "NORMAL",
	StateTargetingDeploy:          "TARGETING_DEPLOY",
	StateTargetingAssassinate:     "TARGETING_ASSASSINATE",
	StateTargetingReturnSpy:       "TARGETING_RETURN_SPY",
	StateSelectingSpyToReturn:     "SELECTING_SPY_TO_RETURN",
	StateTargetingSupplant:        "TARGETING_SUPPLANT",
	StateTargetingReturn:          "TARGETING_RETURN",
	StateTargetingPlaceSpy:        "TARGETING_PLACE_SPY",
	StateTargetingMoveSource:      "TARGETING_MOVE_SOURCE",
	StateTargetingMoveDestination: "TARGETING_MOVE_DESTINATION",
	StateTargetingDevourHand:      "TARGETING_DEVOUR_HAND",
	StateSelectingCardToPromote:   "SELECTING_CARD_TO_PROMOTE",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATE_%d", int(s))
}
