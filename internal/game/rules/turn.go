package rules

import (
	"fmt"
)

// MatchPhase represents the broad phases of a match.
type MatchPhase int

const (
	PhaseSetup MatchPhase = iota
	PhasePlaying
	PhaseFinished
)

var phaseNames = map[MatchPhase]string{
	PhaseSetup:    "SETUP",
	PhasePlaying:  "PLAYING",
	PhaseFinished: "FINISHED",
}

func (p MatchPhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// TurnManager tracks the active seat and turn progression.
// The seating order is fixed once at match start.
type TurnManager struct {
	order      []int
	orderIndex int
	turnNumber int
	round      int
}

// NewTurnManager creates a turn manager at turn 1 with order[0] active.
func NewTurnManager(order []int) *TurnManager {
	seats := make([]int, len(order))
	copy(seats, order)
	return &TurnManager{
		order:      seats,
		turnNumber: 1,
		round:      1,
	}
}

// ActiveSeat returns the seat whose turn it is.
func (tm *TurnManager) ActiveSeat() int {
	if len(tm.order) == 0 {
		return -1
	}
	return tm.order[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based, counts every seat's turn).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// Round returns the current round (1-based). A round ends once every seat
// has taken a turn.
func (tm *TurnManager) Round() int {
	return tm.round
}

// Order returns a copy of the seating order.
func (tm *TurnManager) Order() []int {
	out := make([]int, len(tm.order))
	copy(out, tm.order)
	return out
}

// Advance rotates to the next seat. It reports whether a new round started.
func (tm *TurnManager) Advance() (seat int, newRound bool) {
	if len(tm.order) == 0 {
		return -1, false
	}
	tm.turnNumber++
	tm.orderIndex++
	if tm.orderIndex >= len(tm.order) {
		tm.orderIndex = 0
		tm.round++
		newRound = true
	}
	return tm.order[tm.orderIndex], newRound
}
