package game

import (
	"github.com/undercity/undercity-server-go/internal/game/board"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/player"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// Dispatcher is the single entry point for commands into a match. Live
// commands are numbered and recorded before they execute; commands coming
// from a replay execute without being recorded again.
//
// It also serves as the targeting host, so a targeting session driving a
// match records everything it issues.
type Dispatcher struct {
	match   *Match
	replay  *ReplayManager
	logger  *zap.Logger
	events  *rules.EventBus
	seq     int
	records []command.Record
}

// NewDispatcher wires a dispatcher in front of m.
func NewDispatcher(m *Match, replay *ReplayManager, logger *zap.Logger) *Dispatcher {
	if m == nil {
		panic("game: nil match")
	}
	if replay == nil {
		panic("game: nil replay manager")
	}
	if logger == nil {
		panic("game: nil logger")
	}
	return &Dispatcher{match: m, replay: replay, logger: logger, events: rules.NewEventBus()}
}

// Issue records (unless replaying) and executes cmd, then publishes the
// outcome to the event bus.
func (d *Dispatcher) Issue(cmd command.Command) rules.Outcome {
	seq := 0
	replayed := d.replay.IsReplaying()
	if !replayed {
		d.seq++
		seq = d.seq
		d.records = append(d.records, command.Encode(seq, cmd))
	}

	out := d.match.Execute(cmd)

	d.logger.Debug("command dispatched",
		zap.Int("seq", seq),
		zap.Int("seat", cmd.Actor()),
		zap.String("kind", string(cmd.Kind())),
		zap.String("outcome", string(out.Kind)),
		zap.String("reason", string(out.Reason)),
	)
	d.events.Publish(rules.Event{
		Seq:      seq,
		Seat:     cmd.Actor(),
		Command:  string(cmd.Kind()),
		Outcome:  out,
		Replayed: replayed,
	})
	return out
}

// Events returns the bus outcomes are published on.
func (d *Dispatcher) Events() *rules.EventBus { return d.events }

// Step executes the next replayed command. It returns false once the replay
// is exhausted.
func (d *Dispatcher) Step() (rules.Outcome, bool) {
	cmd := d.replay.GetNextCommand(d.match)
	if cmd == nil {
		return rules.Outcome{}, false
	}
	return d.Issue(cmd), true
}

// Records returns a copy of the recorded log.
func (d *Dispatcher) Records() []command.Record {
	return append([]command.Record(nil), d.records...)
}

// Recording packages the log with everything needed to rebuild the match.
func (d *Dispatcher) Recording() *Recording {
	return &Recording{
		Version:     recordingVersion,
		MatchID:     d.match.ID,
		Seed:        d.match.Seed(),
		Players:     d.match.Names(),
		Settings:    d.match.Settings(),
		Records:     d.Records(),
		Checkpoints: d.match.Checkpoints(),
	}
}

// Match returns the dispatched match.
func (d *Dispatcher) Match() *Match { return d.match }

// ActiveSeat implements targeting.Host.
func (d *Dispatcher) ActiveSeat() int { return d.match.ActiveSeat() }

// Phase implements targeting.Host.
func (d *Dispatcher) Phase() rules.MatchPhase { return d.match.Phase() }

// Player implements targeting.Host.
func (d *Dispatcher) Player(seat int) (*player.Player, bool) { return d.match.Player(seat) }

// Rules implements targeting.Host.
func (d *Dispatcher) Rules() *board.RuleEngine { return d.match.Rules() }

// TurnContext implements targeting.Host.
func (d *Dispatcher) TurnContext() *rules.TurnContext { return d.match.TurnContext() }
