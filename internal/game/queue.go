package game

import (
	"context"
	"errors"
	"sync"

	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

// ErrQueueClosed is returned by Submit after Close.
var ErrQueueClosed = errors.New("command queue closed")

// Issuer executes commands one at a time. *Dispatcher implements it.
type Issuer interface {
	Issue(cmd command.Command) rules.Outcome
}

type submission struct {
	cmd   command.Command
	fn    func() rules.Outcome
	reply chan rules.Outcome
}

// CommandQueue serialises commands from any number of goroutines through a
// single worker, so the match behind it only ever sees one command at a time.
type CommandQueue struct {
	issuer Issuer
	logger *zap.Logger

	in   chan submission
	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

// NewCommandQueue starts the worker. size bounds how many submissions may
// wait before Submit blocks.
func NewCommandQueue(issuer Issuer, size int, logger *zap.Logger) *CommandQueue {
	if issuer == nil {
		panic("game: nil issuer")
	}
	if logger == nil {
		panic("game: nil logger")
	}
	if size < 0 {
		size = 0
	}
	q := &CommandQueue{
		issuer: issuer,
		logger: logger,
		in:     make(chan submission, size),
		done:   make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *CommandQueue) run() {
	defer q.wg.Done()
	for {
		select {
		case s := <-q.in:
			if s.fn != nil {
				s.reply <- s.fn()
				continue
			}
			s.reply <- q.issuer.Issue(s.cmd)
		case <-q.done:
			return
		}
	}
}

// Submit enqueues cmd and waits for its outcome. A cancelled context stops
// the wait; the command may still execute if it was already accepted.
func (q *CommandQueue) Submit(ctx context.Context, cmd command.Command) (rules.Outcome, error) {
	return q.submit(ctx, submission{cmd: cmd}, string(cmd.Kind()))
}

// Do runs fn on the worker, between two commands. fn may issue commands to
// the issuer directly; it must not call back into the queue.
func (q *CommandQueue) Do(ctx context.Context, fn func() rules.Outcome) (rules.Outcome, error) {
	return q.submit(ctx, submission{fn: fn}, "func")
}

func (q *CommandQueue) submit(ctx context.Context, s submission, kind string) (rules.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return rules.Outcome{}, err
	}
	s.reply = make(chan rules.Outcome, 1)

	select {
	case <-q.done:
		return rules.Outcome{}, ErrQueueClosed
	default:
	}

	select {
	case q.in <- s:
	case <-q.done:
		return rules.Outcome{}, ErrQueueClosed
	case <-ctx.Done():
		return rules.Outcome{}, ctx.Err()
	}

	select {
	case out := <-s.reply:
		return out, nil
	case <-ctx.Done():
		q.logger.Debug("submit abandoned", zap.String("kind", kind), zap.Error(ctx.Err()))
		return rules.Outcome{}, ctx.Err()
	case <-q.done:
		// The worker may have answered just before shutting down.
		select {
		case out := <-s.reply:
			return out, nil
		default:
			return rules.Outcome{}, ErrQueueClosed
		}
	}
}

// Close stops the worker and waits for it to exit. Submissions still waiting
// in the buffer are dropped.
func (q *CommandQueue) Close() {
	q.once.Do(func() {
		close(q.done)
		q.wg.Wait()
		q.logger.Debug("command queue closed", zap.Int("dropped", len(q.in)))
	})
}
