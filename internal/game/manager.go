package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/rng"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"github.com/undercity/undercity-server-go/internal/game/targeting"
	"go.uber.org/zap"
)

// Table is a live match with everything needed to drive it. Commands reach
// the match only through Queue, either directly or via Interact.
type Table struct {
	ID         uuid.UUID
	Match      *Match
	Dispatcher *Dispatcher
	Replay     *ReplayManager
	Queue      *CommandQueue
	CreateTime time.Time

	session *targeting.Session
}

// Interact runs fn against the table's targeting session on the queue
// worker, so session-driven commands and queued commands never overlap.
func (t *Table) Interact(ctx context.Context, fn func(s *targeting.Session) rules.Outcome) (rules.Outcome, error) {
	return t.Queue.Do(ctx, func() rules.Outcome { return fn(t.session) })
}

// Manager is the registry of live matches.
type Manager struct {
	tables    map[uuid.UUID]*Table
	mu        sync.RWMutex
	db        cards.Database
	queueSize int
	logger    *zap.Logger
}

// NewManager creates an empty registry.
func NewManager(db cards.Database, queueSize int, logger *zap.Logger) *Manager {
	if logger == nil {
		panic("game: nil logger")
	}
	if db == nil {
		panic("game: nil card database")
	}
	return &Manager{
		tables:    make(map[uuid.UUID]*Table),
		db:        db,
		queueSize: queueSize,
		logger:    logger,
	}
}

// CreateMatch deals a new match and registers it. A zero seed draws a fresh
// one.
func (m *Manager) CreateMatch(seed int64, names []string, settings Settings) (*Table, error) {
	if seed == 0 {
		var err error
		if seed, err = rng.NewSeed(); err != nil {
			return nil, fmt.Errorf("create match: %w", err)
		}
	}
	match, err := NewMatch(m.logger, seed, names, settings, m.db)
	if err != nil {
		return nil, err
	}
	replay := NewReplayManager(m.logger)
	d := NewDispatcher(match, replay, m.logger)
	t := &Table{
		ID:         match.ID,
		Match:      match,
		Dispatcher: d,
		Replay:     replay,
		Queue:      NewCommandQueue(d, m.queueSize, m.logger),
		CreateTime: time.Now(),
		session:    targeting.NewSession(d, m.logger),
	}

	m.mu.Lock()
	m.tables[t.ID] = t
	m.mu.Unlock()

	m.logger.Info("table created",
		zap.String("match_id", t.ID.String()),
		zap.Strings("players", names),
		zap.Int64("seed", seed),
	)
	return t, nil
}

// Get returns the table for id.
func (m *Manager) Get(id uuid.UUID) (*Table, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[id]
	return t, ok
}

// Remove stops a table's queue and forgets it.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	t, ok := m.tables[id]
	delete(m.tables, id)
	m.mu.Unlock()

	if !ok {
		return
	}
	t.Queue.Close()
	m.logger.Info("table removed", zap.String("match_id", id.String()))
}

// List returns every registered table.
func (m *Manager) List() []*Table {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tables := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	return tables
}

// ActiveCount returns how many registered matches have not finished.
//
// Phase is read without going through the table's queue, so the count is
// advisory while commands are in flight.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, t := range m.tables {
		if t.Match.Phase() != rules.PhaseFinished {
			count++
		}
	}
	return count
}

// Close stops every table.
func (m *Manager) Close() {
	m.mu.Lock()
	tables := m.tables
	m.tables = make(map[uuid.UUID]*Table)
	m.mu.Unlock()

	for _, t := range tables {
		t.Queue.Close()
	}
}
