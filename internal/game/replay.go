package game

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/game/command"
	"github.com/undercity/undercity-server-go/internal/game/rules"
	"go.uber.org/zap"
)

const recordingVersion = 1

// ErrMalformedReplay wraps every failure to parse or validate a recording.
var ErrMalformedReplay = errors.New("malformed replay log")

// Recording is a complete, replayable match log.
type Recording struct {
	Version     int              `json:"version"`
	MatchID     uuid.UUID        `json:"match_id"`
	Seed        int64            `json:"seed"`
	Players     []string         `json:"players"`
	Settings    Settings         `json:"settings"`
	Records     []command.Record `json:"records"`
	Checkpoints []Checkpoint     `json:"checkpoints,omitempty"`
}

// Marshal encodes the recording as JSON.
func (r *Recording) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// ParseRecording decodes and validates a JSON recording.
func ParseRecording(data []byte) (*Recording, error) {
	var rec Recording
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReplay, err)
	}
	if err := rec.validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Recording) validate() error {
	if r.Version != recordingVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedReplay, r.Version)
	}
	return validateRecords(r.Records)
}

// validateRecords checks sequence contiguity and that every kind decodes.
func validateRecords(records []command.Record) error {
	for i, rec := range records {
		if rec.Seq != i+1 {
			return fmt.Errorf("%w: record %d has seq %d", ErrMalformedReplay, i, rec.Seq)
		}
		if _, err := command.Decode(rec); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedReplay, err)
		}
	}
	return nil
}

// FileName is the recording's file name inside a replay directory.
func (r *Recording) FileName() string {
	return r.MatchID.String() + ".replay"
}

// SaveToFile writes the recording gzip-compressed into directory and returns
// the file path.
func (r *Recording) SaveToFile(directory string) (string, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	path := filepath.Join(directory, r.FileName())
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	if err := json.NewEncoder(gz).Encode(r); err != nil {
		gz.Close()
		return "", fmt.Errorf("failed to encode recording: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("failed to flush recording: %w", err)
	}
	return path, nil
}

// LoadRecordingFile reads a recording written by SaveToFile.
func LoadRecordingFile(path string) (*Recording, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	gz, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReplay, err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReplay, err)
	}
	return ParseRecording(data)
}

// ReplayManager feeds recorded commands back into a match. While it is
// replaying the dispatcher does not record.
type ReplayManager struct {
	logger    *zap.Logger
	records   []command.Record
	next      int
	replaying bool
}

// NewReplayManager creates an idle replay manager.
func NewReplayManager(logger *zap.Logger) *ReplayManager {
	if logger == nil {
		panic("game: nil logger")
	}
	return &ReplayManager{logger: logger}
}

// IsReplaying reports whether commands are being replayed.
func (rm *ReplayManager) IsReplaying() bool { return rm.replaying }

// Remaining returns how many records have not been handed out yet.
func (rm *ReplayManager) Remaining() int {
	if !rm.replaying {
		return 0
	}
	return len(rm.records) - rm.next
}

// StartReplay parses a JSON recording and enters replay mode. A malformed
// log is logged and leaves the manager idle.
func (rm *ReplayManager) StartReplay(data []byte) (*Recording, error) {
	rec, err := ParseRecording(data)
	if err != nil {
		rm.logger.Error("cannot start replay", zap.Error(err))
		return nil, err
	}
	if err := rm.Load(rec.Records); err != nil {
		return nil, err
	}
	return rec, nil
}

// Load enters replay mode over already decoded records.
func (rm *ReplayManager) Load(records []command.Record) error {
	if err := validateRecords(records); err != nil {
		rm.logger.Error("cannot start replay", zap.Error(err))
		return err
	}
	rm.records = append([]command.Record(nil), records...)
	rm.next = 0
	rm.replaying = true
	rm.logger.Info("replay started", zap.Int("records", len(records)))
	return nil
}

// Stop leaves replay mode early.
func (rm *ReplayManager) Stop() {
	rm.replaying = false
	rm.records = nil
	rm.next = 0
}

// GetNextCommand hydrates the next record against m. It returns nil, and
// leaves replay mode, once the log is exhausted. Records that cannot be
// hydrated at all are logged and skipped.
func (rm *ReplayManager) GetNextCommand(m *Match) command.Command {
	if !rm.replaying {
		return nil
	}
	for rm.next < len(rm.records) {
		rec := rm.records[rm.next]
		rm.next++
		cmd, err := rm.hydrate(rec, m)
		if err != nil {
			rm.logger.Error("replay record dropped", zap.Int("seq", rec.Seq), zap.Error(err))
			continue
		}
		return cmd
	}
	rm.logger.Info("replay finished", zap.Int("records", len(rm.records)))
	rm.Stop()
	return nil
}

// hydrate resolves card references against the current world. Card ids are
// authoritative; the recorded position is used, with a warning, only when
// the id is no longer where it should be.
func (rm *ReplayManager) hydrate(rec command.Record, m *Match) (command.Command, error) {
	cmd, err := command.Decode(rec)
	if err != nil {
		return nil, err
	}
	p, ok := m.Player(rec.Seat)
	if !ok {
		return nil, fmt.Errorf("unknown seat %d", rec.Seat)
	}

	switch c := cmd.(type) {
	case command.PlayCard:
		c.CardID, c.HandIndex, err = rm.resolve(rec, "hand", ids(p.Zones.Hand), c.CardID, c.HandIndex)
		return c, err
	case command.BuyCard:
		c.CardID, c.MarketIndex, err = rm.resolve(rec, "market", ids(m.Market()), c.CardID, c.MarketIndex)
		return c, err
	case command.Devour:
		if c.Skipped {
			return c, nil
		}
		c.TargetCardID, c.HandIndex, err = rm.resolve(rec, "hand", ids(p.Zones.Hand), c.TargetCardID, c.HandIndex)
		return c, err
	case command.DevourSupplant:
		c.TargetCardID, c.HandIndex, err = rm.resolve(rec, "hand", ids(p.Zones.Hand), c.TargetCardID, c.HandIndex)
		return c, err
	default:
		return cmd, nil
	}
}

func (rm *ReplayManager) resolve(rec command.Record, zone string, zoneIDs []string, id string, index int) (string, int, error) {
	if index >= 0 && index < len(zoneIDs) && zoneIDs[index] == id {
		return id, index, nil
	}
	for i, candidate := range zoneIDs {
		if candidate == id {
			return id, i, nil
		}
	}
	if index >= 0 && index < len(zoneIDs) {
		rm.logger.Warn("stale card reference, using recorded position",
			zap.Int("seq", rec.Seq),
			zap.String("zone", zone),
			zap.String("card", id),
			zap.Int("index", index),
			zap.String("found", zoneIDs[index]),
		)
		return zoneIDs[index], index, nil
	}
	return "", -1, fmt.Errorf("card %q not in %s and index %d out of range", id, zone, index)
}

// Mismatch is a checkpoint where a replay diverged from its recording.
type Mismatch struct {
	Index int
	Want  Checkpoint
	Got   Checkpoint
}

// ReplayResult summarises a verification replay.
type ReplayResult struct {
	Match      *Match
	Commands   int
	Failed     int
	Mismatches []Mismatch
}

// Diverged reports whether the replay failed to reproduce the recording.
func (r *ReplayResult) Diverged() bool { return len(r.Mismatches) > 0 }

// Replay rebuilds a fresh match from rec and drives it through the recorded
// commands. With verify set, every recorded checkpoint is compared with the
// replayed one.
func Replay(rec *Recording, db cards.Database, logger *zap.Logger, verify bool) (*ReplayResult, error) {
	if logger == nil {
		panic("game: nil logger")
	}
	m, err := NewMatch(logger, rec.Seed, rec.Players, rec.Settings, db)
	if err != nil {
		return nil, fmt.Errorf("rebuild match: %w", err)
	}
	m.ID = rec.MatchID
	rm := NewReplayManager(logger)
	if err := rm.Load(rec.Records); err != nil {
		return nil, err
	}
	d := NewDispatcher(m, rm, logger)

	res := &ReplayResult{Match: m}
	for {
		out, ok := d.Step()
		if !ok {
			break
		}
		res.Commands++
		if out.Kind == rules.OutcomeFailed {
			res.Failed++
		}
	}

	if verify {
		got := m.Checkpoints()
		for i, want := range rec.Checkpoints {
			var g Checkpoint
			if i < len(got) {
				g = got[i]
			}
			if !want.Equal(g) {
				res.Mismatches = append(res.Mismatches, Mismatch{Index: i, Want: want, Got: g})
			}
		}
		if len(got) > len(rec.Checkpoints) && len(rec.Checkpoints) > 0 {
			res.Mismatches = append(res.Mismatches, Mismatch{Index: len(rec.Checkpoints), Got: got[len(rec.Checkpoints)]})
		}
	}

	logger.Info("replay verified",
		zap.String("match_id", rec.MatchID.String()),
		zap.Int("commands", res.Commands),
		zap.Int("failed", res.Failed),
		zap.Int("mismatches", len(res.Mismatches)),
	)
	return res, nil
}
