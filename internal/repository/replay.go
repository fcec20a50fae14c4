package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/undercity/undercity-server-go/internal/game"
	"go.uber.org/zap"
)

// ErrReplayNotFound is returned when no recording exists for a match id.
var ErrReplayNotFound = errors.New("replay not found")

// ReplayRepository stores recordings as JSON keyed by match id.
type ReplayRepository struct {
	db     DBTX
	logger *zap.Logger
}

// NewReplayRepository creates a repository over db.
func NewReplayRepository(db DBTX, logger *zap.Logger) *ReplayRepository {
	if logger == nil {
		panic("repository: nil logger")
	}
	return &ReplayRepository{db: db, logger: logger}
}

// Save inserts rec, replacing an earlier recording of the same match.
func (r *ReplayRepository) Save(ctx context.Context, rec *game.Recording) error {
	payload, err := rec.Marshal()
	if err != nil {
		return fmt.Errorf("encode replay: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO replays (match_id, seed, players, records, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id) DO UPDATE
		SET seed = EXCLUDED.seed,
		    players = EXCLUDED.players,
		    records = EXCLUDED.records,
		    payload = EXCLUDED.payload`,
		rec.MatchID, rec.Seed, rec.Players, len(rec.Records), payload,
	)
	if err != nil {
		return fmt.Errorf("save replay %s: %w", rec.MatchID, err)
	}

	r.logger.Info("replay saved",
		zap.String("match_id", rec.MatchID.String()),
		zap.Int("records", len(rec.Records)),
	)
	return nil
}

// Load returns the recording of matchID.
func (r *ReplayRepository) Load(ctx context.Context, matchID uuid.UUID) (*game.Recording, error) {
	var (
		seed    int64
		payload []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT seed, payload FROM replays WHERE match_id = $1`, matchID,
	).Scan(&seed, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReplayNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load replay %s: %w", matchID, err)
	}

	rec, err := game.ParseRecording(payload)
	if err != nil {
		return nil, fmt.Errorf("load replay %s: %w", matchID, err)
	}
	if rec.Seed != seed || rec.MatchID != matchID {
		return nil, fmt.Errorf("load replay %s: %w: stored row does not match payload", matchID, game.ErrMalformedReplay)
	}
	return rec, nil
}

// Delete removes the recording of matchID.
func (r *ReplayRepository) Delete(ctx context.Context, matchID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM replays WHERE match_id = $1`, matchID)
	if err != nil {
		return fmt.Errorf("delete replay %s: %w", matchID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReplayNotFound
	}
	return nil
}
