package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/undercity/undercity-server-go/internal/config"
	"github.com/undercity/undercity-server-go/internal/diaglog"
	"github.com/undercity/undercity-server-go/internal/game"
	"github.com/undercity/undercity-server-go/internal/game/cards"
	"github.com/undercity/undercity-server-go/internal/repository"
	"go.uber.org/zap"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	replayPath = flag.String("replay", "", "replay and verify a recorded match instead of playing one")
	players    = flag.String("players", "alice,bob", "comma separated player names")
	maxTurns   = flag.Int("turns", 200, "stop the scripted match after this many turns")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, logWriter, err := diaglog.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("starting undercity",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logger)
	stop()

	_ = logger.Sync()
	if err := logWriter.Stop(5 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
	}
	if dropped := logWriter.Dropped(); dropped > 0 {
		fmt.Fprintf(os.Stderr, "%d log entries dropped\n", dropped)
	}
	os.Exit(code)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) int {
	var (
		rec *game.Recording
		err error
	)
	if *replayPath != "" {
		rec, err = verifyReplay(cfg, logger)
	} else {
		rec, err = playMatch(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return 1
	}

	if !cfg.Database.Enabled() {
		return 0
	}
	if err := storeReplay(ctx, cfg.Database, rec, logger); err != nil {
		logger.Error("failed to store replay", zap.Error(err))
		return 1
	}
	return 0
}

func verifyReplay(cfg *config.Config, logger *zap.Logger) (*game.Recording, error) {
	rec, err := game.LoadRecordingFile(*replayPath)
	if err != nil {
		return nil, err
	}
	res, err := game.Replay(rec, cards.NewStaticDatabase(), logger, cfg.Replay.VerifyCheckpoint)
	if err != nil {
		return nil, err
	}
	if res.Diverged() {
		for _, mm := range res.Mismatches {
			logger.Error("checkpoint mismatch",
				zap.Int("index", mm.Index),
				zap.Int("want_turn", mm.Want.Turn),
				zap.Int("got_turn", mm.Got.Turn),
			)
		}
		return nil, fmt.Errorf("replay %s diverged at %d checkpoints", rec.MatchID, len(res.Mismatches))
	}
	logScores(logger, res.Match)
	return rec, nil
}

func playMatch(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*game.Recording, error) {
	mgr := game.NewManager(cards.NewStaticDatabase(), cfg.Match.QueueSize, logger)
	defer mgr.Close()

	table, err := mgr.CreateMatch(cfg.Match.Seed, strings.Split(*players, ","), cfg.Match.ToSettings())
	if err != nil {
		return nil, err
	}

	if err := autoplay(ctx, table, *maxTurns); err != nil {
		return nil, err
	}
	logScores(logger, table.Match)

	rec := table.Dispatcher.Recording()
	path, err := rec.SaveToFile(cfg.Replay.Directory)
	if err != nil {
		return nil, err
	}
	logger.Info("replay written", zap.String("path", path), zap.Int("records", len(rec.Records)))
	return rec, nil
}

func storeReplay(ctx context.Context, cfg config.DatabaseConfig, rec *game.Recording, logger *zap.Logger) error {
	db, err := repository.NewDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	stats := db.Stats()
	logger.Debug("database connection pool initialized",
		zap.Int32("total_conns", stats.TotalConns()),
		zap.Int32("idle_conns", stats.IdleConns()),
	)

	if err := repository.EnsureSchema(ctx, db); err != nil {
		return err
	}
	return repository.NewReplayRepository(db, logger).Save(ctx, rec)
}

func logScores(logger *zap.Logger, m *game.Match) {
	for _, s := range m.Scores() {
		logger.Info("final score",
			zap.String("player", s.Name),
			zap.String("color", s.Color.String()),
			zap.Int("total", s.Total),
			zap.Int("site_vp", s.SiteVP),
			zap.Int("trophies", s.Trophies),
		)
	}
}
