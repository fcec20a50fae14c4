// Package config loads server configuration from an optional YAML file and
// UNDERCITY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/undercity/undercity-server-go/internal/game"
)

// Config is the complete configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Match    MatchConfig    `mapstructure:"match"`
	Replay   ReplayConfig   `mapstructure:"replay"`
	Database DatabaseConfig `mapstructure:"database"`
}

// LoggingConfig configures the logger and its asynchronous writer.
type LoggingConfig struct {
	Level         string        `mapstructure:"level"`
	Format        string        `mapstructure:"format"`
	Output        string        `mapstructure:"output"`
	BufferSize    int           `mapstructure:"buffer_size"`
	QueueSize     int           `mapstructure:"queue_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// MatchConfig holds the tunable match settings. Seed 0 draws a fresh seed
// for every match.
type MatchConfig struct {
	HandSize         int   `mapstructure:"hand_size"`
	MarketSize       int   `mapstructure:"market_size"`
	StartingTroops   int   `mapstructure:"starting_troops"`
	StartingSpies    int   `mapstructure:"starting_spies"`
	SetupDeployments int   `mapstructure:"setup_deployments"`
	Seed             int64 `mapstructure:"seed"`
	QueueSize        int   `mapstructure:"queue_size"`
}

// ReplayConfig controls where recordings go and how they are checked.
type ReplayConfig struct {
	Directory        string `mapstructure:"directory"`
	VerifyCheckpoint bool   `mapstructure:"verify_checkpoints"`
}

// DatabaseConfig configures the optional replay store. An empty URL disables
// it.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
}

// Enabled reports whether a database is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// ToSettings converts the match section into game settings.
func (m MatchConfig) ToSettings() game.Settings {
	return game.Settings{
		HandSize:         m.HandSize,
		MarketSize:       m.MarketSize,
		StartingTroops:   m.StartingTroops,
		StartingSpies:    m.StartingSpies,
		SetupDeployments: m.SetupDeployments,
	}
}

func setDefaults(v *viper.Viper) {
	def := game.DefaultSettings()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.buffer_size", 64*1024)
	v.SetDefault("logging.queue_size", 1024)
	v.SetDefault("logging.flush_interval", time.Second)

	v.SetDefault("match.hand_size", def.HandSize)
	v.SetDefault("match.market_size", def.MarketSize)
	v.SetDefault("match.starting_troops", def.StartingTroops)
	v.SetDefault("match.starting_spies", def.StartingSpies)
	v.SetDefault("match.setup_deployments", def.SetupDeployments)
	v.SetDefault("match.seed", 0)
	v.SetDefault("match.queue_size", 16)

	v.SetDefault("replay.directory", "replays")
	v.SetDefault("replay.verify_checkpoints", true)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 5*time.Second)
}

// Load reads path (if it exists) and overlays UNDERCITY_* environment
// variables, e.g. UNDERCITY_LOGGING_LEVEL=debug. An empty path uses defaults
// and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("UNDERCITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !isMissingFile(err) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isMissingFile(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// Validate rejects values the rest of the server cannot work with.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	if c.Logging.QueueSize <= 0 {
		return fmt.Errorf("logging.queue_size must be positive, got %d", c.Logging.QueueSize)
	}
	if c.Logging.FlushInterval <= 0 {
		return fmt.Errorf("logging.flush_interval must be positive, got %s", c.Logging.FlushInterval)
	}
	if c.Match.SetupDeployments < 0 || c.Match.HandSize < 0 || c.Match.MarketSize < 0 {
		return errors.New("match settings must not be negative")
	}
	if c.Database.Enabled() && c.Database.MaxConns <= 0 {
		return fmt.Errorf("database.max_conns must be positive, got %d", c.Database.MaxConns)
	}
	return nil
}
