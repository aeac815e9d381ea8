// Package config describes matches, agents and storage as JSON.
package config

import (
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// Board presets
const (
	BoardStandard = "standard"
	BoardMini     = "mini"
)

// Storage kinds
const (
	StorageBadger = "badger"
	StorageFile   = "file"
	StorageMemory = "memory"
	StorageNone   = "none"
)

// DefaultMaxPlies is the turn limit after which a game is a timeout.
const DefaultMaxPlies = 200

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// StorageConfig selects where learned values and match records live.
type StorageConfig struct {
	Kind string `json:"kind"` // badger, file, memory or none
	Dir  string `json:"dir"`  // empty uses the platform data directory
}

// Config describes a series of games between two agents.
type Config struct {
	Board    string        `json:"board"` // preset name or layout
	Games    int           `json:"games"`
	MaxPlies int           `json:"max_plies"`
	Seed     int64         `json:"seed"` // 0 seeds from the clock
	White    AgentConfig   `json:"white"`
	Black    AgentConfig   `json:"black"`
	Storage  StorageConfig `json:"storage"`
	PGN      string        `json:"pgn"` // file to append 8x8 games to
}

// DefaultConfig returns the default match: minimax against a learner on
// the mini board.
func DefaultConfig() *Config {
	white := DefaultAgentConfig()
	white.Name = "minimax"

	black := DefaultAgentConfig()
	black.Kind = KindQ
	black.Name = "agent1"

	return &Config{
		Board:    BoardMini,
		Games:    1,
		MaxPlies: DefaultMaxPlies,
		White:    white,
		Black:    black,
		Storage:  StorageConfig{Kind: StorageBadger},
	}
}

// Load reads a JSON config from path on top of the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	return Parse(data)
}

// Parse decodes a JSON config on top of the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	c := DefaultConfig()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Layout resolves the board preset or layout string.
func (c *Config) Layout() (board.Layout, error) {
	return ParseBoard(c.Board)
}

// ParseBoard resolves a preset name ("standard", "mini") or a layout.
func ParseBoard(s string) (board.Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", BoardStandard:
		return board.StandardLayout, nil
	case BoardMini:
		return board.MiniLayout, nil
	}
	l := board.Layout(strings.TrimSpace(s))
	if _, err := board.NewGameState(l); err != nil {
		return "", err
	}
	return l, nil
}

// Validate checks the whole config.
func (c *Config) Validate() error {
	if _, err := c.Layout(); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "board: %v", err)
	}
	if c.Games < 1 {
		return errors.Wrapf(ErrInvalidConfig, "games must be positive, got %d", c.Games)
	}
	if c.MaxPlies < 1 {
		return errors.Wrapf(ErrInvalidConfig, "max_plies must be positive, got %d", c.MaxPlies)
	}
	switch c.Storage.Kind {
	case StorageBadger, StorageFile, StorageMemory, StorageNone:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown storage %q", c.Storage.Kind)
	}
	if err := c.White.Validate(); err != nil {
		return errors.Wrap(err, "white")
	}
	if err := c.Black.Validate(); err != nil {
		return errors.Wrap(err, "black")
	}
	if c.White.Kind == KindQ && c.Black.Kind == KindQ && c.White.store() == c.Black.store() {
		return errors.Wrapf(ErrInvalidConfig, "both learners write q-values %q", c.White.store())
	}
	return nil
}

// bound returns *p, or def when p is nil.
func bound(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Float returns a pointer to v, for optional fields.
func Float(v float64) *float64 {
	return &v
}

func inUnit(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}
