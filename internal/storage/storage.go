package storage

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// Storage keys
const (
	keyStats      = "stats"
	prefixQValues = "q/"
	prefixGame    = "game/"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("storage: not found")

// Result is the outcome of a recorded game.
type Result string

const (
	ResultWhiteWins Result = "white"
	ResultBlackWins Result = "black"
	ResultDraw      Result = "draw"    // stalemate
	ResultTimeout   Result = "timeout" // turn limit reached
)

// GameRecord stores one finished game.
type GameRecord struct {
	ID       string        `json:"id"`
	White    string        `json:"white"`
	Black    string        `json:"black"`
	Layout   string        `json:"layout"`
	Moves    []string      `json:"moves"`
	Result   Result        `json:"result"`
	Plies    int           `json:"plies"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// Winner returns the agent name that won, or "" for draws and timeouts.
func (r *GameRecord) Winner() string {
	switch r.Result {
	case ResultWhiteWins:
		return r.White
	case ResultBlackWins:
		return r.Black
	}
	return ""
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed   int            `json:"games_played"`
	WhiteWins     int            `json:"white_wins"`
	BlackWins     int            `json:"black_wins"`
	Draws         int            `json:"draws"`
	Timeouts      int            `json:"timeouts"`
	WinsByAgent   map[string]int `json:"wins_by_agent"`
	TotalPlies    int            `json:"total_plies"`
	TotalPlayTime time.Duration  `json:"total_play_time"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		WinsByAgent: make(map[string]int),
	}
}

// add folds a finished game into the statistics.
func (s *GameStats) add(r *GameRecord) {
	s.GamesPlayed++
	s.TotalPlies += r.Plies
	s.TotalPlayTime += r.Duration

	switch r.Result {
	case ResultWhiteWins:
		s.WhiteWins++
	case ResultBlackWins:
		s.BlackWins++
	case ResultDraw:
		s.Draws++
	case ResultTimeout:
		s.Timeouts++
	}
	if w := r.Winner(); w != "" {
		s.WinsByAgent[w]++
	}
}

// GetWinRate returns the win rate of agent as a percentage (0-100)
func (s *GameStats) GetWinRate(agent string) float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.WinsByAgent[agent]) / float64(s.GamesPlayed) * 100
}

// Storage wraps BadgerDB for learned values and match records.
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return NewStorageAt(dbDir)
}

// NewStorageAt opens the database in dir. An empty dir keeps everything in
// memory.
func NewStorageAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database %q", dir)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func qPrefix(name string) []byte {
	return []byte(prefixQValues + name + "/")
}

func encodeFloat(v float64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	return buf[:]
}

func decodeFloat(b []byte) (float64, error) {
	if len(b) != 8 {
		return 0, errors.Errorf("bad value length %d", len(b))
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// LoadQValues loads the learned values stored under name. It returns an
// empty map when nothing is stored.
func (s *Storage) LoadQValues(name string) (map[string]float64, error) {
	values := make(map[string]float64)
	prefix := qPrefix(name)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix, PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key()[len(prefix):])
			err := item.Value(func(val []byte) error {
				v, err := decodeFloat(val)
				if err != nil {
					return errors.Wrapf(err, "q-value %q", key)
				}
				values[key] = v
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	return values, err
}

// SaveQValues replaces the learned values stored under name.
func (s *Storage) SaveQValues(name string, values map[string]float64) error {
	prefix := qPrefix(name)

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if _, ok := values[string(key[len(prefix):])]; !ok {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "scanning q-values %q", name)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return errors.Wrapf(err, "deleting q-value %q", key)
		}
	}
	for k, v := range values {
		key := append(append([]byte{}, prefix...), k...)
		if err := wb.Set(key, encodeFloat(v)); err != nil {
			return errors.Wrapf(err, "writing q-value %q", k)
		}
	}
	return wb.Flush()
}

// SaveGame stores a finished game and updates statistics
func (s *Storage) SaveGame(r *GameRecord) error {
	if r.ID == "" {
		return errors.New("storage: game record without id")
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		stats, err := loadStats(txn)
		if err != nil {
			return err
		}
		stats.add(r)
		statsData, err := json.Marshal(stats)
		if err != nil {
			return err
		}

		if err := txn.Set([]byte(prefixGame+r.ID), data); err != nil {
			return err
		}
		return txn.Set([]byte(keyStats), statsData)
	})
}

// LoadGame loads the game with the given id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	r := &GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefixGame + id))
		if err == badger.ErrKeyNotFound {
			return errors.Wrapf(ErrNotFound, "game %s", id)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, r)
		})
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListGames returns every recorded game, oldest first.
func (s *Storage) ListGames() ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(prefixGame), PrefetchValues: true, PrefetchSize: 100})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			r := &GameRecord{}
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, r)
			}); err != nil {
				return err
			}
			games = append(games, r)
		}
		return nil
	})

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Started.Before(games[j].Started)
	})
	return games, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	var stats *GameStats
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		stats, err = loadStats(txn)
		return err
	})
	return stats, err
}

func loadStats(txn *badger.Txn) (*GameStats, error) {
	stats := NewGameStats()

	item, err := txn.Get([]byte(keyStats))
	if err == badger.ErrKeyNotFound {
		return stats, nil // Use empty stats
	}
	if err != nil {
		return nil, err
	}

	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, stats)
	})
	if stats.WinsByAgent == nil {
		stats.WinsByAgent = make(map[string]int)
	}
	return stats, err
}
