package engine

import (
	"sync"

	"github.com/hailam/chessplay/internal/board"
)

// RepetitionPenalty is the value given to a searched move that returns to
// a position already reached in the real game.
const RepetitionPenalty = -1_000_000

// RepetitionGuard remembers the canonical keys of the positions reached by
// committed moves. It follows a game through GameState.Subscribe, so
// simulated search moves never enter it. A nil guard sees nothing.
type RepetitionGuard struct {
	mu     sync.RWMutex
	seen   map[string]struct{}
	cancel []func()
}

// NewRepetitionGuard creates an empty guard.
func NewRepetitionGuard() *RepetitionGuard {
	return &RepetitionGuard{seen: make(map[string]struct{})}
}

// Attach records the current position of gs and every position reached by
// its committed moves from now on.
func (g *RepetitionGuard) Attach(gs *board.GameState) {
	g.Add(gs.Key())
	cancel := gs.Subscribe(func(gs *board.GameState, _ board.HistoryEntry) {
		g.Add(gs.Key())
	})
	g.mu.Lock()
	g.cancel = append(g.cancel, cancel)
	g.mu.Unlock()
}

// Reattach forgets every key and records the positions of the game line
// of gs, as after an undo, then follows gs again.
func (g *RepetitionGuard) Reattach(gs *board.GameState) {
	g.Restart()
	replay := gs.Clone()
	for replay.Ply() > 0 {
		g.Add(replay.Key())
		mustUndo(replay)
	}
	g.Add(replay.Key())
	g.Attach(gs)
}

// Add records key.
func (g *RepetitionGuard) Add(key string) {
	g.mu.Lock()
	g.seen[key] = struct{}{}
	g.mu.Unlock()
}

// Seen returns true if key has been recorded.
func (g *RepetitionGuard) Seen(key string) bool {
	if g == nil {
		return false
	}
	g.mu.RLock()
	_, ok := g.seen[key]
	g.mu.RUnlock()
	return ok
}

// Len returns the number of recorded keys.
func (g *RepetitionGuard) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.seen)
}

// Restart forgets every key and detaches from all game states.
func (g *RepetitionGuard) Restart() {
	g.mu.Lock()
	cancel := g.cancel
	g.cancel = nil
	g.seen = make(map[string]struct{})
	g.mu.Unlock()

	for _, fn := range cancel {
		fn()
	}
}
