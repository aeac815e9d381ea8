package server

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/config"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/storage"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrIllegalMove  = errors.New("illegal move")
	ErrGameOver     = errors.New("game is over")
)

// Recorder stores finished games.
type Recorder interface {
	SaveGame(r *storage.GameRecord) error
}

// Game is one game played over the API. Its methods serialise access.
type Game struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	state    *board.GameState
	engine   *engine.Engine
	layout   string
	recorded bool
}

// GameManager owns the games in progress.
type GameManager struct {
	games    map[string]*Game
	mu       sync.RWMutex
	recorder Recorder
	eval     engine.Evaluator
}

// NewGameManager creates a manager. recorder may be nil.
func NewGameManager(recorder Recorder, eval engine.Evaluator) *GameManager {
	return &GameManager{
		games:    make(map[string]*Game),
		recorder: recorder,
		eval:     eval,
	}
}

// Create starts a game from a preset name or layout with an engine at the
// given difficulty.
func (gm *GameManager) Create(boardSpec string, difficulty engine.Difficulty) (*Game, error) {
	l, err := config.ParseBoard(boardSpec)
	if err != nil {
		return nil, err
	}
	gs, err := board.NewGameState(l)
	if err != nil {
		return nil, err
	}

	eng := engine.NewEngine(gm.eval)
	eng.SetDifficulty(difficulty)
	eng.Observe(gs)

	g := &Game{
		ID:      uuid.New().String(),
		Created: time.Now(),
		state:   gs,
		engine:  eng,
		layout:  gs.Layout(),
	}

	gm.mu.Lock()
	gm.games[g.ID] = g
	gm.mu.Unlock()
	return g, nil
}

// Get returns the game with the given id.
func (gm *GameManager) Get(id string) (*Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	g, ok := gm.games[id]
	if !ok {
		return nil, errors.Wrapf(ErrGameNotFound, "%s", id)
	}
	return g, nil
}

// Delete drops a game.
func (gm *GameManager) Delete(id string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	if _, ok := gm.games[id]; !ok {
		return errors.Wrapf(ErrGameNotFound, "%s", id)
	}
	delete(gm.games, id)
	return nil
}

// List returns the ids of all games, oldest first.
func (gm *GameManager) List() []string {
	gm.mu.RLock()
	games := make([]*Game, 0, len(gm.games))
	for _, g := range gm.games {
		games = append(games, g)
	}
	gm.mu.RUnlock()

	sort.Slice(games, func(i, j int) bool {
		return games[i].Created.Before(games[j].Created)
	})
	ids := make([]string, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}

// Move plays a move given as two square names.
func (gm *GameManager) Move(g *Game, from, to string) (GameView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status() != board.Ongoing {
		return GameView{}, ErrGameOver
	}
	m, err := g.state.Dims().ParseMove(strings.TrimSpace(from) + strings.TrimSpace(to))
	if err != nil {
		return GameView{}, errors.Wrap(ErrIllegalMove, err.Error())
	}
	if !g.state.IsLegal(m) {
		return GameView{}, errors.Wrapf(ErrIllegalMove, "%s%s", from, to)
	}
	if err := g.state.Apply(m, false); err != nil {
		return GameView{}, err
	}
	return gm.afterMove(g)
}

// AIMove lets the engine play for the side to move.
func (gm *GameManager) AIMove(g *Game) (GameView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state.Status() != board.Ongoing {
		return GameView{}, ErrGameOver
	}
	m, err := g.engine.Search(g.state)
	if err != nil {
		return GameView{}, err
	}
	if err := g.state.Apply(m, false); err != nil {
		return GameView{}, err
	}
	v, err := gm.afterMove(g)
	v.LastMove = g.state.Dims().MoveName(m)
	return v, err
}

// Undo takes back the last move.
func (gm *GameManager) Undo(g *Game) (GameView, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.state.Undo(); err != nil {
		return GameView{}, err
	}
	g.engine.Resync(g.state)
	return newGameView(g), nil
}

// View returns the current state of g.
func (gm *GameManager) View(g *Game) GameView {
	g.mu.Lock()
	defer g.mu.Unlock()
	return newGameView(g)
}

// afterMove records the game the first time it ends. g.mu is held.
func (gm *GameManager) afterMove(g *Game) (GameView, error) {
	v := newGameView(g)
	status := g.state.Status()
	if status == board.Ongoing || g.recorded || gm.recorder == nil {
		return v, nil
	}

	rec := &storage.GameRecord{
		ID:       g.ID,
		White:    "player",
		Black:    "player",
		Layout:   g.layout,
		Moves:    v.History,
		Plies:    len(v.History),
		Started:  g.Created,
		Duration: time.Since(g.Created),
	}
	switch status {
	case board.PlayerOneLost:
		rec.Result = storage.ResultBlackWins
	case board.PlayerTwoLost:
		rec.Result = storage.ResultWhiteWins
	default:
		rec.Result = storage.ResultDraw
	}
	if err := gm.recorder.SaveGame(rec); err != nil {
		return v, errors.Wrap(err, "recording game")
	}
	g.recorded = true
	return v, nil
}
