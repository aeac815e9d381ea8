package engine

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// CheckmateReward is earned for delivering mate and lost for suffering it.
const CheckmateReward = 1000

// QStore persists learned values between games. Load returns an empty map
// when nothing has been stored under name.
type QStore interface {
	LoadQValues(name string) (map[string]float64, error)
	SaveQValues(name string, values map[string]float64) error
}

// QConfig holds the learning parameters.
type QConfig struct {
	Name        string  // store name
	ExploreRate float64 // probability of exploiting; explores with 1 - ExploreRate
	LearnRate   float64
	Discount    float64
}

// DefaultQConfig returns the default learning parameters.
func DefaultQConfig(name string) QConfig {
	return QConfig{
		Name:        name,
		ExploreRate: 0.5,
		LearnRate:   0.2,
		Discount:    0.8,
	}
}

// qDecision is the last update made for one color.
type qDecision struct {
	key string
}

// QAgent chooses moves epsilon-greedily from a table of learned values
// keyed by position and move, and updates the table after every decision.
type QAgent struct {
	cfg    QConfig
	store  QStore
	values map[string]float64
	rng    *rand.Rand
	last   map[board.Color]qDecision
	dirty  bool
}

// NewQAgent creates a Q agent and loads its values from store. A nil store
// keeps values in memory only.
func NewQAgent(cfg QConfig, store QStore, rng *rand.Rand) (*QAgent, error) {
	values := make(map[string]float64)
	if store != nil {
		loaded, err := store.LoadQValues(cfg.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "loading q-values %q", cfg.Name)
		}
		if loaded != nil {
			values = loaded
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &QAgent{
		cfg:    cfg,
		store:  store,
		values: values,
		rng:    rng,
		last:   make(map[board.Color]qDecision),
	}, nil
}

// QKey returns the table key of playing m in gs.
func QKey(gs *board.GameState, m board.Move) string {
	return gs.Key() + " " + m.String()
}

// Q returns the stored estimate for playing m in gs, zero when unseen.
func (a *QAgent) Q(gs *board.GameState, m board.Move) float64 {
	return a.values[QKey(gs, m)]
}

// Len returns the number of stored estimates.
func (a *QAgent) Len() int {
	return len(a.values)
}

// best returns the legal move of color with the highest estimate and that
// estimate. Ties keep the first move generated. With no legal move it
// returns NoMove and zero.
func (a *QAgent) best(gs *board.GameState, color board.Color) (board.Move, float64) {
	moves := gs.LegalMoves(color)
	if len(moves) == 0 {
		return board.NoMove, 0
	}
	move, val := moves[0], a.Q(gs, moves[0])
	for _, m := range moves[1:] {
		if v := a.Q(gs, m); v > val {
			move, val = m, v
		}
	}
	return move, val
}

// ChooseMove implements Agent. The chosen move's estimate is moved toward
// reward + Discount * best estimate after the move.
func (a *QAgent) ChooseMove(gs *board.GameState, color board.Color) (board.Move, error) {
	moves := gs.LegalMoves(color)
	if len(moves) == 0 {
		return board.NoMove, errors.Wrapf(ErrNoLegalMoves, "%s", color)
	}

	var move board.Move
	if a.rng.Float64() > a.cfg.ExploreRate {
		move = moves[a.rng.Intn(len(moves))]
	} else {
		move, _ = a.best(gs, color)
	}

	key := QKey(gs, move)
	reward := MaterialValues.Of(gs.CapturedBy(move))

	mustApply(gs, move)
	if statusFor(gs, color.Other()).Loser() == color.Other() {
		reward += CheckmateReward
	}
	_, next := a.best(gs, color)
	mustUndo(gs)

	a.update(key, reward, next)
	a.last[color] = qDecision{key: key}
	return move, nil
}

// update moves the estimate for key toward reward + Discount * next.
func (a *QAgent) update(key string, reward, next float64) {
	v := a.values[key]
	a.values[key] = v + a.cfg.LearnRate*(reward+a.cfg.Discount*next-v)
	a.dirty = true
}

// GameOver penalises the last decision of color if color was checkmated.
func (a *QAgent) GameOver(gs *board.GameState, color board.Color) {
	d, ok := a.last[color]
	delete(a.last, color)
	if !ok || gs.Status().Loser() != color {
		return
	}
	a.update(d.key, -CheckmateReward, 0)
}

// Restart forgets the pending decisions of the previous game.
func (a *QAgent) Restart() {
	a.last = make(map[board.Color]qDecision)
}

// Flush writes the learned values to the store.
func (a *QAgent) Flush() error {
	if a.store == nil || !a.dirty {
		return nil
	}
	if err := a.store.SaveQValues(a.cfg.Name, a.values); err != nil {
		return errors.Wrapf(err, "saving q-values %q", a.cfg.Name)
	}
	a.dirty = false
	return nil
}

// Close flushes the learned values.
func (a *QAgent) Close() error {
	return a.Flush()
}
