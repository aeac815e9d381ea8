package engine

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// ErrNoLegalMoves is returned when an agent is asked to move for a color
// that has no legal move. Callers should check the game status first.
var ErrNoLegalMoves = errors.New("no legal moves")

// Agent picks a move for color. It may apply and undo moves on gs while
// deciding but must leave it exactly as it found it.
type Agent interface {
	ChooseMove(gs *board.GameState, color board.Color) (board.Move, error)
}

// Restarter is implemented by agents that keep per-game memory.
type Restarter interface {
	Restart()
}

// Observer is implemented by agents that follow the committed moves of the
// game they play.
type Observer interface {
	Observe(gs *board.GameState)
}

// Learner is implemented by agents that learn from game outcomes. GameOver
// is called once per finished game for each side the agent played.
type Learner interface {
	GameOver(gs *board.GameState, color board.Color)
}

// Flusher is implemented by agents with learned state to persist.
type Flusher interface {
	Flush() error
}

// RandomAgent picks uniformly among the legal moves.
type RandomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent creates a random agent. A nil rng seeds from the clock.
func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomAgent{rng: rng}
}

// ChooseMove implements Agent.
func (a *RandomAgent) ChooseMove(gs *board.GameState, color board.Color) (board.Move, error) {
	moves := gs.LegalMoves(color)
	if len(moves) == 0 {
		return board.NoMove, errors.Wrapf(ErrNoLegalMoves, "%s", color)
	}
	return moves[a.rng.Intn(len(moves))], nil
}

// statusFor classifies the position for color as the side to move,
// whatever gs.Turn says.
func statusFor(gs *board.GameState, color board.Color) board.Status {
	if gs.HasLegalMoves(color) {
		return board.Ongoing
	}
	if gs.InCheck(color) {
		if color == board.White {
			return board.PlayerOneLost
		}
		return board.PlayerTwoLost
	}
	return board.Stalemate
}
