package engine

import (
	"math"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// ExpectimaxAgent maximizes over its own moves and averages over the
// opponent's, modelling an opponent that moves uniformly at random.
type ExpectimaxAgent struct {
	Depth          int
	Evaluator      Evaluator
	StalemateScore float64

	nodes uint64
	value float64
}

// NewExpectimaxAgent creates an expectimax agent.
func NewExpectimaxAgent(depth int, eval Evaluator) *ExpectimaxAgent {
	if eval == nil {
		eval = Material{}
	}
	return &ExpectimaxAgent{
		Depth:          depth,
		Evaluator:      eval,
		StalemateScore: DefaultStalemateScore,
	}
}

// ChooseMove implements Agent.
func (a *ExpectimaxAgent) ChooseMove(gs *board.GameState, color board.Color) (board.Move, error) {
	if !gs.HasLegalMoves(color) {
		return board.NoMove, errors.Wrapf(ErrNoLegalMoves, "%s", color)
	}
	a.nodes = 0
	depth := a.Depth
	if depth < 1 {
		depth = 1
	}
	value, move := a.expect(gs, color, color, depth)
	a.value = value
	return move, nil
}

// Value returns the root value of the last search.
func (a *ExpectimaxAgent) Value() float64 {
	return a.value
}

// Nodes returns the number of nodes visited by the last search.
func (a *ExpectimaxAgent) Nodes() uint64 {
	return a.nodes
}

// Close releases the evaluator if it holds resources.
func (a *ExpectimaxAgent) Close() error {
	return closeEvaluator(a.Evaluator)
}

func (a *ExpectimaxAgent) expect(gs *board.GameState, color, perspective board.Color, depth int) (float64, board.Move) {
	a.nodes++

	if depth == 0 {
		if v, ok := terminalValue(gs, color, perspective, a.StalemateScore); ok {
			return v, board.NoMove
		}
		return a.Evaluator.Evaluate(gs, perspective), board.NoMove
	}

	moves := gs.LegalMoves(color)
	if len(moves) == 0 {
		return noMovesValue(gs, color, perspective, depth, a.StalemateScore), board.NoMove
	}

	if color != perspective {
		var sum float64
		for _, m := range moves {
			mustApply(gs, m)
			v, _ := a.expect(gs, color.Other(), perspective, depth-1)
			mustUndo(gs)
			sum += v
		}
		return sum / float64(len(moves)), board.NoMove
	}

	best := math.Inf(-1)
	bestMove := board.NoMove
	for _, m := range moves {
		mustApply(gs, m)
		v, _ := a.expect(gs, color.Other(), perspective, depth-1)
		mustUndo(gs)
		if v > best {
			best, bestMove = v, m
		}
	}
	return best, bestMove
}
