package engine

import (
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// Search constants
const (
	// WinScore is the value of a position where the opponent is checkmated.
	WinScore = 5_000_000
	// DefaultStalemateScore is the value of a stalemate for either side.
	DefaultStalemateScore = 100
)

// SearchInfo contains information about a finished search.
type SearchInfo struct {
	Depth int
	Score float64
	Nodes uint64
	Time  time.Duration
	Move  board.Move
}

// MinimaxAgent is a fixed-depth alpha-beta searcher. The zero value is not
// usable; use NewMinimaxAgent.
type MinimaxAgent struct {
	Depth          int
	Alpha          float64 // initial lower bound, -Inf by default
	Beta           float64 // initial upper bound, +Inf by default
	Evaluator      Evaluator
	StalemateScore float64

	// Guard, when set, penalises moves that return to a position already
	// seen in the real game.
	Guard *RepetitionGuard
	// Tracer, when set, records the explored tree.
	Tracer *Tracer

	// Callbacks
	OnInfo func(SearchInfo)

	nodes uint64
	value float64
}

// NewMinimaxAgent creates an alpha-beta agent with unbounded initial
// window and the default stalemate score.
func NewMinimaxAgent(depth int, eval Evaluator) *MinimaxAgent {
	if eval == nil {
		eval = Material{}
	}
	return &MinimaxAgent{
		Depth:          depth,
		Alpha:          math.Inf(-1),
		Beta:           math.Inf(1),
		Evaluator:      eval,
		StalemateScore: DefaultStalemateScore,
	}
}

// ChooseMove implements Agent.
func (a *MinimaxAgent) ChooseMove(gs *board.GameState, color board.Color) (board.Move, error) {
	if !gs.HasLegalMoves(color) {
		return board.NoMove, errors.Wrapf(ErrNoLegalMoves, "%s", color)
	}

	start := time.Now()
	a.nodes = 0
	depth := a.Depth
	if depth < 1 {
		depth = 1
	}

	root := a.Tracer.Reset(color.String())
	value, move := a.search(gs, color, color, depth, a.Alpha, a.Beta, root)
	a.Tracer.Leave(root, value)
	a.value = value

	// Bounds tighter than the true value can prune the root before any
	// move improves on them.
	if move == board.NoMove {
		move = gs.LegalMoves(color)[0]
	}

	if a.OnInfo != nil {
		a.OnInfo(SearchInfo{
			Depth: depth,
			Score: value,
			Nodes: a.nodes,
			Time:  time.Since(start),
			Move:  move,
		})
	}
	return move, nil
}

// Value returns the root value of the last search.
func (a *MinimaxAgent) Value() float64 {
	return a.value
}

// Nodes returns the number of nodes visited by the last search.
func (a *MinimaxAgent) Nodes() uint64 {
	return a.nodes
}

// Observe attaches the repetition guard, if any, to the real game line.
func (a *MinimaxAgent) Observe(gs *board.GameState) {
	if a.Guard != nil {
		a.Guard.Attach(gs)
	}
}

// Restart clears per-game memory.
func (a *MinimaxAgent) Restart() {
	if a.Guard != nil {
		a.Guard.Restart()
	}
}

// Close releases the evaluator if it holds resources.
func (a *MinimaxAgent) Close() error {
	return closeEvaluator(a.Evaluator)
}

// search returns the fail-soft alpha-beta value of gs with color to move,
// scored for perspective, and the move achieving it. A maximizing node
// returns as soon as its value exceeds beta, a minimizing node as soon as
// it falls below alpha. Ties keep the first move found.
func (a *MinimaxAgent) search(gs *board.GameState, color, perspective board.Color, depth int, alpha, beta float64, node int) (float64, board.Move) {
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

	maximizing := color == perspective
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	bestMove := board.NoMove

	for _, m := range moves {
		child := a.Tracer.Enter(node, gs.Dims().MoveName(m))
		mustApply(gs, m)
		var v float64
		if maximizing && a.Guard.Seen(gs.Key()) {
			v = RepetitionPenalty
		} else {
			v, _ = a.search(gs, color.Other(), perspective, depth-1, alpha, beta, child)
		}
		mustUndo(gs)
		a.Tracer.Leave(child, v)

		if maximizing {
			if v > best {
				best, bestMove = v, m
			}
			if best > beta {
				return best, bestMove
			}
			alpha = math.Max(alpha, best)
		} else {
			if v < best {
				best, bestMove = v, m
			}
			if best < alpha {
				return best, bestMove
			}
			beta = math.Min(beta, best)
		}
	}
	return best, bestMove
}

// Minimax returns the full minimax value of gs with color to move, scored
// for perspective, and the first move achieving it. It explores the whole
// tree to depth and exists to check the pruned search against.
func Minimax(gs *board.GameState, color, perspective board.Color, depth int, eval Evaluator, stalemateScore float64) (float64, board.Move) {
	if depth == 0 {
		if v, ok := terminalValue(gs, color, perspective, stalemateScore); ok {
			return v, board.NoMove
		}
		return eval.Evaluate(gs, perspective), board.NoMove
	}

	moves := gs.LegalMoves(color)
	if len(moves) == 0 {
		return noMovesValue(gs, color, perspective, depth, stalemateScore), board.NoMove
	}

	maximizing := color == perspective
	best := math.Inf(1)
	if maximizing {
		best = math.Inf(-1)
	}
	bestMove := board.NoMove
	for _, m := range moves {
		mustApply(gs, m)
		v, _ := Minimax(gs, color.Other(), perspective, depth-1, eval, stalemateScore)
		mustUndo(gs)
		if maximizing && v > best || !maximizing && v < best {
			best, bestMove = v, m
		}
	}
	return best, bestMove
}

// terminalValue scores gs if color, to move, has no legal move.
func terminalValue(gs *board.GameState, color, perspective board.Color, stalemateScore float64) (float64, bool) {
	if gs.HasLegalMoves(color) {
		return 0, false
	}
	return noMovesValue(gs, color, perspective, 0, stalemateScore), true
}

// noMovesValue scores a position where color, to move, has no legal move.
// depth is the remaining search depth, so mates nearer the root score
// further from zero.
func noMovesValue(gs *board.GameState, color, perspective board.Color, depth int, stalemateScore float64) float64 {
	if !gs.InCheck(color) {
		return stalemateScore
	}
	if color == perspective {
		return -(WinScore + float64(depth))
	}
	return WinScore + float64(depth)
}

func closeEvaluator(e Evaluator) error {
	if c, ok := e.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// mustApply plays a generated move. Legal moves always apply, so a failure
// means the game state is corrupt.
func mustApply(gs *board.GameState, m board.Move) {
	if err := gs.Apply(m, true); err != nil {
		panic(errors.Wrapf(err, "applying generated move %v", m))
	}
}

func mustUndo(gs *board.GameState) {
	if err := gs.Undo(); err != nil {
		panic(errors.Wrap(err, "undoing search move"))
	}
}
