package engine

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// SearchLimits specifies constraints on the search.
type SearchLimits struct {
	Depth   int // Search depth in plies
	Workers int // Root workers (0 or 1 = single-threaded)
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy   Difficulty = iota // 1 ply
	Medium                   // 2 ply
	Hard                     // 3 ply
)

// DifficultySettings maps difficulty to search limits.
var DifficultySettings = map[Difficulty]SearchLimits{
	Easy:   {Depth: 1},
	Medium: {Depth: 2},
	Hard:   {Depth: 3},
}

// String returns the difficulty name.
func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return fmt.Sprintf("Difficulty(%d)", int(d))
	}
}

// ParseDifficulty parses "easy", "medium" or "hard".
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return Easy, nil
	case "", "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	}
	return Medium, errors.Errorf("unknown difficulty %q", s)
}

// Engine is the minimax engine behind the interactive drivers. It follows
// one game at a time for repetition avoidance.
type Engine struct {
	evaluator  Evaluator
	guard      *RepetitionGuard
	difficulty Difficulty
	workers    int

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine using eval. A nil evaluator uses material.
func NewEngine(eval Evaluator) *Engine {
	if eval == nil {
		eval = Material{}
	}
	return &Engine{
		evaluator:  eval,
		guard:      NewRepetitionGuard(),
		difficulty: Medium,
	}
}

// SetDifficulty sets the engine difficulty.
func (e *Engine) SetDifficulty(d Difficulty) {
	e.difficulty = d
}

// Difficulty returns the engine difficulty.
func (e *Engine) Difficulty() Difficulty {
	return e.difficulty
}

// SetEvaluator replaces the evaluation function. A nil evaluator uses
// material.
func (e *Engine) SetEvaluator(eval Evaluator) {
	if eval == nil {
		eval = Material{}
	}
	e.evaluator = eval
}

// SetWorkers sets the number of root workers for searches at the
// configured difficulty.
func (e *Engine) SetWorkers(n int) {
	e.workers = n
}

// Workers returns the number of root workers.
func (e *Engine) Workers() int {
	return e.workers
}

// Observe follows gs for repetition avoidance. Call Clear before switching
// to a new game.
func (e *Engine) Observe(gs *board.GameState) {
	e.guard.Attach(gs)
}

// Search finds the best move for the side to move.
func (e *Engine) Search(gs *board.GameState) (board.Move, error) {
	limits := DifficultySettings[e.difficulty]
	if limits.Workers == 0 {
		limits.Workers = e.workers
	}
	return e.SearchWithLimits(gs, limits)
}

// SearchWithLimits finds the best move for the side to move with specific
// limits.
func (e *Engine) SearchWithLimits(gs *board.GameState, limits SearchLimits) (board.Move, error) {
	mm := NewMinimaxAgent(limits.Depth, e.evaluator)
	mm.Guard = e.guard
	if limits.Workers > 1 {
		p := NewParallelAgent(mm, limits.Workers)
		p.OnInfo = e.OnInfo
		return p.ChooseMove(gs, gs.Turn())
	}
	mm.OnInfo = e.OnInfo
	return mm.ChooseMove(gs, gs.Turn())
}

// Resync follows gs again from its current history. Call it after taking
// moves back so undone positions are no longer avoided.
func (e *Engine) Resync(gs *board.GameState) {
	e.guard.Reattach(gs)
}

// Clear forgets the followed game.
func (e *Engine) Clear() {
	e.guard.Restart()
}

// Perft counts the leaf nodes of the legal move tree (for debugging move
// generation).
func (e *Engine) Perft(gs *board.GameState, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := gs.LegalMoves(gs.Turn())
	if depth == 1 {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, m := range moves {
		mustApply(gs, m)
		nodes += e.Perft(gs, depth-1)
		mustUndo(gs)
	}
	return nodes
}

// Evaluate returns the static evaluation from the side to move's view.
func (e *Engine) Evaluate(gs *board.GameState) float64 {
	return e.evaluator.Evaluate(gs, gs.Turn())
}

// IsWinScore reports whether score is a forced win or loss.
func IsWinScore(score float64) bool {
	return score >= WinScore || score <= -WinScore
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score float64) string {
	switch {
	case score >= WinScore:
		return "Mate"
	case score <= -WinScore:
		return "Mated"
	case score == RepetitionPenalty:
		return "Repetition"
	}
	return fmt.Sprintf("%.1f", score)
}
