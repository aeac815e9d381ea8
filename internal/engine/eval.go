package engine

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// ErrUnknownEvaluator is returned by EvaluatorByName for unregistered names.
var ErrUnknownEvaluator = errors.New("unknown evaluator")

// Evaluator scores a position from one side's point of view. Higher is
// better for perspective. Implementations must be deterministic and must
// not modify the game state.
type Evaluator interface {
	Evaluate(gs *board.GameState, perspective board.Color) float64
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(gs *board.GameState, perspective board.Color) float64

// Evaluate calls f.
func (f EvaluatorFunc) Evaluate(gs *board.GameState, perspective board.Color) float64 {
	return f(gs, perspective)
}

// PieceValues maps each piece type to its material value.
type PieceValues [board.NoPieceType]float64

// Material values. The king dominates every other piece so that losing it
// is never traded against position.
var (
	MaterialValues = PieceValues{
		board.Pawn:   10,
		board.Knight: 30,
		board.Bishop: 30,
		board.Rook:   50,
		board.Queen:  100,
		board.King:   1000,
	}

	// CaptureValues are used by CaptureThreat, which rates the queen lower.
	CaptureValues = PieceValues{
		board.Pawn:   10,
		board.Knight: 30,
		board.Bishop: 30,
		board.Rook:   50,
		board.Queen:  90,
		board.King:   1000,
	}
)

// Of returns the value of p, zero for the empty marker.
func (v *PieceValues) Of(p *board.Piece) float64 {
	if p.IsEmpty() {
		return 0
	}
	return v[p.Type]
}

// Signed returns the value of p, negated when p belongs to the opponent
// of perspective.
func (v *PieceValues) Signed(p *board.Piece, perspective board.Color) float64 {
	if p.IsEmpty() {
		return 0
	}
	if p.Color == perspective {
		return v[p.Type]
	}
	return -v[p.Type]
}

// Material sums the signed material values of all pieces.
type Material struct{}

// Evaluate implements Evaluator.
func (Material) Evaluate(gs *board.GameState, perspective board.Color) float64 {
	var score float64
	for _, p := range gs.Board().Pieces() {
		score += MaterialValues.Signed(p, perspective)
	}
	return score
}

// Evaluator names accepted by EvaluatorByName.
const (
	EvalMaterial    = "material"
	EvalPieceSquare = "piece-square"
	EvalMobility    = "mobility"
	EvalCapture     = "capture"
)

var evaluators = map[string]func() Evaluator{
	EvalMaterial:    func() Evaluator { return Material{} },
	EvalPieceSquare: func() Evaluator { return NewPieceSquare() },
	EvalMobility:    func() Evaluator { return Mobility{} },
	EvalCapture:     func() Evaluator { return CaptureThreat{} },
}

// EvaluatorByName returns a fresh evaluator for name. Names are case
// insensitive; an empty name selects material.
func EvaluatorByName(name string) (Evaluator, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = EvalMaterial
	}
	ctor, ok := evaluators[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEvaluator, "%q (known: %s)", name, strings.Join(EvaluatorNames(), ", "))
	}
	return ctor(), nil
}

// EvaluatorNames returns the registered evaluator names, sorted.
func EvaluatorNames() []string {
	names := make([]string, 0, len(evaluators))
	for name := range evaluators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
