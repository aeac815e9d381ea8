package engine

import "github.com/hailam/chessplay/internal/board"

// Mobility counts the legal non-capturing moves of perspective's pieces.
type Mobility struct{}

// Evaluate implements Evaluator.
func (Mobility) Evaluate(gs *board.GameState, perspective board.Color) float64 {
	n := 0
	for _, p := range gs.Board().PiecesOf(perspective) {
		n += len(gs.PieceMoves(p.Square))
	}
	return float64(n)
}

// Discount applied to threats against perspective's own pieces.
const threatenedDiscount = 0.1

// CaptureThreat rewards pieces perspective can capture at full value,
// penalises its own pieces under attack at a tenth of their value and
// adds twice the signed material.
type CaptureThreat struct{}

// Evaluate implements Evaluator.
func (CaptureThreat) Evaluate(gs *board.GameState, perspective board.Color) float64 {
	var score float64
	for _, p := range gs.Board().Pieces() {
		for _, m := range gs.PieceTakes(p.Square) {
			target := gs.CapturedBy(m)
			if target.Is(perspective) {
				score -= threatenedDiscount * CaptureValues.Of(target)
			} else {
				score += CaptureValues.Of(target)
			}
		}
		score += 2 * CaptureValues.Signed(p, perspective)
	}
	return score
}
