package engine

import "github.com/hailam/chessplay/internal/board"

// PieceSquareWeight scales table bonuses against material.
const PieceSquareWeight = 0.2

// pieceTable is a positional bonus table read from White's side: row 0 is
// the row White's pawns promote on.
type pieceTable [][]float64

// 8x8 tables.
var tables8x8 = [board.NoPieceType]pieceTable{
	board.Pawn: {
		{0, 0, 0, 0, 0, 0, 0, 0},
		{50, 50, 50, 50, 50, 50, 50, 50},
		{10, 10, 20, 30, 30, 20, 10, 10},
		{5, 5, 10, 25, 25, 10, 5, 5},
		{0, 0, 0, 20, 20, 0, 0, 0},
		{5, -5, -10, 0, 0, -10, -5, 5},
		{5, 10, 10, -20, -20, 10, 10, 5},
		{0, 0, 0, 0, 0, 0, 0, 0},
	},
	board.Knight: {
		{-50, -40, -30, -30, -30, -30, -40, -50},
		{-40, -20, 0, 0, 0, 0, -20, -40},
		{-30, 0, 10, 15, 15, 10, 0, -30},
		{-30, 5, 15, 20, 20, 15, 5, -30},
		{-30, 0, 15, 20, 20, 15, 0, -30},
		{-30, 5, 10, 15, 15, 10, 5, -30},
		{-40, -20, 0, 5, 5, 0, -20, -40},
		{-50, -40, -30, -30, -30, -30, -40, -50},
	},
	board.Bishop: {
		{-20, -10, -10, -10, -10, -10, -10, -20},
		{-10, 0, 0, 0, 0, 0, 0, -10},
		{-10, 0, 5, 10, 10, 5, 0, -10},
		{-10, 5, 5, 10, 10, 5, 5, -10},
		{-10, 0, 10, 10, 10, 10, 0, -10},
		{-10, 10, 10, 10, 10, 10, 10, -10},
		{-10, 5, 0, 0, 0, 0, 5, -10},
		{-20, -10, -10, -10, -10, -10, -10, -20},
	},
	board.Rook: {
		{0, 0, 0, 0, 0, 0, 0, 0},
		{5, 10, 10, 10, 10, 10, 10, 5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{-5, 0, 0, 0, 0, 0, 0, -5},
		{0, 0, 0, 5, 5, 0, 0, 0},
	},
	board.Queen: {
		{-20, -10, -10, -5, -5, -10, -10, -20},
		{-10, 0, 0, 0, 0, 0, 0, -10},
		{-10, 0, 5, 5, 5, 5, 0, -10},
		{-5, 0, 5, 5, 5, 5, 0, -5},
		{0, 0, 5, 5, 5, 5, 0, -5},
		{-10, 5, 5, 5, 5, 5, 0, -10},
		{-10, 0, 5, 0, 0, 0, 0, -10},
		{-20, -10, -10, -5, -5, -10, -10, -20},
	},
	// End-game king table.
	board.King: {
		{-50, -40, -30, -20, -20, -30, -40, -50},
		{-30, -20, -10, 0, 0, -10, -20, -30},
		{-30, -10, 20, 30, 30, 20, -10, -30},
		{-30, -10, 30, 40, 40, 30, -10, -30},
		{-30, -10, 30, 40, 40, 30, -10, -30},
		{-30, -10, 20, 30, 30, 20, -10, -30},
		{-30, -30, 0, 0, 0, 0, -30, -30},
		{-50, -30, -30, -30, -30, -30, -30, -50},
	},
}

// 6x4 tables.
var tables6x4 = [board.NoPieceType]pieceTable{
	board.Pawn: {
		{50, 50, 50, 50},
		{30, 30, 25, 25},
		{10, 10, 10, 10},
		{5, 10, 10, 5},
		{5, 5, 5, 5},
		{0, 0, 0, 0},
	},
	board.Knight: {
		{0, 0, 0, 0},
		{0, 5, 5, 0},
		{0, 15, 15, 0},
		{0, 15, 15, 0},
		{0, 5, 5, 0},
		{-5, -5, -5, -5},
	},
	board.Bishop: {
		{5, 10, 10, 5},
		{5, 10, 10, 5},
		{10, 10, 10, 10},
		{10, 10, 10, 10},
		{5, 10, 10, 5},
		{5, 10, 10, 5},
	},
	board.Rook: {
		{0, 0, 0, 0},
		{5, 10, 10, 5},
		{5, 0, 0, 5},
		{5, 0, 0, 5},
		{5, 0, 0, 5},
		{0, 5, 5, 0},
	},
	board.Queen: {
		{-20, -10, -10, -20},
		{-10, 0, 0, -10},
		{-10, 5, 5, -10},
		{-10, 5, 5, -10},
		{-10, 5, 5, -10},
		{-20, -10, -10, -20},
	},
	board.King: {
		{-50, -30, -30, -50},
		{-30, -10, -10, -30},
		{-30, 10, 10, -30},
		{-30, 10, 10, -30},
		{-30, 0, 0, -30},
		{-50, -30, -30, -50},
	},
}

// PieceSquare is material plus a weighted positional bonus per piece.
// Boards other than 8x8 and 6x4 sample the 8x8 tables proportionally.
type PieceSquare struct {
	Weight float64
}

// NewPieceSquare returns a piece-square evaluator with the default weight.
func NewPieceSquare() *PieceSquare {
	return &PieceSquare{Weight: PieceSquareWeight}
}

// Evaluate implements Evaluator.
func (ps *PieceSquare) Evaluate(gs *board.GameState, perspective board.Color) float64 {
	d := gs.Dims()
	var score float64
	for _, p := range gs.Board().Pieces() {
		bonus := ps.Weight * tableValue(d, p)
		if p.Color != perspective {
			bonus = -bonus
		}
		score += MaterialValues.Signed(p, perspective) + bonus
	}
	return score
}

// tableValue looks up the positional bonus of p. Black reads the
// row-mirrored entry.
func tableValue(d board.Dims, p *board.Piece) float64 {
	sq := p.Square
	if p.Color == board.Black {
		sq = d.Mirror(sq)
	}
	switch {
	case d.Rows == 8 && d.Cols == 8:
		return tables8x8[p.Type][sq.Row][sq.Col]
	case d.Rows == 6 && d.Cols == 4:
		return tables6x4[p.Type][sq.Row][sq.Col]
	default:
		return tables8x8[p.Type][sq.Row*8/d.Rows][sq.Col*8/d.Cols]
	}
}
