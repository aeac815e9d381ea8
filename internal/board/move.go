package board

// Move is an ordered (start, end) pair. It does not record what was
// captured; the game state's history does.
type Move struct {
	From Square
	To   Square
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// NewMove creates a move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// String returns the coordinate form used in learned-value keys,
// e.g. "(6,4)(4,4)".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

// HistoryEntry records everything needed to reverse one applied move.
type HistoryEntry struct {
	Move     Move
	Piece    *Piece
	Captured *Piece // NoPiece when nothing was captured
	// CaptureSquare is where the captured piece stood; it differs from
	// Move.To for en passant.
	CaptureSquare Square
	Promoted      bool
	// RookMove is the rook's move for castling, NoMove otherwise.
	RookMove  Move
	EnPassant Square // en passant target before the move
	Hash      uint64 // hash before the move
	Simulated bool
}

// IsCapture returns true if the move captured a piece.
func (h HistoryEntry) IsCapture() bool {
	return !h.Captured.IsEmpty()
}

// IsCastling returns true if the move was a castling move.
func (h HistoryEntry) IsCastling() bool {
	return h.RookMove != NoMove
}
