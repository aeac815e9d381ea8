package board

import (
	"strings"

	"github.com/pkg/errors"
)

// Layout is a FEN-like description of a position on a board of any size:
//
//	<placement> [w|b] [castling] [en passant]
//
// Placement lists rows from row 0 (Black's side) separated by '/', using
// piece letters and digit runs (multi-digit allowed) for empty squares.
// Castling uses K/Q for White and k/q for Black, K meaning the rook on the
// higher column; "-" means no rights. When the castling field is omitted,
// kings and rooks on their home row are treated as unmoved.
type Layout string

const (
	// StandardLayout is the 8x8 starting position.
	StandardLayout Layout = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -"
	// MiniLayout is the 6x4 starting position.
	MiniLayout Layout = "rqkn/pppp/4/4/PPPP/RQKN w - -"
)

// NewGameState creates a game state from a layout.
func NewGameState(l Layout) (*GameState, error) {
	return ParseLayout(string(l))
}

// NewStandardGame creates the 8x8 starting position.
func NewStandardGame() *GameState {
	gs, _ := NewGameState(StandardLayout)
	return gs
}

// NewMiniGame creates the 6x4 starting position.
func NewMiniGame() *GameState {
	gs, _ := NewGameState(MiniLayout)
	return gs
}

// ParseLayout parses a layout string and returns a game state.
func ParseLayout(s string) (*GameState, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, errors.Wrap(ErrInvalidLayout, "empty layout")
	}

	b, err := parsePlacement(parts[0])
	if err != nil {
		return nil, err
	}

	turn := White
	if len(parts) > 1 {
		switch parts[1] {
		case "w":
			turn = White
		case "b":
			turn = Black
		default:
			return nil, errors.Wrapf(ErrInvalidLayout, "side to move %q", parts[1])
		}
	}

	if err := validatePlacement(b); err != nil {
		return nil, err
	}

	markPawns(b)
	if len(parts) > 2 {
		if err := applyCastling(b, parts[2]); err != nil {
			return nil, err
		}
	} else {
		markHomeRows(b)
	}

	enPassant := NoSquare
	if len(parts) > 3 && parts[3] != "-" {
		sq, err := b.dims.ParseSquare(parts[3])
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidLayout, "en passant square %q", parts[3])
		}
		enPassant = sq
	}

	return newGameState(b, turn, enPassant), nil
}

// parsePlacement parses the placement field into a board.
func parsePlacement(placement string) (*Board, error) {
	rows := strings.Split(placement, "/")
	type cell struct {
		pt  PieceType
		c   Color
		col int
	}
	grid := make([][]cell, len(rows))
	cols := -1

	for r, rowStr := range rows {
		col := 0
		run := 0
		for i := 0; i < len(rowStr); i++ {
			ch := rowStr[i]
			if ch >= '0' && ch <= '9' {
				run = run*10 + int(ch-'0')
				continue
			}
			col += run
			run = 0
			pt, c, ok := pieceFromChar(ch)
			if !ok {
				return nil, errors.Wrapf(ErrInvalidLayout, "piece character %q", ch)
			}
			grid[r] = append(grid[r], cell{pt: pt, c: c, col: col})
			col++
		}
		col += run
		if cols < 0 {
			cols = col
		} else if col != cols {
			return nil, errors.Wrapf(ErrInvalidLayout, "row %d has %d squares, want %d", r, col, cols)
		}
	}

	dims := Dims{Rows: len(rows), Cols: cols}
	if err := dims.Validate(); err != nil {
		return nil, errors.Wrapf(ErrInvalidLayout, "%dx%d board", dims.Rows, dims.Cols)
	}

	b := NewBoard(dims)
	for r, cells := range grid {
		for _, c := range cells {
			sq := Sq(r, c.col)
			b.place(NewPiece(c.pt, c.c, sq), sq)
		}
	}
	return b, nil
}

// validatePlacement checks for exactly one king per side and no pawns on
// the first or last row.
func validatePlacement(b *Board) error {
	var kings [2]int
	for _, p := range b.Pieces() {
		switch p.Type {
		case King:
			kings[p.Color]++
		case Pawn:
			if p.Square.Row == 0 || p.Square.Row == b.dims.Rows-1 {
				return errors.Wrapf(ErrInvalidLayout, "pawn on %s", b.dims.SquareName(p.Square))
			}
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return errors.Wrapf(ErrInvalidLayout, "need one king per side, got %d white and %d black", kings[White], kings[Black])
	}
	return nil
}

// markPawns flags pawns off their starting row as having moved.
func markPawns(b *Board) {
	for _, p := range b.Pieces() {
		if p.Type == Pawn && p.Square.Row != b.dims.PawnRow(p.Color) {
			p.Moves = 1
		}
	}
}

// markHomeRows flags kings and rooks off their home row as having moved.
func markHomeRows(b *Board) {
	for _, p := range b.Pieces() {
		if (p.Type == King || p.Type == Rook) && p.Square.Row != b.dims.HomeRow(p.Color) {
			p.Moves = 1
		}
	}
}

// applyCastling marks kings and rooks as moved unless the castling field
// grants them a right.
func applyCastling(b *Board, field string) error {
	for _, p := range b.Pieces() {
		if p.Type == King || p.Type == Rook {
			p.Moves = 1
		}
	}
	if field == "-" {
		return nil
	}
	for i := 0; i < len(field); i++ {
		var c Color
		dir := 1
		switch field[i] {
		case 'K':
			c = White
		case 'Q':
			c, dir = White, -1
		case 'k':
			c = Black
		case 'q':
			c, dir = Black, -1
		default:
			return errors.Wrapf(ErrInvalidLayout, "castling field %q", field)
		}
		k := b.King(c)
		if k == nil || k.Square.Row != b.dims.HomeRow(c) {
			continue
		}
		if rook := outermostRook(b, k, dir); rook != nil {
			k.Moves = 0
			rook.Moves = 0
		}
	}
	return nil
}

// outermostRook returns the same-color rook closest to the board edge on
// the king's row in direction dir.
func outermostRook(b *Board, k *Piece, dir int) *Piece {
	col := 0
	if dir > 0 {
		col = b.dims.Cols - 1
	}
	for ; col != k.Square.Col; col -= dir {
		if p := b.At(Sq(k.Square.Row, col)); p.Is(k.Color) && p.Type == Rook {
			return p
		}
	}
	return nil
}

// Layout returns the layout string of the current position.
func (gs *GameState) Layout() string {
	var sb strings.Builder
	sb.WriteString(gs.board.Placement())
	if gs.turn == Black {
		sb.WriteString(" b ")
	} else {
		sb.WriteString(" w ")
	}
	sb.WriteString(gs.castlingField())
	sb.WriteByte(' ')
	if gs.enPassant == NoSquare {
		sb.WriteByte('-')
	} else {
		sb.WriteString(gs.board.dims.SquareName(gs.enPassant))
	}
	return sb.String()
}

// castlingField returns the castling rights in layout form.
func (gs *GameState) castlingField() string {
	var sb strings.Builder
	for _, c := range []Color{White, Black} {
		k := gs.board.King(c)
		if k == nil || k.Moves != 0 {
			continue
		}
		for _, dir := range []int{1, -1} {
			rook := outermostRook(gs.board, k, dir)
			if rook == nil || rook.Moves != 0 {
				continue
			}
			ch := byte('K')
			if dir < 0 {
				ch = 'Q'
			}
			if c == Black {
				ch += 'a' - 'A'
			}
			sb.WriteByte(ch)
		}
	}
	if sb.Len() == 0 {
		return "-"
	}
	return sb.String()
}
