// Package board implements a rows x cols chess board, its move generator and
// the undo-capable game state the search agents operate on.
package board

import (
	"fmt"

	"github.com/pkg/errors"
)

// Board size limits. Files are named with a single letter.
const (
	MinDimension = 3
	MaxDimension = 26
)

// Square is a (row, column) coordinate. Row 0 is Black's back rank and
// column 0 is the a-file.
type Square struct {
	Row int
	Col int
}

// NoSquare marks the absence of a square (no en passant target, empty marker).
var NoSquare = Square{Row: -1, Col: -1}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

// IsValid returns true unless sq is NoSquare.
func (sq Square) IsValid() bool {
	return sq != NoSquare
}

// Offset returns the square dr rows and dc columns away.
func (sq Square) Offset(dr, dc int) Square {
	return Square{Row: sq.Row + dr, Col: sq.Col + dc}
}

// String returns the coordinate form used in stored keys, e.g. "(6,4)".
func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return fmt.Sprintf("(%d,%d)", sq.Row, sq.Col)
}

// Dims is the configured board size.
type Dims struct {
	Rows int
	Cols int
}

// Validate checks that the dimensions are within the supported range.
func (d Dims) Validate() error {
	if d.Rows < MinDimension || d.Rows > MaxDimension || d.Cols < MinDimension || d.Cols > MaxDimension {
		return errors.Wrapf(ErrOutOfRange, "board dimensions %dx%d", d.Rows, d.Cols)
	}
	return nil
}

// Contains returns true if sq lies on the board.
func (d Dims) Contains(sq Square) bool {
	return sq.Row >= 0 && sq.Row < d.Rows && sq.Col >= 0 && sq.Col < d.Cols
}

// Index returns the row-major index of sq.
func (d Dims) Index(sq Square) int {
	return sq.Row*d.Cols + sq.Col
}

// Squares returns the number of squares on the board.
func (d Dims) Squares() int {
	return d.Rows * d.Cols
}

// Mirror returns sq reflected across the middle row.
func (d Dims) Mirror(sq Square) Square {
	return Square{Row: d.Rows - 1 - sq.Row, Col: sq.Col}
}

// HomeRow returns the back rank of color c.
func (d Dims) HomeRow(c Color) int {
	if c == White {
		return d.Rows - 1
	}
	return 0
}

// PawnRow returns the row on which the pawns of color c start.
func (d Dims) PawnRow(c Color) int {
	if c == White {
		return d.Rows - 2
	}
	return 1
}

// PromotionRow returns the row on which pawns of color c promote.
func (d Dims) PromotionRow(c Color) int {
	return d.HomeRow(c.Other())
}

// SquareName returns the algebraic name of sq, e.g. "e2" on an 8x8 board.
func (d Dims) SquareName(sq Square) string {
	if !d.Contains(sq) {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+sq.Col, d.Rows-sq.Row)
}

// ParseSquare parses an algebraic square name.
func (d Dims) ParseSquare(s string) (Square, error) {
	if len(s) < 2 {
		return NoSquare, errors.Errorf("invalid square: %q", s)
	}
	col := int(s[0]) - 'a'
	rank := 0
	for i := 1; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return NoSquare, errors.Errorf("invalid square: %q", s)
		}
		rank = rank*10 + int(s[i]-'0')
		if rank > MaxDimension {
			return NoSquare, errors.Wrapf(ErrOutOfRange, "square %q", s)
		}
	}
	sq := Square{Row: d.Rows - rank, Col: col}
	if !d.Contains(sq) {
		return NoSquare, errors.Wrapf(ErrOutOfRange, "square %q", s)
	}
	return sq, nil
}

// MoveName returns the coordinate notation of m, e.g. "e2e4".
func (d Dims) MoveName(m Move) string {
	if m == NoMove {
		return "0000"
	}
	return d.SquareName(m.From) + d.SquareName(m.To)
}

// ParseMove parses coordinate notation. A trailing promotion letter is
// accepted and ignored since pawns always promote to a queen.
func (d Dims) ParseMove(s string) (Move, error) {
	if len(s) > 0 {
		switch s[len(s)-1] {
		case 'q', 'r', 'b', 'n':
			s = s[:len(s)-1]
		}
	}
	// The from square ends at the first letter after the leading file letter.
	split := -1
	for i := 1; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			split = i
			break
		}
	}
	if split < 0 {
		return NoMove, errors.Errorf("invalid move string: %q", s)
	}
	from, err := d.ParseSquare(s[:split])
	if err != nil {
		return NoMove, err
	}
	to, err := d.ParseSquare(s[split:])
	if err != nil {
		return NoMove, err
	}
	return Move{From: from, To: to}, nil
}
