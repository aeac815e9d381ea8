package board

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Board is a fixed-size grid of squares, each holding either a piece or
// the NoPiece marker.
type Board struct {
	dims    Dims
	squares []*Piece
	kings   [2]*Piece
}

// NewBoard creates an empty board.
func NewBoard(dims Dims) *Board {
	b := &Board{
		dims:    dims,
		squares: make([]*Piece, dims.Squares()),
	}
	for i := range b.squares {
		b.squares[i] = NoPiece
	}
	return b
}

// Dims returns the board dimensions.
func (b *Board) Dims() Dims {
	return b.dims
}

// At returns the occupant of sq. sq must be on the board.
func (b *Board) At(sq Square) *Piece {
	return b.squares[b.dims.Index(sq)]
}

// Get returns the occupant of sq or ErrOutOfRange.
func (b *Board) Get(sq Square) (*Piece, error) {
	if !b.dims.Contains(sq) {
		return nil, errors.Wrapf(ErrOutOfRange, "square %v on %dx%d board", sq, b.dims.Rows, b.dims.Cols)
	}
	return b.At(sq), nil
}

// IsEmpty returns true if sq holds no piece. Off-board squares are not empty.
func (b *Board) IsEmpty(sq Square) bool {
	return b.dims.Contains(sq) && b.At(sq).IsEmpty()
}

// place puts p on sq and updates its square.
func (b *Board) place(p *Piece, sq Square) {
	p.Square = sq
	b.squares[b.dims.Index(sq)] = p
	if p.Type == King {
		b.kings[p.Color] = p
	}
}

// clear empties sq.
func (b *Board) clear(sq Square) {
	b.squares[b.dims.Index(sq)] = NoPiece
}

// relocate moves the piece on from to to, discarding any occupant of to.
func (b *Board) relocate(from, to Square) *Piece {
	p := b.At(from)
	b.clear(from)
	b.place(p, to)
	return p
}

// King returns the king of color c, or nil if the board has none.
func (b *Board) King(c Color) *Piece {
	if c >= NoColor {
		return nil
	}
	k := b.kings[c]
	if k == nil || !b.dims.Contains(k.Square) || b.At(k.Square) != k {
		return nil
	}
	return k
}

// Pieces returns all pieces in row-major order.
func (b *Board) Pieces() []*Piece {
	pieces := make([]*Piece, 0, len(b.squares))
	for _, p := range b.squares {
		if !p.IsEmpty() {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// PiecesOf returns the pieces of color c in row-major order.
func (b *Board) PiecesOf(c Color) []*Piece {
	var pieces []*Piece
	for _, p := range b.squares {
		if p.Is(c) {
			pieces = append(pieces, p)
		}
	}
	return pieces
}

// Clone creates a deep copy of the board. Pieces are copied, so the clone
// shares no mutable state with b.
func (b *Board) Clone() *Board {
	nb := NewBoard(b.dims)
	for i, p := range b.squares {
		if p.IsEmpty() {
			continue
		}
		cp := *p
		nb.squares[i] = &cp
		if cp.Type == King {
			nb.kings[cp.Color] = &cp
		}
	}
	return nb
}

// Placement returns the row-by-row placement string, e.g.
// "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR".
func (b *Board) Placement() string {
	var sb strings.Builder
	for row := 0; row < b.dims.Rows; row++ {
		if row > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for col := 0; col < b.dims.Cols; col++ {
			p := b.At(Sq(row, col))
			if p.IsEmpty() {
				empty++
				continue
			}
			if empty > 0 {
				fmt.Fprintf(&sb, "%d", empty)
				empty = 0
			}
			sb.WriteByte(p.Char())
		}
		if empty > 0 {
			fmt.Fprintf(&sb, "%d", empty)
		}
	}
	return sb.String()
}

// String returns a visual representation of the board.
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for row := 0; row < b.dims.Rows; row++ {
		fmt.Fprintf(&sb, "%2d  ", b.dims.Rows-row)
		for col := 0; col < b.dims.Cols; col++ {
			sb.WriteByte(b.At(Sq(row, col)).Char())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n    ")
	for col := 0; col < b.dims.Cols; col++ {
		sb.WriteByte(byte('a' + col))
		sb.WriteByte(' ')
	}
	sb.WriteByte('\n')
	return sb.String()
}
