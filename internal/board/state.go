package board

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Status is the terminal classification of a game state.
type Status int

const (
	Ongoing Status = iota
	PlayerOneLost
	PlayerTwoLost
	Stalemate
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case PlayerOneLost:
		return "White lost"
	case PlayerTwoLost:
		return "Black lost"
	case Stalemate:
		return "Stalemate"
	default:
		return "Ongoing"
	}
}

// IsTerminal returns true for checkmate and stalemate.
func (s Status) IsTerminal() bool {
	return s != Ongoing
}

// Loser returns the color that was checkmated, NoColor otherwise.
func (s Status) Loser() Color {
	switch s {
	case PlayerOneLost:
		return White
	case PlayerTwoLost:
		return Black
	default:
		return NoColor
	}
}

// Winner returns the color that delivered checkmate, NoColor otherwise.
func (s Status) Winner() Color {
	return s.Loser().Other()
}

// CommitFunc is called after a non-simulated move has been applied.
type CommitFunc func(gs *GameState, e HistoryEntry)

// GameState owns the board, whose turn it is and the move history.
// It is mutated only through Apply and Undo and is not safe for
// concurrent use; clone it to search in parallel.
type GameState struct {
	board     *Board
	turn      Color
	enPassant Square
	hash      uint64
	history   []HistoryEntry

	subscribers map[int]CommitFunc
	nextSubID   int
}

// newGameState wraps a populated board.
func newGameState(b *Board, turn Color, enPassant Square) *GameState {
	gs := &GameState{
		board:     b,
		turn:      turn,
		enPassant: enPassant,
	}
	gs.hash = gs.computeHash()
	return gs
}

// Board returns the underlying board. Callers must not modify it.
func (gs *GameState) Board() *Board {
	return gs.board
}

// Dims returns the board dimensions.
func (gs *GameState) Dims() Dims {
	return gs.board.dims
}

// Turn returns the side to move.
func (gs *GameState) Turn() Color {
	return gs.turn
}

// EnPassant returns the en passant target square, NoSquare if none.
func (gs *GameState) EnPassant() Square {
	return gs.enPassant
}

// Hash returns the zobrist hash of the board.
func (gs *GameState) Hash() uint64 {
	return gs.hash
}

// History returns the applied moves, oldest first. The slice must not be modified.
func (gs *GameState) History() []HistoryEntry {
	return gs.history
}

// Ply returns the number of applied moves.
func (gs *GameState) Ply() int {
	return len(gs.history)
}

// GetPiece returns the occupant of (row, col): a piece or NoPiece.
func (gs *GameState) GetPiece(row, col int) (*Piece, error) {
	return gs.board.Get(Sq(row, col))
}

// IsValidPiece returns true if (row, col) is on the board and holds a piece.
func (gs *GameState) IsValidPiece(row, col int) bool {
	return gs.pieceOn(Sq(row, col)) != nil
}

// InCheck returns true if the king of color c is attacked.
func (gs *GameState) InCheck(c Color) bool {
	return gs.board.InCheck(c)
}

// Key returns the canonical placement key. Two states with the same
// pieces on the same squares have the same key, however they were reached.
func (gs *GameState) Key() string {
	return gs.board.Placement()
}

// Status classifies the position for the side to move. It has no side
// effects.
func (gs *GameState) Status() Status {
	if gs.HasLegalMoves(gs.turn) {
		return Ongoing
	}
	if gs.board.InCheck(gs.turn) {
		if gs.turn == White {
			return PlayerOneLost
		}
		return PlayerTwoLost
	}
	return Stalemate
}

// Subscribe registers fn to be called after every non-simulated Apply.
// The returned function removes the subscription.
func (gs *GameState) Subscribe(fn CommitFunc) func() {
	if gs.subscribers == nil {
		gs.subscribers = make(map[int]CommitFunc)
	}
	id := gs.nextSubID
	gs.nextSubID++
	gs.subscribers[id] = fn
	return func() {
		delete(gs.subscribers, id)
	}
}

// Apply plays m and appends it to the history. The turn always passes to
// the other side. Subscribers are notified only when simulate is false,
// which marks the move as part of the real game line rather than a
// search probe. Legality is not checked; see IsLegal.
func (gs *GameState) Apply(m Move, simulate bool) error {
	b := gs.board
	if !b.dims.Contains(m.From) || !b.dims.Contains(m.To) {
		return errors.Wrapf(ErrOutOfRange, "move %v on %dx%d board", m, b.dims.Rows, b.dims.Cols)
	}
	p := b.At(m.From)
	if p.IsEmpty() {
		return errors.Wrapf(ErrNoPiece, "move %v", m)
	}

	e := HistoryEntry{
		Move:          m,
		Piece:         p,
		Captured:      NoPiece,
		CaptureSquare: NoSquare,
		RookMove:      NoMove,
		EnPassant:     gs.enPassant,
		Hash:          gs.hash,
		Simulated:     simulate,
	}

	h := gs.hash ^ enPassantKey(gs.enPassant)
	h ^= b.pieceKey(p)

	// Captures
	capSq, captured := gs.captureSquare(p, m.To)
	if !captured.IsEmpty() {
		e.Captured = captured
		e.CaptureSquare = capSq
		h ^= b.pieceKey(captured)
		b.clear(capSq)
	}

	// Move the piece
	b.relocate(m.From, m.To)
	p.Moves++

	// Castling: the rook lands on the square the king crossed
	if p.Type == King && m.From.Row == m.To.Row && abs(m.To.Col-m.From.Col) == 2 {
		dir := 1
		if m.To.Col < m.From.Col {
			dir = -1
		}
		if rook := gs.castlingRookFrom(m.To, dir); rook != nil {
			e.RookMove = Move{From: rook.Square, To: m.From.Offset(0, dir)}
			h ^= b.pieceKey(rook)
			b.relocate(e.RookMove.From, e.RookMove.To)
			rook.Moves++
			h ^= b.pieceKey(rook)
		}
	}

	// Promotion
	if p.Type == Pawn && m.To.Row == b.dims.PromotionRow(p.Color) {
		p.Type = Queen
		e.Promoted = true
	}
	h ^= b.pieceKey(p)

	// En passant target for a double step
	gs.enPassant = NoSquare
	if p.Type == Pawn && m.From.Col == m.To.Col && abs(m.To.Row-m.From.Row) == 2 {
		gs.enPassant = Sq((m.From.Row+m.To.Row)/2, m.From.Col)
		h ^= enPassantKey(gs.enPassant)
	}

	gs.hash = h
	gs.turn = gs.turn.Other()
	gs.history = append(gs.history, e)

	if !simulate {
		for id := 0; id < gs.nextSubID; id++ {
			if fn, ok := gs.subscribers[id]; ok {
				fn(gs, e)
			}
		}
	}
	return nil
}

// castlingRookFrom finds the rook beyond the king's destination.
func (gs *GameState) castlingRookFrom(kingTo Square, dir int) *Piece {
	b := gs.board
	cur := kingTo.Offset(0, dir)
	for b.dims.Contains(cur) {
		p := b.At(cur)
		if !p.IsEmpty() {
			if p.Type == Rook {
				return p
			}
			return nil
		}
		cur = cur.Offset(0, dir)
	}
	return nil
}

// Undo reverses the most recent move exactly. With an empty history it
// returns ErrEmptyHistory and leaves the state untouched.
func (gs *GameState) Undo() error {
	n := len(gs.history)
	if n == 0 {
		return ErrEmptyHistory
	}
	e := gs.history[n-1]
	gs.history[n-1] = HistoryEntry{}
	gs.history = gs.history[:n-1]

	b := gs.board
	p := e.Piece
	if e.Promoted {
		p.Type = Pawn
	}
	b.clear(e.Move.To)
	b.place(p, e.Move.From)
	p.Moves--

	if e.RookMove != NoMove {
		rook := b.At(e.RookMove.To)
		b.clear(e.RookMove.To)
		b.place(rook, e.RookMove.From)
		rook.Moves--
	}

	if !e.Captured.IsEmpty() {
		b.place(e.Captured, e.CaptureSquare)
	}

	gs.enPassant = e.EnPassant
	gs.hash = e.Hash
	gs.turn = gs.turn.Other()
	return nil
}

// Clone returns a deep copy sharing no mutable state with gs, history
// included. Subscribers are not copied.
func (gs *GameState) Clone() *GameState {
	nb := gs.board.Clone()
	remap := make(map[*Piece]*Piece, len(gs.board.squares))
	for i, p := range gs.board.squares {
		if !p.IsEmpty() {
			remap[p] = nb.squares[i]
		}
	}
	lookup := func(p *Piece) *Piece {
		if p.IsEmpty() {
			return NoPiece
		}
		if np, ok := remap[p]; ok {
			return np
		}
		cp := *p
		remap[p] = &cp
		return &cp
	}

	history := make([]HistoryEntry, len(gs.history))
	for i, e := range gs.history {
		e.Piece = lookup(e.Piece)
		e.Captured = lookup(e.Captured)
		history[i] = e
	}

	return &GameState{
		board:     nb,
		turn:      gs.turn,
		enPassant: gs.enPassant,
		hash:      gs.hash,
		history:   history,
	}
}

// String returns a visual representation of the state.
func (gs *GameState) String() string {
	var sb strings.Builder
	sb.WriteString(gs.board.String())
	fmt.Fprintf(&sb, "\nSide to move: %s\n", gs.turn)
	fmt.Fprintf(&sb, "En passant: %s\n", gs.board.dims.SquareName(gs.enPassant))
	fmt.Fprintf(&sb, "Key: %s\n", gs.Key())
	fmt.Fprintf(&sb, "Hash: %016x\n", gs.hash)
	return sb.String()
}
