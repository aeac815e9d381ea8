package board

// LegalMoves returns every legal move of color c, whatever the side to
// move. Origins are visited in row-major order; for each piece its
// non-capturing moves come before its captures.
func (gs *GameState) LegalMoves(c Color) []Move {
	var moves []Move
	for _, p := range gs.board.PiecesOf(c) {
		moves = gs.appendLegal(moves, p, gs.quietTargets(p))
		moves = gs.appendLegal(moves, p, gs.captureTargets(p))
	}
	return moves
}

// HasLegalMoves returns true if color c has at least one legal move.
func (gs *GameState) HasLegalMoves(c Color) bool {
	for _, p := range gs.board.PiecesOf(c) {
		for _, to := range gs.captureTargets(p) {
			if gs.leavesKingSafe(p, to) {
				return true
			}
		}
		for _, to := range gs.quietTargets(p) {
			if gs.leavesKingSafe(p, to) {
				return true
			}
		}
	}
	return false
}

// ValidMoves returns the legal moves of the piece on sq, non-captures
// first. An empty or off-board square yields nil.
func (gs *GameState) ValidMoves(sq Square) []Move {
	p := gs.pieceOn(sq)
	if p == nil {
		return nil
	}
	moves := gs.appendLegal(nil, p, gs.quietTargets(p))
	return gs.appendLegal(moves, p, gs.captureTargets(p))
}

// PieceMoves returns the legal non-capturing moves of the piece on sq.
func (gs *GameState) PieceMoves(sq Square) []Move {
	p := gs.pieceOn(sq)
	if p == nil {
		return nil
	}
	return gs.appendLegal(nil, p, gs.quietTargets(p))
}

// PieceTakes returns the legal captures of the piece on sq.
func (gs *GameState) PieceTakes(sq Square) []Move {
	p := gs.pieceOn(sq)
	if p == nil {
		return nil
	}
	return gs.appendLegal(nil, p, gs.captureTargets(p))
}

// IsLegal returns true if m is a legal move for the piece on m.From.
func (gs *GameState) IsLegal(m Move) bool {
	for _, legal := range gs.ValidMoves(m.From) {
		if legal == m {
			return true
		}
	}
	return false
}

// CapturedBy returns the piece m would capture, or NoPiece.
func (gs *GameState) CapturedBy(m Move) *Piece {
	p := gs.pieceOn(m.From)
	if p == nil || !gs.board.dims.Contains(m.To) {
		return NoPiece
	}
	_, captured := gs.captureSquare(p, m.To)
	return captured
}

func (gs *GameState) pieceOn(sq Square) *Piece {
	if !gs.board.dims.Contains(sq) {
		return nil
	}
	p := gs.board.At(sq)
	if p.IsEmpty() {
		return nil
	}
	return p
}

func (gs *GameState) appendLegal(moves []Move, p *Piece, targets []Square) []Move {
	from := p.Square
	for _, to := range targets {
		if gs.leavesKingSafe(p, to) {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

// quietTargets returns pseudo-legal non-capturing destinations of p.
func (gs *GameState) quietTargets(p *Piece) []Square {
	b := gs.board
	from := p.Square
	var targets []Square

	switch p.Type {
	case Pawn:
		f := p.Color.forward()
		one := from.Offset(f, 0)
		if b.IsEmpty(one) {
			targets = append(targets, one)
			two := one.Offset(f, 0)
			if p.Moves == 0 && b.IsEmpty(two) {
				targets = append(targets, two)
			}
		}
	case Knight:
		targets = b.stepTargets(from, knightSteps, targets, false, p.Color)
	case King:
		targets = b.stepTargets(from, kingSteps, targets, false, p.Color)
		targets = gs.castlingTargets(p, targets)
	case Bishop:
		targets = b.slideTargets(from, bishopDirs, targets, false, p.Color)
	case Rook:
		targets = b.slideTargets(from, rookDirs, targets, false, p.Color)
	case Queen:
		targets = b.slideTargets(from, queenDirs, targets, false, p.Color)
	}
	return targets
}

// captureTargets returns pseudo-legal capture destinations of p.
func (gs *GameState) captureTargets(p *Piece) []Square {
	b := gs.board
	from := p.Square
	var targets []Square

	switch p.Type {
	case Pawn:
		f := p.Color.forward()
		for _, dc := range []int{-1, 1} {
			to := from.Offset(f, dc)
			if !b.dims.Contains(to) {
				continue
			}
			if b.At(to).Is(p.Color.Other()) {
				targets = append(targets, to)
			} else if to == gs.enPassant {
				if victim := b.At(Sq(from.Row, to.Col)); victim.Is(p.Color.Other()) && victim.Type == Pawn {
					targets = append(targets, to)
				}
			}
		}
	case Knight:
		targets = b.stepTargets(from, knightSteps, targets, true, p.Color)
	case King:
		targets = b.stepTargets(from, kingSteps, targets, true, p.Color)
	case Bishop:
		targets = b.slideTargets(from, bishopDirs, targets, true, p.Color)
	case Rook:
		targets = b.slideTargets(from, rookDirs, targets, true, p.Color)
	case Queen:
		targets = b.slideTargets(from, queenDirs, targets, true, p.Color)
	}
	return targets
}

// stepTargets adds single-step destinations: empty squares when captures
// is false, enemy-occupied squares when it is true.
func (b *Board) stepTargets(from Square, steps []Direction, targets []Square, captures bool, us Color) []Square {
	for _, d := range steps {
		to := from.Offset(d.DR, d.DC)
		if !b.dims.Contains(to) {
			continue
		}
		occ := b.At(to)
		if captures && occ.Is(us.Other()) || !captures && occ.IsEmpty() {
			targets = append(targets, to)
		}
	}
	return targets
}

// slideTargets adds sliding destinations along dirs up to the first
// occupied square, which is included only when it holds an enemy piece
// and captures is true.
func (b *Board) slideTargets(from Square, dirs []Direction, targets []Square, captures bool, us Color) []Square {
	for _, d := range dirs {
		to := from.Offset(d.DR, d.DC)
		for b.dims.Contains(to) {
			occ := b.At(to)
			if !occ.IsEmpty() {
				if captures && occ.Is(us.Other()) {
					targets = append(targets, to)
				}
				break
			}
			if !captures {
				targets = append(targets, to)
			}
			to = to.Offset(d.DR, d.DC)
		}
	}
	return targets
}

// castlingTargets adds the two-square king moves. The king and the rook
// must be unmoved and at least three columns apart with nothing between
// them, and the king may not be in check or cross an attacked square.
func (gs *GameState) castlingTargets(k *Piece, targets []Square) []Square {
	b := gs.board
	if k.Moves != 0 {
		return targets
	}
	them := k.Color.Other()
	if b.IsSquareAttacked(k.Square, them) {
		return targets
	}
	for _, dir := range []int{-1, 1} {
		rook := gs.castlingRook(k, dir)
		if rook == nil {
			continue
		}
		cross := k.Square.Offset(0, dir)
		dest := k.Square.Offset(0, 2*dir)
		if b.IsSquareAttacked(cross, them) || b.IsSquareAttacked(dest, them) {
			continue
		}
		targets = append(targets, dest)
	}
	return targets
}

// castlingRook returns the unmoved rook k may castle with in direction dir.
func (gs *GameState) castlingRook(k *Piece, dir int) *Piece {
	b := gs.board
	cur := k.Square.Offset(0, dir)
	for b.dims.Contains(cur) {
		p := b.At(cur)
		if !p.IsEmpty() {
			if p.Is(k.Color) && p.Type == Rook && p.Moves == 0 && abs(cur.Col-k.Square.Col) >= 3 {
				return p
			}
			return nil
		}
		cur = cur.Offset(0, dir)
	}
	return nil
}

// captureSquare returns where the piece captured by p moving to to stands,
// handling en passant.
func (gs *GameState) captureSquare(p *Piece, to Square) (Square, *Piece) {
	b := gs.board
	if occ := b.At(to); !occ.IsEmpty() {
		return to, occ
	}
	if p.Type == Pawn && to == gs.enPassant && to.Col != p.Square.Col {
		sq := Sq(p.Square.Row, to.Col)
		if victim := b.At(sq); victim.Is(p.Color.Other()) && victim.Type == Pawn {
			return sq, victim
		}
	}
	return NoSquare, NoPiece
}

// leavesKingSafe plays p to to on the bare board, checks whether p's king
// is attacked and puts everything back.
func (gs *GameState) leavesKingSafe(p *Piece, to Square) bool {
	b := gs.board
	from := p.Square
	capSq, captured := gs.captureSquare(p, to)
	if !captured.IsEmpty() {
		b.clear(capSq)
	}
	b.relocate(from, to)

	safe := !b.InCheck(p.Color)

	b.place(p, from)
	b.clear(to)
	if !captured.IsEmpty() {
		b.place(captured, capSq)
	}
	return safe
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
