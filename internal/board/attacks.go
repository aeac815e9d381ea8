package board

// Direction is a (row, col) step.
type Direction struct {
	DR, DC int
}

var (
	knightSteps = []Direction{
		{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2},
		{1, -2}, {1, 2}, {2, -1}, {2, 1},
	}
	kingSteps = []Direction{
		{-1, -1}, {-1, 0}, {-1, 1}, {0, -1},
		{0, 1}, {1, -1}, {1, 0}, {1, 1},
	}
	rookDirs   = []Direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs = []Direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs  = append(append([]Direction{}, rookDirs...), bishopDirs...)
)

// IsSquareAttacked returns true if any piece of color by attacks sq.
// Pawns attack diagonally forward whether or not sq is occupied.
func (b *Board) IsSquareAttacked(sq Square, by Color) bool {
	// Pawns: an attacking pawn stands one row behind sq from its own view.
	dr := -by.forward()
	for _, dc := range []int{-1, 1} {
		from := sq.Offset(dr, dc)
		if b.dims.Contains(from) {
			if p := b.At(from); p.Is(by) && p.Type == Pawn {
				return true
			}
		}
	}

	for _, d := range knightSteps {
		from := sq.Offset(d.DR, d.DC)
		if b.dims.Contains(from) {
			if p := b.At(from); p.Is(by) && p.Type == Knight {
				return true
			}
		}
	}

	for _, d := range kingSteps {
		from := sq.Offset(d.DR, d.DC)
		if b.dims.Contains(from) {
			if p := b.At(from); p.Is(by) && p.Type == King {
				return true
			}
		}
	}

	if b.slidingAttacker(sq, by, rookDirs, Rook) || b.slidingAttacker(sq, by, bishopDirs, Bishop) {
		return true
	}
	return false
}

// slidingAttacker looks along dirs for the first piece and reports whether
// it is a slider of color by moving like pt (or a queen).
func (b *Board) slidingAttacker(sq Square, by Color, dirs []Direction, pt PieceType) bool {
	for _, d := range dirs {
		cur := sq.Offset(d.DR, d.DC)
		for b.dims.Contains(cur) {
			p := b.At(cur)
			if !p.IsEmpty() {
				if p.Is(by) && (p.Type == pt || p.Type == Queen) {
					return true
				}
				break
			}
			cur = cur.Offset(d.DR, d.DC)
		}
	}
	return false
}

// InCheck returns true if the king of color c is attacked.
func (b *Board) InCheck(c Color) bool {
	k := b.King(c)
	if k == nil {
		return false
	}
	return b.IsSquareAttacked(k.Square, c.Other())
}
