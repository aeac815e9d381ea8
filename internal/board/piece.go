package board

// Color represents the owner of a piece or the side to move.
type Color uint8

const (
	White Color = iota // player one, moves first from the high rows
	Black              // player two
	NoColor
)

// Other returns the opposite color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "NoColor"
	}
}

// forward returns the row delta a pawn of this color advances by.
func (c Color) forward() int {
	if c == White {
		return -1
	}
	return 1
}

// PieceType represents the kind of a chess piece.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

// String returns the piece type name.
func (pt PieceType) String() string {
	switch pt {
	case Pawn:
		return "Pawn"
	case Knight:
		return "Knight"
	case Bishop:
		return "Bishop"
	case Rook:
		return "Rook"
	case Queen:
		return "Queen"
	case King:
		return "King"
	default:
		return "None"
	}
}

// Char returns the layout character for the piece type (lowercase).
func (pt PieceType) Char() byte {
	chars := []byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}
	if pt > NoPieceType {
		return ' '
	}
	return chars[pt]
}

// Piece is a piece on the board. Pieces are shared by pointer: the board
// square, the history log and the search all refer to the same value, and
// its Square is updated in place as it moves.
type Piece struct {
	Type   PieceType
	Color  Color
	Square Square
	// Moves counts the applied moves this piece has made. Zero means the
	// piece is still on its starting square (pawn double step, castling).
	Moves int
}

// NoPiece is the empty-square marker. It is never moved and belongs to
// neither player.
var NoPiece = &Piece{Type: NoPieceType, Color: NoColor, Square: NoSquare}

// NewPiece creates a piece of the given type and color on sq.
func NewPiece(pt PieceType, c Color, sq Square) *Piece {
	return &Piece{Type: pt, Color: c, Square: sq}
}

// IsEmpty returns true for the empty-square marker.
func (p *Piece) IsEmpty() bool {
	return p == nil || p.Type == NoPieceType
}

// Is returns true if the piece is owned by c. The empty marker is owned by no one.
func (p *Piece) Is(c Color) bool {
	return !p.IsEmpty() && p.Color == c
}

// Owner returns the color owning the piece, NoColor for the empty marker.
func (p *Piece) Owner() Color {
	if p.IsEmpty() {
		return NoColor
	}
	return p.Color
}

// Char returns the layout character: uppercase for White, lowercase for Black.
func (p *Piece) Char() byte {
	if p.IsEmpty() {
		return '.'
	}
	c := p.Type.Char()
	if p.Color == White {
		c -= 'a' - 'A'
	}
	return c
}

// String returns the layout character of the piece.
func (p *Piece) String() string {
	return string(p.Char())
}

// pieceFromChar converts a layout character to a piece type and color.
func pieceFromChar(c byte) (PieceType, Color, bool) {
	switch c {
	case 'P':
		return Pawn, White, true
	case 'N':
		return Knight, White, true
	case 'B':
		return Bishop, White, true
	case 'R':
		return Rook, White, true
	case 'Q':
		return Queen, White, true
	case 'K':
		return King, White, true
	case 'p':
		return Pawn, Black, true
	case 'n':
		return Knight, Black, true
	case 'b':
		return Bishop, Black, true
	case 'r':
		return Rook, Black, true
	case 'q':
		return Queen, Black, true
	case 'k':
		return King, Black, true
	default:
		return NoPieceType, NoColor, false
	}
}
