package board

// Zobrist keys for position hashing. Keys are generated per square index
// from a PRNG with a fixed seed so that two game states on boards of the
// same size hash identically. The hash covers placement, castling status
// (unmoved kings and rooks) and the en passant file, but not the side to
// move: evaluations are functions of the board alone.
var (
	zobristPiece     [2][6][MaxDimension * MaxDimension]uint64
	zobristUnmoved   [MaxDimension * MaxDimension]uint64
	zobristEnPassant [MaxDimension]uint64
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for i := range zobristPiece[c][pt] {
				zobristPiece[c][pt][i] = rng.next()
			}
		}
	}
	for i := range zobristUnmoved {
		zobristUnmoved[i] = rng.next()
	}
	for i := range zobristEnPassant {
		zobristEnPassant[i] = rng.next()
	}
}

// pieceKey returns the hash contribution of p standing on its square.
func (b *Board) pieceKey(p *Piece) uint64 {
	idx := b.dims.Index(p.Square)
	key := zobristPiece[p.Color][p.Type][idx]
	if p.Moves == 0 && (p.Type == King || p.Type == Rook) {
		key ^= zobristUnmoved[idx]
	}
	return key
}

// enPassantKey returns the hash contribution of an en passant target.
func enPassantKey(sq Square) uint64 {
	if sq == NoSquare {
		return 0
	}
	return zobristEnPassant[sq.Col]
}

// computeHash recomputes the hash from scratch.
func (gs *GameState) computeHash() uint64 {
	var h uint64
	for _, p := range gs.board.Pieces() {
		h ^= gs.board.pieceKey(p)
	}
	return h ^ enPassantKey(gs.enPassant)
}
