package board

import (
	"sort"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// perft counts the number of leaf nodes at the given depth.
func perft(gs *GameState, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := gs.LegalMoves(gs.Turn())
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		if err := gs.Apply(m, true); err != nil {
			panic(err)
		}
		nodes += perft(gs, depth-1)
		if err := gs.Undo(); err != nil {
			panic(err)
		}
	}
	return nodes
}

// TestPerftStartingPosition tests move generation from the starting position.
func TestPerftStartingPosition(t *testing.T) {
	gs := NewStandardGame()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(gs, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftKiwipete exercises castling, en passant and pins. No promotion
// is reachable within three plies, so queen-only promotion does not skew
// the counts.
func TestPerftKiwipete(t *testing.T) {
	gs, err := ParseLayout("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(gs, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition3 tests en passant edge cases.
func TestPerftPosition3(t *testing.T) {
	gs, err := ParseLayout("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(gs, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftEnPassantPin: the black pawn on e4 may not take d3 en passant
// because that would expose the king on a4 to the rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	gs, err := ParseLayout("8/8/8/8/k2Pp2R/8/8/4K3 b - d3")
	if err != nil {
		t.Fatalf("Failed to parse layout: %v", err)
	}

	ep, _ := gs.Dims().ParseMove("e4d3")
	if gs.IsLegal(ep) {
		t.Errorf("En passant move %s should be illegal (horizontal pin)", gs.Dims().MoveName(ep))
	}

	// Ka3, Ka5, Kb3, Kb4, Kb5, e3
	if got := perft(gs, 1); got != 6 {
		t.Errorf("perft(1) = %d, want 6", got)
	}
	if got := perft(gs, 2); got != 94 {
		t.Errorf("perft(2) = %d, want 94", got)
	}
}

// TestPerftMini checks the 6x4 starting position from both sides.
func TestPerftMini(t *testing.T) {
	// Four pawns with single and double steps plus the knight's jump.
	for _, l := range []string{"rqkn/pppp/4/4/PPPP/RQKN w - -", "rqkn/pppp/4/4/PPPP/RQKN b - -"} {
		gs, err := ParseLayout(l)
		if err != nil {
			t.Fatalf("Failed to parse layout: %v", err)
		}
		if got := perft(gs, 1); got != 9 {
			t.Errorf("%s: perft(1) = %d, want 9", l, got)
		}
	}
	t.Log("perft(3) =", perft(NewMiniGame(), 3))
}

// TestMovesMatchReference compares the generated move set against
// notnil/chess on standard positions without promotions.
func TestMovesMatchReference(t *testing.T) {
	fens := []string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6 0 3",
		"r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
		"4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1",
	}

	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			opt, err := chess.FEN(fen)
			require.NoError(t, err)
			ref := chess.NewGame(opt)

			var want []string
			for _, m := range ref.ValidMoves() {
				want = append(want, m.String())
			}

			gs, err := ParseLayout(fen)
			require.NoError(t, err)
			var got []string
			for _, m := range gs.LegalMoves(gs.Turn()) {
				got = append(got, gs.Dims().MoveName(m))
			}

			sort.Strings(want)
			sort.Strings(got)
			assert.Equal(t, want, got)
		})
	}
}
