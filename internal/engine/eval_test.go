package engine

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

// testLayouts are positions shared by the engine tests.
var testLayouts = []string{
	string(board.StandardLayout),
	string(board.MiniLayout),
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
	"rqkn/p1pp/1p2/2P1/PP1P/R1KN w - -",
}

func mustLayout(t *testing.T, l string) *board.GameState {
	t.Helper()
	gs, err := board.ParseLayout(l)
	require.NoError(t, err, l)
	return gs
}

// mirrored swaps the colors and reflects the rows of gs's placement.
func mirrored(t *testing.T, gs *board.GameState) *board.GameState {
	t.Helper()
	rows := strings.Split(gs.Key(), "/")
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	swapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z':
			return r - 'A' + 'a'
		}
		return r
	}, strings.Join(rows, "/"))
	turn := "b"
	if gs.Turn() == board.Black {
		turn = "w"
	}
	return mustLayout(t, swapped+" "+turn+" -")
}

func TestMaterialSymmetry(t *testing.T) {
	var eval Material
	for _, l := range testLayouts {
		gs := mustLayout(t, l)
		mirror := mirrored(t, gs)

		w := eval.Evaluate(gs, board.White)
		assert.Equal(t, -w, eval.Evaluate(gs, board.Black), l)
		assert.Equal(t, w, eval.Evaluate(mirror, board.Black), l)
		assert.Equal(t, -w, eval.Evaluate(mirror, board.White), l)
		t.Logf("%s: %.1f", l, w)
	}
}

func TestMaterialValues(t *testing.T) {
	gs := mustLayout(t, "4k3/8/8/8/8/8/3q4/3QK3 w - -")
	assert.Equal(t, 0.0, Material{}.Evaluate(gs, board.White))

	gs = mustLayout(t, "4k3/8/8/8/8/8/8/R2QK3 w - -")
	assert.Equal(t, 150.0, Material{}.Evaluate(gs, board.White))
	assert.Equal(t, -150.0, Material{}.Evaluate(gs, board.Black))

	// The king dominates every other piece.
	for pt := board.Pawn; pt < board.King; pt++ {
		assert.GreaterOrEqual(t, MaterialValues[board.King], 10*MaterialValues[pt], pt.String())
	}
}

func TestPieceSquare(t *testing.T) {
	ps := NewPieceSquare()

	for _, l := range testLayouts {
		gs := mustLayout(t, l)
		w := ps.Evaluate(gs, board.White)
		assert.InDelta(t, -w, ps.Evaluate(gs, board.Black), 1e-9, l)
		assert.InDelta(t, w, ps.Evaluate(mirrored(t, gs), board.Black), 1e-9, l)
	}

	assert.InDelta(t, 0, ps.Evaluate(board.NewStandardGame(), board.White), 1e-9)
	assert.InDelta(t, 0, ps.Evaluate(board.NewMiniGame(), board.White), 1e-9)

	// Pawn on a2 of the 6x4 board: +0.2*5; the two kings on mirrored
	// corners cancel.
	gs := mustLayout(t, "3k/4/4/4/P3/K3 w")
	assert.InDelta(t, 11, ps.Evaluate(gs, board.White), 1e-9)

	// An advanced pawn is worth more than one at home.
	home := mustLayout(t, "4k3/8/8/8/8/8/3P4/4K3 w - -")
	advanced := mustLayout(t, "4k3/3P4/8/8/8/8/8/4K3 w - -")
	assert.Greater(t, ps.Evaluate(advanced, board.White), ps.Evaluate(home, board.White))

	// Other board sizes sample the 8x8 tables.
	big := mustLayout(t, "r4k3r/pppppppppp/10/10/10/10/10/10/PPPPPPPPPP/R4K3R w")
	assert.InDelta(t, 0, ps.Evaluate(big, board.White), 1e-9)
}

func TestMobility(t *testing.T) {
	gs := board.NewStandardGame()
	assert.Equal(t, 20.0, Mobility{}.Evaluate(gs, board.White))
	assert.Equal(t, 20.0, Mobility{}.Evaluate(gs, board.Black))

	// Captures are not counted.
	gs = mustLayout(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - -")
	// e5 for the pawn, five king moves.
	assert.Equal(t, 6.0, Mobility{}.Evaluate(gs, board.White))
}

func TestCaptureThreat(t *testing.T) {
	gs := board.NewStandardGame()
	assert.Equal(t, 0.0, CaptureThreat{}.Evaluate(gs, board.White))

	// Each pawn attacks the other: +10 for ours, -1 for theirs.
	gs = mustLayout(t, "4k3/8/8/3p4/4P3/8/8/4K3 w - -")
	assert.InDelta(t, 9, CaptureThreat{}.Evaluate(gs, board.White), 1e-9)
	assert.InDelta(t, 9, CaptureThreat{}.Evaluate(gs, board.Black), 1e-9)

	// Rook and queen attack each other along the first row.
	gs = mustLayout(t, "4k3/8/8/8/8/8/8/q2RK3 w - -")
	// White: +90 for the queen, -0.1*50 for the rook, 2*(50-90) material.
	assert.InDelta(t, 5, CaptureThreat{}.Evaluate(gs, board.White), 1e-9)
	// Black: +50 for the rook, -0.1*90 for the queen, 2*(90-50) material.
	assert.InDelta(t, 121, CaptureThreat{}.Evaluate(gs, board.Black), 1e-9)
}

func TestEvaluatorByName(t *testing.T) {
	for _, name := range EvaluatorNames() {
		e, err := EvaluatorByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, e)
	}

	e, err := EvaluatorByName("")
	require.NoError(t, err)
	assert.IsType(t, Material{}, e)

	e, err = EvaluatorByName(" Piece-Square ")
	require.NoError(t, err)
	assert.IsType(t, &PieceSquare{}, e)

	_, err = EvaluatorByName("nnue")
	assert.True(t, errors.Is(err, ErrUnknownEvaluator))
}

func TestCachedEvaluator(t *testing.T) {
	inner := NewPieceSquare()
	c, err := NewCached(inner, 1024)
	require.NoError(t, err)
	defer c.Close()

	gs := mustLayout(t, testLayouts[2])
	want := inner.Evaluate(gs, board.White)

	assert.Equal(t, want, c.Evaluate(gs, board.White))
	c.Wait()
	assert.Equal(t, want, c.Evaluate(gs, board.White))
	assert.Equal(t, -want, c.Evaluate(gs, board.Black))

	hits, misses := c.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)
}
