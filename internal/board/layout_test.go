package board

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutRoundTrip(t *testing.T) {
	layouts := []string{
		string(StandardLayout),
		"rqkn/pppp/4/4/PPPP/RQKN w - -",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"rnbqkbnr/ppp1p1pp/8/3pPp2/8/8/PPPP1PPP/RNBQKBNR w KQkq f6",
		"4k3/8/8/8/8/8/8/R3K2R b K -",
		"r4k3r/10/10/10/10/10/10/10/10/R4K3R w KQkq -",
	}
	for _, l := range layouts {
		gs, err := ParseLayout(l)
		require.NoError(t, err, l)
		assert.Equal(t, l, gs.Layout())
	}
}

func TestParseLayoutDimensions(t *testing.T) {
	gs, err := ParseLayout("r4k3r/10/10/10/10/10/10/10/10/R4K3R w")
	require.NoError(t, err)
	assert.Equal(t, Dims{Rows: 10, Cols: 10}, gs.Dims())

	// Home-row kings and rooks count as unmoved without a castling field.
	assert.Equal(t, "KQkq", gs.castlingField())
	assert.Equal(t, "j1", gs.Dims().SquareName(Sq(9, 9)))
	sq, err := gs.Dims().ParseSquare("a10")
	require.NoError(t, err)
	assert.Equal(t, Sq(0, 0), sq)

	// The rook four columns away castles, landing on the crossed square.
	m, _ := gs.Dims().ParseMove("f1h1")
	require.True(t, gs.IsLegal(m))
	require.NoError(t, gs.Apply(m, false))
	assert.Equal(t, "r4k3r/10/10/10/10/10/10/10/10/R5RK2", gs.Key())
}

func TestParseLayoutErrors(t *testing.T) {
	bad := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBN w",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x",
		"rnbqxbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
		"rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNP w",
		"kK",
		"k1/K1 w",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX",
	}
	for _, l := range bad {
		_, err := ParseLayout(l)
		if assert.Error(t, err, l) {
			assert.True(t, errors.Is(err, ErrInvalidLayout), "%s: %v", l, err)
		}
	}
}

func TestMirrorLayout(t *testing.T) {
	d := Dims{Rows: 6, Cols: 4}
	assert.Equal(t, Sq(5, 1), d.Mirror(Sq(0, 1)))
	assert.Equal(t, Sq(2, 3), d.Mirror(Sq(3, 3)))
}

func TestParseMove(t *testing.T) {
	d := Dims{Rows: 8, Cols: 8}
	m, err := d.ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, NewMove(Sq(6, 4), Sq(4, 4)), m)
	assert.Equal(t, "e2e4", d.MoveName(m))
	assert.Equal(t, "0000", d.MoveName(NoMove))

	_, err = d.ParseMove("e2")
	assert.Error(t, err)
	_, err = d.ParseMove("z2e4")
	assert.Error(t, err)

	big := Dims{Rows: 12, Cols: 8}
	m, err = big.ParseMove("a11a12")
	require.NoError(t, err)
	assert.Equal(t, NewMove(Sq(1, 0), Sq(0, 0)), m)
}

func TestParseSquareRange(t *testing.T) {
	d := Dims{Rows: MaxDimension, Cols: 8}
	sq, err := d.ParseSquare("h26")
	require.NoError(t, err)
	assert.Equal(t, Sq(0, 7), sq)

	for _, s := range []string{"a0", "a27", "a" + strings.Repeat("9", 40), "a" + strings.Repeat("1", 25)} {
		_, err := d.ParseSquare(s)
		assert.True(t, errors.Is(err, ErrOutOfRange), "%.12s: %v", s, err)
	}
	_, err = d.ParseSquare("a1x")
	assert.Error(t, err)
}
