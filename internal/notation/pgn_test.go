package notation

import (
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

func TestFoolsMate(t *testing.T) {
	g := Game{
		White:  "random",
		Black:  "minimax",
		Layout: string(board.StandardLayout),
		Moves:  []string{"f2f3", "e7e5", "g2g4", "d8h4"},
		Result: "0-1",
	}
	cg, err := Replay(g)
	require.NoError(t, err)
	assert.Equal(t, chess.BlackWon, cg.Outcome())
	assert.Equal(t, chess.Checkmate, cg.Method())

	pgn, err := PGN(g)
	require.NoError(t, err)
	assert.Contains(t, pgn, `[White "random"]`)
	assert.Contains(t, pgn, "Qh4#")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(pgn), "0-1"), pgn)
}

func TestPromotionAndCastling(t *testing.T) {
	g := Game{
		Layout: "4k3/1P6/8/8/8/8/8/4K2R w K -",
		Moves:  []string{"e1g1", "e8d7", "b7b8"},
		Result: "*",
	}
	cg, err := Replay(g)
	require.NoError(t, err)
	moves := cg.Moves()
	require.Len(t, moves, 3)
	assert.True(t, moves[0].HasTag(chess.KingSideCastle))
	assert.Equal(t, chess.Queen, moves[2].Promo())
}

func TestTimeoutResult(t *testing.T) {
	var sb strings.Builder
	g := Game{
		Layout: string(board.StandardLayout),
		Moves:  []string{"g1f3", "g8f6"},
		Result: "*",
	}
	require.NoError(t, WritePGN(&sb, g))
	assert.True(t, strings.HasSuffix(sb.String(), "*\n\n"), sb.String())
	assert.Contains(t, sb.String(), `[Event "chessplay match"]`)
}

func TestRejects(t *testing.T) {
	_, err := PGN(Game{Layout: string(board.MiniLayout)})
	assert.True(t, errors.Is(err, ErrUnsupportedBoard))

	_, err = PGN(Game{Layout: string(board.StandardLayout), Moves: []string{"e2e5"}})
	assert.Error(t, err)
}
