package engine

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/chessplay/internal/board"
)

const mateInOne = "6k1/5ppp/8/8/8/8/8/R5K1 w - -"

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	evals := map[string]Evaluator{
		"material":     Material{},
		"piece-square": NewPieceSquare(),
		"capture":      CaptureThreat{},
	}

	for _, l := range testLayouts {
		for name, eval := range evals {
			maxDepth := 3
			if strings.Count(l, "/") == 7 && l != string(board.StandardLayout) {
				maxDepth = 2
			}
			for depth := 1; depth <= maxDepth; depth++ {
				gs := mustLayout(t, l)
				before := gs.Layout()
				color := gs.Turn()

				agent := NewMinimaxAgent(depth, eval)
				move, err := agent.ChooseMove(gs, color)
				require.NoError(t, err)

				want, wantMove := Minimax(gs, color, color, depth, eval, DefaultStalemateScore)
				if agent.Value() != want {
					t.Errorf("%s %s depth %d: alpha-beta value %.2f, minimax %.2f", l, name, depth, agent.Value(), want)
				}
				if move != wantMove {
					t.Errorf("%s %s depth %d: alpha-beta chose %s, minimax %s", l, name, depth,
						gs.Dims().MoveName(move), gs.Dims().MoveName(wantMove))
				}
				assert.Equal(t, before, gs.Layout(), "search must restore the state")
				assert.Zero(t, gs.Ply())
			}
		}
	}
}

func TestDepthOneOpening(t *testing.T) {
	gs := board.NewStandardGame()
	agent := NewMinimaxAgent(1, Material{})

	move, err := agent.ChooseMove(gs, board.White)
	require.NoError(t, err)
	require.NotEqual(t, board.NoMove, move)
	assert.True(t, gs.IsLegal(move))

	p := gs.Board().At(move.From)
	assert.Contains(t, []board.PieceType{board.Pawn, board.Knight}, p.Type)
	assert.Equal(t, 0.0, agent.Value(), "material is balanced after any opening move")
	t.Logf("Chose %s", gs.Dims().MoveName(move))
}

func TestMateInOne(t *testing.T) {
	for depth := 1; depth <= 3; depth++ {
		gs := mustLayout(t, mateInOne)
		agent := NewMinimaxAgent(depth, Material{})

		move, err := agent.ChooseMove(gs, board.White)
		require.NoError(t, err)
		assert.Equal(t, "a1a8", gs.Dims().MoveName(move), "depth %d", depth)
		assert.GreaterOrEqual(t, agent.Value(), float64(WinScore), "depth %d", depth)
	}

	// Slower forced mates (Kf7 first) are generated before Ra8#, which must
	// still win at every depth.
	for depth := 1; depth <= 4; depth++ {
		gs := mustLayout(t, "7k/8/6K1/8/8/8/8/R7 w - -")
		agent := NewMinimaxAgent(depth, Material{})

		move, err := agent.ChooseMove(gs, board.White)
		require.NoError(t, err)
		require.Equal(t, "a1a8", gs.Dims().MoveName(move), "depth %d", depth)
		assert.Equal(t, float64(WinScore+depth-1), agent.Value(), "depth %d", depth)

		value, full := Minimax(gs, board.White, board.White, depth, Material{}, DefaultStalemateScore)
		assert.Equal(t, agent.Value(), value, "depth %d", depth)
		assert.Equal(t, move, full, "depth %d", depth)

		require.NoError(t, gs.Apply(move, false))
		assert.Equal(t, board.PlayerTwoLost, gs.Status(), "depth %d", depth)
	}

	// The same mate for Black.
	gs := mustLayout(t, "r5k1/8/8/8/8/8/5PPP/6K1 b - -")
	agent := NewMinimaxAgent(2, NewPieceSquare())
	move, err := agent.ChooseMove(gs, board.Black)
	require.NoError(t, err)
	assert.Equal(t, "a8a1", gs.Dims().MoveName(move))
	assert.GreaterOrEqual(t, agent.Value(), float64(WinScore))
}

func TestAvoidsBeingMated(t *testing.T) {
	// Black to move must stop Ra1-a8 mate; with depth 2 it sees the threat.
	gs := mustLayout(t, "6k1/5ppp/8/8/8/8/8/R5K1 b - -")
	agent := NewMinimaxAgent(2, Material{})
	move, err := agent.ChooseMove(gs, board.Black)
	require.NoError(t, err)
	require.NoError(t, gs.Apply(move, false))

	reply, err := NewMinimaxAgent(1, Material{}).ChooseMove(gs, board.White)
	require.NoError(t, err)
	require.NoError(t, gs.Apply(reply, false))
	assert.Equal(t, board.Ongoing, gs.Status(), "black played %s", gs.Dims().MoveName(move))
}

func TestTerminalScores(t *testing.T) {
	mated := mustLayout(t, "R6k/6pp/8/8/8/8/8/K7 b - -")
	v, ok := terminalValue(mated, board.Black, board.Black, DefaultStalemateScore)
	assert.True(t, ok)
	assert.Equal(t, float64(-WinScore), v)
	v, _ = terminalValue(mated, board.Black, board.White, DefaultStalemateScore)
	assert.Equal(t, float64(WinScore), v)

	stalemate := mustLayout(t, "7k/5Q2/6K1/8/8/8/8/8 b - -")
	v, ok = terminalValue(stalemate, board.Black, board.White, DefaultStalemateScore)
	assert.True(t, ok)
	assert.Equal(t, float64(DefaultStalemateScore), v)

	_, ok = terminalValue(board.NewStandardGame(), board.White, board.White, DefaultStalemateScore)
	assert.False(t, ok)
}

func TestNoLegalMoves(t *testing.T) {
	mated := mustLayout(t, "R6k/6pp/8/8/8/8/8/K7 b - -")
	agents := map[string]Agent{
		"random":     NewRandomAgent(rand.New(rand.NewSource(1))),
		"minimax":    NewMinimaxAgent(2, Material{}),
		"expectimax": NewExpectimaxAgent(2, Material{}),
		"parallel":   NewParallelAgent(NewMinimaxAgent(2, Material{}), 2),
	}
	q, err := NewQAgent(DefaultQConfig("test"), nil, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	agents["q"] = q

	for name, a := range agents {
		move, err := a.ChooseMove(mated, board.Black)
		assert.True(t, errors.Is(err, ErrNoLegalMoves), name)
		assert.Equal(t, board.NoMove, move, name)
	}
}

func TestNarrowWindowStillReturnsLegalMove(t *testing.T) {
	gs := board.NewStandardGame()
	agent := NewMinimaxAgent(2, Material{})
	agent.Alpha, agent.Beta = 100, 200

	move, err := agent.ChooseMove(gs, board.White)
	require.NoError(t, err)
	assert.True(t, gs.IsLegal(move))
}

func TestRepetitionGuard(t *testing.T) {
	gs := mustLayout(t, "7k/8/8/8/8/8/8/K7 w - -")
	d := gs.Dims()
	guard := NewRepetitionGuard()
	agent := NewMinimaxAgent(1, Material{})
	agent.Guard = guard
	agent.Observe(gs)

	// Kings out and back: Ka2 is now a known position.
	for _, s := range []string{"a1a2", "h8h7", "a2a1", "h7h8"} {
		m, err := d.ParseMove(s)
		require.NoError(t, err)
		require.NoError(t, gs.Apply(m, false))
	}
	assert.Equal(t, 4, guard.Len())

	plain, err := NewMinimaxAgent(1, Material{}).ChooseMove(gs, board.White)
	require.NoError(t, err)
	assert.Equal(t, "a1a2", d.MoveName(plain))

	move, err := agent.ChooseMove(gs, board.White)
	require.NoError(t, err)
	assert.NotEqual(t, "a1a2", d.MoveName(move))
	assert.Equal(t, 4, guard.Len(), "search probes must not be recorded")

	agent.Restart()
	assert.Zero(t, guard.Len())
	move, err = agent.ChooseMove(gs, board.White)
	require.NoError(t, err)
	assert.Equal(t, "a1a2", d.MoveName(move))

	// Detached: committed moves are no longer recorded.
	m, _ := d.ParseMove("a1b1")
	require.NoError(t, gs.Apply(m, false))
	assert.Zero(t, guard.Len())
}

func TestExpectimax(t *testing.T) {
	gs := mustLayout(t, mateInOne)
	agent := NewExpectimaxAgent(1, Material{})
	move, err := agent.ChooseMove(gs, board.White)
	require.NoError(t, err)
	assert.Equal(t, "a1a8", gs.Dims().MoveName(move))

	// Depth 2: max over our moves of the mean over the replies.
	gs = mustLayout(t, "4k3/8/8/8/8/8/3q4/3QK3 w - -")
	agent = NewExpectimaxAgent(2, Material{})
	_, err = agent.ChooseMove(gs, board.White)
	require.NoError(t, err)

	want := math.Inf(-1)
	for _, m := range gs.LegalMoves(board.White) {
		require.NoError(t, gs.Apply(m, true))
		replies := gs.LegalMoves(board.Black)
		var mean float64
		if len(replies) == 0 {
			mean = noMovesValue(gs, board.Black, board.White, 1, DefaultStalemateScore)
		} else {
			for _, r := range replies {
				require.NoError(t, gs.Apply(r, true))
				mean += Material{}.Evaluate(gs, board.White)
				require.NoError(t, gs.Undo())
			}
			mean /= float64(len(replies))
		}
		require.NoError(t, gs.Undo())
		want = math.Max(want, mean)
	}
	assert.InDelta(t, want, agent.Value(), 1e-9)
	assert.Zero(t, gs.Ply())
}

func TestRandomAgentPlaysLegalMoves(t *testing.T) {
	gs := board.NewMiniGame()
	agent := NewRandomAgent(rand.New(rand.NewSource(7)))
	for i := 0; i < 30 && gs.Status() == board.Ongoing; i++ {
		move, err := agent.ChooseMove(gs, gs.Turn())
		require.NoError(t, err)
		require.True(t, gs.IsLegal(move))
		require.NoError(t, gs.Apply(move, false))
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	for _, l := range testLayouts {
		for depth := 1; depth <= 2; depth++ {
			gs := mustLayout(t, l)
			before := gs.Layout()
			color := gs.Turn()

			serial := NewMinimaxAgent(depth, NewPieceSquare())
			want, err := serial.ChooseMove(gs, color)
			require.NoError(t, err)

			var info SearchInfo
			parallel := NewParallelAgent(NewMinimaxAgent(depth, NewPieceSquare()), 4)
			parallel.OnInfo = func(si SearchInfo) { info = si }
			got, err := parallel.ChooseMove(gs, color)
			require.NoError(t, err)

			assert.Equal(t, gs.Dims().MoveName(want), gs.Dims().MoveName(got), "%s depth %d", l, depth)
			assert.Equal(t, serial.Value(), parallel.Value(), "%s depth %d", l, depth)
			assert.Equal(t, got, info.Move)
			assert.NotZero(t, info.Nodes)
			assert.Equal(t, before, gs.Layout())
		}
	}
}

func TestTracer(t *testing.T) {
	gs := board.NewMiniGame()
	tracer := NewTracer(1)
	agent := NewMinimaxAgent(2, Material{})
	agent.Tracer = tracer

	_, err := agent.ChooseMove(gs, board.White)
	require.NoError(t, err)
	assert.Equal(t, 1+len(gs.LegalMoves(board.White)), tracer.Len())

	dot, err := tracer.DOT()
	require.NoError(t, err)
	assert.Contains(t, dot, "digraph search")
	assert.Contains(t, dot, "n0->n1")
	assert.Contains(t, dot, "a2a3")
	t.Log(dot)

	var sb strings.Builder
	require.NoError(t, tracer.WriteDOT(&sb))
	assert.Equal(t, dot, sb.String())

	var nilTracer *Tracer
	assert.Equal(t, -1, nilTracer.Reset("x"))
	assert.Zero(t, nilTracer.Len())
}
