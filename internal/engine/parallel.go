package engine

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/chessplay/internal/board"
)

// ParallelAgent splits the root moves of a minimax search across workers.
// Each root move is searched with a full window on its own clone of the
// game state, so the chosen move is the one the single-threaded agent
// picks: the highest value, ties going to the earliest root move.
type ParallelAgent struct {
	Workers int
	Search  *MinimaxAgent // depth, evaluator, stalemate score and guard

	// Callbacks
	OnInfo func(SearchInfo)

	value float64
}

// NewParallelAgent creates a parallel agent. workers <= 0 uses GOMAXPROCS.
func NewParallelAgent(search *MinimaxAgent, workers int) *ParallelAgent {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &ParallelAgent{Workers: workers, Search: search}
}

// ChooseMove implements Agent. gs is only read.
func (p *ParallelAgent) ChooseMove(gs *board.GameState, color board.Color) (board.Move, error) {
	moves := gs.LegalMoves(color)
	if len(moves) == 0 {
		return board.NoMove, errors.Wrapf(ErrNoLegalMoves, "%s", color)
	}

	start := time.Now()
	depth := p.Search.Depth
	if depth < 1 {
		depth = 1
	}

	values := make([]float64, len(moves))
	var nodes atomic.Uint64

	var g errgroup.Group
	g.SetLimit(p.Workers)
	for i, m := range moves {
		i, m := i, m
		g.Go(func() error {
			w := *p.Search
			w.Tracer = nil
			w.OnInfo = nil
			w.nodes = 0

			cs := gs.Clone()
			if err := cs.Apply(m, true); err != nil {
				return errors.Wrapf(err, "root move %v", m)
			}
			if w.Guard.Seen(cs.Key()) {
				values[i] = RepetitionPenalty
			} else {
				values[i], _ = w.search(cs, color.Other(), color, depth-1, math.Inf(-1), math.Inf(1), -1)
			}
			nodes.Add(w.nodes + 1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return board.NoMove, err
	}

	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	p.value = values[best]

	if p.OnInfo != nil {
		p.OnInfo(SearchInfo{
			Depth: depth,
			Score: p.value,
			Nodes: nodes.Load(),
			Time:  time.Since(start),
			Move:  moves[best],
		})
	}
	return moves[best], nil
}

// Value returns the root value of the last search.
func (p *ParallelAgent) Value() float64 {
	return p.value
}

// Observe attaches the repetition guard, if any, to the real game line.
func (p *ParallelAgent) Observe(gs *board.GameState) {
	p.Search.Observe(gs)
}

// Restart clears per-game memory.
func (p *ParallelAgent) Restart() {
	p.Search.Restart()
}

// Close releases the search evaluator.
func (p *ParallelAgent) Close() error {
	return p.Search.Close()
}
