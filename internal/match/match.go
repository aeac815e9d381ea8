// Package match plays games between two agents and records the results.
package match

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/notation"
	"github.com/hailam/chessplay/internal/storage"
)

// ErrIllegalMove is returned when an agent picks a move that is not legal.
var ErrIllegalMove = errors.New("agent chose an illegal move")

// Recorder stores finished games.
type Recorder interface {
	SaveGame(r *storage.GameRecord) error
}

// Player is a named agent.
type Player struct {
	Name  string
	Agent engine.Agent
}

// Runner plays games from a starting layout between two players. The same
// agent may play both sides.
type Runner struct {
	Layout   board.Layout
	MaxPlies int // 0 means no limit
	White    Player
	Black    Player

	Recorder Recorder  // optional
	PGN      io.Writer // optional; 8x8 games only
	Logger   *log.Logger

	// Callbacks
	OnMove func(gs *board.GameState, m board.Move)
}

func (r *Runner) logf(format string, args ...interface{}) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

func (r *Runner) player(c board.Color) Player {
	if c == board.White {
		return r.White
	}
	return r.Black
}

// players returns each distinct agent once, with the colors it plays.
func (r *Runner) players() map[engine.Agent][]board.Color {
	out := make(map[engine.Agent][]board.Color, 2)
	for _, c := range []board.Color{board.White, board.Black} {
		a := r.player(c).Agent
		out[a] = append(out[a], c)
	}
	return out
}

// Play plays one game and returns its record. Learners see the outcome,
// learned values are flushed after decisive games and per-game memory is
// cleared before returning.
func (r *Runner) Play(ctx context.Context) (*storage.GameRecord, error) {
	gs, err := board.NewGameState(r.Layout)
	if err != nil {
		return nil, err
	}
	players := r.players()
	for a := range players {
		if o, ok := a.(engine.Observer); ok {
			o.Observe(gs)
		}
	}
	defer func() {
		for a := range players {
			if rs, ok := a.(engine.Restarter); ok {
				rs.Restart()
			}
		}
	}()

	rec := &storage.GameRecord{
		ID:      uuid.NewString(),
		White:   r.White.Name,
		Black:   r.Black.Name,
		Layout:  gs.Layout(),
		Started: time.Now(),
	}
	d := gs.Dims()

	for gs.Status() == board.Ongoing {
		if r.MaxPlies > 0 && rec.Plies >= r.MaxPlies {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		color := gs.Turn()
		p := r.player(color)
		m, err := p.Agent.ChooseMove(gs, color)
		if err != nil {
			return nil, errors.Wrapf(err, "%s (%s) at ply %d", p.Name, color, rec.Plies)
		}
		if !gs.IsLegal(m) {
			return nil, errors.Wrapf(ErrIllegalMove, "%s (%s) played %s at ply %d", p.Name, color, d.MoveName(m), rec.Plies)
		}
		if err := gs.Apply(m, false); err != nil {
			return nil, err
		}
		rec.Moves = append(rec.Moves, d.MoveName(m))
		rec.Plies++
		if r.OnMove != nil {
			r.OnMove(gs, m)
		}
	}

	status := gs.Status()
	rec.Result = resultOf(status)
	rec.Duration = time.Since(rec.Started)
	r.logf("game %s: %s vs %s, %s after %d plies", rec.ID, rec.White, rec.Black, rec.Result, rec.Plies)

	if err := r.finish(gs, players, status); err != nil {
		return rec, err
	}
	if r.Recorder != nil {
		if err := r.Recorder.SaveGame(rec); err != nil {
			return rec, errors.Wrap(err, "recording game")
		}
	}
	if r.PGN != nil && d.Rows == 8 && d.Cols == 8 {
		if err := notation.WritePGN(r.PGN, PGNGame(rec)); err != nil {
			return rec, errors.Wrap(err, "writing pgn")
		}
	}
	return rec, nil
}

// finish reports the outcome to learners and flushes them after a
// checkmate.
func (r *Runner) finish(gs *board.GameState, players map[engine.Agent][]board.Color, status board.Status) error {
	var errs error
	for a, colors := range players {
		if l, ok := a.(engine.Learner); ok {
			for _, c := range colors {
				l.GameOver(gs, c)
			}
		}
		if status.Loser() == board.NoColor {
			continue
		}
		if f, ok := a.(engine.Flusher); ok {
			if err := f.Flush(); err != nil {
				errs = multierror.Append(errs, err)
			}
		}
	}
	return errs
}

// Run plays games one after another and summarises them. It stops at the
// first error or when ctx is done.
func (r *Runner) Run(ctx context.Context, games int) (*Summary, error) {
	s := &Summary{}
	for i := 0; i < games; i++ {
		rec, err := r.Play(ctx)
		if rec != nil {
			s.Add(rec)
		}
		if err != nil {
			return s, errors.Wrapf(err, "game %d", i+1)
		}
	}
	return s, nil
}

// Close closes the agents, flushing those that only flush.
func (r *Runner) Close() error {
	var errs error
	for a := range r.players() {
		var err error
		switch c := a.(type) {
		case io.Closer:
			err = c.Close()
		case engine.Flusher:
			err = c.Flush()
		}
		if err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

func resultOf(s board.Status) storage.Result {
	switch s {
	case board.PlayerOneLost:
		return storage.ResultBlackWins
	case board.PlayerTwoLost:
		return storage.ResultWhiteWins
	case board.Stalemate:
		return storage.ResultDraw
	}
	return storage.ResultTimeout
}

// PGNGame converts a record for notation.
func PGNGame(rec *storage.GameRecord) notation.Game {
	result := "*"
	switch rec.Result {
	case storage.ResultWhiteWins:
		result = "1-0"
	case storage.ResultBlackWins:
		result = "0-1"
	case storage.ResultDraw:
		result = "1/2-1/2"
	}
	return notation.Game{
		White:  rec.White,
		Black:  rec.Black,
		Layout: rec.Layout,
		Moves:  rec.Moves,
		Result: result,
	}
}
