// Package notation exports 8x8 games in Portable Game Notation.
package notation

import (
	"io"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
)

// ErrUnsupportedBoard is returned for boards other than 8x8.
var ErrUnsupportedBoard = errors.New("pgn needs an 8x8 board")

// Game describes a played game.
type Game struct {
	Event  string
	White  string
	Black  string
	Layout string   // starting layout
	Moves  []string // coordinate moves, e.g. "e2e4"
	Result string   // "1-0", "0-1", "1/2-1/2" or "*"
}

// Replay plays the moves of g on a notnil/chess game, which validates them.
func Replay(g Game) (*chess.Game, error) {
	gs, err := board.ParseLayout(g.Layout)
	if err != nil {
		return nil, err
	}
	if d := gs.Dims(); d.Rows != 8 || d.Cols != 8 {
		return nil, errors.Wrapf(ErrUnsupportedBoard, "%dx%d", d.Rows, d.Cols)
	}

	opts := []func(*chess.Game){chess.TagPairs(tags(g))}
	if gs.Layout() != string(board.StandardLayout) {
		fen, err := chess.FEN(gs.Layout() + " 0 1")
		if err != nil {
			return nil, errors.Wrap(err, "starting position")
		}
		opts = append(opts, fen)
	}
	cg := chess.NewGame(opts...)

	for i, s := range g.Moves {
		err := play(cg, s)
		if err != nil && len(s) == 4 {
			// Pawns reaching the last row always become queens.
			err = play(cg, s+"q")
		}
		if err != nil {
			return nil, errors.Wrapf(err, "move %d %s", i+1, s)
		}
	}
	return cg, nil
}

func play(cg *chess.Game, s string) error {
	m, err := chess.UCINotation{}.Decode(cg.Position(), s)
	if err != nil {
		return err
	}
	return cg.Move(m)
}

func tags(g Game) []*chess.TagPair {
	event := g.Event
	if event == "" {
		event = "chessplay match"
	}
	return []*chess.TagPair{
		{Key: "Event", Value: event},
		{Key: "White", Value: g.White},
		{Key: "Black", Value: g.Black},
	}
}

// PGN renders g.
func PGN(g Game) (string, error) {
	cg, err := Replay(g)
	if err != nil {
		return "", err
	}
	s := cg.String()
	// notnil/chess only knows mates and its own draw rules; games stopped
	// by the turn limit end unfinished.
	if cg.Outcome() == chess.NoOutcome && g.Result != "" && g.Result != "*" {
		s = strings.TrimSuffix(strings.TrimRight(s, "\n "), "*") + g.Result
	}
	return s, nil
}

// WritePGN writes g followed by a blank line.
func WritePGN(w io.Writer, g Game) error {
	s, err := PGN(g)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, strings.TrimRight(s, "\n")+"\n\n")
	return err
}
