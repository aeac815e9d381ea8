package server

import (
	"github.com/hailam/chessplay/internal/board"
)

// GameView is the JSON form of a game.
type GameView struct {
	ID       string     `json:"id"`
	Rows     int        `json:"rows"`
	Cols     int        `json:"cols"`
	Board    [][]string `json:"board"` // piece letters, "" for empty squares
	Layout   string     `json:"layout"`
	Turn     string     `json:"turn"`
	Status   string     `json:"status"`
	InCheck  bool       `json:"in_check"`
	Legal    []string   `json:"legal_moves"`
	History  []string   `json:"history"`
	LastMove string     `json:"last_move,omitempty"`
}

func newGameView(g *Game) GameView {
	gs := g.state
	d := gs.Dims()

	rows := make([][]string, d.Rows)
	for r := range rows {
		rows[r] = make([]string, d.Cols)
		for c := range rows[r] {
			if p := gs.Board().At(board.Sq(r, c)); !p.IsEmpty() {
				rows[r][c] = string(p.Char())
			}
		}
	}

	legal := gs.LegalMoves(gs.Turn())
	names := make([]string, len(legal))
	for i, m := range legal {
		names[i] = d.MoveName(m)
	}

	history := make([]string, 0, gs.Ply())
	for _, e := range gs.History() {
		history = append(history, d.MoveName(e.Move))
	}

	return GameView{
		ID:      g.ID,
		Rows:    d.Rows,
		Cols:    d.Cols,
		Board:   rows,
		Layout:  gs.Layout(),
		Turn:    gs.Turn().String(),
		Status:  gs.Status().String(),
		InCheck: gs.InCheck(gs.Turn()),
		Legal:   names,
		History: history,
	}
}
