// Package uci drives the engine over a UCI-style text protocol.
package uci

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

// UCI implements the Universal Chess Interface protocol, extended with
// board presets and arbitrary layouts.
type UCI struct {
	engine   *engine.Engine
	position *board.GameState

	in  io.Reader
	out io.Writer
	err io.Writer
}

// New creates a new UCI protocol handler on stdin and stdout.
func New(eng *engine.Engine) *UCI {
	return NewWithIO(eng, os.Stdin, os.Stdout, os.Stderr)
}

// NewWithIO creates a handler reading commands from in.
func NewWithIO(eng *engine.Engine, in io.Reader, out, errOut io.Writer) *UCI {
	u := &UCI{
		engine: eng,
		in:     in,
		out:    out,
		err:    errOut,
	}
	u.setPosition(board.NewStandardGame())
	return u
}

func (u *UCI) printf(format string, args ...interface{}) {
	fmt.Fprintf(u.out, format, args...)
}

func (u *UCI) infof(format string, args ...interface{}) {
	fmt.Fprintf(u.err, "info string "+format+"\n", args...)
}

// Run reads commands until "quit" or the end of input.
func (u *UCI) Run() error {
	scanner := bufio.NewScanner(u.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.printf("readyok\n")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "setoption":
			u.handleSetOption(args)
		case "quit":
			return nil
		// Debug commands
		case "d":
			u.printf("%s\n", u.position.String())
		case "undo":
			u.handleUndo()
		case "perft":
			u.handlePerft(args)
		default:
			u.infof("Unknown command: %s", cmd)
		}
	}
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.printf("id name ChessPlay\n")
	u.printf("id author ChessPlay Team\n")
	u.printf("\n")
	u.printf("option name Difficulty type combo default medium var easy var medium var hard\n")
	u.printf("option name Heuristic type combo default %s", engine.EvalMaterial)
	for _, name := range engine.EvaluatorNames() {
		u.printf(" var %s", name)
	}
	u.printf("\n")
	u.printf("option name Threads type spin default 1 min 1 max 64\n")
	u.printf("uciok\n")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.setPosition(board.NewStandardGame())
}

// setPosition makes gs the followed game.
func (u *UCI) setPosition(gs *board.GameState) {
	u.engine.Clear()
	u.position = gs
	u.engine.Observe(gs)
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos [moves e2e4 e7e5]
//   - position mini [moves a2a3]
//   - position layout <layout> [moves ...]
//   - position fen <fen> [moves ...]
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	pos, moves := args, []string(nil)
	for i, arg := range args {
		if arg == "moves" {
			pos, moves = args[:i], args[i+1:]
			break
		}
	}
	if len(pos) == 0 {
		return
	}

	var gs *board.GameState
	switch pos[0] {
	case "startpos":
		gs = board.NewStandardGame()
	case "mini":
		gs = board.NewMiniGame()
	case "layout", "fen":
		fields := pos[1:]
		// Move counters are accepted and ignored.
		if len(fields) > 4 {
			fields = fields[:4]
		}
		var err error
		gs, err = board.ParseLayout(strings.Join(fields, " "))
		if err != nil {
			u.infof("Invalid layout: %v", err)
			return
		}
	default:
		u.infof("Invalid position: %s", pos[0])
		return
	}
	u.setPosition(gs)

	for _, moveStr := range moves {
		move, err := u.parseMove(moveStr)
		if err != nil {
			u.infof("Invalid move: %s (%v)", moveStr, err)
			return
		}
		if err := u.position.Apply(move, false); err != nil {
			u.infof("Invalid move: %s (%v)", moveStr, err)
			return
		}
	}
}

// parseMove converts a coordinate move string to a legal board.Move.
func (u *UCI) parseMove(moveStr string) (board.Move, error) {
	move, err := u.position.Dims().ParseMove(moveStr)
	if err != nil {
		return board.NoMove, err
	}
	if !u.position.IsLegal(move) {
		return board.NoMove, errors.New("illegal move")
	}
	return move, nil
}

// GoOptions holds parsed "go" command options.
type GoOptions struct {
	Depth int
}

// parseGoOptions parses "go" command arguments. Time controls are accepted
// and ignored; the search runs to a fixed depth.
func parseGoOptions(args []string) GoOptions {
	opts := GoOptions{}
	for i := 0; i < len(args); i++ {
		if args[i] == "depth" && i+1 < len(args) {
			opts.Depth, _ = strconv.Atoi(args[i+1])
			i++
		}
	}
	return opts
}

// handleGo searches the current position and prints the best move.
func (u *UCI) handleGo(args []string) {
	opts := parseGoOptions(args)
	u.engine.OnInfo = u.sendInfo

	var (
		move board.Move
		err  error
	)
	if opts.Depth > 0 {
		limits := engine.DifficultySettings[u.engine.Difficulty()]
		limits.Depth = opts.Depth
		limits.Workers = u.engine.Workers()
		move, err = u.engine.SearchWithLimits(u.position, limits)
	} else {
		move, err = u.engine.Search(u.position)
	}

	if err != nil {
		// Only checkmate and stalemate leave no legal move.
		if !errors.Is(err, engine.ErrNoLegalMoves) {
			u.infof("Search failed: %v", err)
		}
		u.printf("bestmove 0000\n")
		return
	}
	u.printf("bestmove %s\n", u.position.Dims().MoveName(move))
}

// mateIn returns the number of moves to the mate behind a win score. Mate
// scores carry the search depth left when the mate was found.
func mateIn(info engine.SearchInfo) int {
	plies := info.Depth - int(math.Abs(info.Score)-engine.WinScore)
	if plies < 1 {
		plies = 1
	}
	return (plies + 1) / 2
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	switch {
	case info.Score >= engine.WinScore:
		parts = append(parts, fmt.Sprintf("score mate %d", mateIn(info)))
	case info.Score <= -engine.WinScore:
		parts = append(parts, fmt.Sprintf("score mate -%d", mateIn(info)))
	default:
		// One pawn is worth 10.
		parts = append(parts, fmt.Sprintf("score cp %d", int(info.Score*10)))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if info.Move != board.NoMove {
		parts = append(parts, "pv "+u.position.Dims().MoveName(info.Move))
	}

	u.printf("info %s\n", strings.Join(parts, " "))
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "name":
			if i+1 < len(args) {
				name = args[i+1]
				i++
			}
		case "value":
			if i+1 < len(args) {
				value = strings.Join(args[i+1:], " ")
				i = len(args)
			}
		}
	}

	switch strings.ToLower(name) {
	case "difficulty":
		d, err := engine.ParseDifficulty(value)
		if err != nil {
			u.infof("%v", err)
			return
		}
		u.engine.SetDifficulty(d)
	case "heuristic":
		eval, err := engine.EvaluatorByName(value)
		if err != nil {
			u.infof("%v", err)
			return
		}
		u.engine.SetEvaluator(eval)
	case "threads":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			u.infof("Invalid thread count: %s", value)
			return
		}
		u.engine.SetWorkers(n)
	default:
		u.infof("Unknown option: %s", name)
	}
}

// handleUndo takes back the last move.
func (u *UCI) handleUndo() {
	if err := u.position.Undo(); err != nil {
		u.infof("Cannot undo: %v", err)
		return
	}
	u.engine.Resync(u.position)
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 3
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.printf("Nodes: %d\n", nodes)
	u.printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.printf("NPS: %.0f\n", nps)
	}
}
