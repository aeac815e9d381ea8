package match

import (
	"fmt"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/hailam/chessplay/internal/storage"
)

// Summary aggregates finished games.
type Summary struct {
	Games     int
	WhiteWins int
	BlackWins int
	Draws     int
	Timeouts  int
	Wins      map[string]int // by player name
	Duration  time.Duration

	plies []float64
}

// Add folds a game into the summary.
func (s *Summary) Add(rec *storage.GameRecord) {
	if s.Wins == nil {
		s.Wins = make(map[string]int)
	}
	s.Games++
	s.Duration += rec.Duration
	s.plies = append(s.plies, float64(rec.Plies))

	switch rec.Result {
	case storage.ResultWhiteWins:
		s.WhiteWins++
	case storage.ResultBlackWins:
		s.BlackWins++
	case storage.ResultDraw:
		s.Draws++
	default:
		s.Timeouts++
	}
	if w := rec.Winner(); w != "" {
		s.Wins[w]++
	}
}

// Plies returns the mean and standard deviation of game lengths.
func (s *Summary) Plies() (mean, std float64) {
	switch len(s.plies) {
	case 0:
		return 0, 0
	case 1:
		return s.plies[0], 0
	}
	return stat.MeanStdDev(s.plies, nil)
}

// String renders the summary on one line.
func (s *Summary) String() string {
	mean, std := s.Plies()
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d games: white %d, black %d, draws %d, timeouts %d; plies %.1f ± %.1f",
		s.Games, s.WhiteWins, s.BlackWins, s.Draws, s.Timeouts, mean, std)
	if s.Games > 0 {
		fmt.Fprintf(&sb, "; %v per game", (s.Duration / time.Duration(s.Games)).Round(time.Millisecond))
	}
	return sb.String()
}
