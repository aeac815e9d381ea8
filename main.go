// ChessPlay - plays matches between configurable chess agents
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/config"
	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/match"
	"github.com/hailam/chessplay/internal/storage"
)

var (
	configPath = flag.String("config", "", "JSON match config; defaults apply when empty")
	games      = flag.Int("games", 0, "number of games, overrides the config")
	boardSpec  = flag.String("board", "", "board preset (standard, mini) or layout, overrides the config")
	seed       = flag.Int64("seed", 0, "random seed, overrides the config")
	pgnPath    = flag.String("pgn", "", "append 8x8 games to this PGN file, overrides the config")
	storeKind  = flag.String("store", "", "storage kind (badger, file, memory, none), overrides the config")
	tracePath  = flag.String("trace", "", "write White's last minimax search tree as DOT to this file")
	verbose    = flag.Bool("v", false, "log every move")
)

// stores is what the match needs from a storage backend.
type stores struct {
	q        engine.QStore
	recorder match.Recorder
	closer   io.Closer
}

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal(err)
	}

	layout, err := cfg.Layout()
	if err != nil {
		logger.Fatal(err)
	}

	st, err := openStores(cfg.Storage)
	if err != nil {
		logger.Fatal(err)
	}

	s := cfg.Seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	white, err := cfg.White.NewAgent(st.q, rng)
	if err != nil {
		logger.Fatalf("white: %v", err)
	}
	black, err := cfg.Black.NewAgent(st.q, rng)
	if err != nil {
		logger.Fatalf("black: %v", err)
	}

	var tracer *engine.Tracer
	if *tracePath != "" {
		mm, ok := white.(*engine.MinimaxAgent)
		if !ok {
			logger.Fatalf("-trace needs a minimax white agent, got %s", cfg.White.Kind)
		}
		tracer = engine.NewTracer(mm.Depth)
		mm.Tracer = tracer
	}

	runner := &match.Runner{
		Layout:   layout,
		MaxPlies: cfg.MaxPlies,
		White:    match.Player{Name: cfg.White.String(), Agent: white},
		Black:    match.Player{Name: cfg.Black.String(), Agent: black},
		Recorder: st.recorder,
		Logger:   logger,
	}
	if *verbose {
		runner.OnMove = func(gs *board.GameState, m board.Move) {
			logger.Printf("%d. %s", gs.Ply(), gs.Dims().MoveName(m))
		}
	}

	if cfg.PGN != "" {
		f, err := os.OpenFile(cfg.PGN, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			logger.Fatalf("opening pgn file: %v", err)
		}
		defer f.Close()
		runner.PGN = f
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Printf("%s vs %s on %s, %d games, seed %d", runner.White.Name, runner.Black.Name, layout, cfg.Games, s)
	summary, runErr := runner.Run(ctx, cfg.Games)

	var errs error
	if runErr != nil {
		errs = multierror.Append(errs, runErr)
	}
	if err := runner.Close(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if tracer != nil {
		if err := writeTrace(*tracePath, tracer); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if st.closer != nil {
		if err := st.closer.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	if summary != nil {
		logger.Printf("%s", summary)
		for name, wins := range summary.Wins {
			logger.Printf("  %s: %d wins", name, wins)
		}
	}
	if errs != nil {
		logger.Fatal(errs)
	}
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return nil, err
		}
	}

	if *games > 0 {
		cfg.Games = *games
	}
	if *boardSpec != "" {
		cfg.Board = *boardSpec
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *pgnPath != "" {
		cfg.PGN = *pgnPath
	}
	if *storeKind != "" {
		cfg.Storage.Kind = *storeKind
	}
	return cfg, cfg.Validate()
}

// openStores opens the configured backend. The badger backend also records
// games; the file backend only keeps learned values.
func openStores(sc config.StorageConfig) (stores, error) {
	switch sc.Kind {
	case config.StorageBadger, config.StorageMemory:
		var (
			db  *storage.Storage
			err error
		)
		switch {
		case sc.Kind == config.StorageMemory:
			db, err = storage.NewStorageAt("")
		case sc.Dir != "":
			db, err = storage.NewStorageAt(sc.Dir)
		default:
			db, err = storage.NewStorage()
		}
		if err != nil {
			return stores{}, err
		}
		return stores{q: db, recorder: db, closer: db}, nil

	case config.StorageFile:
		dir := sc.Dir
		if dir == "" {
			var err error
			if dir, err = storage.GetQValueDir(); err != nil {
				return stores{}, err
			}
		}
		fs, err := storage.NewFileStore(dir)
		if err != nil {
			return stores{}, err
		}
		return stores{q: fs}, nil
	}
	return stores{}, nil
}

func writeTrace(path string, t *engine.Tracer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteDOT(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
